package stream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

func envelope(n int) contract.RawEventEnvelope {
	return contract.RawEventEnvelope{
		EventName: contract.EventActivityStatusChange,
		EventData: map[string]interface{}{"activityId": fmt.Sprintf("act_%04d", n)},
	}
}

func TestPublishToAllSubscribers(t *testing.T) {
	h := NewHub()

	first, cancelFirst := h.Subscribe()
	second, cancelSecond := h.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	require.Equal(t, 2, h.Len())

	h.Publish(envelope(1))

	assert.Equal(t, envelope(1), <-first)
	assert.Equal(t, envelope(1), <-second)
}

func TestPublishPreservesOrder(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Publish(envelope(i))
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, envelope(i), <-ch)
	}
}

func TestSlowSubscriberSkippedNotBlocked(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	// Overfill the buffer; Publish must not block.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(envelope(i))
	}

	// The buffered prefix survives, the overflow is dropped.
	assert.Len(t, ch, subscriberBuffer)
	assert.Equal(t, envelope(0), <-ch)
}

func TestCancelRemovesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	cancel()
	assert.Equal(t, 0, h.Len())

	_, open := <-ch
	assert.False(t, open, "cancel closes the channel")

	// Idempotent
	cancel()
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := NewHub()
	h.Publish(envelope(1))
	assert.Equal(t, 0, h.Len())
}
