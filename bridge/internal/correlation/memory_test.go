package correlation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

func testContext() contract.CorrelationContext {
	return contract.CorrelationContext{
		CampaignID:      "camp-001",
		ExperimentRunID: "run-042",
		TraceID:         "trace-abc",
	}
}

func TestMemoryStoreGetMiss(t *testing.T) {
	store := NewMemoryStore()

	cc, err := store.Get(context.Background(), "act_0001")
	require.NoError(t, err, "a miss is not an error")
	assert.Nil(t, cc)
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "act_0001", testContext()))

	cc, err := store.Get(ctx, "act_0001")
	require.NoError(t, err)
	require.NotNil(t, cc)
	assert.Equal(t, testContext(), *cc)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "act_0001", testContext()))

	first, err := store.Get(ctx, "act_0001")
	require.NoError(t, err)
	first.CampaignID = "mutated"

	second, err := store.Get(ctx, "act_0001")
	require.NoError(t, err)
	assert.Equal(t, "camp-001", second.CampaignID)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "act_0001", testContext())
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, "act_0001")
		}()
	}
	wg.Wait()
}
