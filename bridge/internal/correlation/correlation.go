// Package correlation maps controller-local activity ids to experiment-level
// correlation contexts.
//
// The experiment orchestration layer registers a context before starting an
// activity; the bridge looks it up while processing events. Entries are
// treated as immutable once written for an activity id's lifetime, so readers
// and writers may run concurrently without coordination beyond the store's
// own locking.
package correlation

import (
	"context"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// Lookup resolves and registers correlation contexts by activity id.
// Production deployments substitute a durable store without changing the
// bridge.
type Lookup interface {
	// Get returns the context for an activity id, or nil if none is
	// registered.
	Get(ctx context.Context, activityID string) (*contract.CorrelationContext, error)

	// Set registers the context for an activity id.
	Set(ctx context.Context, activityID string, cc contract.CorrelationContext) error
}
