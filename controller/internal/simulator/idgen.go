package simulator

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces activity and data-product identifiers. Injected so
// tests can assert exact ids instead of pattern-matching randomness.
type IDGenerator interface {
	// NextActivityID returns a fresh activity id in the fixed act_NNNN format.
	NextActivityID() string

	// NewProductID returns a fresh data-product identifier.
	NewProductID() string
}

// SequentialIDs numbers activities act_0001, act_0002, ... and uses random
// UUIDs for data products. This matches the reference simulator wire format.
type SequentialIDs struct {
	mu   sync.Mutex
	next int
}

// NewSequentialIDs returns a generator starting at act_0001.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{next: 1}
}

func (g *SequentialIDs) NextActivityID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("act_%04d", g.next)
	g.next++
	return id
}

func (g *SequentialIDs) NewProductID() string {
	return uuid.New().String()
}
