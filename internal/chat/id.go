package chat

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces unique identifiers for threads and messages.
// It is a capability so tests can supply deterministic ids.
type IDGenerator interface {
	NewID() string
}

// Generator issues ids from a monotonic counter plus a random suffix, so
// ids created by one process sort in creation order while staying
// globally unique across processes.
type Generator struct {
	counter atomic.Uint64
}

// Compile-time check that Generator implements IDGenerator.
var _ IDGenerator = (*Generator)(nil)

// NewGenerator creates a new id generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewID returns the next identifier.
func (g *Generator) NewID() string {
	n := g.counter.Add(1)
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("chat_%d_%s", n, suffix)
}
