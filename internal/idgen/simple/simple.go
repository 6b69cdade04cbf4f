package simple

import (
	"context"
	"fmt"
	"sync"
)

// Generator hands out sequential ids with an optional prefix. The counter
// lives in memory, so ids repeat across restarts; tests rely on that.
type Generator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

func New(prefix string) *Generator {
	//nolint:exhaustruct
	return &Generator{prefix: prefix}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return fmt.Sprintf("%s%d", g.prefix, g.counter), nil
}
