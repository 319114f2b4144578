package testfixtures

import (
	"strconv"
	"sync"
)

// IDGenerator yields predictable identifiers ("id-1", "id-2", ...) and keeps
// the issued values so tests can assert on what a service created.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued []string
}

// NewIDGenerator returns a generator for prefix, defaulting to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next issues the next identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.prefix + "-" + strconv.Itoa(len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// NextFunc adapts Next to the func() string dependency services take.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued returns every identifier handed out so far, oldest first.
func (g *IDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
