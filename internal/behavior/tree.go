package behavior

import (
	"sync"
)

// Tree owns a root behavior and serializes ticking and stopping it.
type Tree struct {
	mu   sync.Mutex
	name string
	root Behavior
}

// NewTree returns a tree over root. Every node starts Invalid.
func NewTree(name string, root Behavior) *Tree {
	return &Tree{name: name, root: root}
}

func (t *Tree) Name() string   { return t.name }
func (t *Tree) Root() Behavior { return t.root }

// Tick ticks the root once.
func (t *Tree) Tick() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root.Tick()
}

// Stop invalidates every node, cancelling and joining every running routine
// before it returns. The tree may be ticked again afterwards and restarts
// from scratch.
func (t *Tree) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root.Stop()
}

// Status returns the root status.
func (t *Tree) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root.Status()
}

// Statuses returns the status of every node keyed by its path of names from
// the root, e.g. "BTRoam/ForwardRandom".
func (t *Tree) Statuses() map[string]Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]Status)
	var visit func(prefix string, b Behavior)
	visit = func(prefix string, b Behavior) {
		path := b.Name()
		if prefix != "" {
			path = prefix + "/" + path
		}
		out[path] = b.Status()
		for _, c := range b.Children() {
			visit(path, c)
		}
	}
	visit("", t.root)
	return out
}
