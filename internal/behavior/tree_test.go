package behavior

import (
	"context"
	"errors"
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	leaf, p := newScripted("leaf", Running)
	tree := NewTree("t", NewSelector("root", leaf))

	assert.Equal(t, Invalid, tree.Status())
	tree.Stop()
	assert.Empty(t, p.stops)

	assert.Equal(t, Running, tree.Tick())
	tree.Stop()
	tree.Stop()
	assert.Equal(t, []Status{Invalid}, p.stops)
	assert.Equal(t, Invalid, tree.Status())

	// restarts from scratch
	assert.Equal(t, Running, tree.Tick())
	assert.Equal(t, 2, p.starts)
}

func TestTree_StopJoinsRoutines(t *testing.T) {
	t.Parallel()

	stopped := make(chan struct{}, 2)
	mk := func(name string) *Node {
		return NewRoutine(name, func(ctx context.Context) (bool, error) {
			<-ctx.Done()
			stopped <- struct{}{}
			return false, ctx.Err()
		})
	}
	tree := NewTree("t", NewParallel("par", SuccessOnAll, mk("a"), mk("b")))
	require.Equal(t, Running, tree.Tick())
	tree.Stop()
	assert.Len(t, stopped, 2)
}

func TestTree_Statuses(t *testing.T) {
	t.Parallel()

	a, _ := newScripted("a", Failure)
	b, _ := newScripted("b", Running)
	tree := NewTree("t", NewSelector("root", a, b))
	tree.Tick()
	assert.Equal(t, map[string]Status{
		"root":   Running,
		"root/a": Failure,
		"root/b": Running,
	}, tree.Statuses())
	assert.Equal(t, "t", tree.Name())
	assert.Equal(t, "root", tree.Root().Name())
}

func TestAdapt(t *testing.T) {
	t.Parallel()

	leaf, _ := newScripted("leaf", Running, Success)
	node := Adapt(leaf)
	st, err := node.Tick()
	require.NoError(t, err)
	assert.Equal(t, bt.Running, st)
	st, err = node.Tick()
	require.NoError(t, err)
	assert.Equal(t, bt.Success, st)

	// composes with go-behaviortree combinators
	f, _ := newScripted("f", Failure)
	s, _ := newScripted("s", Success)
	st, err = bt.New(bt.Selector, Adapt(f), Adapt(s)).Tick()
	require.NoError(t, err)
	assert.Equal(t, bt.Success, st)
}

func TestFromBT(t *testing.T) {
	t.Parallel()

	owned, po := newScripted("owned", Running)
	builds := 0
	wrapped := FromBT("plan", func() bt.Node {
		builds++
		return Adapt(owned)
	}, owned)

	assert.Equal(t, Running, wrapped.Tick())
	assert.Equal(t, Running, wrapped.Tick())
	assert.Equal(t, 1, builds)
	wrapped.Stop()
	assert.Equal(t, []Status{Invalid}, po.stops)
	assert.Equal(t, Invalid, owned.Status())

	assert.Equal(t, Running, wrapped.Tick())
	assert.Equal(t, 2, builds, "each activation builds a fresh node")

	failing := FromBT("bad", func() bt.Node {
		return bt.New(func([]bt.Node) (bt.Status, error) {
			return bt.Running, errors.New("broken")
		})
	})
	assert.Equal(t, Failure, failing.Tick())
}
