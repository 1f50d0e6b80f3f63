package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_MemoryResumesAtRunningChild(t *testing.T) {
	t.Parallel()

	a, pa := newScripted("a", Success)
	b, pb := newScripted("b", Running, Running, Success)
	c, pc := newScripted("c", Success)
	seq := NewSequence("seq", true, a, b, c)

	assert.Equal(t, Running, seq.Tick())
	assert.Equal(t, Running, seq.Tick())
	assert.Equal(t, Success, seq.Tick())

	assert.Equal(t, 1, pa.starts, "children before the running one are not restarted")
	assert.Equal(t, 1, pa.updates)
	assert.Equal(t, 1, pb.starts)
	assert.Equal(t, 3, pb.updates)
	assert.Equal(t, 1, pc.starts)
	assert.Equal(t, Success, seq.Status())

	// resolved: the next tick starts over
	seq.Tick()
	assert.Equal(t, 2, pa.starts)
}

func TestSequence_MemoryResetsOnFailure(t *testing.T) {
	t.Parallel()

	a, pa := newScripted("a", Success)
	b, _ := newScripted("b", Running, Failure)
	seq := NewSequence("seq", true, a, b)

	assert.Equal(t, Running, seq.Tick())
	assert.Equal(t, Failure, seq.Tick())
	seq.Tick()
	assert.Equal(t, 2, pa.starts)
}

func TestSequence_NoMemoryReevaluates(t *testing.T) {
	t.Parallel()

	a, pa := newScripted("a", Success, Success, Failure)
	b, pb := newScripted("b", Running)
	seq := NewSequence("seq", false, a, b)

	assert.Equal(t, Running, seq.Tick())
	assert.Equal(t, Running, seq.Tick())
	assert.Equal(t, 2, pa.starts, "a is re-evaluated every tick")
	assert.Equal(t, 1, pb.starts, "b keeps running")

	// a fails: b is no longer reached and must be invalidated
	assert.Equal(t, Failure, seq.Tick())
	assert.Equal(t, []Status{Invalid}, pb.stops)
	assert.Equal(t, Invalid, b.Status())
}

func TestSelector_ShortCircuits(t *testing.T) {
	t.Parallel()

	a, _ := newScripted("a", Failure)
	b, _ := newScripted("b", Running)
	c, pc := newScripted("c", Success)
	sel := NewSelector("sel", a, b, c)

	assert.Equal(t, Running, sel.Tick())
	assert.Equal(t, Running, sel.Tick())
	assert.Zero(t, pc.starts, "c is never ticked while b runs")
	assert.Zero(t, pc.updates)
}

func TestSelector_HigherPriorityPreempts(t *testing.T) {
	t.Parallel()

	high, _ := newScripted("high", Failure, Running)
	low, pl := newScripted("low", Running)
	sel := NewSelector("sel", high, low)

	assert.Equal(t, Running, sel.Tick())
	assert.Equal(t, Running, low.Status())

	assert.Equal(t, Running, sel.Tick())
	assert.Equal(t, Running, high.Status())
	assert.Equal(t, Invalid, low.Status())
	assert.Equal(t, []Status{Invalid}, pl.stops)
}

func TestSelector_AllFail(t *testing.T) {
	t.Parallel()

	a, _ := newScripted("a", Failure)
	b, _ := newScripted("b", Failure)
	assert.Equal(t, Failure, NewSelector("sel", a, b).Tick())
}

func TestParallel_SuccessOnAll(t *testing.T) {
	t.Parallel()

	a, pa := newScripted("a", Success)
	b, pb := newScripted("b", Running, Running, Success)
	par := NewParallel("par", SuccessOnAll, a, b)

	assert.Equal(t, Running, par.Tick())
	assert.Equal(t, Running, par.Tick())
	assert.Equal(t, Success, par.Tick())
	assert.Equal(t, 3, pa.starts, "without synchronise, finished children are re-ticked")
	assert.Equal(t, 1, pb.starts)
}

func TestParallel_Synchronise(t *testing.T) {
	t.Parallel()

	a, pa := newScripted("a", Success)
	b, _ := newScripted("b", Running, Success)
	par := NewParallel("par", ParallelPolicy{RequireAll: true, Synchronise: true}, a, b)

	assert.Equal(t, Running, par.Tick())
	assert.Equal(t, Success, par.Tick())
	assert.Equal(t, 1, pa.starts)
}

func TestParallel_FailureIgnoredUnlessFailFast(t *testing.T) {
	t.Parallel()

	a, _ := newScripted("a", Failure)
	b, _ := newScripted("b", Running)
	par := NewParallel("par", SuccessOnAll, a, b)
	assert.Equal(t, Running, par.Tick())
	assert.Equal(t, Running, par.Tick())

	a2, _ := newScripted("a", Failure)
	b2, pb2 := newScripted("b", Running)
	ff := NewParallel("ff", ParallelPolicy{RequireAll: true, FailFast: true}, a2, b2)
	assert.Equal(t, Failure, ff.Tick())
	assert.Equal(t, []Status{Invalid}, pb2.stops, "running children are invalidated on resolve")
}

func TestParallel_SuccessOnOne(t *testing.T) {
	t.Parallel()

	a, _ := newScripted("a", Running)
	b, _ := newScripted("b", Running, Success)
	par := NewParallel("par", SuccessOnOne, a, b)
	assert.Equal(t, Running, par.Tick())
	assert.Equal(t, Success, par.Tick())
	assert.Equal(t, Invalid, a.Status())
}

func TestComposite_StopChildrenFirst(t *testing.T) {
	t.Parallel()

	var order []string
	leaf := NewNode("leaf", Funcs{
		Update: func() Status { return Running },
		Stop:   func(Status) { order = append(order, "leaf") },
	})
	inner := NewSequence("inner", true, leaf)
	outer := NewSelector("outer", inner)

	assert.Equal(t, Running, outer.Tick())
	outer.Stop()
	assert.Equal(t, []string{"leaf"}, order)
	for _, b := range []Behavior{outer, inner, leaf} {
		assert.Equal(t, Invalid, b.Status(), b.Name())
	}
}
