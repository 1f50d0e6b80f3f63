package behavior

import (
	"slices"
)

type composite struct {
	name     string
	children []Behavior
	status   Status
}

func (c *composite) Name() string         { return c.name }
func (c *composite) Status() Status       { return c.status }
func (c *composite) Children() []Behavior { return slices.Clone(c.children) }

// stopFrom invalidates children[from:], last first.
func (c *composite) stopFrom(from int) {
	for i := len(c.children) - 1; i >= from; i-- {
		c.children[i].Stop()
	}
}

func (c *composite) Stop() {
	c.stopFrom(0)
	c.status = Invalid
}

func (c *composite) set(s Status) Status {
	c.status = s
	return s
}

// Sequence ticks its children in order until one does not succeed.
type Sequence struct {
	composite
	memory bool
	index  int
}

// NewSequence returns a sequence. With memory, a sequence that returned
// Running resumes at the running child on its next tick instead of
// re-evaluating the children before it.
func NewSequence(name string, memory bool, children ...Behavior) *Sequence {
	return &Sequence{composite: composite{name: name, children: children}, memory: memory}
}

func (s *Sequence) Tick() Status {
	start := 0
	if s.memory && s.status == Running {
		start = s.index
	}
	for i := start; i < len(s.children); i++ {
		switch s.children[i].Tick() {
		case Running:
			s.index = i
			s.stopFrom(i + 1)
			return s.set(Running)
		case Failure:
			s.index = 0
			s.stopFrom(i + 1)
			return s.set(Failure)
		}
	}
	s.index = 0
	return s.set(Success)
}

func (s *Sequence) Stop() {
	s.composite.Stop()
	s.index = 0
}

// Selector ticks its children in priority order and resolves with the
// first status that is not Failure.
type Selector struct {
	composite
}

func NewSelector(name string, children ...Behavior) *Selector {
	return &Selector{composite: composite{name: name, children: children}}
}

func (s *Selector) Tick() Status {
	for i, c := range s.children {
		if st := c.Tick(); st != Failure {
			s.stopFrom(i + 1)
			return s.set(st)
		}
	}
	return s.set(Failure)
}

// ParallelPolicy decides when a Parallel resolves.
type ParallelPolicy struct {
	// RequireAll resolves with Success once every child has succeeded in
	// the current activation; otherwise one success is enough.
	RequireAll bool
	// FailFast resolves with Failure as soon as any child fails.
	FailFast bool
	// Synchronise stops re-ticking children that already succeeded in the
	// current activation.
	Synchronise bool
}

var (
	SuccessOnAll = ParallelPolicy{RequireAll: true}
	SuccessOnOne = ParallelPolicy{}
)

// Parallel ticks every child on every tick.
type Parallel struct {
	composite
	policy    ParallelPolicy
	succeeded []bool
}

func NewParallel(name string, policy ParallelPolicy, children ...Behavior) *Parallel {
	return &Parallel{composite: composite{name: name, children: children}, policy: policy}
}

func (p *Parallel) Tick() Status {
	if len(p.children) == 0 {
		return p.set(Success)
	}
	if p.status != Running {
		p.succeeded = make([]bool, len(p.children))
	}
	failed := false
	for i, c := range p.children {
		if p.policy.Synchronise && p.succeeded[i] {
			continue
		}
		switch c.Tick() {
		case Success:
			p.succeeded[i] = true
		case Failure:
			failed = true
		}
	}
	if failed && p.policy.FailFast {
		p.stopFrom(0)
		return p.set(Failure)
	}
	n := 0
	for _, ok := range p.succeeded {
		if ok {
			n++
		}
	}
	if (p.policy.RequireAll && n == len(p.children)) || (!p.policy.RequireAll && n > 0) {
		p.stopFrom(0)
		return p.set(Success)
	}
	return p.set(Running)
}
