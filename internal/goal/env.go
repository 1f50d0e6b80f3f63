package goal

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/joeycumines/aagent/internal/sensor"
)

// Env is everything a routine can reach: the committed percept, the
// outbound command channel, a random source and its timing constants.
// Implementations must be safe for concurrent use.
type Env interface {
	Percept() sensor.Percept
	Send(cmd Command)
	Rand() Rand
	Timing() Timing
}

// Rand is the subset of math/rand/v2 used by routines.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe PCG source seeded with seed.
func NewRand(seed uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// between returns a random integer in [lo, hi].
func between(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// uniform returns a random duration in [lo, hi).
func uniform(r Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.Float64()*float64(hi-lo))
}

// Timing holds the polling intervals and waits used by the routines.
type Timing struct {
	Poll         time.Duration // position and sensor polling
	TurnPoll     time.Duration // yaw polling while turning
	TurnSettle   time.Duration // pause after a completed turn
	WalkPoll     time.Duration
	IdleWait     time.Duration
	RetreatTurn  time.Duration
	RetreatMove  time.Duration
	FaceSettle   time.Duration
	RouteStart   time.Duration // grace period before walk_to reports en route
	MoveMin      time.Duration
	MoveMax      time.Duration
	StopMin      time.Duration
	StopMax      time.Duration
	AvoidTimeout time.Duration
}

// DefaultTiming returns the timings used against the real simulator.
func DefaultTiming() Timing {
	return Timing{
		Poll:         500 * time.Millisecond,
		TurnPoll:     50 * time.Millisecond,
		TurnSettle:   2 * time.Second,
		WalkPoll:     100 * time.Millisecond,
		IdleWait:     time.Second,
		RetreatTurn:  1800 * time.Millisecond,
		RetreatMove:  time.Second,
		FaceSettle:   10 * time.Millisecond,
		RouteStart:   500 * time.Millisecond,
		MoveMin:      time.Second,
		MoveMax:      3 * time.Second,
		StopMin:      500 * time.Millisecond,
		StopMax:      2 * time.Second,
		AvoidTimeout: 3 * time.Second,
	}
}

// Scaled multiplies every duration by f. A non-positive f returns t
// unchanged.
func (t Timing) Scaled(f float64) Timing {
	if f <= 0 {
		return t
	}
	s := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Timing{
		Poll:         s(t.Poll),
		TurnPoll:     s(t.TurnPoll),
		TurnSettle:   s(t.TurnSettle),
		WalkPoll:     s(t.WalkPoll),
		IdleWait:     s(t.IdleWait),
		RetreatTurn:  s(t.RetreatTurn),
		RetreatMove:  s(t.RetreatMove),
		FaceSettle:   s(t.FaceSettle),
		RouteStart:   s(t.RouteStart),
		MoveMin:      s(t.MoveMin),
		MoveMax:      s(t.MoveMax),
		StopMin:      s(t.StopMin),
		StopMax:      s(t.StopMax),
		AvoidTimeout: s(t.AvoidTimeout),
	}
}

// PerceptSource supplies committed percepts; *sensor.Store implements it.
type PerceptSource interface {
	Current() sensor.Percept
}

// Sender delivers outbound commands.
type Sender interface {
	Send(cmd Command)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(cmd Command)

func (f SenderFunc) Send(cmd Command) { f(cmd) }

type env struct {
	src    PerceptSource
	out    Sender
	rand   Rand
	timing Timing
}

// NewEnv assembles an Env from its parts.
func NewEnv(src PerceptSource, out Sender, r Rand, timing Timing) Env {
	return &env{src: src, out: out, rand: r, timing: timing}
}

func (e *env) Percept() sensor.Percept { return e.src.Current() }
func (e *env) Send(cmd Command)        { e.out.Send(cmd) }
func (e *env) Rand() Rand              { return e.rand }
func (e *env) Timing() Timing          { return e.timing }

// sleep waits for d or until ctx is done, returning ctx.Err() in the latter
// case.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
