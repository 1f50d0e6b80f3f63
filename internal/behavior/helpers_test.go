package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scripted is a Hooks implementation that replays script and records
// every call.
type scripted struct {
	starts  int
	updates int
	stops   []Status
	script  []Status
}

func (p *scripted) OnStart() { p.starts++ }

func (p *scripted) OnUpdate() Status {
	i := min(p.updates, len(p.script)-1)
	p.updates++
	return p.script[i]
}

func (p *scripted) OnStop(s Status) { p.stops = append(p.stops, s) }

func newScripted(name string, script ...Status) (*Node, *scripted) {
	p := &scripted{script: script}
	return NewNode(name, p), p
}

// tickUntil ticks b until it reports a terminal status.
func tickUntil(t *testing.T, b Behavior) Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s := b.Tick(); s.Done() {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	require.FailNow(t, "behavior did not finish", b.Name())
	return Invalid
}
