package agent

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/sensor"
)

// EventKind classifies observer events.
type EventKind string

const (
	EventTick      EventKind = "tick"
	EventDirective EventKind = "directive"
	EventCommand   EventKind = "command"
	EventControl   EventKind = "control"
	EventError     EventKind = "error"
)

// Event is what an Observer receives. Tick events carry the mode, the
// active goal or tree, its root status and the committed percept.
type Event struct {
	Agent     string                     `json:"agent"`
	Kind      EventKind                  `json:"kind"`
	Time      time.Time                  `json:"time"`
	Mode      Mode                       `json:"mode,omitempty"`
	Goal      string                     `json:"goal,omitempty"`
	Tree      string                     `json:"tree,omitempty"`
	Status    behavior.Status            `json:"status,omitempty"`
	Nodes     map[string]behavior.Status `json:"nodes,omitempty"`
	Command   goal.Command               `json:"command,omitempty"`
	Directive string                     `json:"directive,omitempty"`
	Control   string                     `json:"control,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Seq       uint64                     `json:"seq,omitempty"`
	Rays      []sensor.Ray               `json:"rays,omitempty"`
	State     *sensor.AgentState         `json:"state,omitempty"`
}

// Observer receives controller events. Observe is called from a single
// goroutine, in order.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// dispatcher delivers events to an observer through a bounded buffer. Emit
// never blocks; events that do not fit are counted and dropped.
type dispatcher struct {
	obs     Observer
	ch      chan Event
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func newDispatcher(obs Observer, size int) *dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &dispatcher{obs: obs, ch: make(chan Event, size), done: make(chan struct{})}
	go d.loop()
	return d
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for e := range d.ch {
		d.obs.Observe(e)
	}
}

func (d *dispatcher) emit(e Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.ch <- e:
	default:
		d.dropped.Add(1)
	}
}

// close drains the buffer and waits for the observer to return.
func (d *dispatcher) close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.ch)
		d.mu.Unlock()
	})
	<-d.done
}
