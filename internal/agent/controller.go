// Package agent arbitrates between single actions, goals and behavior trees
// for one simulated agent and drives its tick loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/protocol"
	"github.com/joeycumines/aagent/internal/sensor"
	bt "github.com/joeycumines/go-behaviortree"
)

// DefaultInterval is the default tick interval.
const DefaultInterval = 10 * time.Millisecond

// ErrAgentCreate is the fatal error raised when the simulator reports that
// it could not create the agent.
var ErrAgentCreate = errors.New("agent: simulator failed to create the agent")

// Mode is what currently occupies the controller.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeAction Mode = "action"
	ModeGoal   Mode = "goal"
	ModeTree   Mode = "tree"
)

// Resolver builds fresh goal and tree instances by name.
type Resolver interface {
	Goal(name string) (behavior.Behavior, error)
	Tree(name string) (*behavior.Tree, error)
}

// Outbound delivers commands to the simulator. Send must not block for
// long; an error is treated as a fatal transport failure.
type Outbound interface {
	Send(cmd goal.Command) error
}

// OutboundFunc adapts a function to Outbound.
type OutboundFunc func(cmd goal.Command) error

func (f OutboundFunc) Send(cmd goal.Command) error { return f(cmd) }

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver attaches an observer fed through a buffer of the given size.
func WithObserver(obs Observer, buffer int) Option {
	return func(c *Controller) {
		c.obs, c.obsBuffer = obs, buffer
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithRand(r goal.Rand) Option {
	return func(c *Controller) { c.rand = r }
}

func WithTiming(t goal.Timing) Option {
	return func(c *Controller) { c.timing = t }
}

// WithID overrides the generated agent id.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithRunning starts the controller out of the on-hold state.
func WithRunning() Option {
	return func(c *Controller) { c.running = true }
}

// Controller owns one agent's percept, its command queue and at most one
// active goal or tree. Directives and ticks are serialized by a mutex;
// routine goroutines only ever read the committed percept and send
// commands, neither of which takes that mutex.
type Controller struct {
	id        string
	logger    *slog.Logger
	interval  time.Duration
	rand      goal.Rand
	timing    goal.Timing
	obs       Observer
	obsBuffer int

	store    *sensor.Store
	env      goal.Env
	resolver Resolver
	out      Outbound
	events   *dispatcher
	halted   atomic.Bool

	errMu sync.Mutex
	fatal error

	mu       sync.Mutex
	ready    bool
	running  bool
	queue    []goal.Command
	goalName string
	goalNode behavior.Behavior
	treeName string
	tree     *behavior.Tree
}

// New returns a controller for an agent with the given ray fan. resolve is
// called once with the controller's environment and returns the catalog
// directives are resolved against. The controller starts not ready and on
// hold, like the simulator.
func New(cfg sensor.Config, out Outbound, resolve func(env goal.Env) Resolver, opts ...Option) *Controller {
	c := &Controller{
		id:        uuid.NewString(),
		logger:    slog.Default(),
		interval:  DefaultInterval,
		timing:    goal.DefaultTiming(),
		obsBuffer: 256,
		store:     sensor.NewStore(cfg),
		out:       out,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rand == nil {
		c.rand = goal.NewRand(uint64(time.Now().UnixNano()))
	}
	c.logger = c.logger.With(slog.String("agent", c.id))
	if c.obs != nil {
		c.events = newDispatcher(c.obs, c.obsBuffer)
	}
	c.env = goal.NewEnv(c.store, goal.SenderFunc(c.send), c.rand, c.timing)
	c.resolver = resolve(c.env)
	return c
}

func (c *Controller) ID() string { return c.id }

// Env returns the environment handed to routines.
func (c *Controller) Env() goal.Env { return c.env }

// Percept returns the committed percept.
func (c *Controller) Percept() sensor.Percept { return c.store.Current() }

// Err returns the fatal error, if any.
func (c *Controller) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.fatal
}

// Fail records a fatal error. Commands are no longer sent and the next
// tick terminates the loop.
func (c *Controller) Fail(err error) {
	c.errMu.Lock()
	first := c.fatal == nil
	if first {
		c.fatal = err
	}
	c.errMu.Unlock()
	c.halted.Store(true)
	if first {
		c.logger.Error("agent failed", slog.Any("error", err))
		c.emit(Event{Kind: EventError, Error: err.Error()})
	}
}

// Report logs and observes a non-fatal error.
func (c *Controller) Report(err error) {
	c.logger.Warn("agent error", slog.Any("error", err))
	c.emit(Event{Kind: EventError, Error: err.Error()})
}

// Update stages a sensor update. It is committed on the next tick.
func (c *Controller) Update(u *protocol.SensorUpdate) error {
	if err := c.store.Stage(u.Rays, u.State); err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrMalformed, err)
	}
	return nil
}

// Control applies a simulation control value.
func (c *Controller) Control(v string) error {
	c.mu.Lock()
	switch v {
	case protocol.ControlReady:
		c.ready = true
	case protocol.ControlHold:
		c.running = false
	case protocol.ControlStart:
		c.running = true
	case protocol.ControlError:
		c.mu.Unlock()
		c.Fail(ErrAgentCreate)
		return ErrAgentCreate
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: control %q", ErrUnknownDirective, v)
	}
	c.mu.Unlock()
	c.logger.Debug("sim control", slog.String("control", v))
	c.emit(Event{Kind: EventControl, Control: v})
	return nil
}

// Directive parses and applies a directive. Errors leave the controller
// unchanged.
func (c *Controller) Directive(s string) error {
	d, err := ParseDirective(s)
	if err != nil {
		c.Report(err)
		return err
	}
	if err := c.Apply(d); err != nil {
		c.Report(err)
		return err
	}
	return nil
}

// Apply switches the controller according to d. Whatever occupied the
// controller before is stopped, and its routines joined, before Apply
// returns.
func (c *Controller) Apply(d Directive) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch d.Kind {
	case DirectiveAction:
		c.stopTree()
		c.stopGoal()
		c.queue = append(c.queue, goal.Command(d.Data))
	case DirectiveGoal:
		g, err := c.resolver.Goal(d.Data)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrUnknownGoal, d.Data, err)
		}
		c.queue = append(c.queue, goal.Stop, goal.StopTurning)
		c.stopTree()
		c.stopGoal()
		c.goalName, c.goalNode = d.Data, g
	case DirectiveTree:
		t, err := c.resolver.Tree(d.Data)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrUnknownTree, d.Data, err)
		}
		c.queue = append(c.queue, goal.Stop, goal.StopTurning)
		c.stopGoal()
		c.stopTree()
		c.treeName, c.tree = d.Data, t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirective, d)
	}
	c.logger.Info("directive", slog.String("directive", d.String()))
	c.emit(Event{Kind: EventDirective, Directive: d.String(), Mode: c.mode()})
	return nil
}

func (c *Controller) stopTree() {
	if c.tree == nil {
		return
	}
	c.tree.Stop()
	c.logger.Debug("tree stopped", slog.String("tree", c.treeName))
	c.tree, c.treeName = nil, ""
}

func (c *Controller) stopGoal() {
	if c.goalNode == nil {
		return
	}
	c.goalNode.Stop()
	c.logger.Debug("goal stopped", slog.String("goal", c.goalName))
	c.goalNode, c.goalName = nil, ""
}

// Step performs one controller tick: it commits the staged percept, then
// dispatches one queued action, or ticks the active goal, or ticks the
// active tree. Nothing happens before the simulator is ready, or while it
// is on hold. Step returns the fatal error once one was recorded.
func (c *Controller) Step() error {
	if err := c.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready || !c.running {
		return nil
	}
	c.store.Commit()
	var status behavior.Status
	switch {
	case len(c.queue) > 0:
		cmd := c.queue[0]
		c.queue = c.queue[1:]
		c.send(cmd)
	case c.goalNode != nil:
		status = c.goalNode.Tick()
	case c.tree != nil:
		status = c.tree.Tick()
	}
	if c.events != nil {
		p := c.store.Current()
		e := Event{
			Kind:   EventTick,
			Mode:   c.mode(),
			Goal:   c.goalName,
			Tree:   c.treeName,
			Status: status,
			Seq:    p.Seq,
			Rays:   p.Sensor.Rays(),
			State:  &p.State,
		}
		if c.tree != nil {
			e.Nodes = c.tree.Statuses()
		}
		c.emit(e)
	}
	return c.Err()
}

// Run ticks the controller at its interval until ctx is done or a fatal
// error occurs, then stops the active goal or tree and closes the
// observer. It returns the fatal error, or the context's error.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("agent started", slog.Duration("interval", c.interval))
	ticker := bt.NewTicker(ctx, c.interval, bt.New(func([]bt.Node) (bt.Status, error) {
		if err := c.Step(); err != nil {
			return bt.Failure, err
		}
		return bt.Running, nil
	}))
	<-ticker.Done()
	c.Close()
	if err := c.Err(); err != nil {
		return err
	}
	err := ticker.Err()
	c.logger.Info("agent stopped", slog.Any("error", err))
	return err
}

// Close stops the active goal or tree, drops queued actions and flushes
// the observer. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopTree()
	c.stopGoal()
	c.queue = nil
	c.mu.Unlock()
	c.events.close()
}

func (c *Controller) send(cmd goal.Command) {
	if c.halted.Load() {
		return
	}
	if err := c.out.Send(cmd); err != nil {
		c.Fail(fmt.Errorf("agent: send %q: %w", cmd, err))
		return
	}
	c.logger.Debug("command", slog.String("cmd", string(cmd)))
	c.emit(Event{Kind: EventCommand, Command: cmd})
}

func (c *Controller) emit(e Event) {
	if c.events == nil {
		return
	}
	e.Agent = c.id
	e.Time = time.Now()
	c.events.emit(e)
}

func (c *Controller) mode() Mode {
	switch {
	case c.tree != nil:
		return ModeTree
	case c.goalNode != nil:
		return ModeGoal
	case len(c.queue) > 0:
		return ModeAction
	}
	return ModeIdle
}

// Mode returns what currently occupies the controller.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode()
}

// Active returns the name of the active goal or tree, if any.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree != nil {
		return c.treeName
	}
	return c.goalName
}

// Tree returns the active tree, or nil.
func (c *Controller) Tree() *behavior.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Pending returns the queued actions.
func (c *Controller) Pending() []goal.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queue)
}

// Ticking reports whether the controller is ready and not on hold.
func (c *Controller) Ticking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready && c.running
}
