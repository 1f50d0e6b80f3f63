package behavior

// Behavior is a tickable node of a behavior tree.
type Behavior interface {
	Name() string
	// Status returns the status reported by the last tick, or Invalid.
	Status() Status
	// Tick advances the node once and returns its new status. It never
	// returns Invalid.
	Tick() Status
	// Stop invalidates the node. A running node runs its stop hooks,
	// children first, before Stop returns. Stopping an Invalid node is a
	// no-op.
	Stop()
	Children() []Behavior
}

// Hooks are the lifecycle callbacks of a leaf.
type Hooks interface {
	// OnStart runs on the first tick of an activation.
	OnStart()
	// OnUpdate runs on every tick and returns the node status.
	OnUpdate() Status
	// OnStop runs once when the activation ends, with the terminal status,
	// or Invalid when the node was interrupted.
	OnStop(Status)
}

// Funcs implements Hooks with optional functions. A nil Update reports
// Success.
type Funcs struct {
	Start  func()
	Update func() Status
	Stop   func(Status)
}

func (f Funcs) OnStart() {
	if f.Start != nil {
		f.Start()
	}
}

func (f Funcs) OnUpdate() Status {
	if f.Update == nil {
		return Success
	}
	return f.Update()
}

func (f Funcs) OnStop(s Status) {
	if f.Stop != nil {
		f.Stop(s)
	}
}

// Node is a leaf behavior driven by Hooks.
type Node struct {
	name   string
	hooks  Hooks
	status Status
}

var _ Behavior = (*Node)(nil)

// NewNode returns a leaf that drives hooks.
func NewNode(name string, hooks Hooks) *Node {
	return &Node{name: name, hooks: hooks}
}

func (n *Node) Name() string         { return n.name }
func (n *Node) Status() Status       { return n.status }
func (n *Node) Children() []Behavior { return nil }

func (n *Node) Tick() Status {
	if n.status != Running {
		n.hooks.OnStart()
	}
	s := n.hooks.OnUpdate()
	if s == Invalid {
		s = Failure
	}
	n.status = s
	if s != Running {
		n.hooks.OnStop(s)
	}
	return s
}

func (n *Node) Stop() {
	if n.status == Running {
		n.hooks.OnStop(Invalid)
	}
	n.status = Invalid
}

// NewCondition returns a leaf that succeeds while check holds and fails
// otherwise. It never runs.
func NewCondition(name string, check func() bool) *Node {
	return NewNode(name, Funcs{Update: func() Status {
		if check() {
			return Success
		}
		return Failure
	}})
}
