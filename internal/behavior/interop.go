package behavior

import (
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"
)

// Adapt exposes b as a go-behaviortree node. Each bt tick ticks b once.
func Adapt(b Behavior) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		return bt.Status(b.Tick()), nil
	})
}

// FromBT wraps a go-behaviortree node as a leaf. build runs at the start of
// every activation and returns the node ticked until the activation ends.
// The bt node does not know about invalidation, so the behaviors it drives
// must be listed as owned: they are stopped whenever the activation ends. A
// bt error is logged and reported as Failure.
func FromBT(name string, build func() bt.Node, owned ...Behavior) *Node {
	var node bt.Node
	return NewNode(name, Funcs{
		Start: func() { node = build() },
		Update: func() Status {
			st, err := node.Tick()
			if err != nil {
				slog.Error("bt node failed", "node", name, "error", err)
				return Failure
			}
			switch st {
			case bt.Running:
				return Running
			case bt.Success:
				return Success
			default:
				return Failure
			}
		},
		Stop: func(Status) {
			node = nil
			for i := len(owned) - 1; i >= 0; i-- {
				owned[i].Stop()
			}
		},
	})
}
