package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/sensor"
	"gopkg.in/yaml.v3"
)

// Node kinds accepted in tree definitions.
const (
	KindSelector  = "selector"
	KindSequence  = "sequence"
	KindParallel  = "parallel"
	KindGoal      = "goal"
	KindCondition = "condition"
)

// NodeDef is one node of a YAML tree definition:
//
//	trees:
//	  Gatherer:
//	    kind: selector
//	    children:
//	      - kind: sequence
//	        memory: true
//	        children:
//	          - kind: condition
//	            expr: Sees("AlienFlower") && Count("AlienFlower") < 2
//	          - kind: goal
//	            goal: FaceFlower
//	          - kind: goal
//	            goal: WalkToFlower
//	      - kind: goal
//	        goal: Avoid
type NodeDef struct {
	Kind        string    `yaml:"kind"`
	Name        string    `yaml:"name"`
	Memory      bool      `yaml:"memory"`
	Policy      string    `yaml:"policy"` // "all" (default) or "one"
	FailFast    bool      `yaml:"fail_fast"`
	Synchronise bool      `yaml:"synchronise"`
	Goal        string    `yaml:"goal"`
	Expr        string    `yaml:"expr"`
	NeverFail   bool      `yaml:"never_fail"`
	Children    []NodeDef `yaml:"children"`
}

type treeFile struct {
	Trees map[string]NodeDef `yaml:"trees"`
}

// LoadTrees decodes and validates tree definitions.
func LoadTrees(r io.Reader) (map[string]NodeDef, error) {
	var f treeFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]NodeDef{}, nil
		}
		return nil, fmt.Errorf("catalog: decode trees: %w", err)
	}
	for name, def := range f.Trees {
		if err := validate(def, name); err != nil {
			return nil, fmt.Errorf("catalog: tree %q: %w", name, err)
		}
	}
	if f.Trees == nil {
		f.Trees = map[string]NodeDef{}
	}
	return f.Trees, nil
}

func validate(def NodeDef, path string) error {
	switch def.Kind {
	case KindSelector, KindSequence, KindParallel:
		if len(def.Children) == 0 {
			return fmt.Errorf("%s: %s without children", path, def.Kind)
		}
		if def.Kind == KindParallel && def.Policy != "" && def.Policy != "all" && def.Policy != "one" {
			return fmt.Errorf("%s: unknown parallel policy %q", path, def.Policy)
		}
		for i, child := range def.Children {
			if err := validate(child, fmt.Sprintf("%s/%d", path, i)); err != nil {
				return err
			}
		}
	case KindGoal:
		if _, ok := goals[def.Goal]; !ok {
			return fmt.Errorf("%s: %w: goal %q", path, ErrNotFound, def.Goal)
		}
	case KindCondition:
		if _, err := compileCondition(def.Expr); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unknown node kind %q", path, def.Kind)
	}
	return nil
}

func (c *Catalog) build(def NodeDef) (behavior.Behavior, error) {
	name := def.Name
	if name == "" {
		name = def.Kind
		if def.Goal != "" {
			name = def.Goal
		}
	}
	switch def.Kind {
	case KindGoal:
		mk, ok := goals[def.Goal]
		if !ok {
			return nil, fmt.Errorf("%w: goal %q", ErrNotFound, def.Goal)
		}
		b := mk(c, name)
		if def.NeverFail {
			b = neverFail(b)
		}
		return b, nil
	case KindCondition:
		prog, err := compileCondition(def.Expr)
		if err != nil {
			return nil, err
		}
		return behavior.NewCondition(name, func() bool {
			ok, err := evalCondition(prog, c.env.Percept())
			if err != nil {
				c.logger.Warn("condition failed", slog.String("node", name), slog.Any("error", err))
			}
			return ok
		}), nil
	}

	children := make([]behavior.Behavior, 0, len(def.Children))
	for _, cd := range def.Children {
		child, err := c.build(cd)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	switch def.Kind {
	case KindSelector:
		return behavior.NewSelector(name, children...), nil
	case KindSequence:
		return behavior.NewSequence(name, def.Memory, children...), nil
	case KindParallel:
		policy := behavior.ParallelPolicy{
			RequireAll:  def.Policy != "one",
			FailFast:    def.FailFast,
			Synchronise: def.Synchronise,
		}
		return behavior.NewParallel(name, policy, children...), nil
	}
	return nil, fmt.Errorf("unknown node kind %q", def.Kind)
}

// neverFailing reports Success in place of Failure.
type neverFailing struct{ behavior.Behavior }

func neverFail(b behavior.Behavior) behavior.Behavior { return neverFailing{b} }

func (n neverFailing) Tick() behavior.Status {
	if s := n.Behavior.Tick(); s != behavior.Failure {
		return s
	}
	return behavior.Success
}

func (n neverFailing) Status() behavior.Status {
	if s := n.Behavior.Status(); s != behavior.Failure {
		return s
	}
	return behavior.Success
}

// PerceptEnv is the environment of condition expressions. Besides the
// fields, expressions can call Sees(tag), Centered(tag), Count(item) and
// Distance(tag).
type PerceptEnv struct {
	Frozen   bool
	OnRoute  bool
	Location string
	Yaw      float64
	Speed    float64

	p sensor.Percept
}

func newPerceptEnv(p sensor.Percept) PerceptEnv {
	return PerceptEnv{
		Frozen:   p.State.Frozen,
		OnRoute:  p.State.OnRoute,
		Location: p.State.CurrentLocation,
		Yaw:      p.State.Yaw(),
		Speed:    p.State.Speed,
		p:        p,
	}
}

func (e PerceptEnv) Sees(tag string) bool { return e.p.Sensor.Sees(tag) }

func (e PerceptEnv) Centered(tag string) bool {
	i, ok := e.p.Sensor.Find(tag)
	return ok && i == e.p.Sensor.Center()
}

func (e PerceptEnv) Count(item string) int { return e.p.State.Count(item) }

// Distance returns the distance to the nearest-center sighting of tag, or
// -1 when it is not visible.
func (e PerceptEnv) Distance(tag string) float64 {
	i, ok := e.p.Sensor.Find(tag)
	if !ok {
		return sensor.NoDistance
	}
	return e.p.Sensor.Ray(i).Distance
}

func compileCondition(src string) (*vm.Program, error) {
	if src == "" {
		return nil, errors.New("empty condition expression")
	}
	prog, err := expr.Compile(src, expr.Env(PerceptEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return prog, nil
}

func evalCondition(prog *vm.Program, p sensor.Percept) (bool, error) {
	out, err := expr.Run(prog, newPerceptEnv(p))
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}
