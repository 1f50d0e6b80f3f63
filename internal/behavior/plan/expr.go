package plan

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	pabtpkg "github.com/joeycumines/go-pabt"
)

// exprEnv exposes the fact under test as "value".
type exprEnv struct {
	Value any `expr:"value"`
}

// ExprCondition is a condition written as an expr-lang boolean expression
// over "value", e.g. `value >= 2` or `value == "Base"`.
type ExprCondition struct {
	key        any
	expression string
	program    *vm.Program
}

var _ pabtpkg.Condition = (*ExprCondition)(nil)

// NewExprCondition compiles expression for key.
func NewExprCondition(key any, expression string) (*ExprCondition, error) {
	if expression == "" {
		return nil, fmt.Errorf("plan: empty expression for key %v", key)
	}
	program, err := expr.Compile(expression,
		expr.Env(exprEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("plan: compile %q: %w", expression, err)
	}
	return &ExprCondition{key: key, expression: expression, program: program}, nil
}

func (c *ExprCondition) Key() any { return c.key }

func (c *ExprCondition) String() string { return c.expression }

// Match evaluates the expression. Evaluation errors count as not matching.
func (c *ExprCondition) Match(value any) bool {
	out, err := expr.Run(c.program, exprEnv{Value: value})
	if err != nil {
		slog.Debug("expr condition failed", "expression", c.expression, "error", err)
		return false
	}
	b, _ := out.(bool)
	return b
}
