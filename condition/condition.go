package condition

import (
	"reflect"

	"github.com/kbukum/multimongo/config"
)

// Context is what conditions are evaluated against.
type Context interface {
	Properties() config.Properties
	// HasBean reports whether a bean is registered under name.
	HasBean(name string) bool
	// BeanNamesOfType returns the registered beans assignable to t.
	BeanNamesOfType(t reflect.Type) []string
	// HasCapability reports whether an optional capability is available.
	HasCapability(name string) bool
}

// Outcome is the result of one evaluation.
type Outcome struct {
	Match   bool   `json:"match" yaml:"match"`
	Message string `json:"message" yaml:"message"`
}

func match(msg string) Outcome   { return Outcome{Match: true, Message: msg} }
func noMatch(msg string) Outcome { return Outcome{Match: false, Message: msg} }

// Condition is a predicate over a Context.
type Condition interface {
	Evaluate(ctx Context) Outcome
	// String describes the condition, e.g. "OnProperty(multimongo.primary.uri)".
	String() string
}

// Func adapts a function into a Condition.
func Func(description string, fn func(Context) Outcome) Condition {
	return funcCondition{desc: description, fn: fn}
}

type funcCondition struct {
	desc string
	fn   func(Context) Outcome
}

func (f funcCondition) Evaluate(ctx Context) Outcome { return f.fn(ctx) }
func (f funcCondition) String() string               { return f.desc }

// Evaluate evaluates conds in order and stops at the first mismatch. The
// returned outcomes hold every evaluated condition.
func Evaluate(ctx Context, conds []Condition) (bool, []Outcome) {
	outcomes := make([]Outcome, 0, len(conds))
	for _, c := range conds {
		o := c.Evaluate(ctx)
		outcomes = append(outcomes, o)
		if !o.Match {
			return false, outcomes
		}
	}
	return true, outcomes
}
