package condition

import (
	"fmt"
	"strings"
)

type allOf []Condition

// AllOf matches when every condition matches. Evaluation stops at the
// first mismatch.
func AllOf(conds ...Condition) Condition { return allOf(conds) }

func (a allOf) Evaluate(ctx Context) Outcome {
	messages := make([]string, 0, len(a))
	for _, c := range a {
		o := c.Evaluate(ctx)
		if !o.Match {
			return o
		}
		messages = append(messages, o.Message)
	}
	return match(strings.Join(messages, "; "))
}

func (a allOf) String() string { return "AllOf(" + join(a) + ")" }

type anyOf []Condition

// AnyOf matches when at least one condition matches. Evaluation stops at
// the first match.
func AnyOf(conds ...Condition) Condition { return anyOf(conds) }

func (a anyOf) Evaluate(ctx Context) Outcome {
	messages := make([]string, 0, len(a))
	for _, c := range a {
		o := c.Evaluate(ctx)
		if o.Match {
			return o
		}
		messages = append(messages, o.Message)
	}
	return noMatch(strings.Join(messages, "; "))
}

func (a anyOf) String() string { return "AnyOf(" + join(a) + ")" }

type not struct{ c Condition }

// Not inverts c.
func Not(c Condition) Condition { return not{c: c} }

func (n not) Evaluate(ctx Context) Outcome {
	o := n.c.Evaluate(ctx)
	return Outcome{Match: !o.Match, Message: fmt.Sprintf("not (%s)", o.Message)}
}

func (n not) String() string { return "Not(" + n.c.String() + ")" }

func join(conds []Condition) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
