package condition

import (
	"fmt"
	"strings"
)

// PropertyOption refines OnProperty.
type PropertyOption func(*propertyCondition)

// HavingValue requires the property to equal value, ignoring case.
func HavingValue(value string) PropertyOption {
	return func(p *propertyCondition) { p.havingValue = value }
}

// MatchIfMissing makes an absent property match.
func MatchIfMissing() PropertyOption {
	return func(p *propertyCondition) { p.matchIfMissing = true }
}

type propertyCondition struct {
	key            string
	havingValue    string
	matchIfMissing bool
}

// OnProperty matches when prefix.name is set. Without HavingValue any value
// other than "false" matches.
func OnProperty(prefix, name string, opts ...PropertyOption) Condition {
	key := name
	if prefix != "" {
		key = strings.TrimSuffix(prefix, ".") + "." + name
	}
	p := &propertyCondition{key: key}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *propertyCondition) Evaluate(ctx Context) Outcome {
	props := ctx.Properties()
	if props == nil || !props.IsSet(p.key) {
		if p.matchIfMissing {
			return match(fmt.Sprintf("property %s is not set and matches if missing", p.key))
		}
		return noMatch(fmt.Sprintf("property %s is not set", p.key))
	}

	value := props.GetString(p.key)
	if p.havingValue != "" {
		if strings.EqualFold(value, p.havingValue) {
			return match(fmt.Sprintf("property %s has value %q", p.key, p.havingValue))
		}
		return noMatch(fmt.Sprintf("property %s is %q, expected %q", p.key, value, p.havingValue))
	}
	if strings.EqualFold(value, "false") {
		return noMatch(fmt.Sprintf("property %s is false", p.key))
	}
	return match(fmt.Sprintf("property %s is set", p.key))
}

func (p *propertyCondition) String() string {
	var b strings.Builder
	b.WriteString("OnProperty(")
	b.WriteString(p.key)
	if p.havingValue != "" {
		b.WriteString("=" + p.havingValue)
	}
	if p.matchIfMissing {
		b.WriteString(", matchIfMissing")
	}
	b.WriteString(")")
	return b.String()
}
