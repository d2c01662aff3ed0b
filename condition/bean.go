package condition

import (
	"fmt"
	"reflect"
	"strings"
)

type beanCondition struct {
	names   []string
	missing bool
}

// OnBean matches when every named bean is registered.
func OnBean(names ...string) Condition {
	return beanCondition{names: names}
}

// OnMissingBean matches when none of the named beans is registered.
func OnMissingBean(names ...string) Condition {
	return beanCondition{names: names, missing: true}
}

func (b beanCondition) Evaluate(ctx Context) Outcome {
	var found, absent []string
	for _, n := range b.names {
		if ctx.HasBean(n) {
			found = append(found, n)
		} else {
			absent = append(absent, n)
		}
	}
	if b.missing {
		if len(found) > 0 {
			return noMatch(fmt.Sprintf("found beans %s", strings.Join(found, ", ")))
		}
		return match(fmt.Sprintf("did not find beans %s", strings.Join(b.names, ", ")))
	}
	if len(absent) > 0 {
		return noMatch(fmt.Sprintf("did not find beans %s", strings.Join(absent, ", ")))
	}
	return match(fmt.Sprintf("found beans %s", strings.Join(b.names, ", ")))
}

func (b beanCondition) String() string {
	if b.missing {
		return "OnMissingBean(" + strings.Join(b.names, ", ") + ")"
	}
	return "OnBean(" + strings.Join(b.names, ", ") + ")"
}

type typeCondition struct {
	typ     reflect.Type
	missing bool
}

// OnBeanOfType matches when a bean assignable to T is registered.
func OnBeanOfType[T any]() Condition {
	return typeCondition{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// OnMissingBeanOfType matches when no bean assignable to T is registered.
func OnMissingBeanOfType[T any]() Condition {
	return typeCondition{typ: reflect.TypeOf((*T)(nil)).Elem(), missing: true}
}

func (c typeCondition) Evaluate(ctx Context) Outcome {
	names := ctx.BeanNamesOfType(c.typ)
	switch {
	case c.missing && len(names) > 0:
		return noMatch(fmt.Sprintf("found beans of type %s: %s", c.typ, strings.Join(names, ", ")))
	case c.missing:
		return match(fmt.Sprintf("did not find any bean of type %s", c.typ))
	case len(names) == 0:
		return noMatch(fmt.Sprintf("did not find any bean of type %s", c.typ))
	default:
		return match(fmt.Sprintf("found beans of type %s: %s", c.typ, strings.Join(names, ", ")))
	}
}

func (c typeCondition) String() string {
	if c.missing {
		return fmt.Sprintf("OnMissingBeanOfType(%s)", c.typ)
	}
	return fmt.Sprintf("OnBeanOfType(%s)", c.typ)
}

type capabilityCondition struct{ name string }

// OnCapability matches when the process offers the named capability.
func OnCapability(name string) Condition {
	return capabilityCondition{name: name}
}

func (c capabilityCondition) Evaluate(ctx Context) Outcome {
	if ctx.HasCapability(c.name) {
		return match(fmt.Sprintf("capability %s is available", c.name))
	}
	return noMatch(fmt.Sprintf("capability %s is not available", c.name))
}

func (c capabilityCondition) String() string { return "OnCapability(" + c.name + ")" }
