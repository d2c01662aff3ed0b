package multimongo

import (
	"reflect"

	"github.com/kbukum/multimongo/mongodb"
	"github.com/kbukum/multimongo/observability"
)

// RepositoryDefinition declares a repository bean for a slot.
type RepositoryDefinition struct {
	Name   string
	Type   reflect.Type
	Entity reflect.Type
	create func(*mongodb.Template) (any, error)
}

// Repository declares a *mongodb.Repository[T] registered under name.
func Repository[T any](name string) RepositoryDefinition {
	return RepositoryDefinition{
		Name:   name,
		Type:   reflect.TypeOf((*mongodb.Repository[T])(nil)),
		Entity: mongodb.TypeOf[T](),
		create: func(t *mongodb.Template) (any, error) {
			return mongodb.NewRepository[T](t)
		},
	}
}

// Option configures Install.
type Option func(*installOptions)

type slotOptions struct {
	entities     []reflect.Type
	repositories []RepositoryDefinition
	conversions  []mongodb.Conversion
	customizers  []mongodb.SettingsCustomizer
}

type installOptions struct {
	connect  mongodb.ConnectFunc
	metrics  *observability.Metrics
	disabled map[string]bool
	slots    map[Slot]*slotOptions
}

func newOptions(opts []Option) *installOptions {
	o := &installOptions{disabled: make(map[string]bool), slots: make(map[Slot]*slotOptions)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *installOptions) slot(s Slot) *slotOptions {
	so, ok := o.slots[s]
	if !ok {
		so = &slotOptions{}
		o.slots[s] = so
	}
	return so
}

// WithEntities adds entity types to the managed types of a slot.
func WithEntities(s Slot, types ...reflect.Type) Option {
	return func(o *installOptions) {
		so := o.slot(s)
		so.entities = append(so.entities, types...)
	}
}

// WithRepository declares repositories for a slot. Their entity types
// become managed types of the slot.
func WithRepository(s Slot, repos ...RepositoryDefinition) Option {
	return func(o *installOptions) {
		so := o.slot(s)
		so.repositories = append(so.repositories, repos...)
	}
}

// WithConversions adds custom conversions to a slot.
func WithConversions(s Slot, conversions ...mongodb.Conversion) Option {
	return func(o *installOptions) {
		so := o.slot(s)
		so.conversions = append(so.conversions, conversions...)
	}
}

// WithSettingsCustomizer adds client settings customizers to a slot. They
// run after the standard customizer, for the blocking and reactive client.
func WithSettingsCustomizer(s Slot, customizers ...mongodb.SettingsCustomizer) Option {
	return func(o *installOptions) {
		so := o.slot(s)
		so.customizers = append(so.customizers, customizers...)
	}
}

// WithConnect replaces the function every client factory connects with.
func WithConnect(connect mongodb.ConnectFunc) Option {
	return func(o *installOptions) { o.connect = connect }
}

// WithMetrics records command metrics of every slot.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *installOptions) { o.metrics = m }
}

// WithoutCapability keeps Install from providing a capability, which
// disables the configurations that require it.
func WithoutCapability(name string) Option {
	return func(o *installOptions) { o.disabled[name] = true }
}
