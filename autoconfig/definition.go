package autoconfig

import (
	"context"
	"reflect"

	"github.com/kbukum/multimongo/condition"
	"github.com/kbukum/multimongo/config"
	"github.com/kbukum/multimongo/di"
)

// BeanDefinition describes one bean a configuration may contribute.
type BeanDefinition struct {
	Name        string
	Type        reflect.Type
	Primary     bool
	Conditions  []condition.Condition
	Factory     func(*Beans) (any, error)
	Destroy     func(ctx context.Context, instance any) error
	Description string
}

// Bean defines a bean of type T built by factory.
func Bean[T any](name string, factory func(*Beans) (T, error)) *BeanDefinition {
	return &BeanDefinition{
		Name: name,
		Type: reflect.TypeOf((*T)(nil)).Elem(),
		Factory: func(b *Beans) (any, error) {
			return factory(b)
		},
	}
}

// When adds activation conditions.
func (d *BeanDefinition) When(conds ...condition.Condition) *BeanDefinition {
	d.Conditions = append(d.Conditions, conds...)
	return d
}

// AsPrimary marks the bean as the preferred candidate of its type.
func (d *BeanDefinition) AsPrimary() *BeanDefinition {
	d.Primary = true
	return d
}

// PrimaryIf marks the bean primary when primary is true.
func (d *BeanDefinition) PrimaryIf(primary bool) *BeanDefinition {
	d.Primary = d.Primary || primary
	return d
}

// OnDestroy sets the function run when the engine closes.
func (d *BeanDefinition) OnDestroy(fn func(ctx context.Context, instance any) error) *BeanDefinition {
	d.Destroy = fn
	return d
}

// Describe sets a one-line description shown in listings.
func (d *BeanDefinition) Describe(text string) *BeanDefinition {
	d.Description = text
	return d
}

// Configuration is a named unit of bean definitions.
type Configuration struct {
	Name        string
	Description string
	Conditions  []condition.Condition
	// After and Before name configurations this one must follow or precede.
	// Unknown names are ignored.
	After  []string
	Before []string
	Beans  []*BeanDefinition
}

// Beans gives factories access to the container during bean creation.
type Beans struct {
	ctx           context.Context
	container     di.Container
	props         config.Properties
	configuration string
}

// Context returns the context of the refresh that creates the bean.
func (b *Beans) Context() context.Context { return b.ctx }

// Properties returns the loaded configuration.
func (b *Beans) Properties() config.Properties { return b.props }

// Container returns the container the bean is created in.
func (b *Beans) Container() di.Container { return b.container }

// Configuration returns the name of the configuration defining the bean.
func (b *Beans) Configuration() string { return b.configuration }

// Get resolves a required dependency.
func Get[T any](b *Beans, name string) (T, error) {
	return di.ResolveContext[T](b.ctx, b.container, name)
}

// Optional resolves a dependency that may be absent. A registered bean that
// fails to build is still an error.
func Optional[T any](b *Beans, name string) (T, bool, error) {
	var zero T
	if !b.container.Has(name) {
		return zero, false, nil
	}
	v, err := Get[T](b, name)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// All resolves every registered bean assignable to T in registration order.
func All[T any](b *Beans) ([]T, error) {
	keys := b.container.KeysOfType(reflect.TypeOf((*T)(nil)).Elem())
	out := make([]T, 0, len(keys))
	for _, key := range keys {
		v, err := Get[T](b, key)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
