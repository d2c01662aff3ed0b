package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/kbukum/multimongo/errors"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/resilience"
)

// RegistrationMode determines when a component is constructed.
type RegistrationMode int

const (
	Eager     RegistrationMode = iota // constructed on registration
	Lazy                              // constructed on first resolve
	Singleton                         // pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Container is a registry of named singletons.
type Container interface {
	// Register registers a lazy component.
	Register(key string, constructor interface{}, opts ...Option) error
	RegisterLazy(key string, constructor interface{}, opts ...Option) error
	RegisterEager(key string, constructor interface{}, opts ...Option) error
	RegisterSingleton(key string, instance interface{}, opts ...Option) error

	// Resolve returns the instance registered under key, constructing it if needed.
	Resolve(key string) (interface{}, error)
	// ResolveContext is Resolve with a context handed to context-aware constructors.
	ResolveContext(ctx context.Context, key string) (interface{}, error)

	// Has reports whether key is registered, constructed or not.
	Has(key string) bool
	// Keys returns every registered key in registration order.
	Keys() []string
	// KeysOfType returns the keys whose registered type is assignable to t.
	KeysOfType(t reflect.Type) []string
	// IsPrimary reports whether key was registered as the primary candidate of its type.
	IsPrimary(key string) bool
	Registrations() []RegistrationInfo

	// Close destroys constructed components in reverse construction order.
	Close(ctx context.Context) error
}

// RegistrationInfo describes a registration for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Type        string
	Primary     bool
	Source      string
	Initialized bool
}

// DestroyFunc releases an instance when the container closes.
type DestroyFunc func(ctx context.Context, instance interface{}) error

// Option customizes a registration.
type Option func(*registration)

// WithType records t as the registration type instead of the type inferred
// from the constructor or instance.
func WithType(t reflect.Type) Option {
	return func(r *registration) { r.typ = t }
}

// AsPrimary marks the registration as the preferred candidate for type lookups.
func AsPrimary() Option {
	return func(r *registration) { r.primary = true }
}

// WithDestroy sets the function run on Close. Without it, instances that
// implement Close() error are closed.
func WithDestroy(fn DestroyFunc) Option {
	return func(r *registration) { r.destroy = fn }
}

// WithSource records where the registration came from, for introspection.
func WithSource(source string) Option {
	return func(r *registration) { r.source = source }
}

// WithRetry retries a failing lazy constructor with the given policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(r *registration) { r.retry = &cfg }
}

type registration struct {
	key         string
	constructor interface{}
	mode        RegistrationMode
	typ         reflect.Type
	primary     bool
	source      string
	destroy     DestroyFunc
	retry       *resilience.RetryConfig

	mu          sync.Mutex
	instance    interface{}
	initialized bool
}

// UnifiedContainer is the default Container.
type UnifiedContainer struct {
	mu      sync.RWMutex
	regs    map[string]*registration
	order   []string
	created []string
	closed  bool
	log     *logger.Logger
}

var _ Container = (*UnifiedContainer)(nil)

// NewContainer creates an empty container.
func NewContainer() *UnifiedContainer {
	return &UnifiedContainer{
		regs: make(map[string]*registration),
		log:  logger.Get("di"),
	}
}

func (c *UnifiedContainer) Register(key string, constructor interface{}, opts ...Option) error {
	return c.RegisterLazy(key, constructor, opts...)
}

func (c *UnifiedContainer) RegisterLazy(key string, constructor interface{}, opts ...Option) error {
	fnType, err := constructorType(constructor)
	if err != nil {
		return fmt.Errorf("di: register %s: %w", key, err)
	}
	reg := &registration{key: key, constructor: constructor, mode: Lazy, typ: fnType.Out(0)}
	return c.add(reg, opts)
}

func (c *UnifiedContainer) RegisterEager(key string, constructor interface{}, opts ...Option) error {
	fnType, err := constructorType(constructor)
	if err != nil {
		return fmt.Errorf("di: register %s: %w", key, err)
	}
	reg := &registration{key: key, constructor: constructor, mode: Eager, typ: fnType.Out(0)}
	if err := c.add(reg, opts); err != nil {
		return err
	}
	if _, err := c.construct(context.Background(), reg); err != nil {
		c.remove(key)
		return err
	}
	return nil
}

func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}, opts ...Option) error {
	reg := &registration{
		key:         key,
		mode:        Singleton,
		typ:         reflect.TypeOf(instance),
		instance:    instance,
		initialized: true,
	}
	return c.add(reg, opts)
}

func (c *UnifiedContainer) add(reg *registration, opts []Option) error {
	for _, opt := range opts {
		opt(reg)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("di: register %s: container is closed", reg.key)
	}
	if _, exists := c.regs[reg.key]; exists {
		return errors.Conflict(fmt.Sprintf("di: %q is already registered", reg.key)).WithDetail("bean", reg.key)
	}
	c.regs[reg.key] = reg
	c.order = append(c.order, reg.key)
	if reg.mode == Singleton && reg.destroy != nil {
		c.created = append(c.created, reg.key)
	}
	return nil
}

func (c *UnifiedContainer) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.regs, key)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
}

func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	return c.ResolveContext(context.Background(), key)
}

func (c *UnifiedContainer) ResolveContext(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	reg, ok := c.regs[key]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.BeanNotFound(key)
	}
	if reg.mode == Singleton {
		return reg.instance, nil
	}

	chain := resolutionChain(ctx)
	if slices.Contains(chain, key) {
		return nil, errors.BeanCreation(key, fmt.Errorf("circular reference: %v -> %s", chain, key))
	}
	return c.construct(withResolution(ctx, append(slices.Clone(chain), key)), reg)
}

func (c *UnifiedContainer) construct(ctx context.Context, reg *registration) (interface{}, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.initialized {
		return reg.instance, nil
	}

	call := func(ctx context.Context) (interface{}, error) {
		return c.callConstructor(ctx, reg.constructor)
	}
	var (
		instance interface{}
		err      error
	)
	if reg.retry != nil {
		instance, err = resilience.Retry(ctx, *reg.retry, call)
	} else {
		instance, err = call(ctx)
	}
	if err != nil {
		return nil, errors.BeanCreation(reg.key, err)
	}

	reg.instance = instance
	reg.initialized = true

	c.mu.Lock()
	c.created = append(c.created, reg.key)
	c.mu.Unlock()

	c.log.Debug("component initialized", logger.Fields(logger.FieldBean, reg.key, "mode", reg.mode.String()))
	return instance, nil
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// constructorType checks the supported shapes:
//
//	func() T
//	func() (T, error)
//	func(context.Context) (T, error)
//	func(Container) (T, error)
//	func(context.Context, Container) (T, error)
func constructorType(constructor interface{}) (reflect.Type, error) {
	t := reflect.TypeOf(constructor)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %T", constructor)
	}
	if t.NumOut() == 0 || t.NumOut() > 2 || (t.NumOut() == 2 && t.Out(1) != errorType) {
		return nil, fmt.Errorf("constructor must return (T) or (T, error)")
	}
	for i := 0; i < t.NumIn(); i++ {
		if in := t.In(i); in != contextType && in != containerType {
			return nil, fmt.Errorf("unsupported constructor parameter %s", in)
		}
	}
	return t, nil
}

func (c *UnifiedContainer) callConstructor(ctx context.Context, constructor interface{}) (interface{}, error) {
	fn := reflect.ValueOf(constructor)
	t := fn.Type()
	args := make([]reflect.Value, t.NumIn())
	for i := range args {
		if t.In(i) == contextType {
			args[i] = reflect.ValueOf(&ctx).Elem()
		} else {
			args[i] = reflect.ValueOf(Container(&scopedContainer{UnifiedContainer: c, ctx: ctx}))
		}
	}

	results := fn.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

func (c *UnifiedContainer) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.regs[key]
	return ok
}

func (c *UnifiedContainer) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

func (c *UnifiedContainer) KeysOfType(t reflect.Type) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var keys []string
	for _, key := range c.order {
		if rt := c.regs[key].typ; rt != nil && rt.AssignableTo(t) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *UnifiedContainer) IsPrimary(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.regs[key]
	return ok && reg.primary
}

func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mu.RLock()
	regs := make([]*registration, 0, len(c.order))
	for _, key := range c.order {
		regs = append(regs, c.regs[key])
	}
	c.mu.RUnlock()

	infos := make([]RegistrationInfo, 0, len(regs))
	for _, reg := range regs {
		info := RegistrationInfo{
			Key:     reg.key,
			Mode:    reg.mode,
			Primary: reg.primary,
			Source:  reg.source,
		}
		if reg.typ != nil {
			info.Type = reg.typ.String()
		}
		if reg.mode == Singleton {
			info.Initialized = true
		} else if reg.mu.TryLock() {
			info.Initialized = reg.initialized
			reg.mu.Unlock()
		}
		infos = append(infos, info)
	}
	return infos
}

// Close runs destroy callbacks in reverse construction order. Every
// component is attempted; the first error is returned.
func (c *UnifiedContainer) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	created := slices.Clone(c.created)
	c.mu.Unlock()

	var firstErr error
	for i := len(created) - 1; i >= 0; i-- {
		key := created[i]
		c.mu.RLock()
		reg := c.regs[key]
		c.mu.RUnlock()
		if err := destroy(ctx, reg); err != nil {
			c.log.Warn("component destroy failed", logger.Fields(logger.FieldBean, key, logger.FieldError, err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("di: destroy %s: %w", key, err)
			}
		}
	}
	return firstErr
}

func destroy(ctx context.Context, reg *registration) error {
	if reg.destroy != nil {
		return reg.destroy(ctx, reg.instance)
	}
	if closer, ok := reg.instance.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

type chainKey struct{}

func resolutionChain(ctx context.Context) []string {
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}

func withResolution(ctx context.Context, chain []string) context.Context {
	return context.WithValue(ctx, chainKey{}, chain)
}

// scopedContainer carries the resolution chain of a constructor into the
// lookups it makes, so self-references fail instead of deadlocking.
type scopedContainer struct {
	*UnifiedContainer
	ctx context.Context
}

func (s *scopedContainer) Resolve(key string) (interface{}, error) {
	return s.ResolveContext(s.ctx, key)
}
