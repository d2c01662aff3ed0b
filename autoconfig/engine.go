package autoconfig

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/multimongo/condition"
	"github.com/kbukum/multimongo/config"
	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/errors"
	"github.com/kbukum/multimongo/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithCapabilities marks optional capabilities as available.
func WithCapabilities(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.capabilities[n] = true
		}
	}
}

// WithLazyInit defers bean creation to the first lookup.
func WithLazyInit() Option {
	return func(e *Engine) { e.lazy = true }
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine evaluates configurations and registers their beans in a container.
type Engine struct {
	container    di.Container
	props        config.Properties
	capabilities map[string]bool
	lazy         bool
	log          *logger.Logger

	mu        sync.Mutex
	configs   []*Configuration
	names     map[string]bool
	active    map[string]bool
	beans     []string
	report    *condition.Report
	refreshed bool
}

var _ condition.Context = (*Engine)(nil)

// NewEngine creates an engine over container and props.
func NewEngine(container di.Container, props config.Properties, opts ...Option) *Engine {
	if props == nil {
		props = config.NewProperties(nil)
	}
	e := &Engine{
		container:    container,
		props:        props,
		capabilities: make(map[string]bool),
		log:          logger.Get("autoconfig"),
		names:        make(map[string]bool),
		active:       make(map[string]bool),
		report:       condition.NewReport(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds configurations. Names must be unique.
func (e *Engine) Register(cfgs ...*Configuration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.refreshed {
		return errors.Conflict("engine already refreshed")
	}
	for _, c := range cfgs {
		if c.Name == "" {
			return errors.InvalidInput("configuration", "name is required")
		}
		if e.names[c.Name] {
			return errors.Conflict(fmt.Sprintf("configuration %q already registered", c.Name))
		}
		e.names[c.Name] = true
		e.configs = append(e.configs, c)
	}
	return nil
}

// AddCapability marks a capability as available. It only affects
// evaluations that happen afterwards.
func (e *Engine) AddCapability(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.capabilities[name] = true
}

// RemoveCapability marks a capability as unavailable.
func (e *Engine) RemoveCapability(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.capabilities, name)
}

// Refresh orders the configurations, registers the beans whose conditions
// match and, unless lazy initialization is on, creates them.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.refreshed {
		e.mu.Unlock()
		return errors.Conflict("engine already refreshed")
	}
	e.refreshed = true
	configs := append([]*Configuration(nil), e.configs...)
	e.mu.Unlock()

	ordered, err := Order(configs)
	if err != nil {
		return err
	}

	for _, cfg := range ordered {
		if !e.report.Record(condition.KindConfiguration, cfg.Name, "", e, cfg.Conditions) {
			e.log.Debug("configuration skipped", logger.Fields(logger.FieldConfiguration, cfg.Name))
			continue
		}
		e.setActive(cfg.Name)
		for _, def := range cfg.Beans {
			if err := e.apply(cfg, def); err != nil {
				return err
			}
		}
		e.log.Info("configuration applied", logger.Fields(logger.FieldConfiguration, cfg.Name))
	}

	if e.lazy {
		return nil
	}
	for _, name := range e.Beans() {
		if _, err := e.container.ResolveContext(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) apply(cfg *Configuration, def *BeanDefinition) error {
	conds := append(append([]condition.Condition(nil), def.Conditions...), condition.OnMissingBean(def.Name))
	if !e.report.Record(condition.KindBean, cfg.Name, def.Name, e, conds) {
		return nil
	}

	props := e.props
	factory := def.Factory
	constructor := func(ctx context.Context, c di.Container) (any, error) {
		return factory(&Beans{ctx: ctx, container: c, props: props, configuration: cfg.Name})
	}
	opts := []di.Option{di.WithSource(cfg.Name)}
	if def.Type != nil {
		opts = append(opts, di.WithType(def.Type))
	}
	if def.Primary {
		opts = append(opts, di.AsPrimary())
	}
	if def.Destroy != nil {
		opts = append(opts, di.WithDestroy(def.Destroy))
	}
	if err := e.container.RegisterLazy(def.Name, constructor, opts...); err != nil {
		return err
	}

	e.mu.Lock()
	e.beans = append(e.beans, def.Name)
	e.mu.Unlock()
	e.log.Debug("bean registered", logger.Fields(
		logger.FieldConfiguration, cfg.Name,
		logger.FieldBean, def.Name,
	))
	return nil
}

func (e *Engine) setActive(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active[name] = true
}

// Close destroys created beans in reverse creation order.
func (e *Engine) Close(ctx context.Context) error {
	return e.container.Close(ctx)
}

// Report returns the condition evaluation report.
func (e *Engine) Report() *condition.Report { return e.report }

// Active reports whether the named configuration matched.
func (e *Engine) Active(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active[name]
}

// Beans returns the names of beans registered by the engine, in order.
func (e *Engine) Beans() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.beans...)
}

// Configurations returns the registered configurations in registration order.
func (e *Engine) Configurations() []*Configuration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Configuration(nil), e.configs...)
}

// Container returns the container beans are registered in.
func (e *Engine) Container() di.Container { return e.container }

// Properties implements condition.Context.
func (e *Engine) Properties() config.Properties { return e.props }

// HasBean implements condition.Context.
func (e *Engine) HasBean(name string) bool { return e.container.Has(name) }

// BeanNamesOfType implements condition.Context.
func (e *Engine) BeanNamesOfType(t reflect.Type) []string { return e.container.KeysOfType(t) }

// HasCapability implements condition.Context.
func (e *Engine) HasCapability(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capabilities[name]
}
