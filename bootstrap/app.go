package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/config"
	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/multimongo"
	"github.com/kbukum/multimongo/observability"
)

// App is a multimongo application with uniform lifecycle management. C is
// the config type; any struct embedding config.ServiceConfig satisfies it.
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithProperties(props))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is *MyConfig
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Container  di.Container
	Engine     *autoconfig.Engine
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	opts            *appOptions
	gracefulTimeout time.Duration
	prepared        bool
	shutdowns       []func(context.Context) error
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Container:       o.container,
		Components:      component.NewRegistry(),
		opts:            o,
		gracefulTimeout: 15 * time.Second,
	}
	if app.Container == nil {
		app.Container = di.NewContainer()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	props := o.props
	if props == nil {
		props = config.NewProperties(nil)
	}
	engineOpts := append([]autoconfig.Option{autoconfig.WithLogger(app.Logger.WithComponent("autoconfig"))}, o.engine...)
	app.Engine = autoconfig.NewEngine(app.Container, props, engineOpts...)
	if err := app.registerCore(props); err != nil {
		return nil, err
	}

	app.Summary = NewSummary(base.Name, base.Version)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// registerCore exposes the process-level singletons under di.Core keys.
func (a *App[C]) registerCore(props config.Properties) error {
	core := []struct {
		key      string
		instance interface{}
	}{
		{di.Core.Config, a.Cfg},
		{di.Core.Properties, props},
		{di.Core.Logger, a.Logger},
		{di.Core.Engine, a.Engine},
	}
	for _, c := range core {
		if a.Container.Has(c.key) {
			continue
		}
		if err := a.Container.RegisterSingleton(c.key, c.instance, di.WithSource("bootstrap")); err != nil {
			return fmt.Errorf("register %s: %w", c.key, err)
		}
	}
	return nil
}

// RegisterComponent adds a component to the registry. Components registered
// before Prepare start before the MongoDB connections.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, which runs once
// every connection is started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Prepare installs the MongoDB configurations, refreshes the engine and
// registers one component per active connection. It runs once; Run and
// RunTask call it.
func (a *App[C]) Prepare(ctx context.Context) error {
	if a.prepared {
		return nil
	}
	a.prepared = true

	if err := a.initObservability(ctx); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	if err := multimongo.Install(a.Engine, a.opts.multimongo...); err != nil {
		return fmt.Errorf("install multimongo: %w", err)
	}
	if len(a.opts.configurations) > 0 {
		if err := a.Engine.Register(a.opts.configurations...); err != nil {
			return fmt.Errorf("register configurations: %w", err)
		}
	}
	if err := a.Engine.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	comps, err := multimongo.Components(ctx, a.Engine, a.opts.components...)
	if err != nil {
		return fmt.Errorf("connection components: %w", err)
	}
	for _, c := range comps {
		if err := a.Components.Register(c); err != nil {
			return err
		}
	}
	a.Logger.Info("auto-configuration refreshed", logger.Fields(
		"beans", len(a.Engine.Beans()),
		"connections", len(comps),
	))
	return nil
}

func (a *App[C]) initObservability(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()
	obs := base.Observability
	id := observability.Identity{Service: base.Name, Version: base.Version, Environment: base.Environment}

	if obs.Tracing {
		tp, err := observability.InitTracer(ctx, obs, id)
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, tp.Shutdown)
	}
	if obs.Metrics {
		mp, err := observability.InitMeter(ctx, obs, id)
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, mp.Shutdown)

		metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return err
		}
		a.opts.multimongo = append(a.opts.multimongo, multimongo.WithMetrics(metrics))
	}
	return nil
}

// ReadyCheck verifies that every registered component is healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the lifecycle of a long-running service: prepare, start,
// OnStart hooks, configure, ready check, OnReady hooks, wait for a signal,
// OnStop hooks and graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask runs a finite task with the same lifecycle as Run. The task
// context is canceled on SIGINT or SIGTERM, and shutdown follows the task.
//
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return reindex(ctx, app.Container)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Prepare(ctx); err != nil {
		return a.abort(fmt.Errorf("prepare failed: %w", err))
	}
	if err := a.initialize(ctx); err != nil {
		return a.abort(fmt.Errorf("initialization failed: %w", err))
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return a.abort(fmt.Errorf("onStart hook failed: %w", err))
	}
	if err := a.configure(ctx); err != nil {
		return a.abort(fmt.Errorf("configuration failed: %w", err))
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.ErrorFields("ready_check", err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return a.abort(fmt.Errorf("onReady hook failed: %w", err))
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary(ctx)
	return nil
}

// abort releases what a failed startup already created.
func (a *App[C]) abort(err error) error {
	if stopErr := a.release(); stopErr != nil {
		a.Logger.Warn("cleanup after failed startup", logger.ErrorFields("release", stopErr))
	}
	return err
}

func (a *App[C]) initialize(ctx context.Context) error {
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	a.Logger.Info("components started", logger.Fields("count", len(a.Components.All())))
	return nil
}

// DisplaySummary prints the startup summary with live health.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	a.Summary.Display(ctx, a.Components, a.Engine)
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the shutdown sequence. Use it when managing the lifecycle
// yourself, e.g. after Prepare.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	a.Logger.Info("shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.ErrorFields("on_stop", err))
		shutdownErr = err
	}
	if err := a.releaseWith(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	a.Logger.Info("application shutdown complete")
	return shutdownErr
}

func (a *App[C]) release() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	return a.releaseWith(ctx)
}

// releaseWith stops components in reverse order, then disconnects clients
// through the engine and flushes telemetry.
func (a *App[C]) releaseWith(ctx context.Context) error {
	var firstErr error
	keep := func(op string, err error) {
		if err == nil {
			return
		}
		a.Logger.Error("shutdown step failed", logger.ErrorFields(op, err))
		if firstErr == nil {
			firstErr = err
		}
	}

	keep("stop_components", a.Components.StopAll(ctx))
	keep("close_engine", a.Engine.Close(ctx))
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		keep("telemetry", a.shutdowns[i](ctx))
	}
	a.shutdowns = nil
	return firstErr
}
