package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/config"
	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/mongodb"
	"github.com/kbukum/multimongo/multimongo"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	container       di.Container
	props           config.Properties
	gracefulTimeout *time.Duration
	summaryOut      io.Writer
	multimongo      []multimongo.Option
	components      []mongodb.ComponentOption
	engine          []autoconfig.Option
	configurations  []*autoconfig.Configuration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. By default it is initialized from
// the Logging section of the config.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds the shutdown sequence.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = &d }
}

// WithContainer sets the container beans are registered in.
func WithContainer(c di.Container) Option {
	return func(o *appOptions) { o.container = c }
}

// WithProperties sets the properties conditions and beans are bound from.
func WithProperties(p config.Properties) Option {
	return func(o *appOptions) { o.props = p }
}

// WithMultiMongo passes install options to multimongo.Install.
func WithMultiMongo(opts ...multimongo.Option) Option {
	return func(o *appOptions) { o.multimongo = append(o.multimongo, opts...) }
}

// WithComponentOptions applies options to every connection component.
func WithComponentOptions(opts ...mongodb.ComponentOption) Option {
	return func(o *appOptions) { o.components = append(o.components, opts...) }
}

// WithEngineOptions configures the auto-configuration engine.
func WithEngineOptions(opts ...autoconfig.Option) Option {
	return func(o *appOptions) { o.engine = append(o.engine, opts...) }
}

// WithConfigurations registers application configurations next to the
// MongoDB ones. They take part in ordering and condition evaluation.
func WithConfigurations(cfgs ...*autoconfig.Configuration) Option {
	return func(o *appOptions) { o.configurations = append(o.configurations, cfgs...) }
}

// WithSummaryOutput sets where the startup summary is printed.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
