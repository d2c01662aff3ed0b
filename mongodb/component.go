package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/resilience"
)

// Component exposes one connection to the component registry. It checks
// the deployment on start and in health probes. The client itself is owned
// by the container, so Stop does not disconnect.
type Component struct {
	name     string
	client   *mongo.Client
	props    *Properties
	details  ConnectionDetails
	template *Template
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	ping     func(ctx context.Context) error
	log      *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// ComponentOption configures a Component.
type ComponentOption func(*Component)

// WithTemplate lets Start create the indexes of the template's entities
// when auto_index_creation is on.
func WithTemplate(t *Template) ComponentOption {
	return func(c *Component) { c.template = t }
}

// WithStartRetry sets the retry policy of the start-up ping.
func WithStartRetry(cfg resilience.RetryConfig) ComponentOption {
	return func(c *Component) { c.retry = cfg }
}

// WithHealthBreaker guards health pings with a circuit breaker.
func WithHealthBreaker(cfg resilience.CircuitBreakerConfig) ComponentOption {
	return func(c *Component) { c.breaker = resilience.NewCircuitBreaker(cfg) }
}

// WithPing replaces the ping used by Start and Health.
func WithPing(ping func(ctx context.Context) error) ComponentOption {
	return func(c *Component) { c.ping = ping }
}

// WithConnectionDetails sets the details shown by Describe.
func WithConnectionDetails(d ConnectionDetails) ComponentOption {
	return func(c *Component) { c.details = d }
}

// NewComponent creates a component named name for client.
func NewComponent(name string, client *mongo.Client, props *Properties, opts ...ComponentOption) *Component {
	c := &Component{
		name:   name,
		client: client,
		props:  props,
		retry:  resilience.DefaultRetryConfig(),
		log:    logger.Get("mongodb").WithComponent(name),
	}
	c.ping = func(ctx context.Context) error { return Ping(ctx, c.client) }
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig(name))
	}
	if c.details == nil {
		c.details = NewPropertiesConnectionDetails(props)
	}
	return c
}

func (c *Component) Name() string { return c.name }

func (c *Component) Client() *mongo.Client { return c.client }

// Start pings the deployment when ping_on_start is set and creates
// declared indexes when auto_index_creation is set.
func (c *Component) Start(ctx context.Context) error {
	if c.props.PingOnStart {
		start := time.Now()
		cfg := c.retry
		cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
			c.log.Warn("ping failed, retrying", logger.Fields(
				"attempt", attempt,
				logger.FieldError, err.Error(),
				"backoff", backoff.String(),
			))
		}
		if err := resilience.RetryFunc(ctx, cfg, c.ping); err != nil {
			return fmt.Errorf("%s start: %w", c.name, err)
		}
		c.log.Info("connected", logger.DurationFields("ping", time.Since(start)))
	}

	if c.props.AutoIndexCreation && c.template != nil {
		if err := c.template.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("%s index creation: %w", c.name, err)
		}
	}
	return nil
}

// Stop only logs; the client is disconnected when the container closes.
func (c *Component) Stop(_ context.Context) error {
	c.log.Debug("stopped")
	return nil
}

// Health pings through the circuit breaker.
func (c *Component) Health(ctx context.Context) component.Health {
	err := c.breaker.Execute(ctx, c.ping)
	if err != nil {
		return component.Health{
			Name:    c.name,
			Status:  component.StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return component.Health{Name: c.name, Status: component.StatusHealthy}
}

// Describe reports the seed hosts and the database.
func (c *Component) Describe() component.Description {
	hosts := Hosts(c.details.ConnectionString())
	return component.Description{
		Name:    c.name,
		Type:    "mongodb",
		Details: fmt.Sprintf("%s db=%s", strings.Join(hosts, ","), c.details.Database()),
	}
}
