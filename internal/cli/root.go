package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/multimongo/bootstrap"
	"github.com/kbukum/multimongo/config"
	"github.com/kbukum/multimongo/multimongo"
	"github.com/kbukum/multimongo/server"
)

// AppConfig is the configuration of the multimongo binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config `yaml:"server" mapstructure:"server"`
}

func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	service     string
	configFile  string
	envFile     string
	sets        []string
	withoutCaps []string
	props       *config.ViperProperties
	cfg         *AppConfig
}

// NewRootCommand builds the multimongo command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "multimongo",
		Short: "Multi-connection MongoDB auto-configuration",
		Long: `multimongo configures up to three MongoDB connections (primary, secondary,
tertiary) plus a default fallback from the multimongo.* and mongodb.* properties.

Use it to inspect which configurations and beans a set of properties
activates, to ping the configured deployments or to serve the operational
HTTP endpoints.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return o.load()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&o.service, "service", "multimongo", "service name used to locate config and .env files")
	flags.StringVar(&o.configFile, "config", "", "config file (default: searched next to the binary and in ./config)")
	flags.StringVar(&o.envFile, "env-file", "", ".env file to load before reading the environment")
	flags.StringArrayVar(&o.sets, "set", nil, "override a property, e.g. --set multimongo.primary.uri=mongodb://db1/app")
	flags.StringSliceVar(&o.withoutCaps, "without", nil, "capabilities to treat as missing: "+multimongo.CapabilityDriver+", "+multimongo.CapabilityReactive)

	root.AddCommand(
		newReportCommand(o),
		newPingCommand(o),
		newServeCommand(o),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) load() error {
	opts := []config.LoaderOption{
		config.WithDefaults(map[string]any{"logging.output": "stderr"}),
	}
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		opts = append(opts, config.WithEnvFile(o.envFile))
	}

	props, err := config.LoadProperties(o.service, opts...)
	if err != nil {
		return err
	}
	for _, s := range o.sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return fmt.Errorf("--set %q: expected key=value", s)
		}
		props.Viper().Set(strings.TrimSpace(key), value)
	}

	cfg := &AppConfig{}
	if err := props.UnmarshalAll(cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = o.service
	}
	o.props, o.cfg = props, cfg
	return nil
}

func (o *rootOptions) newApp(extra ...bootstrap.Option) (*bootstrap.App[*AppConfig], error) {
	mm := make([]multimongo.Option, 0, len(o.withoutCaps))
	for _, c := range o.withoutCaps {
		switch c {
		case multimongo.CapabilityDriver, multimongo.CapabilityReactive:
			mm = append(mm, multimongo.WithoutCapability(c))
		default:
			return nil, fmt.Errorf("--without %q: unknown capability", c)
		}
	}
	opts := append([]bootstrap.Option{
		bootstrap.WithProperties(o.props),
		bootstrap.WithMultiMongo(mm...),
	}, extra...)
	return bootstrap.NewApp(o.cfg, opts...)
}
