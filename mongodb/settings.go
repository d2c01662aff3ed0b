package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsCustomizer adjusts client options before the client is created.
type SettingsCustomizer func(opts *options.ClientOptions) error

// StandardSettingsCustomizer applies connection details and the pool,
// timeout, TLS and monitoring properties. A nil details falls back to the
// properties themselves, a nil monitor installs none.
func StandardSettingsCustomizer(props *Properties, details ConnectionDetails, monitor *event.CommandMonitor) SettingsCustomizer {
	if details == nil {
		details = NewPropertiesConnectionDetails(props)
	}
	return func(opts *options.ClientOptions) error {
		opts.ApplyURI(details.ConnectionString())
		if props.AppName != "" {
			opts.SetAppName(props.AppName)
		}
		if props.MaxPoolSize > 0 {
			opts.SetMaxPoolSize(props.MaxPoolSize)
		}
		if props.MinPoolSize > 0 {
			opts.SetMinPoolSize(props.MinPoolSize)
		}
		if props.ConnectTimeout > 0 {
			opts.SetConnectTimeout(props.ConnectTimeout)
		}
		if props.ServerSelectionTimeout > 0 {
			opts.SetServerSelectionTimeout(props.ServerSelectionTimeout)
		}
		tlsCfg, err := props.TLS.Build()
		if err != nil {
			return err
		}
		if tlsCfg != nil {
			opts.SetTLSConfig(tlsCfg)
		}
		if monitor != nil {
			opts.SetMonitor(monitor)
		}
		return nil
	}
}

// ClientSettings is the base client configuration. Every Build starts from
// fresh options, so one ClientSettings can feed several clients.
type ClientSettings struct {
	customizers []SettingsCustomizer
}

func NewClientSettings(customizers ...SettingsCustomizer) *ClientSettings {
	return &ClientSettings{customizers: customizers}
}

// Build applies the base customizers, then extra, and validates the result.
func (s *ClientSettings) Build(extra ...SettingsCustomizer) (*options.ClientOptions, error) {
	opts := options.Client()
	for _, c := range append(append([]SettingsCustomizer(nil), s.customizers...), extra...) {
		if err := c(opts); err != nil {
			return nil, fmt.Errorf("mongodb: customize client settings: %w", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongodb: invalid client settings: %w", err)
	}
	return opts, nil
}
