package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kbukum/multimongo/errors"
)

// ConnectFunc creates a client from options.
type ConnectFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// DefaultConnect is mongo.Connect. It does not wait for a server.
func DefaultConnect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

// ClientFactory creates clients from settings plus its own customizers.
type ClientFactory struct {
	connect     ConnectFunc
	customizers []SettingsCustomizer
}

// NewClientFactory returns a factory; a nil connect uses DefaultConnect.
func NewClientFactory(connect ConnectFunc, customizers ...SettingsCustomizer) *ClientFactory {
	if connect == nil {
		connect = DefaultConnect
	}
	return &ClientFactory{connect: connect, customizers: customizers}
}

// Create builds options from settings and the factory customizers and
// connects.
func (f *ClientFactory) Create(ctx context.Context, settings *ClientSettings) (*mongo.Client, error) {
	if settings == nil {
		settings = NewClientSettings()
	}
	opts, err := settings.Build(f.customizers...)
	if err != nil {
		return nil, errors.InvalidConfig("client_settings", err.Error()).WithCause(err)
	}
	client, err := f.connect(ctx, opts)
	if err != nil {
		return nil, errors.ConnectionFailed("mongodb").WithCause(err)
	}
	return client, nil
}

// Ping checks the primary of the deployment.
func Ping(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return FromMongo(err, "mongodb")
	}
	return nil
}

// Disconnect closes a client. It matches the destroy signature of bean
// definitions.
func Disconnect(ctx context.Context, instance any) error {
	client, ok := instance.(*mongo.Client)
	if !ok || client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
