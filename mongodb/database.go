package mongodb

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseFactory hands out databases of one client, defaulting to the
// configured database.
type DatabaseFactory struct {
	client   *mongo.Client
	database string
}

func NewDatabaseFactory(client *mongo.Client, database string) *DatabaseFactory {
	if database == "" {
		database = DefaultDatabase
	}
	return &DatabaseFactory{client: client, database: database}
}

// Database returns the default database.
func (f *DatabaseFactory) Database(opts ...*options.DatabaseOptions) *mongo.Database {
	return f.client.Database(f.database, opts...)
}

// DatabaseNamed returns another database of the same client.
func (f *DatabaseFactory) DatabaseNamed(name string, opts ...*options.DatabaseOptions) *mongo.Database {
	return f.client.Database(name, opts...)
}

func (f *DatabaseFactory) Name() string { return f.database }

func (f *DatabaseFactory) Client() *mongo.Client { return f.client }
