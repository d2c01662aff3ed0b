package multimongo

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/mongodb"
)

// Client returns the blocking client of slot s.
func Client(c di.Container, s Slot) (*mongo.Client, error) {
	return di.Resolve[*mongo.Client](c, NamesFor(s).Client)
}

// Database returns the configured database of slot s.
func Database(c di.Container, s Slot) (*mongo.Database, error) {
	f, err := di.Resolve[*mongodb.DatabaseFactory](c, NamesFor(s).DatabaseFactory)
	if err != nil {
		return nil, err
	}
	return f.Database(), nil
}

// Template returns the blocking template of slot s.
func Template(c di.Container, s Slot) (*mongodb.Template, error) {
	return di.Resolve[*mongodb.Template](c, NamesFor(s).Template)
}

// TransactionManager returns the transaction manager of slot s.
func TransactionManager(c di.Container, s Slot) (*mongodb.TransactionManager, error) {
	return di.Resolve[*mongodb.TransactionManager](c, NamesFor(s).TransactionManager)
}

// GridFs returns the blocking GridFS template of slot s.
func GridFs(c di.Container, s Slot) (*mongodb.GridFsTemplate, error) {
	return di.Resolve[*mongodb.GridFsTemplate](c, NamesFor(s).GridFsTemplate)
}

// Properties returns the bound properties of slot s.
func Properties(c di.Container, s Slot) (*mongodb.Properties, error) {
	return di.Resolve[*mongodb.Properties](c, NamesFor(s).Properties)
}

// ReactiveClient returns the streaming client of slot s.
func ReactiveClient(c di.Container, s Slot) (*mongo.Client, error) {
	return di.Resolve[*mongo.Client](c, ReactiveNamesFor(s).Client)
}

// ReactiveTemplate returns the streaming template of slot s.
func ReactiveTemplate(c di.Container, s Slot) (*mongodb.ReactiveTemplate, error) {
	return di.Resolve[*mongodb.ReactiveTemplate](c, ReactiveNamesFor(s).Template)
}

// ReactiveGridFs returns the streaming GridFS template of slot s.
func ReactiveGridFs(c di.Container, s Slot) (*mongodb.ReactiveGridFsTemplate, error) {
	return di.Resolve[*mongodb.ReactiveGridFsTemplate](c, ReactiveNamesFor(s).GridFsTemplate)
}

// RepositoryOf returns the repository registered under name.
func RepositoryOf[T any](c di.Container, name string) (*mongodb.Repository[T], error) {
	return di.Resolve[*mongodb.Repository[T]](c, name)
}
