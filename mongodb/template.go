package mongodb

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kbukum/multimongo/logger"
)

// Template runs entity operations against the default database of a
// database factory, converting through a MappingConverter.
type Template struct {
	factory   *DatabaseFactory
	converter *MappingConverter
	db        *mongo.Database
	log       *logger.Logger
}

func NewTemplate(factory *DatabaseFactory, converter *MappingConverter) *Template {
	return &Template{
		factory:   factory,
		converter: converter,
		db:        factory.Database(options.Database().SetRegistry(converter.Registry())),
		log:       logger.Get("mongodb"),
	}
}

func (t *Template) Database() *mongo.Database { return t.db }

func (t *Template) Converter() *MappingConverter { return t.converter }

func (t *Template) Collection(name string) *mongo.Collection { return t.db.Collection(name) }

// CollectionName returns the collection an entity value or type maps to.
func (t *Template) CollectionName(entity any) (string, error) {
	var typ reflect.Type
	if rt, ok := entity.(reflect.Type); ok {
		typ = rt
	} else {
		typ = reflect.TypeOf(entity)
	}
	e, err := t.converter.mapping.Entity(typ)
	if err != nil {
		return "", err
	}
	return e.Collection, nil
}

func (t *Template) collectionFor(entity any) (*mongo.Collection, error) {
	name, err := t.CollectionName(entity)
	if err != nil {
		return nil, err
	}
	return t.db.Collection(name), nil
}

// Insert stores a new entity and returns its id. A generated id is written
// back into a pointer argument.
func (t *Template) Insert(ctx context.Context, entity any) (any, error) {
	coll, err := t.collectionFor(entity)
	if err != nil {
		return nil, err
	}
	doc, err := t.converter.Write(entity)
	if err != nil {
		return nil, err
	}
	if _, ok := idOf(doc); !ok {
		doc = without(doc, "_id")
	}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, FromMongo(err, coll.Name())
	}
	t.converter.setID(entity, res.InsertedID)
	return res.InsertedID, nil
}

// Save inserts an entity without an id and upserts one that has an id.
func (t *Template) Save(ctx context.Context, entity any) error {
	coll, err := t.collectionFor(entity)
	if err != nil {
		return err
	}
	doc, err := t.converter.Write(entity)
	if err != nil {
		return err
	}
	id, ok := idOf(doc)
	if !ok {
		_, err := t.Insert(ctx, entity)
		return err
	}
	_, err = coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	return FromMongo(err, coll.Name())
}

// FindByID decodes the entity with the given id into out.
func (t *Template) FindByID(ctx context.Context, id any, out any) error {
	return t.FindOne(ctx, bson.D{{Key: "_id", Value: id}}, out)
}

// FindOne decodes the first match of filter into out.
func (t *Template) FindOne(ctx context.Context, filter any, out any) error {
	coll, err := t.collectionFor(out)
	if err != nil {
		return err
	}
	if err := coll.FindOne(ctx, orEmpty(filter)).Decode(out); err != nil {
		return FromMongo(err, coll.Name())
	}
	return nil
}

// Find decodes every match of filter into out, a pointer to a slice.
func (t *Template) Find(ctx context.Context, filter any, out any, opts ...*options.FindOptions) error {
	if rv := reflect.ValueOf(out); rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("mongodb: find needs a pointer to a slice, got %T", out)
	}
	coll, err := t.collectionFor(out)
	if err != nil {
		return err
	}
	cur, err := coll.Find(ctx, orEmpty(filter), opts...)
	if err != nil {
		return FromMongo(err, coll.Name())
	}
	if err := cur.All(ctx, out); err != nil {
		return FromMongo(err, coll.Name())
	}
	return nil
}

// Update applies update to every match of filter in collection and returns
// the number of modified documents.
func (t *Template) Update(ctx context.Context, collection string, filter, update any) (int64, error) {
	res, err := t.db.Collection(collection).UpdateMany(ctx, orEmpty(filter), update)
	if err != nil {
		return 0, FromMongo(err, collection)
	}
	return res.ModifiedCount, nil
}

// Delete removes every match of filter in collection.
func (t *Template) Delete(ctx context.Context, collection string, filter any) (int64, error) {
	res, err := t.db.Collection(collection).DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return 0, FromMongo(err, collection)
	}
	return res.DeletedCount, nil
}

// Count counts the matches of filter in collection.
func (t *Template) Count(ctx context.Context, collection string, filter any) (int64, error) {
	n, err := t.db.Collection(collection).CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, FromMongo(err, collection)
	}
	return n, nil
}

// EnsureIndexes creates the indexes declared on every known entity.
func (t *Template) EnsureIndexes(ctx context.Context) error {
	for _, e := range t.converter.mapping.Entities() {
		if len(e.Indexes) == 0 {
			continue
		}
		models := IndexModels(e)
		if _, err := t.db.Collection(e.Collection).Indexes().CreateMany(ctx, models); err != nil {
			return FromMongo(err, e.Collection)
		}
		t.log.Debug("indexes ensured", logger.Fields(
			logger.FieldCollection, e.Collection,
			"count", len(models),
		))
	}
	return nil
}

// IndexModels converts the index declarations of an entity.
func IndexModels(e *PersistentEntity) []mongo.IndexModel {
	models := make([]mongo.IndexModel, 0, len(e.Indexes))
	for _, idx := range e.Indexes {
		opts := options.Index()
		if idx.Unique {
			opts.SetUnique(true)
		}
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: idx.Field, Value: 1}}, Options: opts})
	}
	return models
}

func orEmpty(filter any) any {
	if filter == nil {
		return bson.D{}
	}
	return filter
}
