package mongodb

import (
	"context"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReactiveTemplate is the streaming counterpart of Template. Operations
// return immediately; results arrive through a Stream or a Result.
type ReactiveTemplate struct {
	template *Template
}

func NewReactiveTemplate(factory *DatabaseFactory, converter *MappingConverter) *ReactiveTemplate {
	return &ReactiveTemplate{template: NewTemplate(factory, converter)}
}

func (t *ReactiveTemplate) Database() *mongo.Database { return t.template.db }

func (t *ReactiveTemplate) Converter() *MappingConverter { return t.template.converter }

// Insert stores a new entity.
func (t *ReactiveTemplate) Insert(ctx context.Context, entity any) *Result[any] {
	return NewResult(ctx, func(ctx context.Context) (any, error) {
		return t.template.Insert(ctx, entity)
	})
}

// Save inserts or upserts an entity.
func (t *ReactiveTemplate) Save(ctx context.Context, entity any) *Result[any] {
	return NewResult(ctx, func(ctx context.Context) (any, error) {
		return entity, t.template.Save(ctx, entity)
	})
}

// Count counts the matches of filter in collection.
func (t *ReactiveTemplate) Count(ctx context.Context, collection string, filter any) *Result[int64] {
	return NewResult(ctx, func(ctx context.Context) (int64, error) {
		return t.template.Count(ctx, collection, filter)
	})
}

// Delete removes the matches of filter in collection.
func (t *ReactiveTemplate) Delete(ctx context.Context, collection string, filter any) *Result[int64] {
	return NewResult(ctx, func(ctx context.Context) (int64, error) {
		return t.template.Delete(ctx, collection, filter)
	})
}

// FindRaw streams the raw documents matching filter in collection.
func (t *ReactiveTemplate) FindRaw(ctx context.Context, collection string, filter any, opts ...*options.FindOptions) *Stream[bson.Raw] {
	coll := t.template.db.Collection(collection)
	return NewStream(ctx, func(ctx context.Context, emit func(bson.Raw) bool) error {
		return streamCursor(ctx, coll, filter, opts, func(cur *mongo.Cursor) bool {
			return emit(append(bson.Raw(nil), cur.Current...))
		})
	})
}

// Find streams the entities of type T matching filter.
func Find[T any](ctx context.Context, t *ReactiveTemplate, filter any, opts ...*options.FindOptions) *Stream[T] {
	return NewStream(ctx, func(ctx context.Context, emit func(T) bool) error {
		name, err := t.template.CollectionName(reflect.TypeOf((*T)(nil)).Elem())
		if err != nil {
			return err
		}
		coll := t.template.db.Collection(name)
		var decodeErr error
		err = streamCursor(ctx, coll, filter, opts, func(cur *mongo.Cursor) bool {
			var v T
			if decodeErr = cur.Decode(&v); decodeErr != nil {
				return false
			}
			return emit(v)
		})
		if decodeErr != nil {
			return FromMongo(decodeErr, name)
		}
		return err
	})
}

func streamCursor(ctx context.Context, coll *mongo.Collection, filter any, opts []*options.FindOptions, each func(*mongo.Cursor) bool) error {
	cur, err := coll.Find(ctx, orEmpty(filter), opts...)
	if err != nil {
		return FromMongo(err, coll.Name())
	}
	defer cur.Close(context.WithoutCancel(ctx))
	for cur.Next(ctx) {
		if !each(cur) {
			return nil
		}
	}
	return FromMongo(cur.Err(), coll.Name())
}

// ChangeEvent is one change stream notification.
type ChangeEvent struct {
	OperationType string `bson:"operationType"`
	Namespace     struct {
		Database   string `bson:"db"`
		Collection string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey  bson.Raw `bson:"documentKey"`
	FullDocument bson.Raw `bson:"fullDocument"`
}

// Watch streams changes of collection until ctx is done. Full documents
// are looked up for updates.
func (t *ReactiveTemplate) Watch(ctx context.Context, collection string, pipeline any) *Stream[ChangeEvent] {
	if pipeline == nil {
		pipeline = mongo.Pipeline{}
	}
	coll := t.template.db.Collection(collection)
	return NewStream(ctx, func(ctx context.Context, emit func(ChangeEvent) bool) error {
		cs, err := coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
		if err != nil {
			return FromMongo(err, collection)
		}
		defer cs.Close(context.WithoutCancel(ctx))
		for cs.Next(ctx) {
			var ev ChangeEvent
			if err := cs.Decode(&ev); err != nil {
				return FromMongo(err, collection)
			}
			if !emit(ev) {
				return nil
			}
		}
		return FromMongo(cs.Err(), collection)
	})
}
