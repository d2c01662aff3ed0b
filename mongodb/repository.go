package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is a typed collection of entities of type T.
type Repository[T any] struct {
	template *Template
	entity   *PersistentEntity
}

// NewRepository binds T to the template. T must be a struct type.
func NewRepository[T any](template *Template) (*Repository[T], error) {
	e, err := template.converter.mapping.Entity(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	return &Repository[T]{template: template, entity: e}, nil
}

func (r *Repository[T]) Entity() *PersistentEntity { return r.entity }

func (r *Repository[T]) Template() *Template { return r.template }

func (r *Repository[T]) Collection() *mongo.Collection {
	return r.template.Collection(r.entity.Collection)
}

// Save inserts or replaces entity. A generated id is written back.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	return r.template.Save(ctx, entity)
}

// FindByID returns the entity with id or a NOT_FOUND error.
func (r *Repository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	var v T
	if err := r.template.FindByID(ctx, id, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository[T]) FindAll(ctx context.Context, opts ...*options.FindOptions) ([]T, error) {
	return r.FindBy(ctx, bson.D{}, opts...)
}

func (r *Repository[T]) FindBy(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	out := []T{}
	if err := r.template.Find(ctx, filter, &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.template.Count(ctx, r.entity.Collection, bson.D{})
}

func (r *Repository[T]) ExistsByID(ctx context.Context, id any) (bool, error) {
	n, err := r.template.Collection(r.entity.Collection).
		CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, FromMongo(err, r.entity.Collection)
	}
	return n > 0, nil
}

func (r *Repository[T]) DeleteByID(ctx context.Context, id any) error {
	_, err := r.template.Delete(ctx, r.entity.Collection, bson.D{{Key: "_id", Value: id}})
	return err
}
