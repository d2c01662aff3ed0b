package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/multimongo/errors"
)

// Resolve resolves key and asserts its type.
//
//	client, err := di.Resolve[*mongo.Client](c, "primary_mongo_client")
func Resolve[T any](c Container, key string) (T, error) {
	instance, err := c.Resolve(key)
	return assert[T](key, instance, err)
}

// ResolveContext is Resolve with a context for context-aware constructors.
func ResolveContext[T any](ctx context.Context, c Container, key string) (T, error) {
	instance, err := c.ResolveContext(ctx, key)
	return assert[T](key, instance, err)
}

func assert[T any](key string, instance interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, fmt.Errorf("di: resolve %s: %w", key, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: component %s is %T, expected %T", key, instance, zero)
	}
	return result, nil
}

// MustResolve is Resolve that panics on failure.
func MustResolve[T any](c Container, key string) T {
	result, err := Resolve[T](c, key)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryResolve returns false when key is missing, fails to construct or has another type.
func TryResolve[T any](c Container, key string) (T, bool) {
	result, err := Resolve[T](c, key)
	return result, err == nil
}

// ResolveType returns the single component assignable to T. When several
// match, the one registered as primary wins; several or no primaries is an
// AMBIGUOUS_BEAN error.
func ResolveType[T any](c Container) (T, error) {
	var zero T
	key, err := KeyOfType[T](c)
	if err != nil {
		return zero, err
	}
	return Resolve[T](c, key)
}

// KeyOfType returns the key ResolveType would use.
func KeyOfType[T any](c Container) (string, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	keys := c.KeysOfType(t)
	switch len(keys) {
	case 0:
		return "", errors.BeanNotFound(t.String()).WithDetail("type", t.String())
	case 1:
		return keys[0], nil
	}

	var primaries []string
	for _, key := range keys {
		if c.IsPrimary(key) {
			primaries = append(primaries, key)
		}
	}
	if len(primaries) != 1 {
		return "", errors.AmbiguousBean(t.String(), keys)
	}
	return primaries[0], nil
}

// HasType reports whether any component is assignable to T.
func HasType[T any](c Container) bool {
	return len(c.KeysOfType(reflect.TypeOf((*T)(nil)).Elem())) > 0
}
