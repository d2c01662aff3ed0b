package mongodb

import "context"

// Stream delivers items produced in the background. Items is closed when
// the producer finishes; Err is valid after that.
type Stream[T any] struct {
	items chan T
	done  chan struct{}
	err   error
}

// NewStream runs produce in a goroutine. emit blocks until the item is
// taken and returns false once ctx is done, at which point produce should
// return.
func NewStream[T any](ctx context.Context, produce func(ctx context.Context, emit func(T) bool) error) *Stream[T] {
	s := &Stream[T]{items: make(chan T), done: make(chan struct{})}
	go func() {
		defer close(s.done)
		defer close(s.items)
		emit := func(v T) bool {
			select {
			case s.items <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}
		err := produce(ctx, emit)
		if err == nil {
			err = ctx.Err()
		}
		s.err = err
	}()
	return s
}

// Items returns the item channel.
func (s *Stream[T]) Items() <-chan T { return s.items }

// Err waits for the producer and returns its error.
func (s *Stream[T]) Err() error {
	<-s.done
	return s.err
}

// Collect drains the stream.
func (s *Stream[T]) Collect() ([]T, error) {
	var out []T
	for v := range s.items {
		out = append(out, v)
	}
	return out, s.Err()
}

// Result is a single value computed in the background.
type Result[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// NewResult runs fn in a goroutine.
func NewResult[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Result[T] {
	r := &Result[T]{done: make(chan struct{})}
	go func() {
		r.value, r.err = fn(ctx)
		close(r.done)
	}()
	return r
}

// Done is closed once the value is available.
func (r *Result[T]) Done() <-chan struct{} { return r.done }

// Await waits for the value or for ctx.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
