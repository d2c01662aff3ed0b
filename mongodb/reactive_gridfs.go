package mongodb

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// ReactiveGridFsTemplate streams GridFS content as pooled data buffers.
type ReactiveGridFsTemplate struct {
	files   *GridFsTemplate
	buffers *BufferFactory
}

func NewReactiveGridFsTemplate(factory *DatabaseFactory, converter *MappingConverter, buffers *BufferFactory, details GridFsDetails) *ReactiveGridFsTemplate {
	if buffers == nil {
		buffers = NewBufferFactory(0)
	}
	return &ReactiveGridFsTemplate{
		files:   NewGridFsTemplate(factory, converter, details),
		buffers: buffers,
	}
}

func (t *ReactiveGridFsTemplate) Bucket() string { return t.files.Bucket() }

func (t *ReactiveGridFsTemplate) BufferFactory() *BufferFactory { return t.buffers }

// Store uploads the buffers received from content until it is closed.
// Every received buffer is released and nil buffers are skipped. The caller
// must always close content: when the upload ends early the remaining
// buffers are drained, which blocks until content is closed.
func (t *ReactiveGridFsTemplate) Store(ctx context.Context, filename string, content <-chan *DataBuffer, metadata any) *Result[primitive.ObjectID] {
	return NewResult(ctx, func(ctx context.Context) (primitive.ObjectID, error) {
		pr, pw := io.Pipe()
		go t.pump(ctx, content, pw)
		id, err := t.files.Store(ctx, pr, filename, metadata)
		pr.CloseWithError(io.ErrClosedPipe)
		return id, err
	})
}

// pump copies content into pw and drains content once it stops writing.
func (t *ReactiveGridFsTemplate) pump(ctx context.Context, content <-chan *DataBuffer, pw *io.PipeWriter) {
	defer func() {
		for b := range content {
			t.buffers.Release(b)
		}
	}()
	for {
		select {
		case b, ok := <-content:
			if !ok {
				pw.Close()
				return
			}
			if b == nil {
				continue
			}
			_, err := pw.Write(b.B)
			t.buffers.Release(b)
			if err != nil {
				return
			}
		case <-ctx.Done():
			pw.CloseWithError(ctx.Err())
			return
		}
	}
}

// Read streams the content of a file. The consumer releases each buffer
// through the template's BufferFactory.
func (t *ReactiveGridFsTemplate) Read(ctx context.Context, id any) *Stream[*DataBuffer] {
	return NewStream(ctx, func(ctx context.Context, emit func(*DataBuffer) bool) error {
		ds, err := t.files.Open(ctx, id)
		if err != nil {
			return err
		}
		defer ds.Close()
		return t.emitBuffers(ds, emit)
	})
}

func (t *ReactiveGridFsTemplate) emitBuffers(r io.Reader, emit func(*DataBuffer) bool) error {
	chunk := make([]byte, t.buffers.BufferSize())
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			b := t.buffers.Wrap(chunk[:n])
			if !emit(b) {
				t.buffers.Release(b)
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return FromMongo(err, t.files.Bucket())
		}
	}
}

// Find streams the files matching filter.
func (t *ReactiveGridFsTemplate) Find(ctx context.Context, filter any) *Stream[gridfs.File] {
	return NewStream(ctx, func(ctx context.Context, emit func(gridfs.File) bool) error {
		files, err := t.files.Find(ctx, filter)
		if err != nil {
			return err
		}
		for _, f := range files {
			if !emit(f) {
				return nil
			}
		}
		return nil
	})
}

// Delete removes a file.
func (t *ReactiveGridFsTemplate) Delete(ctx context.Context, id any) *Result[struct{}] {
	return NewResult(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.files.Delete(ctx, id)
	})
}
