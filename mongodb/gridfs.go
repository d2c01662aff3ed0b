package mongodb

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFsTemplate stores files in one GridFS bucket.
type GridFsTemplate struct {
	db        *mongo.Database
	bucket    string
	converter *MappingConverter
}

// NewGridFsTemplate targets details.Bucket in details.Database of factory.
func NewGridFsTemplate(factory *DatabaseFactory, converter *MappingConverter, details GridFsDetails) *GridFsTemplate {
	if details.Database == "" {
		details.Database = factory.Name()
	}
	if details.Bucket == "" {
		details.Bucket = DefaultBucket
	}
	var dbOpts []*options.DatabaseOptions
	if converter != nil {
		dbOpts = append(dbOpts, options.Database().SetRegistry(converter.Registry()))
	}
	return &GridFsTemplate{
		db:        factory.DatabaseNamed(details.Database, dbOpts...),
		bucket:    details.Bucket,
		converter: converter,
	}
}

func (t *GridFsTemplate) Bucket() string { return t.bucket }

func (t *GridFsTemplate) Database() string { return t.db.Name() }

// openBucket returns a bucket bound to the deadline of ctx. Buckets hold
// deadlines as state, so every call gets its own.
func (t *GridFsTemplate) openBucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(t.db, options.GridFSBucket().SetName(t.bucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(deadline)
		_ = b.SetWriteDeadline(deadline)
	}
	return b, nil
}

func (t *GridFsTemplate) metadata(metadata any) (any, error) {
	if metadata == nil || t.converter == nil {
		return metadata, nil
	}
	return t.converter.Write(metadata)
}

// Store uploads content under filename and returns the new file id.
func (t *GridFsTemplate) Store(ctx context.Context, content io.Reader, filename string, metadata any) (primitive.ObjectID, error) {
	b, err := t.openBucket(ctx)
	if err != nil {
		return primitive.NilObjectID, FromMongo(err, t.bucket)
	}
	meta, err := t.metadata(metadata)
	if err != nil {
		return primitive.NilObjectID, err
	}
	opts := options.GridFSUpload()
	if meta != nil {
		opts.SetMetadata(meta)
	}
	id, err := b.UploadFromStream(filename, content, opts)
	if err != nil {
		return primitive.NilObjectID, FromMongo(err, t.bucket)
	}
	return id, nil
}

// Find lists the files matching filter.
func (t *GridFsTemplate) Find(ctx context.Context, filter any) ([]gridfs.File, error) {
	b, err := t.openBucket(ctx)
	if err != nil {
		return nil, FromMongo(err, t.bucket)
	}
	cur, err := b.FindContext(ctx, orEmpty(filter))
	if err != nil {
		return nil, FromMongo(err, t.bucket)
	}
	var files []gridfs.File
	if err := cur.All(ctx, &files); err != nil {
		return nil, FromMongo(err, t.bucket)
	}
	return files, nil
}

// FindOne returns the first file named filename.
func (t *GridFsTemplate) FindOne(ctx context.Context, filename string) (*gridfs.File, error) {
	files, err := t.Find(ctx, bson.D{{Key: "filename", Value: filename}})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, FromMongo(mongo.ErrNoDocuments, t.bucket)
	}
	return &files[0], nil
}

// Open returns a reader over the file with the given id. The caller closes it.
func (t *GridFsTemplate) Open(ctx context.Context, id any) (*gridfs.DownloadStream, error) {
	b, err := t.openBucket(ctx)
	if err != nil {
		return nil, FromMongo(err, t.bucket)
	}
	ds, err := b.OpenDownloadStream(id)
	if err != nil {
		return nil, FromMongo(err, t.bucket)
	}
	return ds, nil
}

// Delete removes a file and its chunks.
func (t *GridFsTemplate) Delete(ctx context.Context, id any) error {
	b, err := t.openBucket(ctx)
	if err != nil {
		return FromMongo(err, t.bucket)
	}
	return FromMongo(b.DeleteContext(ctx, id), t.bucket)
}
