package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBlobNotFound is returned when a photo id does not exist in the store.
var ErrBlobNotFound = errors.New("blob not found")

const photoBucket = "fotos"

// GridFSStore keeps photos inside MongoDB and serves them through the public photo route.
type GridFSStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

// PhotoFile is an open GridFS download.
type PhotoFile struct {
	io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// NewGridFSStore opens the photo bucket. baseURL is the public prefix photos are served
// under, e.g. https://host/api/fotos.
func NewGridFSStore(db *mongo.Database, baseURL string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(photoBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, baseURL: baseURL}, nil
}

// Upload streams the image into GridFS. The folder is kept as metadata.
func (s *GridFSStore) Upload(ctx context.Context, blob Blob, folder string) (BlobRef, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: blob.ContentType},
		{Key: "folder", Value: folder},
	})
	stream, err := s.bucket.OpenUploadStream(blob.Filename, opts)
	if err != nil {
		return BlobRef{}, fmt.Errorf("gridfs open upload: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, blob.Content); err != nil {
		_ = stream.Abort()
		return BlobRef{}, fmt.Errorf("gridfs copy: %w", err)
	}
	if err := stream.Close(); err != nil {
		return BlobRef{}, fmt.Errorf("gridfs close upload: %w", err)
	}

	fileID, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return BlobRef{}, fmt.Errorf("gridfs upload: unexpected file id type %T", stream.FileID)
	}
	id := fileID.Hex()
	return BlobRef{URL: s.baseURL + "/" + id, ID: id}, nil
}

// Delete removes the stored photo. A missing file is not an error.
func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("gridfs delete: invalid id %q", id)
	}
	if err := s.bucket.DeleteContext(ctx, oid); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("gridfs delete %s: %w", id, err)
	}
	return nil
}

// IDFromURL returns the file id embedded as the last segment of a photo URL.
func (s *GridFSStore) IDFromURL(rawURL string) string {
	return lastSegmentWithoutExt(rawURL)
}

// Open starts a download of the photo with the given id. The caller must close it.
func (s *GridFSStore) Open(ctx context.Context, id string) (*PhotoFile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBlobNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("gridfs open download: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	photo := &PhotoFile{ReadCloser: stream, Filename: file.Name, Size: file.Length}
	if len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			photo.ContentType = ct
		}
	}
	if photo.ContentType == "" {
		photo.ContentType = "application/octet-stream"
	}
	return photo, nil
}
