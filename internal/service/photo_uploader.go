package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/escolinha-api/pkg/storage"
)

type blobStore interface {
	Upload(ctx context.Context, blob storage.Blob, folder string) (storage.BlobRef, error)
	Delete(ctx context.Context, id string) error
	IDFromURL(url string) string
}

type photoSpool interface {
	Open(name string) (*os.File, error)
	Delete(name string) error
}

// PhotoUpload is a validated image spooled on disk by the HTTP layer.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	SpoolName   string
}

// PhotoUploader moves spooled photos into the blob store and removes replaced ones.
type PhotoUploader struct {
	blobs   blobStore
	spool   photoSpool
	folder  string
	metrics *MetricsService
	logger  *zap.Logger
}

// NewPhotoUploader constructs a PhotoUploader writing into folder.
func NewPhotoUploader(blobs blobStore, spool photoSpool, folder string, metrics *MetricsService, logger *zap.Logger) *PhotoUploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoUploader{blobs: blobs, spool: spool, folder: folder, metrics: metrics, logger: logger}
}

// Available reports whether a blob store is configured. Without one the
// uploader only releases spool files.
func (p *PhotoUploader) Available() bool {
	return p != nil && p.blobs != nil
}

// Upload sends the spooled photo to the blob store.
func (p *PhotoUploader) Upload(ctx context.Context, photo *PhotoUpload) (storage.BlobRef, error) {
	file, err := p.spool.Open(photo.SpoolName)
	if err != nil {
		return storage.BlobRef{}, fmt.Errorf("open spooled photo: %w", err)
	}
	defer file.Close() //nolint:errcheck

	ref, err := p.blobs.Upload(ctx, storage.Blob{
		Filename:    photo.Filename,
		ContentType: photo.ContentType,
		Content:     file,
	}, p.folder)
	p.metrics.RecordBlobOperation("upload", err)
	if err != nil {
		return storage.BlobRef{}, err
	}
	return ref, nil
}

// Release removes the spool file. It is safe to call with a nil photo.
func (p *PhotoUploader) Release(photo *PhotoUpload) {
	if p == nil || photo == nil || photo.SpoolName == "" {
		return
	}
	if err := p.spool.Delete(photo.SpoolName); err != nil {
		p.logger.Warn("failed to release spooled photo", zap.String("spool", photo.SpoolName), zap.Error(err))
	}
}

// DeleteByURL removes the blob behind a stored photo URL. Empty URLs are ignored.
func (p *PhotoUploader) DeleteByURL(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	id := p.blobs.IDFromURL(url)
	if id == "" {
		return fmt.Errorf("cannot derive blob id from %q", url)
	}
	err := p.blobs.Delete(ctx, id)
	p.metrics.RecordBlobOperation("delete", err)
	return err
}

// Discard releases a freshly uploaded blob whose record could not be persisted.
func (p *PhotoUploader) Discard(ctx context.Context, ref storage.BlobRef) {
	err := p.blobs.Delete(ctx, ref.ID)
	p.metrics.RecordBlobOperation("delete", err)
	if err != nil {
		p.logger.Warn("failed to discard orphan photo", zap.String("blob_id", ref.ID), zap.Error(err))
	}
}
