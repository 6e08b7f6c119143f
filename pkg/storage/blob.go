package storage

import (
	"io"
	"path"
	"strings"
)

// Blob is an image payload on its way to a blob store.
type Blob struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// BlobRef identifies a stored image: the public URL kept on the student record
// and the store-specific id needed to delete it.
type BlobRef struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// lastSegmentWithoutExt returns the final path element of rawURL stripped of its extension.
func lastSegmentWithoutExt(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	base := path.Base(trimmed)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
