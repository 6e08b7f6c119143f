package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridFSIDFromURL(t *testing.T) {
	store := &GridFSStore{baseURL: "http://localhost:5000/api/fotos"}

	assert.Equal(t, "65f1c2d3e4a5b6c7d8e9f001", store.IDFromURL("http://localhost:5000/api/fotos/65f1c2d3e4a5b6c7d8e9f001"))
	assert.Equal(t, "", store.IDFromURL(""))
}

func TestGridFSRejectsMalformedIDs(t *testing.T) {
	store := &GridFSStore{}

	assert.Error(t, store.Delete(context.Background(), "not-an-object-id"))
	assert.NoError(t, store.Delete(context.Background(), ""))

	_, err := store.Open(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}
