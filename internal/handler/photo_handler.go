package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/response"
	"github.com/noah-isme/escolinha-api/pkg/storage"
)

type photoOpener interface {
	Open(ctx context.Context, id string) (*storage.PhotoFile, error)
}

// PhotoHandler streams photos kept in GridFS.
type PhotoHandler struct {
	store photoOpener
}

// NewPhotoHandler constructs the handler.
func NewPhotoHandler(store photoOpener) *PhotoHandler {
	return &PhotoHandler{store: store}
}

// Show godoc
// @Summary Fetch a student photo
// @Tags Fotos
// @Produce image/jpeg
// @Produce image/png
// @Param id path string true "Photo ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /fotos/{id} [get]
func (h *PhotoHandler) Show(c *gin.Context) {
	photo, err := h.store.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Foto não encontrada."))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Falha ao carregar a foto."))
		return
	}
	defer photo.Close() //nolint:errcheck

	c.Header("Cache-Control", "public, max-age=86400")
	if photo.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(photo.Size, 10))
	}
	c.Header("Content-Type", photo.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, photo)
}
