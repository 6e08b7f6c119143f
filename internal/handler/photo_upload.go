package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escolinha-api/internal/service"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
)

const photoField = "foto"

var allowedPhotoExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

type photoSpooler interface {
	SaveStream(originalName string, r io.Reader) (string, int64, error)
}

// PhotoPolicy bounds the photos accepted at the HTTP boundary.
type PhotoPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// spoolPhoto validates the optional "foto" part and spools it to disk.
// It returns nil when the request carries no photo.
func spoolPhoto(c *gin.Context, spool photoSpooler, policy PhotoPolicy) (*service.PhotoUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	header, err := c.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Não foi possível ler a foto enviada.")
	}

	if _, ok := allowedPhotoExtensions[strings.ToLower(filepath.Ext(header.Filename))]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Apenas imagens JPG, JPEG ou PNG são permitidas.")
	}
	if policy.MaxBytes > 0 && header.Size > policy.MaxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "A foto excede o tamanho máximo permitido.")
	}

	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Não foi possível ler a foto enviada.")
	}
	defer src.Close() //nolint:errcheck

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Não foi possível ler a foto enviada.")
	}
	if !mimeAllowed(detected, policy.AllowedMIMEs) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Apenas imagens JPG, JPEG ou PNG são permitidas.")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rewind upload")
	}

	if spool == nil {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "Erro de configuração do servidor: armazenamento de fotos indisponível.")
	}
	name, size, err := spool.SaveStream(header.Filename, src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to spool upload")
	}
	return &service.PhotoUpload{
		Filename:    header.Filename,
		ContentType: detected.String(),
		Size:        size,
		SpoolName:   name,
	}, nil
}

func mimeAllowed(detected *mimetype.MIME, allowed []string) bool {
	for _, candidate := range allowed {
		if detected.Is(strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
