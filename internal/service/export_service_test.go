package service

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
)

func TestExportRosterCSV(t *testing.T) {
	roster := NewRosterService(newMockStudentRepo(storedStudent()), nil, nil, zap.NewNop())
	svc := NewExportService(roster, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC) }

	file, err := svc.ExportRoster(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "alunos-20240305.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.True(t, bytes.Contains(file.Content, []byte("Lucas Lima")))
	assert.True(t, bytes.Contains(file.Content, []byte("02/03/2015")))
	assert.True(t, bytes.Contains(file.Content, []byte("Sub10")))
}

func TestExportRosterXLSXAndPDF(t *testing.T) {
	roster := NewRosterService(newMockStudentRepo(storedStudent()), nil, nil, zap.NewNop())
	svc := NewExportService(roster, zap.NewNop())

	xlsx, err := svc.ExportRoster(context.Background(), "xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx.Content)

	pdf, err := svc.ExportRoster(context.Background(), "PDF")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))
}

func TestExportRosterUnknownFormat(t *testing.T) {
	svc := NewExportService(NewRosterService(newMockStudentRepo(), nil, nil, nil), nil)

	_, err := svc.ExportRoster(context.Background(), "docx")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}
