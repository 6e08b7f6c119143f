package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/escolinha-api/internal/models"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/export"
)

var rosterExportHeaders = []string{
	"Nome",
	"Data de Nascimento",
	"Gênero",
	"Categoria",
	"Pagamento",
	"Responsável",
	"CPF do Responsável",
	"Mãe",
	"Contato 1",
	"Contato 2",
}

type rosterLister interface {
	ListAll(ctx context.Context) ([]models.Student, bool, error)
}

// ExportFile is a rendered roster document ready to be downloaded.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the roster as CSV, PDF or XLSX.
type ExportService struct {
	roster rosterLister
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(roster rosterLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{roster: roster, logger: logger, now: time.Now}
}

// ExportRoster renders every student in the requested format.
func (s *ExportService) ExportRoster(ctx context.Context, format string) (*ExportFile, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Formato de exportação inválido.")
	}

	students, _, err := s.roster.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	content, err := renderer.Render(rosterDataset(students))
	if err != nil {
		s.logger.Error("roster export failed", zap.String("format", renderer.Extension()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Falha ao gerar a exportação.")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("alunos-%s.%s", s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

func rosterDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		birth := ""
		if !st.DataNascimento.IsZero() {
			birth = st.DataNascimento.UTC().Format("02/01/2006")
		}
		rows = append(rows, map[string]string{
			"Nome":               st.NomeCompleto,
			"Data de Nascimento": birth,
			"Gênero":             st.Genero,
			"Categoria":          string(dashboardCategory(st)),
			"Pagamento":          string(st.StatusPagamento),
			"Responsável":        st.NomeResponsavel,
			"CPF do Responsável": st.CPFResponsavel,
			"Mãe":                st.NomeMae,
			"Contato 1":          st.Contato1,
			"Contato 2":          st.Contato2,
		})
	}
	return export.Dataset{Title: "Alunos da Escolinha", Headers: rosterExportHeaders, Rows: rows}
}
