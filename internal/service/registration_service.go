package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/escolinha-api/internal/dto"
	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/repository"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/storage"
)

const (
	msgMissingFields     = "Por favor, preencha todos os campos obrigatórios."
	msgInvalidCategory   = "Data de nascimento inválida ou fora das categorias mapeadas (2010-2020) para o gênero informado."
	msgDuplicateStudent  = "Aluno já cadastrado com os dados fornecidos."
	msgStudentNotFound   = "Aluno não encontrado."
	msgPhotoUploadFailed = "Falha ao enviar a foto do aluno."
	msgPhotoStoreMissing = "Erro de configuração do servidor: armazenamento de fotos indisponível."
)

type studentRepository interface {
	Insert(ctx context.Context, student *models.Student) error
	FindAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateByID(ctx context.Context, id string, student *models.Student) (*models.Student, error)
	DeleteByID(ctx context.Context, id string) (*models.Student, error)
}

// RegistrationService handles public student sign-ups.
type RegistrationService struct {
	repo      studentRepository
	photos    *PhotoUploader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService. photos may be nil when uploads are disabled.
func NewRegistrationService(repo studentRepository, photos *PhotoUploader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, photos: photos, cache: cache, validator: validate, logger: logger}
}

// Register validates the form, assigns the category and persists a new pending student.
// The spooled photo is always released, whatever the outcome.
func (s *RegistrationService) Register(ctx context.Context, req dto.RegisterStudentRequest, photo *PhotoUpload) (*models.Student, error) {
	defer s.photos.Release(photo)

	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgMissingFields)
	}

	birthDate, err := ParseBirthDate(req.DataNascimento)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgInvalidCategory)
	}
	category := ClassifyCategory(&birthDate, req.Genero)
	if !category.Enrollable() {
		return nil, appErrors.Clone(appErrors.ErrValidation, msgInvalidCategory)
	}

	student := &models.Student{
		NomeCompleto:    req.NomeCompleto,
		DataNascimento:  birthDate,
		Genero:          req.Genero,
		NomeResponsavel: req.NomeResponsavel,
		CPFResponsavel:  req.CPFResponsavel,
		NomeMae:         req.NomeMae,
		Contato1:        req.Contato1,
		Contato2:        req.Contato2,
		Categoria:       category,
		StatusPagamento: models.PaymentPending,
	}

	var uploaded *storage.BlobRef
	if photo != nil {
		if !s.photos.Available() {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, msgPhotoStoreMissing)
		}
		ref, err := s.photos.Upload(ctx, photo)
		if err != nil {
			s.logger.Error("photo upload failed", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msgPhotoUploadFailed)
		}
		uploaded = &ref
		student.Foto = ref.URL
	}

	if err := s.repo.Insert(ctx, student); err != nil {
		if uploaded != nil {
			s.photos.Discard(ctx, *uploaded)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgDuplicateStudent)
		}
		s.logger.Error("failed to insert student", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Erro ao cadastrar aluno.")
	}

	invalidateRoster(ctx, s.cache)
	s.logger.Info("student registered",
		zap.String("student_id", student.ID),
		zap.String("category", string(student.Categoria)),
	)
	return student, nil
}
