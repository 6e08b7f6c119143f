package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/escolinha-api/internal/dto"
	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/repository"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/storage"
)

const (
	rosterCacheAllKey        = "all"
	rosterCacheCategoriesKey = "categories"
	rosterCachePattern       = "roster:*"
	rosterGenerationKey      = "roster-generation"

	// WarningPhotoCleanup flags a replaced or removed photo that stayed in the blob store.
	WarningPhotoCleanup = "PHOTO_CLEANUP_FAILED"
)

// Warning is a non-fatal problem reported alongside a successful result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StudentResult carries the affected student plus any cleanup warnings.
type StudentResult struct {
	Student  *models.Student
	Warnings []Warning
}

// CategoryChange describes how an update affects the stored category. A nil
// CategoryChange keeps the current one.
type CategoryChange interface {
	isCategoryChange()
}

// ReclassifyFromDemographics recomputes the category from the merged birth date and gender.
type ReclassifyFromDemographics struct{}

// ExplicitCategory stores the given label as is.
type ExplicitCategory struct {
	Label models.Category
}

func (ReclassifyFromDemographics) isCategoryChange() {}
func (ExplicitCategory) isCategoryChange()           {}

// CategoryChangeFor picks the category rule for an update payload. Demographic
// changes win over an explicit label.
func CategoryChangeFor(req dto.UpdateStudentRequest) CategoryChange {
	switch {
	case req.DataNascimento != "" || req.Genero != "":
		return ReclassifyFromDemographics{}
	case req.Categoria != "":
		return ExplicitCategory{Label: models.Category(req.Categoria)}
	default:
		return nil
	}
}

// RosterService serves the owner dashboard: listing, editing and removing students.
type RosterService struct {
	repo     studentRepository
	photos   *PhotoUploader
	cache    *CacheService
	logger   *zap.Logger
	classify func(birthDate *time.Time, gender string) models.Category
}

// NewRosterService constructs a RosterService.
func NewRosterService(repo studentRepository, photos *PhotoUploader, cache *CacheService, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, photos: photos, cache: cache, logger: logger, classify: ClassifyCategory}
}

// ListAll returns every stored student and whether the answer came from cache.
func (s *RosterService) ListAll(ctx context.Context) ([]models.Student, bool, error) {
	key := rosterCacheKey(ctx, s.cache, rosterCacheAllKey)
	var cached []models.Student
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	students, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Erro ao buscar alunos.")
	}
	if students == nil {
		students = []models.Student{}
	}
	s.cache.Set(ctx, key, students)
	return students, false, nil
}

// ListByCategory groups the roster into the six dashboard buckets, always in
// display order and with empty buckets present.
func (s *RosterService) ListByCategory(ctx context.Context) ([]dto.CategoryGroup, bool, error) {
	key := rosterCacheKey(ctx, s.cache, rosterCacheCategoriesKey)
	var cached []dto.CategoryGroup
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	students, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Erro ao buscar alunos por categoria.")
	}

	groups := make([]dto.CategoryGroup, len(models.DashboardCategories))
	index := make(map[models.Category]int, len(models.DashboardCategories))
	for i, category := range models.DashboardCategories {
		groups[i] = dto.CategoryGroup{ID: category, Name: string(category), Students: []dto.DashboardStudent{}}
		index[category] = i
	}
	for _, student := range students {
		i := index[dashboardCategory(student)]
		groups[i].Students = append(groups[i].Students, dto.NewDashboardStudent(student))
	}

	s.cache.Set(ctx, key, groups)
	return groups, false, nil
}

// Update merges the non-empty fields of req into the stored student, applies the
// category rule and optionally replaces the photo. All validation happens before
// any blob store call.
func (s *RosterService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest, photo *PhotoUpload) (*StudentResult, error) {
	defer s.photos.Release(photo)

	req.Normalize()
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}

	merged, err := mergeStudent(*current, req)
	if err != nil {
		return nil, err
	}

	switch change := CategoryChangeFor(req).(type) {
	case ReclassifyFromDemographics:
		category := s.classify(&merged.DataNascimento, merged.Genero)
		if !category.Enrollable() {
			return nil, appErrors.Clone(appErrors.ErrValidation, msgInvalidCategory)
		}
		merged.Categoria = category
	case ExplicitCategory:
		if !change.Label.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Categoria inválida.")
		}
		merged.Categoria = change.Label
	}

	var uploaded *storage.BlobRef
	if photo != nil {
		if !s.photos.Available() {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, msgPhotoStoreMissing)
		}
		ref, err := s.photos.Upload(ctx, photo)
		if err != nil {
			s.logger.Error("photo upload failed", zap.String("student_id", id), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msgPhotoUploadFailed)
		}
		uploaded = &ref
		merged.Foto = ref.URL
	}

	updated, err := s.repo.UpdateByID(ctx, id, &merged)
	if err != nil {
		if uploaded != nil {
			s.photos.Discard(ctx, *uploaded)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgDuplicateStudent)
		}
		return nil, s.lookupError(err)
	}

	result := &StudentResult{Student: updated}
	if uploaded != nil && current.Foto != "" && current.Foto != uploaded.URL {
		if err := s.photos.DeleteByURL(ctx, current.Foto); err != nil {
			s.logger.Warn("failed to remove replaced photo", zap.String("student_id", id), zap.Error(err))
			result.Warnings = append(result.Warnings, Warning{
				Code:    WarningPhotoCleanup,
				Message: "A foto anterior não pôde ser removida do armazenamento.",
			})
		}
	}

	invalidateRoster(ctx, s.cache)
	return result, nil
}

// Delete removes the student and then its photo. A failed photo removal is a warning.
func (s *RosterService) Delete(ctx context.Context, id string) (*StudentResult, error) {
	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}

	result := &StudentResult{Student: removed}
	if removed.Foto != "" && s.photos.Available() {
		if err := s.photos.DeleteByURL(ctx, removed.Foto); err != nil {
			s.logger.Warn("failed to remove student photo", zap.String("student_id", id), zap.Error(err))
			result.Warnings = append(result.Warnings, Warning{
				Code:    WarningPhotoCleanup,
				Message: "A foto do aluno não pôde ser removida do armazenamento.",
			})
		}
	}

	invalidateRoster(ctx, s.cache)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return result, nil
}

func (s *RosterService) lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, msgStudentNotFound)
	}
	s.logger.Error("student repository failure", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Erro ao acessar o cadastro de alunos.")
}

// mergeStudent overlays the non-empty request fields on the stored student.
func mergeStudent(student models.Student, req dto.UpdateStudentRequest) (models.Student, error) {
	overlay := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	overlay(&student.NomeCompleto, req.NomeCompleto)
	overlay(&student.Genero, req.Genero)
	overlay(&student.NomeResponsavel, req.NomeResponsavel)
	overlay(&student.CPFResponsavel, req.CPFResponsavel)
	overlay(&student.NomeMae, req.NomeMae)
	overlay(&student.Contato1, req.Contato1)
	overlay(&student.Contato2, req.Contato2)

	if req.DataNascimento != "" {
		birthDate, err := ParseBirthDate(req.DataNascimento)
		if err != nil {
			return student, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgInvalidCategory)
		}
		student.DataNascimento = birthDate
	}
	if req.StatusPagamento != "" {
		status := models.PaymentStatus(req.StatusPagamento)
		if !status.Valid() {
			return student, appErrors.Clone(appErrors.ErrValidation, "Status de pagamento inválido.")
		}
		student.StatusPagamento = status
	}
	return student, nil
}

// rosterCacheKey scopes name to the current roster generation. A list that read
// the store before an invalidation writes under the old generation, which no
// later reader asks for.
func rosterCacheKey(ctx context.Context, cache *CacheService, name string) string {
	return fmt.Sprintf("roster:v%d:%s", cache.Generation(ctx, rosterGenerationKey), name)
}

func invalidateRoster(ctx context.Context, cache *CacheService) {
	cache.Bump(ctx, rosterGenerationKey)
	cache.Invalidate(ctx, rosterCachePattern)
}
