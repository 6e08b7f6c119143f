package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/escolinha-api/internal/models"
)

var (
	// ErrNotFound is returned when no student has the requested id.
	ErrNotFound = errors.New("student not found")
	// ErrDuplicate is returned when a student with the same guardian CPF and name exists.
	ErrDuplicate = errors.New("student already registered")
)

// StudentStore is implemented by every student backend.
type StudentStore interface {
	Insert(ctx context.Context, student *models.Student) error
	FindAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateByID(ctx context.Context, id string, student *models.Student) (*models.Student, error)
	DeleteByID(ctx context.Context, id string) (*models.Student, error)
}

var (
	_ StudentStore = (*StudentMongoRepository)(nil)
	_ StudentStore = (*StudentRepository)(nil)
)
