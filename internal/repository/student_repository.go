package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/escolinha-api/internal/models"
)

const pqUniqueViolation = "23505"

const studentColumns = `id, nome_completo, data_nascimento, genero, foto, nome_responsavel, cpf_responsavel,
        nome_mae, contato1, contato2, categoria, status_pagamento, created_at, updated_at`

const studentsSchema = `CREATE TABLE IF NOT EXISTS alunos (
    id UUID PRIMARY KEY,
    nome_completo TEXT NOT NULL,
    data_nascimento DATE NOT NULL,
    genero TEXT NOT NULL,
    foto TEXT NOT NULL DEFAULT '',
    nome_responsavel TEXT NOT NULL,
    cpf_responsavel TEXT NOT NULL,
    nome_mae TEXT NOT NULL,
    contato1 TEXT NOT NULL,
    contato2 TEXT NOT NULL DEFAULT '',
    categoria TEXT NOT NULL,
    status_pagamento TEXT NOT NULL DEFAULT 'Pendente' CHECK (status_pagamento IN ('Pendente', 'Pago')),
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    CONSTRAINT uniq_responsavel_aluno UNIQUE (cpf_responsavel, nome_completo)
)`

// StudentRepository persists students in PostgreSQL.
type StudentRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the alunos table when missing.
func (r *StudentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, studentsSchema); err != nil {
		return fmt.Errorf("create alunos table: %w", err)
	}
	return nil
}

// Insert stores a new student, assigning its id and timestamps.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	now := r.now()
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now

	query := `INSERT INTO alunos (` + studentColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, query,
		student.ID, student.NomeCompleto, student.DataNascimento, student.Genero, student.Foto,
		student.NomeResponsavel, student.CPFResponsavel, student.NomeMae, student.Contato1, student.Contato2,
		student.Categoria, student.StatusPagamento, student.CreatedAt, student.UpdatedAt)
	if err != nil {
		return writeError(err, "insert student")
	}
	return nil
}

// FindAll returns every student ordered by name.
func (r *StudentRepository) FindAll(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	query := `SELECT ` + studentColumns + ` FROM alunos ORDER BY nome_completo ASC`
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID loads one student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	query := `SELECT ` + studentColumns + ` FROM alunos WHERE id = $1`
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, readError(err, "find student")
	}
	return &student, nil
}

// UpdateByID overwrites the mutable fields of the student and returns the stored result.
func (r *StudentRepository) UpdateByID(ctx context.Context, id string, student *models.Student) (*models.Student, error) {
	query := `UPDATE alunos SET nome_completo = $1, data_nascimento = $2, genero = $3, foto = $4,
        nome_responsavel = $5, cpf_responsavel = $6, nome_mae = $7, contato1 = $8, contato2 = $9,
        categoria = $10, status_pagamento = $11, updated_at = $12
        WHERE id = $13 RETURNING ` + studentColumns
	var updated models.Student
	err := r.db.GetContext(ctx, &updated, query,
		student.NomeCompleto, student.DataNascimento, student.Genero, student.Foto,
		student.NomeResponsavel, student.CPFResponsavel, student.NomeMae, student.Contato1, student.Contato2,
		student.Categoria, student.StatusPagamento, r.now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, readError(err, "update student")
	}
	return &updated, nil
}

// DeleteByID removes the student and returns the removed record.
func (r *StudentRepository) DeleteByID(ctx context.Context, id string) (*models.Student, error) {
	var removed models.Student
	query := `DELETE FROM alunos WHERE id = $1 RETURNING ` + studentColumns
	if err := r.db.GetContext(ctx, &removed, query, id); err != nil {
		return nil, readError(err, "delete student")
	}
	return &removed, nil
}

func readError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	// ids are UUIDs; a malformed one cannot match any row.
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func writeError(err error, op string) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
