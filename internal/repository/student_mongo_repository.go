package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/escolinha-api/internal/models"
)

const studentsCollection = "alunos"

// StudentMongoRepository persists students in the "alunos" collection.
type StudentMongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewStudentMongoRepository constructs a repository on db.
func NewStudentMongoRepository(db *mongo.Database) *StudentMongoRepository {
	return &StudentMongoRepository{collection: db.Collection(studentsCollection), now: func() time.Time { return time.Now().UTC() }}
}

// EnsureIndexes creates the uniqueness index used to detect duplicate registrations.
func (r *StudentMongoRepository) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "cpfResponsavel", Value: 1}, {Key: "nomeCompleto", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_responsavel_aluno"),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("create students index: %w", err)
	}
	return nil
}

// Insert stores a new student, assigning its id and timestamps.
func (r *StudentMongoRepository) Insert(ctx context.Context, student *models.Student) error {
	now := r.now()
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, student); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// FindAll returns every student ordered by name.
func (r *StudentMongoRepository) FindAll(ctx context.Context) ([]models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nomeCompleto", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck

	students := make([]models.Student, 0)
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// FindByID loads one student.
func (r *StudentMongoRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&student); err != nil {
		return nil, r.findError(err, "find student")
	}
	return &student, nil
}

// UpdateByID overwrites the mutable fields of the student and returns the stored result.
func (r *StudentMongoRepository) UpdateByID(ctx context.Context, id string, student *models.Student) (*models.Student, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "nomeCompleto", Value: student.NomeCompleto},
		{Key: "dataNascimento", Value: student.DataNascimento},
		{Key: "genero", Value: student.Genero},
		{Key: "foto", Value: student.Foto},
		{Key: "nomeResponsavel", Value: student.NomeResponsavel},
		{Key: "cpfResponsavel", Value: student.CPFResponsavel},
		{Key: "nomeMae", Value: student.NomeMae},
		{Key: "contato1", Value: student.Contato1},
		{Key: "contato2", Value: student.Contato2},
		{Key: "categoria", Value: student.Categoria},
		{Key: "statusPagamento", Value: student.StatusPagamento},
		{Key: "updatedAt", Value: r.now()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Student
	err := r.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, r.findError(err, "update student")
	}
	return &updated, nil
}

// DeleteByID removes the student and returns the removed record.
func (r *StudentMongoRepository) DeleteByID(ctx context.Context, id string) (*models.Student, error) {
	var removed models.Student
	if err := r.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&removed); err != nil {
		return nil, r.findError(err, "delete student")
	}
	return &removed, nil
}

func (r *StudentMongoRepository) findError(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
