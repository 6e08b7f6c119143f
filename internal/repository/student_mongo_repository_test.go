package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/escolinha-api/internal/models"
)

const studentsNS = "test.alunos"

func studentDoc(id, name string, category models.Category) bson.D {
	born := time.Date(2015, time.May, 2, 0, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "nomeCompleto", Value: name},
		{Key: "dataNascimento", Value: primitive.NewDateTimeFromTime(born)},
		{Key: "genero", Value: "Masculino"},
		{Key: "foto", Value: ""},
		{Key: "nomeResponsavel", Value: "Carlos"},
		{Key: "cpfResponsavel", Value: "123.456.789-00"},
		{Key: "nomeMae", Value: "Maria"},
		{Key: "contato1", Value: "11999990000"},
		{Key: "contato2", Value: ""},
		{Key: "categoria", Value: string(category)},
		{Key: "statusPagamento", Value: "Pendente"},
	}
}

func newMongoTest(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestStudentMongoRepositoryInsert(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("assigns id and timestamps", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		student := &models.Student{NomeCompleto: "Pedro", Categoria: models.CategorySub10, StatusPagamento: models.PaymentPending}
		require.NoError(mt, repo.Insert(context.Background(), student))
		assert.NotEmpty(mt, student.ID)
		assert.False(mt, student.CreatedAt.IsZero())
		assert.Equal(mt, student.CreatedAt, student.UpdatedAt)
	})

	mt.Run("maps duplicate key to ErrDuplicate", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Insert(context.Background(), &models.Student{NomeCompleto: "Pedro"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestStudentMongoRepositoryFindAll(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("decodes every document", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		first := mtest.CreateCursorResponse(1, studentsNS, mtest.FirstBatch, studentDoc("a", "Ana", models.CategorySub10))
		next := mtest.CreateCursorResponse(0, studentsNS, mtest.NextBatch, studentDoc("b", "Bruno", models.CategorySub08))
		mt.AddMockResponses(first, next)

		students, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, students, 2)
		assert.Equal(mt, "Ana", students[0].NomeCompleto)
		assert.Equal(mt, models.CategorySub08, students[1].Categoria)
		assert.Equal(mt, 2015, students[0].DataNascimento.Year())
	})
}

func TestStudentMongoRepositoryFindByID(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, studentsNS, mtest.FirstBatch, studentDoc("a", "Ana", models.CategorySub10)))

		student, err := repo.FindByID(context.Background(), "a")
		require.NoError(mt, err)
		assert.Equal(mt, "a", student.ID)
		assert.Equal(mt, models.PaymentPending, student.StatusPagamento)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, studentsNS, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestStudentMongoRepositoryUpdateByID(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		doc := studentDoc("a", "Ana Paula", models.CategorySub10)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: doc}})

		updated, err := repo.UpdateByID(context.Background(), "a", &models.Student{NomeCompleto: "Ana Paula"})
		require.NoError(mt, err)
		assert.Equal(mt, "Ana Paula", updated.NomeCompleto)
	})

	mt.Run("missing id", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.UpdateByID(context.Background(), "missing", &models.Student{})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestStudentMongoRepositoryDeleteByID(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("returns removed document", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: studentDoc("a", "Ana", models.CategorySub10)}})

		removed, err := repo.DeleteByID(context.Background(), "a")
		require.NoError(mt, err)
		assert.Equal(mt, "a", removed.ID)
	})

	mt.Run("missing id", func(mt *mtest.T) {
		repo := NewStudentMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.DeleteByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
