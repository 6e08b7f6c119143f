package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/escolinha-api/pkg/config"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "escolinha", Password: "s3cr3t", Name: "alunos"})
	assert.Equal(t, "host=db port=5432 user=escolinha password=s3cr3t dbname=alunos sslmode=disable", dsn)

	dsn = PostgresDSN(config.DatabaseConfig{Host: "db", Port: 5432, Name: "alunos", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}

func TestNewPostgresRequiresHostAndName(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.DatabaseConfig{Port: 5432})
	assert.Error(t, err)
}

func TestNewMongoRequiresURI(t *testing.T) {
	_, _, err := NewMongo(context.Background(), config.MongoConfig{})
	assert.Error(t, err)
}
