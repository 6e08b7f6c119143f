package models

import "time"

// Category is the age/gender bracket a student trains in.
type Category string

const (
	CategoryFeminina        Category = "Feminina"
	CategorySub06           Category = "Sub06"
	CategorySub08           Category = "Sub08"
	CategorySub10           Category = "Sub10"
	CategorySub14           Category = "Sub14"
	CategoryForaDeCategoria Category = "Fora de Categoria"
	// CategoryUndefined is returned when no birth date is available. It is never stored.
	CategoryUndefined Category = "Não Definida"
)

// DashboardCategories lists the dashboard buckets in display order.
var DashboardCategories = []Category{
	CategoryFeminina,
	CategorySub06,
	CategorySub08,
	CategorySub10,
	CategorySub14,
	CategoryForaDeCategoria,
}

// Valid reports whether c is one of the six stored labels.
func (c Category) Valid() bool {
	for _, known := range DashboardCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Enrollable reports whether a student classified as c can be registered.
func (c Category) Enrollable() bool {
	return c.Valid() && c != CategoryForaDeCategoria
}

// PaymentStatus tracks whether the monthly fee was paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pendente"
	PaymentPaid    PaymentStatus = "Pago"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// GenderFemale is the gender value that places a student in the Feminina bucket.
const GenderFemale = "Feminino"

// Student is a registered athlete of the school.
type Student struct {
	ID              string        `bson:"_id" db:"id" json:"id"`
	NomeCompleto    string        `bson:"nomeCompleto" db:"nome_completo" json:"nomeCompleto"`
	DataNascimento  time.Time     `bson:"dataNascimento" db:"data_nascimento" json:"dataNascimento"`
	Genero          string        `bson:"genero" db:"genero" json:"genero"`
	Foto            string        `bson:"foto" db:"foto" json:"foto"`
	NomeResponsavel string        `bson:"nomeResponsavel" db:"nome_responsavel" json:"nomeResponsavel"`
	CPFResponsavel  string        `bson:"cpfResponsavel" db:"cpf_responsavel" json:"cpfResponsavel"`
	NomeMae         string        `bson:"nomeMae" db:"nome_mae" json:"nomeMae"`
	Contato1        string        `bson:"contato1" db:"contato1" json:"contato1"`
	Contato2        string        `bson:"contato2" db:"contato2" json:"contato2"`
	Categoria       Category      `bson:"categoria" db:"categoria" json:"categoria"`
	StatusPagamento PaymentStatus `bson:"statusPagamento" db:"status_pagamento" json:"statusPagamento"`
	CreatedAt       time.Time     `bson:"createdAt" db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" db:"updated_at" json:"updatedAt"`
}

// IsFemale reports whether the student belongs to the Feminina bucket by gender.
func (s Student) IsFemale() bool {
	return s.Genero == GenderFemale
}

// Paid reports whether the current fee is settled.
func (s Student) Paid() bool {
	return s.StatusPagamento == PaymentPaid
}
