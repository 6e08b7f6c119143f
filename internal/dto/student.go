package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/escolinha-api/internal/models"
)

// RegisterStudentRequest is the public registration form submitted by a parent.
// Category and payment status are never taken from it.
type RegisterStudentRequest struct {
	NomeCompleto    string `form:"nomeCompleto" json:"nomeCompleto" validate:"required"`
	DataNascimento  string `form:"dataNascimento" json:"dataNascimento" validate:"required"`
	Genero          string `form:"genero" json:"genero" validate:"required"`
	NomeResponsavel string `form:"nomeResponsavel" json:"nomeResponsavel" validate:"required"`
	CPFResponsavel  string `form:"cpfResponsavel" json:"cpfResponsavel" validate:"required"`
	NomeMae         string `form:"nomeMae" json:"nomeMae" validate:"required"`
	Contato1        string `form:"contato1" json:"contato1" validate:"required"`
	Contato2        string `form:"contato2" json:"contato2"`
}

// Normalize trims every field so whitespace-only values count as missing.
func (r *RegisterStudentRequest) Normalize() {
	r.NomeCompleto = strings.TrimSpace(r.NomeCompleto)
	r.DataNascimento = strings.TrimSpace(r.DataNascimento)
	r.Genero = strings.TrimSpace(r.Genero)
	r.NomeResponsavel = strings.TrimSpace(r.NomeResponsavel)
	r.CPFResponsavel = strings.TrimSpace(r.CPFResponsavel)
	r.NomeMae = strings.TrimSpace(r.NomeMae)
	r.Contato1 = strings.TrimSpace(r.Contato1)
	r.Contato2 = strings.TrimSpace(r.Contato2)
}

// UpdateStudentRequest is the owner's partial edit. Empty fields keep the stored value.
type UpdateStudentRequest struct {
	NomeCompleto    string `form:"nomeCompleto" json:"nomeCompleto"`
	DataNascimento  string `form:"dataNascimento" json:"dataNascimento"`
	Genero          string `form:"genero" json:"genero"`
	NomeResponsavel string `form:"nomeResponsavel" json:"nomeResponsavel"`
	CPFResponsavel  string `form:"cpfResponsavel" json:"cpfResponsavel"`
	NomeMae         string `form:"nomeMae" json:"nomeMae"`
	Contato1        string `form:"contato1" json:"contato1"`
	Contato2        string `form:"contato2" json:"contato2"`
	Categoria       string `form:"categoria" json:"categoria"`
	StatusPagamento string `form:"statusPagamento" json:"statusPagamento"`
}

// Normalize trims every field.
func (r *UpdateStudentRequest) Normalize() {
	r.NomeCompleto = strings.TrimSpace(r.NomeCompleto)
	r.DataNascimento = strings.TrimSpace(r.DataNascimento)
	r.Genero = strings.TrimSpace(r.Genero)
	r.NomeResponsavel = strings.TrimSpace(r.NomeResponsavel)
	r.CPFResponsavel = strings.TrimSpace(r.CPFResponsavel)
	r.NomeMae = strings.TrimSpace(r.NomeMae)
	r.Contato1 = strings.TrimSpace(r.Contato1)
	r.Contato2 = strings.TrimSpace(r.Contato2)
	r.Categoria = strings.TrimSpace(r.Categoria)
	r.StatusPagamento = strings.TrimSpace(r.StatusPagamento)
}

// DashboardStudent is the compact student card shown inside a category bucket.
type DashboardStudent struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Paid            bool                 `json:"paid"`
	Foto            string               `json:"foto"`
	DataNascimento  string               `json:"dataNascimento"`
	Genero          string               `json:"genero"`
	NomeResponsavel string               `json:"nomeResponsavel"`
	CPFResponsavel  string               `json:"cpfResponsavel"`
	NomeMae         string               `json:"nomeMae"`
	Contato1        string               `json:"contato1"`
	Contato2        string               `json:"contato2"`
	Categoria       models.Category      `json:"categoria"`
	StatusPagamento models.PaymentStatus `json:"statusPagamento"`
}

// NewDashboardStudent projects a stored student into its dashboard card.
func NewDashboardStudent(s models.Student) DashboardStudent {
	birth := ""
	if !s.DataNascimento.IsZero() {
		birth = s.DataNascimento.UTC().Format(time.RFC3339Nano)
	}
	return DashboardStudent{
		ID:              s.ID,
		Name:            s.NomeCompleto,
		Paid:            s.Paid(),
		Foto:            s.Foto,
		DataNascimento:  birth,
		Genero:          s.Genero,
		NomeResponsavel: s.NomeResponsavel,
		CPFResponsavel:  s.CPFResponsavel,
		NomeMae:         s.NomeMae,
		Contato1:        s.Contato1,
		Contato2:        s.Contato2,
		Categoria:       s.Categoria,
		StatusPagamento: s.StatusPagamento,
	}
}

// CategoryGroup is one dashboard bucket.
type CategoryGroup struct {
	ID       models.Category    `json:"id"`
	Name     string             `json:"name"`
	Students []DashboardStudent `json:"students"`
}

// ExportQuery selects the roster export format.
type ExportQuery struct {
	Format string `form:"format"`
}
