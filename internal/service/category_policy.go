package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/escolinha-api/internal/models"
)

var birthDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ParseBirthDate accepts ISO dates, RFC3339 timestamps and dd/mm/yyyy.
func ParseBirthDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised birth date %q", raw)
}

// ClassifyCategory maps gender and birth date to a training category.
// Female students are always Feminina. Otherwise the birth year decides, and a
// missing date yields CategoryUndefined.
func ClassifyCategory(birthDate *time.Time, gender string) models.Category {
	if gender == models.GenderFemale {
		return models.CategoryFeminina
	}
	if birthDate == nil || birthDate.IsZero() {
		return models.CategoryUndefined
	}

	switch year := birthDate.UTC().Year(); {
	case year >= 2010 && year <= 2013:
		return models.CategorySub14
	case year >= 2014 && year <= 2016:
		return models.CategorySub10
	case year >= 2017 && year <= 2018:
		return models.CategorySub08
	case year >= 2019 && year <= 2020:
		return models.CategorySub06
	default:
		return models.CategoryForaDeCategoria
	}
}

// dashboardCategory returns the bucket a stored student is listed under.
func dashboardCategory(student models.Student) models.Category {
	if student.IsFemale() {
		return models.CategoryFeminina
	}
	if student.Categoria.Valid() {
		return student.Categoria
	}
	return models.CategoryForaDeCategoria
}
