package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escolinha-api/internal/models"
)

func birth(year int) *time.Time {
	t := time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClassifyCategoryByYear(t *testing.T) {
	cases := []struct {
		year int
		want models.Category
	}{
		{2009, models.CategoryForaDeCategoria},
		{2010, models.CategorySub14},
		{2013, models.CategorySub14},
		{2014, models.CategorySub10},
		{2016, models.CategorySub10},
		{2017, models.CategorySub08},
		{2018, models.CategorySub08},
		{2019, models.CategorySub06},
		{2020, models.CategorySub06},
		{2021, models.CategoryForaDeCategoria},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyCategory(birth(tc.year), "Masculino"), "year %d", tc.year)
	}
}

func TestClassifyCategoryFemaleWins(t *testing.T) {
	assert.Equal(t, models.CategoryFeminina, ClassifyCategory(birth(2015), models.GenderFemale))
	assert.Equal(t, models.CategoryFeminina, ClassifyCategory(birth(2005), models.GenderFemale))
	assert.Equal(t, models.CategoryFeminina, ClassifyCategory(nil, models.GenderFemale))
}

func TestClassifyCategoryMissingDate(t *testing.T) {
	assert.Equal(t, models.CategoryUndefined, ClassifyCategory(nil, "Masculino"))
	assert.Equal(t, models.CategoryUndefined, ClassifyCategory(&time.Time{}, "Masculino"))
	assert.False(t, models.CategoryUndefined.Enrollable())
	assert.False(t, models.CategoryForaDeCategoria.Enrollable())
	assert.True(t, models.CategoryForaDeCategoria.Valid())
}

func TestClassifyCategoryUsesUTCYear(t *testing.T) {
	// 2013-12-31T23:30 in UTC-03 is already 2014 in UTC.
	local := time.Date(2013, time.December, 31, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, models.CategorySub10, ClassifyCategory(&local, "Masculino"))
}

func TestParseBirthDate(t *testing.T) {
	for _, raw := range []string{"2015-03-09", "2015-03-09T00:00:00Z", "2015-03-09T00:00:00.000Z", "2015-03-09T00:00:00", "09/03/2015"} {
		got, err := ParseBirthDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2015, got.Year(), raw)
		assert.Equal(t, time.March, got.Month(), raw)
	}

	_, err := ParseBirthDate("ontem")
	assert.Error(t, err)
}

func TestDashboardCategory(t *testing.T) {
	assert.Equal(t, models.CategoryFeminina, dashboardCategory(models.Student{Genero: models.GenderFemale, Categoria: models.CategorySub10}))
	assert.Equal(t, models.CategorySub08, dashboardCategory(models.Student{Genero: "Masculino", Categoria: models.CategorySub08}))
	assert.Equal(t, models.CategoryForaDeCategoria, dashboardCategory(models.Student{Genero: "Masculino", Categoria: "Sub20"}))
}
