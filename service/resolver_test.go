package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurecalc/models"
)

var testAliases = map[string]string{
	"南山":     "佛山",
	"深圳市南山区": "佛山",
	"深圳南山":   "佛山",
}

func TestCityAliases_Normalize(t *testing.T) {
	aliases := CityAliases(testAliases)

	assert.Equal(t, "佛山", aliases.Normalize("南山"))
	assert.Equal(t, "佛山", aliases.Normalize("深圳市南山区"))
	assert.Equal(t, "佛山", aliases.Normalize("佛山"))
	assert.Equal(t, "广州", aliases.Normalize("广州"))
	assert.Equal(t, " 南山", aliases.Normalize(" 南山"))
}

func TestCityResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	foshan := &models.CityStandard{ID: 7, CityName: "佛山", Year: "2024", Rate: 0.14, BaseMin: 3523, BaseMax: 26421}

	t.Run("aliases resolve to the canonical standard", func(t *testing.T) {
		for _, city := range []string{"佛山", "南山", "深圳市南山区"} {
			repo := new(MockCityStandardRepository)
			repo.On("FindByCityAndYear", ctx, "佛山", "2024").Return([]*models.CityStandard{foshan}, nil)

			resolver := NewCityResolver(testAliases, TieBreakStrict)
			standard, err := resolver.Resolve(ctx, repo, city, "2024")

			require.NoError(t, err)
			assert.Equal(t, foshan, standard)
			repo.AssertExpectations(t)
		}
	})

	t.Run("not found reports the requested name", func(t *testing.T) {
		repo := new(MockCityStandardRepository)
		repo.On("FindByCityAndYear", ctx, "佛山", "2025").Return([]*models.CityStandard{}, nil)

		resolver := NewCityResolver(testAliases, TieBreakStrict)
		_, err := resolver.Resolve(ctx, repo, "南山", "2025")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCityStandardNotFound))
		assert.Contains(t, err.Error(), "南山")
		assert.Contains(t, err.Error(), "2025")
	})

	t.Run("strict tie-break rejects duplicates", func(t *testing.T) {
		dup := &models.CityStandard{ID: 9, CityName: "佛山", Year: "2024", Rate: 0.16, BaseMin: 3000, BaseMax: 20000}
		repo := new(MockCityStandardRepository)
		repo.On("FindByCityAndYear", ctx, "佛山", "2024").Return([]*models.CityStandard{foshan, dup}, nil)

		_, err := NewCityResolver(nil, TieBreakStrict).Resolve(ctx, repo, "佛山", "2024")

		assert.True(t, errors.Is(err, ErrAmbiguousCityStandard))
		assert.Equal(t, "AMBIGUOUS_CITY_STANDARD", ErrorCode(err))
	})

	t.Run("first tie-break picks the earliest row", func(t *testing.T) {
		dup := &models.CityStandard{ID: 9, CityName: "佛山", Year: "2024", Rate: 0.16, BaseMin: 3000, BaseMax: 20000}
		repo := new(MockCityStandardRepository)
		repo.On("FindByCityAndYear", ctx, "佛山", "2024").Return([]*models.CityStandard{foshan, dup}, nil)

		standard, err := NewCityResolver(nil, TieBreakFirst).Resolve(ctx, repo, "佛山", "2024")

		require.NoError(t, err)
		assert.Equal(t, int64(7), standard.ID)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(MockCityStandardRepository)
		repo.On("FindByCityAndYear", ctx, "佛山", "2024").Return(nil, errors.New("connection reset"))

		_, err := NewCityResolver(nil, TieBreakStrict).Resolve(ctx, repo, "佛山", "2024")

		assert.True(t, errors.Is(err, ErrStorageOperationFailed))
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("alias map is copied", func(t *testing.T) {
		aliases := map[string]string{"南山": "佛山"}
		resolver := NewCityResolver(aliases, "")
		aliases["南山"] = "深圳"

		assert.Equal(t, "佛山", resolver.aliases.Normalize("南山"))
		assert.Equal(t, TieBreakStrict, resolver.tieBreak)
	})
}

func TestParseTieBreak(t *testing.T) {
	tb, err := ParseTieBreak("")
	require.NoError(t, err)
	assert.Equal(t, TieBreakStrict, tb)

	tb, err = ParseTieBreak("first")
	require.NoError(t, err)
	assert.Equal(t, TieBreakFirst, tb)

	_, err = ParseTieBreak("latest")
	assert.Error(t, err)
}
