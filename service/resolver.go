package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"insurecalc/models"
)

// TieBreak decides what happens when more than one city standard matches a lookup
type TieBreak string

const (
	// TieBreakStrict fails with ErrAmbiguousCityStandard
	TieBreakStrict TieBreak = "strict"
	// TieBreakFirst picks the row with the lowest id, i.e. the first one imported
	TieBreakFirst TieBreak = "first"
)

// ParseTieBreak parses a TieBreak, defaulting to TieBreakStrict for an empty value
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakStrict:
		return TieBreakStrict, nil
	case TieBreakFirst:
		return TieBreakFirst, nil
	default:
		return "", fmt.Errorf("unknown city tie-break %q (want %q or %q)", s, TieBreakStrict, TieBreakFirst)
	}
}

// CityAliases maps an alternative city name to the canonical name stored in city_standards
type CityAliases map[string]string

// Normalize returns the canonical name for cityName, or cityName itself
func (a CityAliases) Normalize(cityName string) string {
	if canonical, ok := a[cityName]; ok {
		return canonical
	}
	return cityName
}

// CityResolver finds the single city standard that applies to a run
type CityResolver struct {
	aliases  CityAliases
	tieBreak TieBreak
}

// NewCityResolver creates a resolver. The alias map is copied.
func NewCityResolver(aliases map[string]string, tieBreak TieBreak) *CityResolver {
	copied := make(CityAliases, len(aliases))
	for alias, canonical := range aliases {
		copied[alias] = canonical
	}
	if tieBreak == "" {
		tieBreak = TieBreakStrict
	}
	return &CityResolver{aliases: copied, tieBreak: tieBreak}
}

// Resolve normalizes cityName through the alias table and looks up its standard for year
func (r *CityResolver) Resolve(ctx context.Context, repo CityStandardRepository, cityName, year string) (*models.CityStandard, error) {
	normalized := r.aliases.Normalize(cityName)

	matches, err := repo.FindByCityAndYear(ctx, normalized, year)
	if err != nil {
		return nil, storageError("failed to look up city standard", err)
	}

	switch {
	case len(matches) == 0:
		return nil, &Error{
			Kind:    ErrCityStandardNotFound,
			Message: fmt.Sprintf("no contribution standard found for city %s in %s", cityName, year),
		}
	case len(matches) > 1 && r.tieBreak == TieBreakStrict:
		return nil, &Error{
			Kind: ErrAmbiguousCityStandard,
			Message: fmt.Sprintf("%d contribution standards found for city %s in %s; re-import city standards with one row per city and year",
				len(matches), cityName, year),
		}
	case len(matches) > 1:
		log.WithFields(log.Fields{
			"city":       normalized,
			"year":       year,
			"matches":    len(matches),
			"selectedID": matches[0].ID,
		}).Warn("Multiple city standards matched, using the first imported")
	}

	return matches[0], nil
}
