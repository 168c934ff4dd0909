package models

import (
	"time"
)

// CityStandard is the contribution rate and permitted base range for one city and year
type CityStandard struct {
	ID        int64     `db:"id" json:"id,omitempty"`
	CityName  string    `db:"city_name" json:"city_name" validate:"required"`
	Year      string    `db:"year" json:"year" validate:"year4"`
	Rate      float64   `db:"rate" json:"rate" validate:"finite,gte=0,lte=1"`
	BaseMin   float64   `db:"base_min" json:"base_min" validate:"finite,gte=0,ltefield=BaseMax"`
	BaseMax   float64   `db:"base_max" json:"base_max" validate:"finite,gte=0"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CityYear identifies a city standard for selection lists
type CityYear struct {
	CityName string `db:"city_name" json:"city_name"`
	Year     string `db:"year" json:"year"`
}

// CityStandardInput is a city standard as submitted in a JSON import.
// Numeric fields are pointers so an omitted value is not read as 0.
type CityStandardInput struct {
	CityName string   `json:"city_name"`
	Year     string   `json:"year"`
	Rate     *float64 `json:"rate" validate:"required"`
	BaseMin  *float64 `json:"base_min" validate:"required"`
	BaseMax  *float64 `json:"base_max" validate:"required"`
}

// CityStandard converts a checked input. Every numeric field must be set.
func (in CityStandardInput) CityStandard() CityStandard {
	return CityStandard{
		CityName: in.CityName,
		Year:     in.Year,
		Rate:     *in.Rate,
		BaseMin:  *in.BaseMin,
		BaseMax:  *in.BaseMax,
	}
}
