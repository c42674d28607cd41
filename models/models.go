package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const feedDateLayout = "2006-01-02"

// DisplayDate reformats a feed date (YYYY-MM-DD) as DD/MM/YYYY for the
// rendered image and the email subject. Unparseable input is returned
// unchanged.
func DisplayDate(date string) string {
	parsed, err := time.Parse(feedDateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format("02/01/2006")
}

// FeedDate formats a time in the feed's YYYY-MM-DD form
func FeedDate(t time.Time) string {
	return t.Format(feedDateLayout)
}

// Weather element names exactly as they appear in the feed
const (
	ElementMaxTemperature = "Maximum temperature"
	ElementMinTemperature = "Minimum temperature"
	ElementWeatherCode    = "Weather code"
	ElementMaxHumidity    = "Maximum relative humidity"
	ElementMinHumidity    = "Minimum relative humidity"
	ElementWind           = "Wind direction and speed"
)

var validate = validator.New()

// CityRecord holds one city's forecast for one date. Temperatures, humidity
// and wind keep the feed's string representation; an empty string means the
// feed omitted the element.
type CityRecord struct {
	NameEng     string `validate:"required"`
	NameHeb     string `validate:"required"`
	Latitude    float64
	Longitude   float64
	MaxTemp     string `validate:"required"`
	MinTemp     string `validate:"required"`
	WeatherCode string `validate:"required"`
	MaxHumidity string
	MinHumidity string
	Wind        string
}

// Validate checks that all required fields are present
func (c *CityRecord) Validate() error {
	return validate.Struct(c)
}

// IsValid reports whether the record passes the required-field check
func (c *CityRecord) IsValid() bool {
	return c.Validate() == nil
}

// MissingFields returns the names of required fields the feed did not provide
func (c *CityRecord) MissingFields() []string {
	var missing []string
	if c.NameEng == "" {
		missing = append(missing, "name_eng")
	}
	if c.NameHeb == "" {
		missing = append(missing, "name_heb")
	}
	if c.MaxTemp == "" {
		missing = append(missing, "max_temp")
	}
	if c.MinTemp == "" {
		missing = append(missing, "min_temp")
	}
	if c.WeatherCode == "" {
		missing = append(missing, "weather_code")
	}
	return missing
}

// TemperatureRange formats the record's temperatures like "18-27°C"
func (c *CityRecord) TemperatureRange() string {
	return fmt.Sprintf("%s-%s°C", c.MinTemp, c.MaxTemp)
}

// ResolvedForecast is the resolver's output: validated records sorted north
// to south, plus the date actually used. EffectiveDate differs from
// RequestedDate when the feed no longer carries the requested date.
type ResolvedForecast struct {
	Records       []CityRecord
	RequestedDate string
	EffectiveDate string
}

// UsedFallbackDate reports whether date fallback changed the forecast date
func (r *ResolvedForecast) UsedFallbackDate() bool {
	return r.EffectiveDate != r.RequestedDate
}
