// Package feed parses the weather-bureau XML feed into an in-memory
// snapshot and extracts per-city, per-date forecast records from it.
package feed

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"imsforecast.app/models"
	"imsforecast.app/pkg/errors"
)

// Snapshot is one parsed instance of the feed
type Snapshot struct {
	IssueDateTime string     `xml:"IssueDateTime"`
	Locations     []Location `xml:"Location"`
}

// Location is one city node in the feed
type Location struct {
	Metadata *LocationMetadata `xml:"LocationMetaData"`
	Data     *LocationData     `xml:"LocationData"`
}

// LocationMetadata carries the city's identity and coordinates.
// Coordinates stay strings until extraction so a malformed value drops
// only that city.
type LocationMetadata struct {
	NameEng   string `xml:"LocationNameEng"`
	NameHeb   string `xml:"LocationNameHeb"`
	Latitude  string `xml:"DisplayLat"`
	Longitude string `xml:"DisplayLon"`
}

// LocationData holds one dated sub-entry per forecast date
type LocationData struct {
	TimeUnits []TimeUnit `xml:"TimeUnitData"`
}

// TimeUnit is one city's forecast for one date
type TimeUnit struct {
	Date     string    `xml:"Date"`
	Elements []Element `xml:"Element"`
}

// Element is a named weather value. Names the extractor does not
// recognize are ignored.
type Element struct {
	Name  string `xml:"ElementName"`
	Value string `xml:"ElementValue"`
}

// Parse decodes feed bytes into a Snapshot. It fails when the input is
// not well-formed XML or when the document carries no city locations.
func Parse(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := xml.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.NewParseError("malformed feed document", err)
	}

	if len(snapshot.Locations) == 0 {
		return nil, errors.NewParseError("feed document contains no city locations", nil)
	}

	return &snapshot, nil
}

// AvailableDates collects every forecast date declared anywhere in the
// snapshot, deduplicated and sorted. Dates are YYYY-MM-DD strings, so
// lexicographic order equals chronological order.
func (s *Snapshot) AvailableDates() []string {
	seen := make(map[string]bool)
	var dates []string

	for _, location := range s.Locations {
		if location.Data == nil {
			continue
		}
		for _, unit := range location.Data.TimeUnits {
			date := strings.TrimSpace(unit.Date)
			if date != "" && !seen[date] {
				seen[date] = true
				dates = append(dates, date)
			}
		}
	}

	sort.Strings(dates)
	return dates
}

// Extract builds a CityRecord for this location at the given date.
// The date must match a sub-entry exactly; no nearest-date matching.
// Structural problems (missing metadata, malformed coordinates, no
// sub-entry for the date) return an error so the caller can drop just
// this city.
func (l *Location) Extract(date string) (*models.CityRecord, error) {
	if l.Metadata == nil {
		return nil, fmt.Errorf("location metadata not found")
	}

	nameEng := strings.TrimSpace(l.Metadata.NameEng)
	nameHeb := strings.TrimSpace(l.Metadata.NameHeb)

	latitude, err := strconv.ParseFloat(strings.TrimSpace(l.Metadata.Latitude), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude for %q: %w", nameEng, err)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(l.Metadata.Longitude), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude for %q: %w", nameEng, err)
	}

	if l.Data == nil {
		return nil, fmt.Errorf("location data not found for %q", nameEng)
	}

	var forecast *TimeUnit
	for i := range l.Data.TimeUnits {
		if strings.TrimSpace(l.Data.TimeUnits[i].Date) == date {
			forecast = &l.Data.TimeUnits[i]
			break
		}
	}
	if forecast == nil {
		return nil, fmt.Errorf("no forecast for %q on %s", nameEng, date)
	}

	record := &models.CityRecord{
		NameEng:   nameEng,
		NameHeb:   nameHeb,
		Latitude:  latitude,
		Longitude: longitude,
	}

	for _, element := range forecast.Elements {
		value := strings.TrimSpace(element.Value)
		switch strings.TrimSpace(element.Name) {
		case models.ElementMaxTemperature:
			record.MaxTemp = value
		case models.ElementMinTemperature:
			record.MinTemp = value
		case models.ElementWeatherCode:
			record.WeatherCode = value
		case models.ElementMaxHumidity:
			record.MaxHumidity = value
		case models.ElementMinHumidity:
			record.MinHumidity = value
		case models.ElementWind:
			record.Wind = value
		}
	}

	return record, nil
}
