package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validRecord() CityRecord {
	return CityRecord{
		NameEng:     "Haifa",
		NameHeb:     "חיפה",
		Latitude:    32.8,
		Longitude:   34.99,
		MaxTemp:     "28",
		MinTemp:     "21",
		WeatherCode: "1220",
	}
}

func TestCityRecordValidity(t *testing.T) {
	t.Run("AllRequiredFields", func(t *testing.T) {
		record := validRecord()

		assert.True(t, record.IsValid())
		assert.Empty(t, record.MissingFields())
	})

	t.Run("OptionalFieldsMayBeAbsent", func(t *testing.T) {
		record := validRecord()
		record.MaxHumidity = ""
		record.MinHumidity = ""
		record.Wind = ""

		assert.True(t, record.IsValid())
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		record := validRecord()
		record.WeatherCode = ""

		assert.False(t, record.IsValid())
		assert.Error(t, record.Validate())
		assert.Equal(t, []string{"weather_code"}, record.MissingFields())
	})

	t.Run("MultipleMissingFields", func(t *testing.T) {
		record := CityRecord{Latitude: 32.8, Longitude: 34.99}

		assert.False(t, record.IsValid())
		assert.ElementsMatch(t,
			[]string{"name_eng", "name_heb", "max_temp", "min_temp", "weather_code"},
			record.MissingFields())
	})
}

func TestTemperatureRange(t *testing.T) {
	record := validRecord()

	assert.Equal(t, "21-28°C", record.TemperatureRange())
}

func TestUsedFallbackDate(t *testing.T) {
	t.Run("SameDate", func(t *testing.T) {
		forecast := ResolvedForecast{RequestedDate: "2025-09-28", EffectiveDate: "2025-09-28"}
		assert.False(t, forecast.UsedFallbackDate())
	})

	t.Run("FallbackDate", func(t *testing.T) {
		forecast := ResolvedForecast{RequestedDate: "2025-09-28", EffectiveDate: "2025-09-29"}
		assert.True(t, forecast.UsedFallbackDate())
	})
}

func TestDisplayDate(t *testing.T) {
	t.Run("FeedDateReformatted", func(t *testing.T) {
		assert.Equal(t, "28/09/2025", DisplayDate("2025-09-28"))
	})

	t.Run("UnparseableReturnedUnchanged", func(t *testing.T) {
		assert.Equal(t, "not-a-date", DisplayDate("not-a-date"))
	})
}

func TestFeedDate(t *testing.T) {
	assert.Equal(t, "2025-09-28", FeedDate(time.Date(2025, 9, 28, 6, 0, 0, 0, time.UTC)))
}
