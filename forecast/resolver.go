// Package forecast implements the resolver: it selects which forecast
// date's data to use and assembles a complete, validated set of per-city
// records, falling back across dates and archived snapshots as needed.
package forecast

import (
	"fmt"
	"sort"
	"strings"

	"imsforecast.app/config"
	"imsforecast.app/feed"
	"imsforecast.app/models"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/storage"
)

// Resolver turns the stored feed snapshot into a validated forecast for
// a requested date
type Resolver struct {
	store  *storage.Store
	config *config.ForecastConfig
	log    *logger.Logger
}

// NewResolver creates a forecast resolver
func NewResolver(store *storage.Store, cfg *config.ForecastConfig, log *logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		config: cfg,
		log:    log,
	}
}

// Resolve parses the current snapshot (falling back to the newest archive
// when the current one is unusable) and extracts validated city records
// for the requested date. When the requested date yields nothing, the
// first later declared date with data becomes the effective date.
func (r *Resolver) Resolve(requestedDate string) (*models.ResolvedForecast, error) {
	snapshot, err := r.loadSnapshot()
	if err != nil {
		return nil, err
	}

	if issue := strings.TrimSpace(snapshot.IssueDateTime); issue != "" {
		r.log.Info("forecast issued", "issue_datetime", issue)
	} else {
		r.log.Warn("issue date/time not found in feed")
	}

	return r.ResolveSnapshot(snapshot, requestedDate)
}

// ResolveSnapshot runs date resolution against an already-parsed snapshot
func (r *Resolver) ResolveSnapshot(snapshot *feed.Snapshot, requestedDate string) (*models.ResolvedForecast, error) {
	records := r.extractAt(snapshot, requestedDate)
	effectiveDate := requestedDate

	if len(records) == 0 {
		r.log.Warn("no data found for requested date", "date", requestedDate)

		for _, candidate := range snapshot.AvailableDates() {
			if candidate == requestedDate {
				continue
			}
			r.log.Info("trying fallback date", "date", candidate)
			records = r.extractAt(snapshot, candidate)
			if len(records) > 0 {
				effectiveDate = candidate
				r.log.Info("feed was reissued, using fallback date",
					"requested_date", requestedDate,
					"effective_date", candidate,
					"cities", len(records))
				break
			}
		}
	}

	if len(records) == 0 {
		return nil, errors.NewNoDataForAnyDateError(
			fmt.Sprintf("no valid city data for %s or any other declared date", requestedDate))
	}

	// North to south; stable so ties keep feed order
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Latitude > records[j].Latitude
	})

	if len(records) != r.config.ExpectedCityCount {
		r.log.Warn("city count mismatch",
			"expected", r.config.ExpectedCityCount,
			"actual", len(records))
	}

	return &models.ResolvedForecast{
		Records:       records,
		RequestedDate: requestedDate,
		EffectiveDate: effectiveDate,
	}, nil
}

// extractAt collects valid city records for one date. Extraction is
// best-effort per city: structural problems and failed validity checks
// drop the city, never the run.
func (r *Resolver) extractAt(snapshot *feed.Snapshot, date string) []models.CityRecord {
	var records []models.CityRecord

	for i := range snapshot.Locations {
		record, err := snapshot.Locations[i].Extract(date)
		if err != nil {
			r.log.Warn("skipping city", "date", date, "reason", err.Error())
			continue
		}
		if !record.IsValid() {
			r.log.Warn("skipping city with missing data",
				"city", record.NameEng,
				"date", date,
				"missing", strings.Join(record.MissingFields(), ", "))
			continue
		}
		records = append(records, *record)
	}

	return records
}

// loadSnapshot parses the current snapshot file, trying the newest
// archive copy when the current one cannot be parsed
func (r *Resolver) loadSnapshot() (*feed.Snapshot, error) {
	data, readErr := r.store.ReadCurrent()
	if readErr == nil {
		snapshot, parseErr := feed.Parse(data)
		if parseErr == nil {
			r.log.Info("parsed current snapshot", "path", r.store.CurrentPath())
			return snapshot, nil
		}
		readErr = parseErr
	}

	if !r.config.ArchiveFallback {
		return nil, errors.NewNoUsableSnapshotError("current snapshot unusable and archive fallback disabled", readErr)
	}

	r.log.Warn("current snapshot unusable, trying archive fallback", "error", readErr)

	archive, ok := r.store.LatestArchive()
	if !ok {
		return nil, errors.NewNoUsableSnapshotError("current snapshot unusable and no archive snapshots found", readErr)
	}

	r.log.Info("using archive snapshot", "path", archive.Path, "date", archive.Date)

	data, err := r.store.ReadArchive(archive)
	if err != nil {
		return nil, errors.NewNoUsableSnapshotError("failed to read archive snapshot", err)
	}

	snapshot, err := feed.Parse(data)
	if err != nil {
		return nil, errors.NewNoUsableSnapshotError("archive snapshot unusable", err)
	}

	return snapshot, nil
}
