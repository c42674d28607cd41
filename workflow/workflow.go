// Package workflow sequences the daily pipeline:
// download -> resolve -> render -> notify.
package workflow

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"imsforecast.app/config"
	"imsforecast.app/forecast"
	"imsforecast.app/models"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/providers"
	"imsforecast.app/render"
	"imsforecast.app/storage"
)

// Options control a single run
type Options struct {
	// DryRun simulates the run without writing files or sending email
	DryRun bool
	// TargetDate overrides the forecast date (YYYY-MM-DD); empty means today
	TargetDate string
	// NoFallback disables the archive snapshot fallback for this run
	NoFallback bool
}

// Workflow wires the pipeline components together
type Workflow struct {
	config     *config.Config
	log        *logger.Logger
	store      *storage.Store
	downloader *providers.FeedDownloader
	renderer   *render.ImageRenderer
	notifier   *providers.SMTPEmailProvider
}

// New builds a workflow from configuration
func New(cfg *config.Config, log *logger.Logger) *Workflow {
	store := storage.NewStore(&cfg.Storage, log)
	return &Workflow{
		config:     cfg,
		log:        log,
		store:      store,
		downloader: providers.NewFeedDownloader(&cfg.Feed, store, log),
		renderer:   render.NewImageRenderer(&cfg.Image, log),
		notifier:   providers.NewSMTPEmailProvider(&cfg.Email, log),
	}
}

// Store exposes the snapshot store for maintenance commands
func (w *Workflow) Store() *storage.Store {
	return w.store
}

// Run executes one full daily cycle. A failed download is not fatal on
// its own: resolution may still succeed from the existing or archived
// snapshot. Resolution, rendering and delivery failures abort the run.
func (w *Workflow) Run(opts Options) error {
	start := time.Now()
	log := w.log.WithField("run_id", uuid.NewString())

	targetDate := opts.TargetDate
	if targetDate == "" {
		targetDate = models.FeedDate(start)
	}

	log.Info("forecast workflow started",
		"target_date", targetDate,
		"dry_run", opts.DryRun)

	if !opts.DryRun {
		if err := w.store.EnsureDirectories(); err != nil {
			return err
		}
	}

	if err := w.downloader.DownloadAndStore(start, opts.DryRun); err != nil {
		log.Error("download step failed, continuing with existing or archived snapshot", "error", err)
	}

	forecastCfg := w.config.Forecast
	if opts.NoFallback {
		forecastCfg.ArchiveFallback = false
	}
	resolver := forecast.NewResolver(w.store, &forecastCfg, log)

	resolved, err := resolver.Resolve(targetDate)
	if err != nil {
		log.Error("resolution step failed", "error", err)
		return err
	}

	log.Info("forecast resolved",
		"requested_date", resolved.RequestedDate,
		"effective_date", resolved.EffectiveDate,
		"cities", len(resolved.Records))

	imagePath := filepath.Join(w.config.Storage.OutputDir, w.config.Image.OutputFile)

	if opts.DryRun {
		log.Info("dry run: skipping image generation",
			"cities", len(resolved.Records),
			"path", imagePath)
	} else if err := w.renderer.Render(resolved, imagePath); err != nil {
		log.Error("render step failed", "error", err)
		return err
	}

	if err := w.notifier.SendForecast(imagePath, resolved.EffectiveDate, opts.DryRun); err != nil {
		log.Error("delivery step failed", "error", err)
		return err
	}

	log.Info("forecast workflow complete",
		"effective_date", resolved.EffectiveDate,
		"duration", time.Since(start).String())
	return nil
}
