package providers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"imsforecast.app/config"
	"imsforecast.app/models"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/storage"
)

// FeedDownloader fetches the weather-bureau XML feed, converts it to
// UTF-8 and stores current and archive snapshot copies
type FeedDownloader struct {
	config *config.FeedConfig
	store  *storage.Store
	client *http.Client
	log    *logger.Logger
}

// NewFeedDownloader creates a feed downloader
func NewFeedDownloader(cfg *config.FeedConfig, store *storage.Store, log *logger.Logger) *FeedDownloader {
	return &FeedDownloader{
		config: cfg,
		store:  store,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

// DownloadAndStore runs the full download step: fetch with retries,
// convert encoding, save the current snapshot, save a best-effort archive
// copy, and purge archives past retention. In dry-run mode nothing is
// written or deleted.
func (d *FeedDownloader) DownloadAndStore(now time.Time, dryRun bool) error {
	raw, err := d.fetch()
	if err != nil {
		return err
	}

	text, err := d.convertEncoding(raw)
	if err != nil {
		return err
	}

	if dryRun {
		d.log.Info("dry run: skipping snapshot writes", "bytes", len(text))
		if _, err := d.store.Purge(now, true); err != nil {
			d.log.Warn("archive purge failed", "error", err)
		}
		return nil
	}

	if err := d.store.WriteCurrent(text); err != nil {
		return err
	}

	// Best-effort secondary copy
	if err := d.store.WriteArchive(text, models.FeedDate(now)); err != nil {
		d.log.Warn("failed to save archive copy, continuing", "error", err)
	}

	if _, err := d.store.Purge(now, false); err != nil {
		d.log.Warn("archive purge failed", "error", err)
	}

	return nil
}

// fetch downloads the feed with a bounded retry loop and fixed delay
// between attempts
func (d *FeedDownloader) fetch() ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= d.config.MaxRetries; attempt++ {
		data, err := d.fetchOnce()
		if err == nil {
			d.log.Info("download successful",
				"attempt", fmt.Sprintf("%d/%d", attempt, d.config.MaxRetries),
				"bytes", len(data))
			return data, nil
		}

		lastErr = err
		d.log.Warn("download attempt failed",
			"attempt", fmt.Sprintf("%d/%d", attempt, d.config.MaxRetries),
			"error", err)

		if attempt < d.config.MaxRetries {
			time.Sleep(time.Duration(d.config.RetrySeconds) * time.Second)
		}
	}

	return nil, errors.NewDownloadError(
		fmt.Sprintf("failed to download feed after %d attempts", d.config.MaxRetries), lastErr)
}

func (d *FeedDownloader) fetchOnce() ([]byte, error) {
	resp, err := d.client.Get(d.config.URL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// convertEncoding decodes the feed from its source encoding to UTF-8 and
// rewrites the XML declaration to match
func (d *FeedDownloader) convertEncoding(raw []byte) (string, error) {
	if !strings.EqualFold(d.config.SourceEncoding, "ISO-8859-8") {
		return string(raw), nil
	}

	decoded, err := charmap.ISO8859_8.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.NewDownloadError("failed to decode feed from ISO-8859-8", err)
	}

	text := string(decoded)
	text = strings.Replace(text, `encoding="ISO-8859-8"`, `encoding="UTF-8"`, 1)
	text = strings.Replace(text, `encoding="iso-8859-8"`, `encoding="UTF-8"`, 1)

	return text, nil
}
