package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
	"imsforecast.app/pkg/errors"
)

// Config represents the application configuration structure
type Config struct {
	Feed      FeedConfig      `split_words:"true"`
	Storage   StorageConfig   `split_words:"true"`
	Forecast  ForecastConfig  `split_words:"true"`
	Image     ImageConfig     `split_words:"true"`
	Email     EmailConfig     `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
}

// FeedConfig contains download settings for the weather-bureau XML feed
type FeedConfig struct {
	URL            string `envconfig:"FEED_URL" default:"https://ims.gov.il/sites/default/files/ims_data/xml_files/isr_cities.xml"`
	TimeoutSeconds int    `envconfig:"FEED_TIMEOUT_SECONDS" default:"30"`
	MaxRetries     int    `envconfig:"FEED_MAX_RETRIES" default:"3"`
	RetrySeconds   int    `envconfig:"FEED_RETRY_SECONDS" default:"2"`
	SourceEncoding string `envconfig:"FEED_SOURCE_ENCODING" default:"ISO-8859-8"`
}

// StorageConfig contains snapshot file locations and retention settings
type StorageConfig struct {
	CurrentFile   string `envconfig:"STORAGE_CURRENT_FILE" default:"isr_cities_utf8.xml"`
	ArchiveDir    string `envconfig:"STORAGE_ARCHIVE_DIR" default:"archive"`
	OutputDir     string `envconfig:"STORAGE_OUTPUT_DIR" default:"output"`
	RetentionDays int    `envconfig:"STORAGE_RETENTION_DAYS" default:"14"`
}

// ForecastConfig contains resolver settings
type ForecastConfig struct {
	ExpectedCityCount int  `envconfig:"FORECAST_EXPECTED_CITY_COUNT" default:"15"`
	ArchiveFallback   bool `envconfig:"FORECAST_ARCHIVE_FALLBACK" default:"true"`
}

// ImageConfig contains renderer settings
type ImageConfig struct {
	OutputFile string `envconfig:"IMAGE_OUTPUT_FILE" default:"daily_forecast.jpg"`
	FontFile   string `envconfig:"IMAGE_FONT_FILE" default:"fonts/OpenSans.ttf"`
	LogoFile   string `envconfig:"IMAGE_LOGO_FILE" default:"assets/logos/IMS_logo.png"`
	IconDir    string `envconfig:"IMAGE_ICON_DIR" default:"assets/weather_icons"`
	Width      int    `envconfig:"IMAGE_WIDTH" default:"1080"`
	Height     int    `envconfig:"IMAGE_HEIGHT" default:"1920"`
	Quality    int    `envconfig:"IMAGE_QUALITY" default:"95"`
}

// EmailConfig contains SMTP delivery settings
type EmailConfig struct {
	SMTPHost     string `envconfig:"EMAIL_SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"EMAIL_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"EMAIL_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"EMAIL_SMTP_PASSWORD"`
	FromName     string `envconfig:"EMAIL_FROM_NAME" default:"Daily Forecast"`
	FromAddress  string `envconfig:"EMAIL_FROM_ADDRESS"`
	Recipients   string `envconfig:"EMAIL_RECIPIENTS"`
	TemplateFile string `envconfig:"EMAIL_TEMPLATE_FILE" default:"email_template.html"`
}

// SchedulerConfig contains the daily run schedule
type SchedulerConfig struct {
	RunAt string `envconfig:"SCHEDULER_RUN_AT" default:"06:00"`
}

// LoadConfig loads application configuration from environment variables.
// Email credentials are validated separately, right before delivery is
// attempted, so extraction-only runs work without them.
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Feed.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Forecast.Validate(); err != nil {
		return err
	}
	if err := c.Image.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks feed download configuration
func (f *FeedConfig) Validate() error {
	if f.URL == "" {
		return errors.NewConfigurationError("FEED_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") {
		return errors.NewConfigurationError("FEED_URL must start with http:// or https://", nil)
	}
	if f.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("FEED_TIMEOUT_SECONDS must be at least 1", nil)
	}
	if f.MaxRetries < 1 {
		return errors.NewConfigurationError("FEED_MAX_RETRIES must be at least 1", nil)
	}
	if f.RetrySeconds < 0 {
		return errors.NewConfigurationError("FEED_RETRY_SECONDS cannot be negative", nil)
	}
	return nil
}

// Validate checks storage configuration
func (s *StorageConfig) Validate() error {
	if s.CurrentFile == "" {
		return errors.NewConfigurationError("STORAGE_CURRENT_FILE cannot be empty", nil)
	}
	if s.ArchiveDir == "" {
		return errors.NewConfigurationError("STORAGE_ARCHIVE_DIR cannot be empty", nil)
	}
	if s.OutputDir == "" {
		return errors.NewConfigurationError("STORAGE_OUTPUT_DIR cannot be empty", nil)
	}
	if s.RetentionDays < 1 {
		return errors.NewConfigurationError("STORAGE_RETENTION_DAYS must be at least 1", nil)
	}
	return nil
}

// Validate checks resolver configuration
func (f *ForecastConfig) Validate() error {
	if f.ExpectedCityCount < 1 {
		return errors.NewConfigurationError("FORECAST_EXPECTED_CITY_COUNT must be at least 1", nil)
	}
	return nil
}

// Validate checks renderer configuration
func (i *ImageConfig) Validate() error {
	if i.OutputFile == "" {
		return errors.NewConfigurationError("IMAGE_OUTPUT_FILE cannot be empty", nil)
	}
	if i.Width < 1 || i.Height < 1 {
		return errors.NewConfigurationError("IMAGE_WIDTH and IMAGE_HEIGHT must be positive", nil)
	}
	if i.Quality < 1 || i.Quality > 100 {
		return errors.NewConfigurationError("IMAGE_QUALITY must be between 1 and 100", nil)
	}
	return nil
}

// Validate checks email delivery configuration. Called by the notifier
// before any network attempt so a missing credential fails fast.
func (e *EmailConfig) Validate() error {
	if e.SMTPHost == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_HOST cannot be empty", nil)
	}
	if e.SMTPPort < 1 || e.SMTPPort > 65535 {
		return errors.NewConfigurationError("EMAIL_SMTP_PORT must be between 1 and 65535", nil)
	}
	if e.SMTPUsername == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_USERNAME is required", nil)
	}
	if e.SMTPPassword == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_PASSWORD is required", nil)
	}
	if e.FromAddress == "" {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS is required", nil)
	}
	if !strings.Contains(e.FromAddress, "@") {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS must be a valid email address", nil)
	}
	if len(e.RecipientList()) == 0 {
		return errors.NewConfigurationError("EMAIL_RECIPIENTS is required", nil)
	}
	for _, recipient := range e.RecipientList() {
		if !strings.Contains(recipient, "@") {
			return errors.NewConfigurationError("EMAIL_RECIPIENTS must contain valid email addresses", nil)
		}
	}
	return nil
}

// RecipientList splits the comma-delimited recipients variable,
// dropping empty entries.
func (e *EmailConfig) RecipientList() []string {
	parts := strings.Split(e.Recipients, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
