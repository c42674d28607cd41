package providers

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imsforecast.app/config"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
)

func validEmailConfig() *config.EmailConfig {
	return &config.EmailConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "forecast@example.com",
		SMTPPassword: "app-password",
		FromName:     "Daily Forecast",
		FromAddress:  "forecast@example.com",
		Recipients:   "social@example.com, editor@example.com",
	}
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daily_forecast.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o644))
	return path
}

func TestSendForecast(t *testing.T) {
	t.Run("MissingCredentialsFailFast", func(t *testing.T) {
		cfg := validEmailConfig()
		cfg.SMTPPassword = ""
		provider := NewSMTPEmailProvider(cfg, logger.New())

		err := provider.SendForecast(writeTestImage(t), "2025-09-28", false)

		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "EMAIL_SMTP_PASSWORD")
	})

	t.Run("MissingRecipients", func(t *testing.T) {
		cfg := validEmailConfig()
		cfg.Recipients = " , "
		provider := NewSMTPEmailProvider(cfg, logger.New())

		err := provider.SendForecast(writeTestImage(t), "2025-09-28", false)

		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("ImageMissing", func(t *testing.T) {
		provider := NewSMTPEmailProvider(validEmailConfig(), logger.New())

		err := provider.SendForecast("/nonexistent/daily_forecast.jpg", "2025-09-28", false)

		require.Error(t, err)
		assert.True(t, errors.IsDeliveryError(err))
	})

	t.Run("DryRunDoesNotSend", func(t *testing.T) {
		provider := NewSMTPEmailProvider(validEmailConfig(), logger.New())

		err := provider.SendForecast(writeTestImage(t), "2025-09-28", true)

		assert.NoError(t, err)
	})

	t.Run("DryRunToleratesMissingImage", func(t *testing.T) {
		provider := NewSMTPEmailProvider(validEmailConfig(), logger.New())

		err := provider.SendForecast("/nonexistent/daily_forecast.jpg", "2025-09-28", true)

		assert.NoError(t, err)
	})
}

func TestBuildMessage(t *testing.T) {
	provider := NewSMTPEmailProvider(validEmailConfig(), logger.New())
	recipients := []string{"social@example.com", "editor@example.com"}

	message, err := provider.buildMessage("Daily Forecast 28/09/2025", "28/09/2025",
		recipients, "daily_forecast.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	text := string(message)
	assert.Contains(t, text, "From: Daily Forecast <forecast@example.com>")
	assert.Contains(t, text, "To: social@example.com, editor@example.com")
	assert.Contains(t, text, "Content-Type: multipart/related")
	assert.Contains(t, text, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, text, `attachment; filename="daily_forecast.jpg"`)
	assert.Contains(t, text, base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")))
	assert.Contains(t, text, "28/09/2025")
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	provider := NewSMTPEmailProvider(validEmailConfig(), logger.New())

	message, err := provider.buildMessage("Subject\r\nBcc: attacker@example.com", "28/09/2025",
		[]string{"social@example.com"}, "daily_forecast.jpg", nil)
	require.NoError(t, err)

	assert.NotContains(t, string(message), "Bcc: attacker@example.com")
}

func TestHTMLBody(t *testing.T) {
	t.Run("BuiltInTemplate", func(t *testing.T) {
		cfg := validEmailConfig()
		cfg.TemplateFile = ""
		provider := NewSMTPEmailProvider(cfg, logger.New())

		body := provider.htmlBody("28/09/2025")

		assert.Contains(t, body, "28/09/2025")
		assert.NotContains(t, body, "{forecast_date}")
	})

	t.Run("CustomTemplate", func(t *testing.T) {
		template := filepath.Join(t.TempDir(), "email_template.html")
		require.NoError(t, os.WriteFile(template, []byte("<p>Forecast for {forecast_date}</p>"), 0o644))

		cfg := validEmailConfig()
		cfg.TemplateFile = template
		provider := NewSMTPEmailProvider(cfg, logger.New())

		body := provider.htmlBody("28/09/2025")

		assert.Equal(t, "<p>Forecast for 28/09/2025</p>", body)
	})

	t.Run("MissingTemplateFallsBack", func(t *testing.T) {
		cfg := validEmailConfig()
		cfg.TemplateFile = "/nonexistent/template.html"
		provider := NewSMTPEmailProvider(cfg, logger.New())

		body := provider.htmlBody("28/09/2025")

		assert.Contains(t, body, "28/09/2025")
	})
}
