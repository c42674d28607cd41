package providers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"imsforecast.app/config"
	"imsforecast.app/models"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
)

const defaultEmailBody = `<html dir="rtl"><body>
<p>מצורפת תמונת תחזית מזג האוויר היומית לתאריך {forecast_date}.</p>
<p>Attached is the daily weather forecast image for {forecast_date}.</p>
</body></html>`

// SMTPEmailProvider delivers the rendered forecast image by email over SMTP
type SMTPEmailProvider struct {
	config *config.EmailConfig
	log    *logger.Logger
}

// NewSMTPEmailProvider creates a new SMTP email provider
func NewSMTPEmailProvider(cfg *config.EmailConfig, log *logger.Logger) *SMTPEmailProvider {
	return &SMTPEmailProvider{
		config: cfg,
		log:    log,
	}
}

// SendForecast emails the forecast image to every configured recipient.
// Credentials are validated before any network use; in dry-run mode the
// message is built and logged but never sent.
func (p *SMTPEmailProvider) SendForecast(imagePath, forecastDate string, dryRun bool) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		if !dryRun {
			return errors.NewDeliveryError("forecast image not found", err)
		}
		p.log.Warn("dry run: forecast image not found, attaching nothing", "path", imagePath)
	}

	displayDate := models.DisplayDate(forecastDate)
	subject := fmt.Sprintf("תחזית מזג אוויר יומית - %s | Daily Weather Forecast", displayDate)
	recipients := p.config.RecipientList()

	message, err := p.buildMessage(subject, displayDate, recipients, filepath.Base(imagePath), imageData)
	if err != nil {
		return err
	}

	p.log.Info("email prepared",
		"server", fmt.Sprintf("%s:%d", p.config.SMTPHost, p.config.SMTPPort),
		"from", p.config.FromAddress,
		"to", strings.Join(recipients, ", "),
		"attachment", filepath.Base(imagePath),
		"attachment_bytes", len(imageData))

	if dryRun {
		p.log.Info("dry run: email not sent", "subject", subject)
		return nil
	}

	auth := smtp.PlainAuth("", p.config.SMTPUsername, p.config.SMTPPassword, p.config.SMTPHost)
	smtpAddr := fmt.Sprintf("%s:%d", p.config.SMTPHost, p.config.SMTPPort)

	if err := smtp.SendMail(smtpAddr, auth, p.config.FromAddress, recipients, message); err != nil {
		return errors.NewDeliveryError("failed to send forecast email", err)
	}

	p.log.Info("email sent", "to", strings.Join(recipients, ", "), "subject", subject)
	return nil
}

// buildMessage assembles a multipart/related MIME message with an HTML
// body and the forecast image attached
func (p *SMTPEmailProvider) buildMessage(subject, displayDate string, recipients []string, imageName string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Remove line breaks from subject to prevent header injection
	subject = strings.ReplaceAll(strings.ReplaceAll(subject, "\r\n", ""), "\n", "")

	from := fmt.Sprintf("%s <%s>", p.config.FromName, p.config.FromAddress)
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: =?UTF-8?B?%s?=\r\nMIME-Version: 1.0\r\nContent-Type: multipart/related; boundary=%q\r\n\r\n",
		from,
		strings.Join(recipients, ", "),
		base64.StdEncoding.EncodeToString([]byte(subject)),
		writer.Boundary())
	buf.WriteString(headers)

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	htmlPart, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return nil, errors.NewDeliveryError("failed to build email body", err)
	}
	if _, err := htmlPart.Write([]byte(p.htmlBody(displayDate))); err != nil {
		return nil, errors.NewDeliveryError("failed to build email body", err)
	}

	imageHeader := textproto.MIMEHeader{}
	imageHeader.Set("Content-Type", "image/jpeg")
	imageHeader.Set("Content-Transfer-Encoding", "base64")
	imageHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imageName))
	imagePart, err := writer.CreatePart(imageHeader)
	if err != nil {
		return nil, errors.NewDeliveryError("failed to attach forecast image", err)
	}
	if _, err := imagePart.Write([]byte(base64.StdEncoding.EncodeToString(imageData))); err != nil {
		return nil, errors.NewDeliveryError("failed to attach forecast image", err)
	}

	if err := writer.Close(); err != nil {
		return nil, errors.NewDeliveryError("failed to finalize email message", err)
	}

	return buf.Bytes(), nil
}

// htmlBody loads the configured HTML template and substitutes the
// forecast date, falling back to a built-in body when no template is
// available
func (p *SMTPEmailProvider) htmlBody(displayDate string) string {
	body := defaultEmailBody
	if p.config.TemplateFile != "" {
		data, err := os.ReadFile(p.config.TemplateFile)
		if err != nil {
			p.log.Warn("email template not found, using built-in body", "path", p.config.TemplateFile)
		} else {
			body = string(data)
		}
	}
	return strings.ReplaceAll(body, "{forecast_date}", displayDate)
}
