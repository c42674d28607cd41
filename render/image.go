// Package render draws the daily forecast story image: a white header
// with logo and date above a sky gradient with one row per city.
package render

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/text/unicode/bidi"
	"imsforecast.app/config"
	"imsforecast.app/models"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
)

// Layout tuned for the 1080x1920 story format
const (
	headerHeight   = 180
	logoHeight     = 120
	logoMarginTop  = 30
	rowHeight      = 105
	iconSize       = 65
	rowPadding     = 160
	elementSpacing = 40

	fontSizeCity = 40
	fontSizeTemp = 35
	fontSizeDate = 50
)

var (
	colorBlack    = color.RGBA{A: 255}
	colorGray     = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	colorSkyLight = color.RGBA{R: 135, G: 206, B: 250, A: 255}
)

// Weather code to icon file mapping; unknown codes fall back to the
// mostly-clear icon
var weatherIcons = map[string]string{
	"1250": "sunny.png",
	"1220": "partly_cloudy.png",
	"1310": "mostly_clear.png",
	"1580": "very_hot.png",
}

const defaultWeatherIcon = "mostly_clear.png"

// ImageRenderer turns a resolved forecast into a JPEG image
type ImageRenderer struct {
	config *config.ImageConfig
	log    *logger.Logger
}

// NewImageRenderer creates an image renderer
func NewImageRenderer(cfg *config.ImageConfig, log *logger.Logger) *ImageRenderer {
	return &ImageRenderer{
		config: cfg,
		log:    log,
	}
}

// Render draws the forecast image and writes it to outputPath
func (r *ImageRenderer) Render(forecast *models.ResolvedForecast, outputPath string) error {
	width := r.config.Width
	height := r.config.Height

	dc := gg.NewContext(width, height)
	r.drawBackground(dc, width, height)
	if err := r.drawHeader(dc, forecast.EffectiveDate, width); err != nil {
		return err
	}
	if err := r.drawCityRows(dc, forecast.Records, width, height); err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.NewRenderError("failed to create image file", err)
	}
	defer func() { _ = out.Close() }()

	if err := jpeg.Encode(out, dc.Image(), &jpeg.Options{Quality: r.config.Quality}); err != nil {
		return errors.NewRenderError("failed to encode forecast image", err)
	}

	r.log.Info("forecast image saved", "path", outputPath, "cities", len(forecast.Records))
	return nil
}

// drawBackground paints the white header band and a vertical sky-blue to
// white gradient below it
func (r *ImageRenderer) drawBackground(dc *gg.Context, width, height int) {
	dc.SetColor(color.White)
	dc.Clear()

	for y := headerHeight; y < height; y++ {
		ratio := float64(y-headerHeight) / float64(height-headerHeight)
		dc.SetColor(color.RGBA{
			R: lerp(colorSkyLight.R, 255, ratio),
			G: lerp(colorSkyLight.G, 255, ratio),
			B: lerp(colorSkyLight.B, 255, ratio),
			A: 255,
		})
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

func (r *ImageRenderer) drawHeader(dc *gg.Context, effectiveDate string, width int) error {
	logo := r.loadLogo()
	dc.DrawImage(logo, rowPadding, logoMarginTop)

	if err := dc.LoadFontFace(r.config.FontFile, fontSizeDate); err != nil {
		return errors.NewRenderError("failed to load font", err)
	}
	dc.SetColor(colorBlack)
	dc.DrawStringAnchored(models.DisplayDate(effectiveDate),
		float64(width-rowPadding), float64(headerHeight)/2, 1, 0.5)

	return nil
}

func (r *ImageRenderer) drawCityRows(dc *gg.Context, records []models.CityRecord, width, height int) error {
	// Center the list in the space below the header
	listHeight := len(records) * rowHeight
	contentStart := headerHeight + (height-headerHeight-listHeight)/2

	for i, record := range records {
		rowTop := contentStart + i*rowHeight
		rowCenter := float64(rowTop) + float64(rowHeight)/2

		icon := r.loadWeatherIcon(record.WeatherCode)
		dc.DrawImage(icon, rowPadding, int(rowCenter)-iconSize/2)

		if err := dc.LoadFontFace(r.config.FontFile, fontSizeTemp); err != nil {
			return errors.NewRenderError("failed to load font", err)
		}
		dc.SetColor(colorGray)
		dc.DrawStringAnchored(record.TemperatureRange(),
			rowPadding+iconSize+elementSpacing, rowCenter, 0, 0.5)

		if err := dc.LoadFontFace(r.config.FontFile, fontSizeCity); err != nil {
			return errors.NewRenderError("failed to load font", err)
		}
		dc.SetColor(colorBlack)
		dc.DrawStringAnchored(shapeRTL(record.NameHeb),
			float64(width-rowPadding), rowCenter, 1, 0.5)

		if i < len(records)-1 {
			separatorY := float64(rowTop + rowHeight)
			dc.SetRGBA255(255, 255, 255, 50)
			dc.SetLineWidth(1)
			dc.DrawLine(rowPadding, separatorY, float64(width-rowPadding), separatorY)
			dc.Stroke()
		}
	}

	return nil
}

// loadWeatherIcon loads and scales the icon for a weather code, degrading
// to a transparent placeholder when the file is missing
func (r *ImageRenderer) loadWeatherIcon(weatherCode string) image.Image {
	name, ok := weatherIcons[weatherCode]
	if !ok {
		name = defaultWeatherIcon
	}

	icon, err := gg.LoadImage(filepath.Join(r.config.IconDir, name))
	if err != nil {
		r.log.Warn("could not load weather icon", "icon", name, "error", err)
		return image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	}

	return scaleImage(icon, iconSize, iconSize)
}

// loadLogo loads the header logo scaled to the header height, degrading
// to a gray placeholder when the file is missing
func (r *ImageRenderer) loadLogo() image.Image {
	logo, err := gg.LoadImage(r.config.LogoFile)
	if err != nil {
		r.log.Warn("could not load logo", "path", r.config.LogoFile, "error", err)
		placeholder := image.NewRGBA(image.Rect(0, 0, logoHeight, logoHeight))
		xdraw.Draw(placeholder, placeholder.Bounds(),
			image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255}), image.Point{}, xdraw.Src)
		return placeholder
	}

	bounds := logo.Bounds()
	scaledWidth := logoHeight * bounds.Dx() / bounds.Dy()
	return scaleImage(logo, scaledWidth, logoHeight)
}

func scaleImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// shapeRTL reorders bidirectional text into visual order so Hebrew names
// render correctly without a shaping engine
func shapeRTL(text string) string {
	var paragraph bidi.Paragraph
	paragraph.SetString(text)
	ordering, err := paragraph.Order()
	if err != nil {
		return text
	}

	var sb strings.Builder
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		if run.Direction() == bidi.RightToLeft {
			sb.WriteString(reverseRunes(run.String()))
		} else {
			sb.WriteString(run.String())
		}
	}
	return sb.String()
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func lerp(from, to uint8, ratio float64) uint8 {
	return uint8(float64(from) + (float64(to)-float64(from))*ratio)
}
