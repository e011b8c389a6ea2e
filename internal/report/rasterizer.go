package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/types"
)

// ChartStyle carries the surface-dependent rendering knobs. Scale is the
// pixel multiplier (the paginated document renders at a higher density than
// the on-screen widgets).
type ChartStyle struct {
	Width           int
	Height          int
	Scale           float64
	ShowLegend      bool
	DataLabelFormat types.DataLabelFormat
	Title           string
}

func (cs ChartStyle) normalized() ChartStyle {
	if cs.Width <= 0 {
		cs.Width = 640
	}
	if cs.Height <= 0 {
		cs.Height = 360
	}
	if cs.Scale <= 0 {
		cs.Scale = 1
	}
	return cs
}

// Rasterizer turns a chart series plus style into PNG bytes.
type Rasterizer interface {
	Render(kind types.ChartKind, series *ChartSeries, style ChartStyle) ([]byte, error)
}

type ggRasterizer struct {
	log      *logger.Logger
	fontPath string
}

// NewRasterizer builds the in-process chart renderer. A TTF font is optional;
// without one the renderer falls back to the built-in bitmap face.
func NewRasterizer(log *logger.Logger, fontPath string) Rasterizer {
	return &ggRasterizer{
		log:      log.With("service", "Rasterizer"),
		fontPath: strings.TrimSpace(fontPath),
	}
}

func (r *ggRasterizer) Render(kind types.ChartKind, series *ChartSeries, style ChartStyle) ([]byte, error) {
	if series == nil || len(series.Labels) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrRasterization)
	}
	style = style.normalized()

	w := int(float64(style.Width) * style.Scale)
	h := int(float64(style.Height) * style.Scale)
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	if face := r.loadFace(12 * style.Scale); face != nil {
		dc.SetFontFace(face)
	}

	var err error
	switch kind {
	case types.ChartKindBar:
		err = drawBarChart(dc, series, style)
	case types.ChartKindPie:
		err = drawPieChart(dc, series, style, 0)
	case types.ChartKindDoughnut:
		err = drawPieChart(dc, series, style, 0.55)
	case types.ChartKindLine:
		err = drawLineChart(dc, series, style)
	default:
		err = fmt.Errorf("unrenderable chart kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterization, err)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRasterization, err)
	}
	return buf.Bytes(), nil
}

func (r *ggRasterizer) loadFace(size float64) font.Face {
	if r.fontPath == "" {
		return nil
	}
	raw, err := os.ReadFile(r.fontPath)
	if err != nil {
		r.log.Warn("could not read chart font, using builtin face", "path", r.fontPath, "error", err)
		return nil
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		r.log.Warn("could not parse chart font, using builtin face", "path", r.fontPath, "error", err)
		return nil
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func setHexColor(dc *gg.Context, hexColor string, fallback color.NRGBA) {
	cr, cg, cb, err := ParseHexRGB(hexColor)
	if err != nil {
		dc.SetColor(fallback)
		return
	}
	dc.SetColor(color.NRGBA{R: cr, G: cg, B: cb, A: 255})
}

func dataLabel(series *ChartSeries, i int, format types.DataLabelFormat) string {
	switch format {
	case types.DataLabelPercent:
		return formatPercent(series.Percentages[i])
	case types.DataLabelCount:
		return formatNumber(series.Counts[i])
	case types.DataLabelBoth:
		return fmt.Sprintf("%s (%s)", formatNumber(series.Counts[i]), formatPercent(series.Percentages[i]))
	default:
		return ""
	}
}

func drawBarChart(dc *gg.Context, series *ChartSeries, style ChartStyle) error {
	w := float64(dc.Width())
	h := float64(dc.Height())
	left, right, top, bottom := 50.0*style.Scale, 20.0*style.Scale, 30.0*style.Scale, 45.0*style.Scale
	plotW := w - left - right
	plotH := h - top - bottom

	maxCount := 0.0
	for _, c := range series.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount <= 0 {
		maxCount = 1
	}

	if style.Title != "" {
		dc.SetColor(color.NRGBA{R: 44, G: 62, B: 80, A: 255})
		dc.DrawStringAnchored(style.Title, w/2, top/2, 0.5, 0.5)
	}

	// Horizontal gridlines with axis labels.
	dc.SetColor(color.NRGBA{R: 224, G: 224, B: 224, A: 255})
	dc.SetLineWidth(style.Scale)
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		y := top + plotH - plotH*float64(i)/float64(gridLines)
		dc.DrawLine(left, y, left+plotW, y)
		dc.Stroke()
		val := maxCount * float64(i) / float64(gridLines)
		dc.SetColor(color.NRGBA{R: 127, G: 140, B: 141, A: 255})
		dc.DrawStringAnchored(formatNumber(math.Round(val)), left-6*style.Scale, y, 1, 0.5)
		dc.SetColor(color.NRGBA{R: 224, G: 224, B: 224, A: 255})
	}

	n := len(series.Counts)
	slot := plotW / float64(n)
	barW := slot * 0.7
	for i, c := range series.Counts {
		x := left + float64(i)*slot + (slot-barW)/2
		barH := plotH * c / maxCount
		y := top + plotH - barH

		setHexColor(dc, series.Colors[i], color.NRGBA{R: 79, G: 70, B: 229, A: 255})
		dc.DrawRectangle(x, y, barW, barH)
		dc.Fill()

		if label := dataLabel(series, i, style.DataLabelFormat); label != "" {
			dc.SetColor(color.NRGBA{R: 44, G: 62, B: 80, A: 255})
			dc.DrawStringAnchored(label, x+barW/2, y-6*style.Scale, 0.5, 1)
		}

		dc.SetColor(color.NRGBA{R: 44, G: 62, B: 80, A: 255})
		dc.DrawStringAnchored(truncateLabel(series.Labels[i], 14), x+barW/2, top+plotH+12*style.Scale, 0.5, 0.5)
	}
	return nil
}

func drawLineChart(dc *gg.Context, series *ChartSeries, style ChartStyle) error {
	w := float64(dc.Width())
	h := float64(dc.Height())
	left, right, top, bottom := 50.0*style.Scale, 20.0*style.Scale, 30.0*style.Scale, 45.0*style.Scale
	plotW := w - left - right
	plotH := h - top - bottom

	maxCount := 0.0
	for _, c := range series.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount <= 0 {
		maxCount = 1
	}

	n := len(series.Counts)
	step := plotW
	if n > 1 {
		step = plotW / float64(n-1)
	}

	dc.SetColor(color.NRGBA{R: 224, G: 224, B: 224, A: 255})
	dc.SetLineWidth(style.Scale)
	for i := 0; i <= 5; i++ {
		y := top + plotH - plotH*float64(i)/5
		dc.DrawLine(left, y, left+plotW, y)
		dc.Stroke()
	}

	setHexColor(dc, series.Colors[0], color.NRGBA{R: 79, G: 70, B: 229, A: 255})
	dc.SetLineWidth(2 * style.Scale)
	for i := 0; i < n; i++ {
		x := left + float64(i)*step
		y := top + plotH - plotH*series.Counts[i]/maxCount
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	for i := 0; i < n; i++ {
		x := left + float64(i)*step
		y := top + plotH - plotH*series.Counts[i]/maxCount
		setHexColor(dc, series.Colors[i], color.NRGBA{R: 79, G: 70, B: 229, A: 255})
		dc.DrawCircle(x, y, 3*style.Scale)
		dc.Fill()
		if label := dataLabel(series, i, style.DataLabelFormat); label != "" {
			dc.SetColor(color.NRGBA{R: 44, G: 62, B: 80, A: 255})
			dc.DrawStringAnchored(label, x, y-8*style.Scale, 0.5, 1)
		}
		dc.SetColor(color.NRGBA{R: 44, G: 62, B: 80, A: 255})
		dc.DrawStringAnchored(truncateLabel(series.Labels[i], 12), x, top+plotH+12*style.Scale, 0.5, 0.5)
	}
	return nil
}

// drawPieChart renders pie and doughnut charts; holeRatio > 0 punches the
// doughnut hole.
func drawPieChart(dc *gg.Context, series *ChartSeries, style ChartStyle, holeRatio float64) error {
	w := float64(dc.Width())
	h := float64(dc.Height())

	total := 0.0
	for _, c := range series.Counts {
		total += c
	}
	if total <= 0 {
		return fmt.Errorf("pie chart requires a positive total")
	}

	cx := w * 0.38
	cy := h / 2
	radius := math.Min(w*0.38, h/2) * 0.8

	angle := -math.Pi / 2
	for i, c := range series.Counts {
		share := c / total
		end := angle + share*2*math.Pi
		setHexColor(dc, series.Colors[i], color.NRGBA{R: 79, G: 70, B: 229, A: 255})
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, radius, angle, end)
		dc.ClosePath()
		dc.Fill()

		if label := dataLabel(series, i, style.DataLabelFormat); label != "" && share > 0.04 {
			mid := (angle + end) / 2
			lx := cx + math.Cos(mid)*radius*0.65
			ly := cy + math.Sin(mid)*radius*0.65
			dc.SetColor(color.White)
			dc.DrawStringAnchored(label, lx, ly, 0.5, 0.5)
		}
		angle = end
	}

	if holeRatio > 0 {
		dc.SetColor(color.White)
		dc.DrawCircle(cx, cy, radius*holeRatio)
		dc.Fill()
	}

	if style.ShowLegend {
		lx := w * 0.72
		ly := h/2 - float64(len(series.Labels))*9*style.Scale
		for i, label := range series.Labels {
			setHexColor(dc, series.Colors[i], color.NRGBA{R: 79, G: 70, B: 229, A: 255})
			dc.DrawRectangle(lx, ly, 10*style.Scale, 10*style.Scale)
			dc.Fill()
			dc.SetColor(color.NRGBA{R: 44, G: 62, B: 80, A: 255})
			dc.DrawStringAnchored(truncateLabel(label, 20), lx+14*style.Scale, ly+5*style.Scale, 0, 0.5)
			ly += 18 * style.Scale
		}
	}
	return nil
}

// truncateLabel shortens a label to max runes, never splitting a multibyte
// character.
func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
