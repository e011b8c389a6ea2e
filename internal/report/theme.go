package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme is the document style loaded at startup: page geometry in mm, text
// colors, and per-chart-kind image heights. Values absent from the YAML file
// keep their defaults.
type Theme struct {
	PageWidth    float64 `yaml:"page_width"`
	PageHeight   float64 `yaml:"page_height"`
	MarginTop    float64 `yaml:"margin_top"`
	MarginBottom float64 `yaml:"margin_bottom"`
	MarginLeft   float64 `yaml:"margin_left"`
	MarginRight  float64 `yaml:"margin_right"`

	FontFamily string `yaml:"font_family"`

	PrimaryColor string `yaml:"primary_color"`
	TextColor    string `yaml:"text_color"`
	MutedColor   string `yaml:"muted_color"`
	HeaderFill   string `yaml:"header_fill"`
	StripeFill   string `yaml:"stripe_fill"`

	RowHeight       float64 `yaml:"row_height"`
	SectionGap      float64 `yaml:"section_gap"`
	ChartHeightBar  float64 `yaml:"chart_height_bar"`
	ChartHeightPie  float64 `yaml:"chart_height_pie"`
	ChartHeightLine float64 `yaml:"chart_height_line"`
	ChartImageDPI   float64 `yaml:"chart_image_dpi"`
	ChartFontPath   string  `yaml:"chart_font_path"`
}

// DefaultTheme matches A4 portrait with the palette used by the on-screen
// widgets.
func DefaultTheme() Theme {
	return Theme{
		PageWidth:       210,
		PageHeight:      297,
		MarginTop:       20,
		MarginBottom:    20,
		MarginLeft:      20,
		MarginRight:     20,
		FontFamily:      "Arial",
		PrimaryColor:    "#1E3A5F",
		TextColor:       "#2C3E50",
		MutedColor:      "#7F8C8D",
		HeaderFill:      "#1E3A5F",
		StripeFill:      "#F1F5F9",
		RowHeight:       6,
		SectionGap:      8,
		ChartHeightBar:  70,
		ChartHeightPie:  75,
		ChartHeightLine: 60,
		ChartImageDPI:   2,
	}
}

// LoadTheme reads a theme YAML overlay on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return theme, fmt.Errorf("read theme file: %w", err)
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return theme, fmt.Errorf("parse theme file: %w", err)
	}
	return theme, nil
}

// ChartHeight returns the reserved document height in mm for a chart image
// of the given kind.
func (t Theme) ChartHeight(kind string) float64 {
	switch kind {
	case "pie", "doughnut":
		return t.ChartHeightPie
	case "line":
		return t.ChartHeightLine
	default:
		return t.ChartHeightBar
	}
}

func (t Theme) contentWidth() float64 {
	return t.PageWidth - t.MarginLeft - t.MarginRight
}
