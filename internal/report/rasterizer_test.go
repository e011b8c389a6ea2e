package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/formpulse/formpulse-backend/internal/types"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSeries() *ChartSeries {
	return &ChartSeries{
		Labels:      []string{"Yes", "No", "Maybe"},
		Counts:      []float64{60, 30, 10},
		Percentages: []float64{60, 30, 10},
		Colors:      []string{"#4F46E5", "#10B981", "#F59E0B"},
		Base:        PercentBaseResponses,
	}
}

func TestRasterizerRendersEachKind(t *testing.T) {
	r := NewRasterizer(newTestLogger(t), "")
	kinds := []types.ChartKind{
		types.ChartKindBar,
		types.ChartKindPie,
		types.ChartKindDoughnut,
		types.ChartKindLine,
	}
	for _, kind := range kinds {
		png, err := r.Render(kind, testSeries(), ChartStyle{ShowLegend: true, DataLabelFormat: types.DataLabelPercent})
		if err != nil {
			t.Fatalf("%s: render failed: %v", kind, err)
		}
		if !bytes.HasPrefix(png, pngMagic) {
			t.Fatalf("%s: output is not a PNG", kind)
		}
	}
}

func TestRasterizerEmptySeries(t *testing.T) {
	r := NewRasterizer(newTestLogger(t), "")
	if _, err := r.Render(types.ChartKindBar, &ChartSeries{}, ChartStyle{}); !errors.Is(err, ErrRasterization) {
		t.Fatalf("expected ErrRasterization, got %v", err)
	}
	if _, err := r.Render(types.ChartKindBar, nil, ChartStyle{}); !errors.Is(err, ErrRasterization) {
		t.Fatalf("nil series: expected ErrRasterization, got %v", err)
	}
}

func TestRasterizerUnknownKind(t *testing.T) {
	r := NewRasterizer(newTestLogger(t), "")
	if _, err := r.Render(types.ChartKindNone, testSeries(), ChartStyle{}); !errors.Is(err, ErrRasterization) {
		t.Fatalf("expected ErrRasterization for unrenderable kind, got %v", err)
	}
}

func TestRasterizerMissingFontFallsBack(t *testing.T) {
	r := NewRasterizer(newTestLogger(t), "/nonexistent/font.ttf")
	png, err := r.Render(types.ChartKindBar, testSeries(), ChartStyle{})
	if err != nil {
		t.Fatalf("missing font must fall back to the builtin face: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestTruncateLabelKeepsRunesIntact(t *testing.T) {
	label := strings.Repeat("é", 40) + "日本語"
	got := truncateLabel(label, 20)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 20 {
		t.Fatalf("expected 20 runes, got %d (%q)", n, got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if truncateLabel("short", 20) != "short" {
		t.Fatal("labels under the limit must pass through unchanged")
	}
	if got := truncateLabel("ééééé", 2); got != "éé" || !utf8.ValidString(got) {
		t.Fatalf("tiny limits must still cut on rune boundaries, got %q", got)
	}
}
