package report

import (
	"testing"

	"github.com/formpulse/formpulse-backend/internal/types"
)

func TestResolveSettingsTypeDefaults(t *testing.T) {
	eff := ResolveSettings(types.QuestionTypeSingleSelect, types.GlobalSettings{}, nil, 3)
	if eff.ChartKind != types.ChartKindPie {
		t.Fatalf("expected pie default for single select, got %s", eff.ChartKind)
	}
	if eff.DisplayOrder != 3 {
		t.Fatalf("expected natural sequence 3, got %d", eff.DisplayOrder)
	}

	eff = ResolveSettings(types.QuestionTypeNumeric, types.GlobalSettings{}, nil, 1)
	if !eff.Stats.Mean || !eff.Stats.StdDev {
		t.Fatalf("expected numeric stats defaults on, got %+v", eff.Stats)
	}
}

func TestResolveSettingsGlobalLayerOverridesDefaults(t *testing.T) {
	global := types.GlobalSettings{
		ChartKind: types.ChartKindBar,
		BaseColor: "#10B981",
		SortOrder: types.SortOrderDesc,
	}
	eff := ResolveSettings(types.QuestionTypeSingleSelect, global, nil, 1)
	if eff.ChartKind != types.ChartKindBar {
		t.Fatalf("global chart kind ignored, got %s", eff.ChartKind)
	}
	if eff.BaseColor != "#10B981" {
		t.Fatalf("global base color ignored, got %s", eff.BaseColor)
	}
	if eff.SortOrder != types.SortOrderDesc {
		t.Fatalf("global sort order ignored, got %s", eff.SortOrder)
	}
}

func TestResolveSettingsEmptyGlobalChartKindFallsThrough(t *testing.T) {
	eff := ResolveSettings(types.QuestionTypeNPS, types.GlobalSettings{ChartKind: ""}, nil, 1)
	if eff.ChartKind != types.ChartKindDoughnut {
		t.Fatalf("expected type default doughnut, got %s", eff.ChartKind)
	}
}

func TestResolveSettingsOverrideWins(t *testing.T) {
	global := types.GlobalSettings{ChartKind: types.ChartKindBar}
	raw := types.RawSettingsOverride{
		"chart_kind":   "line",
		"custom_title": "Renamed question",
		"is_hidden":    true,
	}
	eff := ResolveSettings(types.QuestionTypeSingleSelect, global, raw, 1)
	if eff.ChartKind != types.ChartKindLine {
		t.Fatalf("override chart kind ignored, got %s", eff.ChartKind)
	}
	if eff.CustomTitle != "Renamed question" {
		t.Fatalf("custom title ignored, got %q", eff.CustomTitle)
	}
	if !eff.IsHidden {
		t.Fatal("is_hidden override ignored")
	}
}

func TestResolveSettingsBoolCoercion(t *testing.T) {
	cases := []struct {
		in    any
		want  bool
		valid bool
	}{
		{true, true, true},
		{false, false, true},
		{"true", true, true},
		{"TRUE", true, true},
		{" true ", true, true},
		{"false", false, true},
		{"yes", false, true},
		{1, false, false},
		{nil, false, false},
		{map[string]any{}, false, false},
	}
	for _, c := range cases {
		got, valid := coerceBool(c.in)
		if got != c.want || valid != c.valid {
			t.Fatalf("coerceBool(%v) = (%v, %v), want (%v, %v)", c.in, got, valid, c.want, c.valid)
		}
	}
}

func TestResolveSettingsMalformedBoolFallsBack(t *testing.T) {
	raw := types.RawSettingsOverride{"show_percentages": 42}
	global := types.GlobalSettings{ShowPercentages: true}
	eff := ResolveSettings(types.QuestionTypeSingleSelect, global, raw, 1)
	if !eff.ShowPercentages {
		t.Fatal("malformed bool override must keep the lower layer value")
	}
	if len(eff.Diagnostics) == 0 {
		t.Fatal("malformed override must be recorded on Diagnostics")
	}
}

func TestResolveSettingsDisplayOrderFallbacks(t *testing.T) {
	cases := []struct {
		override any
		want     int
	}{
		{5, 5},
		{float64(2), 2},
		{"3", 3},
		{"", 7},
		{"abc", 7},
		{0, 7},
		{-1, 7},
		{nil, 7},
	}
	for _, c := range cases {
		raw := types.RawSettingsOverride{"display_order": c.override}
		eff := ResolveSettings(types.QuestionTypeSingleSelect, types.GlobalSettings{}, raw, 7)
		if eff.DisplayOrder != c.want {
			t.Fatalf("display_order override %v: got %d, want %d", c.override, eff.DisplayOrder, c.want)
		}
	}
}

func TestResolveSettingsCustomColorsCoercion(t *testing.T) {
	raw := types.RawSettingsOverride{
		"custom_colors": []any{"#111111", nil, "#222222"},
	}
	eff := ResolveSettings(types.QuestionTypeSingleSelect, types.GlobalSettings{}, raw, 1)
	if len(eff.CustomColors) != 3 {
		t.Fatalf("expected 3 color slots, got %d", len(eff.CustomColors))
	}
	if eff.CustomColors[1] != nil {
		t.Fatal("null color slot must stay nil")
	}

	raw = types.RawSettingsOverride{"custom_colors": "not-a-list"}
	eff = ResolveSettings(types.QuestionTypeSingleSelect, types.GlobalSettings{}, raw, 1)
	if len(eff.CustomColors) != 0 {
		t.Fatalf("non-array custom_colors must become empty, got %v", eff.CustomColors)
	}
	if len(eff.Diagnostics) == 0 {
		t.Fatal("non-array custom_colors must be recorded on Diagnostics")
	}
}

func TestResolveSettingsStatsMergeIsOr(t *testing.T) {
	global := types.GlobalSettings{Stats: types.StatToggles{Median: true}}
	eff := ResolveSettings(types.QuestionTypeStarRating, global, nil, 1)
	if !eff.Stats.Mean {
		t.Fatal("type default mean must survive the global overlay")
	}
	if !eff.Stats.Median {
		t.Fatal("global median toggle ignored")
	}

	raw := types.RawSettingsOverride{"stats": map[string]any{"mean": false, "max": "true"}}
	eff = ResolveSettings(types.QuestionTypeStarRating, global, raw, 1)
	if eff.Stats.Mean {
		t.Fatal("override must be able to turn a stat off")
	}
	if !eff.Stats.Max {
		t.Fatal("string \"true\" stat toggle ignored")
	}
}

func TestResolveSettingsUnknownTypeDegrades(t *testing.T) {
	eff := ResolveSettings(types.QuestionType("hologram"), types.GlobalSettings{}, nil, 2)
	if eff.ChartKind != types.ChartKindBar {
		t.Fatalf("unknown type must default to bar, got %s", eff.ChartKind)
	}
}
