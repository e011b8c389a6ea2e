package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/formpulse/formpulse-backend/internal/types"
)

// TypeDefaults is the fixed per-question-type layer of the settings cascade.
type TypeDefaults struct {
	ChartKind types.ChartKind
	Stats     types.StatToggles
}

var typeDefaults = map[types.QuestionType]TypeDefaults{
	types.QuestionTypeSingleSelect: {ChartKind: types.ChartKindPie},
	types.QuestionTypeMultiSelect:  {ChartKind: types.ChartKindBar},
	types.QuestionTypeImageChoice:  {ChartKind: types.ChartKindBar},
	types.QuestionTypeDropdown:     {ChartKind: types.ChartKindPie},
	types.QuestionTypeSlider: {
		ChartKind: types.ChartKindBar,
		Stats:     types.StatToggles{Mean: true, Median: true, Min: true, Max: true},
	},
	types.QuestionTypeStarRating: {
		ChartKind: types.ChartKindBar,
		Stats:     types.StatToggles{Mean: true},
	},
	types.QuestionTypeNumeric: {
		ChartKind: types.ChartKindBar,
		Stats:     types.StatToggles{Mean: true, Median: true, Min: true, Max: true, StdDev: true},
	},
	types.QuestionTypeNPS:       {ChartKind: types.ChartKindDoughnut},
	types.QuestionTypeRanking:   {ChartKind: types.ChartKindBar},
	types.QuestionTypeGrid:      {ChartKind: types.ChartKindNone},
	types.QuestionTypeStarGrid:  {ChartKind: types.ChartKindNone},
	types.QuestionTypeOpenEnded: {ChartKind: types.ChartKindNone},
}

// DefaultsForType returns the fixed defaults for a question type. Unknown
// types get a bar chart and no stats, so new upstream types degrade visibly
// instead of vanishing.
func DefaultsForType(qt types.QuestionType) TypeDefaults {
	if d, ok := typeDefaults[qt]; ok {
		return d
	}
	return TypeDefaults{ChartKind: types.ChartKindBar}
}

// DefaultGlobalSettings is the base layer used when a survey has no stored
// settings document.
func DefaultGlobalSettings() types.GlobalSettings {
	return types.GlobalSettings{
		ChartKind:       "",
		BaseColor:       defaultPalette[0],
		CustomColors:    []*string{},
		ShowPercentages: true,
		ShowLegend:      true,
		ShowNA:          true,
		DataLabelFormat: types.DataLabelPercent,
		SortOrder:       types.SortOrderDefault,
	}
}

// ResolveSettings merges the three settings layers for one question:
// per-type defaults < global < raw override, field by field. It never fails;
// malformed override fields fall back to the lower layer and are recorded on
// Diagnostics. naturalSeq is the question's 1-based sequence position, used
// whenever the display order override is absent or unusable.
//
// An empty ChartKind or an all-false Stats block in the global layer means
// "unset" and falls through to the per-type defaults; the raw override can
// still force individual values either way.
func ResolveSettings(qt types.QuestionType, global types.GlobalSettings, raw types.RawSettingsOverride, naturalSeq int) types.EffectiveSettings {
	td := DefaultsForType(qt)

	eff := types.EffectiveSettings{
		IsHidden:        global.IsHidden,
		ChartKind:       td.ChartKind,
		BaseColor:       defaultPalette[0],
		CustomColors:    []*string{},
		ShowPercentages: global.ShowPercentages,
		ShowLegend:      global.ShowLegend,
		ShowNA:          global.ShowNA,
		DataLabelFormat: types.DataLabelPercent,
		DisplayOrder:    naturalSeq,
		SortOrder:       types.SortOrderDefault,
		Stats:           td.Stats,
	}

	if k := validChartKind(string(global.ChartKind)); k != "" {
		eff.ChartKind = k
	}
	if c := NormalizeHexColor(global.BaseColor); c != "" {
		eff.BaseColor = c
	}
	if len(global.CustomColors) > 0 {
		eff.CustomColors = global.CustomColors
	}
	if f := validDataLabelFormat(string(global.DataLabelFormat)); f != "" {
		eff.DataLabelFormat = f
	}
	if s := validSortOrder(string(global.SortOrder)); s != "" {
		eff.SortOrder = s
	}
	eff.Stats = orStats(eff.Stats, global.Stats)

	if len(raw) == 0 {
		return eff
	}

	diag := func(field string, v any) {
		eff.Diagnostics = append(eff.Diagnostics, fmt.Sprintf("%s: unusable override %v", field, v))
	}

	applyBool(raw, "is_hidden", &eff.IsHidden, diag)
	applyBool(raw, "show_percentages", &eff.ShowPercentages, diag)
	applyBool(raw, "show_legend", &eff.ShowLegend, diag)
	applyBool(raw, "show_na", &eff.ShowNA, diag)

	if v, ok := raw["chart_kind"]; ok {
		if k := validChartKind(asString(v)); k != "" {
			eff.ChartKind = k
		} else {
			diag("chart_kind", v)
		}
	}
	if v, ok := raw["base_color"]; ok {
		if c := NormalizeHexColor(asString(v)); c != "" {
			eff.BaseColor = c
		} else {
			diag("base_color", v)
		}
	}
	if v, ok := raw["custom_colors"]; ok {
		colors, valid := asColorList(v)
		if !valid {
			diag("custom_colors", v)
		}
		eff.CustomColors = colors
	}
	if v, ok := raw["data_label_format"]; ok {
		if f := validDataLabelFormat(asString(v)); f != "" {
			eff.DataLabelFormat = f
		} else {
			diag("data_label_format", v)
		}
	}
	if v, ok := raw["sort_order"]; ok {
		if s := validSortOrder(asString(v)); s != "" {
			eff.SortOrder = s
		} else {
			diag("sort_order", v)
		}
	}
	if v, ok := raw["display_order"]; ok {
		if n, valid := asDisplayOrder(v); valid {
			eff.DisplayOrder = n
		} else {
			// Fall back to the natural sequence; a bad override must never
			// drop the question from the ordering.
			diag("display_order", v)
			eff.DisplayOrder = naturalSeq
		}
	}
	if v, ok := raw["custom_title"]; ok {
		if s := strings.TrimSpace(asString(v)); s != "" {
			eff.CustomTitle = s
		}
	}
	if v, ok := raw["stats"]; ok {
		m, isMap := v.(map[string]any)
		if !isMap {
			diag("stats", v)
		} else {
			applyStatToggle(m, "mean", &eff.Stats.Mean)
			applyStatToggle(m, "median", &eff.Stats.Median)
			applyStatToggle(m, "min", &eff.Stats.Min)
			applyStatToggle(m, "max", &eff.Stats.Max)
			applyStatToggle(m, "std_dev", &eff.Stats.StdDev)
		}
	}

	return eff
}

func applyBool(raw types.RawSettingsOverride, key string, dst *bool, diag func(string, any)) {
	v, ok := raw[key]
	if !ok {
		return
	}
	b, valid := coerceBool(v)
	if !valid {
		diag(key, v)
		return
	}
	*dst = b
}

func applyStatToggle(m map[string]any, key string, dst *bool) {
	v, ok := m[key]
	if !ok {
		return
	}
	if b, valid := coerceBool(v); valid {
		*dst = b
	}
}

// coerceBool applies the persisted-settings boolean rule: true and "true"
// are true, any other bool or string is false, anything else is malformed.
func coerceBool(v any) (val bool, valid bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true"), true
	default:
		return false, false
	}
}

func asDisplayOrder(v any) (int, bool) {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}

// asColorList coerces an override into the padded-colors shape: a slice of
// hex strings and nulls. Non-array input is replaced with an empty list.
func asColorList(v any) ([]*string, bool) {
	switch t := v.(type) {
	case []*string:
		return t, true
	case []string:
		out := make([]*string, len(t))
		for i := range t {
			s := t[i]
			out[i] = &s
		}
		return out, true
	case []any:
		out := make([]*string, 0, len(t))
		for _, e := range t {
			if e == nil {
				out = append(out, nil)
				continue
			}
			if s, ok := e.(string); ok {
				c := s
				out = append(out, &c)
				continue
			}
			out = append(out, nil)
		}
		return out, true
	default:
		return []*string{}, false
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func validChartKind(s string) types.ChartKind {
	switch types.ChartKind(strings.ToLower(strings.TrimSpace(s))) {
	case types.ChartKindBar:
		return types.ChartKindBar
	case types.ChartKindPie:
		return types.ChartKindPie
	case types.ChartKindDoughnut:
		return types.ChartKindDoughnut
	case types.ChartKindLine:
		return types.ChartKindLine
	case types.ChartKindNone:
		return types.ChartKindNone
	default:
		return ""
	}
}

func validSortOrder(s string) types.SortOrder {
	switch types.SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case types.SortOrderDefault:
		return types.SortOrderDefault
	case types.SortOrderAsc:
		return types.SortOrderAsc
	case types.SortOrderDesc:
		return types.SortOrderDesc
	default:
		return ""
	}
}

func validDataLabelFormat(s string) types.DataLabelFormat {
	switch types.DataLabelFormat(strings.ToLower(strings.TrimSpace(s))) {
	case types.DataLabelNone:
		return types.DataLabelNone
	case types.DataLabelPercent:
		return types.DataLabelPercent
	case types.DataLabelCount:
		return types.DataLabelCount
	case types.DataLabelBoth:
		return types.DataLabelBoth
	default:
		return ""
	}
}

func orStats(base, overlay types.StatToggles) types.StatToggles {
	return types.StatToggles{
		Mean:   base.Mean || overlay.Mean,
		Median: base.Median || overlay.Median,
		Min:    base.Min || overlay.Min,
		Max:    base.Max || overlay.Max,
		StdDev: base.StdDev || overlay.StdDev,
	}
}
