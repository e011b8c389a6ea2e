package types

type ChartKind string

const (
	ChartKindBar      ChartKind = "bar"
	ChartKindPie      ChartKind = "pie"
	ChartKindDoughnut ChartKind = "doughnut"
	ChartKindLine     ChartKind = "line"
	ChartKindNone     ChartKind = "none"
)

type SortOrder string

const (
	SortOrderDefault SortOrder = "default"
	SortOrderAsc     SortOrder = "asc"
	SortOrderDesc    SortOrder = "desc"
)

type DataLabelFormat string

const (
	DataLabelNone    DataLabelFormat = "none"
	DataLabelPercent DataLabelFormat = "percent"
	DataLabelCount   DataLabelFormat = "count"
	DataLabelBoth    DataLabelFormat = "both"
)

type StatToggles struct {
	Mean   bool `json:"mean"`
	Median bool `json:"median"`
	Min    bool `json:"min"`
	Max    bool `json:"max"`
	StdDev bool `json:"std_dev"`
}

// GlobalSettings is the survey-wide fallback layer of the settings cascade.
type GlobalSettings struct {
	IsHidden        bool            `json:"is_hidden"`
	ChartKind       ChartKind       `json:"chart_kind"`
	BaseColor       string          `json:"base_color"`
	CustomColors    []*string       `json:"custom_colors"`
	ShowPercentages bool            `json:"show_percentages"`
	ShowLegend      bool            `json:"show_legend"`
	ShowNA          bool            `json:"show_na"`
	DataLabelFormat DataLabelFormat `json:"data_label_format"`
	SortOrder       SortOrder       `json:"sort_order"`
	Stats           StatToggles     `json:"stats"`
}

// EffectiveSettings is the fully merged configuration for one question or
// demographic category. It is immutable during a generation pass.
type EffectiveSettings struct {
	IsHidden        bool            `json:"is_hidden"`
	ChartKind       ChartKind       `json:"chart_kind"`
	BaseColor       string          `json:"base_color"`
	CustomColors    []*string       `json:"custom_colors"`
	ShowPercentages bool            `json:"show_percentages"`
	ShowLegend      bool            `json:"show_legend"`
	ShowNA          bool            `json:"show_na"`
	DataLabelFormat DataLabelFormat `json:"data_label_format"`
	DisplayOrder    int             `json:"display_order"`
	SortOrder       SortOrder       `json:"sort_order"`
	Stats           StatToggles     `json:"stats"`
	CustomTitle     string          `json:"custom_title,omitempty"`

	// Diagnostics lists fields that were malformed in the raw override and
	// fell back to defaults. Logged, never surfaced to the end user.
	Diagnostics []string `json:"-"`
}

// RawSettingsOverride is the persisted per-question override layer. Values
// arrive loosely typed (booleans may be serialized strings), so the resolver
// owns all coercion.
type RawSettingsOverride map[string]any

type ExportOptions struct {
	IncludeDemographics    bool `json:"include_demographics"`
	ShowWordCloudData      bool `json:"show_word_cloud_data"`
	ShowOpenEndedResponses bool `json:"show_open_ended_responses"`
	OpenEndedResponseLimit int  `json:"open_ended_response_limit"`
}

// SettingsPayload is the full settings document exchanged with clients.
type SettingsPayload struct {
	Global       GlobalSettings                 `json:"global"`
	Questions    map[string]RawSettingsOverride `json:"questions"`
	Demographics map[string]RawSettingsOverride `json:"demographics"`
	ExportOpts   ExportOptions                  `json:"export_options"`
}
