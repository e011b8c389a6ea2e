package report

import "github.com/formpulse/formpulse-backend/internal/types"

// PercentBase records which population a series' percentages were computed
// against. Multi-select distributions divide by respondents (one respondent
// can pick several options), everything else divides by the responses that
// survived N/A filtering. The base travels with the series so callers never
// have to re-derive it.
type PercentBase string

const (
	PercentBaseResponses   PercentBase = "responses"
	PercentBaseRespondents PercentBase = "respondents"
)

// ChartSeries is the canonical chartable form of one distribution. All four
// slices share the same length and ordering.
type ChartSeries struct {
	Labels      []string    `json:"labels"`
	Counts      []float64   `json:"counts"`
	Percentages []float64   `json:"percentages"`
	Colors      []string    `json:"colors"`
	Base        PercentBase `json:"percent_base"`

	// ExcludedNA is the number of responses dropped by N/A filtering,
	// available for an "excluded N responses" footnote.
	ExcludedNA int `json:"excluded_na,omitempty"`
}

type TableRow struct {
	Label   string  `json:"label"`
	Count   float64 `json:"count"`
	Percent string  `json:"percent"`
}

type StatLine struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// GridTable is the rendered form of a grid payload after N/A column
// filtering. CellAverages and RowAverages are populated for star grids only.
type GridTable struct {
	RowLabels    []string    `json:"row_labels"`
	ColLabels    []string    `json:"col_labels"`
	CellCounts   [][]float64 `json:"cell_counts"`
	RowTotals    []float64   `json:"row_totals"`
	ColTotals    []float64   `json:"col_totals"`
	CellAverages [][]float64 `json:"cell_averages,omitempty"`
	RowAverages  []float64   `json:"row_averages,omitempty"`
}

// RankTable preserves the raw rank-distribution matrix alongside the derived
// overall scores used for ordering.
type RankTable struct {
	ItemLabels []string  `json:"item_labels"`
	RankCounts [][]int   `json:"rank_counts"`
	AvgRanks   []float64 `json:"avg_ranks"`
	Scores     []float64 `json:"scores"`
}

// TableRows is everything a question section can print besides the chart.
type TableRows struct {
	Rows      []TableRow        `json:"rows,omitempty"`
	Footer    []TableRow        `json:"footer,omitempty"`
	Stats     []StatLine        `json:"stats,omitempty"`
	NPSScore  *float64          `json:"nps_score,omitempty"`
	Grid      *GridTable        `json:"grid,omitempty"`
	Ranks     *RankTable        `json:"ranks,omitempty"`
	Words     []types.WordCount `json:"words,omitempty"`
	Responses []string          `json:"responses,omitempty"`
}

// Normalized is the full output of one normalization pass. Series is nil for
// payload types with no chartable numeric series (open-ended); callers render
// table or text content only in that case.
type Normalized struct {
	Series *ChartSeries
	Table  TableRows
}
