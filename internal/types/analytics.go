package types

import "github.com/google/uuid"

// AnalyticsType is the discriminator of the analytics payload union. The
// upstream API tags every payload explicitly; nothing is inferred from which
// optional fields happen to be present.
type AnalyticsType string

const (
	AnalyticsSingleSelect AnalyticsType = "single_select_distribution"
	AnalyticsMultiSelect  AnalyticsType = "multi_select_distribution"
	AnalyticsSliderStats  AnalyticsType = "slider_stats"
	AnalyticsStarRating   AnalyticsType = "star_rating_stats"
	AnalyticsNumericStats AnalyticsType = "numeric_stats"
	AnalyticsRankingStats AnalyticsType = "ranking_stats"
	AnalyticsGridMatrix   AnalyticsType = "grid_matrix"
	AnalyticsOpenEnded    AnalyticsType = "open_ended"
)

// OptionCount is one row of a pre-aggregated distribution.
type OptionCount struct {
	Label           string `json:"label"`
	Count           int    `json:"count"`
	IsNotApplicable bool   `json:"is_not_applicable,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
}

type NumericStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// NPSSegments carries pre-computed Net Promoter Score segments. The score is
// passed through verbatim, never recomputed from the segment counts.
type NPSSegments struct {
	Promoters  int     `json:"promoters"`
	Passives   int     `json:"passives"`
	Detractors int     `json:"detractors"`
	Score      float64 `json:"score"`
}

// ValueCount is one distinct numeric response value with its frequency.
type ValueCount struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// RankingItem carries per-item rank aggregates. RankCounts[i] is how many
// respondents placed the item at rank i+1.
type RankingItem struct {
	Label       string  `json:"label"`
	AverageRank float64 `json:"average_rank"`
	RankCounts  []int   `json:"rank_counts"`
}

// GridMatrix is the raw cross-tab for grid questions. CellSums is populated
// only for star-rating grids, where cells average a rating rather than count
// selections.
type GridMatrix struct {
	RowLabels        []string    `json:"row_labels"`
	ColLabels        []string    `json:"col_labels"`
	ColNotApplicable []bool      `json:"col_not_applicable,omitempty"`
	CellCounts       [][]int     `json:"cell_counts"`
	CellSums         [][]float64 `json:"cell_sums,omitempty"`
	IsStarGrid       bool        `json:"is_star_grid,omitempty"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// AnalyticsPayload is the tagged union delivered per question or demographic
// category. Only the fields relevant to Type are populated.
type AnalyticsPayload struct {
	Type       AnalyticsType `json:"type"`
	QuestionID uuid.UUID     `json:"question_id,omitempty"`

	// Respondents is the number of respondents considered for this question.
	// It is the percentage base for multi-select distributions.
	Respondents int `json:"respondents"`

	Options []OptionCount `json:"options,omitempty"`
	Stats   *NumericStats `json:"stats,omitempty"`
	NPS     *NPSSegments  `json:"nps_segments,omitempty"`
	Values  []ValueCount  `json:"values,omitempty"`
	NACount int           `json:"na_count,omitempty"`
	Ranking []RankingItem `json:"ranking,omitempty"`
	Grid    *GridMatrix   `json:"grid,omitempty"`

	Words     []WordCount `json:"word_frequencies,omitempty"`
	Responses []string    `json:"responses,omitempty"`
}

// IsEmpty reports whether the payload has no usable data at all, which the
// document builder renders as an inline "no data" notice.
func (p *AnalyticsPayload) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Options) == 0 && p.Stats == nil && p.NPS == nil &&
		len(p.Values) == 0 && len(p.Ranking) == 0 && p.Grid == nil &&
		len(p.Words) == 0 && len(p.Responses) == 0
}
