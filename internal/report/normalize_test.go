package report

import (
	"errors"
	"math"
	"testing"

	"github.com/formpulse/formpulse-backend/internal/types"
)

func defaultEffective() types.EffectiveSettings {
	return types.EffectiveSettings{
		ChartKind:       types.ChartKindBar,
		BaseColor:       "#4F46E5",
		ShowPercentages: true,
		ShowLegend:      true,
		ShowNA:          true,
		DataLabelFormat: types.DataLabelPercent,
		SortOrder:       types.SortOrderDefault,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestNormalizeEmptyPayloadReturnsMissingData(t *testing.T) {
	p := &types.AnalyticsPayload{Type: types.AnalyticsSingleSelect}
	if _, err := Normalize(p, defaultEffective(), NormalizeOptions{}); !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
	if _, err := Normalize(nil, defaultEffective(), NormalizeOptions{}); !errors.Is(err, ErrMissingData) {
		t.Fatalf("nil payload: expected ErrMissingData, got %v", err)
	}
}

func TestNormalizeSingleSelectResponseBase(t *testing.T) {
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsSingleSelect,
		Respondents: 100,
		Options: []types.OptionCount{
			{Label: "Red", Count: 30},
			{Label: "Blue", Count: 50},
			{Label: "Green", Count: 20},
		},
	}
	out, err := Normalize(p, defaultEffective(), NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if out.Series.Base != PercentBaseResponses {
		t.Fatalf("expected response base, got %s", out.Series.Base)
	}
	if !approx(out.Series.Percentages[1], 50) {
		t.Fatalf("expected 50%% for Blue, got %.2f", out.Series.Percentages[1])
	}
	if out.Table.Footer[0].Count != 100 {
		t.Fatalf("expected footer total 100, got %v", out.Table.Footer[0].Count)
	}
}

// Multi-select percentages divide by respondents, so they legitimately sum
// past 100.
func TestNormalizeMultiSelectRespondentBase(t *testing.T) {
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsMultiSelect,
		Respondents: 40,
		Options: []types.OptionCount{
			{Label: "Email", Count: 30},
			{Label: "Phone", Count: 28},
		},
	}
	out, err := Normalize(p, defaultEffective(), NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if out.Series.Base != PercentBaseRespondents {
		t.Fatalf("expected respondent base, got %s", out.Series.Base)
	}
	if !approx(out.Series.Percentages[0], 75) {
		t.Fatalf("expected 75%% of respondents, got %.2f", out.Series.Percentages[0])
	}
	sum := out.Series.Percentages[0] + out.Series.Percentages[1]
	if sum <= 100 {
		t.Fatalf("expected percentages to exceed 100 combined, got %.2f", sum)
	}
}

func TestNormalizeNAExclusionRebasesPercentages(t *testing.T) {
	s := defaultEffective()
	s.ShowNA = false
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsSingleSelect,
		Respondents: 100,
		Options: []types.OptionCount{
			{Label: "Yes", Count: 60},
			{Label: "No", Count: 20},
			{Label: "N/A", Count: 20, IsNotApplicable: true},
		},
	}
	out, err := Normalize(p, s, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(out.Series.Labels) != 2 {
		t.Fatalf("expected N/A row dropped, got labels %v", out.Series.Labels)
	}
	if !approx(out.Series.Percentages[0], 75) {
		t.Fatalf("expected percentages rebased to 80 kept responses, got %.2f", out.Series.Percentages[0])
	}
	if out.Series.ExcludedNA != 20 {
		t.Fatalf("expected 20 excluded responses, got %d", out.Series.ExcludedNA)
	}
	if len(out.Table.Footer) != 2 {
		t.Fatalf("expected exclusion footnote row, got %v", out.Table.Footer)
	}
}

func TestNormalizeNARowPinnedLastUnderSort(t *testing.T) {
	s := defaultEffective()
	s.SortOrder = types.SortOrderDesc
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsSingleSelect,
		Respondents: 100,
		Options: []types.OptionCount{
			{Label: "N/A", Count: 90, IsNotApplicable: true},
			{Label: "Yes", Count: 6},
			{Label: "No", Count: 4},
		},
	}
	out, err := Normalize(p, s, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	last := out.Series.Labels[len(out.Series.Labels)-1]
	if last != "N/A" {
		t.Fatalf("N/A row must stay last regardless of sort, got order %v", out.Series.Labels)
	}
	if out.Series.Labels[0] != "Yes" {
		t.Fatalf("expected desc sort among kept rows, got %v", out.Series.Labels)
	}
}

// Custom colors are matched to the declared option order, then travel with
// their category through sorting.
func TestNormalizeColorsFollowCategoriesThroughSort(t *testing.T) {
	s := defaultEffective()
	s.SortOrder = types.SortOrderDesc
	s.CustomColors = []*string{strPtr("#111111"), strPtr("#222222"), strPtr("#333333")}
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsSingleSelect,
		Respondents: 60,
		Options: []types.OptionCount{
			{Label: "First", Count: 10},
			{Label: "Second", Count: 40},
			{Label: "Third", Count: 10},
		},
	}
	out, err := Normalize(p, s, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if out.Series.Labels[0] != "Second" || out.Series.Colors[0] != "#222222" {
		t.Fatalf("color lost its category: labels=%v colors=%v", out.Series.Labels, out.Series.Colors)
	}
}

func TestNormalizeNPSFixedSegments(t *testing.T) {
	s := defaultEffective()
	s.SortOrder = types.SortOrderDesc
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsNumericStats,
		Respondents: 100,
		NPS:         &types.NPSSegments{Promoters: 10, Passives: 50, Detractors: 40, Score: -30},
	}
	out, err := Normalize(p, s, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	want := []string{"Promoters (9-10)", "Passives (7-8)", "Detractors (0-6)"}
	for i, w := range want {
		if out.Series.Labels[i] != w {
			t.Fatalf("segment order must ignore sort: got %v", out.Series.Labels)
		}
	}
	if out.Table.NPSScore == nil || *out.Table.NPSScore != -30 {
		t.Fatalf("score must pass through verbatim, got %v", out.Table.NPSScore)
	}
}

func TestNormalizeNumericPerValueBuckets(t *testing.T) {
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsNumericStats,
		Respondents: 30,
		Values: []types.ValueCount{
			{Value: 3, Count: 10},
			{Value: 1, Count: 5},
			{Value: 2, Count: 15},
		},
		Stats: &types.NumericStats{Mean: 2.17},
	}
	s := defaultEffective()
	s.Stats = types.StatToggles{Mean: true}
	out, err := Normalize(p, s, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if out.Series.Labels[i] != w {
			t.Fatalf("expected sorted per-value buckets %v, got %v", want, out.Series.Labels)
		}
	}
	if len(out.Table.Stats) != 1 || out.Table.Stats[0].Name != "Mean" {
		t.Fatalf("expected mean stat line, got %v", out.Table.Stats)
	}
}

func TestNormalizeNumericBinsWhenManyDistinctValues(t *testing.T) {
	values := make([]types.ValueCount, 0, 11)
	total := 0
	for i := 0; i < 11; i++ {
		values = append(values, types.ValueCount{Value: float64(i * 10), Count: i + 1})
		total += i + 1
	}
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsNumericStats,
		Respondents: total,
		Values:      values,
		NACount:     3,
	}
	out, err := Normalize(p, defaultEffective(), NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	// 5 bins plus the N/A row.
	if len(out.Series.Labels) != 6 {
		t.Fatalf("expected 5 bins + N/A row, got %v", out.Series.Labels)
	}
	if out.Series.Labels[0] != "0.0 - 20.0" {
		t.Fatalf("unexpected first bin label %q", out.Series.Labels[0])
	}
	if out.Series.Labels[5] != DefaultNALabel {
		t.Fatalf("N/A row must stay separate from the bins, got %q", out.Series.Labels[5])
	}
	var binSum float64
	for i := 0; i < 5; i++ {
		binSum += out.Series.Counts[i]
	}
	if binSum != float64(total) {
		t.Fatalf("binning lost responses: %v of %d", binSum, total)
	}
}

func TestNormalizeRankingScores(t *testing.T) {
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsRankingStats,
		Respondents: 20,
		Ranking: []types.RankingItem{
			{Label: "Price", AverageRank: 2.5, RankCounts: []int{5, 5, 5, 5}},
			{Label: "Quality", AverageRank: 1.2, RankCounts: []int{16, 4, 0, 0}},
			{Label: "Support", AverageRank: 3.8, RankCounts: []int{0, 2, 4, 14}},
		},
	}
	out, err := Normalize(p, defaultEffective(), NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	// score = itemCount + 1 - avgRank; best item first.
	if out.Series.Labels[0] != "Quality" {
		t.Fatalf("expected Quality first, got %v", out.Series.Labels)
	}
	if !approx(out.Series.Counts[0], 2.8) {
		t.Fatalf("expected score 2.8 for Quality, got %.2f", out.Series.Counts[0])
	}
	if out.Table.Ranks == nil || out.Table.Ranks.RankCounts[0][0] != 16 {
		t.Fatalf("rank matrix must follow the sorted items, got %+v", out.Table.Ranks)
	}
}

func TestNormalizeGridNAColumnFilteredRowTotalsKept(t *testing.T) {
	s := defaultEffective()
	s.ShowNA = false
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsGridMatrix,
		Respondents: 30,
		Grid: &types.GridMatrix{
			RowLabels:        []string{"Speed", "Price"},
			ColLabels:        []string{"Good", "Bad", "N/A"},
			ColNotApplicable: []bool{false, false, true},
			CellCounts: [][]int{
				{10, 5, 15},
				{20, 8, 2},
			},
		},
	}
	out, err := Normalize(p, s, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	g := out.Table.Grid
	if len(g.ColLabels) != 2 {
		t.Fatalf("expected N/A column removed, got %v", g.ColLabels)
	}
	// Row totals keep counting every response the row received.
	if g.RowTotals[0] != 30 || g.RowTotals[1] != 30 {
		t.Fatalf("row totals must be unaffected by column filtering, got %v", g.RowTotals)
	}
	if g.ColTotals[0] != 30 || g.ColTotals[1] != 13 {
		t.Fatalf("column totals must cover kept columns only, got %v", g.ColTotals)
	}
	if out.Series != nil {
		t.Fatal("grid payloads have no chartable series")
	}
}

func TestNormalizeStarGridAverages(t *testing.T) {
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsGridMatrix,
		Respondents: 10,
		Grid: &types.GridMatrix{
			RowLabels:  []string{"Service"},
			ColLabels:  []string{"Store A", "Store B"},
			IsStarGrid: true,
			CellCounts: [][]int{{4, 6}},
			CellSums:   [][]float64{{16, 18}},
		},
	}
	out, err := Normalize(p, defaultEffective(), NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	g := out.Table.Grid
	if !approx(g.CellAverages[0][0], 4) || !approx(g.CellAverages[0][1], 3) {
		t.Fatalf("unexpected cell averages %v", g.CellAverages)
	}
	if !approx(g.RowAverages[0], 3.4) {
		t.Fatalf("expected row average 3.4, got %.2f", g.RowAverages[0])
	}
}

func TestNormalizeOpenEndedCaps(t *testing.T) {
	words := make([]types.WordCount, 20)
	for i := range words {
		words[i] = types.WordCount{Word: string(rune('a' + i)), Count: i}
	}
	responses := make([]string, 12)
	for i := range responses {
		responses[i] = "response"
	}
	p := &types.AnalyticsPayload{
		Type:      types.AnalyticsOpenEnded,
		Words:     words,
		Responses: responses,
	}
	out, err := Normalize(p, defaultEffective(), NormalizeOptions{ResponseLimit: PDFResponseCap})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(out.Table.Words) != defaultWordLimit {
		t.Fatalf("expected %d words, got %d", defaultWordLimit, len(out.Table.Words))
	}
	if out.Table.Words[0].Count < out.Table.Words[1].Count {
		t.Fatal("words must be sorted by count descending")
	}
	if len(out.Table.Responses) != PDFResponseCap {
		t.Fatalf("expected %d responses, got %d", PDFResponseCap, len(out.Table.Responses))
	}
	if out.Series != nil {
		t.Fatal("open-ended payloads have no chartable series")
	}
}

// Percent strings in the table are a display concern: turning percentages off
// blanks them while the numeric series data stays intact.
func TestNormalizePercentStringsFollowToggle(t *testing.T) {
	p := &types.AnalyticsPayload{
		Type:        types.AnalyticsSingleSelect,
		Respondents: 100,
		Options: []types.OptionCount{
			{Label: "Red", Count: 30},
			{Label: "Blue", Count: 50},
			{Label: "Green", Count: 20},
		},
	}
	on, err := Normalize(p, defaultEffective(), NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if on.Table.Rows[0].Percent != "30.0%" {
		t.Fatalf("expected percent string when enabled, got %q", on.Table.Rows[0].Percent)
	}

	eff := defaultEffective()
	eff.ShowPercentages = false
	off, err := Normalize(p, eff, NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	for i, row := range off.Table.Rows {
		if row.Percent != "" {
			t.Fatalf("row %d kept a percent string with percentages off: %q", i, row.Percent)
		}
	}
	if !approx(off.Series.Percentages[1], 50) {
		t.Fatalf("numeric percentages must stay computed, got %.2f", off.Series.Percentages[1])
	}
}
