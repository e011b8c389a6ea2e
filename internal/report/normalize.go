package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/formpulse/formpulse-backend/internal/types"
)

const (
	// DefaultNALabel names the not-applicable bucket when the payload does
	// not carry its own label.
	DefaultNALabel = "Not applicable"

	defaultWordLimit     = 15
	defaultResponseLimit = 10

	// PDFResponseCap is the hard ceiling on open-ended responses printed in
	// the paginated document, regardless of the configured limit.
	PDFResponseCap = 5

	// distinctValueBucketMax is the largest number of distinct numeric
	// values rendered one bucket each before switching to equal-width bins.
	distinctValueBucketMax = 10
	numericBinCount        = 5
)

// NormalizeOptions carries the per-call knobs that are not part of the
// settings cascade.
type NormalizeOptions struct {
	// NALabel labels synthesized not-applicable rows. Defaults to
	// DefaultNALabel.
	NALabel string
	// KeepDeclaredOrder suppresses count sorting for ordinal/scale question
	// types, which keep their declared option order.
	KeepDeclaredOrder bool
	// WordLimit caps the word-frequency list (default 15).
	WordLimit int
	// ResponseLimit caps the open-ended response list (default 10).
	ResponseLimit int
}

func (o NormalizeOptions) naLabel() string {
	if strings.TrimSpace(o.NALabel) == "" {
		return DefaultNALabel
	}
	return o.NALabel
}

// Normalize converts one tagged analytics payload plus effective settings
// into the canonical chart series and table rows. Series is nil for payload
// types with nothing chartable. An empty payload returns ErrMissingData.
func Normalize(p *types.AnalyticsPayload, s types.EffectiveSettings, opts NormalizeOptions) (*Normalized, error) {
	if p.IsEmpty() {
		return nil, ErrMissingData
	}

	switch p.Type {
	case types.AnalyticsSingleSelect:
		return normalizeDistribution(p, s, opts, PercentBaseResponses), nil
	case types.AnalyticsMultiSelect:
		return normalizeDistribution(p, s, opts, PercentBaseRespondents), nil
	case types.AnalyticsSliderStats, types.AnalyticsStarRating:
		out := normalizeDistribution(p, s, opts, PercentBaseResponses)
		out.Table.Stats = statLines(p.Stats, s.Stats)
		return out, nil
	case types.AnalyticsNumericStats:
		if p.NPS != nil {
			return normalizeNPS(p, s), nil
		}
		return normalizeNumeric(p, s, opts), nil
	case types.AnalyticsRankingStats:
		return normalizeRanking(p, s), nil
	case types.AnalyticsGridMatrix:
		return normalizeGrid(p, s, opts), nil
	case types.AnalyticsOpenEnded:
		return normalizeOpenEnded(p, opts), nil
	default:
		return nil, fmt.Errorf("unknown analytics payload type %q", p.Type)
	}
}

// distEntry is one distribution row mid-normalization. Color is assigned
// against the declared option order before any sorting, so custom colors keep
// their index-to-category correspondence.
type distEntry struct {
	label string
	count float64
	isNA  bool
	color string
}

func normalizeDistribution(p *types.AnalyticsPayload, s types.EffectiveSettings, opts NormalizeOptions, base PercentBase) *Normalized {
	entries := make([]distEntry, 0, len(p.Options))
	for _, o := range p.Options {
		entries = append(entries, distEntry{
			label: o.Label,
			count: float64(o.Count),
			isNA:  o.IsNotApplicable || isNALabel(o.Label),
		})
	}
	return buildSeries(entries, p.Respondents, s, opts, base)
}

// buildSeries applies N/A filtering, color assignment, sorting and the
// percentage base to an assembled distribution.
func buildSeries(entries []distEntry, respondents int, s types.EffectiveSettings, opts NormalizeOptions, base PercentBase) *Normalized {
	colors := AllocateColors(len(entries), s.BaseColor, s.CustomColors)
	for i := range entries {
		entries[i].color = colors[i]
	}

	kept := make([]distEntry, 0, len(entries))
	excludedNA := 0
	for _, e := range entries {
		if e.isNA && !s.ShowNA {
			excludedNA += int(e.count)
			continue
		}
		kept = append(kept, e)
	}

	switch {
	case opts.KeepDeclaredOrder, s.SortOrder == types.SortOrderDefault:
		// declared order stands
	case s.SortOrder == types.SortOrderAsc:
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].count < kept[j].count })
	case s.SortOrder == types.SortOrderDesc:
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].count > kept[j].count })
	}
	// The N/A row, when shown, is pinned to the end regardless of sort.
	sort.SliceStable(kept, func(i, j int) bool { return !kept[i].isNA && kept[j].isNA })

	var denom float64
	if base == PercentBaseRespondents {
		denom = float64(respondents)
	} else {
		for _, e := range kept {
			denom += e.count
		}
	}

	series := &ChartSeries{
		Labels:      make([]string, len(kept)),
		Counts:      make([]float64, len(kept)),
		Percentages: make([]float64, len(kept)),
		Colors:      make([]string, len(kept)),
		Base:        base,
		ExcludedNA:  excludedNA,
	}
	rows := make([]TableRow, len(kept))
	var total float64
	for i, e := range kept {
		pct := 0.0
		if denom > 0 {
			pct = e.count / denom * 100
		}
		series.Labels[i] = e.label
		series.Counts[i] = e.count
		series.Percentages[i] = pct
		series.Colors[i] = e.color
		pctStr := ""
		if s.ShowPercentages {
			pctStr = formatPercent(pct)
		}
		rows[i] = TableRow{Label: e.label, Count: e.count, Percent: pctStr}
		total += e.count
	}

	table := TableRows{Rows: rows}
	table.Footer = append(table.Footer, TableRow{Label: "Total", Count: total, Percent: ""})
	if excludedNA > 0 {
		table.Footer = append(table.Footer, TableRow{
			Label:   fmt.Sprintf("Excluded %d %s response(s)", excludedNA, strings.ToLower(opts.naLabel())),
			Count:   float64(excludedNA),
			Percent: "",
		})
	}
	return &Normalized{Series: series, Table: table}
}

func normalizeNPS(p *types.AnalyticsPayload, s types.EffectiveSettings) *Normalized {
	seg := p.NPS
	entries := []distEntry{
		{label: "Promoters (9-10)", count: float64(seg.Promoters)},
		{label: "Passives (7-8)", count: float64(seg.Passives)},
		{label: "Detractors (0-6)", count: float64(seg.Detractors)},
	}
	// Segment order is fixed; never count-sorted.
	out := buildSeries(entries, p.Respondents, s, NormalizeOptions{KeepDeclaredOrder: true}, PercentBaseResponses)
	score := seg.Score
	out.Table.NPSScore = &score
	return out
}

func normalizeNumeric(p *types.AnalyticsPayload, s types.EffectiveSettings, opts NormalizeOptions) *Normalized {
	values := append([]types.ValueCount(nil), p.Values...)
	sort.SliceStable(values, func(i, j int) bool { return values[i].Value < values[j].Value })

	var entries []distEntry
	if len(values) <= distinctValueBucketMax {
		entries = make([]distEntry, 0, len(values)+1)
		for _, v := range values {
			entries = append(entries, distEntry{label: formatNumber(v.Value), count: float64(v.Count)})
		}
	} else {
		// Bin into exactly five equal-width bins spanning [min,max].
		minV := values[0].Value
		maxV := values[len(values)-1].Value
		width := (maxV - minV) / numericBinCount
		binCounts := make([]float64, numericBinCount)
		for _, v := range values {
			idx := numericBinCount - 1
			if width > 0 {
				idx = int((v.Value - minV) / width)
				if idx >= numericBinCount {
					idx = numericBinCount - 1
				}
			}
			binCounts[idx] += float64(v.Count)
		}
		entries = make([]distEntry, 0, numericBinCount+1)
		for i := 0; i < numericBinCount; i++ {
			start := minV + float64(i)*width
			end := start + width
			entries = append(entries, distEntry{
				label: fmt.Sprintf("%.1f - %.1f", start, end),
				count: binCounts[i],
			})
		}
	}
	if p.NACount > 0 {
		// Non-numeric sentinel responses stay a separate labeled row, never
		// folded into a bin.
		entries = append(entries, distEntry{label: opts.naLabel(), count: float64(p.NACount), isNA: true})
	}

	binned := NormalizeOptions{KeepDeclaredOrder: true, NALabel: opts.NALabel}
	out := buildSeries(entries, p.Respondents, s, binned, PercentBaseResponses)
	out.Table.Stats = statLines(p.Stats, s.Stats)
	return out
}

func normalizeRanking(p *types.AnalyticsPayload, s types.EffectiveSettings) *Normalized {
	itemCount := len(p.Ranking)
	type scored struct {
		item  types.RankingItem
		score float64
	}
	items := make([]scored, 0, itemCount)
	for _, it := range p.Ranking {
		// Lower average rank is better; the overall score inverts it so the
		// best item charts tallest.
		items = append(items, scored{item: it, score: float64(itemCount) + 1 - it.AverageRank})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	entries := make([]distEntry, len(items))
	var scoreSum float64
	for i, it := range items {
		entries[i] = distEntry{label: it.item.Label, count: it.score}
		scoreSum += it.score
	}
	colors := AllocateColors(len(entries), s.BaseColor, s.CustomColors)

	series := &ChartSeries{
		Labels:      make([]string, len(entries)),
		Counts:      make([]float64, len(entries)),
		Percentages: make([]float64, len(entries)),
		Colors:      colors,
		Base:        PercentBaseResponses,
	}
	rows := make([]TableRow, len(entries))
	rank := &RankTable{
		ItemLabels: make([]string, len(items)),
		RankCounts: make([][]int, len(items)),
		AvgRanks:   make([]float64, len(items)),
		Scores:     make([]float64, len(items)),
	}
	for i, it := range items {
		series.Labels[i] = it.item.Label
		series.Counts[i] = it.score
		if scoreSum > 0 {
			series.Percentages[i] = it.score / scoreSum * 100
		}
		rows[i] = TableRow{Label: it.item.Label, Count: it.score, Percent: fmt.Sprintf("avg rank %.2f", it.item.AverageRank)}
		rank.ItemLabels[i] = it.item.Label
		rank.RankCounts[i] = append([]int(nil), it.item.RankCounts...)
		rank.AvgRanks[i] = it.item.AverageRank
		rank.Scores[i] = it.score
	}
	return &Normalized{Series: series, Table: TableRows{Rows: rows, Ranks: rank}}
}

func normalizeGrid(p *types.AnalyticsPayload, s types.EffectiveSettings, opts NormalizeOptions) *Normalized {
	g := p.Grid
	rows := len(g.RowLabels)
	cols := len(g.ColLabels)

	keepCol := make([]bool, cols)
	for c := 0; c < cols; c++ {
		na := isNALabel(g.ColLabels[c])
		if c < len(g.ColNotApplicable) && g.ColNotApplicable[c] {
			na = true
		}
		keepCol[c] = s.ShowNA || !na
	}

	out := &GridTable{}
	for c := 0; c < cols; c++ {
		if keepCol[c] {
			out.ColLabels = append(out.ColLabels, g.ColLabels[c])
		}
	}
	out.RowLabels = append(out.RowLabels, g.RowLabels...)
	out.CellCounts = make([][]float64, rows)
	out.RowTotals = make([]float64, rows)
	out.ColTotals = make([]float64, len(out.ColLabels))
	if g.IsStarGrid {
		out.CellAverages = make([][]float64, rows)
		out.RowAverages = make([]float64, rows)
	}

	for r := 0; r < rows; r++ {
		// Row totals cover every input column, filtered or not: they count
		// how many responses the row received overall.
		for c := 0; c < cols && c < len(g.CellCounts[r]); c++ {
			out.RowTotals[r] += float64(g.CellCounts[r][c])
		}

		kept := 0
		var rowSum, rowN float64
		for c := 0; c < cols && c < len(g.CellCounts[r]); c++ {
			if !keepCol[c] {
				continue
			}
			count := float64(g.CellCounts[r][c])
			out.CellCounts[r] = append(out.CellCounts[r], count)
			out.ColTotals[kept] += count
			if g.IsStarGrid && r < len(g.CellSums) && c < len(g.CellSums[r]) {
				avg := 0.0
				if count > 0 {
					avg = g.CellSums[r][c] / count
				}
				out.CellAverages[r] = append(out.CellAverages[r], avg)
				rowSum += g.CellSums[r][c]
				rowN += count
			}
			kept++
		}
		if g.IsStarGrid && rowN > 0 {
			out.RowAverages[r] = rowSum / rowN
		}
	}

	return &Normalized{Series: nil, Table: TableRows{Grid: out}}
}

func normalizeOpenEnded(p *types.AnalyticsPayload, opts NormalizeOptions) *Normalized {
	wordLimit := opts.WordLimit
	if wordLimit <= 0 {
		wordLimit = defaultWordLimit
	}
	respLimit := opts.ResponseLimit
	if respLimit <= 0 {
		respLimit = defaultResponseLimit
	}

	words := append([]types.WordCount(nil), p.Words...)
	sort.SliceStable(words, func(i, j int) bool { return words[i].Count > words[j].Count })
	if len(words) > wordLimit {
		words = words[:wordLimit]
	}
	responses := p.Responses
	if len(responses) > respLimit {
		responses = responses[:respLimit]
	}

	return &Normalized{Series: nil, Table: TableRows{Words: words, Responses: responses}}
}

func statLines(stats *types.NumericStats, toggles types.StatToggles) []StatLine {
	if stats == nil {
		return nil
	}
	var out []StatLine
	if toggles.Mean {
		out = append(out, StatLine{Name: "Mean", Value: stats.Mean})
	}
	if toggles.Median {
		out = append(out, StatLine{Name: "Median", Value: stats.Median})
	}
	if toggles.Min {
		out = append(out, StatLine{Name: "Min", Value: stats.Min})
	}
	if toggles.Max {
		out = append(out, StatLine{Name: "Max", Value: stats.Max})
	}
	if toggles.StdDev {
		out = append(out, StatLine{Name: "Std Dev", Value: stats.StdDev})
	}
	return out
}

func isNALabel(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "n/a", "na", "not applicable":
		return true
	default:
		return false
	}
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
