package report

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/types"
)

// DemographicBlock pairs one demographic category with its distribution.
type DemographicBlock struct {
	Category types.DemographicCategory
	Payload  *types.AnalyticsPayload
}

// BuildInput is everything the document builder needs, fully fetched. The
// builder itself performs no I/O besides rasterization.
type BuildInput struct {
	Survey            *types.Survey
	Settings          types.SettingsPayload
	Analytics         map[uuid.UUID]*types.AnalyticsPayload
	Demographics      []DemographicBlock
	FilterDescription string
	GeneratedAt       time.Time
}

// BuildResult is the finished document plus per-question failure notes. A
// question listed in Failed was rendered as an inline notice, not dropped.
type BuildResult struct {
	PDF       []byte
	PageCount int
	Failed    map[uuid.UUID]error
}

// ProgressFunc receives build progress in percent. The builder guarantees the
// reported value never decreases.
type ProgressFunc func(stage string, percent int)

// Builder assembles a complete paginated report from prefetched inputs.
type Builder struct {
	log    *logger.Logger
	theme  Theme
	raster Rasterizer
}

func NewBuilder(log *logger.Logger, theme Theme, raster Rasterizer) *Builder {
	return &Builder{
		log:    log.With("service", "ReportBuilder"),
		theme:  theme,
		raster: raster,
	}
}

// Build renders the document in the fixed section order: title, summary,
// filter info, demographics, then questions by display order. A question
// whose data or chart fails degrades to an inline notice; only document-level
// failures (output encoding) return an error.
func (b *Builder) Build(ctx context.Context, in BuildInput, progress ProgressFunc) (*BuildResult, error) {
	if in.Survey == nil {
		return nil, fmt.Errorf("%w: survey is required", ErrMissingData)
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}
	report := newProgressReporter(progress)
	failed := make(map[uuid.UUID]error)

	engine := NewEngine(b.theme, in.Survey.Title)
	engine.AddTitleBlock(in.Survey.Title, in.GeneratedAt)
	engine.AddSummaryBlock(b.summaryItems(in))
	engine.AddFilterInfoBlock(in.FilterDescription)
	report("layout", 10)

	if in.Settings.ExportOpts.IncludeDemographics {
		engine.AddDemographicsSection(b.demographicSections(in))
	}
	report("demographics", 20)

	ordered := b.orderQuestions(in)
	total := len(ordered)
	for i, oq := range ordered {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sec, err := b.questionSection(i+1, oq, in)
		if err != nil {
			failed[oq.question.ID] = err
			b.log.Warn("question degraded to inline notice",
				"question_id", oq.question.ID, "error", err)
		}
		engine.AddQuestionSection(sec)

		// Questions span 20..95 percent.
		report("questions", 20+(i+1)*75/total)
	}

	pdf, pages, err := engine.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalIO, err)
	}
	report("finalize", 100)

	return &BuildResult{PDF: pdf, PageCount: pages, Failed: failed}, nil
}

// newProgressReporter wraps the callback so reported progress is monotone
// non-decreasing even when stages round their percentages unevenly.
func newProgressReporter(fn ProgressFunc) ProgressFunc {
	last := 0
	return func(stage string, percent int) {
		if fn == nil {
			return
		}
		if percent < last {
			percent = last
		}
		if percent > 100 {
			percent = 100
		}
		last = percent
		fn(stage, percent)
	}
}

func (b *Builder) summaryItems(in BuildInput) []SummaryItem {
	items := []SummaryItem{
		{Label: "Total respondents", Value: fmt.Sprintf("%d", in.Survey.RespondentCount)},
		{Label: "Questions", Value: fmt.Sprintf("%d", len(in.Survey.Questions))},
	}
	if !in.Survey.CreatedAt.IsZero() {
		items = append(items, SummaryItem{
			Label: "Survey created",
			Value: in.Survey.CreatedAt.Format("January 2, 2006"),
		})
	}
	return items
}

// orderedQuestion carries a question with its resolved settings through the
// ordering pass so settings are resolved exactly once.
type orderedQuestion struct {
	question types.Question
	settings types.EffectiveSettings
}

// orderQuestions resolves every question's settings, drops hidden questions,
// and sorts by display order ascending with the natural sequence as the
// tiebreaker.
func (b *Builder) orderQuestions(in BuildInput) []orderedQuestion {
	out := make([]orderedQuestion, 0, len(in.Survey.Questions))
	for i, q := range in.Survey.Questions {
		raw := in.Settings.Questions[q.ID.String()]
		eff := ResolveSettings(q.Type, in.Settings.Global, raw, i+1)
		for _, d := range eff.Diagnostics {
			b.log.Warn("settings override ignored", "question_id", q.ID, "detail", d)
		}
		if eff.IsHidden {
			continue
		}
		out = append(out, orderedQuestion{question: q, settings: eff})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].settings.DisplayOrder != out[j].settings.DisplayOrder {
			return out[i].settings.DisplayOrder < out[j].settings.DisplayOrder
		}
		return out[i].question.SequenceNumber < out[j].question.SequenceNumber
	})
	return out
}

// questionSection normalizes and rasterizes one question. Any failure is
// returned alongside a degraded section that still renders the header and an
// inline notice.
func (b *Builder) questionSection(number int, oq orderedQuestion, in BuildInput) (QuestionSection, error) {
	q := oq.question
	eff := oq.settings

	title := q.Text
	if eff.CustomTitle != "" {
		title = eff.CustomTitle
	}
	sec := QuestionSection{
		Number:          number,
		Title:           title,
		TypeLabel:       typeLabel(q.Type),
		ChartKind:       eff.ChartKind,
		ShowPercentages: eff.ShowPercentages,
	}

	payload := in.Analytics[q.ID]
	norm, err := Normalize(payload, eff, NormalizeOptions{
		KeepDeclaredOrder: q.Type.IsOrdinal(),
		ResponseLimit:     pdfResponseLimit(in.Settings.ExportOpts),
	})
	if err != nil {
		sec.NoData = true
		return sec, err
	}

	if !in.Settings.ExportOpts.ShowWordCloudData {
		norm.Table.Words = nil
	}
	if !in.Settings.ExportOpts.ShowOpenEndedResponses {
		norm.Table.Responses = nil
	}
	sec.Series = norm.Series
	sec.Table = norm.Table

	if q.Type == types.QuestionTypeImageChoice {
		for _, opt := range q.Options {
			if opt.ImageURL != "" {
				sec.Thumbnails = append(sec.Thumbnails, opt.ImageURL)
			}
		}
	}

	if norm.Series != nil && eff.ChartKind != types.ChartKindNone {
		png, rerr := b.raster.Render(eff.ChartKind, norm.Series, ChartStyle{
			Scale:           b.theme.ChartImageDPI,
			ShowLegend:      eff.ShowLegend,
			DataLabelFormat: chartLabelFormat(eff),
		})
		if rerr != nil {
			sec.ChartErr = rerr
			return sec, rerr
		}
		sec.ChartPNG = png
	}
	return sec, nil
}

// chartLabelFormat downgrades percent data labels when the resolved settings
// turn percentages off: percent labels disappear, combined labels keep only
// the count.
func chartLabelFormat(eff types.EffectiveSettings) types.DataLabelFormat {
	if eff.ShowPercentages {
		return eff.DataLabelFormat
	}
	switch eff.DataLabelFormat {
	case types.DataLabelPercent:
		return types.DataLabelNone
	case types.DataLabelBoth:
		return types.DataLabelCount
	default:
		return eff.DataLabelFormat
	}
}

func (b *Builder) demographicSections(in BuildInput) []QuestionSection {
	out := make([]QuestionSection, 0, len(in.Demographics))
	for i, block := range in.Demographics {
		raw := in.Settings.Demographics[block.Category.Key]
		eff := ResolveSettings(types.QuestionTypeSingleSelect, in.Settings.Global, raw, i+1)
		if eff.IsHidden {
			continue
		}

		sec := QuestionSection{
			Title:           block.Category.Label,
			ChartKind:       eff.ChartKind,
			ShowPercentages: eff.ShowPercentages,
		}
		norm, err := Normalize(block.Payload, eff, NormalizeOptions{})
		if err != nil {
			sec.NoData = true
			out = append(out, sec)
			continue
		}
		sec.Series = norm.Series
		sec.Table = norm.Table
		if norm.Series != nil && eff.ChartKind != types.ChartKindNone {
			png, rerr := b.raster.Render(eff.ChartKind, norm.Series, ChartStyle{
				Scale:           b.theme.ChartImageDPI,
				ShowLegend:      eff.ShowLegend,
				DataLabelFormat: chartLabelFormat(eff),
			})
			if rerr != nil {
				sec.ChartErr = rerr
			} else {
				sec.ChartPNG = png
			}
		}
		out = append(out, sec)
	}
	return out
}

// pdfResponseLimit applies the hard document cap on top of the configured
// open-ended response limit.
func pdfResponseLimit(opts types.ExportOptions) int {
	limit := opts.OpenEndedResponseLimit
	if limit <= 0 || limit > PDFResponseCap {
		limit = PDFResponseCap
	}
	return limit
}

func typeLabel(qt types.QuestionType) string {
	switch qt {
	case types.QuestionTypeSingleSelect:
		return "Single choice"
	case types.QuestionTypeMultiSelect:
		return "Multiple choice"
	case types.QuestionTypeImageChoice:
		return "Image choice"
	case types.QuestionTypeDropdown:
		return "Dropdown"
	case types.QuestionTypeSlider:
		return "Slider"
	case types.QuestionTypeStarRating:
		return "Star rating"
	case types.QuestionTypeNumeric:
		return "Numeric entry"
	case types.QuestionTypeNPS:
		return "Net Promoter Score"
	case types.QuestionTypeRanking:
		return "Ranking"
	case types.QuestionTypeGrid:
		return "Grid"
	case types.QuestionTypeStarGrid:
		return "Star rating grid"
	case types.QuestionTypeOpenEnded:
		return "Open ended"
	default:
		return string(qt)
	}
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// ReportFilename derives the artifact filename from the survey title and
// generation date, e.g. "customer-pulse_report_2026-08-30.pdf".
func ReportFilename(title string, now time.Time) string {
	slug := filenameUnsafe.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "survey"
	}
	return fmt.Sprintf("%s_report_%s.pdf", slug, now.Format("2006-01-02"))
}
