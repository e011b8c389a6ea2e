package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/formpulse/formpulse-backend/internal/types"
)

// Cursor is the layout engine's position: 1-based page index and vertical
// offset in mm. It is threaded through the layout primitives as a value so
// page-break decisions are testable without a document.
type Cursor struct {
	PageIndex int
	Y         float64
}

// PageGeometry is the fixed vertical frame the cursor moves in.
type PageGeometry struct {
	Height       float64
	TopMargin    float64
	BottomMargin float64
}

// CheckPageBreak returns the cursor after reserving requiredSpace: unchanged
// when the content fits on the current page, or reset to the top of the next
// page. The second result reports whether a break happened.
func CheckPageBreak(cur Cursor, requiredSpace float64, geom PageGeometry) (Cursor, bool) {
	if cur.Y+requiredSpace > geom.Height-geom.BottomMargin {
		return Cursor{PageIndex: cur.PageIndex + 1, Y: geom.TopMargin}, true
	}
	return cur, false
}

// SummaryItem is one headline metric on the summary block.
type SummaryItem struct {
	Label string
	Value string
}

// ComparisonBlock holds a second data group rendered side by side with the
// primary series.
type ComparisonBlock struct {
	GroupALabel string
	GroupBLabel string
	A           *ChartSeries
	B           *ChartSeries
}

// QuestionSection is the fully prepared content for one question: chart
// image already rasterized (or the error that prevented it), normalized
// table content, and presentation flags.
type QuestionSection struct {
	Number    int
	Title     string
	TypeLabel string
	ChartKind types.ChartKind

	ChartPNG []byte
	ChartErr error

	Series          *ChartSeries
	Table           TableRows
	ShowPercentages bool
	Thumbnails      []string
	Comparison      *ComparisonBlock
	NoData          bool
}

// Engine owns the document cursor and emits sections onto an fpdf document.
// It is single-writer: sections are added strictly sequentially.
type Engine struct {
	pdf   *fpdf.Fpdf
	theme Theme
	geom  PageGeometry
	cur   Cursor

	chartSeq int
}

// NewEngine starts a one-page document with the footer (document title +
// "Page X of N") installed on every page.
func NewEngine(theme Theme, docTitle string) *Engine {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(theme.MarginLeft, theme.MarginTop, theme.MarginRight)
	// Breaks are decided by the cursor, not fpdf.
	pdf.SetAutoPageBreak(false, theme.MarginBottom)
	pdf.AliasNbPages("")

	e := &Engine{
		pdf:   pdf,
		theme: theme,
		geom: PageGeometry{
			Height:       theme.PageHeight,
			TopMargin:    theme.MarginTop,
			BottomMargin: theme.MarginBottom,
		},
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-(theme.MarginBottom - 4))
		pdf.SetFont(theme.FontFamily, "", 8)
		e.setTextColor(theme.MutedColor)
		pdf.CellFormat(theme.contentWidth()/2, 5, docTitle, "", 0, "L", false, 0, "")
		pdf.CellFormat(theme.contentWidth()/2, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	e.cur = Cursor{PageIndex: 1, Y: theme.MarginTop}
	pdf.SetY(e.cur.Y)
	return e
}

// Cursor exposes the current position, mainly for tests.
func (e *Engine) Cursor() Cursor {
	return e.cur
}

// breakIfNeeded reserves requiredSpace ahead of a write, starting a new page
// when it would overflow the writable band.
func (e *Engine) breakIfNeeded(requiredSpace float64) bool {
	next, broke := CheckPageBreak(e.cur, requiredSpace, e.geom)
	if broke {
		e.pdf.AddPage()
		e.pdf.SetY(next.Y)
	}
	e.cur = next
	return broke
}

// sync pulls fpdf's position back into the cursor after a write.
func (e *Engine) sync() {
	e.cur.Y = e.pdf.GetY()
}

func (e *Engine) setTextColor(hexColor string) {
	r, g, b, err := ParseHexRGB(hexColor)
	if err != nil {
		e.pdf.SetTextColor(44, 62, 80)
		return
	}
	e.pdf.SetTextColor(int(r), int(g), int(b))
}

func (e *Engine) setFillColor(hexColor string) {
	r, g, b, err := ParseHexRGB(hexColor)
	if err != nil {
		e.pdf.SetFillColor(241, 245, 249)
		return
	}
	e.pdf.SetFillColor(int(r), int(g), int(b))
}

// AddTitleBlock writes the document title banner.
func (e *Engine) AddTitleBlock(title string, generatedAt time.Time) {
	e.breakIfNeeded(30)

	e.pdf.SetFont(e.theme.FontFamily, "B", 22)
	e.setTextColor(e.theme.PrimaryColor)
	e.pdf.CellFormat(0, 12, title, "", 1, "L", false, 0, "")

	e.pdf.SetFont(e.theme.FontFamily, "", 10)
	e.setTextColor(e.theme.MutedColor)
	e.pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", generatedAt.Format("January 2, 2006 15:04")), "", 1, "L", false, 0, "")
	e.pdf.Ln(e.theme.SectionGap)
	e.sync()
}

// AddSummaryBlock writes the headline metrics as a single striped row table.
func (e *Engine) AddSummaryBlock(items []SummaryItem) {
	if len(items) == 0 {
		return
	}
	e.breakIfNeeded(float64(len(items))*e.theme.RowHeight + 14)

	e.writeSectionHeading("Summary")
	for i, it := range items {
		if i%2 == 0 {
			e.setFillColor(e.theme.StripeFill)
		} else {
			e.pdf.SetFillColor(255, 255, 255)
		}
		e.pdf.SetFont(e.theme.FontFamily, "", 9)
		e.setTextColor(e.theme.MutedColor)
		e.pdf.CellFormat(60, e.theme.RowHeight, it.Label, "", 0, "L", true, 0, "")
		e.pdf.SetFont(e.theme.FontFamily, "B", 9)
		e.setTextColor(e.theme.TextColor)
		e.pdf.CellFormat(0, e.theme.RowHeight, it.Value, "", 1, "L", true, 0, "")
	}
	e.pdf.Ln(e.theme.SectionGap)
	e.sync()
}

// AddFilterInfoBlock describes the active respondent filter, if any.
func (e *Engine) AddFilterInfoBlock(description string) {
	if description == "" {
		return
	}
	e.breakIfNeeded(18)

	e.writeSectionHeading("Active Filters")
	e.pdf.SetFont(e.theme.FontFamily, "I", 9)
	e.setTextColor(e.theme.TextColor)
	e.pdf.MultiCell(0, 5, description, "", "L", false)
	e.pdf.Ln(e.theme.SectionGap)
	e.sync()
}

// AddDemographicsSection renders each demographic breakdown using the same
// machinery as question sections, under one heading.
func (e *Engine) AddDemographicsSection(blocks []QuestionSection) {
	if len(blocks) == 0 {
		return
	}
	e.breakIfNeeded(16)
	e.writeSectionHeading("Respondent Demographics")
	for i := range blocks {
		e.AddQuestionSection(blocks[i])
	}
}

// AddQuestionSection emits one question in fixed order: header, chart image,
// table/statistics, thumbnail grid, comparison block. A failed step degrades
// to an inline notice and never blocks the remaining steps.
func (e *Engine) AddQuestionSection(sec QuestionSection) {
	header := sec.Title
	if sec.Number > 0 {
		header = fmt.Sprintf("Q%d. %s", sec.Number, sec.Title)
	}

	// Long titles wrap; the header reservation is measured from the wrapped
	// line count, not a fixed estimate.
	e.pdf.SetFont(e.theme.FontFamily, "B", 12)
	titleLines := len(e.pdf.SplitText(header, e.theme.contentWidth()))
	if titleLines < 1 {
		titleLines = 1
	}
	e.breakIfNeeded(float64(titleLines)*6 + 12)

	e.setTextColor(e.theme.PrimaryColor)
	e.pdf.MultiCell(0, 6, header, "", "L", false)
	if sec.TypeLabel != "" {
		e.pdf.SetFont(e.theme.FontFamily, "", 8)
		e.setTextColor(e.theme.MutedColor)
		e.pdf.CellFormat(0, 4, sec.TypeLabel, "", 1, "L", false, 0, "")
	}
	e.pdf.Ln(2)
	e.sync()

	if sec.NoData {
		e.writeInlineNotice("No response data available for this question.")
		e.pdf.Ln(e.theme.SectionGap)
		e.sync()
		return
	}

	if sec.ChartErr != nil {
		e.writeInlineNotice("Chart could not be rendered for this question.")
	} else if len(sec.ChartPNG) > 0 {
		e.addChartImage(sec.ChartPNG, string(sec.ChartKind))
	}

	if len(sec.Table.Rows) > 0 {
		e.addDistributionTable(sec.Table, sec.ShowPercentages)
	}
	if len(sec.Table.Stats) > 0 {
		e.addStatsBlock(sec.Table.Stats)
	}
	if sec.Table.NPSScore != nil {
		e.breakIfNeeded(e.theme.RowHeight + 2)
		e.pdf.SetFont(e.theme.FontFamily, "B", 10)
		e.setTextColor(e.theme.PrimaryColor)
		e.pdf.CellFormat(0, e.theme.RowHeight, fmt.Sprintf("NPS Score: %.0f", *sec.Table.NPSScore), "", 1, "L", false, 0, "")
		e.sync()
	}
	if sec.Table.Ranks != nil {
		e.addRankMatrix(sec.Table.Ranks)
	}
	if sec.Table.Grid != nil {
		e.addGridTable(sec.Table.Grid)
	}
	if len(sec.Table.Words) > 0 {
		e.addWordFrequencyTable(sec.Table.Words)
	}
	if len(sec.Table.Responses) > 0 {
		e.addResponseList(sec.Table.Responses)
	}
	if len(sec.Thumbnails) > 0 {
		e.addThumbnailNote(len(sec.Thumbnails))
	}
	if sec.Comparison != nil {
		e.addComparisonBlock(sec.Comparison)
	}

	e.pdf.Ln(e.theme.SectionGap)
	e.sync()
}

func (e *Engine) writeSectionHeading(text string) {
	e.pdf.SetFont(e.theme.FontFamily, "B", 14)
	e.setTextColor(e.theme.TextColor)
	e.pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	e.pdf.Ln(2)
	e.sync()
}

func (e *Engine) writeInlineNotice(text string) {
	e.breakIfNeeded(8)
	e.pdf.SetFont(e.theme.FontFamily, "I", 9)
	e.setTextColor(e.theme.MutedColor)
	e.pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
	e.sync()
}

func (e *Engine) addChartImage(png []byte, kind string) {
	imgH := e.theme.ChartHeight(kind)
	e.breakIfNeeded(imgH + 4)

	e.chartSeq++
	name := fmt.Sprintf("chart-%d", e.chartSeq)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	e.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	imgW := e.theme.contentWidth() * 0.9
	e.pdf.ImageOptions(name, e.theme.MarginLeft, e.cur.Y, imgW, imgH, false, opts, 0, "")
	e.pdf.SetY(e.cur.Y + imgH + 4)
	e.sync()
}

// addDistributionTable writes label/count rows with the page break re-checked
// per row, redrawing the header after a break so tall tables can span pages.
// The percent column is only present when the resolved settings ask for it.
func (e *Engine) addDistributionTable(table TableRows, showPercent bool) {
	labelW := e.theme.contentWidth() - 30
	countLn := 1
	if showPercent {
		labelW -= 30
		countLn = 0
	}
	drawHeader := func() {
		e.setFillColor(e.theme.HeaderFill)
		e.pdf.SetTextColor(255, 255, 255)
		e.pdf.SetFont(e.theme.FontFamily, "B", 8)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, "Answer", "1", 0, "L", true, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, "Responses", "1", countLn, "C", true, 0, "")
		if showPercent {
			e.pdf.CellFormat(30, e.theme.RowHeight, "Percent", "1", 1, "C", true, 0, "")
		}
		e.sync()
	}

	e.breakIfNeeded(e.theme.RowHeight * 3)
	drawHeader()

	e.pdf.SetFont(e.theme.FontFamily, "", 8)
	for i, row := range table.Rows {
		if e.breakIfNeeded(e.theme.RowHeight) {
			drawHeader()
			e.pdf.SetFont(e.theme.FontFamily, "", 8)
		}
		if i%2 == 1 {
			e.setFillColor(e.theme.StripeFill)
		} else {
			e.pdf.SetFillColor(255, 255, 255)
		}
		e.setTextColor(e.theme.TextColor)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, truncateLabel(row.Label, 70), "1", 0, "L", true, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, formatNumber(row.Count), "1", countLn, "C", true, 0, "")
		if showPercent {
			e.pdf.CellFormat(30, e.theme.RowHeight, row.Percent, "1", 1, "C", true, 0, "")
		}
		e.sync()
	}

	for _, row := range table.Footer {
		if e.breakIfNeeded(e.theme.RowHeight) {
			drawHeader()
		}
		e.pdf.SetFont(e.theme.FontFamily, "B", 8)
		e.setTextColor(e.theme.TextColor)
		e.pdf.SetFillColor(255, 255, 255)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, row.Label, "1", 0, "L", false, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, formatNumber(row.Count), "1", countLn, "C", false, 0, "")
		if showPercent {
			e.pdf.CellFormat(30, e.theme.RowHeight, row.Percent, "1", 1, "C", false, 0, "")
		}
		e.sync()
	}
	e.pdf.Ln(3)
	e.sync()
}

func (e *Engine) addStatsBlock(stats []StatLine) {
	e.breakIfNeeded(e.theme.RowHeight + 4)
	e.pdf.SetFont(e.theme.FontFamily, "", 8)
	cellW := e.theme.contentWidth() / float64(len(stats))
	for _, s := range stats {
		e.setTextColor(e.theme.MutedColor)
		e.pdf.CellFormat(cellW/2, e.theme.RowHeight, s.Name, "", 0, "L", false, 0, "")
		e.pdf.SetFont(e.theme.FontFamily, "B", 8)
		e.setTextColor(e.theme.TextColor)
		e.pdf.CellFormat(cellW/2, e.theme.RowHeight, fmt.Sprintf("%.2f", s.Value), "", 0, "L", false, 0, "")
		e.pdf.SetFont(e.theme.FontFamily, "", 8)
	}
	e.pdf.Ln(e.theme.RowHeight + 2)
	e.sync()
}

// addRankMatrix prints the raw rank-distribution matrix: one row per item,
// one column per rank position.
func (e *Engine) addRankMatrix(ranks *RankTable) {
	if len(ranks.ItemLabels) == 0 {
		return
	}
	positions := 0
	for _, rc := range ranks.RankCounts {
		if len(rc) > positions {
			positions = len(rc)
		}
	}
	labelW := 60.0
	colW := (e.theme.contentWidth() - labelW - 20) / float64(positions)

	drawHeader := func() {
		e.setFillColor(e.theme.HeaderFill)
		e.pdf.SetTextColor(255, 255, 255)
		e.pdf.SetFont(e.theme.FontFamily, "B", 7)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, "Item", "1", 0, "L", true, 0, "")
		for p := 1; p <= positions; p++ {
			e.pdf.CellFormat(colW, e.theme.RowHeight, fmt.Sprintf("#%d", p), "1", 0, "C", true, 0, "")
		}
		e.pdf.CellFormat(20, e.theme.RowHeight, "Avg", "1", 1, "C", true, 0, "")
		e.sync()
	}

	e.breakIfNeeded(e.theme.RowHeight * 3)
	drawHeader()
	e.pdf.SetFont(e.theme.FontFamily, "", 7)
	for i, label := range ranks.ItemLabels {
		if e.breakIfNeeded(e.theme.RowHeight) {
			drawHeader()
			e.pdf.SetFont(e.theme.FontFamily, "", 7)
		}
		e.setTextColor(e.theme.TextColor)
		e.pdf.SetFillColor(255, 255, 255)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, truncateLabel(label, 32), "1", 0, "L", false, 0, "")
		for p := 0; p < positions; p++ {
			v := ""
			if p < len(ranks.RankCounts[i]) {
				v = fmt.Sprintf("%d", ranks.RankCounts[i][p])
			}
			e.pdf.CellFormat(colW, e.theme.RowHeight, v, "1", 0, "C", false, 0, "")
		}
		e.pdf.CellFormat(20, e.theme.RowHeight, fmt.Sprintf("%.2f", ranks.AvgRanks[i]), "1", 1, "C", false, 0, "")
		e.sync()
	}
	e.pdf.Ln(3)
	e.sync()
}

// addGridTable prints the cross-tab with row totals, re-checking the page
// break per row. Star grids print per-cell averages with the row average in
// the last column.
func (e *Engine) addGridTable(grid *GridTable) {
	cols := len(grid.ColLabels)
	if cols == 0 {
		return
	}
	labelW := 50.0
	colW := (e.theme.contentWidth() - labelW - 20) / float64(cols)
	isStar := len(grid.CellAverages) > 0

	drawHeader := func() {
		e.setFillColor(e.theme.HeaderFill)
		e.pdf.SetTextColor(255, 255, 255)
		e.pdf.SetFont(e.theme.FontFamily, "B", 7)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, "", "1", 0, "L", true, 0, "")
		for _, cl := range grid.ColLabels {
			e.pdf.CellFormat(colW, e.theme.RowHeight, truncateLabel(cl, 14), "1", 0, "C", true, 0, "")
		}
		last := "Total"
		if isStar {
			last = "Avg"
		}
		e.pdf.CellFormat(20, e.theme.RowHeight, last, "1", 1, "C", true, 0, "")
		e.sync()
	}

	e.breakIfNeeded(e.theme.RowHeight * 3)
	drawHeader()
	e.pdf.SetFont(e.theme.FontFamily, "", 7)
	for r, label := range grid.RowLabels {
		if e.breakIfNeeded(e.theme.RowHeight) {
			drawHeader()
			e.pdf.SetFont(e.theme.FontFamily, "", 7)
		}
		e.setTextColor(e.theme.TextColor)
		e.pdf.SetFillColor(255, 255, 255)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, truncateLabel(label, 26), "1", 0, "L", false, 0, "")
		for c := 0; c < cols; c++ {
			v := ""
			if isStar {
				if r < len(grid.CellAverages) && c < len(grid.CellAverages[r]) {
					v = fmt.Sprintf("%.1f", grid.CellAverages[r][c])
				}
			} else if r < len(grid.CellCounts) && c < len(grid.CellCounts[r]) {
				v = formatNumber(grid.CellCounts[r][c])
			}
			e.pdf.CellFormat(colW, e.theme.RowHeight, v, "1", 0, "C", false, 0, "")
		}
		if isStar {
			e.pdf.CellFormat(20, e.theme.RowHeight, fmt.Sprintf("%.1f", grid.RowAverages[r]), "1", 1, "C", false, 0, "")
		} else {
			e.pdf.CellFormat(20, e.theme.RowHeight, formatNumber(grid.RowTotals[r]), "1", 1, "C", false, 0, "")
		}
		e.sync()
	}

	if !isStar {
		if e.breakIfNeeded(e.theme.RowHeight) {
			drawHeader()
		}
		e.pdf.SetFont(e.theme.FontFamily, "B", 7)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, "Total", "1", 0, "L", false, 0, "")
		for c := 0; c < cols; c++ {
			e.pdf.CellFormat(colW, e.theme.RowHeight, formatNumber(grid.ColTotals[c]), "1", 0, "C", false, 0, "")
		}
		e.pdf.CellFormat(20, e.theme.RowHeight, "", "1", 1, "C", false, 0, "")
		e.sync()
	}
	e.pdf.Ln(3)
	e.sync()
}

func (e *Engine) addWordFrequencyTable(words []types.WordCount) {
	e.breakIfNeeded(e.theme.RowHeight * 2)
	e.pdf.SetFont(e.theme.FontFamily, "B", 9)
	e.setTextColor(e.theme.TextColor)
	e.pdf.CellFormat(0, e.theme.RowHeight, "Most frequent words", "", 1, "L", false, 0, "")
	e.pdf.SetFont(e.theme.FontFamily, "", 8)
	for i, w := range words {
		if e.breakIfNeeded(e.theme.RowHeight) {
			e.pdf.SetFont(e.theme.FontFamily, "", 8)
		}
		if i%2 == 1 {
			e.setFillColor(e.theme.StripeFill)
		} else {
			e.pdf.SetFillColor(255, 255, 255)
		}
		e.pdf.CellFormat(e.theme.contentWidth()-30, e.theme.RowHeight, w.Word, "", 0, "L", true, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, fmt.Sprintf("%d", w.Count), "", 1, "C", true, 0, "")
		e.sync()
	}
	e.pdf.Ln(3)
	e.sync()
}

func (e *Engine) addResponseList(responses []string) {
	e.breakIfNeeded(e.theme.RowHeight * 2)
	e.pdf.SetFont(e.theme.FontFamily, "B", 9)
	e.setTextColor(e.theme.TextColor)
	e.pdf.CellFormat(0, e.theme.RowHeight, "Sample responses", "", 1, "L", false, 0, "")
	e.pdf.SetFont(e.theme.FontFamily, "I", 8)
	for _, resp := range responses {
		if e.breakIfNeeded(e.theme.RowHeight * 2) {
			e.pdf.SetFont(e.theme.FontFamily, "I", 8)
		}
		e.setTextColor(e.theme.MutedColor)
		e.pdf.MultiCell(0, 5, fmt.Sprintf("\"%s\"", truncateLabel(resp, 300)), "", "L", false)
		e.pdf.Ln(1)
		e.sync()
	}
	e.pdf.Ln(2)
	e.sync()
}

func (e *Engine) addThumbnailNote(count int) {
	e.writeInlineNotice(fmt.Sprintf("%d option image(s) shown in the interactive view.", count))
}

// addComparisonBlock prints the two active data groups side by side with the
// count delta, rows matched by the primary group's label order.
func (e *Engine) addComparisonBlock(cmp *ComparisonBlock) {
	if cmp.A == nil || cmp.B == nil {
		return
	}
	bByLabel := make(map[string]int, len(cmp.B.Labels))
	for i, l := range cmp.B.Labels {
		bByLabel[l] = i
	}

	labelW := e.theme.contentWidth() - 90
	drawHeader := func() {
		e.setFillColor(e.theme.HeaderFill)
		e.pdf.SetTextColor(255, 255, 255)
		e.pdf.SetFont(e.theme.FontFamily, "B", 7)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, "Answer", "1", 0, "L", true, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, truncateLabel(cmp.GroupALabel, 14), "1", 0, "C", true, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, truncateLabel(cmp.GroupBLabel, 14), "1", 0, "C", true, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, "Delta", "1", 1, "C", true, 0, "")
		e.sync()
	}

	e.breakIfNeeded(e.theme.RowHeight * 4)
	e.pdf.SetFont(e.theme.FontFamily, "B", 9)
	e.setTextColor(e.theme.TextColor)
	e.pdf.CellFormat(0, e.theme.RowHeight, "Group comparison", "", 1, "L", false, 0, "")
	drawHeader()

	e.pdf.SetFont(e.theme.FontFamily, "", 7)
	for i, label := range cmp.A.Labels {
		if e.breakIfNeeded(e.theme.RowHeight) {
			drawHeader()
			e.pdf.SetFont(e.theme.FontFamily, "", 7)
		}
		aCount := cmp.A.Counts[i]
		bCount := 0.0
		if j, ok := bByLabel[label]; ok {
			bCount = cmp.B.Counts[j]
		}
		e.setTextColor(e.theme.TextColor)
		e.pdf.SetFillColor(255, 255, 255)
		e.pdf.CellFormat(labelW, e.theme.RowHeight, truncateLabel(label, 44), "1", 0, "L", false, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, formatNumber(aCount), "1", 0, "C", false, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, formatNumber(bCount), "1", 0, "C", false, 0, "")
		e.pdf.CellFormat(30, e.theme.RowHeight, fmt.Sprintf("%+g", aCount-bCount), "1", 1, "C", false, 0, "")
		e.sync()
	}
	e.pdf.Ln(3)
	e.sync()
}

// Output finalizes the document and returns the bytes plus the page count.
func (e *Engine) Output() ([]byte, int, error) {
	var buf bytes.Buffer
	if err := e.pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), e.pdf.PageCount(), nil
}
