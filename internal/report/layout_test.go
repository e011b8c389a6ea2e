package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCheckPageBreakFits(t *testing.T) {
	geom := PageGeometry{Height: 297, TopMargin: 20, BottomMargin: 20}
	cur := Cursor{PageIndex: 1, Y: 100}
	next, broke := CheckPageBreak(cur, 50, geom)
	if broke {
		t.Fatal("content that fits must not break the page")
	}
	if next != cur {
		t.Fatalf("cursor must be unchanged, got %+v", next)
	}
}

func TestCheckPageBreakOverflow(t *testing.T) {
	geom := PageGeometry{Height: 297, TopMargin: 20, BottomMargin: 20}
	cur := Cursor{PageIndex: 3, Y: 260}
	next, broke := CheckPageBreak(cur, 30, geom)
	if !broke {
		t.Fatal("expected a page break")
	}
	if next.PageIndex != 4 {
		t.Fatalf("expected page 4, got %d", next.PageIndex)
	}
	if next.Y != geom.TopMargin {
		t.Fatalf("cursor must reset to the top margin, got %.1f", next.Y)
	}
}

func TestCheckPageBreakExactFitStays(t *testing.T) {
	geom := PageGeometry{Height: 297, TopMargin: 20, BottomMargin: 20}
	cur := Cursor{PageIndex: 1, Y: 250}
	// 250 + 27 lands exactly on the bottom margin boundary.
	if _, broke := CheckPageBreak(cur, 27, geom); broke {
		t.Fatal("content ending exactly at the boundary must not break")
	}
}

func TestEngineStartsOnFirstPage(t *testing.T) {
	e := NewEngine(DefaultTheme(), "Test Survey")
	cur := e.Cursor()
	if cur.PageIndex != 1 {
		t.Fatalf("expected page 1, got %d", cur.PageIndex)
	}
	if cur.Y != DefaultTheme().MarginTop {
		t.Fatalf("expected cursor at top margin, got %.1f", cur.Y)
	}
}

func TestEngineTitleAdvancesCursor(t *testing.T) {
	e := NewEngine(DefaultTheme(), "Test Survey")
	before := e.Cursor().Y
	e.AddTitleBlock("Quarterly Feedback", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	if e.Cursor().Y <= before {
		t.Fatalf("title block must advance the cursor, y=%.1f", e.Cursor().Y)
	}
}

// A table far taller than one page must spill over page boundaries with the
// cursor always landing back inside the writable band.
func TestEngineLongTableSpansPages(t *testing.T) {
	theme := DefaultTheme()
	e := NewEngine(theme, "Test Survey")

	rows := make([]TableRow, 120)
	for i := range rows {
		rows[i] = TableRow{Label: fmt.Sprintf("Option %d", i+1), Count: float64(i), Percent: "1.0%"}
	}
	e.AddQuestionSection(QuestionSection{
		Number: 1,
		Title:  "A very long distribution",
		Table:  TableRows{Rows: rows},
	})

	if e.Cursor().PageIndex < 2 {
		t.Fatalf("120 rows must span multiple pages, cursor on page %d", e.Cursor().PageIndex)
	}
	limit := theme.PageHeight - theme.MarginBottom
	if e.Cursor().Y > limit+theme.RowHeight {
		t.Fatalf("cursor escaped the writable band: y=%.1f limit=%.1f", e.Cursor().Y, limit)
	}

	pdf, pages, err := e.Output()
	if err != nil {
		t.Fatalf("output failed: %v", err)
	}
	if pages < 2 {
		t.Fatalf("expected at least 2 pages, got %d", pages)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestEngineNoDataSectionRendersNotice(t *testing.T) {
	e := NewEngine(DefaultTheme(), "Test Survey")
	e.AddQuestionSection(QuestionSection{Number: 1, Title: "Unanswered", NoData: true})
	pdf, pages, err := e.Output()
	if err != nil {
		t.Fatalf("output failed: %v", err)
	}
	if pages != 1 || len(pdf) == 0 {
		t.Fatalf("expected a one-page document, got %d pages", pages)
	}
}

func TestEngineGridTablePaginatesPerRow(t *testing.T) {
	e := NewEngine(DefaultTheme(), "Test Survey")
	grid := &GridTable{
		ColLabels: []string{"Good", "Okay", "Bad"},
		ColTotals: []float64{0, 0, 0},
	}
	for i := 0; i < 90; i++ {
		grid.RowLabels = append(grid.RowLabels, fmt.Sprintf("Aspect %d", i+1))
		grid.CellCounts = append(grid.CellCounts, []float64{1, 2, 3})
		grid.RowTotals = append(grid.RowTotals, 6)
	}
	e.AddQuestionSection(QuestionSection{
		Number: 1,
		Title:  "Grid",
		Table:  TableRows{Grid: grid},
	})
	_, pages, err := e.Output()
	if err != nil {
		t.Fatalf("output failed: %v", err)
	}
	if pages < 2 {
		t.Fatalf("90 grid rows must paginate, got %d page(s)", pages)
	}
}

// A title long enough to wrap several lines, written near the bottom of the
// page, must move to the next page as a whole instead of pushing the cursor
// past the writable band.
func TestLongWrappedTitleBreaksBeforeOverflow(t *testing.T) {
	theme := DefaultTheme()
	e := NewEngine(theme, "Test Survey")
	limit := theme.PageHeight - theme.MarginBottom

	for e.Cursor().PageIndex == 1 && e.Cursor().Y < limit-20 {
		e.writeInlineNotice("filler")
	}
	if e.Cursor().PageIndex != 1 {
		t.Fatalf("setup overshot onto page %d", e.Cursor().PageIndex)
	}

	title := strings.Repeat("overall satisfaction with the onboarding experience across regions ", 8)
	e.AddQuestionSection(QuestionSection{Number: 1, Title: title, NoData: true})

	cur := e.Cursor()
	if cur.Y > limit {
		t.Fatalf("cursor escaped the writable band: y=%.1f limit=%.1f", cur.Y, limit)
	}
	if cur.PageIndex < 2 {
		t.Fatalf("wrapped header near the page bottom must start a new page, got page %d", cur.PageIndex)
	}
}

// A short title near the bottom must not break: the measured reservation only
// accounts for the lines the header actually needs.
func TestShortTitleNearBottomStaysOnPage(t *testing.T) {
	theme := DefaultTheme()
	e := NewEngine(theme, "Test Survey")
	limit := theme.PageHeight - theme.MarginBottom

	for e.Cursor().PageIndex == 1 && e.Cursor().Y < limit-25 {
		e.writeInlineNotice("filler")
	}
	e.AddQuestionSection(QuestionSection{Number: 1, Title: "Short", NoData: true})
	if e.Cursor().PageIndex != 1 {
		t.Fatal("a one-line header with room left must not break the page")
	}
}
