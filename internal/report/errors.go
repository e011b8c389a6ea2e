package report

import "errors"

var (
	// ErrMissingData marks a question or category with no analytics payload.
	// Recovered per section with an inline "no data" notice.
	ErrMissingData = errors.New("missing analytics data")
	// ErrRasterization marks a chart renderer failure. Recovered per question
	// with a text placeholder in place of the image.
	ErrRasterization = errors.New("chart rasterization failed")
	// ErrFatalIO marks an upstream fetch failure before generation starts.
	// Surfaced to the caller; no partial document is produced.
	ErrFatalIO = errors.New("analytics fetch failed")
)
