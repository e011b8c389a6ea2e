package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formpulse/formpulse-backend/internal/report"
	"github.com/formpulse/formpulse-backend/internal/types"
)

// ChartHandler renders one chart to PNG for the on-screen widgets. The
// paginated report path renders charts internally; this endpoint serves the
// same rasterizer over HTTP.
type ChartHandler struct {
	rasterizer report.Rasterizer
}

func NewChartHandler(rasterizer report.Rasterizer) *ChartHandler {
	return &ChartHandler{rasterizer: rasterizer}
}

type renderChartRequest struct {
	ChartKind       types.ChartKind       `json:"chart_kind" binding:"required"`
	Series          *report.ChartSeries   `json:"series" binding:"required"`
	Width           int                   `json:"width"`
	Height          int                   `json:"height"`
	ShowLegend      bool                  `json:"show_legend"`
	DataLabelFormat types.DataLabelFormat `json:"data_label_format"`
	Title           string                `json:"title"`
}

func (ch *ChartHandler) RenderChart(c *gin.Context) {
	var req renderChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_chart_request", err)
		return
	}
	png, err := ch.rasterizer.Render(req.ChartKind, req.Series, report.ChartStyle{
		Width:           req.Width,
		Height:          req.Height,
		ShowLegend:      req.ShowLegend,
		DataLabelFormat: req.DataLabelFormat,
		Title:           req.Title,
	})
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "chart_render_failed", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
