package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/report"
	"github.com/formpulse/formpulse-backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type generateReportRequest struct {
	Filter            string `json:"filter"`
	FilterDescription string `json:"filter_description"`
}

func (rh *ReportHandler) GenerateReport(c *gin.Context) {
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	var req generateReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
			return
		}
	}

	artifact, err := rh.reportService.Generate(c.Request.Context(), surveyID, services.GenerateOptions{
		Filter:            req.Filter,
		FilterDescription: req.FilterDescription,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrFatalIO) {
			status = http.StatusBadGateway
		}
		RespondError(c, status, "report_generation_failed", err)
		return
	}
	RespondOK(c, artifact)
}

func (rh *ReportHandler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reportID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_report_id", fmt.Errorf("invalid report id: %w", err))
		return
	}
	artifact, err := rh.reportService.GetArtifact(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "report_load_failed", err)
		return
	}
	if artifact == nil {
		RespondError(c, http.StatusNotFound, "report_not_found", fmt.Errorf("report %s not found", id))
		return
	}
	RespondOK(c, artifact)
}

// DownloadReport streams the stored PDF from the bucket instead of redirecting
// to the public URL, so private buckets work without signed URLs.
func (rh *ReportHandler) DownloadReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reportID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_report_id", fmt.Errorf("invalid report id: %w", err))
		return
	}
	artifact, err := rh.reportService.GetArtifact(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "report_load_failed", err)
		return
	}
	if artifact == nil {
		RespondError(c, http.StatusNotFound, "report_not_found", fmt.Errorf("report %s not found", id))
		return
	}
	rd, err := rh.reportService.DownloadArtifact(c.Request.Context(), artifact)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, report.ErrMissingData) {
			status = http.StatusConflict
		}
		RespondError(c, status, "report_download_failed", err)
		return
	}
	defer rd.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", artifact.Filename),
	}
	c.DataFromReader(http.StatusOK, -1, "application/pdf", rd, headers)
}

func (rh *ReportHandler) DeleteReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reportID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_report_id", fmt.Errorf("invalid report id: %w", err))
		return
	}
	artifact, err := rh.reportService.GetArtifact(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "report_load_failed", err)
		return
	}
	if artifact == nil {
		RespondError(c, http.StatusNotFound, "report_not_found", fmt.Errorf("report %s not found", id))
		return
	}
	if err := rh.reportService.DeleteArtifact(c.Request.Context(), artifact); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrFatalIO) {
			status = http.StatusBadGateway
		}
		RespondError(c, status, "report_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (rh *ReportHandler) ListReports(c *gin.Context) {
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	artifacts, err := rh.reportService.ListArtifacts(c.Request.Context(), surveyID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "report_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"reports": artifacts})
}
