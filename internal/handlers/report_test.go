package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/services"
	"github.com/formpulse/formpulse-backend/internal/types"
)

// stubReportService serves one in-memory artifact.
type stubReportService struct {
	artifact *types.ReportArtifact
	pdf      []byte
	deleted  []uuid.UUID
}

func (s *stubReportService) Generate(ctx context.Context, surveyID uuid.UUID, opts services.GenerateOptions) (*types.ReportArtifact, error) {
	return s.artifact, nil
}

func (s *stubReportService) GetArtifact(ctx context.Context, id uuid.UUID) (*types.ReportArtifact, error) {
	if s.artifact != nil && s.artifact.ID == id {
		return s.artifact, nil
	}
	return nil, nil
}

func (s *stubReportService) ListArtifacts(ctx context.Context, surveyID uuid.UUID, limit int) ([]*types.ReportArtifact, error) {
	return nil, nil
}

func (s *stubReportService) DownloadArtifact(ctx context.Context, artifact *types.ReportArtifact) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.pdf)), nil
}

func (s *stubReportService) DeleteArtifact(ctx context.Context, artifact *types.ReportArtifact) error {
	s.deleted = append(s.deleted, artifact.ID)
	return nil
}

func newReportRouter(svc services.ReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewReportHandler(svc)
	r.GET("/api/reports/:reportID", h.GetReport)
	r.GET("/api/reports/:reportID/download", h.DownloadReport)
	r.DELETE("/api/reports/:reportID", h.DeleteReport)
	return r
}

func TestDownloadReportStreamsPDF(t *testing.T) {
	artifact := &types.ReportArtifact{
		ID:        uuid.New(),
		SurveyID:  uuid.New(),
		Filename:  "pulse_report_2026-08-30.pdf",
		BucketKey: "reports/x/pulse_report_2026-08-30.pdf",
	}
	svc := &stubReportService{artifact: artifact, pdf: []byte("%PDF-1.4 test")}
	r := newReportRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/"+artifact.ID.String()+"/download", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, artifact.Filename) {
		t.Fatalf("content disposition must name the file, got %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("response body is not the stored document")
	}
}

func TestDownloadReportUnknownID(t *testing.T) {
	r := newReportRouter(&stubReportService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/"+uuid.NewString()+"/download", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteReportRemovesArtifact(t *testing.T) {
	artifact := &types.ReportArtifact{ID: uuid.New(), BucketKey: "reports/x/y.pdf"}
	svc := &stubReportService{artifact: artifact}
	r := newReportRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/reports/"+artifact.ID.String(), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != artifact.ID {
		t.Fatalf("delete must reach the service, got %v", svc.deleted)
	}
}

func TestDeleteReportUnknownID(t *testing.T) {
	svc := &stubReportService{}
	r := newReportRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/reports/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if len(svc.deleted) != 0 {
		t.Fatal("nothing must be deleted for an unknown id")
	}
}
