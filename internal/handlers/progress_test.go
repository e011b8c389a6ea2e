package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/clients/redis"
	"github.com/formpulse/formpulse-backend/internal/logger"
)

func newHandlerLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// stubProgressBus replays a fixed event list into the forwarder callback.
type stubProgressBus struct {
	events []redis.ProgressEvent
}

func (b *stubProgressBus) Publish(ctx context.Context, event redis.ProgressEvent) error {
	return nil
}

func (b *stubProgressBus) StartForwarder(ctx context.Context, onEvent func(e redis.ProgressEvent)) error {
	for _, e := range b.events {
		onEvent(e)
	}
	return nil
}

func (b *stubProgressBus) Close() error { return nil }

func newProgressRouter(t *testing.T, bus redis.ProgressBus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewProgressHandler(bus, newHandlerLogger(t))
	r.GET("/api/surveys/:surveyID/reports/progress", h.StreamProgress)
	return r
}

// The stream must forward only this survey's events and close once a run
// reaches 100 percent.
func TestStreamProgressForwardsSurveyEvents(t *testing.T) {
	surveyID := uuid.New()
	otherID := uuid.New()
	bus := &stubProgressBus{events: []redis.ProgressEvent{
		{ReportID: uuid.New(), SurveyID: otherID, Stage: "fetch", Percent: 40},
		{ReportID: uuid.New(), SurveyID: surveyID, Stage: "done", Percent: 100},
	}}
	r := newProgressRouter(t, bus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+surveyID.String()+"/reports/progress", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "progress") || !strings.Contains(body, surveyID.String()) {
		t.Fatalf("stream must carry the survey's progress event, got %q", body)
	}
	if strings.Contains(body, otherID.String()) {
		t.Fatal("events for other surveys must be filtered out")
	}
}

func TestStreamProgressFailureEventEndsStream(t *testing.T) {
	surveyID := uuid.New()
	bus := &stubProgressBus{events: []redis.ProgressEvent{
		{ReportID: uuid.New(), SurveyID: surveyID, Stage: "failed", Percent: 30, Error: "upstream unavailable"},
	}}
	r := newProgressRouter(t, bus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+surveyID.String()+"/reports/progress", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "upstream unavailable") {
		t.Fatalf("failure events must reach the client, got %q", w.Body.String())
	}
}

func TestStreamProgressWithoutBus(t *testing.T) {
	r := newProgressRouter(t, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+uuid.NewString()+"/reports/progress", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when progress events are disabled, got %d", w.Code)
	}
}
