package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formpulse/formpulse-backend/internal/clients/redis"
	"github.com/formpulse/formpulse-backend/internal/logger"
)

// ProgressHandler streams generation progress events to the frontend over
// server-sent events, backed by the redis progress bus.
type ProgressHandler struct {
	bus redis.ProgressBus
	log *logger.Logger
}

func NewProgressHandler(bus redis.ProgressBus, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		bus: bus,
		log: log.With("handler", "ProgressHandler"),
	}
}

// StreamProgress subscribes to the progress channel and forwards the events
// for one survey until the run finishes, fails, or the client disconnects.
func (ph *ProgressHandler) StreamProgress(c *gin.Context) {
	if ph.bus == nil {
		RespondError(c, http.StatusServiceUnavailable, "progress_unavailable",
			fmt.Errorf("progress events are not enabled"))
		return
	}
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}

	ctx := c.Request.Context()
	// Buffered so a slow client drops events instead of blocking the bus
	// forwarder goroutine.
	events := make(chan redis.ProgressEvent, 16)
	err = ph.bus.StartForwarder(ctx, func(e redis.ProgressEvent) {
		if e.SurveyID != surveyID {
			return
		}
		select {
		case events <- e:
		default:
			ph.log.Debug("dropping progress event for slow client", "survey_id", surveyID)
		}
	})
	if err != nil {
		RespondError(c, http.StatusBadGateway, "progress_subscribe_failed", err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeaderNow()

	// The request context ends when the client disconnects, which also stops
	// the forwarder goroutine.
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			c.SSEvent("progress", e)
			c.Writer.Flush()
			if e.Error != "" || e.Percent >= 100 {
				return
			}
		}
	}
}
