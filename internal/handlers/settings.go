package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/services"
	"github.com/formpulse/formpulse-backend/internal/types"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func surveyIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("surveyID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid survey id: %w", err)
	}
	return id, nil
}

func (sh *SettingsHandler) GetSettings(c *gin.Context) {
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	payload, err := sh.settingsService.Get(c.Request.Context(), surveyID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_load_failed", err)
		return
	}
	RespondOK(c, payload)
}

func (sh *SettingsHandler) SaveSettings(c *gin.Context) {
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	var payload types.SettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_settings_payload", err)
		return
	}
	saved, err := sh.settingsService.Save(c.Request.Context(), surveyID, &payload)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_save_failed", err)
		return
	}
	RespondOK(c, saved)
}

// ResolveQuestionSettings returns the merged effective settings for one
// question. The question type and natural sequence come from the query string
// because this service does not own the survey structure.
func (sh *SettingsHandler) ResolveQuestionSettings(c *gin.Context) {
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	questionID, err := uuid.Parse(c.Param("questionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_question_id", fmt.Errorf("invalid question id: %w", err))
		return
	}
	qt := types.QuestionType(c.Query("type"))
	if qt == "" {
		RespondError(c, http.StatusBadRequest, "missing_question_type", fmt.Errorf("query parameter 'type' is required"))
		return
	}
	seq, _ := strconv.Atoi(c.DefaultQuery("sequence", "1"))

	eff, err := sh.settingsService.Resolve(c.Request.Context(), surveyID, qt, questionID, seq)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_resolve_failed", err)
		return
	}
	RespondOK(c, eff)
}

func (sh *SettingsHandler) ResetSettings(c *gin.Context) {
	surveyID, err := surveyIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	if err := sh.settingsService.Reset(c.Request.Context(), surveyID); err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_reset_failed", err)
		return
	}
	RespondOK(c, gin.H{"reset": true})
}
