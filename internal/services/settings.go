package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/report"
	"github.com/formpulse/formpulse-backend/internal/repos"
	"github.com/formpulse/formpulse-backend/internal/types"
)

type SettingsService interface {
	Get(ctx context.Context, surveyID uuid.UUID) (*types.SettingsPayload, error)
	Save(ctx context.Context, surveyID uuid.UUID, payload *types.SettingsPayload) (*types.SettingsPayload, error)
	Reset(ctx context.Context, surveyID uuid.UUID) error
	Resolve(ctx context.Context, surveyID uuid.UUID, qt types.QuestionType, questionID uuid.UUID, naturalSeq int) (*types.EffectiveSettings, error)
}

type settingsService struct {
	db           *gorm.DB
	log          *logger.Logger
	settingsRepo repos.SurveySettingsRepo
}

func NewSettingsService(db *gorm.DB, log *logger.Logger, settingsRepo repos.SurveySettingsRepo) SettingsService {
	return &settingsService{
		db:           db,
		log:          log.With("service", "SettingsService"),
		settingsRepo: settingsRepo,
	}
}

// Get returns the stored settings document, or the defaults when none exists.
func (s *settingsService) Get(ctx context.Context, surveyID uuid.UUID) (*types.SettingsPayload, error) {
	record, err := s.settingsRepo.GetBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if record == nil {
		return defaultSettingsPayload(), nil
	}
	return decodeSettingsRecord(record)
}

func (s *settingsService) Save(ctx context.Context, surveyID uuid.UUID, payload *types.SettingsPayload) (*types.SettingsPayload, error) {
	if payload == nil {
		return nil, fmt.Errorf("settings payload required")
	}
	record, err := encodeSettingsRecord(surveyID, payload)
	if err != nil {
		return nil, err
	}
	if _, err := s.settingsRepo.Upsert(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	s.log.Info("settings saved", "survey_id", surveyID, "question_overrides", len(payload.Questions))
	return payload, nil
}

func (s *settingsService) Reset(ctx context.Context, surveyID uuid.UUID) error {
	if err := s.settingsRepo.DeleteBySurveyID(ctx, nil, surveyID); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	s.log.Info("settings reset", "survey_id", surveyID)
	return nil
}

// Resolve merges the cascade for one question against the stored document.
func (s *settingsService) Resolve(ctx context.Context, surveyID uuid.UUID, qt types.QuestionType, questionID uuid.UUID, naturalSeq int) (*types.EffectiveSettings, error) {
	payload, err := s.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	eff := report.ResolveSettings(qt, payload.Global, payload.Questions[questionID.String()], naturalSeq)
	for _, d := range eff.Diagnostics {
		s.log.Warn("settings override ignored", "survey_id", surveyID, "question_id", questionID, "detail", d)
	}
	return &eff, nil
}

func defaultSettingsPayload() *types.SettingsPayload {
	return &types.SettingsPayload{
		Global:       report.DefaultGlobalSettings(),
		Questions:    map[string]types.RawSettingsOverride{},
		Demographics: map[string]types.RawSettingsOverride{},
		ExportOpts: types.ExportOptions{
			IncludeDemographics:    true,
			ShowWordCloudData:      true,
			ShowOpenEndedResponses: true,
			OpenEndedResponseLimit: report.PDFResponseCap,
		},
	}
}

func encodeSettingsRecord(surveyID uuid.UUID, payload *types.SettingsPayload) (*types.SurveySettingsRecord, error) {
	global, err := json.Marshal(payload.Global)
	if err != nil {
		return nil, fmt.Errorf("encode global settings: %w", err)
	}
	questions, err := json.Marshal(payload.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode question overrides: %w", err)
	}
	demographics, err := json.Marshal(payload.Demographics)
	if err != nil {
		return nil, fmt.Errorf("encode demographic overrides: %w", err)
	}
	exportOpts, err := json.Marshal(payload.ExportOpts)
	if err != nil {
		return nil, fmt.Errorf("encode export options: %w", err)
	}
	return &types.SurveySettingsRecord{
		SurveyID:      surveyID,
		Global:        datatypes.JSON(global),
		Questions:     datatypes.JSON(questions),
		Demographics:  datatypes.JSON(demographics),
		ExportOptions: datatypes.JSON(exportOpts),
	}, nil
}

func decodeSettingsRecord(record *types.SurveySettingsRecord) (*types.SettingsPayload, error) {
	payload := defaultSettingsPayload()
	if len(record.Global) > 0 {
		if err := json.Unmarshal(record.Global, &payload.Global); err != nil {
			return nil, fmt.Errorf("decode global settings: %w", err)
		}
	}
	if len(record.Questions) > 0 {
		if err := json.Unmarshal(record.Questions, &payload.Questions); err != nil {
			return nil, fmt.Errorf("decode question overrides: %w", err)
		}
	}
	if len(record.Demographics) > 0 {
		if err := json.Unmarshal(record.Demographics, &payload.Demographics); err != nil {
			return nil, fmt.Errorf("decode demographic overrides: %w", err)
		}
	}
	if len(record.ExportOptions) > 0 {
		if err := json.Unmarshal(record.ExportOptions, &payload.ExportOpts); err != nil {
			return nil, fmt.Errorf("decode export options: %w", err)
		}
	}
	if payload.Questions == nil {
		payload.Questions = map[string]types.RawSettingsOverride{}
	}
	if payload.Demographics == nil {
		payload.Demographics = map[string]types.RawSettingsOverride{}
	}
	return payload, nil
}
