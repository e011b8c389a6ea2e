package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/types"
)

type SurveySettingsRepo interface {
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (*types.SurveySettingsRecord, error)
	Upsert(ctx context.Context, tx *gorm.DB, record *types.SurveySettingsRecord) (*types.SurveySettingsRecord, error)
	DeleteBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) error
}

type surveySettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveySettingsRepo(db *gorm.DB, baseLog *logger.Logger) SurveySettingsRepo {
	return &surveySettingsRepo{
		db:  db,
		log: baseLog.With("repo", "SurveySettingsRepo"),
	}
}

// GetBySurveyID returns nil without error when no settings document exists;
// callers fall back to the defaults.
func (r *surveySettingsRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (*types.SurveySettingsRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if surveyID == uuid.Nil {
		return nil, nil
	}
	var record types.SurveySettingsRecord
	err := transaction.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *surveySettingsRepo) Upsert(ctx context.Context, tx *gorm.DB, record *types.SurveySettingsRecord) (*types.SurveySettingsRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if record == nil || record.SurveyID == uuid.Nil {
		return nil, errors.New("survey id required")
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "survey_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"global", "questions", "demographics", "export_options", "updated_at",
			}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *surveySettingsRepo) DeleteBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if surveyID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Delete(&types.SurveySettingsRecord{}).Error
}
