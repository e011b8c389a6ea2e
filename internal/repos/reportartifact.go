package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/types"
)

type ReportArtifactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, artifact *types.ReportArtifact) (*types.ReportArtifact, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReportArtifact, error)
	ListBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID, limit int) ([]*types.ReportArtifact, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type reportArtifactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportArtifactRepo(db *gorm.DB, baseLog *logger.Logger) ReportArtifactRepo {
	return &reportArtifactRepo{
		db:  db,
		log: baseLog.With("repo", "ReportArtifactRepo"),
	}
}

func (r *reportArtifactRepo) Create(ctx context.Context, tx *gorm.DB, artifact *types.ReportArtifact) (*types.ReportArtifact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(artifact).Error; err != nil {
		return nil, err
	}
	return artifact, nil
}

func (r *reportArtifactRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReportArtifact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var artifact types.ReportArtifact
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&artifact).Error
	if err != nil {
		return nil, err
	}
	if artifact.ID == uuid.Nil {
		return nil, nil
	}
	return &artifact, nil
}

func (r *reportArtifactRepo) ListBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID, limit int) ([]*types.ReportArtifact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ReportArtifact
	if surveyID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 20
	}
	err := transaction.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportArtifactRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ReportArtifact{}).Error
}
