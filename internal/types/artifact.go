package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SurveySettingsRecord persists the settings document for one survey. The
// override maps are stored as jsonb so loosely typed values round-trip
// without drift; the resolver re-coerces on read.
type SurveySettingsRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID      uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:survey_id" json:"survey_id"`
	Global        datatypes.JSON `gorm:"column:global;type:jsonb" json:"global"`
	Questions     datatypes.JSON `gorm:"column:questions;type:jsonb" json:"questions"`
	Demographics  datatypes.JSON `gorm:"column:demographics;type:jsonb" json:"demographics"`
	ExportOptions datatypes.JSON `gorm:"column:export_options;type:jsonb" json:"export_options"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (SurveySettingsRecord) TableName() string {
	return "survey_settings"
}

type ReportStatus string

const (
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// ReportArtifact records one generated document. Failed generations keep a
// row with the error summary and no bucket key.
type ReportArtifact struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID  uuid.UUID    `gorm:"type:uuid;index;not null;column:survey_id" json:"survey_id"`
	Filename  string       `gorm:"not null;column:filename" json:"filename"`
	BucketKey string       `gorm:"column:bucket_key" json:"bucket_key"`
	URL       string       `gorm:"column:url" json:"url"`
	PageCount int          `gorm:"column:page_count" json:"page_count"`
	Status    ReportStatus `gorm:"not null;column:status" json:"status"`
	Error     string       `gorm:"column:error" json:"error,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:now()" json:"created_at"`
}

func (ReportArtifact) TableName() string {
	return "report_artifact"
}
