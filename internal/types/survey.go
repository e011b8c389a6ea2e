package types

import (
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionTypeSingleSelect QuestionType = "single_select"
	QuestionTypeMultiSelect  QuestionType = "multi_select"
	QuestionTypeImageChoice  QuestionType = "image_choice"
	QuestionTypeDropdown     QuestionType = "dropdown"
	QuestionTypeSlider       QuestionType = "slider"
	QuestionTypeStarRating   QuestionType = "star_rating"
	QuestionTypeNumeric      QuestionType = "numeric"
	QuestionTypeNPS          QuestionType = "nps"
	QuestionTypeRanking      QuestionType = "ranking"
	QuestionTypeGrid         QuestionType = "grid"
	QuestionTypeStarGrid     QuestionType = "star_grid"
	QuestionTypeOpenEnded    QuestionType = "open_ended"
)

// IsOrdinal reports whether the type carries a declared option order that
// should survive sorting (scales and sliders, not free-form choice lists).
func (qt QuestionType) IsOrdinal() bool {
	switch qt {
	case QuestionTypeSlider, QuestionTypeStarRating, QuestionTypeNPS, QuestionTypeGrid, QuestionTypeStarGrid:
		return true
	default:
		return false
	}
}

type QuestionOption struct {
	Label    string `json:"label"`
	ImageURL string `json:"image_url,omitempty"`
}

type Question struct {
	ID             uuid.UUID        `json:"id"`
	Type           QuestionType     `json:"question_type"`
	Text           string           `json:"question_text"`
	SequenceNumber int              `json:"sequence_number"`
	Options        []QuestionOption `json:"options,omitempty"`
	ScaleMin       int              `json:"scale_min,omitempty"`
	ScaleMax       int              `json:"scale_max,omitempty"`
}

type Survey struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	RespondentCount int        `json:"respondent_count"`
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DemographicCategory is one demographic breakdown (age, region, ...) that
// can be rendered ahead of the question sections.
type DemographicCategory struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
