package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ScreeningRun is the optional history record of one resolved submission.
type ScreeningRun struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID       string    `gorm:"type:text;index" json:"session_id"`
	JobDescription  string    `gorm:"type:text" json:"job_description"`
	ResumeCount     int       `gorm:"not null" json:"resume_count"`
	RelevantCount   int       `gorm:"not null" json:"relevant_count"`
	IrrelevantCount int       `gorm:"not null" json:"irrelevant_count"`
	MatchRate       float64   `gorm:"type:decimal(4,1)" json:"match_rate"`
	Status          RunStatus `gorm:"not null" json:"status"`
	ErrorMessage    *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ScreeningRun) TableName() string {
	return "screening_runs"
}
