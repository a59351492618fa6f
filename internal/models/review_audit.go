package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewAudit records that a review was requested. Review content is never stored.
type ReviewAudit struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileName          string    `gorm:"type:text" json:"file_name"`
	FileType          string    `gorm:"type:text" json:"file_type"`
	FileSize          int64     `json:"file_size"`
	HasJobDescription bool      `json:"has_job_description"`
	StatusCode        int       `json:"status_code"`
	DurationMs        int64     `json:"duration_ms"`
	ErrorMessage      *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (ReviewAudit) TableName() string {
	return "review_audits"
}
