package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExportStatusRunning   = "running"
	ExportStatusSucceeded = "succeeded"
	ExportStatusFailed    = "failed"
	ExportStatusRejected  = "rejected"
)

// ExportJob records one export attempt for the history table.
type ExportJob struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	Template   string    `json:"template"`
	Status     string    `json:"status"`
	FileName   string    `json:"file_name"`
	Location   string    `json:"location,omitempty"`
	Pages      int       `json:"pages"`
	SizeBytes  int64     `json:"size_bytes"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewExportJob(userID, template, fileName string, now time.Time) *ExportJob {
	return &ExportJob{
		ID:        uuid.New(),
		UserID:    userID,
		Template:  template,
		Status:    ExportStatusRunning,
		FileName:  fileName,
		CreatedAt: now,
	}
}
