package usecase

import (
	"context"
	"errors"

	"resume-builder/internal/domain"
	"resume-builder/internal/editor"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
)

// ErrStaleAssist means an AI draft arrived after the target field had
// already been edited and was discarded.
var ErrStaleAssist = errors.New("assist result discarded, field changed meanwhile")

// Exporter is implemented by export.Pipeline.
type Exporter interface {
	Export(ctx context.Context, s render.Surface, fileName string) (export.Result, error)
}

// JobsRepo records export history. repository.ExportJobsRepo implements it.
type JobsRepo interface {
	Save(ctx context.Context, j *domain.ExportJob) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ExportJob, error)
}

// ResumeView is a document together with its active template.
type ResumeView struct {
	Document model.Document `json:"document"`
	Template model.Template `json:"template"`
}

// AssistOutcome is the field after an AI request, plus any notice to show.
type AssistOutcome struct {
	Value   any            `json:"value"`
	Notice  *editor.Notice `json:"notice,omitempty"`
	Applied bool           `json:"applied"`
}

// EntryChange is one field-level edit. Current toggles the ongoing flag of
// dated entries; the other fields are set by their JSON name.
type EntryChange struct {
	Fields  map[string]string
	Current *bool
}
