package usecase

import (
	"context"
	"errors"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/render"

	"github.com/rs/zerolog/log"
)

// Processor runs one export and keeps its history record up to date.
// History writes are best-effort: a failing repo never fails the export.
type Processor struct {
	exporter Exporter
	repo     JobsRepo
	now      func() time.Time
}

func NewProcessor(e Exporter, repo JobsRepo) *Processor {
	return &Processor{exporter: e, repo: repo, now: time.Now}
}

func (p *Processor) Process(ctx context.Context, job *domain.ExportJob, s render.Surface) (export.Result, error) {
	logger := log.With().Str("job_id", job.ID.String()).Str("user_id", job.UserID).Logger()
	p.save(ctx, job)

	res, err := p.exporter.Export(ctx, s, job.FileName)
	job.FinishedAt = p.now()
	switch {
	case errors.Is(err, export.ErrExportInProgress):
		job.Status = domain.ExportStatusRejected
		job.Error = err.Error()
	case err != nil:
		job.Status = domain.ExportStatusFailed
		job.Error = err.Error()
	default:
		job.Status = domain.ExportStatusSucceeded
		job.Location = res.Location
		job.Pages = res.Pages
		job.SizeBytes = int64(res.SizeBytes)
	}
	p.save(ctx, job)

	if err != nil {
		logger.Warn().Err(err).Str("status", job.Status).Msg("export job did not succeed")
		return export.Result{}, err
	}
	logger.Info().Int("pages", job.Pages).Str("file", job.FileName).Msg("export job done")
	return res, nil
}

func (p *Processor) save(ctx context.Context, job *domain.ExportJob) {
	if p.repo == nil {
		return
	}
	if err := p.repo.Save(context.WithoutCancel(ctx), job); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("failed to save export job")
	}
}
