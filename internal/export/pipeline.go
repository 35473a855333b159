package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"resume-builder/internal/metrics"
	"resume-builder/internal/render"
	"resume-builder/pkg/infrastructure"
	"resume-builder/pkg/locks"

	"github.com/rs/zerolog/log"
)

// Rasterizer captures one element of an HTML page as a PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, html, elementID string) (infrastructure.Raster, error)
}

// Result is a finished export. Location is empty when no sink is configured.
type Result struct {
	FileName  string
	Location  string
	Pages     int
	PDF       []byte
	SizeBytes int
}

// Pipeline turns a rendered surface into a paginated A4 PDF. At most one
// export per surface key runs at a time.
type Pipeline struct {
	raster   Rasterizer
	sink     Sink
	metrics  *metrics.Metrics
	locks    locks.KeyLocks
	attempts int
	backoff  time.Duration
}

type Option func(*Pipeline)

func WithSink(s Sink) Option { return func(p *Pipeline) { p.sink = s } }

func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

// WithRetry sets how many rasterization attempts are made and the first
// backoff delay, which doubles after each failure.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(p *Pipeline) {
		p.attempts = attempts
		p.backoff = backoff
	}
}

func NewPipeline(r Rasterizer, opts ...Option) *Pipeline {
	p := &Pipeline{raster: r, attempts: 3, backoff: time.Second}
	for _, o := range opts {
		o(p)
	}
	if p.attempts < 1 {
		p.attempts = 1
	}
	return p
}

// InProgress reports whether key is being exported.
func (p *Pipeline) InProgress(key string) bool {
	return p.locks.Held(key)
}

// Export rasterizes the surface, paginates it and composes the PDF. A
// concurrent export of the same surface key fails fast with
// ErrExportInProgress.
func (p *Pipeline) Export(ctx context.Context, s render.Surface, fileName string) (Result, error) {
	key := s.Key
	if key == "" {
		key = render.SurfaceID
	}
	logger := log.With().Str("component", "export").Str("surface", key).Str("file", fileName).Logger()

	release, ok := p.locks.TryAcquire(key)
	if !ok {
		p.metrics.Export("rejected", 0, 0)
		logger.Warn().Msg("export rejected, another export is running")
		return Result{}, ErrExportInProgress
	}
	defer release()

	start := time.Now()
	res, err := p.run(ctx, key, s, fileName)
	took := time.Since(start)
	if err != nil {
		p.metrics.Export("failed", took, 0)
		logger.Error().Err(err).Dur("took", took).Msg("export failed")
		return Result{}, err
	}
	p.metrics.Export("ok", took, res.Pages)
	logger.Info().Int("pages", res.Pages).Int("bytes", res.SizeBytes).Str("location", res.Location).Dur("took", took).Msg("export finished")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, key string, s render.Surface, fileName string) (Result, error) {
	raster, err := p.rasterize(ctx, s.HTML)
	if err != nil {
		return Result{}, &ExportError{Stage: StageRasterize, Err: err}
	}

	heightMM := ImageHeightMM(raster)
	pdf, pages, err := Compose(raster.PNG, heightMM, Paginate(heightMM, PageHeightMM))
	if err != nil {
		return Result{}, &ExportError{Stage: StageCompose, Err: err}
	}

	res := Result{FileName: fileName, Pages: pages, PDF: pdf, SizeBytes: len(pdf)}
	if p.sink != nil {
		name, err := objectName(key, fileName)
		if err != nil {
			return Result{}, &ExportError{Stage: StageStore, Err: err}
		}
		loc, err := p.sink.Store(ctx, name, pdf)
		if err != nil {
			return Result{}, &ExportError{Stage: StageStore, Err: err}
		}
		res.Location = loc
	}
	return res, nil
}

// objectName places fileName in a directory named after the surface key.
// Both must be plain path segments.
func objectName(key, fileName string) (string, error) {
	for _, seg := range []string{key, fileName} {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return "", fmt.Errorf("%q: %w", seg, ErrInvalidName)
		}
	}
	return path.Join(key, fileName), nil
}

// rasterize retries transient capture failures with exponential backoff. A
// missing surface element is not retried.
func (p *Pipeline) rasterize(ctx context.Context, html string) (infrastructure.Raster, error) {
	var lastErr error
	for i := 0; i < p.attempts; i++ {
		r, err := p.raster.Rasterize(ctx, html, render.SurfaceID)
		if err == nil {
			return r, nil
		}
		if errors.Is(err, infrastructure.ErrElementNotFound) {
			return infrastructure.Raster{}, fmt.Errorf("%w: %v", ErrSurfaceNotFound, err)
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i+1).Msg("rasterize failed")
		if i < p.attempts-1 {
			select {
			case <-time.After(time.Duration(1<<i) * p.backoff):
			case <-ctx.Done():
				return infrastructure.Raster{}, ctx.Err()
			}
		}
	}
	return infrastructure.Raster{}, lastErr
}
