package editor

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"resume-builder/internal/metrics"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/ai/formatters"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

// Field keys AI results are matched against.
const SummaryField = "personalInfo.summary"

func AchievementsField(entryID string) string {
	return "workExperience." + entryID + ".achievements"
}

// Assistant drafts text for a field. ai.Client implements it.
type Assistant interface {
	GenerateSummary(ctx context.Context, in formatters.SummaryInput) (string, error)
	GenerateAchievements(ctx context.Context, in formatters.AchievementsInput) ([]string, error)
}

// Notice is a soft message shown next to a field, e.g. when generic text
// was used instead of a personalised draft.
type Notice struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AssistResult reports what happened to one AI request. A stale result was
// discarded because the field changed while the request was in flight.
type AssistResult struct {
	Field   string
	Applied bool
	Stale   bool
	Notice  *Notice
	Err     error
}

const (
	noticeNoContext   = "Add a role with position and company, or a few skills, for a personalised draft. Generic text was inserted instead."
	noticeNoRole      = "Add a position and company for a personalised draft. Generic text was inserted instead."
	noticeUnavailable = "The writing assistant is unavailable right now. Generic text was inserted instead."
)

// Assist wraps an Assistant with a timeout, static fallbacks and output
// sanitising.
type Assist struct {
	gw      Assistant
	timeout time.Duration
	metrics *metrics.Metrics
	policy  *bluemonday.Policy
}

func NewAssist(gw Assistant, timeout time.Duration, m *metrics.Metrics) *Assist {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Assist{gw: gw, timeout: timeout, metrics: m, policy: bluemonday.StrictPolicy()}
}

func (a *Assist) summary(ctx context.Context, in formatters.SummaryInput) (string, *Notice) {
	if !in.HasContext() {
		a.metrics.Assist("summary", "no_context")
		return ai.FallbackSummary(), &Notice{Field: SummaryField, Message: noticeNoContext}
	}
	if a.gw == nil {
		a.metrics.Assist("summary", "disabled")
		return ai.FallbackSummary(), &Notice{Field: SummaryField, Message: noticeUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	s, err := a.gw.GenerateSummary(ctx, in)
	if err == nil {
		s = a.clean(s)
		if s == "" {
			err = errors.New("empty summary after sanitising")
		}
	}
	if err != nil {
		a.failed("summary", err)
		return ai.FallbackSummary(), &Notice{Field: SummaryField, Message: noticeUnavailable}
	}
	a.metrics.Assist("summary", "ok")
	return s, nil
}

func (a *Assist) achievements(ctx context.Context, entryID string, in formatters.AchievementsInput) ([]string, *Notice) {
	field := AchievementsField(entryID)
	if !in.HasContext() {
		a.metrics.Assist("achievements", "no_context")
		return ai.FallbackAchievements(), &Notice{Field: field, Message: noticeNoRole}
	}
	if a.gw == nil {
		a.metrics.Assist("achievements", "disabled")
		return ai.FallbackAchievements(), &Notice{Field: field, Message: noticeUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	items, err := a.gw.GenerateAchievements(ctx, in)
	var out []string
	if err == nil {
		for _, it := range items {
			if c := a.clean(it); c != "" {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			err = errors.New("no achievements after sanitising")
		}
	}
	if err != nil {
		a.failed("achievements", err)
		return ai.FallbackAchievements(), &Notice{Field: field, Message: noticeUnavailable}
	}
	a.metrics.Assist("achievements", "ok")
	return out, nil
}

func (a *Assist) failed(kind string, err error) {
	outcome := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		outcome = "timeout"
	}
	a.metrics.Assist(kind, outcome)
	log.Warn().Err(err).Str("kind", kind).Str("outcome", outcome).Msg("ai assist failed, using fallback text")
}

// clean strips markup from model output. The result is plain text; the
// renderer escapes it again.
func (a *Assist) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(a.policy.Sanitize(s)))
}
