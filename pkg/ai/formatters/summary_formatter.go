package formatters

import (
	"context"
	"errors"
	"strings"
)

// Role is a position held, as far as the prompt needs it.
type Role struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
}

// SummaryInput is the résumé context a professional summary is written from.
type SummaryInput struct {
	Name   string              `json:"name,omitempty"`
	Title  string              `json:"title,omitempty"`
	Roles  []Role              `json:"roles,omitempty"`
	Skills map[string][]string `json:"skills,omitempty"`
}

// HasContext reports whether there is enough to personalise a summary: a
// role with both position and company, or at least one skill.
func (in SummaryInput) HasContext() bool {
	for _, r := range in.Roles {
		if r.Position != "" && r.Company != "" {
			return true
		}
	}
	for _, skills := range in.Skills {
		if len(skills) > 0 {
			return true
		}
	}
	return false
}

type SummaryFormatter struct {
	chat Chatter
}

func NewSummaryFormatter(chat Chatter) *SummaryFormatter {
	return &SummaryFormatter{chat: chat}
}

const summaryInstructions = `Write a professional résumé summary of 2-4 sentences (150-400 characters) in the first person implied style, without pronouns.
Use only facts present in the context. Return ONLY a single JSON object {"summary": "..."} and NOTHING ELSE.`

func (sf *SummaryFormatter) Format(ctx context.Context, in SummaryInput) (string, error) {
	userCtx := map[string]any{"resume": in, "instructions": summaryInstructions}
	out, err := sf.chat.Chat(ctx, "Write professional summary:\n"+mustMarshal(userCtx))
	if err != nil {
		return "", err
	}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := decodeObject(out, &resp); err != nil {
		// A bare sentence is still usable as a summary.
		plain := strings.TrimSpace(out)
		if plain == "" || strings.ContainsAny(plain, "{}") {
			return "", err
		}
		return plain, nil
	}
	s := strings.TrimSpace(resp.Summary)
	if s == "" {
		return "", errors.New("ai-service returned an empty summary")
	}
	return s, nil
}
