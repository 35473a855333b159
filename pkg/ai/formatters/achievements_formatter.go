package formatters

import (
	"context"
	"errors"
	"strings"
)

// AchievementsInput describes the role achievements are drafted for.
type AchievementsInput struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Period      string `json:"period,omitempty"`
	Description string `json:"description,omitempty"`
}

func (in AchievementsInput) HasContext() bool {
	return in.Position != "" && in.Company != ""
}

type AchievementsFormatter struct {
	chat Chatter
}

func NewAchievementsFormatter(chat Chatter) *AchievementsFormatter {
	return &AchievementsFormatter{chat: chat}
}

const achievementsInstructions = `Draft 3 to 5 résumé bullet points for this role. Each bullet starts with an action verb, is 40-210 characters and quantifies impact where plausible.
Return ONLY a single JSON object {"achievements": ["...", "..."]} and NOTHING ELSE.`

const maxAchievements = 5

func (af *AchievementsFormatter) Format(ctx context.Context, in AchievementsInput) ([]string, error) {
	userCtx := map[string]any{"role": in, "instructions": achievementsInstructions}
	out, err := af.chat.Chat(ctx, "Draft work achievements:\n"+mustMarshal(userCtx))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Achievements []string `json:"achievements"`
	}
	if err := decodeObject(out, &resp); err != nil {
		return nil, err
	}
	items := make([]string, 0, len(resp.Achievements))
	for _, a := range resp.Achievements {
		a = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(a), "-•*"))
		if a != "" {
			items = append(items, a)
		}
		if len(items) == maxAchievements {
			break
		}
	}
	if len(items) == 0 {
		return nil, errors.New("ai-service returned no achievements")
	}
	return items, nil
}
