package formatters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Chatter sends one free-text prompt to the ai-service and returns the
// agent's raw output.
type Chatter interface {
	Chat(ctx context.Context, input string) (string, error)
}

// decodeObject parses out as a JSON object. Models often wrap the object in
// prose or markdown fences, so the outermost {...} is tried as well.
func decodeObject(out string, v any) error {
	err := json.Unmarshal([]byte(out), v)
	if err == nil {
		return nil
	}
	start := strings.IndexByte(out, '{')
	end := strings.LastIndexByte(out, '}')
	if start >= 0 && end > start {
		if err2 := json.Unmarshal([]byte(out[start:end+1]), v); err2 == nil {
			return nil
		}
	}
	return fmt.Errorf("ai-service returned non-json content: %w", err)
}

func mustMarshal(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
