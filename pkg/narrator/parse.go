package narrator

import (
	"encoding/json"
	"strings"
)

const rawOutputDetailLimit = 500

// parseTurn decodes a model reply into a Turn. Markdown code fences and
// surrounding prose are tolerated; anything that still fails to decode,
// or decodes without narration, is a malformed-output error carrying a
// bounded slice of the raw reply.
func parseTurn(raw string) (*Turn, error) {
	turn, err := decodeTurn(stripFences(raw))
	if err != nil {
		return nil, ErrMalformedOutput(err).
			WithDetail("raw_output", truncate(raw, rawOutputDetailLimit))
	}
	if strings.TrimSpace(turn.Narration) == "" {
		return nil, ErrMalformedOutput(nil).
			WithDetail("reason", "narration is empty").
			WithDetail("raw_output", truncate(raw, rawOutputDetailLimit))
	}
	return turn, nil
}

func decodeTurn(cleaned string) (*Turn, error) {
	var turn Turn
	err := json.Unmarshal([]byte(cleaned), &turn)
	if err == nil {
		return &turn, nil
	}

	// Some models wrap the object in prose; retry on the outermost braces.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		var retry Turn
		if json.Unmarshal([]byte(cleaned[start:end+1]), &retry) == nil {
			return &retry, nil
		}
	}
	return nil, err
}

// stripFences removes a surrounding markdown code fence, including an
// optional language tag on the opening line.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
