package llm

import (
	"encoding/json"
	"strings"

	"github.com/mind-engage/corector/internal/grading"
)

// Exercise is one remedial exercise suggested by the model.
type Exercise struct {
	Title       string           `json:"title"`
	Requirement string           `json:"requirement"`
	Category    grading.Category `json:"category"`
	Difficulty  string           `json:"difficulty"`
}

func (e *Exercise) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := raw[k].(string); ok {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	*e = Exercise{
		Title:       str("title", "titlu"),
		Requirement: str("requirement", "cerinta", "cerință"),
		Category:    grading.ParseCategory(str("category", "tip")),
		Difficulty:  parseDifficulty(str("difficulty", "dificultate")),
	}
	return nil
}

func parseDifficulty(s string) string {
	switch grading.Normalize(s) {
	case "usor", "easy":
		return "ușor"
	case "avansat", "hard", "advanced":
		return "avansat"
	default:
		return "mediu"
	}
}
