package grading

import (
	"encoding/json"
	"strings"
)

type Category string

const (
	CategorySpelling Category = "spelling"
	CategoryGrammar  Category = "grammar"
	CategoryContent  Category = "content"
)

var Categories = []Category{CategorySpelling, CategoryGrammar, CategoryContent}

// ParseCategory accepts the English names and the Romanian labels used by
// the OCR pipeline and the model ("ortografie", "gramatica", "continut").
// Anything else is filed under content.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spelling", "ortografie":
		return CategorySpelling
	case "grammar", "gramatica", "gramatică":
		return CategoryGrammar
	default:
		return CategoryContent
	}
}

// ErrorEntry is one detected mistake.
type ErrorEntry struct {
	Category    Category `json:"category"`
	WrongText   string   `json:"wrong_text"`
	CorrectText string   `json:"correct_text"`
	Explanation string   `json:"explanation,omitempty"`
}

// UnmarshalJSON takes both our own keys and the Romanian ones
// (tip/textGresit/textCorect/explicatie).
func (e *ErrorEntry) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = ErrorEntry{
		Category:    ParseCategory(firstString(raw, "category", "tip", "type")),
		WrongText:   firstString(raw, "wrong_text", "wrongText", "textGresit"),
		CorrectText: firstString(raw, "correct_text", "correctText", "textCorect"),
		Explanation: firstString(raw, "explanation", "explicatie"),
	}
	return nil
}

// ParseErrorList decodes a JSON array of entries. Invalid input yields an
// empty, non-nil slice.
func ParseErrorList(s string) []ErrorEntry {
	s = strings.TrimSpace(s)
	if s == "" {
		return []ErrorEntry{}
	}
	var out []ErrorEntry
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []ErrorEntry{}
	}
	return out
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		// numbers and bools end up as their literal text
		if t := strings.TrimSpace(string(v)); t != "" && t != "null" {
			return t
		}
	}
	return ""
}
