package grading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Correctness is true, false or partial. The model sends booleans or strings.
type Correctness string

const (
	Correct   Correctness = "true"
	Incorrect Correctness = "false"
	Partial   Correctness = "partial"
)

func (c Correctness) MarshalJSON() ([]byte, error) {
	switch c {
	case Correct:
		return []byte("true"), nil
	case Partial:
		return []byte(`"partial"`), nil
	default:
		return []byte("false"), nil
	}
}

func (c *Correctness) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = parseCorrectness(v)
	return nil
}

func parseCorrectness(v any) Correctness {
	switch t := v.(type) {
	case bool:
		if t {
			return Correct
		}
		return Incorrect
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "corect", "da", "yes":
			return Correct
		case "partial", "parțial", "partial corect":
			return Partial
		}
	}
	return Incorrect
}

// ComparisonItem is the model's verdict for one rubric item.
type ComparisonItem struct {
	ItemNumber     int         `json:"item_number"`
	StudentAnswer  string      `json:"student_answer"`
	ExpectedAnswer string      `json:"expected_answer"`
	PointsEarned   float64     `json:"points_earned"`
	PointsPossible float64     `json:"points_possible"`
	Correctness    Correctness `json:"correctness"`
	Feedback       string      `json:"feedback"`
}

func (it *ComparisonItem) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var corr any
	for _, k := range []string{"correctness", "corect", "correct"} {
		if v, ok := raw[k]; ok {
			_ = json.Unmarshal(v, &corr)
			break
		}
	}
	*it = ComparisonItem{
		ItemNumber:     int(firstNumber(raw, "item_number", "itemNumber", "itemNr")),
		StudentAnswer:  firstString(raw, "student_answer", "studentAnswer", "raspunsElev"),
		ExpectedAnswer: firstString(raw, "expected_answer", "expectedAnswer", "raspunsCorect"),
		PointsEarned:   firstNumber(raw, "points_earned", "pointsEarned", "puncteObtinute"),
		PointsPossible: firstNumber(raw, "points_possible", "pointsPossible", "puncteMaxime"),
		Correctness:    parseCorrectness(corr),
		Feedback:       firstString(raw, "feedback"),
	}
	return nil
}

// ComparisonResult holds per-item verdicts plus totals derived from them.
type ComparisonResult struct {
	Items         []ComparisonItem `json:"items"`
	TotalEarned   float64          `json:"total_earned"`
	TotalPossible float64          `json:"total_possible"`
	Percentage    float64          `json:"percentage"`
	// Ungraded marks a model answer that could not be parsed.
	Ungraded bool `json:"ungraded,omitempty"`
}

// comparisonWire is what the model returns at the top level; its totals are
// read only so callers can log disagreement.
type comparisonWire struct {
	Items         []ComparisonItem
	TotalEarned   float64
	TotalPossible float64
}

func (w *comparisonWire) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["items"]; ok {
		if err := json.Unmarshal(v, &w.Items); err != nil {
			return err
		}
	}
	w.TotalEarned = firstNumber(raw, "total_earned", "totalEarned", "punctajTotal")
	w.TotalPossible = firstNumber(raw, "total_possible", "totalPossible", "punctajMaxim")
	return nil
}

// DecodeComparison parses a model JSON object. The returned totals are
// always recomputed; claimedEarned/claimedPossible are what the model said.
func DecodeComparison(b []byte) (res ComparisonResult, claimedEarned, claimedPossible float64, err error) {
	var w comparisonWire
	if err = json.Unmarshal(b, &w); err != nil {
		return ComparisonResult{}, 0, 0, err
	}
	res = ComparisonResult{Items: w.Items}
	if res.Items == nil {
		res.Items = []ComparisonItem{}
	}
	res.Recompute()
	return res, w.TotalEarned, w.TotalPossible, nil
}

// Recompute derives totals and percentage from the items.
func (r *ComparisonResult) Recompute() {
	earned, possible := 0.0, 0.0
	for _, it := range r.Items {
		earned += it.PointsEarned
		possible += it.PointsPossible
	}
	r.TotalEarned = earned
	r.TotalPossible = possible
	r.Percentage = Percentage(earned, possible)
}

// FillFromRubric completes items the model left without an expected answer
// or point value, matching by item number. Earned points are not touched.
func (r *ComparisonResult) FillFromRubric(rb Rubric) {
	for i := range r.Items {
		it := &r.Items[i]
		n := it.ItemNumber
		if n < 1 || n > len(rb.Items) {
			continue
		}
		src := rb.Items[n-1]
		if strings.TrimSpace(it.ExpectedAnswer) == "" {
			it.ExpectedAnswer = src.ExpectedAnswer
		}
		if it.PointsPossible <= 0 {
			it.PointsPossible = src.PointValue
		}
	}
	r.Recompute()
}

// Mistakes turns wrong or partial answers into content errors.
func (r ComparisonResult) Mistakes() []ErrorEntry {
	out := []ErrorEntry{}
	for _, it := range r.Items {
		if it.Correctness == Correct {
			continue
		}
		out = append(out, ErrorEntry{
			Category:    CategoryContent,
			WrongText:   it.StudentAnswer,
			CorrectText: it.ExpectedAnswer,
			Explanation: it.Feedback,
		})
	}
	return out
}

// Percentage rounds half up to a whole percent; 0 when nothing is possible.
func Percentage(earned, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	return RoundHalfUp(earned / possible * 100)
}

func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func firstNumber(raw map[string]json.RawMessage, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return f
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f
			}
		}
	}
	return 0
}
