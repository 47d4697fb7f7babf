package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports malformed rubric or workflow input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

type Item struct {
	ExpectedAnswer string  `json:"expected_answer"`
	PointValue     float64 `json:"point_value"`
}

// Rubric is an answer key ("barem"): ordered expected answers with points.
type Rubric struct {
	ID        string `json:"id,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Items     []Item `json:"items"`
	CreatedAt int64  `json:"created_at,omitempty"` // unix millis
}

// NewRubric validates items and returns a rubric holding a copy of them.
func NewRubric(name string, items []Item) (Rubric, error) {
	r := Rubric{Name: strings.TrimSpace(name), Items: append([]Item(nil), items...)}
	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

func (r Rubric) Validate() error {
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item required"}
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ExpectedAnswer) == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].expected_answer", i), Reason: "empty"}
		}
		if it.PointValue < 0 || math.IsNaN(it.PointValue) {
			return &ValidationError{Field: fmt.Sprintf("items[%d].point_value", i), Reason: "must be >= 0"}
		}
	}
	return nil
}

// TotalPoints is recomputed on every call.
func (r Rubric) TotalPoints() float64 {
	total := 0.0
	for _, it := range r.Items {
		total += it.PointValue
	}
	return total
}

func (r *Rubric) AddItem(it Item) {
	r.Items = append(r.Items, it)
}

// RemoveItem refuses to leave the rubric empty.
func (r *Rubric) RemoveItem(index int) bool {
	if len(r.Items) <= 1 || index < 0 || index >= len(r.Items) {
		return false
	}
	r.Items = append(r.Items[:index:index], r.Items[index+1:]...)
	return true
}

// UpdateItem sets a single field from raw form input. Unparseable or
// negative points become 0.
func (r *Rubric) UpdateItem(index int, field, value string) error {
	if index < 0 || index >= len(r.Items) {
		return &ValidationError{Field: "index", Reason: "out of range"}
	}
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "answer", "expected_answer", "expectedanswer":
		r.Items[index].ExpectedAnswer = value
	case "points", "point_value", "pointvalue":
		r.Items[index].PointValue = parsePoints(value)
	default:
		return &ValidationError{Field: field, Reason: "unknown field"}
	}
	return nil
}

func parsePoints(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (r Rubric) MarshalJSON() ([]byte, error) {
	type plain Rubric
	return json.Marshal(struct {
		plain
		TotalPoints float64 `json:"total_points"`
	}{plain(r), r.TotalPoints()})
}

// Stamp fills creation metadata before the rubric is stored.
func (r *Rubric) Stamp(ownerID string, now time.Time) {
	r.OwnerID = ownerID
	if r.CreatedAt == 0 {
		r.CreatedAt = now.UnixMilli()
	}
}
