package correction

import (
	"strings"
	"time"

	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/records"
)

type Mode string

const (
	ModeRubric   Mode = "rubric"
	ModeFreeform Mode = "freeform"
)

// ParseMode also accepts the classroom names "barem" and "caiet".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rubric", "barem":
		return ModeRubric, nil
	case "freeform", "caiet":
		return ModeFreeform, nil
	}
	return "", &grading.ValidationError{Field: "mode", Reason: "must be rubric or freeform"}
}

type Stage string

const (
	StageIngest     Stage = "ingest"
	StageModeSelect Stage = "mode_select"
	StageAnalyze    Stage = "analyze"
	StageResults    Stage = "results"
)

type Outcome string

const (
	OutcomeGraded            Outcome = "graded"
	OutcomeInsufficientInput Outcome = "insufficient_input"
)

// OCRPlaceholder is graded instead of OCR text when the sheet has none.
const OCRPlaceholder = "Nu s-a putut extrage textul OCR. Verificați Google Sheets."

// UnknownStudent is used when neither the teacher nor the sheet named one.
const UnknownStudent = "Necunoscut"

// Session is one grading attempt for one student's work.
type Session struct {
	ID           string                    `json:"id"`
	OwnerID      string                    `json:"owner_id"`
	StudentName  string                    `json:"student_name"`
	ClassName    string                    `json:"class_name"`
	Mode         Mode                      `json:"mode,omitempty"`
	Stage        Stage                     `json:"stage"`
	DocumentRef  string                    `json:"document_ref,omitempty"`
	SourceRecord *records.ExternalRecord   `json:"source_record,omitempty"`
	OCRText      string                    `json:"ocr_text"`
	Rubric       *grading.Rubric           `json:"rubric,omitempty"`
	Errors       []grading.ErrorEntry      `json:"errors"`
	Comparison   *grading.ComparisonResult `json:"comparison,omitempty"`
	Outcome      Outcome                   `json:"outcome,omitempty"`
	Warnings     []string                  `json:"warnings,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	CompletedAt  time.Time                 `json:"completed_at,omitzero"`
}

// Score is the points earned, defined for graded rubric sessions and for
// freeform sessions whose sheet row carried a score.
func (s Session) Score() (float64, bool) {
	if s.Outcome != OutcomeGraded {
		return 0, false
	}
	switch s.Mode {
	case ModeRubric:
		if s.Comparison != nil && !s.Comparison.Ungraded {
			return s.Comparison.TotalEarned, true
		}
	case ModeFreeform:
		if s.SourceRecord != nil && s.SourceRecord.HasScore {
			return s.SourceRecord.Score, true
		}
	}
	return 0, false
}

// Mistakes lists detected errors; wrong rubric answers count as content errors.
func (s Session) Mistakes() []grading.ErrorEntry {
	if s.Mode == ModeRubric {
		if s.Comparison == nil {
			return []grading.ErrorEntry{}
		}
		return s.Comparison.Mistakes()
	}
	return append([]grading.ErrorEntry{}, s.Errors...)
}

// Date is the sheet's date for the work, else the day the session started.
func (s Session) Date() string {
	if s.SourceRecord != nil && strings.TrimSpace(s.SourceRecord.Date) != "" {
		return s.SourceRecord.Date
	}
	return s.CreatedAt.Format("2006-01-02")
}

func (s Session) clone() Session {
	c := s
	if s.SourceRecord != nil {
		rec := *s.SourceRecord
		rec.Errors = append([]grading.ErrorEntry{}, s.SourceRecord.Errors...)
		if s.SourceRecord.Extra != nil {
			rec.Extra = make(map[string]string, len(s.SourceRecord.Extra))
			for k, v := range s.SourceRecord.Extra {
				rec.Extra[k] = v
			}
		}
		c.SourceRecord = &rec
	}
	if s.Rubric != nil {
		rb := *s.Rubric
		rb.Items = append([]grading.Item{}, s.Rubric.Items...)
		c.Rubric = &rb
	}
	if s.Comparison != nil {
		cmp := *s.Comparison
		cmp.Items = append([]grading.ComparisonItem{}, s.Comparison.Items...)
		c.Comparison = &cmp
	}
	if s.Errors != nil {
		c.Errors = append([]grading.ErrorEntry{}, s.Errors...)
	}
	if s.Warnings != nil {
		c.Warnings = append([]string{}, s.Warnings...)
	}
	return c
}

// Summary is the flat Results export consumed by renderers.
type Summary struct {
	StudentName string               `json:"student_name"`
	ClassName   string               `json:"class_name"`
	Date        string               `json:"date"`
	Score       *float64             `json:"score,omitempty"`
	MaxScore    *float64             `json:"max_score,omitempty"`
	Percentage  *float64             `json:"percentage,omitempty"`
	Grade       string               `json:"grade,omitempty"`
	Outcome     Outcome              `json:"outcome"`
	Errors      []grading.ErrorEntry `json:"errors"`
	OCRText     string               `json:"ocr_text"`
}

func (s Session) Summary() Summary {
	out := Summary{
		StudentName: s.StudentName,
		ClassName:   s.ClassName,
		Date:        s.Date(),
		Outcome:     s.Outcome,
		Errors:      s.Mistakes(),
		OCRText:     s.OCRText,
	}
	if score, ok := s.Score(); ok {
		out.Score = &score
	}
	if s.Mode == ModeRubric && s.Comparison != nil && !s.Comparison.Ungraded && s.Outcome == OutcomeGraded {
		maxScore, pct := s.Comparison.TotalPossible, s.Comparison.Percentage
		out.MaxScore = &maxScore
		out.Percentage = &pct
		out.Grade = grading.Band(pct)
	}
	return out
}
