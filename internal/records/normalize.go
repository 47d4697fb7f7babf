package records

import (
	"math"
	"strconv"
	"strings"

	"github.com/mind-engage/corector/internal/grading"
)

// ExternalRecord is one row written by the upstream OCR pipeline.
type ExternalRecord struct {
	ID          string               `json:"id"`
	StudentName string               `json:"student_name"`
	ClassName   string               `json:"class_name"`
	Date        string               `json:"date"`
	OCRText     string               `json:"ocr_text"`
	Errors      []grading.ErrorEntry `json:"errors"`
	Score       float64              `json:"score"`
	HasScore    bool                 `json:"has_score"`
	Extra       map[string]string    `json:"extra,omitempty"`
}

const (
	colID      = "id"
	colStudent = "numeElev"
	colClass   = "clasa"
	colDate    = "data"
	colOCR     = "textOcr"
	colErrors  = "greseliJson"
	colScore   = "punctaj"
)

var headerMap = map[string]string{
	"id":           colID,
	"nume elev":    colStudent,
	"clasa":        colClass,
	"data":         colDate,
	"text ocr":     colOCR,
	"greșeli json": colErrors,
	"greseli json": colErrors,
	"punctaj":      colScore,
}

// HeaderKey maps a sheet header to its column key. Unknown headers become a
// lower-case slug with whitespace runs replaced by underscores.
func HeaderKey(h string) string {
	fields := strings.Fields(strings.ToLower(h))
	if k, ok := headerMap[strings.Join(fields, " ")]; ok {
		return k
	}
	return strings.Join(fields, "_")
}

// Normalize converts a header row plus data rows into typed records.
// Per-row problems never fail the batch: bad cells take default values.
func Normalize(header []string, rows [][]string) []ExternalRecord {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = HeaderKey(h)
	}
	out := make([]ExternalRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(keys, row))
	}
	return out
}

func normalizeRow(keys []string, row []string) ExternalRecord {
	rec := ExternalRecord{Errors: []grading.ErrorEntry{}}
	for i, key := range keys {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		switch key {
		case colID:
			rec.ID = strings.TrimSpace(val)
		case colStudent:
			rec.StudentName = strings.TrimSpace(val)
		case colClass:
			rec.ClassName = strings.TrimSpace(val)
		case colDate:
			rec.Date = strings.TrimSpace(val)
		case colOCR:
			rec.OCRText = val
		case colErrors:
			rec.Errors = grading.ParseErrorList(val)
		case colScore:
			rec.Score, rec.HasScore = parseScore(val)
		default:
			if key == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = map[string]string{}
			}
			rec.Extra[key] = val
		}
	}
	return rec
}

// parseScore reads a leading float the way a lenient spreadsheet consumer
// would ("85", "85.5", "85 puncte", "7,5"). Anything else is 0.
func parseScore(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, true
	}
	if f := strings.Fields(s); len(f) > 0 {
		if v, err := strconv.ParseFloat(f[0], 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}

// Split separates a raw grid into header and data rows. Grids with fewer
// than two rows hold no data.
func Split(grid [][]string) ([]string, [][]string) {
	if len(grid) < 2 {
		return nil, nil
	}
	return grid[0], grid[1:]
}
