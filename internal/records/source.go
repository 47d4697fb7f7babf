package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mind-engage/corector/internal/grading"
)

// SourceUnavailableError means the raw grid could not be read at all.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Source yields the raw 2-D grid, header row first.
type Source interface {
	Name() string
	Values(ctx context.Context) ([][]string, error)
}

const DefaultRange = "Sheet1!A:G"

// SheetsSource reads a Google Sheets range with an API key.
type SheetsSource struct {
	SpreadsheetID string
	Range         string
	svc           *sheets.Service
}

func NewSheetsSource(ctx context.Context, spreadsheetID, readRange, apiKey string, opts ...option.ClientOption) (*SheetsSource, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id is empty")
	}
	if readRange == "" {
		readRange = DefaultRange
	}
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	return &SheetsSource{SpreadsheetID: spreadsheetID, Range: readRange, svc: svc}, nil
}

func (s *SheetsSource) Name() string { return "sheets" }

func (s *SheetsSource) Values(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.SpreadsheetID, s.Range).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, c := range row {
			if c != nil {
				cells[i] = fmt.Sprint(c)
			}
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// StaticSource serves a fixed grid; used for demos and tests.
type StaticSource struct {
	Grid [][]string
	Err  error
}

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Values(context.Context) ([][]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Grid, nil
}

// Reader normalizes whatever its Source returns.
type Reader struct {
	Source Source
}

func NewReader(src Source) *Reader { return &Reader{Source: src} }

// All returns every data row in sheet order.
func (r *Reader) All(ctx context.Context) ([]ExternalRecord, error) {
	if r == nil || r.Source == nil {
		return nil, &SourceUnavailableError{Source: "none", Err: errors.New("no source configured")}
	}
	grid, err := r.Source.Values(ctx)
	if err != nil {
		return nil, &SourceUnavailableError{Source: r.Source.Name(), Err: err}
	}
	header, rows := Split(grid)
	return Normalize(header, rows), nil
}

// ForStudent returns the rows whose student name matches.
func (r *Reader) ForStudent(ctx context.Context, name string) ([]ExternalRecord, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []ExternalRecord{}
	for _, rec := range all {
		if grading.SameName(rec.StudentName, name) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// LatestFor prefers the newest row for the named student and falls back to
// the newest row overall, which is what the OCR pipeline appended last. It
// returns nil when the sheet has no data rows.
func (r *Reader) LatestFor(ctx context.Context, name string) (*ExternalRecord, error) {
	all, err := r.All(ctx)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		for i := len(all) - 1; i >= 0; i-- {
			if grading.SameName(all[i].StudentName, name) {
				rec := all[i]
				return &rec, nil
			}
		}
	}
	rec := all[len(all)-1]
	return &rec, nil
}
