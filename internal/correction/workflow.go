package correction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/corector/internal/auth"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/records"
	"github.com/mind-engage/corector/internal/storage"
)

// RecordSource finds the sheet row written for a student's work.
type RecordSource interface {
	LatestFor(ctx context.Context, studentName string) (*records.ExternalRecord, error)
}

// Analyzer is the language model side of grading.
type Analyzer interface {
	AnalyzeFreeform(ctx context.Context, text string) ([]grading.ErrorEntry, error)
	CompareWithRubric(ctx context.Context, text string, rb grading.Rubric) (grading.ComparisonResult, error)
}

type Deps struct {
	Records   RecordSource
	Analyzer  Analyzer
	Store     Store
	Documents storage.DocumentStore
	Logger    *slog.Logger
	Now       func() time.Time
}

type Option func(*Workflow)

// WithRequireOCRText ends sessions without OCR text as insufficient_input
// instead of grading a placeholder.
func WithRequireOCRText(on bool) Option {
	return func(w *Workflow) { w.requireOCR = on }
}

// Workflow drives one session through Ingest, ModeSelect, Analyze and
// Results. It is not safe for concurrent use.
type Workflow struct {
	auth       auth.Context
	deps       Deps
	requireOCR bool
	log        *slog.Logger

	session  Session
	rubricID string // id reserved for the rubric saved by this session
}

func New(ac auth.Context, deps Deps, opts ...Option) *Workflow {
	if deps.Store == nil {
		deps.Store = NewInMemoryStore()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	w := &Workflow{auth: ac, deps: deps}
	for _, o := range opts {
		o(w)
	}
	w.Reset()
	return w
}

// Reset discards the session and starts over at Ingest.
func (w *Workflow) Reset() {
	w.session = Session{
		ID:        uuid.NewString(),
		OwnerID:   w.auth.OwnerID(),
		Stage:     StageIngest,
		Errors:    []grading.ErrorEntry{},
		CreatedAt: w.deps.Now(),
	}
	w.rubricID = ""
	w.log = w.deps.Logger.With("session", w.session.ID, "owner", w.session.OwnerID)
}

func (w *Workflow) ID() string         { return w.session.ID }
func (w *Workflow) Stage() Stage       { return w.session.Stage }
func (w *Workflow) Auth() auth.Context { return w.auth }

// Session returns a copy of the current session.
func (w *Workflow) Session() Session { return w.session.clone() }

// Summary is only available once the session reached Results.
func (w *Workflow) Summary() (Summary, error) {
	if w.session.Stage != StageResults {
		return Summary{}, wrongStage("summary", w.session.Stage)
	}
	return w.session.Summary(), nil
}

type Document struct {
	Name string
	Body io.Reader
}

type IngestInput struct {
	StudentName string
	ClassName   string
	Document    *Document
}

type IngestResult struct {
	DocumentRef string
	UploadErr   error
}

// Ingest records the student fields and uploads the document if one is
// given. Upload problems are warnings; Ingest always moves to ModeSelect.
func (w *Workflow) Ingest(ctx context.Context, in IngestInput) (IngestResult, error) {
	if w.session.Stage != StageIngest {
		return IngestResult{}, wrongStage("ingest", w.session.Stage)
	}
	w.session.StudentName = strings.TrimSpace(in.StudentName)
	w.session.ClassName = strings.TrimSpace(in.ClassName)

	var res IngestResult
	if in.Document != nil {
		res.DocumentRef, res.UploadErr = w.upload(ctx, *in.Document)
		if res.UploadErr != nil {
			w.log.Warn("document upload failed", "err", res.UploadErr)
			w.session.Warnings = append(w.session.Warnings, "upload: "+res.UploadErr.Error())
		}
		w.session.DocumentRef = res.DocumentRef
	}
	w.session.Stage = StageModeSelect
	return res, nil
}

func (w *Workflow) upload(ctx context.Context, doc Document) (string, error) {
	if w.deps.Documents == nil {
		return "", errors.New("no document store configured")
	}
	if doc.Body == nil {
		return "", errors.New("empty document")
	}
	ctx = storage.WithAccessToken(ctx, w.auth.GoogleAccessToken)
	return w.deps.Documents.Put(ctx, doc.Name, doc.Body)
}

// SelectMode fixes the grading mode for the rest of the session.
func (w *Workflow) SelectMode(m Mode) error {
	if w.session.Stage != StageModeSelect {
		return wrongStage("select mode", w.session.Stage)
	}
	if m != ModeRubric && m != ModeFreeform {
		return &grading.ValidationError{Field: "mode", Reason: "must be rubric or freeform"}
	}
	w.session.Mode = m
	w.session.Stage = StageAnalyze
	return nil
}

// Analyze grades the work and persists the session. On a model or store
// failure it returns *RetryableError and the workflow stays in Analyze.
func (w *Workflow) Analyze(ctx context.Context, rb *grading.Rubric) error {
	if w.session.Stage != StageAnalyze {
		return wrongStage("analyze", w.session.Stage)
	}
	if w.session.Mode == ModeRubric {
		if rb == nil {
			return &grading.ValidationError{Field: "rubric", Reason: "required in rubric mode"}
		}
		if err := rb.Validate(); err != nil {
			return err
		}
	}

	next := w.session.clone()
	rec, warn := w.fetchRecord(ctx)
	if warn != "" {
		next.Warnings = append(next.Warnings, warn)
	}
	if rec != nil {
		next.SourceRecord = rec
		if next.StudentName == "" {
			next.StudentName = rec.StudentName
		}
		if next.ClassName == "" {
			next.ClassName = rec.ClassName
		}
	}
	if next.StudentName == "" {
		next.StudentName = UnknownStudent
	}
	text := ""
	if rec != nil {
		text = strings.TrimSpace(rec.OCRText)
	}

	var err error
	if next.Mode == ModeRubric {
		err = w.analyzeRubric(ctx, &next, text, *rb)
	} else {
		err = w.analyzeFreeform(ctx, &next, rec, text)
	}
	if err != nil {
		return err
	}

	next.Stage = StageResults
	next.CompletedAt = w.deps.Now()
	if err := w.deps.Store.PutSession(ctx, next); err != nil {
		w.log.Error("persist session failed", "err", err)
		return &RetryableError{Op: "persist session", Err: err}
	}
	w.session = next
	w.log.Info("session graded", "mode", next.Mode, "outcome", next.Outcome, "student", next.StudentName)
	return nil
}

func (w *Workflow) analyzeRubric(ctx context.Context, next *Session, text string, rb grading.Rubric) error {
	rb.Items = append([]grading.Item{}, rb.Items...)
	next.Rubric = &rb

	if text == "" {
		if w.requireOCR {
			next.OCRText = ""
			next.Comparison = nil
			next.Outcome = OutcomeInsufficientInput
			next.Warnings = append(next.Warnings, "no OCR text available")
			return w.saveRubric(ctx, next)
		}
		text = OCRPlaceholder
		next.Warnings = append(next.Warnings, "no OCR text available, graded placeholder text")
	}
	next.OCRText = text

	if w.deps.Analyzer == nil {
		return &RetryableError{Op: "compare", Err: errors.New("no language model configured")}
	}
	res, err := w.deps.Analyzer.CompareWithRubric(ctx, text, rb)
	if err != nil {
		w.log.Error("rubric comparison failed", "err", err)
		return &RetryableError{Op: "compare", Err: err}
	}
	if res.Ungraded {
		next.Warnings = append(next.Warnings, "model response could not be parsed")
	}
	next.Comparison = &res
	next.Outcome = OutcomeGraded
	return w.saveRubric(ctx, next)
}

// saveRubric stores a named rubric under the id reserved for this session,
// so a retried Analyze updates rather than duplicates it. A supplied id is
// kept only when it names one of the caller's own rubrics.
func (w *Workflow) saveRubric(ctx context.Context, next *Session) error {
	rb := next.Rubric
	if rb == nil || strings.TrimSpace(rb.Name) == "" {
		return nil
	}
	owner := w.auth.OwnerID()
	if rb.ID != "" {
		_, err := w.deps.Store.GetRubric(ctx, owner, rb.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			rb.ID, rb.CreatedAt = "", 0
		case err != nil:
			w.log.Error("rubric lookup failed", "err", err)
			return &RetryableError{Op: "persist rubric", Err: err}
		}
	}
	if rb.ID == "" {
		if w.rubricID == "" {
			w.rubricID = uuid.NewString()
		}
		rb.ID = w.rubricID
	}
	rb.OwnerID = owner
	saved, err := w.deps.Store.PutRubric(ctx, *rb)
	if err != nil {
		w.log.Error("persist rubric failed", "err", err)
		return &RetryableError{Op: "persist rubric", Err: err}
	}
	next.Rubric = &saved
	return nil
}

func (w *Workflow) analyzeFreeform(ctx context.Context, next *Session, rec *records.ExternalRecord, text string) error {
	next.OCRText = text
	switch {
	case rec != nil && len(rec.Errors) > 0:
		next.Errors = append([]grading.ErrorEntry{}, rec.Errors...)
		next.Outcome = OutcomeGraded
	case text != "":
		if w.deps.Analyzer == nil {
			return &RetryableError{Op: "analyze", Err: errors.New("no language model configured")}
		}
		errs, err := w.deps.Analyzer.AnalyzeFreeform(ctx, text)
		if err != nil {
			w.log.Error("freeform analysis failed", "err", err)
			return &RetryableError{Op: "analyze", Err: err}
		}
		next.Errors = errs
		next.Outcome = OutcomeGraded
	default:
		next.Errors = []grading.ErrorEntry{}
		next.Warnings = append(next.Warnings, "no OCR text available")
		next.Outcome = OutcomeGraded
		if w.requireOCR {
			next.Outcome = OutcomeInsufficientInput
		}
	}
	return nil
}

// fetchRecord returns nil when the sheet is unreachable or has no rows;
// grading goes on without it.
func (w *Workflow) fetchRecord(ctx context.Context) (*records.ExternalRecord, string) {
	if w.deps.Records == nil {
		return nil, ""
	}
	rec, err := w.deps.Records.LatestFor(ctx, w.session.StudentName)
	if err != nil {
		var su *records.SourceUnavailableError
		if errors.As(err, &su) {
			w.log.Warn("record source unavailable", "source", su.Source, "err", su.Err)
		} else {
			w.log.Warn("record lookup failed", "err", err)
		}
		return nil, fmt.Sprintf("records: %v", err)
	}
	return rec, ""
}
