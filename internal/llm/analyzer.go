package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mind-engage/corector/internal/grading"
)

const (
	freeformTemperature = 0.3
	compareTemperature  = 0.2
	exerciseTemperature = 0.7
	defaultMaxTokens    = 4096
	exercisesPerRequest = 3
)

// Analyzer turns model output into grading types. Malformed output is
// recovered as empty results; only *ServiceError is returned.
type Analyzer struct {
	gen Generator
	log *slog.Logger
}

func NewAnalyzer(gen Generator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{gen: gen, log: logger.With("component", "llm")}
}

// AnalyzeFreeform asks the model for spelling, grammar and content mistakes.
func (a *Analyzer) AnalyzeFreeform(ctx context.Context, text string) ([]grading.ErrorEntry, error) {
	out, err := a.gen.Generate(ctx, Request{
		Prompt:      FreeformPrompt(text),
		Temperature: freeformTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return nil, asServiceError("analyze", err)
	}
	region, ok := ExtractArray(out)
	if !ok {
		a.recovered("analyze", "no json array", out)
		return []grading.ErrorEntry{}, nil
	}
	var errs []grading.ErrorEntry
	if err := json.Unmarshal([]byte(region), &errs); err != nil {
		a.recovered("analyze", err.Error(), out)
		return []grading.ErrorEntry{}, nil
	}
	if errs == nil {
		errs = []grading.ErrorEntry{}
	}
	return errs, nil
}

// CompareWithRubric grades text against the rubric. Totals are recomputed
// from the items; missing expected answers and point values come from the
// rubric item with the same number.
func (a *Analyzer) CompareWithRubric(ctx context.Context, text string, rb grading.Rubric) (grading.ComparisonResult, error) {
	out, err := a.gen.Generate(ctx, Request{
		Prompt:      ComparePrompt(text, rb),
		Temperature: compareTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return grading.ComparisonResult{}, asServiceError("compare", err)
	}
	ungraded := grading.ComparisonResult{Items: []grading.ComparisonItem{}, Ungraded: true}

	region, ok := ExtractObject(out)
	if !ok {
		a.recovered("compare", "no json object", out)
		return ungraded, nil
	}
	res, claimedEarned, claimedPossible, err := grading.DecodeComparison([]byte(region))
	if err != nil {
		a.recovered("compare", err.Error(), out)
		return ungraded, nil
	}
	res.FillFromRubric(rb)
	if claimedEarned != res.TotalEarned || (claimedPossible != 0 && claimedPossible != res.TotalPossible) {
		a.log.Warn("model totals disagree with items",
			"claimed_earned", claimedEarned, "claimed_possible", claimedPossible,
			"earned", res.TotalEarned, "possible", res.TotalPossible)
	}
	return res, nil
}

// GenerateExercises asks for remedial exercises targeting the given errors.
func (a *Analyzer) GenerateExercises(ctx context.Context, errs []grading.ErrorEntry) ([]Exercise, error) {
	if len(errs) == 0 {
		return []Exercise{}, nil
	}
	out, err := a.gen.Generate(ctx, Request{
		Prompt:      ExercisesPrompt(errs),
		Temperature: exerciseTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return nil, asServiceError("exercises", err)
	}
	region, ok := ExtractArray(out)
	if !ok {
		a.recovered("exercises", "no json array", out)
		return []Exercise{}, nil
	}
	var ex []Exercise
	if err := json.Unmarshal([]byte(region), &ex); err != nil {
		a.recovered("exercises", err.Error(), out)
		return []Exercise{}, nil
	}
	if len(ex) > exercisesPerRequest {
		ex = ex[:exercisesPerRequest]
	}
	if ex == nil {
		ex = []Exercise{}
	}
	return ex, nil
}

func (a *Analyzer) recovered(op, reason, out string) {
	a.log.Warn(ErrParseRecoveredEmpty.Error(), "op", op, "reason", reason, "output", preview(out))
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 200 {
		return string(r[:200]) + "…"
	}
	return s
}
