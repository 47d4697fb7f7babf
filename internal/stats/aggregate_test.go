package stats_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/records"
	"github.com/mind-engage/corector/internal/stats"
)

func score(v float64) *float64 { return &v }

func mistake(wrong, right string, c grading.Category) grading.ErrorEntry {
	return grading.ErrorEntry{Category: c, WrongText: wrong, CorrectText: right}
}

func sample() []stats.Entry {
	si := mistake("si", "și", grading.CategorySpelling)
	romana := mistake("romana", "română", grading.CategorySpelling)
	acord := mistake("au mers", "a mers", grading.CategoryGrammar)
	return []stats.Entry{
		{StudentName: "Maria", ClassName: "V A", Date: "2026-02-20", Score: score(72), Errors: []grading.ErrorEntry{romana, si}},
		{StudentName: "Andrei", ClassName: "V A", Date: "2026-02-20", Score: score(60), Errors: []grading.ErrorEntry{acord}},
		{StudentName: "maria", ClassName: "V A", Date: "21.02.2026", Score: score(85), Errors: []grading.ErrorEntry{si}},
		{StudentName: "Maria", ClassName: "V A", Date: "2026-02-22", Score: nil, Errors: []grading.ErrorEntry{si}},
		{StudentName: "Maria", ClassName: "V A", Date: "2026-02-22", Score: score(90)},
		{StudentName: "Elena", ClassName: "VI B", Date: "2026-02-19", Score: score(65)},
	}
}

func TestStudentsAverageExcludesMissingScores(t *testing.T) {
	got := stats.Students(sample(), 0)
	if len(got) != 3 || got[0].StudentName != "Maria" || got[1].StudentName != "Andrei" || got[2].StudentName != "Elena" {
		t.Fatalf("order = %+v", got)
	}
	maria := got[0]
	if maria.SessionCount != 4 || maria.AverageScore == nil || *maria.AverageScore != 82 {
		t.Fatalf("maria = %+v", maria)
	}
	if maria.TotalErrorCount != 4 {
		t.Fatalf("errors = %d", maria.TotalErrorCount)
	}
	if len(maria.TopMistakes) != 2 || maria.TopMistakes[0].WrongText != "si" || maria.TopMistakes[0].Count != 3 {
		t.Fatalf("top = %+v", maria.TopMistakes)
	}
}

func TestStudentWithoutScores(t *testing.T) {
	got := stats.Students([]stats.Entry{{StudentName: "Ion"}}, 5)
	if len(got) != 1 || got[0].AverageScore != nil {
		t.Fatalf("%+v", got)
	}
}

func TestTopMistakesTieBreakAndLimit(t *testing.T) {
	var errs []grading.ErrorEntry
	for _, w := range []string{"b", "a", "si", "c", "si", "a", "d", "e", "f", "si"} {
		errs = append(errs, mistake(w, "", grading.CategoryContent))
	}
	got := stats.TopMistakes([]stats.Entry{{Errors: errs}}, 0)
	var words []string
	for _, m := range got {
		words = append(words, m.WrongText)
	}
	if !reflect.DeepEqual(words, []string{"si", "a", "b", "c", "d"}) {
		t.Fatalf("ranking = %v", words)
	}
	if got := stats.TopMistakes(nil, 3); got == nil || len(got) != 0 {
		t.Fatalf("empty = %v", got)
	}
}

func TestByDateSortedAndNormalized(t *testing.T) {
	got := stats.ByDate(sample())
	want := []stats.DatePoint{
		{Date: "2026-02-19", AverageScore: 65, Count: 1},
		{Date: "2026-02-20", AverageScore: 66, Count: 2},
		{Date: "2026-02-21", AverageScore: 85, Count: 1},
		{Date: "2026-02-22", AverageScore: 90, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v", got)
	}
}

func TestByClass(t *testing.T) {
	got := stats.ByClass(sample())
	if len(got) != 2 || got[0].ClassName != "V A" || got[1].ClassName != "VI B" {
		t.Fatalf("%+v", got)
	}
	// (72+60+85+90)/4 = 76.75
	if got[0].AverageScore != 77 || got[0].StudentCount != 2 || got[0].Count != 5 {
		t.Fatalf("%+v", got[0])
	}
}

func TestErrorsByCategory(t *testing.T) {
	got := stats.ErrorsByCategory(sample())
	want := []stats.CategoryCount{
		{Category: grading.CategorySpelling, Count: 4},
		{Category: grading.CategoryGrammar, Count: 1},
		{Category: grading.CategoryContent, Count: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("%+v", got)
	}
}

func TestAggregationIsPureAndIdempotent(t *testing.T) {
	in := sample()
	before := sample()
	a := stats.Students(in, 5)
	b := stats.Students(in, 5)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("not idempotent")
	}
	_ = stats.TopMistakes(in, 1)
	_ = stats.ByDate(in)
	if !reflect.DeepEqual(in, before) {
		t.Fatal("input mutated")
	}
}

func TestAdapters(t *testing.T) {
	recs := []records.ExternalRecord{
		{StudentName: "Maria", Score: 72, HasScore: true},
		{StudentName: "Maria", Score: 0, HasScore: false},
	}
	entries := stats.FromRecords(recs)
	if entries[0].Score == nil || *entries[0].Score != 72 || entries[1].Score != nil {
		t.Fatalf("%+v", entries)
	}

	created := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	sessions := []correction.Session{
		{StudentName: "Ion", Mode: correction.ModeRubric, Outcome: correction.OutcomeGraded, CreatedAt: created,
			Comparison: &grading.ComparisonResult{Items: []grading.ComparisonItem{
				{ItemNumber: 1, StudentAnswer: "5", ExpectedAnswer: "6", Correctness: grading.Incorrect},
			}, TotalEarned: 12, TotalPossible: 20}},
		{StudentName: "Ion", Mode: correction.ModeRubric, Outcome: correction.OutcomeGraded, CreatedAt: created,
			Comparison: &grading.ComparisonResult{Ungraded: true}},
	}
	entries = stats.FromSessions(sessions)
	if entries[0].Score == nil || *entries[0].Score != 12 || entries[1].Score != nil {
		t.Fatalf("%+v", entries)
	}
	if entries[0].Date != "2026-02-20" || len(entries[0].Errors) != 1 || entries[0].Errors[0].WrongText != "5" {
		t.Fatalf("%+v", entries[0])
	}
}
