package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/llm"
)

type fakeGen struct {
	out   string
	err   error
	calls []llm.Request
}

func (f *fakeGen) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.out, f.err
}

func TestAnalyzeFreeformTolerantOutput(t *testing.T) {
	gen := &fakeGen{out: `Here is the result: [{"tip":"ortografie","textGresit":"greseli","textCorect":"greșeli","explicatie":"ș"}] Thanks.`}
	a := llm.NewAnalyzer(gen, nil)
	errs, err := a.AnalyzeFreeform(context.Background(), "Am facut greseli.")
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 1 || errs[0].Category != grading.CategorySpelling || errs[0].CorrectText != "greșeli" {
		t.Fatalf("%+v", errs)
	}
	req := gen.calls[0]
	if req.Temperature != 0.3 || req.MaxTokens != 4096 || !strings.Contains(req.Prompt, "Am facut greseli.") {
		t.Fatalf("request = %+v", req)
	}
}

func TestAnalyzeFreeformRecoversEmpty(t *testing.T) {
	for _, out := range []string{"Nu am găsit greșeli.", "[not json]", ""} {
		a := llm.NewAnalyzer(&fakeGen{out: out}, nil)
		errs, err := a.AnalyzeFreeform(context.Background(), "text")
		if err != nil {
			t.Fatalf("%q: %v", out, err)
		}
		if errs == nil || len(errs) != 0 {
			t.Fatalf("%q: %+v", out, errs)
		}
	}
}

func TestAnalyzerWrapsServiceError(t *testing.T) {
	a := llm.NewAnalyzer(&fakeGen{err: errors.New("connection reset")}, nil)
	_, err := a.AnalyzeFreeform(context.Background(), "text")
	var se *llm.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("want ServiceError, got %v", err)
	}

	a = llm.NewAnalyzer(&fakeGen{err: &llm.ServiceError{Op: "generate", Status: 503, Err: errors.New("unavailable")}}, nil)
	_, err = a.CompareWithRubric(context.Background(), "text", grading.Rubric{Items: []grading.Item{{ExpectedAnswer: "x", PointValue: 1}}})
	if !errors.As(err, &se) || se.Status != 503 {
		t.Fatalf("got %v", err)
	}
}

func TestCompareWithRubric(t *testing.T) {
	rb, _ := grading.NewRubric("test", []grading.Item{
		{ExpectedAnswer: "6", PointValue: 10},
		{ExpectedAnswer: "Dunarea", PointValue: 10},
	})
	gen := &fakeGen{out: "```json\n" + `{"items":[
		{"itemNr":1,"raspunsElev":"5","puncteObtinute":5,"corect":"partial","feedback":"aproape"},
		{"itemNr":2,"raspunsElev":"Dunarea","raspunsCorect":"Dunarea","puncteObtinute":10,"puncteMaxime":10,"corect":true}
	],"punctajTotal":20,"punctajMaxim":20,"procentaj":100}` + "\n```"}
	a := llm.NewAnalyzer(gen, nil)
	res, err := a.CompareWithRubric(context.Background(), "1) 5 2) Dunarea", rb)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ungraded || res.TotalEarned != 15 || res.TotalPossible != 20 || res.Percentage != 75 {
		t.Fatalf("%+v", res)
	}
	if res.Items[0].ExpectedAnswer != "6" || res.Items[0].PointsPossible != 10 {
		t.Fatalf("item 1 not filled from rubric: %+v", res.Items[0])
	}
	p := gen.calls[0].Prompt
	if !strings.Contains(p, "1. 6 (10 puncte)") || !strings.Contains(p, "2. Dunarea (10 puncte)") {
		t.Fatalf("prompt missing rubric lines:\n%s", p)
	}
	if gen.calls[0].Temperature != 0.2 {
		t.Fatalf("temperature = %v", gen.calls[0].Temperature)
	}
}

func TestCompareWithRubricUngraded(t *testing.T) {
	rb, _ := grading.NewRubric("", []grading.Item{{ExpectedAnswer: "a", PointValue: 5}})
	a := llm.NewAnalyzer(&fakeGen{out: "Nu pot evalua acest text."}, nil)
	res, err := a.CompareWithRubric(context.Background(), "text", rb)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ungraded || len(res.Items) != 0 || res.TotalEarned != 0 || res.TotalPossible != 0 || res.Percentage != 0 {
		t.Fatalf("%+v", res)
	}
}

func TestGenerateExercises(t *testing.T) {
	gen := &fakeGen{out: `[
		{"titlu":"Scrie corect","cerinta":"Completează cu ș sau s","tip":"ortografie","dificultate":"ușor"},
		{"titlu":"Acordul","cerinta":"Acordă predicatul","tip":"gramatica","dificultate":"mediu"},
		{"titlu":"Idei","cerinta":"Rescrie","tip":"continut","dificultate":"avansat"},
		{"titlu":"În plus","cerinta":"x","tip":"continut","dificultate":"greu"}
	]`}
	a := llm.NewAnalyzer(gen, nil)
	ex, err := a.GenerateExercises(context.Background(), []grading.ErrorEntry{
		{Category: grading.CategorySpelling, WrongText: "si", CorrectText: "și"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ex) != 3 {
		t.Fatalf("len = %d", len(ex))
	}
	if ex[0].Title != "Scrie corect" || ex[0].Category != grading.CategorySpelling || ex[0].Difficulty != "ușor" {
		t.Fatalf("%+v", ex[0])
	}
	if ex[2].Difficulty != "avansat" {
		t.Fatalf("%+v", ex[2])
	}
	if !strings.Contains(gen.calls[0].Prompt, `Tip: ortografie, Greșit: "si", Corect: "și"`) {
		t.Fatalf("prompt:\n%s", gen.calls[0].Prompt)
	}
}

func TestGenerateExercisesNoErrorsSkipsModel(t *testing.T) {
	gen := &fakeGen{}
	ex, err := llm.NewAnalyzer(gen, nil).GenerateExercises(context.Background(), nil)
	if err != nil || ex == nil || len(ex) != 0 || len(gen.calls) != 0 {
		t.Fatalf("%v %v calls=%d", ex, err, len(gen.calls))
	}
}

func TestNewGeminiGeneratorNeedsKey(t *testing.T) {
	if _, err := llm.NewGeminiGenerator(context.Background(), " ", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}
