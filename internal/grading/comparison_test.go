package grading_test

import (
	"encoding/json"
	"testing"

	"github.com/mind-engage/corector/internal/grading"
)

func TestDecodeComparisonRecomputesTotals(t *testing.T) {
	raw := `{
	  "items": [
	    {"itemNr": 1, "raspunsElev": "5", "raspunsCorect": "6", "puncteObtinute": 5, "puncteMaxime": 10, "corect": "partial", "feedback": "aproape"},
	    {"itemNr": 2, "raspunsElev": "Dunarea", "raspunsCorect": "Dunarea", "puncteObtinute": "10", "puncteMaxime": 10, "corect": true, "feedback": "ok"}
	  ],
	  "punctajTotal": 99, "punctajMaxim": 100, "procentaj": 99
	}`
	res, claimedEarned, claimedPossible, err := grading.DecodeComparison([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalEarned != 15 || res.TotalPossible != 20 || res.Percentage != 75 {
		t.Fatalf("totals = %v/%v %v%%", res.TotalEarned, res.TotalPossible, res.Percentage)
	}
	if claimedEarned != 99 || claimedPossible != 100 {
		t.Fatalf("claimed = %v/%v", claimedEarned, claimedPossible)
	}
	if res.Items[0].Correctness != grading.Partial || res.Items[1].Correctness != grading.Correct {
		t.Fatalf("correctness = %q %q", res.Items[0].Correctness, res.Items[1].Correctness)
	}
	if res.Items[1].ItemNumber != 2 || res.Items[1].StudentAnswer != "Dunarea" {
		t.Fatalf("item 2 = %+v", res.Items[1])
	}
}

func TestComparisonItemEnglishKeys(t *testing.T) {
	var it grading.ComparisonItem
	err := json.Unmarshal([]byte(`{"item_number":3,"student_answer":"x","expected_answer":"y","points_earned":1.5,"points_possible":3,"correctness":false}`), &it)
	if err != nil {
		t.Fatal(err)
	}
	if it.ItemNumber != 3 || it.PointsEarned != 1.5 || it.Correctness != grading.Incorrect {
		t.Fatalf("%+v", it)
	}
	b, _ := json.Marshal(it)
	var back grading.ComparisonItem
	if err := json.Unmarshal(b, &back); err != nil || back != it {
		t.Fatalf("round trip: %v %+v", err, back)
	}
}

func TestFillFromRubricOnlyFillsMissing(t *testing.T) {
	rb, _ := grading.NewRubric("", []grading.Item{
		{ExpectedAnswer: "6", PointValue: 10},
		{ExpectedAnswer: "Dunarea", PointValue: 5},
	})
	res := grading.ComparisonResult{Items: []grading.ComparisonItem{
		{ItemNumber: 1, PointsEarned: 4},
		{ItemNumber: 2, ExpectedAnswer: "Dunărea", PointsEarned: 7, PointsPossible: 5},
	}}
	res.FillFromRubric(rb)
	if res.Items[0].ExpectedAnswer != "6" || res.Items[0].PointsPossible != 10 {
		t.Fatalf("item 1 not filled: %+v", res.Items[0])
	}
	if res.Items[1].ExpectedAnswer != "Dunărea" || res.Items[1].PointsEarned != 7 {
		t.Fatalf("item 2 must stay verbatim: %+v", res.Items[1])
	}
	if res.TotalEarned != 11 || res.TotalPossible != 15 {
		t.Fatalf("totals = %v/%v", res.TotalEarned, res.TotalPossible)
	}
}

func TestPercentageZeroPossible(t *testing.T) {
	if got := grading.Percentage(3, 0); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := grading.Percentage(2, 3); got != 67 {
		t.Fatalf("got %v", got)
	}
}

func TestMistakesSkipsCorrectItems(t *testing.T) {
	res := grading.ComparisonResult{Items: []grading.ComparisonItem{
		{ItemNumber: 1, Correctness: grading.Correct},
		{ItemNumber: 2, StudentAnswer: "a", ExpectedAnswer: "b", Correctness: grading.Partial, Feedback: "f"},
		{ItemNumber: 3, StudentAnswer: "c", ExpectedAnswer: "d", Correctness: grading.Incorrect},
	}}
	m := res.Mistakes()
	if len(m) != 2 || m[0].WrongText != "a" || m[0].Category != grading.CategoryContent || m[0].Explanation != "f" {
		t.Fatalf("%+v", m)
	}
}

func TestParseErrorList(t *testing.T) {
	got := grading.ParseErrorList(`[{"tip":"ortografie","textGresit":"greseli","textCorect":"greșeli","explicatie":"ș"},{"category":"grammar","wrong_text":"si","correct_text":"și"},{"tip":"altceva"}]`)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Category != grading.CategorySpelling || got[0].CorrectText != "greșeli" {
		t.Fatalf("%+v", got[0])
	}
	if got[1].Category != grading.CategoryGrammar || got[1].WrongText != "si" {
		t.Fatalf("%+v", got[1])
	}
	if got[2].Category != grading.CategoryContent {
		t.Fatalf("unknown category: %+v", got[2])
	}
	for _, bad := range []string{"not json", "", "{}", "null"} {
		if l := grading.ParseErrorList(bad); l == nil || len(l) != 0 {
			t.Fatalf("%q: %+v", bad, l)
		}
	}
}
