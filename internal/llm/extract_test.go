package llm

import (
	"strings"
	"testing"
	"time"
)

func TestExtractArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", `[1,2]`, `[1,2]`, true},
		{"chatter", `Here is the result: [{"tip":"ortografie","textGresit":"a"}] Thanks.`, `[{"tip":"ortografie","textGresit":"a"}]`, true},
		{"fenced", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`, true},
		{"bracket in string", `x ["a]b", "c\"]"] y ]`, `["a]b", "c\"]"]`, true},
		{"two arrays", `[1] and [2]`, `[1]`, true},
		{"unbalanced then good", `[ oops [1,2]`, `[1,2]`, true},
		{"unbalanced before two", `[ a [1] [2]`, `[1]`, true},
		{"stray close first", `] then [3]`, `[3]`, true},
		{"none", `no json here`, ``, false},
		{"unclosed", `[1, 2`, ``, false},
	}
	for _, c := range cases {
		got, ok := ExtractArray(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("%s: got %q,%v want %q,%v", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestExtractUnbalancedIsLinear(t *testing.T) {
	in := strings.Repeat("[", maxScan)
	began := time.Now()
	if _, ok := ExtractArray(in); ok {
		t.Fatal("nothing closes")
	}
	if d := time.Since(began); d > 2*time.Second {
		t.Fatalf("scan took %v", d)
	}
	if got, ok := ExtractArray(strings.Repeat("[", 1000) + "[7]"); !ok || got != "[7]" {
		t.Fatalf("got %q %v", got, ok)
	}
}

func TestExtractObject(t *testing.T) {
	got, ok := ExtractObject("Rezultat:\n{\"items\":[{\"feedback\":\"vezi {nota}\"}],\"punctajTotal\":5}\nGata.")
	if !ok || got != `{"items":[{"feedback":"vezi {nota}"}],"punctajTotal":5}` {
		t.Fatalf("got %q %v", got, ok)
	}
	if _, ok := ExtractObject(`[1,2,3]`); ok {
		t.Fatal("array is not an object")
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := StripCodeFences("```\n{}\n```"); got != "{}" {
		t.Fatalf("got %q", got)
	}
	if got := StripCodeFences("  [1] "); got != "[1]" {
		t.Fatalf("got %q", got)
	}
}
