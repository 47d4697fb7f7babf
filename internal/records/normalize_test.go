package records_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"google.golang.org/api/option"

	"github.com/mind-engage/corector/internal/records"
)

var header = []string{"Id", "Nume elev", "Clasa", "Data", "Text OCR", "Greșeli JSON", "Punctaj", "Observatii Profesor"}

func TestNormalizeMapsKnownColumns(t *testing.T) {
	rows := [][]string{
		{"1", " Maria Ionescu ", "V A", "2026-02-20", "Textul meu si al tau", `[{"tip":"ortografie","textGresit":"si","textCorect":"și"}]`, "72", "atent"},
	}
	got := records.Normalize(header, rows)
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	r := got[0]
	if r.ID != "1" || r.StudentName != "Maria Ionescu" || r.ClassName != "V A" || r.Date != "2026-02-20" {
		t.Fatalf("%+v", r)
	}
	if r.OCRText != "Textul meu si al tau" {
		t.Fatalf("ocr = %q", r.OCRText)
	}
	if len(r.Errors) != 1 || r.Errors[0].WrongText != "si" {
		t.Fatalf("errors = %+v", r.Errors)
	}
	if r.Score != 72 || !r.HasScore {
		t.Fatalf("score = %v %v", r.Score, r.HasScore)
	}
	if r.Extra["observatii_profesor"] != "atent" {
		t.Fatalf("extra = %+v", r.Extra)
	}
}

func TestNormalizeRecoversBadCells(t *testing.T) {
	rows := [][]string{
		{"2", "Andrei", "V A", "", "", "not json", "abc"},
		{"3"},
	}
	got := records.Normalize(header, rows)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	for i, r := range got {
		if r.Errors == nil || len(r.Errors) != 0 {
			t.Fatalf("row %d errors = %+v", i, r.Errors)
		}
		if r.Score != 0 || r.HasScore {
			t.Fatalf("row %d score = %v %v", i, r.Score, r.HasScore)
		}
	}
	if got[1].ID != "3" || got[1].StudentName != "" {
		t.Fatalf("short row = %+v", got[1])
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	rows := [][]string{
		{"1", "Maria", "V A", "2026-02-20", "x", `[{"tip":"gramatica","textGresit":"a","textCorect":"b"}]`, "85", ""},
		{"2", "Ion", "V B", "2026-02-21", "y", "[]", "90", "z"},
	}
	a := records.Normalize(header, rows)
	b := records.Normalize(header, rows)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestHeaderKey(t *testing.T) {
	cases := map[string]string{
		"NUME ELEV":     "numeElev",
		" greseli json": "greseliJson",
		"Greșeli JSON":  "greseliJson",
		"Text  OCR":     "textOcr",
		"Nota finala":   "nota_finala",
	}
	for in, want := range cases {
		if got := records.HeaderKey(in); got != want {
			t.Fatalf("HeaderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReaderLatestFor(t *testing.T) {
	src := records.StaticSource{Grid: [][]string{
		header,
		{"1", "Maria Ionescu", "V A", "2026-02-20", "a", "[]", "72"},
		{"2", "Andrei Popa", "V A", "2026-02-21", "b", "[]", "88"},
		{"3", "Maria Ionescu", "V A", "2026-02-22", "c", "[]", "85"},
		{"4", "Elena", "V B", "2026-02-23", "d", "[]", "65"},
	}}
	rd := records.NewReader(src)
	ctx := context.Background()

	rec, err := rd.LatestFor(ctx, "maria ionescu")
	if err != nil || rec == nil || rec.ID != "3" {
		t.Fatalf("LatestFor maria = %+v %v", rec, err)
	}
	rec, _ = rd.LatestFor(ctx, "Nobody Here")
	if rec == nil || rec.ID != "4" {
		t.Fatalf("fallback = %+v", rec)
	}
	rec, _ = rd.LatestFor(ctx, "  ")
	if rec == nil || rec.ID != "4" {
		t.Fatalf("blank name = %+v", rec)
	}
	list, _ := rd.ForStudent(ctx, "Maria Ionescu")
	if len(list) != 2 {
		t.Fatalf("ForStudent = %d", len(list))
	}
}

func TestReaderHeaderOnly(t *testing.T) {
	rd := records.NewReader(records.StaticSource{Grid: [][]string{header}})
	all, err := rd.All(context.Background())
	if err != nil || len(all) != 0 {
		t.Fatalf("%v %v", all, err)
	}
	rec, err := rd.LatestFor(context.Background(), "Maria Ionescu")
	if err != nil || rec != nil {
		t.Fatalf("%v %v", rec, err)
	}
}

func TestReaderSourceUnavailable(t *testing.T) {
	rd := records.NewReader(records.StaticSource{Err: errors.New("dial tcp: timeout")})
	_, err := rd.All(context.Background())
	var su *records.SourceUnavailableError
	if !errors.As(err, &su) {
		t.Fatalf("want SourceUnavailableError, got %v", err)
	}
}

func TestSheetsSourceReadsValues(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Sheet1!A1:G3","majorDimension":"ROWS","values":[
			["Id","Nume elev","Clasa","Data","Text OCR","Greseli JSON","Punctaj"],
			["1","Maria","V A","2026-02-20","text","[]","72"],
			["2","Ion","V B","2026-02-21","text 2"]
		]}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	src, err := records.NewSheetsSource(ctx, "sheet-id", "", "", option.WithEndpoint(ts.URL+"/"), option.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatal(err)
	}
	all, err := records.NewReader(src).All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Score != 72 || all[1].HasScore {
		t.Fatalf("%+v", all)
	}
}

func TestSheetsSourceErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer ts.Close()

	ctx := context.Background()
	src, err := records.NewSheetsSource(ctx, "sheet-id", "", "", option.WithEndpoint(ts.URL+"/"), option.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = records.NewReader(src).All(ctx)
	var su *records.SourceUnavailableError
	if !errors.As(err, &su) || su.Source != "sheets" {
		t.Fatalf("got %v", err)
	}
}
