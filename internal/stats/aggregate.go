// Package stats derives per-student, per-class and per-date views from
// graded work. Every function is pure and leaves its input untouched.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/records"
)

const DefaultTopN = 5

// Entry is one graded piece of work. Score is nil when none was recorded.
type Entry struct {
	StudentName string
	ClassName   string
	Date        string
	Score       *float64
	Errors      []grading.ErrorEntry
}

func FromRecords(recs []records.ExternalRecord) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		e := Entry{StudentName: r.StudentName, ClassName: r.ClassName, Date: r.Date, Errors: r.Errors}
		if r.HasScore {
			v := r.Score
			e.Score = &v
		}
		out = append(out, e)
	}
	return out
}

func FromSessions(sessions []correction.Session) []Entry {
	out := make([]Entry, 0, len(sessions))
	for _, s := range sessions {
		e := Entry{StudentName: s.StudentName, ClassName: s.ClassName, Date: s.Date(), Errors: s.Mistakes()}
		if v, ok := s.Score(); ok {
			e.Score = &v
		}
		out = append(out, e)
	}
	return out
}

type Mistake struct {
	WrongText   string           `json:"wrong_text"`
	CorrectText string           `json:"correct_text"`
	Category    grading.Category `json:"category"`
	Count       int              `json:"occurrence_count"`
}

type StudentAggregate struct {
	StudentName     string    `json:"student_name"`
	ClassName       string    `json:"class_name"`
	SessionCount    int       `json:"session_count"`
	AverageScore    *float64  `json:"average_score"`
	TotalErrorCount int       `json:"total_error_count"`
	TopMistakes     []Mistake `json:"top_mistakes"`
}

type DatePoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	Count        int     `json:"count"`
}

type ClassAverage struct {
	ClassName    string  `json:"class_name"`
	AverageScore float64 `json:"average_score"`
	StudentCount int     `json:"student_count"`
	Count        int     `json:"count"`
}

type CategoryCount struct {
	Category grading.Category `json:"category"`
	Count    int              `json:"count"`
}

// average keeps defined scores only and rounds half up to a whole number.
type average struct {
	sum float64
	n   int
}

func (a *average) add(s *float64) {
	if s != nil {
		a.sum += *s
		a.n++
	}
}

func (a average) value() (float64, bool) {
	if a.n == 0 {
		return 0, false
	}
	return grading.RoundHalfUp(a.sum / float64(a.n)), true
}

// Students groups by student name in first-seen order.
func Students(entries []Entry, topN int) []StudentAggregate {
	type group struct {
		agg     StudentAggregate
		avg     average
		entries []Entry
	}
	var order []string
	groups := map[string]*group{}
	for _, e := range entries {
		name := strings.TrimSpace(e.StudentName)
		if name == "" {
			continue
		}
		key := grading.Normalize(name)
		g, ok := groups[key]
		if !ok {
			g = &group{agg: StudentAggregate{StudentName: name, ClassName: e.ClassName}}
			groups[key] = g
			order = append(order, key)
		}
		if g.agg.ClassName == "" {
			g.agg.ClassName = e.ClassName
		}
		g.agg.SessionCount++
		g.agg.TotalErrorCount += len(e.Errors)
		g.avg.add(e.Score)
		g.entries = append(g.entries, e)
	}
	out := make([]StudentAggregate, 0, len(order))
	for _, k := range order {
		g := groups[k]
		if v, ok := g.avg.value(); ok {
			g.agg.AverageScore = &v
		}
		g.agg.TopMistakes = TopMistakes(g.entries, topN)
		out = append(out, g.agg)
	}
	return out
}

// ByDate averages scores per day, oldest first. Entries without a score or
// date are left out.
func ByDate(entries []Entry) []DatePoint {
	type group struct {
		key string
		avg average
	}
	groups := map[string]*group{}
	for _, e := range entries {
		if e.Score == nil || strings.TrimSpace(e.Date) == "" {
			continue
		}
		key := dateKey(e.Date)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
		}
		g.avg.add(e.Score)
	}
	out := make([]DatePoint, 0, len(groups))
	for _, g := range groups {
		v, _ := g.avg.value()
		out = append(out, DatePoint{Date: g.key, AverageScore: v, Count: g.avg.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
}

// dateKey turns the sheet's date into a sortable YYYY-MM-DD key. Dates that
// match no layout are kept as written.
func dateKey(s string) string {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// ByClass averages scores per class in first-seen order.
func ByClass(entries []Entry) []ClassAverage {
	type group struct {
		out      ClassAverage
		avg      average
		students map[string]bool
	}
	var order []string
	groups := map[string]*group{}
	for _, e := range entries {
		class := strings.TrimSpace(e.ClassName)
		if class == "" {
			continue
		}
		g, ok := groups[class]
		if !ok {
			g = &group{out: ClassAverage{ClassName: class}, students: map[string]bool{}}
			groups[class] = g
			order = append(order, class)
		}
		g.out.Count++
		g.avg.add(e.Score)
		if n := grading.Normalize(e.StudentName); n != "" {
			g.students[n] = true
		}
	}
	out := make([]ClassAverage, 0, len(order))
	for _, c := range order {
		g := groups[c]
		g.out.AverageScore, _ = g.avg.value()
		g.out.StudentCount = len(g.students)
		out = append(out, g.out)
	}
	return out
}

// ErrorsByCategory counts errors per category, always listing all three.
func ErrorsByCategory(entries []Entry) []CategoryCount {
	counts := map[grading.Category]int{}
	for _, e := range entries {
		for _, er := range e.Errors {
			counts[er.Category]++
		}
	}
	out := make([]CategoryCount, 0, len(grading.Categories))
	for _, c := range grading.Categories {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}

// TopMistakes ranks errors by exact wrong text, most frequent first. Ties
// keep the order in which the mistakes were first seen. n <= 0 means 5.
func TopMistakes(entries []Entry, n int) []Mistake {
	if n <= 0 {
		n = DefaultTopN
	}
	idx := map[string]int{}
	var list []Mistake
	for _, e := range entries {
		for _, er := range e.Errors {
			if er.WrongText == "" {
				continue
			}
			if i, ok := idx[er.WrongText]; ok {
				list[i].Count++
				continue
			}
			idx[er.WrongText] = len(list)
			list = append(list, Mistake{WrongText: er.WrongText, CorrectText: er.CorrectText, Category: er.Category, Count: 1})
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Count > list[j].Count })
	if len(list) > n {
		list = list[:n]
	}
	if list == nil {
		list = []Mistake{}
	}
	return list
}
