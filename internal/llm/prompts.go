package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/corector/internal/grading"
)

const freeformPrompt = `Analizează următorul text scris de un elev și identifică toate greșelile.
Pentru fiecare greșeală returnează un obiect JSON cu:
- "tip": una din valorile "ortografie", "gramatica", "continut"
- "textGresit": fragmentul greșit exact din text
- "textCorect": varianta corectă
- "explicatie": explicația regulii gramaticale sau ortografice, pe scurt

Returnează DOAR un array JSON valid, fără alte explicații.

Textul elevului:
"""
%s
"""`

const comparePrompt = `Compară răspunsurile elevului cu baremul de corectare și calculează punctajul.

Textul OCR al elevului:
"""
%s
"""

Baremul (răspunsuri corecte):
%s

Pentru fiecare item din barem, returnează un obiect JSON cu:
- "itemNr": numărul itemului
- "raspunsElev": ce a răspuns elevul (extras din OCR)
- "raspunsCorect": răspunsul corect din barem
- "puncteObtinute": punctele obținute (poate fi parțial)
- "puncteMaxime": punctele maxime posibile
- "corect": true/false/partial
- "feedback": o scurtă explicație

Returnează un obiect JSON cu:
- "items": array-ul de mai sus
- "punctajTotal": suma punctelor obținute
- "punctajMaxim": suma punctelor maxime
- "procentaj": procentajul obținut

Returnează DOAR JSON valid, fără alte explicații.`

const exercisesPrompt = `Pe baza următoarelor greșeli identificate în textul unui elev, generează exact 3 exerciții remediale de consolidare.

Greșeli identificate:
%s

Pentru fiecare exercițiu returnează un obiect JSON cu:
- "titlu": titlul exercițiului
- "cerinta": cerința completă a exercițiului
- "tip": tipul greșelii vizate ("ortografie", "gramatica" sau "continut")
- "dificultate": "ușor", "mediu" sau "avansat"

Exercițiile trebuie să fie potrivite pentru un elev de gimnaziu.
Returnează DOAR un array JSON valid cu exact 3 obiecte, fără alte explicații.`

func FreeformPrompt(text string) string {
	return fmt.Sprintf(freeformPrompt, text)
}

// ComparePrompt lists rubric items as "N. answer (P puncte)".
func ComparePrompt(text string, rb grading.Rubric) string {
	lines := make([]string, len(rb.Items))
	for i, it := range rb.Items {
		lines[i] = fmt.Sprintf("%d. %s (%s puncte)", i+1, it.ExpectedAnswer, formatPoints(it.PointValue))
	}
	return fmt.Sprintf(comparePrompt, text, strings.Join(lines, "\n"))
}

func ExercisesPrompt(errs []grading.ErrorEntry) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = fmt.Sprintf("- Tip: %s, Greșit: %q, Corect: %q", romanianLabel(e.Category), e.WrongText, e.CorrectText)
	}
	return fmt.Sprintf(exercisesPrompt, strings.Join(lines, "\n"))
}

func formatPoints(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func romanianLabel(c grading.Category) string {
	switch c {
	case grading.CategorySpelling:
		return "ortografie"
	case grading.CategoryGrammar:
		return "gramatica"
	default:
		return "continut"
	}
}
