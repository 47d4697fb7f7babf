package llm

import "strings"

// maxScan bounds how much model output is inspected.
const maxScan = 1 << 20

// StripCodeFences removes a surrounding ```json ... ``` block if present.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "```")
	if i < 0 {
		return s
	}
	body := s[i+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "[{") {
		body = body[nl+1:]
	}
	if j := strings.Index(body, "```"); j >= 0 {
		body = body[:j]
	}
	return strings.TrimSpace(body)
}

// ExtractArray returns the first balanced [...] region of s.
func ExtractArray(s string) (string, bool) { return extract(s, '[', ']') }

// ExtractObject returns the first balanced {...} region of s.
func ExtractObject(s string) (string, bool) { return extract(s, '{', '}') }

// extract finds, in one pass, the earliest-opening bracket that closes.
// Brackets inside JSON string literals are skipped.
func extract(s string, open, close byte) (string, bool) {
	s = StripCodeFences(s)
	if len(s) > maxScan {
		s = s[:maxScan]
	}
	var stack []int
	start, end := -1, -1
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = len(stack) > 0
		case open:
			stack = append(stack, i)
		case close:
			if len(stack) == 0 {
				continue
			}
			from := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if start < 0 || from < start {
				start, end = from, i
			}
			if len(stack) == 0 {
				return s[start : end+1], true
			}
		}
	}
	if start < 0 {
		return "", false
	}
	return s[start : end+1], true
}
