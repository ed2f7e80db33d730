package ai

import "strings"

// extractJSON pulls the first JSON object or array out of a model reply.
// Models routinely wrap output in markdown fences or lead with prose, so
// fences are stripped first, then a balanced-delimiter scan finds the
// payload. Returns "" when no candidate is found.
func extractJSON(text string) string {
	text = stripCodeFence(text)

	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start := objStart
	open, close := byte('{'), byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
		open, close = '[', ']'
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}

	return ""
}

func stripCodeFence(text string) string {
	original := text

	start := strings.Index(text, "```json")
	skip := 7
	if start == -1 {
		start = strings.Index(text, "```")
		skip = 3
	}
	if start == -1 {
		return text
	}

	rest := text[start+skip:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return original
	}

	inner := strings.TrimSpace(rest[:end])
	if inner == "" {
		return original
	}
	return inner
}
