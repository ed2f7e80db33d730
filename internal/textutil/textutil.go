package textutil

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var whitespace = regexp.MustCompile(`\s+`)

// spanishAccents are characters that almost never appear in English text.
var spanishAccents = []string{"á", "é", "í", "ó", "ú", "ñ", "¿", "¡"}

// spanishWords are high-frequency Spanish function words matched as
// whole words (surrounded by spaces) after lowercasing.
var spanishWords = []string{"el", "la", "los", "las", "de", "en", "que", "por", "para"}

// IsSpanish applies a cheap heuristic: accented characters or common
// Spanish function words. False positives and negatives are acceptable;
// this only decides whether content is routed through translation.
func IsSpanish(text string) bool {
	for _, ch := range spanishAccents {
		if strings.Contains(text, ch) {
			return true
		}
	}
	lower := strings.ToLower(text)
	for _, word := range spanishWords {
		if strings.Contains(lower, " "+word+" ") {
			return true
		}
	}
	return false
}

// FallbackSummary truncates content to the first 200 characters with an
// ellipsis. Used when classification degrades and no model summary exists.
func FallbackSummary(content string) string {
	runes := []rune(content)
	if len(runes) <= 200 {
		return content + "..."
	}
	return string(runes[:200]) + "..."
}

// RemoveURLs strips all HTTP(S) URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// CleanText unescapes HTML entities, removes URLs and squeezes whitespace.
// Raw social content goes through this before it is placed into a prompt.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = RemoveURLs(decoded)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// GenerateTitle derives a title from the first sentence of text, capped
// at maxWords words. Social posts frequently arrive without one.
func GenerateTitle(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	withoutURLs := RemoveURLs(text)
	first := withoutURLs
	if end := strings.IndexAny(withoutURLs, ".!?"); end > 0 {
		first = withoutURLs[:end]
	}

	words := strings.Fields(first)
	if len(words) == 0 {
		return ""
	}
	if maxWords > 0 && len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

// BuildItemID derives the stored document ID from the source URL, making
// the uniqueness invariant structural: two items sharing a URL map to the
// same ID and the second write can never create a second document.
func BuildItemID(sourceURL string) string {
	s := sha1.Sum([]byte(strings.TrimSpace(sourceURL)))
	return hex.EncodeToString(s[:])
}
