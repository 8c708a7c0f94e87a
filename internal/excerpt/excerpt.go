// Package excerpt estimates reading time and builds short summaries of post
// text for listings.
package excerpt

import (
	"math"
	"strings"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

// CountWords gives the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingMinutes rounds the reading time of text up to whole minutes, with
// a floor of one minute for any non-empty text.
func ReadingMinutes(text string) int {
	words := CountWords(text)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}

// Summarize returns the leading sentences of text that fit in maxWords. If
// the first sentence alone is longer, it is cut at maxWords and ends in "…".
func Summarize(text string, maxWords int) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || maxWords <= 0 {
		return ""
	}
	if CountWords(text) <= maxWords {
		return text
	}

	var out strings.Builder
	words := 0
	for _, sent := range splitSentences(text) {
		n := CountWords(sent)
		if words+n > maxWords {
			break
		}
		if out.Len() > 0 {
			out.WriteString(" ")
		}
		out.WriteString(sent)
		words += n
	}
	if out.Len() > 0 {
		return out.String()
	}

	fields := strings.Fields(text)
	return strings.Join(fields[:maxWords], " ") + "…"
}

// splitSentences does basic sentence splitting on terminal punctuation
// followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}
