// Package ingest prepares raw listing text for the model: tokenization,
// Unicode normalization, and HTML text extraction.
package ingest

import (
	"strings"
	"unicode"
)

// minTokenRunes is the shortest token kept. Single characters carry no
// lexical signal for category statistics.
const minTokenRunes = 2

// Tokenize splits text into lowercase tokens. A token is a maximal run of
// letters, digits, and underscores; tokens shorter than two runes are
// dropped. Training and judging both tokenize through this function, so a
// keyword learned from a document always matches that same document.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	length := 0

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			current.WriteRune(unicode.ToLower(r))
			length++
		} else {
			if length >= minTokenRunes {
				tokens = append(tokens, current.String())
			}
			current.Reset()
			length = 0
		}
	}

	// Don't forget the last token
	if length >= minTokenRunes {
		tokens = append(tokens, current.String())
	}

	return tokens
}
