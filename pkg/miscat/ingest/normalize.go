package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode NFKC normalization, drops control characters,
// and collapses whitespace runs to single spaces. Merchant feeds mix
// full-width forms, ligatures, and stray control bytes; normalizing first
// keeps the tokenizer's view of the text stable.
func Normalize(text string) string {
	normed := norm.NFKC.String(text)
	fields := strings.FieldsFunc(normed, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	return strings.Join(fields, " ")
}
