// Package text prepares post content for topic modelling: tokenizing,
// stopword filtering and bag-of-words encoding.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// word runs of letters; digits and punctuation separate tokens
var wordPattern = regexp.MustCompile(`[\p{L}\p{M}]+`)

// Tokenizer lowercases text, splits it into alphabetic words and drops
// stopwords and tokens outside [MinLen, MaxLen] runes.
type Tokenizer struct {
	Stopwords StopSet
	MinLen    int
	MaxLen    int
}

// NewTokenizer uses the usual 2..15 rune bounds.
func NewTokenizer(stop StopSet) Tokenizer {
	return Tokenizer{Stopwords: stop, MinLen: 2, MaxLen: 15}
}

func (t Tokenizer) Tokenize(doc string) []string {
	words := wordPattern.FindAllString(strings.ToLower(doc), -1)
	out := words[:0]
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n < t.MinLen || (t.MaxLen > 0 && n > t.MaxLen) {
			continue
		}
		if t.Stopwords.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}
