package aggregate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minWordLen = 3

var stopWords = toSet(
	// English
	"the", "and", "is", "in", "to", "of", "it", "for", "on", "with", "as", "this", "that", "but", "be",
	"at", "by", "not", "are", "from", "or", "an", "if", "would", "could", "should", "have", "has", "had",
	"do", "does", "did", "can", "will", "a", "i", "you", "he", "she", "we", "they", "my", "your", "his",
	"her", "our", "their", "me", "him", "us", "them",
	// Russian
	"нет", "да", "не", "и", "в", "на", "с", "по", "к", "у", "что", "как", "это", "я", "ты", "он", "она",
	"мы", "они", "все", "так", "же", "но", "за", "то", "из", "от", "до", "для", "о", "об", "или", "если",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// words returns the lower-cased runs of Unicode letters in s that are long
// enough and not stop words. Digits and punctuation split words.
func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) < minWordLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// isShout reports whether trimmed content is written in capitals: longer
// than three characters, unchanged by upper-casing, and holding at least one
// Latin or Cyrillic letter. Digit-only and emoji-only messages never shout.
func isShout(trimmed string) bool {
	if utf8.RuneCountInString(trimmed) <= 3 {
		return false
	}
	if trimmed != strings.ToUpper(trimmed) {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsUpper(r) && (unicode.In(r, unicode.Latin, unicode.Cyrillic)) {
			return true
		}
	}
	return false
}
