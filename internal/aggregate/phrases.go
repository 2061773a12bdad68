package aggregate

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// PhraseMatcher counts case-insensitive occurrences of a fixed phrase list
// in a single pass over each message.
type PhraseMatcher struct {
	machine *goahocorasick.Machine
}

// NewPhraseMatcher builds the automaton. It returns nil, nil when phrases
// holds nothing but blanks.
func NewPhraseMatcher(phrases []string) (*PhraseMatcher, error) {
	normalized := lo.Uniq(lo.FilterMap(phrases, func(p string, _ int) (string, bool) {
		p = strings.ToLower(strings.TrimSpace(p))
		return p, p != ""
	}))
	if len(normalized) == 0 {
		return nil, nil
	}

	patterns := make([][]rune, len(normalized))
	for i, p := range normalized {
		patterns[i] = []rune(p)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &PhraseMatcher{machine: m}, nil
}

// Count returns phrase -> occurrences in content.
func (p *PhraseMatcher) Count(content string) map[string]int {
	if p == nil || content == "" {
		return nil
	}
	runes := []rune(strings.Map(unicode.ToLower, content))
	terms := p.machine.MultiPatternSearch(runes, false)
	if len(terms) == 0 {
		return nil
	}
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[string(t.Word)]++
	}
	return counts
}
