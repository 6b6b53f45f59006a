package risk

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// PhraseMatcher finds vocabulary phrases inside a text as case-insensitive
// substrings. There is no tokenization, so "binding arbitration" matches inside
// "nonbinding arbitration".
type PhraseMatcher struct {
	matcher  *ahocorasick.Matcher
	phrases  []string
	keywords []string
	targets  [][]int // automaton entry -> indexes into phrases
}

// NewPhraseMatcher builds the automaton once. Blank phrases never match.
func NewPhraseMatcher(phrases []string) *PhraseMatcher {
	m := &PhraseMatcher{phrases: append([]string(nil), phrases...)}

	byKeyword := make(map[string]int, len(phrases))
	for i, phrase := range phrases {
		if strings.TrimSpace(phrase) == "" {
			continue
		}
		kw := normalizePhrase(phrase)
		if idx, ok := byKeyword[kw]; ok {
			m.targets[idx] = append(m.targets[idx], i)
			continue
		}
		byKeyword[kw] = len(m.keywords)
		m.keywords = append(m.keywords, kw)
		m.targets = append(m.targets, []int{i})
	}

	if len(m.keywords) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.keywords)
	}
	return m
}

// Indexes returns the positions (into the constructor's phrase list) of every
// phrase contained in text, in ascending order.
func (m *PhraseMatcher) Indexes(text string) []int {
	if m == nil || m.matcher == nil {
		return nil
	}

	lowered := []byte(normalizePhrase(text))

	hits := m.matcher.MatchThreadSafe(lowered)

	seen := make(map[int]struct{}, len(hits))
	out := make([]int, 0, len(hits))
	for _, hit := range hits {
		if hit < 0 || hit >= len(m.targets) {
			continue
		}
		for _, idx := range m.targets[hit] {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Match returns the matched phrases spelled as in the vocabulary, in vocabulary order.
func (m *PhraseMatcher) Match(text string) []string {
	idx := m.Indexes(text)
	found := make([]string, 0, len(idx))
	for _, i := range idx {
		found = append(found, m.phrases[i])
	}
	return found
}

// Phrases returns a copy of the vocabulary.
func (m *PhraseMatcher) Phrases() []string {
	return append([]string(nil), m.phrases...)
}

func normalizePhrase(s string) string {
	return strings.ToLower(s)
}
