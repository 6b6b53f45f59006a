package risk

import (
	"TOSAnalyzer/internal/domain"
)

const maxScore = 5

// Scorer derives the risk dimensions for a document.
type Scorer interface {
	Name() string
	Score(document string) []domain.RiskDimension
}

// DefaultDimensions returns the fixed scoring table.
func DefaultDimensions() []domain.RiskDimension {
	return []domain.RiskDimension{
		{Name: "Privacy", Score: 3, Description: "May involve some data collection."},
		{Name: "Data Sharing", Score: 2, Description: "Limited third-party sharing detected."},
		{Name: "Cancellation", Score: 3, Description: "Unclear process for account deletion."},
		{Name: "User Rights", Score: 4, Description: "Service may claim broad licenses."},
		{Name: "Amendments", Score: 3, Description: "Company can change terms without notice."},
		{Name: "Clarity", Score: 2, Description: "Language is moderately clear."},
	}
}

// StaticScorer returns the same table for every document.
type StaticScorer struct {
	table []domain.RiskDimension
}

var _ Scorer = (*StaticScorer)(nil)

// NewStaticScorer copies table; an empty table falls back to DefaultDimensions.
func NewStaticScorer(table []domain.RiskDimension) *StaticScorer {
	if len(table) == 0 {
		table = DefaultDimensions()
	}
	return &StaticScorer{table: copyDimensions(table)}
}

// Name identifies the scorer inside the registry.
func (s *StaticScorer) Name() string {
	return "static"
}

// Score ignores the document.
func (s *StaticScorer) Score(string) []domain.RiskDimension {
	return copyDimensions(s.table)
}

// KeywordScorer raises a base score by one per distinct indicator found for
// that dimension, capped at 5. Dimensions without indicators keep the base.
type KeywordScorer struct {
	base       []domain.RiskDimension
	indicators map[string]*PhraseMatcher
}

var _ Scorer = (*KeywordScorer)(nil)

// DefaultIndicators lists indicator terms per dimension name.
func DefaultIndicators() map[string][]string {
	return map[string][]string{
		"Privacy":      {"personal information", "personal data", "cookies", "location data", "track"},
		"Data Sharing": {"third part", "affiliates", "sell your", "share your"},
		"Cancellation": {"auto-renew", "automatically renew", "non-refundable", "cancellation fee"},
		"User Rights":  {"royalty-free", "perpetual", "irrevocable", "waive"},
		"Amendments":   {"at any time", "sole discretion", "without notice"},
		"Clarity":      {"notwithstanding", "herein", "hereunder", "thereof"},
	}
}

// NewKeywordScorer builds one matcher per dimension.
func NewKeywordScorer(base []domain.RiskDimension, indicators map[string][]string) *KeywordScorer {
	if len(base) == 0 {
		base = DefaultDimensions()
	}
	if indicators == nil {
		indicators = DefaultIndicators()
	}

	matchers := make(map[string]*PhraseMatcher, len(indicators))
	for name, terms := range indicators {
		matchers[name] = NewPhraseMatcher(terms)
	}
	return &KeywordScorer{base: copyDimensions(base), indicators: matchers}
}

// Name identifies the scorer inside the registry.
func (k *KeywordScorer) Name() string {
	return "keyword"
}

// Score adjusts the base table using the document content.
func (k *KeywordScorer) Score(document string) []domain.RiskDimension {
	out := copyDimensions(k.base)
	for i := range out {
		m, ok := k.indicators[out[i].Name]
		if !ok {
			continue
		}
		out[i].Score = clamp(out[i].Score+len(m.Indexes(document)), 0, maxScore)
	}
	return out
}

func copyDimensions(in []domain.RiskDimension) []domain.RiskDimension {
	out := make([]domain.RiskDimension, len(in))
	copy(out, in)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
