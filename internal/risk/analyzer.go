// Package risk implements the heuristic pipeline that turns document text and a
// precomputed summary into an AnalysisResult.
package risk

import (
	"strings"

	"TOSAnalyzer/internal/domain"
)

// ClauseRule emits Clause when Trigger occurs in the document.
type ClauseRule struct {
	Trigger string
	Clause  domain.SuspiciousClause
}

// DefaultAggressivePhrases is the watch-list for aggressive language.
func DefaultAggressivePhrases() []string {
	return []string{"terminate", "without notice", "no liability", "binding arbitration"}
}

// DefaultClauseRules returns the built-in suspicious clause triggers.
func DefaultClauseRules() []ClauseRule {
	return []ClauseRule{
		{
			Trigger: "retain",
			Clause:  domain.SuspiciousClause{Name: "Data retention clause", Text: "Contains vague retention language."},
		},
	}
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	scorer   Scorer
	phrases  *PhraseMatcher
	triggers *PhraseMatcher
	clauses  []domain.SuspiciousClause
}

type settings struct {
	scorer  Scorer
	phrases []string
	rules   []ClauseRule
}

// Option customizes an Analyzer.
type Option func(*settings)

// WithScorer replaces the static scoring table.
func WithScorer(s Scorer) Option {
	return func(o *settings) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithAggressivePhrases replaces the aggressive language watch-list.
func WithAggressivePhrases(phrases []string) Option {
	return func(o *settings) {
		if phrases != nil {
			o.phrases = phrases
		}
	}
}

// WithClauseRules replaces the suspicious clause triggers.
func WithClauseRules(rules []ClauseRule) Option {
	return func(o *settings) {
		if rules != nil {
			o.rules = rules
		}
	}
}

// NewAnalyzer builds the matchers once; defaults reproduce the built-in tables.
func NewAnalyzer(opts ...Option) *Analyzer {
	s := settings{
		scorer:  NewStaticScorer(nil),
		phrases: DefaultAggressivePhrases(),
		rules:   DefaultClauseRules(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	triggers := make([]string, len(s.rules))
	clauses := make([]domain.SuspiciousClause, len(s.rules))
	for i, rule := range s.rules {
		triggers[i] = rule.Trigger
		clauses[i] = rule.Clause
	}

	return &Analyzer{
		scorer:   s.scorer,
		phrases:  NewPhraseMatcher(s.phrases),
		triggers: NewPhraseMatcher(triggers),
		clauses:  clauses,
	}
}

// ScorerName reports which scoring strategy is in use.
func (a *Analyzer) ScorerName() string {
	return a.scorer.Name()
}

// Analyze scores documentText and bundles it with summary. The only failure is
// domain.ErrEmptyInput for blank text.
func (a *Analyzer) Analyze(documentText, summary string) (domain.AnalysisResult, error) {
	if strings.TrimSpace(documentText) == "" {
		return domain.AnalysisResult{}, domain.ErrEmptyInput
	}

	scores := a.scorer.Score(documentText)
	if scores == nil {
		scores = []domain.RiskDimension{}
	}

	return domain.AnalysisResult{
		Summary:            summary,
		RiskScores:         scores,
		AggressiveLanguage: a.phrases.Match(documentText),
		SuspiciousClauses:  a.detectClauses(documentText),
	}, nil
}

func (a *Analyzer) detectClauses(text string) []domain.SuspiciousClause {
	idx := a.triggers.Indexes(text)
	found := make([]domain.SuspiciousClause, 0, len(idx))
	for _, i := range idx {
		found = append(found, a.clauses[i])
	}
	return found
}
