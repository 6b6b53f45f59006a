package domain

import "errors"

// ErrEmptyInput is returned when the document text is blank after trimming.
var ErrEmptyInput = errors.New("empty text")

// RiskDimension is a named category the document is scored along (0..5).
type RiskDimension struct {
	Name        string `json:"name" yaml:"name"`
	Score       int    `json:"score" yaml:"score"`
	Description string `json:"description" yaml:"description"`
}

// SuspiciousClause flags a clause category triggered by a keyword.
type SuspiciousClause struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// AnalysisResult is the per-request output of the risk pipeline.
// It is built once and never stored.
type AnalysisResult struct {
	Summary            string             `json:"summary"`
	RiskScores         []RiskDimension    `json:"riskScores"`
	AggressiveLanguage []string           `json:"aggressiveLanguage"`
	SuspiciousClauses  []SuspiciousClause `json:"suspiciousClauses"`
}
