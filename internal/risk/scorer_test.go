package risk_test

import (
	"reflect"
	"testing"

	"TOSAnalyzer/internal/domain"
	"TOSAnalyzer/internal/risk"
)

func TestPhraseMatcher_Indexes(t *testing.T) {
	t.Parallel()

	m := risk.NewPhraseMatcher([]string{"b", "", "A", "a", "cd"})

	got := m.Indexes("xxAyyb")
	want := []int{0, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Indexes = %v, want %v", got, want)
	}

	if got := m.Indexes("zzz"); len(got) != 0 {
		t.Fatalf("expected no hits, got %v", got)
	}
}

func TestPhraseMatcher_EmptyVocabulary(t *testing.T) {
	t.Parallel()

	m := risk.NewPhraseMatcher(nil)
	if got := m.Match("anything at all"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestKeywordScorer(t *testing.T) {
	t.Parallel()

	scorer := risk.NewKeywordScorer(nil, map[string][]string{
		"Privacy":     {"cookies", "personal data"},
		"User Rights": {"perpetual", "irrevocable", "royalty-free"},
	})

	dims := scorer.Score("We use COOKIES. You grant a perpetual, irrevocable, royalty-free license.")
	byName := map[string]int{}
	for _, d := range dims {
		byName[d.Name] = d.Score
	}

	if byName["Privacy"] != 4 {
		t.Fatalf("Privacy = %d, want 4", byName["Privacy"])
	}
	if byName["User Rights"] != 5 {
		t.Fatalf("User Rights = %d, want capped 5", byName["User Rights"])
	}
	if byName["Clarity"] != 2 {
		t.Fatalf("Clarity = %d, want base 2", byName["Clarity"])
	}
}

func TestStaticScorer_CustomTable(t *testing.T) {
	t.Parallel()

	table := []domain.RiskDimension{{Name: "Only", Score: 1, Description: "d"}}
	scorer := risk.NewStaticScorer(table)
	table[0].Score = 5

	got := scorer.Score("ignored")
	if len(got) != 1 || got[0].Score != 1 {
		t.Fatalf("static scorer kept caller's slice: %+v", got)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := risk.DefaultRegistry()
	if !reflect.DeepEqual(reg.Names(), []string{"keyword", "static"}) {
		t.Fatalf("unexpected names: %v", reg.Names())
	}

	s, err := reg.Resolve("static")
	if err != nil {
		t.Fatalf("Resolve static: %v", err)
	}
	if s.Name() != "static" {
		t.Fatalf("resolved %s", s.Name())
	}

	if _, err := reg.Resolve("llm"); err == nil {
		t.Fatal("expected error for unknown scorer")
	}
}
