package describe

import (
	"strings"
	"testing"

	"github.com/mister-walter/esrap/peg"
)

func newTestRegistry(t *testing.T) *peg.Registry {
	t.Helper()
	reg := peg.NewRegistry(nil)
	if _, err := reg.AddRule("digit", &peg.Rule{Expr: peg.CharRanges{Ranges: []peg.CharRange{{Lo: '0', Hi: '9'}}}}); err != nil {
		t.Fatalf("AddRule(digit): %v", err)
	}
	if _, err := reg.AddRule("digits", &peg.Rule{Expr: &peg.Plus{Sub: peg.Nonterminal{Symbol: "digit"}}}); err != nil {
		t.Fatalf("AddRule(digits): %v", err)
	}
	return reg
}

func TestGrammarRendersEachRule(t *testing.T) {
	reg := newTestRegistry(t)
	out, err := Grammar(reg, Options{SortSymbols: true})
	if err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	if !strings.Contains(out, "digit <-") || !strings.Contains(out, "digits <-") {
		t.Fatalf("expected both rules rendered, got:\n%s", out)
	}
}

func TestGrammarPatternFiltersSymbols(t *testing.T) {
	reg := newTestRegistry(t)
	out, err := Grammar(reg, Options{Pattern: "digit", SortSymbols: true})
	if err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	if !strings.Contains(out, "digit <-") {
		t.Fatalf("expected \"digit\" rendered, got:\n%s", out)
	}
	if strings.Contains(out, "digits <-") {
		t.Fatalf("expected \"digits\" filtered out by exact-match pattern, got:\n%s", out)
	}
}

func TestGrammarPatternGlob(t *testing.T) {
	reg := newTestRegistry(t)
	out, err := Grammar(reg, Options{Pattern: "digit*", SortSymbols: true})
	if err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	if !strings.Contains(out, "digit <-") || !strings.Contains(out, "digits <-") {
		t.Fatalf("expected both rules matched by \"digit*\", got:\n%s", out)
	}
}

func TestRuleUndefined(t *testing.T) {
	reg := peg.NewRegistry(nil)
	if got := Rule(reg, "missing"); got != "<undefined>" {
		t.Fatalf("Rule(missing) = %q, want \"<undefined>\"", got)
	}
}
