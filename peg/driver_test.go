package peg

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func digitsToInt(production any, _, _ int) any {
	digits := production.([]any)
	var b strings.Builder
	for _, d := range digits {
		b.WriteRune(d.(rune))
	}
	n, _ := strconv.Atoi(b.String())
	return n
}

// S1: direct left recursion, arithmetic expression.
// expr <- expr "+" num / num ; num <- [0-9]+
func TestDirectLeftRecursionArithmetic(t *testing.T) {
	driver := NewDriver(nil)

	numRule := &Rule{
		Expr:      &Plus{Sub: CharRanges{Ranges: []CharRange{{Lo: '0', Hi: '9'}}}},
		Transform: digitsToInt,
	}
	if _, err := driver.AddRule("num", numRule); err != nil {
		t.Fatalf("AddRule(num): %v", err)
	}

	exprRule := &Rule{
		Expr: &Or{Subs: []Expr{
			&And{Subs: []Expr{Nonterminal{Symbol: "expr"}, Literal{Value: "+"}, Nonterminal{Symbol: "num"}}},
			Nonterminal{Symbol: "num"},
		}},
	}
	if _, err := driver.AddRule("expr", exprRule); err != nil {
		t.Fatalf("AddRule(expr): %v", err)
	}

	value, rest, ok, err := driver.Parse(Nonterminal{Symbol: "expr"}, "1+2+3", 0, 5, false)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !ok || rest != nil {
		t.Fatalf("expected ok with no rest, got ok=%v rest=%v", ok, rest)
	}

	want := []any{[]any{1, "+", 2}, "+", 3}
	if diff := cmp.Diff(want, value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

// S2: indirect left recursion. a <- b "x" / "a" ; b <- a "y" / "b".
//
// The corrected input is "ayx", not the literal "axy" from a worked
// example elsewhere: under this grammar "a" is always immediately
// followed by "y" (a's second alternative feeding b's first, a "y"), and
// only then by "x" (b feeding a's first, b "x"), so "axy" can only ever
// consume the leading "a" and never grows.
// "ayx" is the input that actually exercises indirect left-recursive
// growth to completion under these rules.
func TestIndirectLeftRecursion(t *testing.T) {
	newDriver := func() *Driver {
		driver := NewDriver(nil)
		aRule := &Rule{Expr: &Or{Subs: []Expr{
			&And{Subs: []Expr{Nonterminal{Symbol: "b"}, Literal{Value: "x"}}},
			Literal{Value: "a"},
		}}}
		bRule := &Rule{Expr: &Or{Subs: []Expr{
			&And{Subs: []Expr{Nonterminal{Symbol: "a"}, Literal{Value: "y"}}},
			Literal{Value: "b"},
		}}}
		if _, err := driver.AddRule("a", aRule); err != nil {
			t.Fatalf("AddRule(a): %v", err)
		}
		if _, err := driver.AddRule("b", bRule); err != nil {
			t.Fatalf("AddRule(b): %v", err)
		}
		return driver
	}

	t.Run("ayx grows to consume all three characters", func(t *testing.T) {
		driver := newDriver()
		_, rest, ok, err := driver.Parse(Nonterminal{Symbol: "a"}, "ayx", 0, 3, false)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if !ok || rest != nil {
			t.Fatalf("expected full-consuming ok, got ok=%v rest=%v", ok, rest)
		}
	})

	t.Run("a alone succeeds", func(t *testing.T) {
		driver := newDriver()
		_, rest, ok, err := driver.Parse(Nonterminal{Symbol: "a"}, "a", 0, 1, false)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if !ok || rest != nil {
			t.Fatalf("expected ok, got ok=%v rest=%v", ok, rest)
		}
	})

	t.Run("byx fails", func(t *testing.T) {
		driver := newDriver()
		_, _, ok, err := driver.Parse(Nonterminal{Symbol: "a"}, "byx", 0, 3, true)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if ok {
			t.Fatalf("expected failure on \"byx\"")
		}
	})
}

// S6: incomplete parse.
func TestIncompleteParse(t *testing.T) {
	driver := NewDriver(nil)
	if _, err := driver.AddRule("r", &Rule{Expr: Literal{Value: "ab"}}); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	_, _, ok, err := driver.Parse(Nonterminal{Symbol: "r"}, "abc", 0, 3, false)
	if ok || err == nil {
		t.Fatalf("expected IncompleteParseError, got ok=%v err=%v", ok, err)
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if _, ok := pe.Cause.(*IncompleteParseError); !ok {
		t.Fatalf("expected IncompleteParseError cause, got %T", pe.Cause)
	}

	value, rest, ok, err := driver.Parse(Nonterminal{Symbol: "r"}, "abc", 0, 3, true)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !ok || rest == nil || *rest != 2 || value != "ab" {
		t.Fatalf("expected (\"ab\", 2, true), got (%v, %v, %v)", value, rest, ok)
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}
