package peg

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		expr    Expr
		wantErr bool
	}{
		"character ok":       {Character{}, false},
		"literal ok":         {Literal{Value: "foo"}, false},
		"nonterminal ok":     {Nonterminal{Symbol: "x"}, false},
		"bad char range":     {CharRanges{Ranges: []CharRange{{Lo: 'z', Hi: 'a'}}}, true},
		"good char range":    {CharRanges{Ranges: []CharRange{{Lo: 'a', Hi: 'z'}}}, false},
		"and needs subs":     {&And{}, true},
		"or needs subs":      {&Or{}, true},
		"not needs sub":      {&Not{}, true},
		"star with sub ok":   {&Star{Sub: Character{}}, false},
		"predicate reserved": {&Predicate{Name: "and", Sub: Character{}}, true},
		"predicate ok":       {&Predicate{Name: "is-vowel", Sub: Character{}}, false},
		"function no func":   {&FunctionTerminal{Name: "f"}, true},
		"unknown type":       {fakeExpr{}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := Validate(tc.expr)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate(%v) error = %v, wantErr %v", tc.expr, err, tc.wantErr)
			}
		})
	}
}

type fakeExpr struct{}

func (fakeExpr) exprNode() {}

func TestExprString(t *testing.T) {
	cases := map[string]struct {
		expr Expr
		want string
	}{
		"character": {Character{}, "."},
		"literal":   {Literal{Value: "foo"}, `"foo"`},
		"nonterminal": {Nonterminal{Symbol: "digit"}, "digit"},
		"star":      {&Star{Sub: Character{}}, ".*"},
		"negahead":  {&NegAhead{Sub: Literal{Value: "x"}}, `!"x"`},
		"or": {
			&Or{Subs: []Expr{Literal{Value: "if"}, Literal{Value: "i"}}},
			`("if" / "i")`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := ExprString(tc.expr); got != tc.want {
				t.Fatalf("ExprString() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExprStringAndSequence(t *testing.T) {
	e := &And{Subs: []Expr{Nonterminal{Symbol: "a"}, Literal{Value: "+"}, Nonterminal{Symbol: "b"}}}
	got := ExprString(e)
	if !strings.HasPrefix(got, "(a") || !strings.HasSuffix(got, "b)") {
		t.Fatalf("ExprString(and) = %q, want a prefix/suffix sequence", got)
	}
}
