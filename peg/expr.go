// Package peg implements a packrat parser for Parsing Expression Grammars
// (PEGs), including Warth et al.'s algorithm for direct and indirect
// left-recursive rules.
package peg

import "fmt"

// Expr is a parsing expression. The concrete types below are the only
// implementations; the evaluator and compiler switch on concrete type the
// same way a generated parser switches on a tagged union.
type Expr interface {
	exprNode()
}

// Character matches any single code point.
type Character struct{}

// Literal matches a terminal string. The zero value is case-sensitive;
// CaseInsensitive is the marked, opt-in variant.
type Literal struct {
	Value           string
	CaseInsensitive bool
}

// LengthString matches any N characters. ExprString renders it as
// `(string N)`; internal/grammardsl builds it from a `length_string: N`
// node.
type LengthString struct {
	N int
}

// CharRange is either a single character (Lo == Hi) or an inclusive range.
type CharRange struct {
	Lo, Hi rune
}

// CharRanges matches one character covered by any of Ranges.
type CharRanges struct {
	Ranges []CharRange
}

// Predicate matches Sub, then applies the user function Name to the
// production; the match succeeds iff the function returns true.
type Predicate struct {
	Name string
	Sub  Expr
	Func PredicateFunc
}

// PredicateFunc is the user-supplied semantic predicate callback.
type PredicateFunc func(production any) bool

// FunctionTerminal delegates matching entirely to a user function following
// the terminal-function protocol (see evalFunctionTerminal in eval.go).
type FunctionTerminal struct {
	Name string
	Func TerminalFunc
}

// TerminalFunc is the user-supplied terminal-matching callback. endPosition
// is nil to mean "null" (see the function-terminal protocol in
// evalFunctionTerminal in eval.go): the callee didn't advance the position itself.
type TerminalFunc func(text string, position, end int) (production any, endPosition *int, flag any)

// Nonterminal references another rule by symbol.
type Nonterminal struct {
	Symbol string
}

// And is an ordered sequence; all subs must match.
type And struct {
	Subs []Expr
}

// Or is ordered choice; the first matching sub wins.
type Or struct {
	Subs []Expr
}

// Not consumes one character if Sub fails to match at the current position;
// it is NOT zero-width (unlike NegAhead). Fails if Sub matches, or if
// position is already at end.
type Not struct {
	Sub Expr
}

// NegAhead is the zero-width negative lookahead "!e": succeeds with no
// consumption iff Sub fails.
type NegAhead struct {
	Sub Expr
}

// Star is greedy zero-or-more repetition; never fails.
type Star struct {
	Sub Expr
}

// Plus is greedy one-or-more repetition; fails if Sub never matches.
type Plus struct {
	Sub Expr
}

// Optional succeeds with empty production at the original position when Sub
// fails.
type Optional struct {
	Sub Expr
}

// Ahead is the zero-width positive lookahead "&e".
type Ahead struct {
	Sub Expr
}

func (Character) exprNode()         {}
func (Literal) exprNode()           {}
func (LengthString) exprNode()      {}
func (CharRanges) exprNode()        {}
func (*Predicate) exprNode()        {}
func (*FunctionTerminal) exprNode() {}
func (Nonterminal) exprNode()       {}
func (*And) exprNode()              {}
func (*Or) exprNode()               {}
func (*Not) exprNode()              {}
func (*NegAhead) exprNode()         {}
func (*Star) exprNode()             {}
func (*Plus) exprNode()             {}
func (*Optional) exprNode()         {}
func (*Ahead) exprNode()            {}

// reservedPredicateNames excludes the combinator vocabulary from the
// semantic-predicate namespace, per spec: "predicate names must be symbols
// outside a reserved set of combinator names".
var reservedPredicateNames = map[string]bool{
	"character":         true,
	"literal":           true,
	"string":            true,
	"char-ranges":       true,
	"predicate":         true,
	"function-terminal": true,
	"nonterminal":       true,
	"and":               true,
	"or":                true,
	"not":               true,
	"negahead":          true,
	"star":              true,
	"plus":              true,
	"optional":          true,
	"ahead":             true,
}

// Validate type-checks an expression tree for well-formedness: CharRanges
// entries must be valid ranges, predicate names must not collide with the
// combinator vocabulary, and fixed-arity combinators must have a non-nil
// sub-expression.
func Validate(e Expr) error {
	switch e := e.(type) {
	case Character, Literal, LengthString, Nonterminal:
		return nil
	case CharRanges:
		for _, r := range e.Ranges {
			if r.Lo > r.Hi {
				return &InvalidExpressionError{Expression: e, Reason: fmt.Sprintf("invalid range %q-%q", r.Lo, r.Hi)}
			}
		}
		return nil
	case *Predicate:
		if reservedPredicateNames[e.Name] {
			return &InvalidExpressionError{Expression: e, Reason: fmt.Sprintf("predicate name %q collides with combinator vocabulary", e.Name)}
		}
		return Validate(e.Sub)
	case *FunctionTerminal:
		if e.Func == nil {
			return &InvalidExpressionError{Expression: e, Reason: "function-terminal has no function"}
		}
		return nil
	case *And:
		if len(e.Subs) == 0 {
			return &InvalidExpressionError{Expression: e, Reason: "and requires at least one sub-expression"}
		}
		for _, s := range e.Subs {
			if err := Validate(s); err != nil {
				return err
			}
		}
		return nil
	case *Or:
		if len(e.Subs) == 0 {
			return &InvalidExpressionError{Expression: e, Reason: "or requires at least one sub-expression"}
		}
		for _, s := range e.Subs {
			if err := Validate(s); err != nil {
				return err
			}
		}
		return nil
	case *Not:
		if e.Sub == nil {
			return &InvalidExpressionError{Expression: e, Reason: "not requires a sub-expression"}
		}
		return Validate(e.Sub)
	case *NegAhead:
		if e.Sub == nil {
			return &InvalidExpressionError{Expression: e, Reason: "negahead requires a sub-expression"}
		}
		return Validate(e.Sub)
	case *Star:
		if e.Sub == nil {
			return &InvalidExpressionError{Expression: e, Reason: "star requires a sub-expression"}
		}
		return Validate(e.Sub)
	case *Plus:
		if e.Sub == nil {
			return &InvalidExpressionError{Expression: e, Reason: "plus requires a sub-expression"}
		}
		return Validate(e.Sub)
	case *Optional:
		if e.Sub == nil {
			return &InvalidExpressionError{Expression: e, Reason: "optional requires a sub-expression"}
		}
		return Validate(e.Sub)
	case *Ahead:
		if e.Sub == nil {
			return &InvalidExpressionError{Expression: e, Reason: "ahead requires a sub-expression"}
		}
		return Validate(e.Sub)
	default:
		return &InvalidExpressionError{Expression: e, Reason: fmt.Sprintf("unknown expression type %T", e)}
	}
}

// ExprString renders e in a PEG-like notation, for error messages and the
// grammar pretty-printer in internal/describe.
func ExprString(e Expr) string {
	switch e := e.(type) {
	case Character:
		return "."
	case Literal:
		if e.CaseInsensitive {
			return fmt.Sprintf("%qi", e.Value)
		}
		return fmt.Sprintf("%q", e.Value)
	case LengthString:
		return fmt.Sprintf("(string %d)", e.N)
	case CharRanges:
		s := "["
		for _, r := range e.Ranges {
			if r.Lo == r.Hi {
				s += string(r.Lo)
			} else {
				s += string(r.Lo) + "-" + string(r.Hi)
			}
		}
		return s + "]"
	case *Predicate:
		return fmt.Sprintf("(%s %s)", e.Name, ExprString(e.Sub))
	case *FunctionTerminal:
		return fmt.Sprintf("(function %s)", e.Name)
	case Nonterminal:
		return e.Symbol
	case *And:
		s := "("
		for i, sub := range e.Subs {
			if i > 0 {
				s += " "
			}
			s += ExprString(sub)
		}
		return s + ")"
	case *Or:
		s := "("
		for i, sub := range e.Subs {
			if i > 0 {
				s += " / "
			}
			s += ExprString(sub)
		}
		return s + ")"
	case *Not:
		return "~" + ExprString(e.Sub)
	case *NegAhead:
		return "!" + ExprString(e.Sub)
	case *Star:
		return ExprString(e.Sub) + "*"
	case *Plus:
		return ExprString(e.Sub) + "+"
	case *Optional:
		return ExprString(e.Sub) + "?"
	case *Ahead:
		return "&" + ExprString(e.Sub)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
