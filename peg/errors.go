package peg

import (
	"fmt"
)

// InvalidExpressionError is raised by Validate when an expression tree is
// malformed (bad char range, reserved predicate name, missing required
// sub-expression).
type InvalidExpressionError struct {
	Expression Expr
	Reason     string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %s: %s", ExprString(e.Expression), e.Reason)
}

// UndefinedRuleError is raised when a Nonterminal names a symbol with no
// attached rule: the evaluator panics with it (see undefinedClosure in
// rule.go and evalNonterminal in eval.go) and Driver.Parse recovers it into
// a returned error. ChangeRule also returns it for an undefined symbol.
type UndefinedRuleError struct {
	Symbol string
}

func (e *UndefinedRuleError) Error() string {
	return fmt.Sprintf("undefined rule: %s", e.Symbol)
}

// ParseError is the error surface raised by Parse when junkAllowed is false
// and the parse did not succeed cleanly. It always carries the input text
// and the offending position.
type ParseError struct {
	Text     string
	Position int
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// SimpleParseError describes an ordinary failed match: the message lists
// the chain of expressions (from the FailedParse detail chain) that could
// not be matched, deepest first.
type SimpleParseError struct {
	Message string
}

func (e *SimpleParseError) Error() string { return e.Message }

// IncompleteParseError is raised when a parse succeeds but does not consume
// the whole requested span and junkAllowed is false.
type IncompleteParseError struct {
	Position int
}

func (e *IncompleteParseError) Error() string {
	return fmt.Sprintf("incomplete parse: unconsumed input remains at position %d", e.Position)
}

// InactiveRuleError is raised when the top-level expression resolves to a
// rule whose guard reported it inactive.
type InactiveRuleError struct {
	Symbol string
}

func (e *InactiveRuleError) Error() string {
	return fmt.Sprintf("rule not active: %s", e.Symbol)
}

// LeftRecursionError is raised instead of being silently handled when the
// engine's left-recursion policy is PolicyError and a left-recursive cycle
// is detected.
type LeftRecursionError struct {
	Nonterminal string
	Path        []string
}

func (e *LeftRecursionError) Error() string {
	return fmt.Sprintf("left recursion detected in rule %s (path: %v)", e.Nonterminal, e.Path)
}

// RuleAlreadyAttachedError is raised by AddRule when the rule argument is
// already attached to a different symbol.
type RuleAlreadyAttachedError struct {
	Symbol string
}

func (e *RuleAlreadyAttachedError) Error() string {
	return fmt.Sprintf("rule is already attached to symbol %s", e.Symbol)
}

// RuleHasReferentsError is raised by RemoveRule when force is false and the
// cell being removed still has live referents.
type RuleHasReferentsError struct {
	Symbol    string
	Referents []string
}

func (e *RuleHasReferentsError) Error() string {
	return fmt.Sprintf("rule %s has live referents %v; remove with force to override", e.Symbol, e.Referents)
}

// describeFailChain walks a FailedParse's Detail chain, formatting the
// deepest expression that could not be parsed first, matching the driver's
// contract in spec.md §4.1.
func describeFailChain(fp *FailedParse) string {
	msg := fmt.Sprintf("could not parse %s at position %d", ExprString(fp.Expression), fp.Position)
	switch d := fp.Detail.(type) {
	case *FailedParse:
		return describeFailChain(d) + "; " + msg
	case string:
		return d + "; " + msg
	case error:
		return d.Error() + "; " + msg
	default:
		return msg
	}
}
