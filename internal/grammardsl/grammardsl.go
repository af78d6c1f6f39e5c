// Package grammardsl is the surface rule-definition syntax spec.md leaves
// as an external collaborator: a YAML grammar description plus the
// rule-definition option table (when/constant/function/identity/text/
// lambda/destructure/around), compiled down to peg.Expr trees and peg.Rule
// values and attached to a peg.Registry.
package grammardsl

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mister-walter/esrap/internal/errutil"
	"github.com/mister-walter/esrap/peg"
)

// FuncRegistry resolves the named callbacks a grammar file references by
// name instead of embedding code: guards for "when", transforms for
// "function"/"lambda"/"destructure", and around-wrappers for "around". A
// grammar file is just data; FuncRegistry is how the host program supplies
// the behavior behind those names.
type FuncRegistry struct {
	Guards      map[string]func() bool
	Functions   map[string]func(production any) any
	Lambdas     map[string]peg.Transform
	Destructure map[string]peg.Transform
	Arounds     map[string]peg.Around
}

// NewFuncRegistry returns an empty, ready-to-populate registry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{
		Guards:      map[string]func() bool{},
		Functions:   map[string]func(production any) any{},
		Lambdas:     map[string]peg.Transform{},
		Destructure: map[string]peg.Transform{},
		Arounds:     map[string]peg.Around{},
	}
}

// charRangeSpec decodes either a one-character scalar ("a") or a two-item
// sequence (["a", "z"]) into a peg.CharRange.
type charRangeSpec struct {
	Lo, Hi rune
}

func (c *charRangeSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		r := []rune(s)
		if len(r) != 1 {
			return fmt.Errorf("grammardsl: char-range scalar must be one character, got %q", s)
		}
		c.Lo, c.Hi = r[0], r[0]
		return nil
	case yaml.SequenceNode:
		var pair []string
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("grammardsl: char-range pair must have two entries")
		}
		lo, hi := []rune(pair[0]), []rune(pair[1])
		if len(lo) != 1 || len(hi) != 1 {
			return fmt.Errorf("grammardsl: char-range pair entries must be one character each")
		}
		c.Lo, c.Hi = lo[0], hi[0]
		return nil
	default:
		return fmt.Errorf("grammardsl: invalid char-range node kind %v", node.Kind)
	}
}

// ExprSpec is the YAML encoding of a peg.Expr: one of its fields is set,
// naming the combinator and carrying its payload. Nothing rejects a node
// that sets more than one combinator key; Build uses the first one set, in
// the field order below.
type ExprSpec struct {
	Char             bool            `yaml:"char,omitempty"`
	Literal          *literalSpec    `yaml:"literal,omitempty"`
	LengthString     *int            `yaml:"length_string,omitempty"`
	CharRanges       []charRangeSpec `yaml:"char_ranges,omitempty"`
	Predicate        *predicateSpec  `yaml:"predicate,omitempty"`
	FunctionTerminal *string         `yaml:"function_terminal,omitempty"`
	Nonterminal      *string         `yaml:"nonterminal,omitempty"`
	And              []ExprSpec      `yaml:"and,omitempty"`
	Or               []ExprSpec      `yaml:"or,omitempty"`
	Not              *ExprSpec       `yaml:"not,omitempty"`
	NegAhead         *ExprSpec       `yaml:"negahead,omitempty"`
	Star             *ExprSpec       `yaml:"star,omitempty"`
	Plus             *ExprSpec       `yaml:"plus,omitempty"`
	Optional         *ExprSpec       `yaml:"optional,omitempty"`
	Ahead            *ExprSpec       `yaml:"ahead,omitempty"`
}

type literalSpec struct {
	Value           string `yaml:"value"`
	CaseInsensitive bool   `yaml:"case_insensitive"`
}

type predicateSpec struct {
	Name string   `yaml:"name"`
	Sub  ExprSpec `yaml:"sub"`
}

// Build converts the spec into a peg.Expr tree. predicates and terminals
// resolve predicate and function-terminal names to the callbacks a host
// program registered for them.
func (s *ExprSpec) Build(funcs *FuncRegistry, predicates map[string]peg.PredicateFunc, terminals map[string]peg.TerminalFunc) (peg.Expr, error) {
	switch {
	case s.Char:
		return peg.Character{}, nil
	case s.Literal != nil:
		return peg.Literal{Value: s.Literal.Value, CaseInsensitive: s.Literal.CaseInsensitive}, nil
	case s.LengthString != nil:
		return peg.LengthString{N: *s.LengthString}, nil
	case s.CharRanges != nil:
		ranges := make([]peg.CharRange, len(s.CharRanges))
		for i, r := range s.CharRanges {
			ranges[i] = peg.CharRange{Lo: r.Lo, Hi: r.Hi}
		}
		return peg.CharRanges{Ranges: ranges}, nil
	case s.Predicate != nil:
		sub, err := s.Predicate.Sub.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		fn, ok := predicates[s.Predicate.Name]
		if !ok {
			return nil, fmt.Errorf("grammardsl: no predicate function registered for %q", s.Predicate.Name)
		}
		return &peg.Predicate{Name: s.Predicate.Name, Sub: sub, Func: fn}, nil
	case s.FunctionTerminal != nil:
		fn, ok := terminals[*s.FunctionTerminal]
		if !ok {
			return nil, fmt.Errorf("grammardsl: no terminal function registered for %q", *s.FunctionTerminal)
		}
		return &peg.FunctionTerminal{Name: *s.FunctionTerminal, Func: fn}, nil
	case s.Nonterminal != nil:
		return peg.Nonterminal{Symbol: *s.Nonterminal}, nil
	case s.And != nil:
		subs, err := buildAll(s.And, funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.And{Subs: subs}, nil
	case s.Or != nil:
		subs, err := buildAll(s.Or, funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.Or{Subs: subs}, nil
	case s.Not != nil:
		sub, err := s.Not.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.Not{Sub: sub}, nil
	case s.NegAhead != nil:
		sub, err := s.NegAhead.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.NegAhead{Sub: sub}, nil
	case s.Star != nil:
		sub, err := s.Star.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.Star{Sub: sub}, nil
	case s.Plus != nil:
		sub, err := s.Plus.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.Plus{Sub: sub}, nil
	case s.Optional != nil:
		sub, err := s.Optional.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.Optional{Sub: sub}, nil
	case s.Ahead != nil:
		sub, err := s.Ahead.Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		return &peg.Ahead{Sub: sub}, nil
	default:
		return nil, fmt.Errorf("grammardsl: expr node names no combinator")
	}
}

func buildAll(specs []ExprSpec, funcs *FuncRegistry, predicates map[string]peg.PredicateFunc, terminals map[string]peg.TerminalFunc) ([]peg.Expr, error) {
	out := make([]peg.Expr, len(specs))
	for i := range specs {
		e, err := specs[i].Build(funcs, predicates, terminals)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// RuleSpec is one rule's YAML definition: its expression plus the
// rule-definition option table.
type RuleSpec struct {
	Symbol string   `yaml:"symbol"`
	Expr   ExprSpec `yaml:"expr"`

	When string `yaml:"when,omitempty"`

	Constant    yaml.Node `yaml:"constant,omitempty"`
	Function    string    `yaml:"function,omitempty"`
	Identity    bool      `yaml:"identity,omitempty"`
	Text        bool      `yaml:"text,omitempty"`
	Lambda      string    `yaml:"lambda,omitempty"`
	Destructure string    `yaml:"destructure,omitempty"`
	Around      string     `yaml:"around,omitempty"`
}

// GrammarSpec is a full YAML grammar file: a list of rule definitions.
type GrammarSpec struct {
	Rules []RuleSpec `yaml:"rules"`
}

// Load parses a YAML document into a GrammarSpec.
func Load(data []byte) (*GrammarSpec, error) {
	var spec GrammarSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errutil.Wrap(err, "grammardsl: parsing grammar document")
	}
	return &spec, nil
}

// Apply builds every rule in spec and attaches it to reg, using funcs (and
// predicates/terminals, keyed the same way as funcs' other maps) to resolve
// named callbacks. Rules are added in file order, so a rule may reference a
// symbol defined later in the same document — Nonterminal resolution goes
// through the registry's symbolic indirection, not Go declaration order.
func Apply(reg *peg.Registry, spec *GrammarSpec, funcs *FuncRegistry, predicates map[string]peg.PredicateFunc, terminals map[string]peg.TerminalFunc) error {
	for _, rs := range spec.Rules {
		expr, err := rs.Expr.Build(funcs, predicates, terminals)
		if err != nil {
			return errutil.Wrapf(err, "grammardsl: rule %q", rs.Symbol)
		}

		rule := &peg.Rule{Expr: expr}
		if err := applyGuard(rule, rs, funcs); err != nil {
			return errutil.Wrapf(err, "grammardsl: rule %q", rs.Symbol)
		}
		transform, err := composeOptions(rs, funcs)
		if err != nil {
			return errutil.Wrapf(err, "grammardsl: rule %q", rs.Symbol)
		}
		rule.Transform = transform

		if rs.Around != "" {
			around, ok := funcs.Arounds[rs.Around]
			if !ok {
				return fmt.Errorf("grammardsl: rule %q: no around wrapper registered for %q", rs.Symbol, rs.Around)
			}
			rule.Around = around
		}

		if _, err := reg.AddRule(rs.Symbol, rule); err != nil {
			return errutil.Wrapf(err, "grammardsl: attaching rule %q", rs.Symbol)
		}
	}
	return nil
}

func applyGuard(rule *peg.Rule, rs RuleSpec, funcs *FuncRegistry) error {
	if rs.When == "" {
		rule.Guard = peg.GuardAlways
		return nil
	}
	switch rs.When {
	case "never":
		rule.Guard = peg.GuardNever
		return nil
	case "always":
		rule.Guard = peg.GuardAlways
		return nil
	default:
		fn, ok := funcs.Guards[rs.When]
		if !ok {
			return fmt.Errorf("no guard function registered for %q", rs.When)
		}
		rule.Guard = peg.GuardFunc
		rule.GuardFunc = fn
		return nil
	}
}

// composeOptions builds the rule's Transform per spec.md §6's option table.
// Only one of constant/function/identity/text/lambda/destructure is
// meaningful per rule; if more than one is set they compose in the textual
// order listed here (constant, then function, then identity, then text,
// then lambda, then destructure), matching ComposeTransform's
// compose(later, earlier) rule.
func composeOptions(rs RuleSpec, funcs *FuncRegistry) (peg.Transform, error) {
	var t peg.Transform

	if !rs.Constant.IsZero() {
		var v any
		if err := rs.Constant.Decode(&v); err != nil {
			return nil, errutil.Wrap(err, "decoding constant value")
		}
		t = peg.ComposeTransform(t, func(any, int, int) any { return v })
	}
	if rs.Function != "" {
		fn, ok := funcs.Functions[rs.Function]
		if !ok {
			return nil, fmt.Errorf("no function registered for %q", rs.Function)
		}
		t = peg.ComposeTransform(t, func(production any, _, _ int) any { return fn(production) })
	}
	if rs.Identity {
		t = peg.ComposeTransform(t, func(production any, _, _ int) any { return production })
	}
	if rs.Text {
		t = peg.ComposeTransform(t, func(production any, _, _ int) any { return flattenText(production) })
	}
	if rs.Lambda != "" {
		fn, ok := funcs.Lambdas[rs.Lambda]
		if !ok {
			return nil, fmt.Errorf("no lambda registered for %q", rs.Lambda)
		}
		t = peg.ComposeTransform(t, fn)
	}
	if rs.Destructure != "" {
		fn, ok := funcs.Destructure[rs.Destructure]
		if !ok {
			return nil, fmt.Errorf("no destructure lambda registered for %q", rs.Destructure)
		}
		t = peg.ComposeTransform(t, fn)
	}
	return t, nil
}

// flattenText implements the "text" option: flatten-and-concatenate over a
// tree of strings/runes/[]any, the way a rule tagged `text` collapses its
// matched subtree back into the substring it covered.
func flattenText(production any) string {
	var b strings.Builder
	writeText(&b, production)
	return b.String()
}

func writeText(b *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		return
	case string:
		b.WriteString(v)
	case rune:
		b.WriteRune(v)
	case []any:
		for _, e := range v {
			writeText(b, e)
		}
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
