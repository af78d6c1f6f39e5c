// Package describe implements the grammar pretty-printer spec.md leaves as
// an external collaborator: rendering a registry's rules back out as
// PEG-like text, with optional glob-based symbol filtering so callers can
// print one subgrammar out of a large registry.
package describe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mister-walter/esrap/peg"
)

// Registry is the subset of peg.Registry this package needs, so tests can
// supply a fake without spinning up a full registry.
type Registry interface {
	Symbols() []string
	FindRule(symbol string) *peg.Rule
}

// Options controls Grammar's output.
type Options struct {
	// Pattern, when non-empty, is a glob (per github.com/gobwas/glob syntax)
	// restricting which symbols get rendered. Undefined-but-referenced
	// symbols matching the pattern are listed too, without a body.
	Pattern string

	// SortSymbols renders rules in sorted-symbol order instead of the
	// registry's undefined map iteration order. Mostly useful for tests and
	// diffable output; off in a zero Options value (the CLI's --sorted flag
	// turns it on by default).
	SortSymbols bool
}

// Grammar renders reg as PEG-like source text, one "symbol <- expr" line
// per defined rule, sorted or filtered per opts.
func Grammar(reg Registry, opts Options) (string, error) {
	var g glob.Glob
	if opts.Pattern != "" {
		var err error
		g, err = glob.Compile(opts.Pattern)
		if err != nil {
			return "", fmt.Errorf("describe: invalid pattern %q: %w", opts.Pattern, err)
		}
	}

	symbols := reg.Symbols()
	if opts.SortSymbols {
		sort.Strings(symbols)
	}

	var b strings.Builder
	for _, sym := range symbols {
		if g != nil && !g.Match(sym) {
			continue
		}
		rule := reg.FindRule(sym)
		if rule == nil {
			fmt.Fprintf(&b, "%s <- <undefined>\n", sym)
			continue
		}
		fmt.Fprintf(&b, "%s <- %s\n", sym, peg.ExprString(rule.Expr))
	}
	return b.String(), nil
}

// Rule renders a single rule's expression, or "<undefined>" if reg has no
// rule attached to symbol.
func Rule(reg Registry, symbol string) string {
	rule := reg.FindRule(symbol)
	if rule == nil {
		return "<undefined>"
	}
	return peg.ExprString(rule.Expr)
}
