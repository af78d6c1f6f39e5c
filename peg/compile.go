package peg

import (
	"strings"
	"unicode/utf8"
)

// compileExpr specializes an expression tree into a parsing closure,
// mirroring Evaluate's semantics but precomputing subexpression closures,
// string lengths, and (for Or) the two optimizations required by
// spec.md §4.3.
func compileExpr(e Expr, resolver RuleResolver, logger Logger) closure {
	switch e := e.(type) {
	case Character:
		return func(c *parseCtx, text string, pos, end int) Result {
			return evalCharacter(pos, end, text)
		}
	case Literal:
		return func(c *parseCtx, text string, pos, end int) Result {
			return evalLiteral(e, text, pos, end)
		}
	case LengthString:
		return func(c *parseCtx, text string, pos, end int) Result {
			return evalLengthString(e, text, pos, end)
		}
	case CharRanges:
		return func(c *parseCtx, text string, pos, end int) Result {
			return evalCharRanges(e, text, pos, end)
		}
	case Nonterminal:
		return func(c *parseCtx, text string, pos, end int) Result {
			return evalNonterminal(c, resolver, e, text, pos, end)
		}
	case *And:
		subs := compileAll(e.Subs, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			return runCompiledAnd(c, e, subs, text, pos, end)
		}
	case *Or:
		return compileOr(e, resolver, logger)
	case *Not:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			if pos >= end {
				return Err(&FailedParse{Expression: e, Position: pos})
			}
			if sub(c, text, pos, end).IsOk() {
				return Err(&FailedParse{Expression: e, Position: pos})
			}
			r, w := utf8.DecodeRuneInString(text[pos:])
			return Ok(pos+w, Strict(r))
		}
	case *NegAhead:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			if sub(c, text, pos, end).IsOk() {
				return Err(&FailedParse{Expression: e, Position: pos})
			}
			return Ok(pos, Strict(nil))
		}
	case *Ahead:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			res := sub(c, text, pos, end)
			if !res.IsOk() {
				return Err(&FailedParse{Expression: e, Position: pos, Detail: res.Kind()})
			}
			return Ok(pos, res.Production)
		}
	case *Star:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			return runCompiledStar(c, sub, text, pos, end)
		}
	case *Plus:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			return runCompiledPlus(c, e, sub, text, pos, end)
		}
	case *Optional:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			res := sub(c, text, pos, end)
			if res.IsOk() {
				return res
			}
			return Ok(pos, Strict(nil))
		}
	case *Predicate:
		sub := compileExpr(e.Sub, resolver, logger)
		return func(c *parseCtx, text string, pos, end int) Result {
			res := sub(c, text, pos, end)
			if !res.IsOk() {
				return Err(&FailedParse{Expression: e, Position: pos, Detail: res.Kind()})
			}
			if e.Func != nil && !e.Func(res.Production.Value()) {
				return Err(&FailedParse{Expression: e, Position: pos})
			}
			return res
		}
	case *FunctionTerminal:
		return func(c *parseCtx, text string, pos, end int) Result {
			return evalFunctionTerminal(e, text, pos, end)
		}
	default:
		return func(c *parseCtx, text string, pos, end int) Result {
			return Err(&FailedParse{Expression: e, Position: pos, Detail: "unknown expression type"})
		}
	}
}

func compileAll(subs []Expr, resolver RuleResolver, logger Logger) []closure {
	out := make([]closure, len(subs))
	for i, s := range subs {
		out[i] = compileExpr(s, resolver, logger)
	}
	return out
}

func runCompiledAnd(c *parseCtx, e *And, subs []closure, text string, pos, end int) Result {
	cur := pos
	prods := make([]*Production, 0, len(subs))
	for _, sub := range subs {
		res := sub(c, text, cur, end)
		if !res.IsOk() {
			return Err(&FailedParse{Expression: e, Position: pos, Detail: res.Kind()})
		}
		prods = append(prods, res.Production)
		cur = res.Position
	}
	return Ok(cur, lazyValues(prods))
}

func runCompiledStar(c *parseCtx, sub closure, text string, pos, end int) Result {
	cur := pos
	prods := []*Production{}
	for {
		res := sub(c, text, cur, end)
		if !res.IsOk() {
			break
		}
		prods = append(prods, res.Production)
		if res.Position == cur {
			break
		}
		cur = res.Position
	}
	return Ok(cur, lazyValues(prods))
}

func runCompiledPlus(c *parseCtx, e *Plus, sub closure, text string, pos, end int) Result {
	first := sub(c, text, pos, end)
	if !first.IsOk() {
		return Err(&FailedParse{Expression: e, Position: pos, Detail: first.Kind()})
	}
	prods := []*Production{first.Production}
	cur := first.Position
	for cur != pos {
		res := sub(c, text, cur, end)
		if !res.IsOk() || res.Position == cur {
			break
		}
		prods = append(prods, res.Production)
		cur = res.Position
	}
	return Ok(cur, lazyValues(prods))
}

// singleCharRange reports whether e matches exactly one character from a
// single range, as either a case-sensitive length-1 Literal or a CharRanges
// with exactly one range.
func singleCharRange(e Expr) (CharRange, bool) {
	switch e := e.(type) {
	case Literal:
		if r, size := utf8.DecodeRuneInString(e.Value); !e.CaseInsensitive && size == len(e.Value) && size > 0 {
			return CharRange{r, r}, true
		}
	case CharRanges:
		if len(e.Ranges) == 1 {
			return e.Ranges[0], true
		}
	}
	return CharRange{}, false
}

// literalValue reports whether e is a plain case-sensitive Literal, for the
// "Or of strings" optimization.
func literalValue(e Expr) (string, bool) {
	if l, ok := e.(Literal); ok && !l.CaseInsensitive {
		return l.Value, true
	}
	return "", false
}

// compileOr applies spec.md §4.3's two required optimizations, falling
// back to the general ordered-choice evaluator otherwise.
func compileOr(e *Or, resolver RuleResolver, logger Logger) closure {
	if ranges, ok := allSingleChars(e.Subs); ok {
		cr := CharRanges{Ranges: ranges}
		return func(c *parseCtx, text string, pos, end int) Result {
			res := evalCharRanges(cr, text, pos, end)
			if !res.IsOk() {
				return Err(&FailedParse{Expression: e, Position: pos})
			}
			return res
		}
	}

	if literals, ok := allLiterals(e.Subs); ok {
		warnShadowedPrefixes(logger, literals)
		return func(c *parseCtx, text string, pos, end int) Result {
			for _, lit := range literals {
				n := len(lit)
				if pos+n <= end && pos+n <= len(text) && text[pos:pos+n] == lit {
					return Ok(pos+n, Strict(lit))
				}
			}
			return Err(&FailedParse{Expression: e, Position: pos})
		}
	}

	subs := compileAll(e.Subs, resolver, logger)
	return func(c *parseCtx, text string, pos, end int) Result {
		return runCompiledOr(c, e, subs, text, pos, end)
	}
}

func allSingleChars(subs []Expr) ([]CharRange, bool) {
	ranges := make([]CharRange, 0, len(subs))
	for _, s := range subs {
		r, ok := singleCharRange(s)
		if !ok {
			return nil, false
		}
		ranges = append(ranges, r)
	}
	return ranges, true
}

func allLiterals(subs []Expr) ([]string, bool) {
	lits := make([]string, 0, len(subs))
	for _, s := range subs {
		v, ok := literalValue(s)
		if !ok {
			return nil, false
		}
		lits = append(lits, v)
	}
	return lits, true
}

// warnShadowedPrefixes logs a warning for every alternative that is a
// proper prefix of a later alternative, since PEG ordered choice commits to
// the first match and the later, longer alternative would be unreachable.
func warnShadowedPrefixes(logger Logger, literals []string) {
	for i, earlier := range literals {
		for j := i + 1; j < len(literals); j++ {
			later := literals[j]
			if len(earlier) < len(later) && strings.HasPrefix(later, earlier) {
				logger.Warnf("esrap: alternative %q is shadowed by earlier alternative %q; it can never match", later, earlier)
			}
		}
	}
}

func runCompiledOr(c *parseCtx, e *Or, subs []closure, text string, pos, end int) Result {
	var deepest Result
	haveDeepest := false
	for _, sub := range subs {
		res := sub(c, text, pos, end)
		if res.IsOk() {
			return res
		}
		if !haveDeepest {
			deepest = res
			haveDeepest = true
			continue
		}
		deepest = deeperFailure(deepest, res)
	}
	if !haveDeepest {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	return Err(&FailedParse{Expression: e, Position: deepest.FailPosition(pos), Detail: deepest.Kind()})
}
