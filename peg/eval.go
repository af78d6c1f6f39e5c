package peg

import (
	"strings"
	"unicode/utf8"
)

// RuleResolver resolves a nonterminal symbol to its cell. *Registry is the
// production implementation; tests may supply a smaller stand-in.
type RuleResolver interface {
	Resolve(symbol string) *RuleCell
}

// Evaluate directly-interprets e against text[pos:end], threading c through
// nested calls. This is the non-compiled path described in spec.md §4.2;
// compileExpr (compile.go) produces an equivalent but specialized closure for
// rule bodies known ahead of time.
func Evaluate(c *parseCtx, resolver RuleResolver, e Expr, text string, pos, end int) Result {
	switch e := e.(type) {
	case Character:
		return evalCharacter(pos, end, text)
	case Literal:
		return evalLiteral(e, text, pos, end)
	case LengthString:
		return evalLengthString(e, text, pos, end)
	case CharRanges:
		return evalCharRanges(e, text, pos, end)
	case Nonterminal:
		return evalNonterminal(c, resolver, e, text, pos, end)
	case *And:
		return evalAnd(c, resolver, e, text, pos, end)
	case *Or:
		return evalOr(c, resolver, e, text, pos, end)
	case *Not:
		return evalNot(c, resolver, e, text, pos, end)
	case *NegAhead:
		return evalNegAhead(c, resolver, e, text, pos, end)
	case *Ahead:
		return evalAhead(c, resolver, e, text, pos, end)
	case *Star:
		return evalStar(c, resolver, e, text, pos, end)
	case *Plus:
		return evalPlus(c, resolver, e, text, pos, end)
	case *Optional:
		return evalOptional(c, resolver, e, text, pos, end)
	case *Predicate:
		return evalPredicate(c, resolver, e, text, pos, end)
	case *FunctionTerminal:
		return evalFunctionTerminal(e, text, pos, end)
	default:
		return Err(&FailedParse{Expression: e, Position: pos, Detail: "unknown expression type"})
	}
}

func evalCharacter(pos, end int, text string) Result {
	if pos < end {
		r, w := utf8.DecodeRuneInString(text[pos:])
		return Ok(pos+w, Strict(r))
	}
	return Err(&FailedParse{Expression: Character{}, Position: pos})
}

func evalLiteral(e Literal, text string, pos, end int) Result {
	n := len(e.Value)
	if pos+n > end || pos+n > len(text) {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	candidate := text[pos : pos+n]
	matched := candidate == e.Value
	if !matched && e.CaseInsensitive {
		matched = strings.EqualFold(candidate, e.Value)
	}
	if !matched {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	return Ok(pos+n, Strict(candidate))
}

func evalLengthString(e LengthString, text string, pos, end int) Result {
	if pos+e.N > end || pos+e.N > len(text) {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	return Ok(pos+e.N, Strict(text[pos:pos+e.N]))
}

func matchesRanges(r rune, ranges []CharRange) bool {
	for _, cr := range ranges {
		if r >= cr.Lo && r <= cr.Hi {
			return true
		}
	}
	return false
}

func evalCharRanges(e CharRanges, text string, pos, end int) Result {
	if pos >= end {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	r, w := utf8.DecodeRuneInString(text[pos:])
	if !matchesRanges(r, e.Ranges) {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	return Ok(pos+w, Strict(r))
}

func evalNonterminal(c *parseCtx, resolver RuleResolver, e Nonterminal, text string, pos, end int) Result {
	cell := resolver.Resolve(e.Symbol)
	if cell == nil {
		panic(undefinedRuleSignal{&UndefinedRuleError{Symbol: e.Symbol}})
	}
	raw := func() Result { return cell.fn(c, text, pos, end) }
	return evalRule(c, e.Symbol, pos, raw)
}

func evalAnd(c *parseCtx, resolver RuleResolver, e *And, text string, pos, end int) Result {
	cur := pos
	subs := make([]*Production, 0, len(e.Subs))
	for _, sub := range e.Subs {
		res := Evaluate(c, resolver, sub, text, cur, end)
		if !res.IsOk() {
			return Err(&FailedParse{Expression: e, Position: pos, Detail: res.Kind()})
		}
		subs = append(subs, res.Production)
		cur = res.Position
	}
	return Ok(cur, lazyValues(subs))
}

// lazyValues defers Value() on each sub-production until the returned
// Production itself is read, so a sequence/repetition nested under
// Ahead/NegAhead/a discarding predicate never forces its parts.
func lazyValues(subs []*Production) *Production {
	return Lazy(func() any {
		values := make([]any, len(subs))
		for i, p := range subs {
			values[i] = p.Value()
		}
		return values
	})
}

func evalOr(c *parseCtx, resolver RuleResolver, e *Or, text string, pos, end int) Result {
	var deepest Result
	haveDeepest := false
	for _, sub := range e.Subs {
		res := Evaluate(c, resolver, sub, text, pos, end)
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

// deeperFailure implements the tie-break policy from spec.md §4.2: prefer
// an InactiveRule error over none, else prefer the failure with the
// greater position, keeping the earlier one on ties.
func deeperFailure(a, b Result) Result {
	_, aInactive := a.Kind().(InactiveRule)
	_, bInactive := b.Kind().(InactiveRule)
	if bInactive && !aInactive {
		return b
	}
	if aInactive && !bInactive {
		return a
	}
	if b.FailPosition(0) > a.FailPosition(0) {
		return b
	}
	return a
}

func evalNot(c *parseCtx, resolver RuleResolver, e *Not, text string, pos, end int) Result {
	if pos >= end {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	res := Evaluate(c, resolver, e.Sub, text, pos, end)
	if res.IsOk() {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	r, w := utf8.DecodeRuneInString(text[pos:])
	return Ok(pos+w, Strict(r))
}

func evalNegAhead(c *parseCtx, resolver RuleResolver, e *NegAhead, text string, pos, end int) Result {
	res := Evaluate(c, resolver, e.Sub, text, pos, end)
	if res.IsOk() {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	return Ok(pos, Strict(nil))
}

func evalAhead(c *parseCtx, resolver RuleResolver, e *Ahead, text string, pos, end int) Result {
	res := Evaluate(c, resolver, e.Sub, text, pos, end)
	if !res.IsOk() {
		return Err(&FailedParse{Expression: e, Position: pos, Detail: res.Kind()})
	}
	return Ok(pos, res.Production)
}

func evalStar(c *parseCtx, resolver RuleResolver, e *Star, text string, pos, end int) Result {
	cur := pos
	subs := []*Production{}
	for {
		res := Evaluate(c, resolver, e.Sub, text, cur, end)
		if !res.IsOk() {
			break
		}
		if res.Position == cur {
			// A zero-width match would loop forever; one iteration is
			// enough (matches the teacher's zero-or-more guard).
			subs = append(subs, res.Production)
			break
		}
		subs = append(subs, res.Production)
		cur = res.Position
	}
	return Ok(cur, lazyValues(subs))
}

func evalPlus(c *parseCtx, resolver RuleResolver, e *Plus, text string, pos, end int) Result {
	first := Evaluate(c, resolver, e.Sub, text, pos, end)
	if !first.IsOk() {
		return Err(&FailedParse{Expression: e, Position: pos, Detail: first.Kind()})
	}
	subs := []*Production{first.Production}
	cur := first.Position
	for {
		if cur == pos {
			break
		}
		res := Evaluate(c, resolver, e.Sub, text, cur, end)
		if !res.IsOk() || res.Position == cur {
			break
		}
		subs = append(subs, res.Production)
		cur = res.Position
	}
	return Ok(cur, lazyValues(subs))
}

func evalOptional(c *parseCtx, resolver RuleResolver, e *Optional, text string, pos, end int) Result {
	res := Evaluate(c, resolver, e.Sub, text, pos, end)
	if res.IsOk() {
		return res
	}
	return Ok(pos, Strict(nil))
}

func evalPredicate(c *parseCtx, resolver RuleResolver, e *Predicate, text string, pos, end int) Result {
	res := Evaluate(c, resolver, e.Sub, text, pos, end)
	if !res.IsOk() {
		return Err(&FailedParse{Expression: e, Position: pos, Detail: res.Kind()})
	}
	if e.Func != nil && !e.Func(res.Production.Value()) {
		return Err(&FailedParse{Expression: e, Position: pos})
	}
	return res
}

// evalFunctionTerminal implements the function-terminal protocol from
// spec.md §4.5: success iff flag == true, or flag is absent/false and
// endPosition is nil or strictly greater than position.
func evalFunctionTerminal(e *FunctionTerminal, text string, pos, end int) Result {
	production, endPos, flag := e.Func(text, pos, end)

	ok := false
	switch f := flag.(type) {
	case bool:
		if f {
			ok = true
		} else {
			ok = endPos == nil || *endPos > pos
		}
	case nil:
		ok = endPos == nil || *endPos > pos
	default:
		ok = false
	}

	if ok {
		resultPos := pos
		if endPos != nil {
			resultPos = *endPos
		}
		return Ok(resultPos, Strict(production))
	}

	failPos := pos
	if endPos != nil {
		failPos = *endPos
	}
	var detail any
	switch f := flag.(type) {
	case string:
		detail = f
	case error:
		detail = f
	}
	return Err(&FailedParse{Expression: e, Position: failPos, Detail: detail})
}
