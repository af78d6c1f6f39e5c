package peg

// GuardKind selects how a rule's activity guard behaves.
type GuardKind int

const (
	// GuardAlways skips the activity check entirely (the default).
	GuardAlways GuardKind = iota
	// GuardNever makes the rule permanently inactive.
	GuardNever
	// GuardFunc calls Rule.GuardFunc on each invocation.
	GuardFunc
)

// Transform maps a raw production, together with the span it was matched
// from, to an application-level value.
type Transform func(production any, start, end int) any

// Around wraps a Transform call; it receives the span and a callTransform
// closure it may invoke zero or more times (to retry, to skip the
// transform entirely, or to run code before/after it).
type Around func(start, end int, callTransform func() any) any

// Rule binds an expression to a nonterminal symbol, plus the optional
// guard/transform/around machinery from spec.md §6's rule-definition option
// table. Rules are created detached (Symbol == "") and become attached to a
// cell by AddRule.
type Rule struct {
	Expr Expr

	Guard     GuardKind
	GuardFunc func() bool

	Transform Transform
	Around    Around

	// Symbol is the nonterminal this rule is currently attached to, or ""
	// if detached. Set only by the registry (AddRule/RemoveRule/ChangeRule).
	Symbol string
}

// applyTransform runs the rule's transform/around chain over a raw
// production, honoring spec.md §4.3: either call Transform directly, or
// call Around with a callTransform closure that invokes it.
func (r *Rule) applyTransform(production any, start, end int) any {
	call := func() any {
		if r.Transform == nil {
			return production
		}
		return r.Transform(production, start, end)
	}
	if r.Around != nil {
		return r.Around(start, end, call)
	}
	return call()
}

// active evaluates the rule's guard.
func (r *Rule) active() bool {
	switch r.Guard {
	case GuardNever:
		return false
	case GuardFunc:
		if r.GuardFunc == nil {
			return true
		}
		return r.GuardFunc()
	default:
		return true
	}
}

// ComposeTransform composes two transforms in textual rule-definition
// order, matching spec.md §6: "multiple transforms compose in textual
// order as compose(later, earlier)".
func ComposeTransform(earlier, later Transform) Transform {
	if earlier == nil {
		return later
	}
	if later == nil {
		return earlier
	}
	return func(production any, start, end int) any {
		return later(earlier(production, start, end), start, end)
	}
}

// TraceInfo holds rule-tracing state. It survives RemoveRule/AddRule
// round-trips on the same symbol, per spec.md §9's "mirror faithfully" note
// on trace/remove/add interaction. Registry.EnableTrace sets Enabled, and a
// rule's compiled closure reads it to decide whether to call the registry's
// Hooks (such as an internal/tracer Session). Data is not used by peg.
type TraceInfo struct {
	Enabled bool
	Data    any
}

// closure is the compiled parsing function installed in a RuleCell: given
// the input text and a [position, end) span, produce a Result. It is
// exactly the `(text, position, end) → Result` shape from spec.md §4.3.
type closure func(c *parseCtx, text string, position, end int) Result

// RuleCell is the mutable, stable indirection a Nonterminal evaluates
// through. Rules refer to each other by symbol, not by pointer, and the
// registry is the only thing that ever replaces a cell's contents; this is
// what lets rule bodies be swapped (ChangeRule) or removed without
// invalidating anything that already holds a Nonterminal{Symbol}.
type RuleCell struct {
	Symbol    string
	Rule      *Rule // nil if undefined
	fn        closure
	Trace     *TraceInfo
	Referents map[string]bool // symbols of rules that refer to this one
}

func newCell(symbol string) *RuleCell {
	return &RuleCell{Symbol: symbol, Referents: map[string]bool{}, fn: undefinedClosure(symbol)}
}

// undefinedClosure is installed in a cell with no attached rule. Per
// spec.md §4.2, invoking it raises "Undefined rule" rather than returning
// an ordinary InactiveRule result: InactiveRule means a defined rule's
// guard reported it off; this means there is no rule at all.
func undefinedClosure(symbol string) closure {
	return func(c *parseCtx, text string, position, end int) Result {
		panic(undefinedRuleSignal{&UndefinedRuleError{Symbol: symbol}})
	}
}

type undefinedRuleSignal struct {
	err *UndefinedRuleError
}
