package peg

// Registry is the name→rule table spec.md §1 calls an external
// collaborator and §6 specifies as the Driver API: AddRule, FindRule,
// RemoveRule, ChangeRule, RuleDependencies. It owns RuleCells; rules
// reference each other only by symbol through a cell, never by direct
// pointer, so cells can be swapped or removed without invalidating any
// Nonterminal that already names them.
type Registry struct {
	cells  map[string]*RuleCell
	logger Logger
	hooks  Hooks
}

// Hooks lets an external collaborator (internal/tracer) observe rule
// invocations for rules whose cell has tracing enabled. Both methods are
// called synchronously from within the evaluator, so implementations must
// not themselves re-enter this registry.
type Hooks interface {
	OnEnterRule(symbol string, pos int)
	OnExitRule(symbol string, pos int, ok bool, end int)
}

// NewRegistry returns an empty registry. A nil logger disables the
// optional debug/warning tracing the compiler and left-recursion engine
// can emit.
func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Registry{cells: map[string]*RuleCell{}, logger: logger}
}

// SetHooks installs the tracer hooks used by rules with tracing enabled.
func (reg *Registry) SetHooks(h Hooks) { reg.hooks = h }

// EnableTrace turns rule-invocation tracing on or off for symbol's cell.
// Per spec.md §9, this state survives RemoveRule/AddRule round-trips on
// the same symbol.
func (reg *Registry) EnableTrace(symbol string, enabled bool) {
	c := reg.cell(symbol)
	if c.Trace == nil {
		c.Trace = &TraceInfo{}
	}
	c.Trace.Enabled = enabled
}

// EnableTraceAll turns tracing on or off for every symbol currently known
// to the registry.
func (reg *Registry) EnableTraceAll(enabled bool) {
	for sym := range reg.cells {
		reg.EnableTrace(sym, enabled)
	}
}

func (reg *Registry) cell(symbol string) *RuleCell {
	c, ok := reg.cells[symbol]
	if !ok {
		c = newCell(symbol)
		reg.cells[symbol] = c
	}
	return c
}

// Resolve implements RuleResolver.
func (reg *Registry) Resolve(symbol string) *RuleCell {
	c, ok := reg.cells[symbol]
	if !ok {
		return nil
	}
	return c
}

// dependencies walks an expression tree collecting every Nonterminal symbol
// it references.
func dependencies(e Expr, out map[string]bool) {
	switch e := e.(type) {
	case Nonterminal:
		out[e.Symbol] = true
	case *Predicate:
		dependencies(e.Sub, out)
	case *And:
		for _, s := range e.Subs {
			dependencies(s, out)
		}
	case *Or:
		for _, s := range e.Subs {
			dependencies(s, out)
		}
	case *Not:
		dependencies(e.Sub, out)
	case *NegAhead:
		dependencies(e.Sub, out)
	case *Ahead:
		dependencies(e.Sub, out)
	case *Star:
		dependencies(e.Sub, out)
	case *Plus:
		dependencies(e.Sub, out)
	case *Optional:
		dependencies(e.Sub, out)
	}
}

// RuleDependencies returns the nonterminals rule's expression refers to,
// split into those that currently have an attached rule and those that do
// not yet (or no longer) have one.
func (reg *Registry) RuleDependencies(rule *Rule) (defined, undefined []string) {
	deps := map[string]bool{}
	dependencies(rule.Expr, deps)
	for sym := range deps {
		if c, ok := reg.cells[sym]; ok && c.Rule != nil {
			defined = append(defined, sym)
		} else {
			undefined = append(undefined, sym)
		}
	}
	return defined, undefined
}

// AddRule attaches rule to symbol, installing a compiled parsing closure in
// the cell. It fails if rule is already attached elsewhere (spec.md §6).
func (reg *Registry) AddRule(symbol string, rule *Rule) (string, error) {
	if rule.Symbol != "" && rule.Symbol != symbol {
		return "", &RuleAlreadyAttachedError{Symbol: rule.Symbol}
	}
	if err := Validate(rule.Expr); err != nil {
		return "", err
	}

	c := reg.cell(symbol)
	c.Rule = rule
	rule.Symbol = symbol
	c.fn = compileRuleClosure(rule, c, reg, reg.logger)

	deps := map[string]bool{}
	dependencies(rule.Expr, deps)
	for dep := range deps {
		reg.cell(dep).Referents[symbol] = true
	}
	return symbol, nil
}

// Symbols returns every symbol with a cell in the registry (defined or
// not), in no particular order. External collaborators like
// internal/describe use this to enumerate a grammar.
func (reg *Registry) Symbols() []string {
	out := make([]string, 0, len(reg.cells))
	for sym := range reg.cells {
		out = append(out, sym)
	}
	return out
}

// FindRule returns the rule currently attached to symbol, or nil.
func (reg *Registry) FindRule(symbol string) *Rule {
	c, ok := reg.cells[symbol]
	if !ok || c.Rule == nil {
		return nil
	}
	return c.Rule
}

// RemoveRule detaches the rule at symbol. Per the rule-removal invariant
// (spec.md §3), it refuses when the cell has live referents unless force
// is set.
func (reg *Registry) RemoveRule(symbol string, force bool) (*Rule, error) {
	c, ok := reg.cells[symbol]
	if !ok || c.Rule == nil {
		return nil, nil
	}
	if !force && len(c.Referents) > 0 {
		referents := make([]string, 0, len(c.Referents))
		for r := range c.Referents {
			referents = append(referents, r)
		}
		return nil, &RuleHasReferentsError{Symbol: symbol, Referents: referents}
	}

	rule := c.Rule
	deps := map[string]bool{}
	dependencies(rule.Expr, deps)
	for dep := range deps {
		if dc, ok := reg.cells[dep]; ok {
			delete(dc.Referents, symbol)
		}
	}

	rule.Symbol = ""
	c.Rule = nil
	c.fn = undefinedClosure(symbol)
	// c.Trace survives intentionally: trace info is preserved across
	// remove/re-add (spec.md §9).
	return rule, nil
}

// ChangeRule atomically replaces the expression of the rule attached to
// symbol, preserving the Rule object's identity (and thus its guard,
// transform, around, and trace info).
func (reg *Registry) ChangeRule(symbol string, expr Expr) error {
	rule := reg.FindRule(symbol)
	if rule == nil {
		return &UndefinedRuleError{Symbol: symbol}
	}
	if _, err := reg.RemoveRule(symbol, true); err != nil {
		return err
	}
	rule.Expr = expr
	_, err := reg.AddRule(symbol, rule)
	return err
}

// compileRuleClosure wraps the compiled expression closure with the guard,
// transform/around, and failure-wrapping machinery from spec.md §4.3, plus
// (when the cell has tracing enabled) the enter/exit hooks internal/tracer
// installs via Registry.SetHooks.
func compileRuleClosure(rule *Rule, cell *RuleCell, reg *Registry, logger Logger) closure {
	body := compileExpr(rule.Expr, reg, logger)
	symbol := rule.Symbol
	return func(c *parseCtx, text string, pos, end int) Result {
		if reg.hooks != nil && cell.Trace != nil && cell.Trace.Enabled {
			reg.hooks.OnEnterRule(symbol, pos)
		}
		result := runRuleBody(rule, symbol, body, c, text, pos, end)
		if reg.hooks != nil && cell.Trace != nil && cell.Trace.Enabled {
			reg.hooks.OnExitRule(symbol, pos, result.IsOk(), result.Position)
		}
		return result
	}
}

func runRuleBody(rule *Rule, symbol string, body closure, c *parseCtx, text string, pos, end int) Result {
	if !rule.active() {
		return Err(InactiveRule{Symbol: symbol})
	}
	res := body(c, text, pos, end)
	if !res.IsOk() {
		failPos := res.FailPosition(pos)
		return Err(&FailedParse{Expression: Nonterminal{Symbol: symbol}, Position: failPos, Detail: res.Kind()})
	}
	production := res.Production
	endPos := res.Position
	return Ok(endPos, Lazy(func() any {
		return rule.applyTransform(production.Value(), pos, endPos)
	}))
}
