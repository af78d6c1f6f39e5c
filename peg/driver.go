package peg

// Driver is the parser entry point: a Registry (the rule name table) plus
// the Parse operation from spec.md §4.1. Driver implements RuleResolver so
// compiled rule bodies can resolve Nonterminal references through it.
type Driver struct {
	*Registry
	Policy      LeftRecursionPolicy
	cacheConfig cacheConfig
}

// NewDriver returns a Driver over a fresh, empty registry.
func NewDriver(logger Logger, opts ...CacheOption) *Driver {
	cfg := cacheConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Driver{Registry: NewRegistry(logger), cacheConfig: cfg}
}

// Parse evaluates expression against text[start:end], following spec.md
// §4.1's result-conversion contract. It returns the production value (nil
// on failure), the rest-position (nil when the whole span was consumed or
// the parse failed without junk allowed), whether the parse counts as
// successful, and an error when junkAllowed is false and the parse did not
// cleanly succeed.
func (d *Driver) Parse(expression Expr, text string, start, end int, junkAllowed bool) (value any, rest *int, ok bool, err error) {
	if end < 0 || end > len(text) {
		end = len(text)
	}
	if err := Validate(expression); err != nil {
		return nil, nil, false, err
	}

	c := newParseCtx(d.Policy, d.Registry.logger, d.cacheConfig)

	result, perr := d.evaluate(c, expression, text, start, end)
	if perr != nil {
		return nil, nil, false, perr
	}

	if result.IsOk() {
		if result.Position == end {
			return result.Production.Value(), nil, true, nil
		}
		if junkAllowed {
			r := result.Position
			return result.Production.Value(), &r, true, nil
		}
		return nil, nil, false, &ParseError{
			Text:     text,
			Position: result.Position,
			Cause:    &IncompleteParseError{Position: result.Position},
		}
	}

	switch k := result.Kind().(type) {
	case InactiveRule:
		if junkAllowed {
			s := start
			return nil, &s, false, nil
		}
		return nil, nil, false, &ParseError{
			Text:     text,
			Position: start,
			Cause:    &InactiveRuleError{Symbol: k.Symbol},
		}
	case *FailedParse:
		if junkAllowed {
			s := start
			return nil, &s, false, nil
		}
		return nil, nil, false, &ParseError{
			Text:     text,
			Position: k.Position,
			Cause:    &SimpleParseError{Message: describeFailChain(k)},
		}
	default:
		if junkAllowed {
			s := start
			return nil, &s, false, nil
		}
		return nil, nil, false, &ParseError{Text: text, Position: start, Cause: &SimpleParseError{Message: "parse failed"}}
	}
}

// evaluate runs expression through the compiler, recovering the two panic
// signals (undefined rule, and left-recursion-as-error policy) into plain
// Go errors at the top-level boundary, the way the teacher parser's own
// recover option turns action-code panics into errors.
func (d *Driver) evaluate(c *parseCtx, expression Expr, text string, start, end int) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch sig := r.(type) {
			case leftRecursionSignal:
				err = sig.err
			case undefinedRuleSignal:
				err = sig.err
			default:
				panic(r)
			}
		}
	}()
	fn := compileExpr(expression, d.Registry, d.Registry.logger)
	result = fn(c, text, start, end)
	return result, nil
}
