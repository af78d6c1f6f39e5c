package peg

// LeftRecursionPolicy selects what happens when the engine detects a
// left-recursive cycle: either the Warth grow-seed algorithm runs
// transparently (PolicyGrow, the default), or the engine raises a
// LeftRecursionError immediately (PolicyError), useful for grammars that
// are expected to be recursion-free and want a hard signal if that
// assumption breaks.
type LeftRecursionPolicy int

const (
	PolicyGrow LeftRecursionPolicy = iota
	PolicyError
)

type cacheKey struct {
	symbol   string
	position int
}

type stackEntry struct {
	symbol string
	marker *LeftRecursionMarker
}

// parseCtx is the per-parse activation: a fresh cache, heads map, and
// pending-marker stack, owned by a single top-level Parse call. Nested
// parses started from user transforms get their own independent parseCtx
// (Driver.Parse builds one with newParseCtx), never sharing this one.
type parseCtx struct {
	cache  memoStore
	heads  map[int]*Head
	stack  []stackEntry
	policy LeftRecursionPolicy
	logger Logger
}

func newParseCtx(policy LeftRecursionPolicy, logger Logger, cfg cacheConfig) *parseCtx {
	if logger == nil {
		logger = nopLogger{}
	}
	return &parseCtx{
		cache:  newMemoStore(cfg),
		heads:  map[int]*Head{},
		policy: policy,
		logger: logger,
	}
}

// leftRecursionSignal is panicked by evalRule when policy is PolicyError and
// a cycle is detected, and recovered at the driver boundary; this mirrors
// the teacher parser's own use of panic/recover for "stop parsing
// immediately" control flow (see ast/parser.go's recover option).
type leftRecursionSignal struct {
	err *LeftRecursionError
}

// recall implements spec.md §4.4's memoization lookup used both as the
// first step of every per-rule invocation and, directly, as the grow-loop's
// "evaluate the rule again" step. compute is the raw rule-body evaluator
// (guard + expression + transform), with no marker/stack bookkeeping of its
// own.
func recall(c *parseCtx, symbol string, pos int, compute func() Result) Result {
	key := cacheKey{symbol, pos}
	r, rPresent := c.cache.get(key)
	h, hPresent := c.heads[pos]
	if !hPresent {
		if rPresent {
			return r
		}
		return notComputed
	}
	if !rPresent && symbol != h.Rule && !h.Involved[symbol] {
		return Err(&FailedParse{Expression: Nonterminal{Symbol: symbol}, Position: pos})
	}
	if h.Eval[symbol] {
		delete(h.Eval, symbol)
		res := compute()
		c.cache.set(key, res)
		return res
	}
	if !rPresent {
		// An involved rule should always have at least a marker cached by
		// the time it is marked involved; this is a defensive fallback so
		// a genuinely absent entry never reads back as a bogus zero-value
		// Ok result.
		return notComputed
	}
	return r
}

// notComputed is recall's "absent" sentinel: a failed Result whose kind is
// the private notComputedMarker, so evalRule's cache-miss branch can tell it
// apart from a genuine cached failure. It is never observed outside this
// package.
var notComputed = Result{err: &notComputedMarker{}}

type notComputedMarker struct{}

func (*notComputedMarker) errKind() {}

func isNotComputed(r Result) bool {
	_, ok := r.Kind().(*notComputedMarker)
	return ok
}

// evalRule runs the full per-rule invocation protocol from spec.md §4.4:
// recall, left-recursion marker handling, cache-miss evaluation, and the
// grow-seed loop.
func evalRule(c *parseCtx, symbol string, pos int, rawEval func() Result) Result {
	res := recall(c, symbol, pos, rawEval)
	if !isNotComputed(res) {
		if lm, ok := res.Kind().(*LeftRecursionMarker); ok {
			return handleMarker(c, symbol, pos, lm)
		}
		return res
	}

	key := cacheKey{symbol, pos}
	marker := &LeftRecursionMarker{Rule: symbol}
	c.cache.set(key, Err(marker))
	c.stack = append(c.stack, stackEntry{symbol: symbol, marker: marker})

	result := rawEval()

	c.cache.set(key, result)
	c.stack = c.stack[:len(c.stack)-1]

	if result.IsOk() && marker.Head != nil && marker.Head.Rule == symbol {
		result = growSeed(c, symbol, pos, rawEval, marker.Head, result)
	}
	return result
}

// handleMarker implements spec.md §4.4 step 2: a rule invocation recalled
// its own in-flight marker, meaning it has found itself left-recursing.
func handleMarker(c *parseCtx, symbol string, pos int, lm *LeftRecursionMarker) Result {
	if c.policy == PolicyError {
		path := make([]string, len(c.stack))
		for i, e := range c.stack {
			path[i] = e.symbol
		}
		panic(leftRecursionSignal{&LeftRecursionError{Nonterminal: symbol, Path: path}})
	}

	if lm.Head == nil {
		lm.Head = newHead(symbol)
	}
	head := lm.Head
	for i := len(c.stack) - 1; i >= 0; i-- {
		se := c.stack[i]
		if se.marker.Head == head {
			break
		}
		se.marker.Head = head
		head.Involved[se.symbol] = true
	}
	c.logger.Debugf("esrap: left recursion detected in %s at %d, involved=%v", symbol, pos, head.Involved)
	return Err(&FailedParse{Expression: Nonterminal{Symbol: symbol}, Position: pos})
}

// growSeed runs spec.md §4.4 step 5: repeatedly re-evaluate the rule,
// keeping the result only while it strictly extends the previous position.
//
// recall() unconditionally overwrites the cache with whatever it just
// recomputed (step 4 of recall's own contract), but a grow round that
// fails to improve on the current seed must not leave that worse attempt
// behind: some other, already-completed evaluation may look this entry up
// later expecting the best-known seed, not the last one tried. So on
// termination we restore the cache to the seed we're actually returning.
func growSeed(c *parseCtx, symbol string, pos int, rawEval func() Result, head *Head, seed Result) Result {
	c.heads[pos] = head
	defer delete(c.heads, pos)

	key := cacheKey{symbol, pos}
	result := seed
	for {
		head.Eval = make(map[string]bool, len(head.Involved))
		for r := range head.Involved {
			head.Eval[r] = true
		}
		next := recall(c, symbol, pos, rawEval)
		if !next.IsOk() || next.Position <= result.Position {
			c.cache.set(key, result)
			break
		}
		result = next
		c.logger.Debugf("esrap: grew seed for %s at %d to position %d", symbol, pos, result.Position)
	}
	return result
}
