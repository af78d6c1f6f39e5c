package peg

// NewFunctionTerminal builds a FunctionTerminal expression from a named
// user function implementing the protocol from spec.md §4.5.
func NewFunctionTerminal(name string, fn TerminalFunc) *FunctionTerminal {
	return &FunctionTerminal{Name: name, Func: fn}
}

// IntPtr is a small convenience for callers implementing TerminalFunc who
// need to return a non-nil endPosition without declaring a local variable.
func IntPtr(v int) *int { return &v }
