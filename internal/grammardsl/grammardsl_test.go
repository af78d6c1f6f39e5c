package grammardsl

import (
	"testing"

	"github.com/mister-walter/esrap/peg"
)

const digitsGrammar = `
rules:
  - symbol: digit
    expr:
      char_ranges: ["0", ["0", "9"]]
  - symbol: digits
    expr:
      plus:
        nonterminal: digit
    text: true
`

func TestLoadAndApplyBasicGrammar(t *testing.T) {
	spec, err := Load([]byte(digitsGrammar))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(spec.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(spec.Rules))
	}

	reg := peg.NewRegistry(nil)
	funcs := NewFuncRegistry()
	if err := Apply(reg, spec, funcs, nil, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	driver := &peg.Driver{Registry: reg}
	value, rest, ok, err := driver.Parse(peg.Nonterminal{Symbol: "digits"}, "123", 0, 3, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !ok || rest != nil {
		t.Fatalf("expected full-consuming ok, got ok=%v rest=%v", ok, rest)
	}
	if value != "123" {
		t.Fatalf("expected flattened text \"123\", got %v", value)
	}
}

func TestWhenGuardResolvesNamedFunction(t *testing.T) {
	spec, err := Load([]byte(`
rules:
  - symbol: r
    expr:
      literal: {value: "x"}
    when: disabled
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	reg := peg.NewRegistry(nil)
	funcs := NewFuncRegistry()
	funcs.Guards["disabled"] = func() bool { return false }
	if err := Apply(reg, spec, funcs, nil, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	driver := &peg.Driver{Registry: reg}
	_, _, ok, err := driver.Parse(peg.Nonterminal{Symbol: "r"}, "x", 0, 1, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ok {
		t.Fatalf("expected the guard to report the rule inactive")
	}
}

func TestConstantTransform(t *testing.T) {
	spec, err := Load([]byte(`
rules:
  - symbol: r
    expr:
      literal: {value: "x"}
    constant: 42
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	reg := peg.NewRegistry(nil)
	funcs := NewFuncRegistry()
	if err := Apply(reg, spec, funcs, nil, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	driver := &peg.Driver{Registry: reg}
	value, _, ok, err := driver.Parse(peg.Nonterminal{Symbol: "r"}, "x", 0, 1, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok")
	}
	if value != 42 {
		t.Fatalf("expected constant 42, got %v (%T)", value, value)
	}
}

func TestMissingFunctionReferenceErrors(t *testing.T) {
	spec, err := Load([]byte(`
rules:
  - symbol: r
    expr:
      literal: {value: "x"}
    function: nope
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	reg := peg.NewRegistry(nil)
	funcs := NewFuncRegistry()
	if err := Apply(reg, spec, funcs, nil, nil); err == nil {
		t.Fatalf("expected an error for an unregistered function reference")
	}
}
