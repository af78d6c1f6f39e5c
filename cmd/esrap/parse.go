package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mister-walter/esrap/internal/cliflag"
	"github.com/mister-walter/esrap/internal/grammardsl"
	esraplog "github.com/mister-walter/esrap/log"
	"github.com/mister-walter/esrap/peg"
)

const (
	policyGrow  = "grow"
	policyError = "error"
)

type parseCmdParams struct {
	grammarFile string
	rule        string
	junkAllowed bool
	trace       bool
	boundedSize int
	policy      *cliflag.EnumFlag
}

func newParseCmdParams() parseCmdParams {
	return parseCmdParams{rule: "start", policy: cliflag.NewEnumFlag(policyGrow, []string{policyGrow, policyError})}
}

func init() {
	params := newParseCmdParams()

	parseCommand := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file against a grammar's start rule",
		Long: `Parse loads a YAML grammar document, compiles its rules, and runs the
named start rule against the given input file.

The grammar document lists rules under a top-level "rules" key; each rule
carries an "expr" tree built from the parsing-expression combinators
(char, literal, char_ranges, and, or, star, plus, optional, ahead,
negahead, nonterminal, ...) plus the optional transform/guard fields
(when, constant, function, identity, text, lambda, destructure, around).
Named function references (predicates, terminals, transforms, guards) must
be wired in by the embedding program; the CLI itself only exercises rules
that need no such callbacks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(params, args[0])
		},
	}

	flags := parseCommand.Flags()
	flags.StringVar(&params.grammarFile, "grammar", "", "path to the YAML grammar document (required)")
	flags.StringVar(&params.rule, "rule", params.rule, "start rule symbol")
	flags.BoolVar(&params.junkAllowed, "junk-allowed", false, "succeed even if input remains unconsumed")
	flags.BoolVar(&params.trace, "trace", false, "log rule enter/exit events while parsing")
	flags.IntVar(&params.boundedSize, "bounded-cache", 0, "bound the memoization cache to this many entries (0 = unbounded)")
	setPolicyFlag(flags, params.policy)
	_ = parseCommand.MarkFlagRequired("grammar")

	rootCommand.AddCommand(parseCommand)
}

// setPolicyFlag registers the left-recursion policy flag as a pflag.Value,
// so an unrecognized policy name is rejected at flag-parse time instead of
// surfacing later as a driver error.
func setPolicyFlag(fs *pflag.FlagSet, policy *cliflag.EnumFlag) {
	fs.Var(policy, "policy", "left-recursion policy: grow or error")
}

func runParse(params parseCmdParams, inputPath string) error {
	logger := esraplog.New()

	grammarBytes, err := os.ReadFile(params.grammarFile)
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}
	spec, err := grammardsl.Load(grammarBytes)
	if err != nil {
		return err
	}

	var opts []peg.CacheOption
	if params.boundedSize > 0 {
		opts = append(opts, peg.WithBoundedCache(params.boundedSize))
	}
	driver := peg.NewDriver(esraplog.AsPegLogger(logger), opts...)
	if params.policy.String() == policyError {
		driver.Policy = peg.PolicyError
	}

	funcs := grammardsl.NewFuncRegistry()
	if err := grammardsl.Apply(driver.Registry, spec, funcs, nil, nil); err != nil {
		return err
	}

	if params.trace {
		_ = logger.SetLevel("debug")
		session := installTracing(driver.Registry, logger)
		defer func() {
			for _, e := range session.Entries() {
				logger.WithFields(esraplog.Fields{"phase": e.Phase, "rule": e.Rule, "pos": e.Position}).Debug("trace")
			}
		}()
	}

	text, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	value, rest, ok, err := driver.Parse(peg.Nonterminal{Symbol: params.rule}, string(text), 0, len(text), params.junkAllowed)
	if err != nil {
		return err
	}

	out := struct {
		Ok    bool `json:"ok"`
		Rest  *int `json:"rest,omitempty"`
		Value any  `json:"value,omitempty"`
	}{Ok: ok, Rest: rest, Value: value}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
