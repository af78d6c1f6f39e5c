package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mister-walter/esrap/internal/describe"
	"github.com/mister-walter/esrap/internal/grammardsl"
	esraplog "github.com/mister-walter/esrap/log"
	"github.com/mister-walter/esrap/peg"
)

type describeCmdParams struct {
	grammarFile string
	pattern     string
	sorted      bool
	rule        string
}

func init() {
	params := describeCmdParams{}

	describeCommand := &cobra.Command{
		Use:   "describe",
		Short: "Pretty-print a grammar's rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(params)
		},
	}

	flags := describeCommand.Flags()
	flags.StringVar(&params.grammarFile, "grammar", "", "path to the YAML grammar document (required)")
	flags.StringVar(&params.pattern, "pattern", "", "glob restricting which symbols are printed")
	flags.BoolVar(&params.sorted, "sorted", true, "print rules in sorted-symbol order")
	flags.StringVar(&params.rule, "rule", "", "print only this rule's expression, ignoring --pattern/--sorted")
	_ = describeCommand.MarkFlagRequired("grammar")

	rootCommand.AddCommand(describeCommand)
}

func runDescribe(params describeCmdParams) error {
	grammarBytes, err := os.ReadFile(params.grammarFile)
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}
	spec, err := grammardsl.Load(grammarBytes)
	if err != nil {
		return err
	}

	reg := peg.NewRegistry(esraplog.AsPegLogger(esraplog.New()))
	funcs := grammardsl.NewFuncRegistry()
	if err := grammardsl.Apply(reg, spec, funcs, nil, nil); err != nil {
		return err
	}

	if params.rule != "" {
		fmt.Printf("%s <- %s\n", params.rule, describe.Rule(reg, params.rule))
		return nil
	}

	text, err := describe.Grammar(reg, describe.Options{Pattern: params.pattern, SortSymbols: params.sorted})
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
