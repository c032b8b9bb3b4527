package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/parsekit/format"
	"github.com/dhamidi/parsekit/grammar"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var startProduction string
	var mode string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <grammar.ebnf> <file|->",
		Short: "Parse a file with a grammar and print its syntax tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := grammar.ParseMode(mode)
			if err != nil {
				return err
			}
			encoder, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			g, err := grammar.Load(args[0], startProduction)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return fmt.Errorf("%s: invalid grammar", args[0])
			}
			input, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			node, err := g.Parse(args[1], input, m)
			if err != nil {
				return err
			}
			if err := encoder.Encode(node); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production")
	cmd.Flags().StringVar(&mode, "mode", grammar.Compiled.String(), "execution mode (compiled or interpreted)")
	cmd.Flags().StringVar(&outputFormat, "format", "tree", "output format ("+strings.Join(format.Formats, ", ")+")")
	cmd.MarkFlagRequired("start")

	return cmd
}
