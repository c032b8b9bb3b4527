package main

import (
	"fmt"

	"github.com/dhamidi/parsekit/format"
	"github.com/dhamidi/parsekit/grammar"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens <grammar.ebnf> <file|->",
		Short: "Split a file into the tokens of a grammar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load(args[0], "")
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return fmt.Errorf("%s: invalid grammar", args[0])
			}
			input, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			tokens, err := g.NewLexer(args[1], input).Tokenize()
			if err != nil {
				return fmt.Errorf("tokenize: %w", err)
			}
			return format.NewLineEncoder(cmd.OutOrStdout()).Encode(tokens)
		},
	}

	return cmd
}
