package main

import (
	"fmt"

	"github.com/dhamidi/parsekit/grammar"
	"github.com/dhamidi/parsekit/plan"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "plan <grammar.ebnf>",
		Short: "Print the execution plan a grammar compiles to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load(args[0], startProduction)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return fmt.Errorf("%s: invalid grammar", args[0])
			}
			return plan.Pretty(cmd.OutOrStdout(), g.Plan())
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production")
	cmd.MarkFlagRequired("start")

	return cmd
}
