package main

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/dhamidi/parsekit/grammar"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check <grammar.ebnf>",
		Short: "Parse and verify an EBNF grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load(args[0], startProduction)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return fmt.Errorf("%s: invalid grammar", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d productions ok\n", args[0], len(g.Productions()))
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

// printErrors prints the error lists of golang.org/x/exp/ebnf one error per
// line.
func printErrors(w io.Writer, err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() == reflect.Slice {
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
			return
		}
	}
	fmt.Fprintln(w, err)
}
