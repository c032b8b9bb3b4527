package main

import (
	"github.com/dhamidi/parsekit/grammar"
	"github.com/dhamidi/parsekit/workspace"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var grammarPath string
	var startProduction string
	var mode string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server that reports syntax errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := grammar.ParseMode(mode)
			if err != nil {
				return err
			}
			ws, err := workspace.New(grammarPath, startProduction, workspace.WithMode(m))
			if err != nil {
				return err
			}
			server := workspace.NewLSPServer(ws, version)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&grammarPath, "grammar", "", "grammar file")
	cmd.Flags().StringVar(&startProduction, "start", "", "start production")
	cmd.Flags().StringVar(&mode, "mode", grammar.Compiled.String(), "execution mode (compiled or interpreted)")
	cmd.MarkFlagRequired("grammar")
	cmd.MarkFlagRequired("start")

	return cmd
}
