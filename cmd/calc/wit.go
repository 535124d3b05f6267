package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/calc-runtime/binding"
)

func newWITCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wit",
		Short: "Print the engine's WIT interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), binding.WITText())
			return err
		},
	}
}
