package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/internal/guest"
)

func newBuildCommand(opts *options) *cobra.Command {
	var (
		output string
		file   string
	)
	cmd := &cobra.Command{
		Use:   "build -o FILE [TOKENS...]",
		Short: "Assemble a guest module that evaluates an expression",
		Long: "Assemble a core WebAssembly module whose run export pushes the expression onto an engine,\n" +
			"executes it and returns (discriminant, payload). Run it with: calc run --wasm FILE --lift",
		Example: "  calc build -o demo.wasm 10 20 add 2 mul",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.InvalidInput(errors.PhaseScript, "-o is required")
			}
			s, err := loadScript(file, args)
			if err != nil {
				return err
			}
			events, err := s.Decode()
			if err != nil {
				return err
			}

			bin := guest.Program(events)
			if err := os.WriteFile(output, bin, 0o644); err != nil {
				return errors.Wrap(errors.PhaseScript, errors.KindInvalidInput, err, "write "+output)
			}
			opts.log.Debug("guest written", zap.String("path", output), zap.Int("size", len(bin)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d events)\n", output, len(bin), len(events))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the guest module")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML script to assemble")
	return cmd
}
