package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/calc-runtime/calc"
	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/runtime"
	"github.com/wippyai/calc-runtime/script"
)

type evalOptions struct {
	file string
	wasm bool
	emit bool
}

func newEvalCommand(opts *options) *cobra.Command {
	eo := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval [TOKENS...]",
		Short: "Evaluate a postfix expression",
		Long: "Evaluate a postfix expression given as tokens (10 20 add 2 mul) or as a YAML script (-f).\n" +
			"Tokens are decimal u32 operands, operation tags (add, sub, mul, div) or + - * /.",
		Example: "  calc eval 10 20 add 2 mul\n  calc eval --wasm 7 0 div\n  calc eval -f expr.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(eo.file, args)
			if err != nil {
				return err
			}

			if eo.emit {
				out, err := s.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}

			events, err := s.Decode()
			if err != nil {
				return err
			}

			var v uint32
			if eo.wasm {
				v, err = evalWASM(cmd.Context(), opts, events)
			} else {
				v, err = evalDirect(s)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	cmd.Flags().StringVarP(&eo.file, "file", "f", "", "YAML script to evaluate")
	cmd.Flags().BoolVar(&eo.wasm, "wasm", false, "Evaluate inside a generated WebAssembly guest")
	cmd.Flags().BoolVar(&eo.emit, "emit", false, "Print the expression as a YAML script instead of evaluating it")
	return cmd
}

// loadScript reads the script file, or decodes tokens when no file is given.
func loadScript(file string, tokens []string) (*script.Script, error) {
	switch {
	case file != "" && len(tokens) > 0:
		return nil, errors.InvalidInput(errors.PhaseScript, "pass either tokens or --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseScript, errors.KindNotFound, err, "read script")
		}
		return script.Parse(data)
	case len(tokens) == 0:
		return nil, errors.InvalidInput(errors.PhaseScript, "no tokens to evaluate")
	default:
		return script.FromTokens(tokens)
	}
}

func evalDirect(s *script.Script) (uint32, error) {
	e := calc.New()
	defer e.Drop()
	if err := s.Apply(e); err != nil {
		return 0, err
	}
	return e.Execute()
}

func evalWASM(ctx context.Context, opts *options, events []calc.Event) (uint32, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := runtime.New(ctx, opts.cfg.RuntimeOptions(opts.log)...)
	if err != nil {
		return 0, err
	}
	defer rt.Close(ctx)

	v, err := rt.Evaluate(ctx, events)
	opts.log.Debug("evaluated in guest", zap.Int("events", len(events)), zap.Error(err))
	return v, err
}
