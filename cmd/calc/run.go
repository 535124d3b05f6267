package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/calc-runtime/binding"
	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/internal/guest"
	"github.com/wippyai/calc-runtime/runtime"
)

type runOptions struct {
	wasm     string
	funcName string
	demo     bool
	list     bool
	lift     bool
}

func newRunCommand(opts *options) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run --wasm FILE [ARGS...]",
		Short: "Run a WebAssembly guest that imports the engine",
		Long: "Load a core WebAssembly module, instantiate it against the engine host and call one export.\n" +
			"ARGS are decimal i32 values. Results are printed space separated.",
		Example: "  calc run --demo\n  calc run --wasm guest.wasm --func run --lift\n  calc run --wasm guest.wasm --list",
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := ro.load()
			if err != nil {
				return err
			}
			params, err := parseParams(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := runtime.New(ctx, opts.cfg.RuntimeOptions(opts.log)...)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			mod, err := rt.LoadWASM(ctx, bin)
			if err != nil {
				return err
			}
			defer mod.Close(ctx)

			out := cmd.OutOrStdout()
			if ro.list {
				for _, e := range mod.Exports() {
					fmt.Fprintf(out, "%s (%d params, %d results)\n", e.Name, e.Params, e.Results)
				}
				return nil
			}

			inst, err := mod.Instantiate(ctx)
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			results, err := inst.Call(ctx, ro.funcName, params...)
			if err != nil {
				return err
			}

			if ro.lift {
				return printLifted(cmd, results)
			}
			vals := make([]string, len(results))
			for i, r := range results {
				vals[i] = strconv.FormatUint(uint64(api.DecodeU32(r)), 10)
			}
			fmt.Fprintln(out, strings.Join(vals, " "))
			return nil
		},
	}

	cmd.Flags().StringVar(&ro.wasm, "wasm", "", "Path to the guest core module")
	cmd.Flags().StringVar(&ro.funcName, "func", "run", "Export to call")
	cmd.Flags().BoolVar(&ro.demo, "demo", false, "Run the built-in demo guest (10 20 add 2 mul)")
	cmd.Flags().BoolVar(&ro.list, "list", false, "List exported functions and exit")
	cmd.Flags().BoolVar(&ro.lift, "lift", false, "Interpret two results as an execute outcome (discriminant, payload)")
	return cmd
}

func (ro *runOptions) load() ([]byte, error) {
	switch {
	case ro.demo && ro.wasm != "":
		return nil, errors.InvalidInput(errors.PhaseLoad, "pass either --wasm or --demo, not both")
	case ro.demo:
		return guest.Demo(), nil
	case ro.wasm == "":
		return nil, errors.InvalidInput(errors.PhaseLoad, "--wasm is required")
	}
	data, err := os.ReadFile(ro.wasm)
	if err != nil {
		return nil, errors.Load("read "+ro.wasm, err)
	}
	return data, nil
}

func parseParams(args []string) ([]uint64, error) {
	params := make([]uint64, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil || v < -(1<<31) || v > (1<<32)-1 {
			return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Index(i).
				Value(a).
				Detail("argument %q is not a 32-bit integer", a).
				Build()
		}
		params[i] = api.EncodeU32(uint32(v))
	}
	return params, nil
}

// printLifted prints "ok VALUE" or "err CODE" for a (discriminant, payload) pair.
func printLifted(cmd *cobra.Command, results []uint64) error {
	if len(results) != 2 {
		return errors.New(errors.PhaseLift, errors.KindInvalidData).
			Value(len(results)).
			Detail("--lift needs 2 results, got %d", len(results)).
			Build()
	}
	out := cmd.OutOrStdout()
	disc, payload := api.DecodeU32(results[0]), api.DecodeU32(results[1])
	switch disc {
	case 0:
		fmt.Fprintf(out, "ok %d\n", payload)
	case 1:
		code := binding.ErrorCode(payload)
		if payload > 0xff || code.Err() == nil {
			return errors.InvalidEnum(errors.PhaseLift, payload, "error")
		}
		fmt.Fprintf(out, "err %s\n", code)
	default:
		return errors.InvalidEnum(errors.PhaseLift, disc, "result")
	}
	return nil
}
