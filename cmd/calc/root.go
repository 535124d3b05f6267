package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/calc-runtime/binding"
	"github.com/wippyai/calc-runtime/config"
	"github.com/wippyai/calc-runtime/runtime"
)

// options holds global flags and the state PersistentPreRunE derives from them.
type options struct {
	cfg         config.Config
	log         *zap.Logger
	logLevel    string
	logFormat   string
	interactive bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "calc",
		Short:         "Stack calculator engine hosted for WebAssembly guests",
		Long:          "calc evaluates postfix expressions on the calc engine, runs WebAssembly guests that import calc:engine/types, and prints the engine's WIT interface.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = opts.logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			l, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log = l
			binding.SetLogger(l)
			runtime.SetLogger(l)
			l.Debug("logger initialized", zap.String("level", cfg.LogLevel), zap.String("format", cfg.LogFormat))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = opts.log.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.interactive {
				return runREPL(cmd, opts)
			}
			return cmd.Help()
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", config.FormatConsole, "Log format (console, json)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Start the interactive calculator")

	cmd.AddCommand(
		newEvalCommand(opts),
		newRunCommand(opts),
		newBuildCommand(opts),
		newWITCommand(),
		newREPLCommand(opts),
	)

	return cmd
}
