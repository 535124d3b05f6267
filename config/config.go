package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/runtime"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds runtime and logging settings.
type Config struct {
	// LogLevel is the minimum level from CALC_LOG_LEVEL.
	LogLevel string `env:"CALC_LOG_LEVEL" envDefault:"info"`
	// LogFormat is console or json from CALC_LOG_FORMAT.
	LogFormat string `env:"CALC_LOG_FORMAT" envDefault:"console"`
	// MemoryLimitPages caps guest memory from CALC_MEMORY_LIMIT_PAGES.
	MemoryLimitPages uint32 `env:"CALC_MEMORY_LIMIT_PAGES" envDefault:"256"`
	// MaxEngines caps live engines from CALC_MAX_ENGINES; 0 is unlimited.
	MaxEngines int `env:"CALC_MAX_ENGINES" envDefault:"0"`
	// WASI enables wasi_snapshot_preview1 for guests from CALC_WASI.
	WASI bool `env:"CALC_WASI"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads settings from vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Op("CALC_LOG_LEVEL").
			Value(c.LogLevel).
			Cause(err).
			Detail("unknown log level %q", c.LogLevel).
			Build()
	}
	switch strings.ToLower(c.LogFormat) {
	case FormatConsole, FormatJSON:
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Op("CALC_LOG_FORMAT").
			Value(c.LogFormat).
			Detail("log format must be %s or %s", FormatConsole, FormatJSON).
			Build()
	}
	if c.MaxEngines < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Op("CALC_MAX_ENGINES").
			Value(c.MaxEngines).
			Detail("must not be negative").
			Build()
	}
	return nil
}

// NewLogger builds a logger writing to stderr at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}

	var zc zap.Config
	if strings.ToLower(c.LogFormat) == FormatJSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build logger")
	}
	return l, nil
}

// RuntimeOptions converts the settings into runtime options. WASI output
// goes to the process stdout and stderr.
func (c Config) RuntimeOptions(l *zap.Logger) []runtime.Option {
	opts := []runtime.Option{
		runtime.WithMemoryLimitPages(c.MemoryLimitPages),
		runtime.WithMaxEngines(c.MaxEngines),
	}
	if l != nil {
		opts = append(opts, runtime.WithLogger(l))
	}
	if c.WASI {
		opts = append(opts, runtime.WithWASI(os.Stdout, os.Stderr))
	}
	return opts
}
