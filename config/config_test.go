package config

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"

	rterrors "github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/runtime"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := Config{LogLevel: "info", LogFormat: FormatConsole, MemoryLimitPages: 256}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"CALC_LOG_LEVEL":          "debug",
		"CALC_LOG_FORMAT":         "json",
		"CALC_MEMORY_LIMIT_PAGES": "16",
		"CALC_MAX_ENGINES":        "8",
		"CALC_WASI":               "true",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := Config{LogLevel: "debug", LogFormat: FormatJSON, MemoryLimitPages: 16, MaxEngines: 8, WASI: true}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"level", map[string]string{"CALC_LOG_LEVEL": "loud"}},
		{"format", map[string]string{"CALC_LOG_FORMAT": "xml"}},
		{"pages not a number", map[string]string{"CALC_MEMORY_LIMIT_PAGES": "lots"}},
		{"negative engines", map[string]string{"CALC_MAX_ENGINES": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			var rerr *rterrors.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("error = %v, want *errors.Error", err)
			}
			if rerr.Phase != rterrors.PhaseConfig || rerr.Kind != rterrors.KindInvalidInput {
				t.Errorf("got [%s] %s", rerr.Phase, rerr.Kind)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{FormatConsole, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			cfg := Config{LogLevel: "warn", LogFormat: format}
			l, err := cfg.NewLogger()
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if l.Core().Enabled(zapcore.DebugLevel) {
				t.Error("debug enabled at warn level")
			}
			if !l.Core().Enabled(zapcore.WarnLevel) {
				t.Error("warn disabled at warn level")
			}
		})
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg := Config{LogLevel: "info", LogFormat: FormatConsole, MemoryLimitPages: 4, MaxEngines: 2}
	ctx := context.Background()

	rt, err := runtime.New(ctx, cfg.RuntimeOptions(nil)...)
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	defer rt.Close(ctx)

	if _, err := rt.Host().New(); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := rt.Host().New(); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := rt.Host().New(); err == nil {
		t.Error("engine limit not applied")
	}
}
