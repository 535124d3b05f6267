package guest

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
)

func TestLEB128(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"u32 zero", appendU32(nil, 0), []byte{0x00}},
		{"u32 multi", appendU32(nil, 624485), []byte{0xe5, 0x8e, 0x26}},
		{"i32 minus one", appendI32(nil, -1), []byte{0x7f}},
		{"i32 64", appendI32(nil, 64), []byte{0xc0, 0x00}},
		{"i32 sign", appendI32(nil, -123456), []byte{0xc0, 0xbb, 0x78}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("got % x, want % x", tt.got, tt.want)
			}
		})
	}
}

func TestEmptyModule(t *testing.T) {
	got := (&Module{}).Bytes()
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x", got)
	}
}

func TestImportAfterFuncPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	m := &Module{}
	m.Func("f", none, none, 0, nil)
	m.Import("env", "g", none, none)
}

func TestGuestsCompile(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	tests := []struct {
		name    string
		bin     []byte
		exports []string
	}{
		{"engine", Engine(true), []string{"new", "push", "op", "exec", "exec-at", "drop"}},
		{"engine without memory", Engine(false), []string{"new", "push", "op", "exec-at", "drop"}},
		{"demo", Demo(), []string{"run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := r.CompileModule(ctx, tt.bin)
			if err != nil {
				t.Fatalf("CompileModule: %v", err)
			}
			defer cm.Close(ctx)

			fns := cm.ExportedFunctions()
			for _, name := range tt.exports {
				if _, ok := fns[name]; !ok {
					t.Errorf("missing export %q", name)
				}
			}
			if len(fns) != len(tt.exports) {
				t.Errorf("exports = %d, want %d", len(fns), len(tt.exports))
			}

			imports := cm.ImportedFunctions()
			if len(imports) != 5 {
				t.Fatalf("imports = %d, want 5", len(imports))
			}
			for _, def := range imports {
				mod, _, _ := def.Import()
				if mod != Namespace {
					t.Errorf("import module = %q", mod)
				}
			}
		})
	}
}
