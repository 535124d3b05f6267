package binding

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/wippyai/calc-runtime/calc"
	rterrors "github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/internal/guest"
)

// fakeMemory is a fixed-size little-endian linear memory.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) check(offset, length uint32) bool {
	return uint64(offset)+uint64(length) <= uint64(len(m.data))
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if !m.check(offset, length) {
		return nil, rterrors.OutOfBounds(rterrors.PhaseLift, offset, length)
	}
	return m.data[offset : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if !m.check(offset, uint32(len(data))) {
		return rterrors.OutOfBounds(rterrors.PhaseLower, offset, uint32(len(data)))
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *fakeMemory) WriteU8(offset uint32, v uint8) error {
	return m.Write(offset, []byte{v})
}

func (m *fakeMemory) WriteU32(offset uint32, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) Size() uint32 {
	return uint32(len(m.data))
}

func TestLowerExecuteResult_OK(t *testing.T) {
	mem := newFakeMemory(64)
	mem.data[16] = 0xff

	if err := LowerExecuteResult(mem, 16, 0xdeadbeef, nil); err != nil {
		t.Fatalf("LowerExecuteResult: %v", err)
	}
	if mem.data[16] != 0 {
		t.Errorf("discriminant = %d, want 0", mem.data[16])
	}
	if got := binary.LittleEndian.Uint32(mem.data[20:]); got != 0xdeadbeef {
		t.Errorf("payload = %#x", got)
	}
}

func TestLowerExecuteResult_Err(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{calc.ErrDivisionByZero, ErrorDivisionByZero},
		{calc.ErrStackUnderflow, ErrorStackUnderflow},
		{calc.ErrIncompleteExpression, ErrorIncompleteExpression},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			mem := newFakeMemory(64)
			if err := LowerExecuteResult(mem, 8, 0, tt.err); err != nil {
				t.Fatalf("LowerExecuteResult: %v", err)
			}
			if mem.data[8] != 1 {
				t.Errorf("discriminant = %d, want 1", mem.data[8])
			}
			if ErrorCode(mem.data[12]) != tt.want {
				t.Errorf("code = %d, want %d", mem.data[12], tt.want)
			}

			out, err := LiftExecuteResult(mem, 8)
			if err != nil {
				t.Fatalf("LiftExecuteResult: %v", err)
			}
			if !errors.Is(out.Err, tt.err) {
				t.Errorf("lifted %v, want %v", out.Err, tt.err)
			}
		})
	}
}

func TestLowerExecuteResult_Rejects(t *testing.T) {
	tests := []struct {
		name string
		mem  *fakeMemory
		ptr  uint32
		err  error
		kind rterrors.Kind
	}{
		{"misaligned", newFakeMemory(64), 18, nil, rterrors.KindOutOfBounds},
		{"past end", newFakeMemory(64), 60, nil, rterrors.KindOutOfBounds},
		{"overflow", newFakeMemory(64), 0xfffffffc, nil, rterrors.KindOutOfBounds},
		{"foreign error", newFakeMemory(64), 0, errors.New("boom"), rterrors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LowerExecuteResult(tt.mem, tt.ptr, 0, tt.err)
			var rerr *rterrors.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("error = %v, want *errors.Error", err)
			}
			if rerr.Kind != tt.kind || rerr.Phase != rterrors.PhaseLower {
				t.Errorf("got [%s] %s, want [lower] %s", rerr.Phase, rerr.Kind, tt.kind)
			}
		})
	}
}

func TestLowerExecuteResult_NilMemory(t *testing.T) {
	err := LowerExecuteResult(nil, 0, 1, nil)
	var rerr *rterrors.Error
	if !errors.As(err, &rerr) || rerr.Kind != rterrors.KindNotFound {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestExecuteResult_GuestWithoutMemory(t *testing.T) {
	_, mod := setup(t, guest.Engine(false))

	mem := WrapMemory(mod.Memory())
	if mem != nil {
		t.Fatalf("WrapMemory = %T, want nil for guest without memory", mem)
	}

	err := LowerExecuteResult(mem, guest.RetArea, 1, nil)
	if !errors.Is(err, rterrors.New(rterrors.PhaseLower, rterrors.KindNotFound).Build()) {
		t.Errorf("lower error = %v, want lower not found", err)
	}
	if _, err := LiftExecuteResult(mem, guest.RetArea); !errors.Is(err, rterrors.New(rterrors.PhaseLift, rterrors.KindNotFound).Build()) {
		t.Errorf("lift error = %v, want lift not found", err)
	}
}

func TestLiftExecuteResult(t *testing.T) {
	mem := newFakeMemory(16)
	mem.data[0] = 0
	binary.LittleEndian.PutUint32(mem.data[4:], 60)

	out, err := LiftExecuteResult(mem, 0)
	if err != nil || out.Err != nil || out.Value != 60 {
		t.Fatalf("Lift = %+v, %v; want 60", out, err)
	}

	mem.data[0] = 2
	if _, err := LiftExecuteResult(mem, 0); err == nil {
		t.Error("expected error for discriminant 2")
	}

	mem.data[0] = 1
	mem.data[4] = 9
	if _, err := LiftExecuteResult(mem, 0); err == nil {
		t.Error("expected error for unknown error code")
	}

	if _, err := LiftExecuteResult(mem, 14); err == nil {
		t.Error("expected out of bounds error")
	}
}
