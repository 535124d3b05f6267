package binding

import (
	"reflect"

	"github.com/tetratelabs/wazero/api"

	calcruntime "github.com/wippyai/calc-runtime"
	"github.com/wippyai/calc-runtime/errors"
)

// WrapMemory adapts a wazero memory to calcruntime.Memory. It returns nil
// for a module without memory.
func WrapMemory(mem api.Memory) calcruntime.Memory {
	if !isValidMemory(mem) {
		return nil
	}
	return &memoryWrapper{mem: mem}
}

// isValidMemory reports whether mem is usable. wazero returns a typed nil
// from api.Module.Memory when the module defines none.
func isValidMemory(mem api.Memory) bool {
	if mem == nil {
		return false
	}
	return !reflect.ValueOf(mem).IsNil()
}

type memoryWrapper struct {
	mem api.Memory
}

func (m *memoryWrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseLift, offset, length)
	}
	return data, nil
}

func (m *memoryWrapper) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseLower, offset, uint32(len(data)))
	}
	return nil
}

func (m *memoryWrapper) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseLift, offset, 1)
	}
	return v, nil
}

func (m *memoryWrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseLift, offset, 4)
	}
	return v, nil
}

func (m *memoryWrapper) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseLower, offset, 1)
	}
	return nil
}

func (m *memoryWrapper) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseLower, offset, 4)
	}
	return nil
}

func (m *memoryWrapper) Size() uint32 {
	return m.mem.Size()
}
