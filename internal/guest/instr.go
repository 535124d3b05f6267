package guest

// Instruction opcodes.
const (
	opIf       = 0x04
	opElse     = 0x05
	opEnd      = 0x0b
	opCall     = 0x10
	opLocalGet = 0x20
	opLocalSet = 0x21
	opI32Load  = 0x28
	opI32Load8 = 0x2d
	opI32Const = 0x41
)

const blockTypeI32 = 0x7f

// Code concatenates instruction sequences into a function body.
func Code(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func I32Const(v int32) []byte {
	return appendI32([]byte{opI32Const}, v)
}

func LocalGet(idx uint32) []byte {
	return appendU32([]byte{opLocalGet}, idx)
}

func LocalSet(idx uint32) []byte {
	return appendU32([]byte{opLocalSet}, idx)
}

func Call(fn uint32) []byte {
	return appendU32([]byte{opCall}, fn)
}

// I32Load loads a naturally aligned u32 at the address on the stack plus offset.
func I32Load(offset uint32) []byte {
	return appendU32([]byte{opI32Load, 2}, offset)
}

// I32Load8U loads a zero-extended byte at the address on the stack plus offset.
func I32Load8U(offset uint32) []byte {
	return appendU32([]byte{opI32Load8, 0}, offset)
}

// IfI32 opens an if block producing one i32.
func IfI32() []byte {
	return []byte{opIf, blockTypeI32}
}

func Else() []byte {
	return []byte{opElse}
}

func End() []byte {
	return []byte{opEnd}
}
