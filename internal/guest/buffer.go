package guest

type buffer struct {
	bytes []byte
}

func (b *buffer) appendByte(v byte) {
	b.bytes = append(b.bytes, v)
}

func (b *buffer) writeBytes(v []byte) {
	b.bytes = append(b.bytes, v...)
}

// writeU32 writes unsigned LEB128.
func (b *buffer) writeU32(v uint32) {
	b.bytes = appendU32(b.bytes, v)
}

func (b *buffer) writeString(s string) {
	b.writeU32(uint32(len(s)))
	b.writeBytes([]byte(s))
}

func appendU32(dst []byte, v uint32) []byte {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			byt |= 0x80
		}
		dst = append(dst, byt)
		if v == 0 {
			return dst
		}
	}
}

// appendI32 appends signed LEB128.
func appendI32(dst []byte, v int32) []byte {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && byt&0x40 == 0) || (v == -1 && byt&0x40 != 0) {
			return append(dst, byt)
		}
		dst = append(dst, byt|0x80)
	}
}

func writeSection(buf *buffer, id byte, content *buffer) {
	buf.appendByte(id)
	buf.writeU32(uint32(len(content.bytes)))
	buf.writeBytes(content.bytes)
}
