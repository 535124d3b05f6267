package abi

import "go.bytecodealliance.org/wit"

// MaxFlatResults is the Canonical ABI limit on flat results. Functions whose
// results flatten to more values return through a caller-provided pointer.
const MaxFlatResults = 1

// MaxFlatParams is the Canonical ABI limit on flat parameters.
const MaxFlatParams = 16

// Info describes the memory layout of a WIT type.
type Info struct {
	Size  uint32
	Align uint32
	// PayloadOffset is the offset of the case payload for results and
	// variants, zero otherwise.
	PayloadOffset uint32
}

// Calculate returns the layout of t. Unknown kinds report a zero-size layout.
func Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4}
	case *wit.TypeDef:
		return calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func calculateTypeDef(t *wit.TypeDef) Info {
	switch kind := t.Kind.(type) {
	case *wit.Enum:
		size := DiscriminantSize(len(kind.Cases))
		return Info{Size: size, Align: size}
	case *wit.Own, *wit.Borrow:
		return Info{Size: 4, Align: 4}
	case *wit.Result:
		return calculateResult(kind)
	case *wit.Record:
		return calculateRecord(kind)
	case wit.Type:
		return Calculate(kind)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func calculateResult(r *wit.Result) Info {
	var ok, err Info
	ok.Align, err.Align = 1, 1
	if r.OK != nil {
		ok = Calculate(r.OK)
	}
	if r.Err != nil {
		err = Calculate(r.Err)
	}

	maxAlign := max(ok.Align, err.Align)
	maxSize := max(ok.Size, err.Size)

	payloadOffset := AlignTo(1, maxAlign)
	return Info{
		Size:          AlignTo(payloadOffset+maxSize, maxAlign),
		Align:         maxAlign,
		PayloadOffset: payloadOffset,
	}
}

func calculateRecord(r *wit.Record) Info {
	if len(r.Fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	maxAlign := uint32(1)
	offset := uint32(0)
	for _, field := range r.Fields {
		fl := Calculate(field.Type)
		offset = AlignTo(offset, fl.Align)
		maxAlign = max(maxAlign, fl.Align)
		offset += fl.Size
	}

	return Info{Size: AlignTo(offset, maxAlign), Align: maxAlign}
}

// FlatCount returns the number of core values t flattens to.
func FlatCount(t wit.Type) int {
	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.U64, wit.S64, wit.F32, wit.F64, wit.Char:
		return 1
	case wit.String:
		return 2
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.Enum, *wit.Own, *wit.Borrow:
			return 1
		case *wit.Record:
			count := 0
			for _, f := range kind.Fields {
				count += FlatCount(f.Type)
			}
			return count
		case *wit.Result:
			okCount, errCount := 0, 0
			if kind.OK != nil {
				okCount = FlatCount(kind.OK)
			}
			if kind.Err != nil {
				errCount = FlatCount(kind.Err)
			}
			return 1 + max(okCount, errCount)
		case wit.Type:
			return FlatCount(kind)
		}
	}
	return 1
}

// UsesReturnPointer reports whether a function returning t lowers its
// result through a trailing i32 return-area pointer.
func UsesReturnPointer(t wit.Type) bool {
	return t != nil && FlatCount(t) > MaxFlatResults
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantSize: 1 byte for <=256 cases, 2 for <=65536, else 4.
func DiscriminantSize(numCases int) uint32 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}
