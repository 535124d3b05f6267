package guest

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType   = 1
	sectionImport = 2
	sectionFunc   = 3
	sectionMemory = 5
	sectionExport = 7
	sectionCode   = 10

	kindFunc   = 0x00
	kindMemory = 0x02

	funcTypeMarker = 0x60
)

type funcType struct {
	params  []api.ValueType
	results []api.ValueType
}

type funcImport struct {
	module, name string
	typeIdx      uint32
}

type funcDef struct {
	export  string
	body    []byte
	typeIdx uint32
	locals  uint32
}

// Module assembles a core module. Imports must be declared before any
// function so that imported functions take the low indexes.
type Module struct {
	types       []funcType
	imports     []funcImport
	funcs       []funcDef
	memoryPages uint32
	hasMemory   bool
}

// Import declares an imported function and returns its function index.
func (m *Module) Import(module, name string, params, results []api.ValueType) uint32 {
	if len(m.funcs) > 0 {
		panic("guest: import declared after a function")
	}
	m.imports = append(m.imports, funcImport{module: module, name: name, typeIdx: m.addType(params, results)})
	return uint32(len(m.imports) - 1)
}

// Func defines a function exported as export (unexported when empty) with
// the given number of extra i32 locals. body must not include the final end.
func (m *Module) Func(export string, params, results []api.ValueType, locals uint32, body []byte) uint32 {
	m.funcs = append(m.funcs, funcDef{
		export:  export,
		body:    body,
		typeIdx: m.addType(params, results),
		locals:  locals,
	})
	return uint32(len(m.imports) + len(m.funcs) - 1)
}

// Memory declares one linear memory of pages minimum size, exported as "memory".
func (m *Module) Memory(pages uint32) {
	m.memoryPages = pages
	m.hasMemory = true
}

func (m *Module) addType(params, results []api.ValueType) uint32 {
	m.types = append(m.types, funcType{params: params, results: results})
	return uint32(len(m.types) - 1)
}

// Bytes encodes the module in the binary format.
func (m *Module) Bytes() []byte {
	buf := &buffer{}
	buf.writeBytes([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}) // magic + version

	if len(m.types) > 0 {
		sec := &buffer{}
		sec.writeU32(uint32(len(m.types)))
		for _, ft := range m.types {
			sec.appendByte(funcTypeMarker)
			sec.writeU32(uint32(len(ft.params)))
			sec.writeBytes(ft.params)
			sec.writeU32(uint32(len(ft.results)))
			sec.writeBytes(ft.results)
		}
		writeSection(buf, sectionType, sec)
	}

	if len(m.imports) > 0 {
		sec := &buffer{}
		sec.writeU32(uint32(len(m.imports)))
		for _, imp := range m.imports {
			sec.writeString(imp.module)
			sec.writeString(imp.name)
			sec.appendByte(kindFunc)
			sec.writeU32(imp.typeIdx)
		}
		writeSection(buf, sectionImport, sec)
	}

	if len(m.funcs) > 0 {
		sec := &buffer{}
		sec.writeU32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			sec.writeU32(f.typeIdx)
		}
		writeSection(buf, sectionFunc, sec)
	}

	if m.hasMemory {
		sec := &buffer{}
		sec.writeU32(1)
		sec.appendByte(0x00) // no maximum
		sec.writeU32(m.memoryPages)
		writeSection(buf, sectionMemory, sec)
	}

	var exports int
	for _, f := range m.funcs {
		if f.export != "" {
			exports++
		}
	}
	if m.hasMemory {
		exports++
	}
	if exports > 0 {
		sec := &buffer{}
		sec.writeU32(uint32(exports))
		for i, f := range m.funcs {
			if f.export == "" {
				continue
			}
			sec.writeString(f.export)
			sec.appendByte(kindFunc)
			sec.writeU32(uint32(len(m.imports) + i))
		}
		if m.hasMemory {
			sec.writeString("memory")
			sec.appendByte(kindMemory)
			sec.writeU32(0)
		}
		writeSection(buf, sectionExport, sec)
	}

	if len(m.funcs) > 0 {
		sec := &buffer{}
		sec.writeU32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			body := &buffer{}
			if f.locals > 0 {
				body.writeU32(1)
				body.writeU32(f.locals)
				body.appendByte(api.ValueTypeI32)
			} else {
				body.writeU32(0)
			}
			body.writeBytes(f.body)
			body.appendByte(opEnd)

			sec.writeU32(uint32(len(body.bytes)))
			sec.writeBytes(body.bytes)
		}
		writeSection(buf, sectionCode, sec)
	}

	return buf.bytes
}
