package binding

import (
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/calc-runtime/binding/internal/abi"
	"github.com/wippyai/calc-runtime/calc"
)

// Namespace is the WIT interface the host module is instantiated under.
// Guests import the engine functions from this module name.
const Namespace = "calc:engine/types@0.1.0"

// Core function names of the engine resource.
const (
	FuncConstructor   = "[constructor]engine"
	FuncPushOperand   = "[method]engine.push-operand"
	FuncPushOperation = "[method]engine.push-operation"
	FuncExecute       = "[method]engine.execute"
	FuncDrop          = "[resource-drop]engine"
)

// WIT types of the interface.
var (
	OperationType = enumType(operationCases()...)
	ErrorType     = enumType(errorCodeNames[:]...)
	EngineType    = &wit.TypeDef{Kind: &wit.Resource{}}
	ExecuteResult = &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}, Err: ErrorType}}
)

// Param is a named function parameter.
type Param struct {
	Name string
	Type wit.Type
}

// Function describes one engine function at the WIT level.
type Function struct {
	Result wit.Type
	Name   string
	// Method is the WIT member name ("push-operand"), empty for the
	// constructor and the destructor.
	Method string
	Params []Param
}

// Functions returns the engine functions in declaration order.
func Functions() []Function {
	self := Param{Name: "self", Type: &wit.TypeDef{Kind: &wit.Borrow{Type: EngineType}}}
	return []Function{
		{Name: FuncConstructor, Result: &wit.TypeDef{Kind: &wit.Own{Type: EngineType}}},
		{Name: FuncPushOperand, Method: "push-operand", Params: []Param{self, {Name: "operand", Type: wit.U32{}}}},
		{Name: FuncPushOperation, Method: "push-operation", Params: []Param{self, {Name: "operation", Type: OperationType}}},
		{Name: FuncExecute, Method: "execute", Params: []Param{self}, Result: ExecuteResult},
		{Name: FuncDrop, Params: []Param{{Name: "self", Type: &wit.TypeDef{Kind: &wit.Own{Type: EngineType}}}}},
	}
}

// CoreSignature returns the flattened core wasm signature of f. Results that
// do not fit in a single core value are returned through a trailing i32
// return-area pointer.
func (f Function) CoreSignature() (params, results []api.ValueType) {
	for _, p := range f.Params {
		for i := 0; i < abi.FlatCount(p.Type); i++ {
			params = append(params, api.ValueTypeI32)
		}
	}
	switch {
	case f.Result == nil:
	case abi.UsesReturnPointer(f.Result):
		params = append(params, api.ValueTypeI32)
	default:
		results = append(results, api.ValueTypeI32)
	}
	return params, results
}

// ParamNames returns the core parameter names, including the return pointer.
func (f Function) ParamNames() []string {
	names := make([]string, 0, len(f.Params)+1)
	for _, p := range f.Params {
		names = append(names, p.Name)
	}
	if f.Result != nil && abi.UsesReturnPointer(f.Result) {
		names = append(names, "retptr")
	}
	return names
}

// ResultLayout is the return-area layout of execute.
func ResultLayout() abi.Info {
	return abi.Calculate(ExecuteResult)
}

// WITText renders the interface in WIT syntax.
func WITText() string {
	var b strings.Builder
	b.WriteString("package calc:engine@0.1.0;\n\n")
	b.WriteString("interface types {\n")
	b.WriteString("  enum operation { ")
	b.WriteString(strings.Join(operationCases(), ", "))
	b.WriteString(" }\n")
	b.WriteString("  enum error { ")
	b.WriteString(strings.Join(errorCodeNames[:], ", "))
	b.WriteString(" }\n\n")
	b.WriteString("  resource engine {\n")
	b.WriteString("    constructor();\n")
	for _, f := range Functions() {
		if f.Method == "" {
			continue
		}
		b.WriteString("    ")
		b.WriteString(f.Method)
		b.WriteString(": func(")
		var params []string
		for _, p := range f.Params[1:] {
			params = append(params, p.Name+": "+witTypeName(p.Type))
		}
		b.WriteString(strings.Join(params, ", "))
		b.WriteString(")")
		if f.Result != nil {
			b.WriteString(" -> ")
			b.WriteString(witTypeName(f.Result))
		}
		b.WriteString(";\n")
	}
	b.WriteString("  }\n")
	b.WriteString("}\n")
	return b.String()
}

func witTypeName(t wit.Type) string {
	switch t {
	case OperationType:
		return "operation"
	case ErrorType:
		return "error"
	case ExecuteResult:
		return "result<u32, error>"
	}
	if _, ok := t.(wit.U32); ok {
		return "u32"
	}
	return "_"
}

func operationCases() []string {
	ops := calc.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}

func enumType(names ...string) *wit.TypeDef {
	cases := make([]wit.EnumCase, len(names))
	for i, n := range names {
		cases[i] = wit.EnumCase{Name: n}
	}
	return &wit.TypeDef{Kind: &wit.Enum{Cases: cases}}
}
