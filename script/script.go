package script

import (
	"bytes"
	stderrors "errors"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/calc-runtime/calc"
	"github.com/wippyai/calc-runtime/errors"
)

// Script is a recorded push sequence.
type Script struct {
	Steps []Step `yaml:"events"`
}

// Step is one push: an operand or an operation tag.
type Step struct {
	Operand *uint32 `yaml:"operand,omitempty"`
	Op      string  `yaml:"op,omitempty"`
}

// symbols are accepted as operation tokens alongside the wire tags.
var symbols = map[string]calc.Operation{
	"+": calc.Add,
	"-": calc.Sub,
	"*": calc.Mul,
	"/": calc.Div,
}

// Parse decodes a YAML script. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if stderrors.Is(err, io.EOF) {
			return &Script{}, nil
		}
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidData, err, "decode yaml")
	}
	if _, err := s.Decode(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes s as YAML.
func (s *Script) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidData, err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseScript, errors.KindInvalidData, err, "encode yaml")
	}
	return buf.Bytes(), nil
}

// Decode converts the steps into engine events.
func (s *Script) Decode() ([]calc.Event, error) {
	events := make([]calc.Event, 0, len(s.Steps))
	for i, st := range s.Steps {
		switch {
		case st.Operand != nil && st.Op != "":
			return nil, errors.New(errors.PhaseScript, errors.KindInvalidInput).
				Index(i).
				Detail("event has both operand and op").
				Build()
		case st.Operand != nil:
			events = append(events, calc.Event{Kind: calc.EventOperand, Operand: *st.Operand})
		case st.Op != "":
			op, err := calc.ParseOperation(st.Op)
			if err != nil {
				return nil, scriptEnumError(i, st.Op, err)
			}
			events = append(events, calc.Event{Kind: calc.EventOperation, Op: op})
		default:
			return nil, errors.New(errors.PhaseScript, errors.KindInvalidInput).
				Index(i).
				Detail("event has neither operand nor op").
				Build()
		}
	}
	return events, nil
}

// Apply pushes the script onto e in order. Nothing is pushed if any step
// fails to decode.
func (s *Script) Apply(e *calc.Engine) error {
	events, err := s.Decode()
	if err != nil {
		return err
	}
	for _, ev := range events {
		switch ev.Kind {
		case calc.EventOperand:
			e.PushOperand(ev.Operand)
		case calc.EventOperation:
			e.PushOperation(ev.Op)
		}
	}
	return nil
}

// FromEvents records events as a script.
func FromEvents(events []calc.Event) *Script {
	s := &Script{Steps: make([]Step, len(events))}
	for i, ev := range events {
		switch ev.Kind {
		case calc.EventOperand:
			v := ev.Operand
			s.Steps[i].Operand = &v
		case calc.EventOperation:
			s.Steps[i].Op = ev.Op.String()
		}
	}
	return s
}

// FromTokens decodes command-line tokens. A token is a decimal u32, an
// operation tag (add, sub, mul, div) or one of + - * /.
func FromTokens(tokens []string) (*Script, error) {
	s := &Script{Steps: make([]Step, 0, len(tokens))}
	for i, tok := range tokens {
		st, err := ParseToken(tok)
		if err != nil {
			var rerr *errors.Error
			if stderrors.As(err, &rerr) {
				rerr.Index = i
			}
			return nil, err
		}
		s.Steps = append(s.Steps, st)
	}
	return s, nil
}

// ParseToken decodes a single token.
func ParseToken(tok string) (Step, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Step{}, errors.InvalidInput(errors.PhaseScript, "empty token")
	}

	if tok[0] >= '0' && tok[0] <= '9' {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return Step{}, errors.New(errors.PhaseScript, errors.KindInvalidInput).
				Value(tok).
				Cause(err).
				Detail("operand %q is not a u32", tok).
				Build()
		}
		n := uint32(v)
		return Step{Operand: &n}, nil
	}

	if op, ok := symbols[tok]; ok {
		return Step{Op: op.String()}, nil
	}
	op, err := calc.ParseOperation(strings.ToLower(tok))
	if err != nil {
		return Step{}, scriptEnumError(-1, tok, err)
	}
	return Step{Op: op.String()}, nil
}

func scriptEnumError(index int, tag string, cause error) error {
	return errors.New(errors.PhaseScript, errors.KindInvalidEnum).
		Index(index).
		Value(tag).
		Cause(cause).
		Detail("unknown operation %q", tag).
		Build()
}
