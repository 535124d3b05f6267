package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/calc-runtime/binding"
	"github.com/wippyai/calc-runtime/calc"
	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/resource"
	"github.com/wippyai/calc-runtime/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	operandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newREPLCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}
}

func runREPL(cmd *cobra.Command, opts *options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.InvalidInput(errors.PhaseScript, "the interactive calculator needs a terminal; use calc eval instead")
	}

	m, err := newREPLModel(binding.NewHost(binding.WithLimit(opts.cfg.MaxEngines), binding.WithLogger(opts.log)))
	if err != nil {
		return err
	}
	defer m.host.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout()))
	_, err = p.Run()
	return err
}

// replModel drives one engine through the host's handle API. Each line of
// tokens is pushed in order; "=" executes, "clear" drops the engine and
// starts a new one.
type replModel struct {
	err    error
	host   *binding.Host
	result string
	input  textinput.Model
	engine resource.Handle
}

func newREPLModel(host *binding.Host) (*replModel, error) {
	ti := textinput.New()
	ti.Placeholder = "10 20 add 2 mul ="
	ti.Prompt = "> "
	ti.Width = 50
	ti.Focus()

	h, err := host.New()
	if err != nil {
		return nil, err
	}
	return &replModel{host: host, input: ti, engine: h}, nil
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "q" || line == "quit" {
				return m, tea.Quit
			}
			m.submit(line)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// replAction is one step of an input line: a command ("=" or "clear") or a
// run of decoded pushes.
type replAction struct {
	command string
	events  []calc.Event
}

// decodeLine splits line into actions. Pushes are decoded up front so that a
// bad token rejects the whole line.
func decodeLine(line string) ([]replAction, error) {
	var (
		actions []replAction
		run     []string
	)
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		sc, err := script.FromTokens(run)
		if err != nil {
			return err
		}
		events, err := sc.Decode()
		if err != nil {
			return err
		}
		actions = append(actions, replAction{events: events})
		run = nil
		return nil
	}

	for _, tok := range strings.Fields(line) {
		if tok != "=" && tok != "clear" {
			run = append(run, tok)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		actions = append(actions, replAction{command: tok})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return actions, nil
}

// submit applies one input line. Nothing is pushed if any token is invalid.
func (m *replModel) submit(line string) {
	m.err = nil
	actions, err := decodeLine(line)
	if err != nil {
		m.err = err
		return
	}

	for _, a := range actions {
		switch a.command {
		case "=":
			v, err := m.host.Execute(m.engine)
			if err != nil {
				m.result = ""
				m.err = err
				if code, ok := binding.Code(err); ok {
					m.err = fmt.Errorf("%s", code)
				}
				continue
			}
			m.result = fmt.Sprint(v)
		case "clear":
			if err := m.host.Drop(m.engine); err != nil {
				m.err = err
				return
			}
			h, err := m.host.New()
			if err != nil {
				m.err = err
				return
			}
			m.engine = h
			m.result = ""
		default:
			for _, ev := range a.events {
				var err error
				if ev.Kind == calc.EventOperand {
					err = m.host.PushOperand(m.engine, ev.Operand)
				} else {
					err = m.host.PushOperation(m.engine, uint32(ev.Op))
				}
				if err != nil {
					m.err = err
					return
				}
			}
		}
	}
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("calc"))
	fmt.Fprintf(&b, " engine #%d\n\n", m.engine)

	b.WriteString("events: ")
	if e, ok := m.host.Engine(m.engine); ok {
		events := e.Events()
		if len(events) == 0 {
			b.WriteString(helpStyle.Render("(empty)"))
		}
		for i, ev := range events {
			if i > 0 {
				b.WriteByte(' ')
			}
			if ev.Kind == calc.EventOperand {
				b.WriteString(operandStyle.Render(ev.String()))
			} else {
				b.WriteString(opStyle.Render(ev.String()))
			}
		}
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	case m.result != "":
		b.WriteString("result: ")
		b.WriteString(resultStyle.Render(m.result))
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("= execute • clear new engine • q quit"))
	return b.String()
}
