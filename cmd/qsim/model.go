package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qsim"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusEditor
	focusMenu
	focusSelectTarget
	focusInputParam
	focusEditParam
)

// Model represents the TUI application state.
type Model struct {
	circuit *qsim.Circuit // single source of truth
	shots   int

	cursorQubit int // wire the next gate is placed on
	cursorCol   int // selected instruction column
	viewStart   int // first instruction column currently visible
	width       int
	height      int
	editor      textarea.Model // circuit text editor
	lastText    string
	focus       focus
	statusMsg   string

	// Menu state
	menuCat  int
	menuItem int

	// Placement state
	pending     menuItem
	targetQubit int
	paramInput  string

	// Parameter edit state (instruction under the cursor)
	editIndex int

	result *qsim.Result
}

func initialModel(c *qsim.Circuit, shots int) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit circuit text here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		circuit: c,
		shots:   shots,
		editor:  ta,
		focus:   focusCircuit,
	}
	m.syncEditor()
	return m
}

// syncEditor refreshes the text panel from the circuit.
func (m *Model) syncEditor() {
	text, err := m.circuit.ToText("")
	if err != nil {
		m.statusMsg = fmt.Sprintf("Serialize error: %v", err)
		return
	}
	m.editor.SetValue(text)
	m.lastText = text
}

// parseEditorInput rebuilds the circuit from the text panel. Invalid text
// leaves the circuit untouched and reports the parse error.
func (m *Model) parseEditorInput() {
	text := m.editor.Value()
	if text == m.lastText {
		return
	}
	c, err := qsim.FromText(text, "")
	if err != nil {
		m.statusMsg = fmt.Sprintf("Parse error: %v", err)
		return
	}
	m.circuit = c
	m.lastText = text
	m.result = nil
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if n := len(m.circuit.Instructions); m.cursorCol > n {
		m.cursorCol = n
	}
	if m.cursorQubit >= m.circuit.NumQubits {
		m.cursorQubit = m.circuit.NumQubits - 1
	}
}

// placeGate appends the pending gate on the cursor wire. targetQ is the
// second qubit for controlled and two-qubit gates (-1 otherwise).
func (m *Model) placeGate(item menuItem, targetQ int) bool {
	var args []float64
	if item.needsParams {
		args = parseParams(m.paramInput)
		if m.paramInput != "" && args == nil {
			m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
			return false
		}
		if args == nil {
			args = []float64{0}
		}
	}

	var err error
	switch {
	case item.measure:
		_, err = m.circuit.AddMeasurement([]int{m.cursorQubit}, nil, item.basis)
	case item.controlled:
		_, err = m.circuit.AddGate(item.gate, []int{targetQ}, []int{m.cursorQubit}, args, nil)
	case item.block:
		_, err = m.circuit.AddGate(item.gate, []int{m.cursorQubit, targetQ}, nil, args, nil)
	default:
		_, err = m.circuit.AddGate(item.gate, []int{m.cursorQubit}, nil, args, nil)
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("Cannot place: %v", err)
		return false
	}

	m.paramInput = ""
	m.pending = menuItem{}
	m.cursorCol = len(m.circuit.Instructions)
	m.result = nil
	m.syncEditor()
	return true
}

// removeInstruction drops the instruction at the given column. Parameter
// entries are keyed by creation index, so the circuit is rebuilt through
// a text round trip rather than spliced in place.
func (m *Model) removeInstruction(idx int) {
	if idx < 0 || idx >= len(m.circuit.Instructions) {
		return
	}
	text, err := m.circuit.ToText("")
	if err != nil {
		m.statusMsg = fmt.Sprintf("Delete error: %v", err)
		return
	}
	lines := strings.Split(text, "\n")
	// Line 0 is the header; instruction i lives on line i+1.
	lines = append(lines[:idx+1], lines[idx+2:]...)
	c, err := qsim.FromText(strings.Join(lines, "\n"), "")
	if err != nil {
		m.statusMsg = fmt.Sprintf("Delete error: %v", err)
		return
	}
	m.circuit = c
	m.result = nil
	m.clampCursor()
	m.syncEditor()
}

// resizeRegister rebuilds the circuit with a different qubit count,
// keeping every instruction that still fits.
func (m *Model) resizeRegister(delta int) {
	qubits := m.circuit.NumQubits + delta
	if qubits < 1 {
		return
	}
	c := qsim.NewCircuit(qubits, qubits)
	for _, in := range m.circuit.Instructions {
		if maxIndex(in.Qubits) >= qubits || maxIndex(in.Controls) >= qubits || maxIndex(in.Clbits) >= qubits {
			continue
		}
		args, err := m.circuit.Args(in)
		if err != nil {
			continue
		}
		if in.Kind == qsim.KindMeasurement {
			_, _ = c.AddMeasurement(in.Qubits, in.Clbits, in.Basis)
		} else {
			_, _ = c.AddGateTrigger(in.Name, in.Qubits, in.Controls, in.Trigger, args, nil)
		}
	}
	m.circuit = c
	m.result = nil
	m.clampCursor()
	m.syncEditor()
}

func maxIndex(v []int) int {
	out := -1
	for _, x := range v {
		if x > out {
			out = x
		}
	}
	return out
}

// runShots executes the circuit and stores the histogram.
func (m *Model) runShots(concurrent bool) {
	var (
		res *qsim.Result
		err error
	)
	if concurrent {
		res, err = m.circuit.RunConcurrent(m.shots, runtime.NumCPU())
	} else {
		res, err = m.circuit.Run(m.shots)
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("Run error: %v", err)
		return
	}
	m.result = res
	m.statusMsg = fmt.Sprintf("Ran %d shots", m.shots)
}

// editParamPositions returns the pool positions of the instruction under
// the cursor, or nil when it has no parameters.
func (m *Model) editParamPositions() []int {
	if m.editIndex < 0 || m.editIndex >= len(m.circuit.Instructions) {
		return nil
	}
	return m.circuit.Params.Indices(m.editIndex)
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		editW := max(msg.Width/3-6, 20)
		m.editor.SetWidth(editW)
		ctrlH := 6
		circH := msg.Height - ctrlH - 4
		editorH := max(circH-10, 4)
		m.editor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusEditor
				m.editor.Focus()
			case "ctrl+r":
				m.circuit = qsim.NewCircuit(m.circuit.NumQubits, m.circuit.NumClbits)
				m.cursorCol = 0
				m.viewStart = 0
				m.result = nil
				m.syncEditor()
			case "ctrl+s":
				path, err := m.circuit.Save("circuit", "")
				if err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = "Saved " + path
				}
			case "r":
				m.runShots(false)
			case "R":
				m.runShots(true)
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorCol > 0 {
					m.cursorCol--
					if m.cursorCol < m.viewStart {
						m.viewStart = m.cursorCol
					}
				}
			case "right", "l":
				if m.cursorCol < len(m.circuit.Instructions) {
					m.cursorCol++
				}
			case "+", "=":
				m.resizeRegister(1)
			case "-":
				m.resizeRegister(-1)
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "backspace", "delete":
				m.removeInstruction(m.cursorCol)
			case "p":
				if m.cursorCol < len(m.circuit.Instructions) {
					m.editIndex = m.cursorCol
					if m.editParamPositions() == nil {
						m.statusMsg = "Instruction has no parameters"
						break
					}
					m.paramInput = ""
					m.focus = focusEditParam
				}
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				cat := gateMenu[m.menuCat]
				if m.menuItem < len(cat.items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				m.pending = item

				if item.needsParams {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				if item.needsTarget {
					if m.circuit.NumQubits < 2 {
						break
					}
					m.focus = focusSelectTarget
					m.targetQubit = otherQubit(m.cursorQubit, m.circuit.NumQubits)
					break
				}
				if m.placeGate(item, -1) {
					m.focus = focusCircuit
				}
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
				m.pending = menuItem{}
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.circuit.NumQubits; next++ {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				if m.placeGate(m.pending, m.targetQubit) {
					m.focus = focusCircuit
				}
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
				m.pending = menuItem{}
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				if m.paramInput != "" && parseParams(m.paramInput) == nil {
					m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				if m.pending.needsTarget {
					if m.circuit.NumQubits < 2 {
						break
					}
					m.focus = focusSelectTarget
					m.targetQubit = otherQubit(m.cursorQubit, m.circuit.NumQubits)
				} else if m.placeGate(m.pending, -1) {
					m.focus = focusCircuit
				}
			default:
				if len(key) == 1 && isParamChar(key[0]) {
					m.paramInput += key
				}
			}

		case focusEditParam:
			switch key {
			case "esc":
				m.paramInput = ""
				m.focus = focusCircuit
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				params := parseParams(m.paramInput)
				if params == nil {
					m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				positions := m.editParamPositions()
				for i, pos := range positions {
					if i < len(params) {
						m.circuit.Params.SetAt(pos, params[i])
					}
				}
				m.result = nil
				m.paramInput = ""
				m.focus = focusCircuit
				m.syncEditor()
			default:
				if len(key) == 1 && isParamChar(key[0]) {
					m.paramInput += key
				}
			}

		case focusEditor:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.editor.Blur()
			default:
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseEditorInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// otherQubit picks an initial target next to the cursor wire.
func otherQubit(cursor, numQubits int) int {
	if cursor+1 < numQubits {
		return cursor + 1
	}
	return cursor - 1
}

func isParamChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || ch == '.' || ch == ',' || ch == '-' || ch == 'e' || ch == 'E' ||
		ch == '+' || ch == 'p' || ch == 'i' || ch == '*' || ch == '/'
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideWidth := m.width / 3
	circuitWidth := m.width - sideWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	sidePanel := m.renderSidePanel(sideWidth, circuitHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, sidePanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	if m.focus == focusInputParam || m.focus == focusEditParam {
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the parameter input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	title := "Enter Parameter"
	if m.focus == focusEditParam {
		title = "Edit Parameter"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Value: %s_", m.paramInput))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}
