package main

import (
	"fmt"
	"strings"

	"qsim"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// boxName returns the short label drawn inside a gate box.
func boxName(in qsim.Instruction) string {
	name := strings.ToUpper(in.Name)
	if in.Kind == qsim.KindMeasurement {
		name = "M" + in.Basis
	}
	if len(name) > gateNameW {
		name = name[:gateNameW]
	}
	return name
}

// controlSymbol returns the wire symbol for a control qubit. A zero
// trigger renders as an open dot.
func controlSymbol(in qsim.Instruction) string {
	if in.Trigger == 0 {
		return "○"
	}
	return "●"
}

// targetSymbol returns the wire symbol drawn on the target of a
// controlled gate.
func targetSymbol(in qsim.Instruction) string {
	switch in.Name {
	case "x":
		return "⊕"
	case "z":
		return "●"
	default:
		return strings.ToUpper(in.Name)
	}
}

// ──────────────────────────── Cell rendering ────────────────────────────

// cellRole describes what one (instruction, qubit) cell shows.
type cellRole int

const (
	roleEmpty cellRole = iota
	roleBox
	roleControl
	roleTargetMark // ⊕/● on a controlled gate's target wire
	roleSwapMark
	rolePass // vertical connector passing through
)

// cellInfo is the render plan for one cell of the instruction grid.
type cellInfo struct {
	role         cellRole
	in           qsim.Instruction
	vertAbove    bool
	vertBelow    bool
	measureBelow bool // double-line connector down to the classical wire
}

// cellFor computes the cell plan for one instruction column and wire.
func cellFor(in qsim.Instruction, qubit, numQubits int) cellInfo {
	info := cellInfo{in: in}

	involved := append([]int{}, in.Qubits...)
	involved = append(involved, in.Controls...)
	lo, hi := numQubits, -1
	for _, q := range involved {
		if q < lo {
			lo = q
		}
		if q > hi {
			hi = q
		}
	}

	onTarget := containsInt(in.Qubits, qubit)
	onControl := containsInt(in.Controls, qubit)
	spanning := len(involved) > 1 && qubit > lo && qubit < hi

	switch {
	case in.Kind == qsim.KindMeasurement && onTarget:
		info.role = roleBox
		info.measureBelow = qubit == hi
		info.vertBelow = qubit < hi
		info.vertAbove = qubit > lo
	case onControl:
		info.role = roleControl
	case in.IsControlled() && onTarget:
		info.role = roleTargetMark
	case in.Name == "swap" && onTarget:
		info.role = roleSwapMark
	case onTarget:
		info.role = roleBox
	case in.Kind == qsim.KindMeasurement && spanning:
		info.role = rolePass
		info.measureBelow = true
	case spanning:
		info.role = rolePass
	default:
		info.role = roleEmpty
	}

	if info.role != roleEmpty && info.role != rolePass && len(involved) > 1 {
		info.vertAbove = qubit > lo
		info.vertBelow = qubit < hi
	}
	if in.Kind == qsim.KindMeasurement && onTarget && qubit == hi {
		// Lowest measured wire connects down to the classical register.
		info.vertBelow = false
		info.measureBelow = true
	}

	return info
}

func containsInt(v []int, x int) bool {
	for _, item := range v {
		if item == x {
			return true
		}
	}
	return false
}

// renderCell returns 3 lines (top, mid, bot) for a single cell, each
// exactly cellW visual characters wide.
func renderCell(info cellInfo, highlighted bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	topRow := func(i cellInfo) string {
		if i.vertAbove {
			return vertRow
		}
		return emptyRow
	}
	botRow := func(i cellInfo) string {
		if i.measureBelow {
			return dblVertRow
		}
		if i.vertBelow {
			return vertRow
		}
		return emptyRow
	}

	if highlighted {
		bdr := cursorBoxStyle
		innerW := cellW - 2
		inDashL := (innerW - 1) / 2
		inDashR := innerW - inDashL - 1
		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
		switch info.role {
		case roleBox:
			name := padCenter(boxName(info.in), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case roleControl:
			mid = bdr.Render("║") + strings.Repeat("─", inDashL) + gateStyle.Render(controlSymbol(info.in)) + strings.Repeat("─", inDashR) + bdr.Render("║")
		case roleTargetMark:
			mid = bdr.Render("║") + strings.Repeat("─", inDashL) + gateStyle.Render(targetSymbol(info.in)) + strings.Repeat("─", inDashR) + bdr.Render("║")
		case roleSwapMark:
			mid = bdr.Render("║") + strings.Repeat("─", inDashL) + gateStyle.Render("×") + strings.Repeat("─", inDashR) + bdr.Render("║")
		case rolePass:
			mid = bdr.Render("║") + strings.Repeat("─", inDashL) + "┼" + strings.Repeat("─", inDashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	switch info.role {
	case roleBox:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(boxName(info.in), gateNameW)
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if info.vertAbove {
			top = vertRow
		}
		if info.measureBelow {
			bot = dblVertRow
		} else if info.vertBelow {
			bot = vertRow
		}

	case roleControl:
		top = topRow(info)
		mid = strings.Repeat("─", dashL) + gateStyle.Render(controlSymbol(info.in)) + strings.Repeat("─", dashR)
		bot = botRow(info)

	case roleTargetMark:
		top = topRow(info)
		mid = strings.Repeat("─", dashL) + gateStyle.Render(targetSymbol(info.in)) + strings.Repeat("─", dashR)
		bot = botRow(info)

	case roleSwapMark:
		top = topRow(info)
		mid = strings.Repeat("─", dashL) + gateStyle.Render("×") + strings.Repeat("─", dashR)
		bot = botRow(info)

	case rolePass:
		if info.measureBelow {
			top = dblVertRow
			mid = strings.Repeat("─", dashL) + cbitConnectorStyle.Render("╫") + strings.Repeat("─", dashR)
			bot = dblVertRow
		} else {
			top = vertRow
			mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
			bot = vertRow
		}

	default:
		top = topRow(info)
		mid = strings.Repeat("─", cellW)
		bot = botRow(info)
	}

	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the instruction-column circuit grid.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	availWidth := width - labelVisualW - 4
	maxCols := max(availWidth/cellW, 1)

	start := m.viewStart
	if m.cursorCol >= start+maxCols {
		start = m.cursorCol - maxCols + 1
	}
	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing instructions %d–%d\n", start, start+maxCols-1)
	}

	// Column header: creation indices.
	header := strings.Repeat(" ", labelVisualW)
	for col := start; col < start+maxCols; col++ {
		label := ""
		if col < len(m.circuit.Instructions) {
			label = fmt.Sprintf("%d", col)
		} else if col == len(m.circuit.Instructions) {
			label = "+"
		}
		header += dimStyle.Render(padCenter(label, cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := 0; qubit < m.circuit.NumQubits; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for col := start; col < start+maxCols; col++ {
			var info cellInfo
			if col < len(m.circuit.Instructions) {
				info = cellFor(m.circuit.Instructions[col], qubit, m.circuit.NumQubits)
			}

			hl := col == m.cursorCol && qubit == m.cursorQubit &&
				(m.focus == focusCircuit || m.focus == focusMenu)
			if m.focus == focusSelectTarget && col == m.cursorCol && qubit == m.targetQubit {
				hl = true
			}

			top, mid, bot := renderCell(info, hl)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Classical register wire.
	label := fmt.Sprintf("c%d", m.circuit.NumClbits)
	cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + cbitWireStyle.Render("══")
	for col := start; col < start+maxCols; col++ {
		landed := false
		bitLabel := ""
		if col < len(m.circuit.Instructions) {
			in := m.circuit.Instructions[col]
			if in.Kind == qsim.KindMeasurement && len(in.Clbits) > 0 {
				landed = true
				bitLabel = fmt.Sprintf("%d", in.Clbits[0])
			}
		}
		if landed {
			dashL := (cellW - 1) / 2
			dashR := max(cellW-dashL-1-len(bitLabel), 0)
			cbitLine += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
				cbitConnectorStyle.Render("╩"+bitLabel) +
				cbitWireStyle.Render(strings.Repeat("═", dashR))
		} else {
			cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW))
		}
	}
	sb.WriteString(cbitLine + "\n")

	// Status line.
	if m.focus == focusSelectTarget {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pending.name))
		sb.WriteString("  Select second qubit: ")
		fmt.Fprintf(&sb, "%s", targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	} else {
		fmt.Fprintf(&sb, "\n  Wire q[%d], instruction %d/%d", m.cursorQubit, m.cursorCol, len(m.circuit.Instructions))
		if m.cursorCol < len(m.circuit.Instructions) {
			in := m.circuit.Instructions[m.cursorCol]
			fmt.Fprintf(&sb, "  │  %s", in.DisplayName())
			if args, err := m.circuit.Args(in); err == nil && len(args) > 0 {
				parts := make([]string, len(args))
				for i, a := range args {
					parts[i] = formatParam(a)
				}
				fmt.Fprintf(&sb, "(%s)", strings.Join(parts, ", "))
			}
		}
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderSidePanel renders the circuit text editor with the run histogram
// below it.
func (m Model) renderSidePanel(width, height int) string {
	var sb strings.Builder

	title := "Circuit Text"
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderHistogram(width - 6))

	return editorStyle.Width(width).Height(height).Render(sb.String())
}

// renderHistogram renders the outcome bars of the last run.
func (m Model) renderHistogram(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Results"))
	sb.WriteString("\n")
	if m.result == nil {
		sb.WriteString(dimStyle.Render("press r to run"))
		return sb.String()
	}

	barW := max(width-20, 8)
	outcomes := m.result.Sorted()
	if len(outcomes) > 8 {
		outcomes = outcomes[:8]
	}
	for _, o := range outcomes {
		fill := int(o.Probability*float64(barW) + 0.5)
		bar := strings.Repeat("█", fill) + strings.Repeat("░", barW-fill)
		fmt.Fprintf(&sb, "%-8s %s %5.1f%%\n", "["+o.Key+"]", histBarStyle.Render(bar), o.Probability*100)
	}
	fmt.Fprintf(&sb, "%s", dimStyle.Render(fmt.Sprintf("%d shots", m.result.Shots)))
	return sb.String()
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move wire  ←→/hl Move instruction  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate  ")
	sb.WriteString(activeGateStyle.Render("p"))
	sb.WriteString(" Edit params\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("r Run  R Run parallel  Tab Switch focus  Bksp Delete  ^R Reset  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
// It properly handles ANSI escape sequences in the background line.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0
	inEsc := false

	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			inEsc = true
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				if inEsc && runes[i] != '\x1b' && runes[i] != '[' && ((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z')) {
					inEsc = false
					i++
					break
				}
				i++
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}

	// Pad prefix if bg line is shorter than x
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if i > 0 && runes[i-1] != '\x1b' && runes[i-1] != '[' && ((runes[i-1] >= 'A' && runes[i-1] <= 'Z') || (runes[i-1] >= 'a' && runes[i-1] <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	// Collect suffix: rest of the background line
	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
