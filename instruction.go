package qsim

import (
	"fmt"
	"strconv"
	"strings"
)

// InstructionKind tags the two instruction payload shapes.
type InstructionKind int

const (
	KindGate InstructionKind = iota
	KindMeasurement
)

// DefaultDelim separates fields in the circuit text format.
const DefaultDelim = "; "

// Instruction is one step of a circuit: either a gate application or a
// projective measurement. Qubits and classical bits are referenced by
// register index only. Index is the creation index assigned by the
// Circuit; it aligns the instruction with its ParameterMap entry.
type Instruction struct {
	Index    int
	Kind     InstructionKind
	Name     string // lowercase registry name for gates, "m" for measurements
	Qubits   []int
	Controls []int // control qubits, gates only
	Clbits   []int // destination classical bits, measurements only
	Trigger  int   // control basis state (0 or 1) that activates the gate
	Size     int   // 1: single-qubit family; >=2: native block width
	Basis    string // measurement basis tag: "", "x", "y" or "z"
}

// IsControlled reports whether the instruction has control qubits.
func (in Instruction) IsControlled() bool {
	return len(in.Controls) > 0
}

// DisplayName returns the gate name prefixed with one "c" per control
// qubit. Display only; operator construction uses Name.
func (in Instruction) DisplayName() string {
	if in.Kind == KindMeasurement {
		return in.Name + in.Basis
	}
	return strings.Repeat("c", len(in.Controls)) + in.Name
}

func (in Instruction) String() string {
	kind := "Gate"
	if in.Kind == KindMeasurement {
		kind = "Measurement"
	}
	parts := []string{in.DisplayName(), fmt.Sprintf("ID: %d", in.Index)}
	if len(in.Qubits) > 0 {
		parts = append(parts, fmt.Sprintf("qBits: %v", in.Qubits))
	}
	if len(in.Controls) > 0 {
		parts = append(parts, fmt.Sprintf("con: %v", in.Controls))
	}
	if len(in.Clbits) > 0 {
		parts = append(parts, fmt.Sprintf("cBits: %v", in.Clbits))
	}
	return fmt.Sprintf("%s(%s)", kind, strings.Join(parts, ", "))
}

// formatInstruction renders one instruction line of the circuit text
// format. args and argidx are the instruction's resolved parameter values
// and pool positions, both possibly nil.
func formatInstruction(in Instruction, args []float64, argidx []int, delim string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "idx=%d%s", in.Index, delim)
	fmt.Fprintf(&sb, "name=%s%s", serialName(in), delim)
	fmt.Fprintf(&sb, "qbits=%s%s", formatIntList(in.Qubits), delim)
	fmt.Fprintf(&sb, "con=%s%s", formatIntList(in.Controls), delim)
	fmt.Fprintf(&sb, "cbits=%s%s", formatIntList(in.Clbits), delim)
	fmt.Fprintf(&sb, "arg=%s%s", formatFloatList(args), delim)
	fmt.Fprintf(&sb, "argidx=%s%s", formatIntList(argidx), delim)
	return sb.String()
}

// serialName encodes the measurement basis into the serialized name
// ("mx", "my", "mz") so it survives the round trip.
func serialName(in Instruction) string {
	if in.Kind == KindMeasurement {
		return in.Name + in.Basis
	}
	return in.Name
}

// parsedInstruction is the raw result of parsing one instruction line.
// The circuit rebuilds a full Instruction from it, consulting its gate
// registry for block sizes.
type parsedInstruction struct {
	Index  int
	Name   string
	Qubits []int
	Con    []int
	Clbits []int
	Args   []float64
	Argidx []int
}

// splitFields splits one line of the text format into its key=value
// parts. Fields are split on the delimiter's non-space core and trimmed
// individually, so a line parses whether or not its trailing delimiter
// space survived the transport.
func splitFields(line, delim string) []string {
	sep := strings.TrimSpace(delim)
	if sep == "" {
		sep = delim
	}
	var out []string
	for _, part := range strings.Split(line, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// parseInstruction parses one line of the circuit text format.
func parseInstruction(line, delim string) (parsedInstruction, error) {
	var p parsedInstruction
	fields := map[string]string{}
	for _, part := range splitFields(line, delim) {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return p, fmt.Errorf("malformed field %q", part)
		}
		fields[key] = val
	}
	name, ok := fields["name"]
	if !ok {
		return p, fmt.Errorf("instruction line missing name: %q", line)
	}
	p.Name = name

	var err error
	if idx, ok := fields["idx"]; ok {
		p.Index, err = strconv.Atoi(idx)
		if err != nil {
			return p, fmt.Errorf("bad idx %q: %w", idx, err)
		}
	}
	if p.Qubits, err = parseIntList(fields["qbits"]); err != nil {
		return p, err
	}
	if p.Con, err = parseIntList(fields["con"]); err != nil {
		return p, err
	}
	if p.Clbits, err = parseIntList(fields["cbits"]); err != nil {
		return p, err
	}
	if p.Args, err = parseFloatList(fields["arg"]); err != nil {
		return p, err
	}
	if p.Argidx, err = parseIntList(fields["argidx"]); err != nil {
		return p, err
	}
	return p, nil
}

func formatIntList(v []int) string {
	if v == nil {
		return "None"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloatList(v []float64) string {
	if v == nil {
		return "None"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func parseIntList(s string) ([]int, error) {
	items, err := splitList(s)
	if items == nil || err != nil {
		return nil, err
	}
	out := make([]int, len(items))
	for i, item := range items {
		v, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("bad list entry %q: %w", item, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	items, err := splitList(s)
	if items == nil || err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		v, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("bad list entry %q: %w", item, err)
		}
		out[i] = v
	}
	return out, nil
}

// splitList splits "[a, b, c]" into its items. "None" and the empty
// string yield nil.
func splitList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("malformed list %q", s)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
