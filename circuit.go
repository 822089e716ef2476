package qsim

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// CircExt is the file extension of the circuit text format.
const CircExt = ".circ"

// Circuit holds an ordered instruction list, the parameter map those
// instructions index into, the gate registry used to resolve operators,
// and the engine shots run against. Instructions and parameter entries
// are coupled by creation index: the i-th instruction owns the i-th
// parameter entry.
type Circuit struct {
	NumQubits    int
	NumClbits    int
	Instructions []Instruction
	Params       *ParameterMap
	Registry     *GateRegistry
	Backend      *StateVector

	res *Result
}

// NewCircuit returns a circuit over the given register sizes, backed by a
// fresh state-vector engine and the default gate registry. clbits <= 0
// defaults to the qubit count.
func NewCircuit(qubits, clbits int) *Circuit {
	if clbits <= 0 {
		clbits = qubits
	}
	return &Circuit{
		NumQubits: qubits,
		NumClbits: clbits,
		Params:    NewParameterMap(),
		Registry:  DefaultRegistry(),
		Backend:   NewStateVector(qubits),
	}
}

// Seed fixes the engine's measurement sampling source.
func (c *Circuit) Seed(seed int64) {
	c.Backend.Seed(seed)
}

// append assigns the creation index and records the parameter entry,
// keeping the instruction list and parameter map aligned.
func (c *Circuit) append(in Instruction, args []float64, linked []int) Instruction {
	in.Index = len(c.Instructions)
	entry := c.Params.Add(args, linked)
	if entry != in.Index {
		panic(fmt.Sprintf("qsim: instruction index %d out of step with parameter entry %d", in.Index, entry))
	}
	c.Instructions = append(c.Instructions, in)
	return in
}

// AddGate appends a gate instruction. qubits nil targets every qubit.
// args holds fresh argument values; linked instead references existing
// parameter-pool positions, sharing the values already stored there. A
// single value or position is broadcast across all targets of a
// single-qubit family. Unknown names fail here, at build time.
func (c *Circuit) AddGate(name string, qubits, con []int, args []float64, linked []int) (Instruction, error) {
	return c.AddGateTrigger(name, qubits, con, 1, args, linked)
}

// AddGateTrigger is AddGate with an explicit control trigger: the control
// basis state (0 or 1) that activates the gate.
func (c *Circuit) AddGateTrigger(name string, qubits, con []int, trigger int, args []float64, linked []int) (Instruction, error) {
	size, err := c.Registry.BlockSize(name)
	if err != nil {
		return Instruction{}, err
	}
	if qubits == nil {
		qubits = allQubits(c.NumQubits)
	}
	if err := c.checkIndices(qubits, c.NumQubits, "qubit"); err != nil {
		return Instruction{}, err
	}
	if err := c.checkIndices(con, c.NumQubits, "control qubit"); err != nil {
		return Instruction{}, err
	}
	if size == 1 && len(qubits) > 1 {
		if len(args) == 1 {
			spread := make([]float64, len(qubits))
			for i := range spread {
				spread[i] = args[0]
			}
			args = spread
		}
		if len(linked) == 1 {
			shared := make([]int, len(qubits))
			for i := range shared {
				shared[i] = linked[0]
			}
			linked = shared
		}
	}
	in := Instruction{
		Kind:     KindGate,
		Name:     name,
		Qubits:   qubits,
		Controls: con,
		Trigger:  trigger,
		Size:     size,
	}
	return c.append(in, args, linked), nil
}

// AddMeasurement appends a measurement instruction. qubits nil measures
// every qubit; clbits nil defaults to the same indices as the targets.
// basis is "", "x", "y" or "z".
func (c *Circuit) AddMeasurement(qubits, clbits []int, basis string) (Instruction, error) {
	if _, _, err := PauliEigenbasis(basis); err != nil {
		return Instruction{}, err
	}
	if qubits == nil {
		qubits = allQubits(c.NumQubits)
	}
	if clbits == nil {
		clbits = make([]int, len(qubits))
		copy(clbits, qubits)
	}
	if err := c.checkIndices(qubits, c.NumQubits, "qubit"); err != nil {
		return Instruction{}, err
	}
	if err := c.checkIndices(clbits, c.NumClbits, "classical bit"); err != nil {
		return Instruction{}, err
	}
	in := Instruction{
		Kind:   KindMeasurement,
		Name:   "m",
		Qubits: qubits,
		Clbits: clbits,
		Basis:  basis,
	}
	return c.append(in, nil, nil), nil
}

// checkIndices rejects register references outside [0, size) before any
// instruction or parameter entry is recorded, so a failed add leaves the
// circuit untouched.
func (c *Circuit) checkIndices(indices []int, size int, kind string) error {
	for _, idx := range indices {
		if idx < 0 || idx >= size {
			return fmt.Errorf("%w: %s index %d outside register of size %d", ErrDimensionMismatch, kind, idx, size)
		}
	}
	return nil
}

func allQubits(n int) []int {
	qubits := make([]int, n)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

// mustGate backs the fixed-name sugar below, where the registry lookup
// cannot fail.
func (c *Circuit) mustGate(name string, qubits, con []int, args []float64) Instruction {
	in, err := c.AddGate(name, qubits, con, args, nil)
	if err != nil {
		panic(err)
	}
	return in
}

// Single-qubit gate sugar. No qubits targets the whole register.

func (c *Circuit) I(qubits ...int) Instruction { return c.mustGate("i", orAll(qubits), nil, nil) }
func (c *Circuit) X(qubits ...int) Instruction { return c.mustGate("x", orAll(qubits), nil, nil) }
func (c *Circuit) Y(qubits ...int) Instruction { return c.mustGate("y", orAll(qubits), nil, nil) }
func (c *Circuit) Z(qubits ...int) Instruction { return c.mustGate("z", orAll(qubits), nil, nil) }
func (c *Circuit) H(qubits ...int) Instruction { return c.mustGate("h", orAll(qubits), nil, nil) }
func (c *Circuit) S(qubits ...int) Instruction { return c.mustGate("s", orAll(qubits), nil, nil) }
func (c *Circuit) T(qubits ...int) Instruction { return c.mustGate("t", orAll(qubits), nil, nil) }

// Rotation sugar with a fresh angle argument.

func (c *Circuit) RX(qubit int, theta float64) Instruction {
	return c.mustGate("rx", []int{qubit}, nil, []float64{theta})
}

func (c *Circuit) RY(qubit int, theta float64) Instruction {
	return c.mustGate("ry", []int{qubit}, nil, []float64{theta})
}

func (c *Circuit) RZ(qubit int, theta float64) Instruction {
	return c.mustGate("rz", []int{qubit}, nil, []float64{theta})
}

func (c *Circuit) P(qubit int, theta float64) Instruction {
	return c.mustGate("p", []int{qubit}, nil, []float64{theta})
}

// Controlled gate sugar.

func (c *Circuit) CX(con, qubit int) Instruction {
	return c.mustGate("x", []int{qubit}, []int{con}, nil)
}

func (c *Circuit) CY(con, qubit int) Instruction {
	return c.mustGate("y", []int{qubit}, []int{con}, nil)
}

func (c *Circuit) CZ(con, qubit int) Instruction {
	return c.mustGate("z", []int{qubit}, []int{con}, nil)
}

func (c *Circuit) CH(con, qubit int) Instruction {
	return c.mustGate("h", []int{qubit}, []int{con}, nil)
}

func (c *Circuit) CRX(con, qubit int, theta float64) Instruction {
	return c.mustGate("rx", []int{qubit}, []int{con}, []float64{theta})
}

func (c *Circuit) CRY(con, qubit int, theta float64) Instruction {
	return c.mustGate("ry", []int{qubit}, []int{con}, []float64{theta})
}

func (c *Circuit) CRZ(con, qubit int, theta float64) Instruction {
	return c.mustGate("rz", []int{qubit}, []int{con}, []float64{theta})
}

// Toffoli appends a doubly-controlled X.
func (c *Circuit) Toffoli(con1, con2, qubit int) Instruction {
	return c.mustGate("x", []int{qubit}, []int{con1, con2}, nil)
}

// Two-qubit block sugar.

func (c *Circuit) XY(qubit1, qubit2 int, theta float64) Instruction {
	return c.mustGate("xy", []int{qubit1, qubit2}, nil, []float64{theta})
}

func (c *Circuit) Swap(qubit1, qubit2 int) Instruction {
	return c.mustGate("swap", []int{qubit1, qubit2}, nil, nil)
}

// Measurement sugar. No qubits measures the whole register.

func (c *Circuit) M(qubits ...int) Instruction  { return c.mustMeasure(orAll(qubits), "") }
func (c *Circuit) MX(qubits ...int) Instruction { return c.mustMeasure(orAll(qubits), "x") }
func (c *Circuit) MY(qubits ...int) Instruction { return c.mustMeasure(orAll(qubits), "y") }
func (c *Circuit) MZ(qubits ...int) Instruction { return c.mustMeasure(orAll(qubits), "z") }

func (c *Circuit) mustMeasure(qubits []int, basis string) Instruction {
	in, err := c.AddMeasurement(qubits, nil, basis)
	if err != nil {
		panic(err)
	}
	return in
}

func orAll(qubits []int) []int {
	if len(qubits) == 0 {
		return nil
	}
	return qubits
}

// Args returns the resolved argument values of the given instruction.
func (c *Circuit) Args(in Instruction) ([]float64, error) {
	return c.Params.Get(in.Index)
}

// RunShot executes one shot on the circuit's own engine: reinitialize,
// iterate instructions in creation order, write measurement eigenvalues
// to the classical-bit output vector.
func (c *Circuit) RunShot() ([]float64, error) {
	return c.runShotOn(c.Backend)
}

func (c *Circuit) runShotOn(eng *StateVector) ([]float64, error) {
	eng.Reset()
	data := make([]float64, c.NumClbits)
	for _, in := range c.Instructions {
		switch in.Kind {
		case KindGate:
			args, err := c.Params.Get(in.Index)
			if err != nil {
				return nil, err
			}
			if err := eng.ApplyGate(in, args, c.Registry); err != nil {
				return nil, err
			}
		case KindMeasurement:
			vals, vecs, err := PauliEigenbasis(in.Basis)
			if err != nil {
				return nil, err
			}
			// No pre-measurement snapshots during shot runs; the log would
			// grow with the shot count.
			values, err := eng.MeasureBasis(in.Qubits, vals, vecs, true, false)
			if err != nil {
				return nil, err
			}
			for i, cb := range in.Clbits {
				data[cb] = values[i]
			}
		}
	}
	return data, nil
}

// Run executes the circuit for the given number of shots sequentially
// and aggregates the outcomes.
func (c *Circuit) Run(shots int) (*Result, error) {
	data := make([][]float64, shots)
	for i := 0; i < shots; i++ {
		row, err := c.RunShot()
		if err != nil {
			return nil, err
		}
		data[i] = row
	}
	c.res = NewResult(data, c.NumClbits)
	return c.res, nil
}

// RunConcurrent executes shots on up to workers goroutines. Shots are
// independent: each gets its own engine with an RNG stream drawn from
// the circuit's source, so a seeded circuit stays reproducible.
// Parameter values must not change while shots are in flight.
func (c *Circuit) RunConcurrent(shots, workers int) (*Result, error) {
	seeds := make([]int64, shots)
	for i := range seeds {
		seeds[i] = c.Backend.rng.Int63()
	}
	data := make([][]float64, shots)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < shots; i++ {
		g.Go(func() error {
			eng := NewStateVector(c.NumQubits)
			eng.Seed(seeds[i])
			row, err := c.runShotOn(eng)
			if err != nil {
				return err
			}
			data[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.res = NewResult(data, c.NumClbits)
	return c.res, nil
}

// Res returns the result of the last Run, or nil.
func (c *Circuit) Res() *Result {
	return c.res
}

func (c *Circuit) String() string {
	out := fmt.Sprintf("Circuit(qubits: %d, clbits: %d)", c.NumQubits, c.NumClbits)
	for _, in := range c.Instructions {
		out += "\n   " + in.String()
	}
	return out
}

// ToText serializes the circuit to the text format: one header line,
// then one line per instruction.
func (c *Circuit) ToText(delim string) (string, error) {
	if delim == "" {
		delim = DefaultDelim
	}
	lines := []string{fmt.Sprintf("qubits=%d%sclbits=%d%s", c.NumQubits, delim, c.NumClbits, delim)}
	for _, in := range c.Instructions {
		args, err := c.Params.Get(in.Index)
		if err != nil {
			return "", err
		}
		lines = append(lines, formatInstruction(in, args, c.Params.Indices(in.Index), delim))
	}
	return strings.Join(lines, "\n"), nil
}

// FromText parses a circuit from the text format. Argument values are
// restored as fresh pool entries; linkage between instructions is not
// reconstructed.
func FromText(text, delim string) (*Circuit, error) {
	if delim == "" {
		delim = DefaultDelim
	}
	// Keep line content intact: the final instruction line may or may not
	// carry the trailing delimiter space, and both forms must parse.
	var header string
	var body []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		body = append(body, line)
	}
	if header == "" {
		return nil, fmt.Errorf("empty circuit text")
	}
	qubits, err := headerInt(header, "qubits", delim)
	if err != nil {
		return nil, err
	}
	clbits, err := headerInt(header, "clbits", delim)
	if err != nil {
		return nil, err
	}
	c := NewCircuit(qubits, clbits)
	for _, line := range body {
		p, err := parseInstruction(line, delim)
		if err != nil {
			return nil, err
		}
		if basis, ok := measurementBasis(p.Name); ok {
			if _, err := c.AddMeasurement(p.Qubits, p.Clbits, basis); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := c.AddGate(p.Name, p.Qubits, p.Con, p.Args, nil); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// measurementBasis recognizes serialized measurement names ("m", "mx",
// "my", "mz") and extracts the basis tag.
func measurementBasis(name string) (string, bool) {
	switch name {
	case "m":
		return "", true
	case "mx":
		return "x", true
	case "my":
		return "y", true
	case "mz":
		return "z", true
	}
	return "", false
}

// headerInt extracts an integer "key=value" field from the header line.
func headerInt(line, key, delim string) (int, error) {
	for _, part := range splitFields(line, delim) {
		if v, ok := strings.CutPrefix(part, key+"="); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("bad header field %q: %w", part, err)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("header missing %q field", key)
}

// Save writes the circuit text format to a file, appending the .circ
// extension when missing. Returns the path written.
func (c *Circuit) Save(path, delim string) (string, error) {
	if !strings.HasSuffix(path, CircExt) {
		path += CircExt
	}
	text, err := c.ToText(delim)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a circuit from a .circ file.
func Load(path, delim string) (*Circuit, error) {
	if !strings.HasSuffix(path, CircExt) {
		path += CircExt
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromText(string(raw), delim)
}
