package qsim

import (
	"fmt"
	"math"
	"math/cmplx"
)

// GateFunc builds a single-qubit matrix from the instruction arguments.
// Parametric gates fail with ErrMissingParameter when args is empty.
type GateFunc func(args []float64) (Matrix, error)

// BlockFunc builds a full n-qubit operator for a native multi-qubit gate
// directly from the target indices, without decomposing into per-qubit
// tensor factors.
type BlockFunc func(targets []int, n int, args []float64) (Matrix, error)

type blockGate struct {
	size  int
	build BlockFunc
}

// GateRegistry maps lowercase gate names to their matrix builders. It is
// injected into operator construction; registering a custom gate mutates
// only the registry it is called on.
type GateRegistry struct {
	single map[string]GateFunc
	block  map[string]blockGate
}

// NewGateRegistry returns an empty registry.
func NewGateRegistry() *GateRegistry {
	return &GateRegistry{
		single: make(map[string]GateFunc),
		block:  make(map[string]blockGate),
	}
}

// Register adds or replaces a single-qubit gate builder.
func (r *GateRegistry) Register(name string, fn GateFunc) {
	r.single[name] = fn
}

// RegisterBlock adds or replaces a native multi-qubit gate builder
// spanning size target qubits.
func (r *GateRegistry) RegisterBlock(name string, size int, fn BlockFunc) {
	r.block[name] = blockGate{size: size, build: fn}
}

// Single returns the single-qubit builder for name.
func (r *GateRegistry) Single(name string) (GateFunc, error) {
	fn, ok := r.single[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGate, name)
	}
	return fn, nil
}

// BlockSize returns the target count of a registered block gate, or 1 for
// single-qubit names. Unknown names fail.
func (r *GateRegistry) BlockSize(name string) (int, error) {
	if g, ok := r.block[name]; ok {
		return g.size, nil
	}
	if _, ok := r.single[name]; ok {
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGate, name)
}

// Has reports whether name is registered.
func (r *GateRegistry) Has(name string) bool {
	_, ok := r.single[name]
	if !ok {
		_, ok = r.block[name]
	}
	return ok
}

// fixed builds a GateFunc for a parameter-free gate.
func fixed(m Matrix) GateFunc {
	return func([]float64) (Matrix, error) { return m, nil }
}

// rotation builds a GateFunc requiring one angle argument.
func rotation(name string, build func(theta float64) Matrix) GateFunc {
	return func(args []float64) (Matrix, error) {
		if len(args) == 0 {
			return Matrix{}, fmt.Errorf("%w: gate %q needs an angle", ErrMissingParameter, name)
		}
		return build(args[0]), nil
	}
}

// DefaultRegistry returns a registry holding the standard gate set.
func DefaultRegistry() *GateRegistry {
	h := complex(1/math.Sqrt2, 0)
	r := NewGateRegistry()
	r.Register("i", fixed(Eye(2)))
	r.Register("x", fixed(Mat2(0, 1, 1, 0)))
	r.Register("y", fixed(Mat2(0, -1i, 1i, 0)))
	r.Register("z", fixed(Mat2(1, 0, 0, -1)))
	r.Register("h", fixed(Mat2(h, h, h, -h)))
	r.Register("s", fixed(Mat2(1, 0, 0, 1i)))
	r.Register("sdg", fixed(Mat2(1, 0, 0, -1i)))
	r.Register("t", fixed(Mat2(1, 0, 0, cmplx.Exp(1i*math.Pi/4))))
	r.Register("tdg", fixed(Mat2(1, 0, 0, cmplx.Exp(-1i*math.Pi/4))))
	r.Register("rx", rotation("rx", func(theta float64) Matrix {
		c := complex(math.Cos(theta/2), 0)
		s := complex(0, -math.Sin(theta/2))
		return Mat2(c, s, s, c)
	}))
	r.Register("ry", rotation("ry", func(theta float64) Matrix {
		c := complex(math.Cos(theta/2), 0)
		s := complex(math.Sin(theta/2), 0)
		return Mat2(c, -s, s, c)
	}))
	r.Register("rz", rotation("rz", func(theta float64) Matrix {
		p := cmplx.Exp(complex(0, theta/2))
		return Mat2(cmplx.Conj(p), 0, 0, p)
	}))
	r.Register("p", rotation("p", func(theta float64) Matrix {
		return Mat2(1, 0, 0, cmplx.Exp(complex(0, theta)))
	}))
	r.RegisterBlock("xy", 2, xyGate)
	r.RegisterBlock("swap", 2, swapGate)
	return r
}

// xyGate is the two-qubit XX+YY rotation, built directly as an (N,N)
// operator on the pair (targets[0], targets[1]).
func xyGate(targets []int, n int, args []float64) (Matrix, error) {
	if len(targets) != 2 {
		return Matrix{}, fmt.Errorf("xy gate needs 2 targets, got %d", len(targets))
	}
	if len(args) == 0 {
		return Matrix{}, fmt.Errorf("%w: gate \"xy\" needs an angle", ErrMissingParameter)
	}
	theta := args[0]
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	dim := 1 << n
	b1 := basisBit(n, targets[0])
	b2 := basisBit(n, targets[1])
	out := NewMatrix(dim)
	for k := 0; k < dim; k++ {
		if (k&b1 != 0) == (k&b2 != 0) {
			out.set(k, k, 1)
		} else {
			out.set(k, k, c)
			out.set(k, k^b1^b2, s)
		}
	}
	return out, nil
}

// swapGate exchanges the states of two qubits.
func swapGate(targets []int, n int, _ []float64) (Matrix, error) {
	if len(targets) != 2 {
		return Matrix{}, fmt.Errorf("swap gate needs 2 targets, got %d", len(targets))
	}
	dim := 1 << n
	b1 := basisBit(n, targets[0])
	b2 := basisBit(n, targets[1])
	out := NewMatrix(dim)
	for k := 0; k < dim; k++ {
		if (k&b1 != 0) == (k&b2 != 0) {
			out.set(k, k, 1)
		} else {
			out.set(k, k^b1^b2, 1)
		}
	}
	return out, nil
}

// basisBit returns the basis-index bit mask of the given qubit. Qubit 0
// is the most significant bit, matching tensor-product construction
// order.
func basisBit(n, qubit int) int {
	return 1 << (n - 1 - qubit)
}

// ExpandSingle places the given 2x2 matrices at their target positions
// and the identity everywhere else, combined in one tensor product.
func ExpandSingle(targets []int, mats []Matrix, n int) Matrix {
	parts := make([]Matrix, n)
	for i := range parts {
		parts[i] = Eye(2)
	}
	for i, q := range targets {
		parts[q] = mats[i]
	}
	return KronAll(parts...)
}

// Projector returns the rank-1 projector |v><v|.
func Projector(v []Complex) Matrix {
	return Outer(v, v)
}

// ControlledGate expands a single-qubit gate to the full space with the
// given control qubits: identity unless every control is in the trigger
// basis state, in which case g acts on the target. Decomposition is
// (I - P) + P(x)g with P the conjunction of per-control trigger
// projectors.
func ControlledGate(controls []int, target int, g Matrix, n, trigger int) Matrix {
	proj := Projector(OneState)
	if trigger == 0 {
		proj = Projector(ZeroState)
	}
	parts := make([]Matrix, n)
	for i := range parts {
		parts[i] = Eye(2)
	}
	for _, c := range controls {
		parts[c] = proj
	}
	triggered := KronAll(parts...)
	parts[target] = g
	active := KronAll(parts...)
	return Eye(1 << n).Sub(triggered).Add(active)
}

// BuildOperator resolves a gate instruction to its full n-qubit operator
// using the registry and the instruction's resolved arguments.
func BuildOperator(in Instruction, args []float64, n int, reg *GateRegistry) (Matrix, error) {
	if in.Kind != KindGate {
		return Matrix{}, fmt.Errorf("cannot build operator for %s", in)
	}
	switch {
	case in.IsControlled():
		fn, err := reg.Single(in.Name)
		if err != nil {
			return Matrix{}, err
		}
		g, err := fn(args)
		if err != nil {
			return Matrix{}, err
		}
		return ControlledGate(in.Controls, in.Qubits[0], g, n, in.Trigger), nil

	case in.Size > 1:
		bg, ok := reg.block[in.Name]
		if !ok {
			return Matrix{}, fmt.Errorf("%w: %q", ErrUnknownGate, in.Name)
		}
		if len(in.Qubits)%bg.size != 0 {
			return Matrix{}, fmt.Errorf("gate %q: %d targets not divisible by block size %d",
				in.Name, len(in.Qubits), bg.size)
		}
		// Chained application: group operators are matrix-multiplied in
		// target-list order.
		var op Matrix
		for i := 0; i*bg.size < len(in.Qubits); i++ {
			group := in.Qubits[i*bg.size : (i+1)*bg.size]
			next, err := bg.build(group, n, argAt(args, i))
			if err != nil {
				return Matrix{}, err
			}
			if i == 0 {
				op = next
			} else {
				op = op.Mul(next)
			}
		}
		return op, nil

	default:
		fn, err := reg.Single(in.Name)
		if err != nil {
			return Matrix{}, err
		}
		// One simultaneous application: each target's local matrix at its
		// own position, identity elsewhere, in one combined tensor product.
		mats := make([]Matrix, len(in.Qubits))
		for i := range in.Qubits {
			mats[i], err = fn(argAt(args, i))
			if err != nil {
				return Matrix{}, err
			}
		}
		return ExpandSingle(in.Qubits, mats, n), nil
	}
}

// argAt selects the i-th per-target argument, broadcasting a single value
// across all targets.
func argAt(args []float64, i int) []float64 {
	switch {
	case args == nil:
		return nil
	case i < len(args):
		return args[i : i+1]
	case len(args) > 0:
		return args[:1]
	default:
		return nil
	}
}
