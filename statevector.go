package qsim

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"
)

// normDecimals is the rounding precision of the normalization check.
const normDecimals = 10

// imagTolerance bounds the imaginary part a measurement probability may
// carry before it is treated as a projector bug.
const imagTolerance = 1e-15

// sampleTolerance bounds how far measurement outcome weights may drift
// from summing to 1 before sampling refuses the distribution.
const sampleTolerance = 1e-9

// StateVector holds the dense amplitude vector of an n-qubit register and
// implements unitary evolution and projective measurement on it. Every
// mutating operation either leaves a valid normalized vector behind or
// fails without touching it.
type StateVector struct {
	NumQubits int
	N         int // 2^NumQubits
	Amps      []Complex
	Basis     *Basis

	snapshots []*StateVector
	rng       *rand.Rand
}

// NewStateVector returns an engine initialized to the all-zero
// computational basis state.
func NewStateVector(numQubits int) *StateVector {
	s := &StateVector{
		NumQubits: numQubits,
		N:         1 << numQubits,
		Basis:     NewBasis(numQubits),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.Amps = make([]Complex, s.N)
	s.Amps[0] = 1
	return s
}

// Seed fixes the measurement sampling source. Given a fixed gate
// sequence, the seed fully determines all outcomes.
func (s *StateVector) Seed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// Reset returns the vector to the all-zero basis state without touching
// the snapshot log.
func (s *StateVector) Reset() {
	amps := make([]Complex, s.N)
	amps[0] = 1
	s.Amps = amps
}

// Set replaces the amplitude vector. A nil amp selects the all-zero
// state. The vector must have length 2^n and unit norm within tolerance;
// it is renormalized by its measured norm after validation. On failure
// the previous state is left untouched.
func (s *StateVector) Set(amp []Complex) error {
	if amp == nil {
		s.Reset()
		return nil
	}
	if len(amp) != s.N {
		return fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(amp), s.N)
	}
	norm := vecNorm(amp)
	if roundTo(norm, normDecimals) != 1.0 {
		return fmt.Errorf("%w: |s|=%v", ErrNotNormalized, norm)
	}
	amps := make([]Complex, s.N)
	div := complex(norm, 0)
	for i, a := range amp {
		amps[i] = a / div
	}
	s.Amps = amps
	return nil
}

// Prepare sets the vector to the product of the given single-qubit
// states, first state most significant.
func (s *StateVector) Prepare(states ...[]Complex) error {
	return s.Set(kronVec(states...))
}

// Norm returns the Euclidean norm of the amplitude vector.
func (s *StateVector) Norm() float64 {
	return vecNorm(s.Amps)
}

// Clone returns a deep copy sharing no state, with a fresh sampling
// source.
func (s *StateVector) Clone() *StateVector {
	c := NewStateVector(s.NumQubits)
	copy(c.Amps, s.Amps)
	return c
}

// ApplyOperator left-multiplies the amplitude vector by u. The caller
// guarantees u is unitary; the engine does not re-verify on this path.
func (s *StateVector) ApplyOperator(u Matrix) {
	s.Amps = u.MulVec(s.Amps)
}

// ApplyGate resolves the gate instruction to a full operator and applies
// it.
func (s *StateVector) ApplyGate(in Instruction, args []float64, reg *GateRegistry) error {
	op, err := BuildOperator(in, args, s.NumQubits, reg)
	if err != nil {
		return err
	}
	s.ApplyOperator(op)
	return nil
}

// Measure measures the target qubits in the computational basis,
// collapsing the state and snapshotting the pre-measurement vector. The
// returned values are the 0/1 eigenvalues per target.
func (s *StateVector) Measure(qubits []int) ([]float64, error) {
	return s.MeasureBasis(qubits, nil, nil, true, true)
}

// MeasureQubit measures a single qubit in the computational basis and
// returns the scalar eigenvalue.
func (s *StateVector) MeasureQubit(qubit int) (float64, error) {
	res, err := s.Measure([]int{qubit})
	if err != nil {
		return 0, err
	}
	return res[0], nil
}

// MeasureX measures in the Pauli-X eigenbasis (+1 for |+>, -1 for |->).
func (s *StateVector) MeasureX(qubits []int) ([]float64, error) {
	vals, vecs, _ := PauliEigenbasis("x")
	return s.MeasureBasis(qubits, vals, vecs, true, true)
}

// MeasureY measures in the Pauli-Y eigenbasis (+1 for |i>, -1 for |-i>).
func (s *StateVector) MeasureY(qubits []int) ([]float64, error) {
	vals, vecs, _ := PauliEigenbasis("y")
	return s.MeasureBasis(qubits, vals, vecs, true, true)
}

// MeasureZ measures in the Pauli-Z eigenbasis (+1 for |0>, -1 for |1>).
func (s *StateVector) MeasureZ(qubits []int) ([]float64, error) {
	vals, vecs, _ := PauliEigenbasis("z")
	return s.MeasureBasis(qubits, vals, vecs, true, true)
}

// MeasureBasis measures the target qubits in the given eigenbasis.
//
// All 2^k joint outcomes over the two eigenvectors are enumerated; each
// outcome's projector (tensor product of per-target rank-1 projectors,
// identity elsewhere) yields the projected vector and its probability
// <psi|projected>. One outcome is sampled from that distribution. With
// collapse set, the pre-measurement vector is snapshotted first (when
// snapshot is set) and the state replaced by the sampled projection,
// renormalized by its own norm. The returned slice holds the eigenvalue
// per target qubit for the sampled outcome.
//
// Passing nil eigvals and eigvecs selects the computational basis with
// eigenvalues 0 and 1. Passing only one of the two fails with
// ErrMissingParameter.
func (s *StateVector) MeasureBasis(qubits []int, eigvals []float64, eigvecs [][]Complex, collapse, snapshot bool) ([]float64, error) {
	if eigvals == nil && eigvecs == nil {
		eigvals, eigvecs, _ = PauliEigenbasis("")
	} else if eigvals == nil || eigvecs == nil {
		return nil, fmt.Errorf("%w: custom measurement basis needs both eigenvalues and eigenvectors",
			ErrMissingParameter)
	}

	k := len(qubits)
	outcomes := 1 << k
	probs := make([]float64, outcomes)
	projections := make([][]Complex, outcomes)

	for o := 0; o < outcomes; o++ {
		parts := make([]Matrix, s.NumQubits)
		for i := range parts {
			parts[i] = Eye(2)
		}
		for j, q := range qubits {
			bit := (o >> (k - 1 - j)) & 1
			parts[q] = Projector(eigvecs[bit])
		}
		projector := KronAll(parts...)

		projected := projector.MulVec(s.Amps)
		p := inner(s.Amps, projected)
		if math.Abs(imag(p)) > imagTolerance {
			return nil, fmt.Errorf("%w: %v", ErrComplexProbability, p)
		}
		probs[o] = real(p)
		projections[o] = projected
	}

	chosen, err := s.sample(probs)
	if err != nil {
		return nil, err
	}
	result := make([]float64, k)
	for j := range qubits {
		bit := (chosen >> (k - 1 - j)) & 1
		result[j] = eigvals[bit]
	}

	if collapse {
		if snapshot {
			s.Snapshot()
		}
		projected := projections[chosen]
		norm := complex(vecNorm(projected), 0)
		amps := make([]Complex, s.N)
		for i, a := range projected {
			amps[i] = a / norm
		}
		s.Amps = amps
	}
	return result, nil
}

// sample draws one index from the probability distribution. The weights
// must sum to 1 within sampleTolerance; a non-unitary operator leaves
// the state with outcome weights that do not, and sampling from those
// would silently bias toward the last outcome.
func (s *StateVector) sample(probs []float64) (int, error) {
	var total float64
	for _, p := range probs {
		total += p
	}
	if math.Abs(total-1) > sampleTolerance {
		return 0, fmt.Errorf("%w: outcome weights sum to %v", ErrNotNormalized, total)
	}
	r := s.rng.Float64() * total
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return i, nil
		}
	}
	return len(probs) - 1, nil
}

// Snapshot appends a deep copy of the current state to the snapshot log.
func (s *StateVector) Snapshot() {
	s.snapshots = append(s.snapshots, s.Clone())
}

// Snapshots returns the ordered snapshot log.
func (s *StateVector) Snapshots() []*StateVector {
	return s.snapshots
}

// Last returns the most recent snapshot, or nil.
func (s *StateVector) Last() *StateVector {
	if len(s.snapshots) == 0 {
		return nil
	}
	return s.snapshots[len(s.snapshots)-1]
}

// Probabilities returns |amplitude|^2 per basis state, rounded to the
// given number of decimals. Negative decimals skip rounding.
func (s *StateVector) Probabilities(decimals int) []float64 {
	probs := make([]float64, s.N)
	for i, a := range s.Amps {
		p := real(a)*real(a) + imag(a)*imag(a)
		if decimals >= 0 {
			p = roundTo(p, decimals)
		}
		probs[i] = p
	}
	return probs
}

// Amplitudes returns the amplitude vector rounded to the given number of
// decimals. Negative decimals skip rounding.
func (s *StateVector) Amplitudes(decimals int) []Complex {
	amps := make([]Complex, s.N)
	for i, a := range s.Amps {
		if decimals >= 0 {
			a = complex(roundTo(real(a), decimals), roundTo(imag(a), decimals))
		}
		amps[i] = a
	}
	return amps
}

// DensityMatrix returns the outer product of the state with itself.
func (s *StateVector) DensityMatrix() Matrix {
	return Outer(s.Amps, s.Amps)
}

// Project applies a single-qubit operator at the given position, identity
// elsewhere, and returns the resulting (unnormalized) vector.
func (s *StateVector) Project(qubit int, op Matrix) []Complex {
	return ExpandSingle([]int{qubit}, []Matrix{op}, s.NumQubits).MulVec(s.Amps)
}

// Expectation returns <psi|op|psi>. A 2x2 operator with qubit >= 0 is
// promoted to the full space at that position first.
func (s *StateVector) Expectation(op Matrix, qubit int) (float64, error) {
	if qubit >= 0 && op.N == 2 {
		op = ExpandSingle([]int{qubit}, []Matrix{op}, s.NumQubits)
	}
	if op.N != s.N {
		return 0, fmt.Errorf("%w: operator dimension %d != %d", ErrDimensionMismatch, op.N, s.N)
	}
	return real(inner(s.Amps, op.MulVec(s.Amps))), nil
}

func (s *StateVector) String() string {
	out := "-----Vector-----\n"
	amps := s.Amplitudes(normDecimals)
	for i, a := range amps {
		out += fmt.Sprintf("%s %v\n", s.Basis.Label(i), a)
	}
	return out
}

// SaveState writes the raw amplitude vector to a file: a 4-byte
// little-endian qubit count followed by 2^n little-endian (real, imag)
// float64 pairs.
func (s *StateVector) SaveState(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(s.NumQubits)); err != nil {
		return err
	}
	for _, a := range s.Amps {
		if err := binary.Write(f, binary.LittleEndian, [2]float64{real(a), imag(a)}); err != nil {
			return err
		}
	}
	return nil
}

// LoadState replaces the amplitude vector with one previously written by
// SaveState. The stored qubit count must match the engine's.
func (s *StateVector) LoadState(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return err
	}
	if int(n) != s.NumQubits {
		return fmt.Errorf("%w: file holds %d qubits, engine has %d", ErrDimensionMismatch, n, s.NumQubits)
	}
	amps := make([]Complex, s.N)
	for i := range amps {
		var pair [2]float64
		if err := binary.Read(f, binary.LittleEndian, &pair); err != nil {
			return err
		}
		amps[i] = complex(pair[0], pair[1])
	}
	s.Amps = amps
	return nil
}

// roundTo rounds x to the given number of decimals.
func roundTo(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
