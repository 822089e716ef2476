package qsim

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyNamed(t *testing.T, s *StateVector, name string, qubits []int, args []float64) {
	t.Helper()
	in := Instruction{Kind: KindGate, Name: name, Qubits: qubits, Size: 1}
	require.NoError(t, s.ApplyGate(in, args, DefaultRegistry()))
}

func TestNewStateVectorStartsAtZero(t *testing.T) {
	s := NewStateVector(3)
	assert.Equal(t, 8, s.N)
	assert.Equal(t, Complex(1), s.Amps[0])
	assert.InDelta(t, 1.0, s.Norm(), eps)
	assert.Equal(t, "|000>", s.Basis.Label(0))
}

func TestSetValidation(t *testing.T) {
	s := NewStateVector(1)

	err := s.Set([]Complex{1, 0, 0, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = s.Set([]Complex{1, 1})
	assert.ErrorIs(t, err, ErrNotNormalized)

	// Failed sets leave the previous state alone.
	assert.Equal(t, Complex(1), s.Amps[0])

	require.NoError(t, s.Set([]Complex{0, 1}))
	assert.Equal(t, Complex(1), s.Amps[1])

	require.NoError(t, s.Set(nil))
	assert.Equal(t, Complex(1), s.Amps[0])
}

func TestPrepareProductState(t *testing.T) {
	s := NewStateVector(2)
	require.NoError(t, s.Prepare(OneState, ZeroState))
	// Qubit 0 is the most significant bit: |10> is index 2.
	assert.InDelta(t, 1.0, real(s.Amps[2]), eps)
}

func TestHadamardSuperposition(t *testing.T) {
	s := NewStateVector(1)
	applyNamed(t, s, "h", []int{0}, nil)
	probs := s.Probabilities(6)
	assert.InDelta(t, 0.5, probs[0], 1e-6)
	assert.InDelta(t, 0.5, probs[1], 1e-6)
	assert.InDelta(t, 1.0, s.Norm(), eps)
}

func TestMeasureCollapses(t *testing.T) {
	s := NewStateVector(1)
	s.Seed(42)
	applyNamed(t, s, "h", []int{0}, nil)

	v, err := s.MeasureQubit(0)
	require.NoError(t, err)
	require.Contains(t, []float64{0, 1}, v)

	// Post-measurement state is the sampled basis state; remeasuring is
	// deterministic.
	probs := s.Probabilities(6)
	assert.InDelta(t, 1.0, probs[int(v)], 1e-6)
	again, err := s.MeasureQubit(0)
	require.NoError(t, err)
	assert.Equal(t, v, again)
}

func TestMeasurementFrequencies(t *testing.T) {
	s := NewStateVector(1)
	s.Seed(7)
	ones := 0
	const shots = 2000
	for i := 0; i < shots; i++ {
		s.Reset()
		applyNamed(t, s, "h", []int{0}, nil)
		v, err := s.MeasureQubit(0)
		require.NoError(t, err)
		if v == 1 {
			ones++
		}
	}
	// Fair coin within 5 sigma.
	assert.InDelta(t, shots/2, ones, 5*math.Sqrt(shots)/2)
}

func TestProbabilityConservation(t *testing.T) {
	s := NewStateVector(2)
	reg := DefaultRegistry()
	require.NoError(t, s.ApplyGate(Instruction{Kind: KindGate, Name: "h", Qubits: []int{0}, Size: 1}, nil, reg))
	require.NoError(t, s.ApplyGate(Instruction{Kind: KindGate, Name: "x", Qubits: []int{1}, Controls: []int{0}, Trigger: 1, Size: 1}, nil, reg))

	var sum float64
	for _, p := range s.Probabilities(-1) {
		assert.GreaterOrEqual(t, p, -eps)
		assert.LessOrEqual(t, p, 1+eps)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, eps)
}

func TestMeasureXEigenstate(t *testing.T) {
	s := NewStateVector(1)
	applyNamed(t, s, "h", []int{0}, nil)
	// |+> is an X eigenstate with eigenvalue +1.
	for i := 0; i < 10; i++ {
		vals, err := s.MeasureX([]int{0})
		require.NoError(t, err)
		assert.Equal(t, []float64{1}, vals)
	}
}

func TestMeasureRejectsSkewedOutcomeWeights(t *testing.T) {
	s := NewStateVector(1)
	// A non-unitary operator breaks normalization; the outcome weights
	// stop forming a distribution and sampling must refuse them.
	s.ApplyOperator(Mat2(2, 0, 0, 2))
	_, err := s.Measure([]int{0})
	assert.ErrorIs(t, err, ErrNotNormalized)
}

func TestMeasureBasisNeedsBothHalves(t *testing.T) {
	s := NewStateVector(1)
	_, err := s.MeasureBasis([]int{0}, EigvalsPM, nil, true, false)
	assert.ErrorIs(t, err, ErrMissingParameter)
	_, err = s.MeasureBasis([]int{0}, nil, [][]Complex{ZeroState, OneState}, true, false)
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestJointMeasurementOnEntangledState(t *testing.T) {
	s := NewStateVector(2)
	s.Seed(3)
	reg := DefaultRegistry()
	require.NoError(t, s.ApplyGate(Instruction{Kind: KindGate, Name: "h", Qubits: []int{0}, Size: 1}, nil, reg))
	require.NoError(t, s.ApplyGate(Instruction{Kind: KindGate, Name: "x", Qubits: []int{1}, Controls: []int{0}, Trigger: 1, Size: 1}, nil, reg))

	// Bell state: the two bits always agree.
	for i := 0; i < 20; i++ {
		clone := s.Clone()
		clone.Seed(int64(i))
		vals, err := clone.Measure([]int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, vals[0], vals[1])
	}
}

func TestSnapshotLog(t *testing.T) {
	s := NewStateVector(1)
	s.Seed(1)
	applyNamed(t, s, "h", []int{0}, nil)

	require.Nil(t, s.Last())
	_, err := s.Measure([]int{0})
	require.NoError(t, err)

	require.Len(t, s.Snapshots(), 1)
	// The snapshot holds the pre-measurement superposition.
	probs := s.Last().Probabilities(6)
	assert.InDelta(t, 0.5, probs[0], 1e-6)
	assert.InDelta(t, 0.5, probs[1], 1e-6)
}

func TestDensityMatrix(t *testing.T) {
	s := NewStateVector(1)
	rho := s.DensityMatrix()
	assert.InDelta(t, 1.0, real(rho.At(0, 0)), eps)
	assert.InDelta(t, 0.0, real(rho.At(1, 1)), eps)

	applyNamed(t, s, "h", []int{0}, nil)
	rho = s.DensityMatrix()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, 0.5, real(rho.At(i, j)), eps)
		}
	}
}

func TestExpectation(t *testing.T) {
	z := Mat2(1, 0, 0, -1)

	s := NewStateVector(2)
	ev, err := s.Expectation(z, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ev, eps)

	applyNamed(t, s, "x", []int{0}, nil)
	ev, err = s.Expectation(z, 0)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, ev, eps)

	// Full-size operator with a mismatched dimension fails.
	_, err = s.Expectation(Eye(8), -1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSaveLoadState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")

	s := NewStateVector(2)
	applyNamed(t, s, "h", []int{0}, nil)
	require.NoError(t, s.SaveState(path))

	fresh := NewStateVector(2)
	require.NoError(t, fresh.LoadState(path))
	for i := range s.Amps {
		assert.InDelta(t, real(s.Amps[i]), real(fresh.Amps[i]), eps)
		assert.InDelta(t, imag(s.Amps[i]), imag(fresh.Amps[i]), eps)
	}

	wrong := NewStateVector(3)
	assert.ErrorIs(t, wrong.LoadState(path), ErrDimensionMismatch)
}
