package qsim

import (
	"fmt"
	"math"
	"strconv"
)

// Computational single-qubit basis states.
var (
	ZeroState = []Complex{1, 0}
	OneState  = []Complex{0, 1}
)

// Pauli eigendecompositions used by the measure_x/y/z conveniences.
// Eigenvalue convention is +1 for the first eigenvector, -1 for the
// second.
var (
	EigvalsPM = []float64{1, -1}

	evPlus   = []Complex{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}
	evMinus  = []Complex{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}
	evPlusI  = []Complex{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)}
	evMinusI = []Complex{complex(1/math.Sqrt2, 0), complex(0, -1/math.Sqrt2)}
)

// PauliEigenbasis returns the eigenvalues and eigenvectors of the named
// measurement basis ("x", "y" or "z"). The empty tag selects the
// computational basis with eigenvalues 0 and 1.
func PauliEigenbasis(basis string) ([]float64, [][]Complex, error) {
	switch basis {
	case "":
		return []float64{0, 1}, [][]Complex{ZeroState, OneState}, nil
	case "x":
		return EigvalsPM, [][]Complex{evPlus, evMinus}, nil
	case "y":
		return EigvalsPM, [][]Complex{evPlusI, evMinusI}, nil
	case "z":
		return EigvalsPM, [][]Complex{ZeroState, OneState}, nil
	}
	return nil, nil, fmt.Errorf("unknown measurement basis %q", basis)
}

// Basis maps basis-state indices to display labels. Qubit 0 is the most
// significant bit of the index; label bit order matches.
type Basis struct {
	Qubits int
	Labels []string
}

// NewBasis builds the labels of the n-qubit computational basis.
func NewBasis(n int) *Basis {
	labels := make([]string, 1<<n)
	for i := range labels {
		bits := strconv.FormatInt(int64(i), 2)
		for len(bits) < n {
			bits = "0" + bits
		}
		labels[i] = "|" + bits + ">"
	}
	return &Basis{Qubits: n, Labels: labels}
}

// Label returns the display label of a basis-state index.
func (b *Basis) Label(i int) string {
	return b.Labels[i]
}
