package qsim

import (
	"math"
	"math/cmplx"
)

type Complex = complex128

// Matrix is a dense square complex matrix stored in row-major order.
// Operators acting on n qubits have dimension 2^n.
type Matrix struct {
	N    int
	Data []Complex
}

// NewMatrix returns a zero matrix of dimension n.
func NewMatrix(n int) Matrix {
	return Matrix{N: n, Data: make([]Complex, n*n)}
}

// Eye returns the identity matrix of dimension n.
func Eye(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.Data[i*n+i] = 1
	}
	return m
}

// Mat2 builds a 2x2 matrix from its row-major entries.
func Mat2(a, b, c, d Complex) Matrix {
	return Matrix{N: 2, Data: []Complex{a, b, c, d}}
}

func (m Matrix) At(i, j int) Complex {
	return m.Data[i*m.N+j]
}

func (m Matrix) set(i, j int, v Complex) {
	m.Data[i*m.N+j] = v
}

// Mul returns the matrix product m*o.
func (m Matrix) Mul(o Matrix) Matrix {
	n := m.N
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			a := m.Data[i*n+k]
			if a == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.Data[i*n+j] += a * o.Data[k*n+j]
			}
		}
	}
	return out
}

// MulVec returns the matrix-vector product m*v.
func (m Matrix) MulVec(v []Complex) []Complex {
	n := m.N
	out := make([]Complex, n)
	for i := 0; i < n; i++ {
		var sum Complex
		row := m.Data[i*n : (i+1)*n]
		for j, a := range row {
			if a != 0 {
				sum += a * v[j]
			}
		}
		out[i] = sum
	}
	return out
}

// Add returns the matrix sum m+o.
func (m Matrix) Add(o Matrix) Matrix {
	out := NewMatrix(m.N)
	for i := range m.Data {
		out.Data[i] = m.Data[i] + o.Data[i]
	}
	return out
}

// Sub returns the matrix difference m-o.
func (m Matrix) Sub(o Matrix) Matrix {
	out := NewMatrix(m.N)
	for i := range m.Data {
		out.Data[i] = m.Data[i] - o.Data[i]
	}
	return out
}

// Kron returns the tensor product m (x) o.
func (m Matrix) Kron(o Matrix) Matrix {
	n := m.N * o.N
	out := NewMatrix(n)
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			a := m.Data[i*m.N+j]
			if a == 0 {
				continue
			}
			for k := 0; k < o.N; k++ {
				for l := 0; l < o.N; l++ {
					out.Data[(i*o.N+k)*n+j*o.N+l] = a * o.Data[k*o.N+l]
				}
			}
		}
	}
	return out
}

// KronAll combines the factors into one tensor product, first factor
// most significant.
func KronAll(factors ...Matrix) Matrix {
	out := factors[0]
	for _, f := range factors[1:] {
		out = out.Kron(f)
	}
	return out
}

// Outer returns the outer product |u><v|.
func Outer(u, v []Complex) Matrix {
	n := len(u)
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Data[i*n+j] = u[i] * cmplx.Conj(v[j])
		}
	}
	return out
}

// kronVec combines single-qubit state vectors into one product state,
// first factor most significant.
func kronVec(states ...[]Complex) []Complex {
	out := states[0]
	for _, s := range states[1:] {
		next := make([]Complex, len(out)*len(s))
		for i, a := range out {
			for j, b := range s {
				next[i*len(s)+j] = a * b
			}
		}
		out = next
	}
	return out
}

// inner returns the scalar product <u|v>.
func inner(u, v []Complex) Complex {
	var sum Complex
	for i := range u {
		sum += cmplx.Conj(u[i]) * v[i]
	}
	return sum
}

// vecNorm returns the Euclidean norm of v.
func vecNorm(v []Complex) float64 {
	var sum float64
	for _, a := range v {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}
