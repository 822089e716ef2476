package qsim

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func vecClose(t *testing.T, want, got []Complex) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("length mismatch: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if cmplx.Abs(want[i]-got[i]) > eps {
			t.Fatalf("index %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func buildSingle(t *testing.T, name string, args []float64) Matrix {
	t.Helper()
	fn, err := DefaultRegistry().Single(name)
	if err != nil {
		t.Fatal(err)
	}
	m, err := fn(args)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestPauliInvolutions(t *testing.T) {
	for _, name := range []string{"x", "y", "z", "h"} {
		t.Run(name, func(t *testing.T) {
			g := buildSingle(t, name, nil)
			matricesClose(t, Eye(2), g.Mul(g))
		})
	}
}

func TestSGateSquaresToZ(t *testing.T) {
	s := buildSingle(t, "s", nil)
	matricesClose(t, buildSingle(t, "z", nil), s.Mul(s))
}

func TestRotationNeedsAngle(t *testing.T) {
	for _, name := range []string{"rx", "ry", "rz", "p"} {
		t.Run(name, func(t *testing.T) {
			fn, err := DefaultRegistry().Single(name)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := fn(nil); !errors.Is(err, ErrMissingParameter) {
				t.Fatalf("want ErrMissingParameter, got %v", err)
			}
		})
	}
}

func TestRXFullTurn(t *testing.T) {
	// rx(2pi) = -I.
	g := buildSingle(t, "rx", []float64{2 * math.Pi})
	want := Eye(2)
	for i := range want.Data {
		want.Data[i] = -want.Data[i]
	}
	matricesClose(t, want, g)
}

func TestUnknownGate(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := reg.Single("bogus"); !errors.Is(err, ErrUnknownGate) {
		t.Fatalf("want ErrUnknownGate, got %v", err)
	}
	if _, err := reg.BlockSize("bogus"); !errors.Is(err, ErrUnknownGate) {
		t.Fatalf("want ErrUnknownGate, got %v", err)
	}
}

func TestControlledXTruthTable(t *testing.T) {
	in := Instruction{Kind: KindGate, Name: "x", Qubits: []int{1}, Controls: []int{0}, Trigger: 1, Size: 1}
	op, err := BuildOperator(in, nil, 2, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		in, want []Complex
	}{
		{"control 0 passes |00>", []Complex{1, 0, 0, 0}, []Complex{1, 0, 0, 0}},
		{"control 0 passes |01>", []Complex{0, 1, 0, 0}, []Complex{0, 1, 0, 0}},
		{"control 1 flips |10>", []Complex{0, 0, 1, 0}, []Complex{0, 0, 0, 1}},
		{"control 1 flips |11>", []Complex{0, 0, 0, 1}, []Complex{0, 0, 1, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vecClose(t, tc.want, op.MulVec(tc.in))
		})
	}
}

func TestControlledTriggerZero(t *testing.T) {
	// A zero trigger inverts the control condition.
	in := Instruction{Kind: KindGate, Name: "x", Qubits: []int{1}, Controls: []int{0}, Trigger: 0, Size: 1}
	op, err := BuildOperator(in, nil, 2, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	vecClose(t, []Complex{0, 1, 0, 0}, op.MulVec([]Complex{1, 0, 0, 0}))
	vecClose(t, []Complex{0, 0, 1, 0}, op.MulVec([]Complex{0, 0, 1, 0}))
}

func TestToffoli(t *testing.T) {
	in := Instruction{Kind: KindGate, Name: "x", Qubits: []int{2}, Controls: []int{0, 1}, Trigger: 1, Size: 1}
	op, err := BuildOperator(in, nil, 3, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	// |110> (index 6) flips to |111> (index 7); |100> (index 4) passes.
	in110 := make([]Complex, 8)
	in110[6] = 1
	want := make([]Complex, 8)
	want[7] = 1
	vecClose(t, want, op.MulVec(in110))

	in100 := make([]Complex, 8)
	in100[4] = 1
	vecClose(t, in100, op.MulVec(in100))
}

func TestSwapOperator(t *testing.T) {
	in := Instruction{Kind: KindGate, Name: "swap", Qubits: []int{0, 1}, Size: 2}
	op, err := BuildOperator(in, nil, 2, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	// |01> (index 1) <-> |10> (index 2).
	vecClose(t, []Complex{0, 0, 1, 0}, op.MulVec([]Complex{0, 1, 0, 0}))
	vecClose(t, []Complex{0, 1, 0, 0}, op.MulVec([]Complex{0, 0, 1, 0}))
	vecClose(t, []Complex{1, 0, 0, 0}, op.MulVec([]Complex{1, 0, 0, 0}))
}

func TestXYFullRotation(t *testing.T) {
	// xy(pi) maps |01> to -i|10> and leaves the aligned states alone.
	in := Instruction{Kind: KindGate, Name: "xy", Qubits: []int{0, 1}, Size: 2}
	op, err := BuildOperator(in, []float64{math.Pi}, 2, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	vecClose(t, []Complex{0, 0, -1i, 0}, op.MulVec([]Complex{0, 1, 0, 0}))
	vecClose(t, []Complex{1, 0, 0, 0}, op.MulVec([]Complex{1, 0, 0, 0}))
}

func TestUniformSingleQubitApplication(t *testing.T) {
	// One x over every qubit of a 2-qubit register: |00> -> |11>.
	in := Instruction{Kind: KindGate, Name: "x", Qubits: []int{0, 1}, Size: 1}
	op, err := BuildOperator(in, nil, 2, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	vecClose(t, []Complex{0, 0, 0, 1}, op.MulVec([]Complex{1, 0, 0, 0}))
}

func TestOperatorsPreserveNorm(t *testing.T) {
	reg := DefaultRegistry()
	state := []Complex{complex(0.5, 0), complex(0, 0.5), complex(0.5, 0), complex(0, -0.5)}
	instrs := []Instruction{
		{Kind: KindGate, Name: "h", Qubits: []int{0, 1}, Size: 1},
		{Kind: KindGate, Name: "x", Qubits: []int{1}, Controls: []int{0}, Trigger: 1, Size: 1},
		{Kind: KindGate, Name: "swap", Qubits: []int{0, 1}, Size: 2},
	}
	for _, in := range instrs {
		op, err := BuildOperator(in, nil, 2, reg)
		if err != nil {
			t.Fatal(err)
		}
		out := op.MulVec(state)
		if math.Abs(vecNorm(out)-1) > eps {
			t.Fatalf("%s: norm %v after application", in.Name, vecNorm(out))
		}
	}
}

func TestCustomGateRegistration(t *testing.T) {
	reg := DefaultRegistry()
	reg.Register("sx", fixed(Mat2(
		complex(0.5, 0.5), complex(0.5, -0.5),
		complex(0.5, -0.5), complex(0.5, 0.5),
	)))
	g := func() Matrix {
		fn, err := reg.Single("sx")
		if err != nil {
			t.Fatal(err)
		}
		m, err := fn(nil)
		if err != nil {
			t.Fatal(err)
		}
		return m
	}()
	// sqrt(X) squared is X.
	matricesClose(t, Mat2(0, 1, 1, 0), g.Mul(g))

	// A fresh registry is unaffected.
	if DefaultRegistry().Has("sx") {
		t.Fatal("custom gate leaked into a fresh registry")
	}
}
