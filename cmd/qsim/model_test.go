package main

import (
	"math"
	"testing"

	"qsim"
)

func testModel(qubits int) Model {
	return initialModel(qsim.NewCircuit(qubits, 0), 64)
}

func TestPlaceGateAppends(t *testing.T) {
	m := testModel(2)

	if !m.placeGate(menuItem{name: "Hadamard", gate: "h"}, -1) {
		t.Fatal("placing h failed")
	}
	m.cursorQubit = 0
	if !m.placeGate(menuItem{name: "CNOT", gate: "x", controlled: true, needsTarget: true}, 1) {
		t.Fatal("placing cx failed")
	}

	if len(m.circuit.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(m.circuit.Instructions))
	}
	cx := m.circuit.Instructions[1]
	if cx.Name != "x" || len(cx.Controls) != 1 || cx.Controls[0] != 0 || cx.Qubits[0] != 1 {
		t.Fatalf("unexpected controlled gate: %+v", cx)
	}
	if m.cursorCol != 2 {
		t.Fatalf("cursor should follow placement, got %d", m.cursorCol)
	}
}

func TestPlaceGateParams(t *testing.T) {
	m := testModel(1)
	m.paramInput = "pi/2"
	if !m.placeGate(menuItem{name: "Rotate X", gate: "rx", needsParams: true}, -1) {
		t.Fatal("placing rx failed")
	}
	args, err := m.circuit.Args(m.circuit.Instructions[0])
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(args[0]-math.Pi/2) > 1e-10 {
		t.Fatalf("rx angle: got %g, want %g", args[0], math.Pi/2)
	}

	m.paramInput = "garbage"
	if m.placeGate(menuItem{name: "Rotate Y", gate: "ry", needsParams: true}, -1) {
		t.Fatal("invalid parameter should block placement")
	}
}

func TestRemoveInstructionRebuilds(t *testing.T) {
	m := testModel(2)
	m.placeGate(menuItem{gate: "h"}, -1)
	m.paramInput = "pi/4"
	m.placeGate(menuItem{gate: "rx", needsParams: true}, -1)
	m.placeGate(menuItem{gate: "x"}, -1)

	m.removeInstruction(0)

	if len(m.circuit.Instructions) != 2 {
		t.Fatalf("expected 2 instructions after delete, got %d", len(m.circuit.Instructions))
	}
	if m.circuit.Instructions[0].Name != "rx" {
		t.Fatalf("expected rx first after delete, got %q", m.circuit.Instructions[0].Name)
	}
	// Creation indices are reassigned on rebuild.
	for i, in := range m.circuit.Instructions {
		if in.Index != i {
			t.Fatalf("instruction %d has index %d after rebuild", i, in.Index)
		}
	}
	args, err := m.circuit.Args(m.circuit.Instructions[0])
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(args[0]-math.Pi/4) > 1e-10 {
		t.Fatalf("rx angle lost on rebuild: got %g", args[0])
	}
}

func TestEditorRoundTrip(t *testing.T) {
	m := testModel(2)
	m.placeGate(menuItem{gate: "h"}, -1)
	m.cursorQubit = 0
	m.placeGate(menuItem{gate: "x", controlled: true}, 1)

	text := m.editor.Value()
	c, err := qsim.FromText(text, "")
	if err != nil {
		t.Fatalf("editor text does not parse: %v", err)
	}
	if len(c.Instructions) != 2 {
		t.Fatalf("expected 2 instructions from editor text, got %d", len(c.Instructions))
	}
}

func TestResizeRegisterDropsOutOfRange(t *testing.T) {
	m := testModel(3)
	m.placeGate(menuItem{gate: "h"}, -1) // q0
	m.cursorQubit = 2
	m.placeGate(menuItem{gate: "x"}, -1) // q2

	m.resizeRegister(-1)

	if m.circuit.NumQubits != 2 {
		t.Fatalf("expected 2 qubits, got %d", m.circuit.NumQubits)
	}
	if len(m.circuit.Instructions) != 1 {
		t.Fatalf("gate on dropped wire should vanish, got %d instructions", len(m.circuit.Instructions))
	}
	if m.circuit.Instructions[0].Name != "h" {
		t.Fatalf("surviving instruction should be h, got %q", m.circuit.Instructions[0].Name)
	}
}
