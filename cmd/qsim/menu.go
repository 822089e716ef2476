package main

import (
	"fmt"
	"strings"
)

// menuItem represents a single choice in the gate picker. gate is the
// lowercase registry name; measure items carry a basis tag instead.
type menuItem struct {
	name        string
	gate        string
	symbol      string
	basis       string
	measure     bool
	controlled  bool
	block       bool
	needsTarget bool
	needsParams bool
	paramHint   string
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items, mirroring the
// default gate registry.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gate: "h", symbol: "H"},
			{name: "Pauli-X (NOT)", gate: "x", symbol: "X"},
			{name: "Pauli-Y", gate: "y", symbol: "Y"},
			{name: "Pauli-Z", gate: "z", symbol: "Z"},
			{name: "Identity", gate: "i", symbol: "I"},
			{name: "Phase (S)", gate: "s", symbol: "S"},
			{name: "Phase Dagger (S†)", gate: "sdg", symbol: "S†"},
			{name: "T Gate", gate: "t", symbol: "T"},
			{name: "T Dagger (T†)", gate: "tdg", symbol: "T†"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gate: "rx", symbol: "RX", needsParams: true, paramHint: "pi/2"},
			{name: "Rotate Y", gate: "ry", symbol: "RY", needsParams: true, paramHint: "pi/2"},
			{name: "Rotate Z", gate: "rz", symbol: "RZ", needsParams: true, paramHint: "pi/2"},
			{name: "Phase Shift", gate: "p", symbol: "P", needsParams: true, paramHint: "pi/4"},
		},
	},
	{
		name: "Controlled",
		items: []menuItem{
			{name: "CNOT", gate: "x", symbol: "●─⊕", controlled: true, needsTarget: true},
			{name: "Controlled-Y", gate: "y", symbol: "●─Y", controlled: true, needsTarget: true},
			{name: "Controlled-Z", gate: "z", symbol: "●─●", controlled: true, needsTarget: true},
			{name: "Controlled-H", gate: "h", symbol: "●─H", controlled: true, needsTarget: true},
			{name: "C-Rotate X", gate: "rx", symbol: "●─RX", controlled: true, needsTarget: true, needsParams: true, paramHint: "pi/2"},
			{name: "C-Rotate Y", gate: "ry", symbol: "●─RY", controlled: true, needsTarget: true, needsParams: true, paramHint: "pi/2"},
			{name: "C-Rotate Z", gate: "rz", symbol: "●─RZ", controlled: true, needsTarget: true, needsParams: true, paramHint: "pi/2"},
		},
	},
	{
		name: "Two Qubit",
		items: []menuItem{
			{name: "SWAP", gate: "swap", symbol: "×─×", block: true, needsTarget: true},
			{name: "XY Rotation", gate: "xy", symbol: "XY", block: true, needsTarget: true, needsParams: true, paramHint: "pi/2"},
		},
	},
	{
		name: "Measurement",
		items: []menuItem{
			{name: "Measure", gate: "m", symbol: "M", measure: true},
			{name: "Measure X", gate: "m", symbol: "Mx", measure: true, basis: "x"},
			{name: "Measure Y", gate: "m", symbol: "My", measure: true, basis: "y"},
			{name: "Measure Z", gate: "m", symbol: "Mz", measure: true, basis: "z"},
		},
	},
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 46)))
	sb.WriteString("\n")

	// Items in the selected category
	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsParams {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
