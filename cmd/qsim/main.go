package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"qsim"
)

func main() {
	qubits := flag.Int("qubits", 4, "number of qubits in the register")
	clbits := flag.Int("clbits", 0, "number of classical bits (0 = same as qubits)")
	shots := flag.Int("shots", 1024, "shots per run")
	seed := flag.Int64("seed", 0, "measurement sampling seed (0 = time-based)")
	load := flag.String("load", "", "load a .circ file on startup")
	flag.Parse()

	var (
		c   *qsim.Circuit
		err error
	)
	if *load != "" {
		c, err = qsim.Load(*load, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "qsim: %v\n", err)
			os.Exit(1)
		}
	} else {
		c = qsim.NewCircuit(*qubits, *clbits)
	}
	if *seed != 0 {
		c.Seed(*seed)
	}

	p := tea.NewProgram(initialModel(c, *shots), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "qsim: %v\n", err)
		os.Exit(1)
	}
}
