package qsim

import "fmt"

// ParameterMap is a mutable pool of gate arguments plus, per instruction,
// the pool positions holding that instruction's arguments. Instructions
// created with linked positions share values: a single Set call changes
// the effective argument of every instruction linked to the overwritten
// positions. Each Circuit owns exactly one ParameterMap.
type ParameterMap struct {
	indices [][]int
	params  []float64
}

// NewParameterMap returns an empty parameter map.
func NewParameterMap() *ParameterMap {
	return &ParameterMap{}
}

// NumEntries returns the number of recorded instruction entries.
func (p *ParameterMap) NumEntries() int {
	return len(p.indices)
}

// NumParams returns the size of the value pool.
func (p *ParameterMap) NumParams() int {
	return len(p.params)
}

// Params returns the raw value pool.
func (p *ParameterMap) Params() []float64 {
	return p.params
}

// Add records the parameter entry for the next instruction and returns
// its entry index. If args is non-nil the values are appended to the pool
// and the fresh positions recorded. If instead linked is non-nil the
// existing positions are recorded without appending, sharing the values
// already stored there. With neither, the instruction has no parameters.
// An entry's position list never changes length once created.
func (p *ParameterMap) Add(args []float64, linked []int) int {
	idx := len(p.indices)
	switch {
	case linked != nil:
		positions := make([]int, len(linked))
		copy(positions, linked)
		p.indices = append(p.indices, positions)
	case args != nil:
		positions := make([]int, len(args))
		for i, v := range args {
			positions[i] = len(p.params)
			p.params = append(p.params, v)
		}
		p.indices = append(p.indices, positions)
	default:
		p.indices = append(p.indices, nil)
	}
	return idx
}

// Get returns the current pool values at the positions recorded for the
// given instruction entry, or nil if the instruction has no parameters.
func (p *ParameterMap) Get(entry int) ([]float64, error) {
	if entry < 0 || entry >= len(p.indices) {
		return nil, fmt.Errorf("%w: no parameter entry %d", ErrMissingParameter, entry)
	}
	positions := p.indices[entry]
	if positions == nil {
		return nil, nil
	}
	args := make([]float64, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(p.params) {
			return nil, fmt.Errorf("%w: pool position %d out of range (pool size %d)",
				ErrMissingParameter, pos, len(p.params))
		}
		args[i] = p.params[pos]
	}
	return args, nil
}

// Indices returns the recorded pool positions for the given entry, or nil.
func (p *ParameterMap) Indices(entry int) []int {
	if entry < 0 || entry >= len(p.indices) {
		return nil
	}
	return p.indices[entry]
}

// Set replaces the entire value pool positionally. The new pool may be
// shorter or longer than the old one; entries whose recorded positions
// fall outside the new pool fail on Get.
func (p *ParameterMap) Set(values []float64) {
	p.params = make([]float64, len(values))
	copy(p.params, values)
}

// SetAt overwrites a single pool value.
func (p *ParameterMap) SetAt(pos int, value float64) {
	p.params[pos] = value
}

func (p *ParameterMap) String() string {
	return fmt.Sprintf("Params: %v, Indices: %v", p.params, p.indices)
}
