package qsim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Result aggregates the classical-bit outputs of a multi-shot run.
// Outcomes are keyed by the space-joined eigenvalue assignment of the
// classical register, e.g. "0 1" or "1 -1".
type Result struct {
	Shots     int
	NumClbits int
	Data      [][]float64

	counts map[string]int
}

// Outcome is one observed classical-register assignment with its count
// and relative frequency.
type Outcome struct {
	Key         string
	Count       int
	Probability float64
}

// NewResult builds a result from raw per-shot classical-bit vectors.
func NewResult(data [][]float64, clbits int) *Result {
	r := &Result{
		Shots:     len(data),
		NumClbits: clbits,
		Data:      data,
		counts:    make(map[string]int),
	}
	for _, row := range data {
		r.counts[OutcomeKey(row)]++
	}
	return r
}

// OutcomeKey renders a classical-bit vector as a histogram key.
func OutcomeKey(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Counts returns a copy of the outcome histogram; callers may mutate it
// freely.
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int, len(r.counts))
	for key, n := range r.counts {
		counts[key] = n
	}
	return counts
}

// Count returns the number of shots that produced the given key.
func (r *Result) Count(key string) int {
	return r.counts[key]
}

// Probability returns the relative frequency of the given key.
func (r *Result) Probability(key string) float64 {
	if r.Shots == 0 {
		return 0
	}
	return float64(r.counts[key]) / float64(r.Shots)
}

// Sorted returns every observed outcome, most frequent first. Ties break
// on key order so the result is deterministic.
func (r *Result) Sorted() []Outcome {
	out := make([]Outcome, 0, len(r.counts))
	for key, n := range r.counts {
		out = append(out, Outcome{Key: key, Count: n, Probability: r.Probability(key)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Expected returns the most frequent outcome. ok is false for an empty
// result.
func (r *Result) Expected() (Outcome, bool) {
	sorted := r.Sorted()
	if len(sorted) == 0 {
		return Outcome{}, false
	}
	return sorted[0], true
}

// Highest returns the outcomes whose relative frequency is at least
// thresh, most frequent first.
func (r *Result) Highest(thresh float64) []Outcome {
	var out []Outcome
	for _, o := range r.Sorted() {
		if o.Probability >= thresh {
			out = append(out, o)
		}
	}
	return out
}

func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Result(shots: %d)", r.Shots)
	for _, o := range r.Sorted() {
		fmt.Fprintf(&sb, "\n   [%s]  %d  (%.4f)", o.Key, o.Count, o.Probability)
	}
	return sb.String()
}
