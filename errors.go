package qsim

import "errors"

// Errors returned by the simulation core. All are fatal at the point of
// detection and never retried internally.
var (
	// ErrDimensionMismatch is returned when a supplied amplitude vector
	// does not have length 2^n.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNotNormalized is returned when a supplied amplitude vector's
	// norm deviates from 1 beyond tolerance.
	ErrNotNormalized = errors.New("state not normalized")

	// ErrUnknownGate is returned when a gate name is absent from the
	// registry.
	ErrUnknownGate = errors.New("unknown gate")

	// ErrMissingParameter is returned when a parametric gate has no
	// argument, or a custom measurement basis lacks eigenvalues or
	// eigenvectors.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrComplexProbability is returned when a measurement probability
	// has a non-negligible imaginary part. It indicates a non-Hermitian
	// projector and is never recovered.
	ErrComplexProbability = errors.New("complex probability")
)
