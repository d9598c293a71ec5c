package domain

import "errors"

// Sentinel errors surfaced by domain constructors and invariant checks.
var (
	// ErrExecutiveSummaryTooShort indicates an executive summary under the
	// 10-character floor.
	ErrExecutiveSummaryTooShort = errors.New("executive summary must be at least 10 characters")

	// ErrTechnicalSummaryTooShort indicates a technical summary under the
	// 50-character floor.
	ErrTechnicalSummaryTooShort = errors.New("technical summary must be at least 50 characters")
)
