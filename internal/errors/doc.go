// Package errors provides coded, categorized errors for pulse.
//
// Each error has a unique code (e.g., "E101") that maps to a short message,
// a detailed explanation, and a documentation URL. Codes are grouped by
// category:
//   - runtime: cell misuse (read-only violation, type mismatch, closed loop)
//   - listener: panics raised by listeners or deferred tasks
//   - protocol: live binding frames and cell lookup
//   - config: pulse.json loading and validation
//
// Two errors match under errors.Is when their codes match, so a freshly
// built error can be compared against a package sentinel:
//
//	var ErrReadOnly = errors.New("E101")
//
//	err := errors.New("E101").WithDetail(`cell "double" is computed`)
//	stderrors.Is(err, ErrReadOnly) // true
//
// Use Format for terminal output and FormatJSON for wire output.
package errors
