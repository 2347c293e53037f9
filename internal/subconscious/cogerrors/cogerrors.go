// Package cogerrors defines the core error taxonomy shared across the
// cognitive middleware. Each sentinel is wrapped with %w at the call site
// and matched with errors.Is/errors.As by callers that need to branch on it.
package cogerrors

import "errors"

var (
	// ErrProvider marks a failed LLM call. Callers degrade to a non-LLM
	// code path instead of propagating this error.
	ErrProvider = errors.New("provider error")

	// ErrStorage marks a failed persistence read or write. On read, the
	// affected subsystem is treated as empty; on write, it is surfaced
	// only if fatal to the caller's operation.
	ErrStorage = errors.New("storage error")

	// ErrParse marks a malformed persisted document. Treated as empty on
	// load; the file is overwritten on next save.
	ErrParse = errors.New("parse error")

	// ErrValidation marks a violated API precondition. Always surfaced;
	// no state is mutated when this is returned.
	ErrValidation = errors.New("validation error")

	// ErrCapacityOverflow is internal bookkeeping only; it is never
	// returned to a caller. It exists so internal code paths can use the
	// same errors.Is vocabulary when triggering consolidation or pruning.
	ErrCapacityOverflow = errors.New("capacity overflow")
)
