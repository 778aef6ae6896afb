package interview

import "errors"

var (
	// ErrInputValidation reports missing or empty caller-provided input,
	// such as a blank resume or answer.
	ErrInputValidation = errors.New("input validation failed")

	// ErrModelInvocation reports that the model collaborator failed or
	// returned empty text. The call that raised it is terminal; no retry
	// happens inside the state machine.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrProtocol reports a stage invoked with state violating its
	// precondition. It indicates a boundary-layer bug, not a candidate-facing
	// condition.
	ErrProtocol = errors.New("protocol violation")

	// ErrSessionNotFound reports an unknown session id, or a session that
	// already completed.
	ErrSessionNotFound = errors.New("session not found")
)
