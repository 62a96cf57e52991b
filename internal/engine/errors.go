package engine

import "errors"

// Ошибки precondition'ов движка.
//
// Это единственные Go error, которые RunTrack/RunOrchestrator возвращают
// наружу: все ошибки выполнения сворачиваются в failure envelope.
var (
	// ErrNilDefinition — передано nil определение.
	ErrNilDefinition = errors.New("definition is nil")

	// ErrNilInput — передан nil RunInput.
	ErrNilInput = errors.New("run input is nil")

	// ErrNoInvoker — Runner сконструирован без Invoker.
	ErrNoInvoker = errors.New("invoker is not configured")
)
