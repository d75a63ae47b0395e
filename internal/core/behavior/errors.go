package behavior

import "errors"

// Core engine errors
var (
	// Definition errors

	ErrInvalidDef = errors.New("invalid node definition")

	// Manager errors

	ErrTreeExists      = errors.New("tree name already in use")
	ErrTreeNotFound    = errors.New("tree not found")
	ErrTreeRunning     = errors.New("tree is running")
	ErrTreeNotRunning  = errors.New("tree is not running")
	ErrTreeNotPaused   = errors.New("tree is not paused")
	ErrTreeNotFinished = errors.New("tree is not finished")
	ErrTreeNotInactive = errors.New("tree is not inactive")

	// Parser errors

	ErrNameInUse          = errors.New("callback name already in use")
	ErrUnknownNodeType    = errors.New("unknown node type")
	ErrUnknownPrioritizer = errors.New("prioritizer is not registered")
	ErrUnknownAction      = errors.New("action is not registered")
)
