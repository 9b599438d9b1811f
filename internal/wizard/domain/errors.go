package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("wizard session not found")
	ErrSessionSubmitted   = errors.New("wizard session already submitted")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUnknownSection     = errors.New("unknown section")
	ErrUnknownField       = errors.New("unknown field for section")
	ErrInvalidPatch       = errors.New("invalid section patch")
	ErrUnknownStep        = errors.New("unknown wizard step")
	ErrStepInvalid        = errors.New("current step is not valid")
	ErrAtFirstStep        = errors.New("already at first step")
	ErrAtLastStep         = errors.New("already at last step")
	ErrStepsIncomplete    = errors.New("not every step is valid")
	ErrAllocationSum      = errors.New("token allocation must sum to 100")
	ErrConcurrentUpdate   = errors.New("session changed concurrently, retry")
	ErrSubmissionsOff     = errors.New("submission storage is not configured")
	ErrEmptyValue         = errors.New("value must not be empty")
)
