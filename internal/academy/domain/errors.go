package domain

import "errors"

var (
	ErrAttemptNotFound    = errors.New("quiz attempt not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrPageNotFound       = errors.New("page not found")
	ErrNoQuestions        = errors.New("quiz has no questions")
	ErrInvalidTransition  = errors.New("invalid quiz transition")
	ErrAlreadyAnswered    = errors.New("question already answered")
	ErrInvalidOption      = errors.New("option out of range")
	ErrAlreadyCertified   = errors.New("attempt already certified")
	ErrCertificationsOff  = errors.New("certifications are not available")
	ErrConcurrentUpdate   = errors.New("attempt was modified concurrently")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrUnknownAttemptKind = errors.New("unknown attempt kind")
)
