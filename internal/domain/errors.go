package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for an id.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned for actions on a session that is no longer active.
	ErrSessionClosed = errors.New("quiz session is not active")
	// ErrNoQuestions is returned when a session has nothing to answer or submit.
	ErrNoQuestions = errors.New("no questions available")
	// ErrAnswerLocked is returned when a question already has an answer.
	ErrAnswerLocked = errors.New("question already answered")
	// ErrOptionNotFound indicates a selected answer is not an option of the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrResultNotFound indicates a result id is unknown or expired.
	ErrResultNotFound = errors.New("result not found")
	// ErrInvalidQuery indicates a malformed question query.
	ErrInvalidQuery = errors.New("invalid question query")
	// ErrUnauthorized is returned when an action needs an authenticated learner.
	ErrUnauthorized = errors.New("authentication required")
)
