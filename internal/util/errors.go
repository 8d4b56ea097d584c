package util

import "errors"

var (
	ErrEmailRegistered  = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrPermissionDenied = errors.New("permission denied")

	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotPublished = errors.New("exam is not published yet")
	ErrExamNotStarted   = errors.New("exam has not started yet")
	ErrExamEnded        = errors.New("exam has ended")

	ErrDuplicateAttempt = errors.New("exam already attempted")
	ErrAttemptNotFound  = errors.New("exam attempt not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidState     = errors.New("operation not allowed in current attempt state")
	ErrAlreadySubmitted = errors.New("exam already submitted")

	ErrNotificationNotFound = errors.New("notification not found")
)
