package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Worker errors
var (
	ErrQueueFull           = errors.New("processing queue is full")
	ErrWorkerPoolStopped   = errors.New("worker pool is not running")
	ErrJobAlreadyRunning   = errors.New("a job for this meeting is already running")
	ErrTranscoderDisabled  = errors.New("transcoder is disabled")
	ErrNoAudioSegments     = errors.New("no segment has audio")
	ErrUnsupportedWebhook  = errors.New("webhook event not handled")
	ErrMissingWebhookField = errors.New("webhook event is missing room information")
)
