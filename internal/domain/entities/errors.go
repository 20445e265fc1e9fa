package entities

import "errors"

// Domain errors
var (
	// Timeline errors
	ErrNoEventSources      = errors.New("no event sources")
	ErrMissingCaptureStart = errors.New("capture started marker not found")
	ErrMissingCaptureEnd   = errors.New("capture ended marker not found")
	ErrInvalidWindow       = errors.New("recording window ends before it starts")

	// Job errors
	ErrJobNotFound     = errors.New("processing job not found")
	ErrInvalidMeeting  = errors.New("invalid meeting id")
	ErrNoCaptureChunks = errors.New("no capture chunks found")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
)
