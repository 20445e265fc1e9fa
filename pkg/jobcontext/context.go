package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyJobStartTime KeyContext = "job_start_time"
	keyMaxRetries   KeyContext = "max_retries"
	keyBaseDelay    KeyContext = "base_delay"
)

// Defaults used when Options leaves a field empty
const (
	DefaultTimeout    = 30 * time.Minute
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 5 * time.Second
)

// Options configures a job execution
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID        uuid.UUID
	JobType      string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// permanentError marks an error that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so JobEnd does not retry it
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// JobBegin initializes a job context with metadata and the job deadline
func JobBegin(parentCtx context.Context, jobID uuid.UUID, jobType string, workerID int, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}

	// Create context with timeout to prevent infinite hanging
	ctx, cancel := context.WithTimeout(parentCtx, opts.Timeout)

	// Set job metadata
	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxRetries, opts.MaxRetries)
	ctx = context.WithValue(ctx, keyBaseDelay, opts.BaseDelay)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd executes the job function with panic recovery and retry logic
// Returns error if job fails after all retries
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) error {
	var (
		err        error
		maxRetries = GetMaxRetries(ctx)
		attempt    = GetRetryAttempt(ctx)
	)

	for attempt < maxRetries {
		// Update retry attempt in context
		ctx = SetRetryAttempt(ctx, attempt)

		// Execute job function with panic recovery
		func(ctx context.Context) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic recovered: %v", p)
				}
			}()

			// Check if context was cancelled before execution
			if ctx.Err() != nil {
				err = fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
				return
			}

			err = jobFunc(ctx)
		}(ctx)

		// Job succeeded
		if err == nil {
			return nil
		}

		// Check if error is retryable
		if !IsRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		attempt++
		if attempt >= maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		// Don't backoff if context is already cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}

		timer := time.NewTimer(CalculateBackoff(attempt, GetBaseDelay(ctx)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("job failed after %d attempts: %w", maxRetries, err)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok {
		return DefaultMaxRetries
	}
	return maxRetries
}

// GetBaseDelay extracts the retry base delay from context
func GetBaseDelay(ctx context.Context) time.Duration {
	delay, ok := ctx.Value(keyBaseDelay).(time.Duration)
	if !ok {
		return DefaultBaseDelay
	}
	return delay
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:        jobID,
		JobType:      jobType,
		WorkerID:     GetWorkerID(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry
// Retryable errors include: network errors, storage throttling, deadlocks
func IsRetryableError(err error) bool {
	if err == nil || IsPermanent(err) {
		return false
	}

	// the job deadline covers every attempt, retrying after it is pointless
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "unexpected eof") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// Object storage throttling
	if strings.Contains(errStr, "slowdown") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// 2^attempt * baseDelay, max 60 seconds
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	maxBackoff := 60 * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
