package speaker

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	appErrors "github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/domain/repositories"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/timeline"
)

// Resolver builds speaker directories from the meeting events table
type Resolver struct {
	repo   repositories.AttendeeRepository
	cache  repositories.SpeakerCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(repo repositories.AttendeeRepository, cache repositories.SpeakerCache, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey is the cache key of a meeting's directory
func CacheKey(sessionID, meetingID string) string {
	return fmt.Sprintf("speakers:%s:%s", sessionID, meetingID)
}

// Lookup binds the resolver to one meeting
func (r *Resolver) Lookup(sessionID, meetingID string) timeline.SpeakerLookup {
	return func(ctx context.Context) (entities.SpeakerDirectory, error) {
		return r.Resolve(ctx, sessionID, meetingID)
	}
}

// Resolve returns attendee ID -> display name. Attendees without a display name are left out.
// Cache errors are logged and ignored; repository errors are returned after retries.
func (r *Resolver) Resolve(ctx context.Context, sessionID, meetingID string) (entities.SpeakerDirectory, error) {
	key := CacheKey(sessionID, meetingID)

	if r.cache != nil {
		dir, ok, err := r.cache.GetSpeakers(ctx, key)
		if err != nil {
			r.warn("⚠️ Speaker cache read failed", key, appErrors.ErrCacheFailed("get speakers", err))
		} else if ok {
			return dir, nil
		}
	}

	var attendees map[string]string
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	bo.MaxInterval = 10 * time.Second

	err := backoff.Retry(func() error {
		var err error
		attendees, err = r.repo.FindJoinedAttendees(ctx, sessionID, meetingID)
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to look up speakers of meeting %s: %w", meetingID, err)
	}

	dir := Directory(attendees)

	if r.cache != nil {
		if err := r.cache.SetSpeakers(ctx, key, dir, r.ttl); err != nil {
			r.warn("⚠️ Speaker cache write failed", key, appErrors.ErrCacheFailed("set speakers", err))
		}
	}

	if r.logger != nil {
		r.logger.Info("👥 Speakers resolved",
			zap.String("meeting_id", meetingID),
			zap.Int("attendees", len(attendees)),
			zap.Int("named", len(dir)))
	}

	return dir, nil
}

// Directory turns attendee ID -> external user ID into attendee ID -> display name
func Directory(attendees map[string]string) entities.SpeakerDirectory {
	dir := make(entities.SpeakerDirectory, len(attendees))
	for attendeeID, externalUserID := range attendees {
		if name := entities.DisplayNameFromExternalUserID(externalUserID); name != "" {
			dir[attendeeID] = name
		}
	}
	return dir
}

func (r *Resolver) warn(msg, key string, err error) {
	if r.logger != nil {
		r.logger.Warn(msg, zap.String("key", key), zap.Error(err))
	}
}
