package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/capture-stitcher/internal/usecase/errors"
	pkgvalidator "github.com/johnquangdev/capture-stitcher/pkg/validator"
)

// EventEgressEnded is sent by LiveKit when a recording egress stops
const EventEgressEnded = "egress_ended"

// Enqueuer accepts stitch requests
type Enqueuer interface {
	Enqueue(ctx context.Context, meetingID, sessionID string) (*entities.ProcessingJob, error)
}

// RoomLookup reads the metadata of a LiveKit room
type RoomLookup interface {
	RoomMetadata(ctx context.Context, roomName string) (string, error)
}

// WebhookHandler handles LiveKit webhook events
type WebhookHandler struct {
	enqueuer    Enqueuer
	rooms       RoomLookup
	keyProvider auth.KeyProvider
	logger      *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(enqueuer Enqueuer, livekitAPIKey, livekitSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		enqueuer:    enqueuer,
		keyProvider: auth.NewSimpleKeyProvider(livekitAPIKey, livekitSecret),
		logger:      logger,
	}
}

// WithRoomLookup sets where the session ID comes from when the event carries no room
func (h *WebhookHandler) WithRoomLookup(rooms RoomLookup) *WebhookHandler {
	h.rooms = rooms
	return h
}

// HandleLiveKitWebhook verifies a LiveKit webhook and queues the finished capture
// @Summary      LiveKit Webhook
// @Description  Receives signed webhook events from LiveKit. A completed egress queues the room for stitching.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /webhooks/livekit [post]
func (h *WebhookHandler) HandleLiveKitWebhook(c echo.Context) error {
	event, err := webhook.ReceiveWebhookEvent(c.Request(), h.keyProvider)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidSignature(err))
	}

	if h.logger != nil {
		h.logger.Info("🪝 Webhook received",
			zap.String("event", event.GetEvent()),
			zap.String("id", event.GetId()))
	}

	job, err := h.handleEvent(c.Request().Context(), event)
	switch {
	case err == nil:
		return HandleStatus(h.logger, c, http.StatusAccepted, map[string]interface{}{
			"status": "queued",
			"job_id": job.ID.String(),
		})
	case err == usecaseErrors.ErrUnsupportedWebhook:
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ignored", "event": event.GetEvent()})
	case err == usecaseErrors.ErrMissingWebhookField:
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	default:
		return HandleError(h.logger, c, err)
	}
}

// handleEvent queues completed egresses. The room name is the meeting ID and the
// room metadata carries the session ID. Egress events usually arrive without the
// room, so the metadata is fetched from the server when a lookup is configured.
func (h *WebhookHandler) handleEvent(ctx context.Context, event *livekit.WebhookEvent) (*entities.ProcessingJob, error) {
	if event.GetEvent() != EventEgressEnded {
		return nil, usecaseErrors.ErrUnsupportedWebhook
	}

	info := event.GetEgressInfo()
	if info.GetStatus() != livekit.EgressStatus_EGRESS_COMPLETE {
		if h.logger != nil {
			h.logger.Warn("⏭️ Egress did not complete, skipping",
				zap.String("egress_id", info.GetEgressId()),
				zap.String("status", info.GetStatus().String()),
				zap.String("error", info.GetError()))
		}
		return nil, usecaseErrors.ErrUnsupportedWebhook
	}

	meetingID := info.GetRoomName()
	if meetingID == "" {
		meetingID = event.GetRoom().GetName()
	}
	sessionID := event.GetRoom().GetMetadata()

	if !pkgvalidator.IsKeySegment(meetingID) {
		return nil, usecaseErrors.ErrMissingWebhookField
	}
	if sessionID == "" && h.rooms != nil {
		metadata, err := h.rooms.RoomMetadata(ctx, meetingID)
		if err != nil && h.logger != nil {
			h.logger.Warn("⚠️ Failed to look up room metadata",
				zap.String("meeting_id", meetingID),
				zap.Error(err))
		}
		sessionID = metadata
	}
	if sessionID != "" && !pkgvalidator.IsKeySegment(sessionID) {
		sessionID = ""
	}

	if h.logger != nil {
		h.logger.Info("🎬 Egress completed, queueing meeting",
			zap.String("egress_id", info.GetEgressId()),
			zap.String("meeting_id", meetingID),
			zap.String("session_id", sessionID))
	}

	return h.enqueuer.Enqueue(ctx, meetingID, sessionID)
}
