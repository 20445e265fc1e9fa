package handler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"google.golang.org/protobuf/encoding/protojson"

	usecaseErrors "github.com/johnquangdev/capture-stitcher/internal/usecase/errors"
)

func TestWebhook_HandleEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     *livekit.WebhookEvent
		wantErr   error
		wantQueue string
	}{
		{
			name: "completed egress",
			event: &livekit.WebhookEvent{
				Event:      EventEgressEnded,
				Room:       &livekit.Room{Name: "m1", Metadata: "s1"},
				EgressInfo: &livekit.EgressInfo{EgressId: "EG_1", RoomName: "m1", Status: livekit.EgressStatus_EGRESS_COMPLETE},
			},
			wantQueue: "m1/s1",
		},
		{
			name: "room name from egress only",
			event: &livekit.WebhookEvent{
				Event:      EventEgressEnded,
				EgressInfo: &livekit.EgressInfo{RoomName: "m2", Status: livekit.EgressStatus_EGRESS_COMPLETE},
			},
			wantQueue: "m2/",
		},
		{
			name: "failed egress",
			event: &livekit.WebhookEvent{
				Event:      EventEgressEnded,
				EgressInfo: &livekit.EgressInfo{RoomName: "m1", Status: livekit.EgressStatus_EGRESS_FAILED},
			},
			wantErr: usecaseErrors.ErrUnsupportedWebhook,
		},
		{
			name:    "other event",
			event:   &livekit.WebhookEvent{Event: "room_started", Room: &livekit.Room{Name: "m1"}},
			wantErr: usecaseErrors.ErrUnsupportedWebhook,
		},
		{
			name: "unsafe room name",
			event: &livekit.WebhookEvent{
				Event:      EventEgressEnded,
				EgressInfo: &livekit.EgressInfo{RoomName: "../m1", Status: livekit.EgressStatus_EGRESS_COMPLETE},
			},
			wantErr: usecaseErrors.ErrMissingWebhookField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			h := NewWebhookHandler(svc, "key", "secret", nil)

			_, err := h.handleEvent(context.Background(), tt.event)
			if err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantQueue == "" {
				if len(svc.enqueued) != 0 {
					t.Fatalf("nothing should be queued, got %v", svc.enqueued)
				}
				return
			}
			if len(svc.enqueued) != 1 || svc.enqueued[0] != tt.wantQueue {
				t.Fatalf("expected %s queued, got %v", tt.wantQueue, svc.enqueued)
			}
		})
	}
}

func TestWebhook_RejectsUnsigned(t *testing.T) {
	svc := newFakeService()
	h := NewWebhookHandler(svc, "key", "secret", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/livekit", strings.NewReader(`{"event":"egress_ended"}`))
	req.Header.Set(echo.HeaderContentType, "application/webhook+json")
	rec := httptest.NewRecorder()

	if err := h.HandleLiveKitWebhook(echo.New().NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(svc.enqueued) != 0 {
		t.Fatalf("unsigned webhook must not queue, got %v", svc.enqueued)
	}
}

type fakeRooms struct {
	metadata map[string]string
	err      error
}

func (f fakeRooms) RoomMetadata(_ context.Context, name string) (string, error) {
	return f.metadata[name], f.err
}

func TestWebhook_SessionFromRoomLookup(t *testing.T) {
	event := &livekit.WebhookEvent{
		Event:      EventEgressEnded,
		EgressInfo: &livekit.EgressInfo{RoomName: "m1", Status: livekit.EgressStatus_EGRESS_COMPLETE},
	}

	svc := newFakeService()
	h := NewWebhookHandler(svc, "key", "secret", nil).WithRoomLookup(fakeRooms{metadata: map[string]string{"m1": "s9"}})
	if _, err := h.handleEvent(context.Background(), event); err != nil {
		t.Fatal(err)
	}
	if len(svc.enqueued) != 1 || svc.enqueued[0] != "m1/s9" {
		t.Fatalf("expected the looked up session, got %v", svc.enqueued)
	}

	// a failed lookup still queues the meeting
	svc = newFakeService()
	h = NewWebhookHandler(svc, "key", "secret", nil).WithRoomLookup(fakeRooms{err: errors.New("down")})
	if _, err := h.handleEvent(context.Background(), event); err != nil {
		t.Fatal(err)
	}
	if len(svc.enqueued) != 1 || svc.enqueued[0] != "m1/" {
		t.Fatalf("expected the meeting without a session, got %v", svc.enqueued)
	}
}

func TestWebhook_SignedEgressQueued(t *testing.T) {
	body, err := protojson.Marshal(&livekit.WebhookEvent{
		Event:      EventEgressEnded,
		Id:         "EV_1",
		Room:       &livekit.Room{Name: "m1", Metadata: "s1"},
		EgressInfo: &livekit.EgressInfo{EgressId: "EG_1", RoomName: "m1", Status: livekit.EgressStatus_EGRESS_COMPLETE},
	})
	if err != nil {
		t.Fatal(err)
	}

	sum := sha256.Sum256(body)
	token, err := auth.NewAccessToken("key", "secret").
		SetValidFor(time.Minute).
		SetSha256(base64.StdEncoding.EncodeToString(sum[:])).
		ToJWT()
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/livekit", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "application/webhook+json")
	req.Header.Set(echo.HeaderAuthorization, token)
	rec := httptest.NewRecorder()

	svc := newFakeService()
	h := NewWebhookHandler(svc, "key", "secret", nil)
	if err := h.HandleLiveKitWebhook(echo.New().NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.enqueued) != 1 || svc.enqueued[0] != "m1/s1" {
		t.Fatalf("unexpected enqueue calls %v", svc.enqueued)
	}
}
