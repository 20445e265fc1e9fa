package livekit

import (
	"context"
	"fmt"

	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

// roomLister is the part of lksdk.RoomServiceClient the client uses
type roomLister interface {
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
}

// RoomClient reads room state from the LiveKit server API
type RoomClient struct {
	rooms roomLister
}

// NewRoomClient creates a new LiveKit room client
func NewRoomClient(url, apiKey, apiSecret string) *RoomClient {
	return &RoomClient{rooms: lksdk.NewRoomServiceClient(url, apiKey, apiSecret)}
}

// RoomMetadata returns the metadata of a live room. A room that no longer exists has none.
func (c *RoomClient) RoomMetadata(ctx context.Context, roomName string) (string, error) {
	resp, err := c.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{
		Names: []string{roomName},
	})
	if err != nil {
		return "", fmt.Errorf("failed to list rooms: %w", err)
	}

	for _, room := range resp.GetRooms() {
		if room.GetName() == roomName {
			return room.GetMetadata(), nil
		}
	}
	return "", nil
}
