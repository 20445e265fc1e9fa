package entities

import "strings"

// SpeakerDirectory maps attendee IDs to display names.
// It may be incomplete; unknown attendees have an empty name.
type SpeakerDirectory map[string]string

// Name returns the display name of an attendee or ""
func (d SpeakerDirectory) Name(attendeeID string) string {
	if d == nil {
		return ""
	}
	return d[attendeeID]
}

// DisplayNameFromExternalUserID returns the field after the first ':' of an external user ID.
// "42:alice" -> "alice", "42:alice:x" -> "alice". IDs without a name part return "".
func DisplayNameFromExternalUserID(externalUserID string) string {
	_, name, found := strings.Cut(externalUserID, ":")
	if !found {
		return ""
	}
	name, _, _ = strings.Cut(name, ":")
	return name
}
