package validator

import "testing"

type request struct {
	MeetingID string `validate:"required,keysegment"`
}

func TestValidate_KeySegment(t *testing.T) {
	t.Parallel()

	cv := New()
	tests := []struct {
		id    string
		valid bool
	}{
		{"3f1c2a7e-meeting", true},
		{"room_42.v2", true},
		{"", false},
		{"../etc", false},
		{"a/b", false},
		{".hidden", false},
	}

	for _, tt := range tests {
		err := cv.Validate(request{MeetingID: tt.id})
		if (err == nil) != tt.valid {
			t.Errorf("%q: expected valid=%v, got err=%v", tt.id, tt.valid, err)
		}
	}
}
