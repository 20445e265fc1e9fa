package recording

// ProcessRequest asks for a captured meeting to be stitched
type ProcessRequest struct {
	MeetingID string `json:"meeting_id" validate:"required,keysegment"`
	SessionID string `json:"session_id" validate:"omitempty,keysegment"`
}

// ListJobsRequest filters the jobs of a meeting
type ListJobsRequest struct {
	MeetingID string `query:"meeting_id" validate:"required,keysegment"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// Normalize fills paging defaults
func (r *ListJobsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
}

// ListArtifactsRequest selects the output of one meeting
type ListArtifactsRequest struct {
	MeetingID string `param:"meeting_id" validate:"required,keysegment"`
	SessionID string `query:"session_id" validate:"omitempty,keysegment"`
}
