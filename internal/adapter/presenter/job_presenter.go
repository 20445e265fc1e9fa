package presenter

import (
	"encoding/json"
	"strings"

	recordingDTO "github.com/johnquangdev/capture-stitcher/internal/adapter/dto/recording"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/recording"
)

// ToJobResponse converts a ProcessingJob entity to JobResponse DTO
func ToJobResponse(j *entities.ProcessingJob) *recordingDTO.JobResponse {
	if j == nil {
		return nil
	}

	response := &recordingDTO.JobResponse{
		ID:             j.ID.String(),
		MeetingID:      j.MeetingID,
		SessionID:      j.SessionID,
		Status:         string(j.Status),
		RecordingStart: j.RecordingStart,
		RecordingEnd:   j.RecordingEnd,
		SegmentCount:   j.SegmentCount,
		OverlayCount:   j.OverlayCount,
		CueCount:       j.CueCount,
		ParseFailures:  j.ParseFailures,
		VideoKey:       j.VideoKey,
		SubtitleKey:    j.SubtitleKey,
		TimelineKey:    j.TimelineKey,
		RetryCount:     j.RetryCount,
		Error:          j.ProcessingError,
		ErrorCode:      j.ErrorCode,
		StartedAt:      j.ProcessingStartedAt,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}

	if j.RecordingStart != nil && j.RecordingEnd != nil {
		response.DurationSeconds = j.RecordingEnd.Sub(*j.RecordingStart).Seconds()
	}

	// Skip the empty default document
	if len(j.Metadata) > 0 && json.Valid(j.Metadata) && string(j.Metadata) != "{}" {
		response.Metadata = json.RawMessage(j.Metadata)
	}

	return response
}

// ToJobResponses converts a list of jobs
func ToJobResponses(jobs []*entities.ProcessingJob) []*recordingDTO.JobResponse {
	out := make([]*recordingDTO.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToJobResponse(j))
	}
	return out
}

// ToArtifactResponses converts uploaded artifacts
func ToArtifactResponses(artifacts []recording.Artifact) []recordingDTO.ArtifactResponse {
	out := make([]recordingDTO.ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, recordingDTO.ArtifactResponse{
			Key:          a.Key,
			Kind:         artifactKind(a.Key),
			Size:         a.Size,
			LastModified: a.LastModified,
			URL:          a.URL,
		})
	}
	return out
}

func artifactKind(key string) string {
	switch {
	case strings.HasSuffix(key, "-timeline.json"):
		return "timeline"
	case strings.HasSuffix(key, ".srt"):
		return "subtitle_srt"
	case strings.HasSuffix(key, ".vtt"):
		return "subtitle_vtt"
	case strings.HasSuffix(key, ".mp4"):
		return "video"
	}
	return "other"
}
