package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/internal/adapter/dto/common"
	recordingDTO "github.com/johnquangdev/capture-stitcher/internal/adapter/dto/recording"
	"github.com/johnquangdev/capture-stitcher/internal/adapter/presenter"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/recording"
)

// Recording handles stitch job endpoints
type Recording struct {
	service recording.Service
	logger  *zap.Logger
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(service recording.Service, logger *zap.Logger) *Recording {
	return &Recording{service: service, logger: logger}
}

// Process queues a captured meeting for stitching
// @Summary      Process a captured meeting
// @Description  Creates a stitch job for the meeting, or returns the job already running for it
// @Tags         Recordings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      recordingDTO.ProcessRequest  true  "Meeting to process"
// @Success      202      {object}  common.SuccessResponse{data=recordingDTO.JobResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Router       /recordings/process [post]
func (h *Recording) Process(c echo.Context) error {
	var req recordingDTO.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, err)
	}

	job, err := h.service.Enqueue(c.Request().Context(), req.MeetingID, req.SessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleStatus(h.logger, c, http.StatusAccepted, presenter.ToJobResponse(job))
}

// GetJob returns a stitch job
// @Summary      Get job
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  common.SuccessResponse{data=recordingDTO.JobResponse}
// @Failure      404  {object}  common.ErrorResponse
// @Router       /recordings/jobs/{id} [get]
func (h *Recording) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid job id"))
	}

	job, err := h.service.GetJob(c.Request().Context(), id)
	if stdErrors.Is(err, entities.ErrJobNotFound) {
		return HandleError(h.logger, c, errors.ErrJobNotFound(id.String()))
	}
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToJobResponse(job))
}

// ListJobs lists the stitch jobs of a meeting
// @Summary      List jobs
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        meeting_id  query     string  true   "Meeting ID"
// @Param        page        query     int     false  "Page"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  common.SuccessResponse{data=common.ListResponse}
// @Failure      400         {object}  common.ErrorResponse
// @Router       /recordings/jobs [get]
func (h *Recording) ListJobs(c echo.Context) error {
	var req recordingDTO.ListJobsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, err)
	}
	req.Normalize()

	jobs, total, err := h.service.ListJobs(c.Request().Context(), req.MeetingID, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.ListResponse{
		Data:       presenter.ToJobResponses(jobs),
		Pagination: common.NewPagination(req.Page, req.PageSize, total),
	})
}

// ListArtifacts returns presigned download URLs for a meeting's output
// @Summary      List artifacts
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        meeting_id  path      string  true   "Meeting ID"
// @Param        session_id  query     string  false  "Session ID"
// @Success      200         {object}  common.SuccessResponse{data=[]recordingDTO.ArtifactResponse}
// @Failure      400         {object}  common.ErrorResponse
// @Router       /recordings/{meeting_id}/artifacts [get]
func (h *Recording) ListArtifacts(c echo.Context) error {
	var req recordingDTO.ListArtifactsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, err)
	}

	artifacts, err := h.service.ListArtifacts(c.Request().Context(), req.SessionID, req.MeetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list artifacts", err))
	}

	return HandleSuccess(h.logger, c, presenter.ToArtifactResponses(artifacts))
}
