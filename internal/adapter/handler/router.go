package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/johnquangdev/capture-stitcher/docs"
	"github.com/johnquangdev/capture-stitcher/pkg/jwt"
	"github.com/johnquangdev/capture-stitcher/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	healthHandler    *Health
	recordingHandler *Recording
	webhookHandler   *WebhookHandler
	authMiddleware   echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers. webhookHandler may be nil when
// LiveKit credentials are not configured.
func NewRouter(healthHandler *Health, recordingHandler *Recording, webhookHandler *WebhookHandler, authMiddleware echo.MiddlewareFunc) *Router {
	return &Router{
		healthHandler:    healthHandler,
		recordingHandler: recordingHandler,
		webhookHandler:   webhookHandler,
		authMiddleware:   authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthHandler.Check)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	rt.setupRecordingRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupRecordingRoutes configures stitch job routes
func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	recordings := g.Group("/recordings", rt.authMiddleware)

	recordings.POST("/process", rt.recordingHandler.Process, middleware.RequireScope(jwt.ScopeRecordingsWrite))

	read := middleware.RequireScope(jwt.ScopeRecordingsRead)
	recordings.GET("/jobs", rt.recordingHandler.ListJobs, read)
	recordings.GET("/jobs/:id", rt.recordingHandler.GetJob, read)
	recordings.GET("/:meeting_id/artifacts", rt.recordingHandler.ListArtifacts, read)
}

// setupWebhookRoutes configures webhook routes. Webhooks carry their own signature.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	if rt.webhookHandler == nil {
		return
	}
	g.POST("/webhooks/livekit", rt.webhookHandler.HandleLiveKitWebhook)
}
