package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceasor-elvis/stem-management-system/internal/auth"
	"github.com/ceasor-elvis/stem-management-system/internal/metrics"
	"github.com/ceasor-elvis/stem-management-system/internal/photostore"
	"github.com/ceasor-elvis/stem-management-system/internal/queue"
	"github.com/ceasor-elvis/stem-management-system/internal/record"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Handler wires the record lifecycle and its collaborators to HTTP routes.
type Handler struct {
	Lifecycle *record.Service
	Queries   *record.Queries
	Accounts  auth.Accounts
	Uploader  photostore.Uploader
	Events    queue.Queue

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	DBHealthy    HealthCheck
	RedisHealthy HealthCheck
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.healthz)

	api := r.Group("/api", observeDuration())

	api.POST("/auth/login", h.login)

	authed := api.Group("", auth.RequireAuth(h.JWTSigningKey, h.JWTIssuer))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/auth/me", h.me)

	authed.GET("/records", auth.Require(auth.OpViewRecords), h.listRecords)
	authed.GET("/records/:recordId", auth.Require(auth.OpViewRecords), h.recordByID)
	authed.GET("/students/:studentId", auth.Require(auth.OpViewRecords), h.recordByStudentID)
	authed.POST("/checkins", auth.Require(auth.OpCheckIn), h.checkIn)
	authed.POST("/students/:studentId/checkout", auth.Require(auth.OpCheckOut), h.checkOut)
	authed.POST("/upload", auth.Require(auth.OpUpload), h.upload)
	authed.GET("/export/records.pdf", auth.Require(auth.OpExport), h.exportRecords)
}

func (h *Handler) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	dbOK := h.DBHealthy == nil || h.DBHealthy(ctx)
	redisOK := h.RedisHealthy == nil || h.RedisHealthy(ctx)
	status := http.StatusOK
	if !dbOK || !redisOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "db": dbOK, "redis": redisOK})
}

// publish sends a lifecycle event; failures are logged, never surfaced, so
// a flaky queue cannot fail a completed mutation.
func (h *Handler) publish(ctx context.Context, action string, rec record.Record, actorID string) {
	if h.Events == nil {
		return
	}
	evt := queue.Event{
		Action:    action,
		RecordID:  rec.RecordID,
		StudentID: rec.StudentID,
		ActorID:   actorID,
		At:        time.Now().UTC(),
	}
	if err := h.Events.Publish(ctx, evt); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var verr *record.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, record.ErrInvalidIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": "student identifier required"})
	case errors.Is(err, record.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no such student or record"})
	case errors.Is(err, record.ErrDuplicateStudentID):
		c.JSON(http.StatusConflict, gin.H{"error": "student already checked in"})
	case errors.Is(err, record.ErrAlreadyCheckedOut):
		c.JSON(http.StatusConflict, gin.H{"error": "student already checked out"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "upstream timed out, try again"})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func observeDuration() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.APIRequestDuration.WithLabelValues(
			c.FullPath(),
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
