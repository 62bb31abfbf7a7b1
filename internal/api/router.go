package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
)

// ChangeHandler processes one decoded change envelope.
type ChangeHandler interface {
	HandleChange(ctx context.Context, env *models.ChangeEnvelope) error
}

// NotificationReader serves status reads for dashboards.
type NotificationReader interface {
	Get(ctx context.Context, id string) (*models.Notification, error)
}

// Handler exposes the HTTP ingest and ops surface.
type Handler struct {
	changes       ChangeHandler
	notifications NotificationReader
	metrics       *metrics.Metrics
	started       time.Time
}

func NewHandler(changes ChangeHandler, notifications NotificationReader, m *metrics.Metrics, started time.Time) *Handler {
	return &Handler{
		changes:       changes,
		notifications: notifications,
		metrics:       m,
		started:       started,
	}
}

// NewRouter wires the ingest endpoint plus health and metrics.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	{
		v1.POST("/events", h.ingestEvent)
		v1.GET("/notifications/:id", h.getNotification)
	}
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	return router
}

// ingestEvent accepts a change envelope over HTTP, for backends that push
// document changes directly instead of going through the broker.
func (h *Handler) ingestEvent(c *gin.Context) {
	var env models.ChangeEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid change envelope: " + err.Error()})
		return
	}
	if env.Collection == "" || env.Kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection and kind are required"})
		return
	}

	if err := h.changes.HandleChange(c.Request.Context(), &env); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "event_id": env.EventID})
}

func (h *Handler) getNotification(c *gin.Context) {
	n, err := h.notifications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notification"})
		return
	}
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "notification dispatcher healthy",
		"meta": gin.H{
			"uptime_seconds": int(time.Since(h.started).Seconds()),
			"timestamp":      time.Now().UTC(),
		},
	})
}
