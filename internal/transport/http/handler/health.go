package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"netauto/internal/bootstrap"
	"netauto/internal/transport/http/response"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK       bool   `json:"ok"`
	Disabled bool   `json:"disabled,omitempty"`
	Message  string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports every dependency. Redis and RabbitMQ are optional and count as
// healthy when they were never configured.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := h.checkDatabase(ctx)
	redisStatus := h.checkRedis(ctx)
	rmqStatus := h.checkRabbitMQ()
	vectorStatus := h.checkVectorStore(ctx)

	allOK := dbStatus.OK && redisStatus.OK && rmqStatus.OK && vectorStatus.OK
	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"version":    h.app.Config.App.Version,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": gin.H{
			"database":    dbStatus,
			"redis":       redisStatus,
			"rabbitmq":    rmqStatus,
			"vectorstore": vectorStatus,
		},
	})
}

// Basic is the lightweight liveness check under /api/v1.
func (h *HealthHandler) Basic(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database := "healthy", "connected"
	if !h.checkDatabase(ctx).OK {
		status, database = "unhealthy", "disconnected"
	}
	data := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
	}
	if status != "healthy" {
		response.WithStatus(c, http.StatusServiceUnavailable, response.CodeUnavailable, "database unavailable", data)
		return
	}
	response.OK(c, data)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) dependencyStatus {
	if h.app.DB == nil {
		return dependencyStatus{OK: false, Message: "not initialised"}
	}
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.app.Redis == nil {
		return dependencyStatus{OK: true, Disabled: true}
	}
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn == nil {
		return dependencyStatus{OK: true, Disabled: true}
	}
	if h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkVectorStore(ctx context.Context) dependencyStatus {
	if h.app.VectorStore == nil {
		return dependencyStatus{OK: false, Message: "not initialised"}
	}
	health := h.app.VectorStore.HealthCheck(ctx)
	if health.Status != "healthy" {
		return dependencyStatus{OK: false, Message: health.Error}
	}
	return dependencyStatus{OK: true}
}
