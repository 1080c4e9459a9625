package handler

import (
	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/plugin"
	"netauto/internal/transport/http/response"
)

type StatsHandler struct {
	statsService *app.StatsService
}

func NewStatsHandler(statsService *app.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "load stats failed")
		return
	}
	response.OK(c, stats)
}

type PluginHandler struct {
	registry *plugin.Registry
}

func NewPluginHandler(registry *plugin.Registry) *PluginHandler {
	return &PluginHandler{registry: registry}
}

func (h *PluginHandler) List(c *gin.Context) {
	plugins := h.registry.List()
	response.OK(c, gin.H{"plugins": plugins, "count": len(plugins)})
}
