package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/transport/http/response"
)

type DeviceHandler struct {
	deviceService *app.DeviceService
}

func NewDeviceHandler(deviceService *app.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

func (h *DeviceHandler) List(c *gin.Context) {
	devices, err := h.deviceService.List()
	if err != nil {
		writeServiceError(c, err, "list devices failed")
		return
	}
	response.OK(c, gin.H{"devices": devices, "count": len(devices)})
}

func (h *DeviceHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	device, err := h.deviceService.Get(id)
	if err != nil {
		writeServiceError(c, err, "get device failed")
		return
	}
	response.OK(c, device)
}

func (h *DeviceHandler) Create(c *gin.Context) {
	var req app.DeviceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	device, err := h.deviceService.Create(req)
	if err != nil {
		writeServiceError(c, err, "create device failed")
		return
	}
	response.Created(c, device)
}

func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req app.DeviceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	device, err := h.deviceService.Update(id, req)
	if err != nil {
		writeServiceError(c, err, "update device failed")
		return
	}
	response.OK(c, device)
}

func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.deviceService.Delete(id); err != nil {
		writeServiceError(c, err, "delete device failed")
		return
	}
	response.OK(c, gin.H{"deleted_device_id": id})
}
