package plugin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewCommandLibrary()))
	err := reg.Register(NewCommandLibrary())
	assert.ErrorIs(t, err, ErrDuplicatePlugin)

	assert.Equal(t, []Info{{
		Name:        "command_library",
		Description: "Library of common network commands per vendor",
		Version:     "1.0.0",
	}}, reg.List())
}

func TestCommandLibraryFilter(t *testing.T) {
	lib := NewCommandLibrary()
	assert.Len(t, lib.Commands("", ""), 4)
	assert.Len(t, lib.Commands("cisco", ""), 2)
	assert.Len(t, lib.Commands("", "juniper_junos"), 1)
	assert.Empty(t, lib.Commands("mikrotik", ""))
}

func TestCommandLibraryRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewCommandLibrary()))
	reg.Mount(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/library/commands?vendor=arista", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Commands []Command `json:"commands"`
			Count    int       `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, 1, body.Data.Count)
	assert.Equal(t, "arista_eos", body.Data.Commands[0].DeviceType)
}
