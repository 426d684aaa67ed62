package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	t.Run("all ok", func(t *testing.T) {
		h := NewSystemHandler("alfred", "1.2.3", map[string]Pinger{"database": ok, "cache": ok})
		router := testRouter(uuid.Nil)
		router.GET("/health", h.Health)

		w := doRequest(router, http.MethodGet, "/health", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body HealthData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "1.2.3", body.Version)
		assert.Equal(t, map[string]string{"database": "ok", "cache": "ok"}, body.Checks)
	})

	t.Run("one failing", func(t *testing.T) {
		h := NewSystemHandler("alfred", "1.2.3", map[string]Pinger{"database": down, "cache": ok})
		router := testRouter(uuid.Nil)
		router.GET("/health", h.Health)

		w := doRequest(router, http.MethodGet, "/health", nil)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body HealthData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "error", body.Checks["database"])
		assert.Equal(t, "ok", body.Checks["cache"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("no checks", func(t *testing.T) {
		h := NewSystemHandler("alfred", "dev", nil)
		router := testRouter(uuid.Nil)
		router.GET("/health", h.Health)

		w := doRequest(router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler("alfred", "1.2.3", nil)
	router := testRouter(uuid.Nil)
	router.GET("/system/info", h.Info)

	w := doRequest(router, http.MethodGet, "/system/info", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	require.NoError(t, json.Unmarshal(dataField(t, w), &info))
	assert.Equal(t, "alfred", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
