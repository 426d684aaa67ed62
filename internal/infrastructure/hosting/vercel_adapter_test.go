package hosting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestVercelAdapter(t *testing.T, mux *http.ServeMux) *VercelAdapter {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := NewVercelConfig("tok", "team_1")
	cfg.APIBaseURL = srv.URL
	a, err := NewVercelAdapter(cfg, zap.NewNop())
	require.NoError(t, err)
	return a
}

func TestNewVercelAdapter_RequiresToken(t *testing.T) {
	_, err := NewVercelAdapter(&VercelConfig{}, nil)
	assert.ErrorIs(t, err, ErrVercelConfigMissingToken)
}

func TestProjectName(t *testing.T) {
	assert.Equal(t, "my-cool-app", ProjectName("  My Cool App! "))
	assert.Equal(t, "alfred-site", ProjectName("!!!"))
	assert.Len(t, ProjectName(strings.Repeat("a", 150)), 100)
}

func TestVercelAdapter_CreateDeployment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v13/deployments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "team_1", r.URL.Query().Get("teamId"))

		var body vercelCreateDeployment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "landing-page", body.Name)
		assert.Equal(t, "production", body.Target)
		require.Len(t, body.Files, 1)
		assert.Equal(t, "index.html", body.Files[0].File)
		assert.Nil(t, body.ProjectSettings.Framework)

		_, _ = io.WriteString(w, `{"id":"dpl_1","url":"landing-page-abc.vercel.app","readyState":"QUEUED"}`)
	})
	a := newTestVercelAdapter(t, mux)

	dep, err := a.CreateDeployment(context.Background(), integration.DeployRequest{
		Name:  "Landing Page",
		Files: []integration.DeployFile{{Path: "index.html", Content: "<h1>hi</h1>"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "dpl_1", dep.ID)
	assert.Equal(t, "https://landing-page-abc.vercel.app", dep.URL)
	assert.Equal(t, integration.HostingQueued, dep.State)
}

func TestVercelAdapter_GetDeploymentAndBuildLog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v13/deployments/dpl_1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"dpl_1","url":"x.vercel.app","readyState":"ERROR"}`)
	})
	mux.HandleFunc("/v3/deployments/dpl_1/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("builds"))
		_, _ = io.WriteString(w, `[
			{"type":"command","created":1,"text":"npm run build"},
			{"type":"delimiter","created":2,"text":"---"},
			{"type":"stderr","created":3,"payload":{"text":"Error: Cannot find module './Header'"}}
		]`)
	})
	a := newTestVercelAdapter(t, mux)

	dep, err := a.GetDeployment(context.Background(), "dpl_1")
	require.NoError(t, err)
	assert.Equal(t, integration.HostingError, dep.State)
	assert.True(t, dep.State.IsTerminal())

	log, err := a.BuildLog(context.Background(), "dpl_1")
	require.NoError(t, err)
	assert.Equal(t, "npm run build\nError: Cannot find module './Header'\n", log)
}

func TestVercelAdapter_ErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v13/deployments/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":"not_found","message":"Deployment not found"}}`)
	})
	mux.HandleFunc("/v13/deployments/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	a := newTestVercelAdapter(t, mux)

	_, err := a.GetDeployment(context.Background(), "missing")
	assert.ErrorIs(t, err, integration.ErrProviderNotFound)
	assert.Contains(t, err.Error(), "Deployment not found")

	_, err = a.GetDeployment(context.Background(), "down")
	assert.ErrorIs(t, err, integration.ErrProviderUnavailable)
}

func TestVercelAdapter_Domains(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/domains/status", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "taken.com" {
			_, _ = io.WriteString(w, `{"available":false}`)
			return
		}
		_, _ = io.WriteString(w, `{"available":true}`)
	})
	mux.HandleFunc("/v4/domains/price", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"price":20,"period":1}`)
	})
	mux.HandleFunc("/v5/domains/buy", func(w http.ResponseWriter, r *http.Request) {
		var body vercelBuyDomain
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fresh.dev", body.Name)
		assert.Equal(t, 20.0, body.ExpectedPrice)
		assert.True(t, body.Renew)
		_, _ = io.WriteString(w, `{"domain":{"uid":"dom_1","name":"fresh.dev"}}`)
	})
	mux.HandleFunc("/v10/projects/landing-page/domains", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = io.WriteString(w, `{"name":"fresh.dev"}`)
	})
	a := newTestVercelAdapter(t, mux)
	ctx := context.Background()

	q, err := a.Check(ctx, "fresh.dev")
	require.NoError(t, err)
	assert.True(t, q.Available)
	assert.True(t, decimal.NewFromInt(20).Equal(q.Price))
	assert.Equal(t, 1, q.Period)

	q, err = a.Check(ctx, "taken.com")
	require.NoError(t, err)
	assert.False(t, q.Available)
	assert.True(t, q.Price.IsZero())

	orderID, err := a.Buy(ctx, "fresh.dev", decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.Equal(t, "dom_1", orderID)

	require.NoError(t, a.AttachDomain(ctx, "Landing Page", "fresh.dev"))
}
