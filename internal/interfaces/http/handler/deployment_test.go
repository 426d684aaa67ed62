package handler

import (
	"net/http"
	"testing"

	deploymentapp "github.com/alfred/backend/internal/application/deployment"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deploymentRouter(userID uuid.UUID, svc *mockDeploymentService) *gin.Engine {
	h := NewDeploymentHandler(svc)
	router := testRouter(userID)
	router.POST("/projects/:id/deployments", h.Start)
	router.GET("/projects/:id/deployments", h.ListByProject)
	router.GET("/deployments/:id", h.Get)
	return router
}

func TestDeploymentHandler_Start(t *testing.T) {
	userID, projectID := uuid.New(), uuid.New()
	path := "/projects/" + projectID.String() + "/deployments"

	t.Run("empty body uses defaults", func(t *testing.T) {
		svc := new(mockDeploymentService)
		svc.On("Start", mock.Anything, userID, projectID, deploymentapp.StartInput{}).
			Return(&deploymentapp.DeploymentDTO{ID: uuid.New(), ProjectID: projectID, Status: "queued", MaxAttempts: 3}, nil)

		w := doRequest(deploymentRouter(userID, svc), http.MethodPost, path, nil)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"queued"`)
		svc.AssertExpectations(t)
	})

	t.Run("explicit options", func(t *testing.T) {
		off := false
		input := deploymentapp.StartInput{MaxAttempts: 2, AutoFix: &off}
		svc := new(mockDeploymentService)
		svc.On("Start", mock.Anything, userID, projectID, input).Return(&deploymentapp.DeploymentDTO{ID: uuid.New()}, nil)

		w := doRequest(deploymentRouter(userID, svc), http.MethodPost, path, input)
		assert.Equal(t, http.StatusAccepted, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("too many attempts", func(t *testing.T) {
		svc := new(mockDeploymentService)
		w := doRequest(deploymentRouter(userID, svc), http.MethodPost, path, map[string]int{"max_attempts": 9})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty project", func(t *testing.T) {
		svc := new(mockDeploymentService)
		svc.On("Start", mock.Anything, userID, projectID, mock.Anything).
			Return(nil, shared.NewDomainError("EMPTY_PROJECT", "Project has no files"))

		w := doRequest(deploymentRouter(userID, svc), http.MethodPost, path, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("vercel not configured", func(t *testing.T) {
		svc := new(mockDeploymentService)
		svc.On("Start", mock.Anything, userID, projectID, mock.Anything).Return(nil, integration.ErrProviderNotConfigured)

		w := doRequest(deploymentRouter(userID, svc), http.MethodPost, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestDeploymentHandler_ListByProject(t *testing.T) {
	userID, projectID := uuid.New(), uuid.New()
	path := "/projects/" + projectID.String() + "/deployments"

	tests := []struct {
		name   string
		query  string
		limit  int
		status int
	}{
		{"default limit", "", defaultDeploymentListLimit, http.StatusOK},
		{"custom limit", "?limit=5", 5, http.StatusOK},
		{"zero", "?limit=0", 0, http.StatusBadRequest},
		{"too large", "?limit=101", 0, http.StatusBadRequest},
		{"not a number", "?limit=ten", 0, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockDeploymentService)
			if tt.status == http.StatusOK {
				svc.On("ListByProject", mock.Anything, userID, projectID, tt.limit).Return(nil, nil)
			}

			w := doRequest(deploymentRouter(userID, svc), http.MethodGet, path+tt.query, nil)

			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `[]`, string(dataField(t, w)))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDeploymentHandler_Get(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	svc := new(mockDeploymentService)
	svc.On("Get", mock.Anything, userID, id).Return(&deploymentapp.DeploymentDTO{ID: id, Status: "ready", URL: "https://site.vercel.app"}, nil)

	w := doRequest(deploymentRouter(userID, svc), http.MethodGet, "/deployments/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://site.vercel.app")
}
