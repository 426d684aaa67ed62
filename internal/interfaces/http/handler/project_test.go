package handler

import (
	"net/http"
	"net/url"
	"testing"

	builderapp "github.com/alfred/backend/internal/application/builder"
	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func projectRouter(userID uuid.UUID, svc *mockProjectService) *gin.Engine {
	h := NewProjectHandler(svc)
	router := testRouter(userID)
	router.GET("/projects", h.List)
	router.POST("/projects", h.Create)
	router.POST("/projects/from-artifacts", h.CreateFromArtifacts)
	router.GET("/projects/:id", h.Get)
	router.PATCH("/projects/:id", h.Update)
	router.DELETE("/projects/:id", h.Delete)
	router.PUT("/projects/:id/files", h.ReplaceFiles)
	router.POST("/projects/:id/files", h.UpsertFile)
	router.DELETE("/projects/:id/files", h.DeleteFile)
	router.POST("/projects/:id/generate", h.Generate)
	return router
}

func TestProjectHandler_List(t *testing.T) {
	userID := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		svc := new(mockProjectService)
		svc.On("List", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return(shared.NewPaginated[builderapp.ProjectDTO](nil, 0, 1, 20), nil)

		w := doRequest(projectRouter(userID, svc), http.MethodGet, "/projects", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(dataField(t, w)))
	})

	t.Run("rejects oversized page", func(t *testing.T) {
		svc := new(mockProjectService)
		w := doRequest(projectRouter(userID, svc), http.MethodGet, "/projects?page_size=1000", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProjectHandler_Create(t *testing.T) {
	userID := uuid.New()
	svc := new(mockProjectService)
	input := builderapp.CreateProjectInput{Name: "Portfolio", Framework: "nextjs"}
	svc.On("Create", mock.Anything, userID, input).Return(&builderapp.ProjectDTO{ID: uuid.New(), Name: "Portfolio"}, nil)
	router := projectRouter(userID, svc)

	w := doRequest(router, http.MethodPost, "/projects", input)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/projects", map[string]string{"name": "x", "framework": "rails"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestProjectHandler_CreateFromArtifacts(t *testing.T) {
	userID := uuid.New()
	input := builderapp.FromArtifactsInput{ConversationID: uuid.New(), Name: "From chat"}
	svc := new(mockProjectService)
	svc.On("CreateFromArtifacts", mock.Anything, userID, input).
		Return(nil, shared.NewDomainError("NO_ARTIFACTS", "Conversation has no artifacts"))

	w := doRequest(projectRouter(userID, svc), http.MethodPost, "/projects/from-artifacts", input)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_NO_ARTIFACTS", errorCode(t, w))
}

func TestProjectHandler_Files(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	base := "/projects/" + id.String() + "/files"

	t.Run("replace", func(t *testing.T) {
		svc := new(mockProjectService)
		input := builderapp.ReplaceFilesInput{Files: []builderapp.FileInput{{Path: "index.html", Content: "<h1>Hi</h1>"}}}
		svc.On("ReplaceFiles", mock.Anything, userID, id, input).Return(&builderapp.ProjectDTO{ID: id, FileCount: 1}, nil)

		w := doRequest(projectRouter(userID, svc), http.MethodPut, base, input)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("replace rejects file without path", func(t *testing.T) {
		svc := new(mockProjectService)
		w := doRequest(projectRouter(userID, svc), http.MethodPut, base, `{"files":[{"content":"x"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upsert invalid path", func(t *testing.T) {
		svc := new(mockProjectService)
		input := builderapp.UpsertFileInput{Path: "../etc/passwd", Content: "x"}
		svc.On("UpsertFile", mock.Anything, userID, id, input).Return(nil, builder.ErrInvalidPath)

		w := doRequest(projectRouter(userID, svc), http.MethodPost, base, input)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_FILE_PATH", errorCode(t, w))
	})

	t.Run("upsert too large", func(t *testing.T) {
		svc := new(mockProjectService)
		svc.On("UpsertFile", mock.Anything, userID, id, mock.Anything).Return(nil, builder.ErrFileTooLarge)

		w := doRequest(projectRouter(userID, svc), http.MethodPost, base, builderapp.UpsertFileInput{Path: "big.js"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete needs path", func(t *testing.T) {
		svc := new(mockProjectService)
		w := doRequest(projectRouter(userID, svc), http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "DeleteFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete nested path", func(t *testing.T) {
		svc := new(mockProjectService)
		svc.On("DeleteFile", mock.Anything, userID, id, "src/app/page.tsx").Return(&builderapp.ProjectDTO{ID: id}, nil)

		w := doRequest(projectRouter(userID, svc), http.MethodDelete, base+"?path="+url.QueryEscape("src/app/page.tsx"), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestProjectHandler_Generate(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	path := "/projects/" + id.String() + "/generate"

	t.Run("returns changes", func(t *testing.T) {
		svc := new(mockProjectService)
		input := builderapp.GenerateInput{Prompt: "Add a contact page"}
		svc.On("Generate", mock.Anything, userID, id, input).Return(&builderapp.GenerateResultDTO{
			Project: builderapp.ProjectDTO{ID: id},
			Changes: []builder.FileChange{{Path: "contact.html"}},
			Summary: "Added contact page",
		}, nil)

		w := doRequest(projectRouter(userID, svc), http.MethodPost, path, input)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "contact.html")
	})

	t.Run("quota", func(t *testing.T) {
		svc := new(mockProjectService)
		svc.On("Generate", mock.Anything, userID, id, mock.Anything).Return(nil, shared.ErrQuotaExceeded)

		w := doRequest(projectRouter(userID, svc), http.MethodPost, path, builderapp.GenerateInput{Prompt: "more"})
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("prompt required", func(t *testing.T) {
		svc := new(mockProjectService)
		w := doRequest(projectRouter(userID, svc), http.MethodPost, path, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
