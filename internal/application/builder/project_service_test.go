package builder

import (
	"context"
	"strings"
	"testing"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type projectFixture struct {
	repo      *mockProjectRepository
	convs     *mockConversationRepository
	artifacts *mockArtifactRepository
	llm       *mockLLM
	quota     *mockQuota
	svc       *ProjectService
}

func newProjectFixture() *projectFixture {
	f := &projectFixture{
		repo:      new(mockProjectRepository),
		convs:     new(mockConversationRepository),
		artifacts: new(mockArtifactRepository),
		llm:       new(mockLLM),
		quota:     new(mockQuota),
	}
	f.svc = NewProjectService(ProjectServiceDeps{
		Projects:      f.repo,
		Conversations: f.convs,
		Artifacts:     f.artifacts,
		Facets:        facet.MustDefault(),
		LLM:           f.llm,
		Quota:         f.quota,
	}, zap.NewNop())
	return f
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("creates project", func(t *testing.T) {
		f := newProjectFixture()
		f.quota.On("CheckProjects", ctx, owner).Return(nil)
		f.repo.On("ExistsByName", ctx, owner, "Landing", (*uuid.UUID)(nil)).Return(false, nil)
		f.repo.On("Save", ctx, mock.AnythingOfType("*builder.Project")).Return(nil)

		out, err := f.svc.Create(ctx, owner, CreateProjectInput{Name: " Landing ", Framework: "vite"})
		require.NoError(t, err)
		assert.Equal(t, "Landing", out.Name)
		assert.Equal(t, "vite", out.Framework)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		f := newProjectFixture()
		f.quota.On("CheckProjects", ctx, owner).Return(nil)
		f.repo.On("ExistsByName", ctx, owner, "Landing", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.svc.Create(ctx, owner, CreateProjectInput{Name: "Landing"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("quota blocks creation", func(t *testing.T) {
		f := newProjectFixture()
		f.quota.On("CheckProjects", ctx, owner).Return(shared.ErrQuotaExceeded)

		_, err := f.svc.Create(ctx, owner, CreateProjectInput{Name: "Landing"})
		assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProjectService_Files(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	p, err := builder.NewProject(owner, "Site", "", "static")
	require.NoError(t, err)

	f := newProjectFixture()
	f.repo.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
	f.repo.On("Save", ctx, p).Return(nil)

	out, err := f.svc.ReplaceFiles(ctx, owner, p.ID, ReplaceFilesInput{Files: []FileInput{
		{Path: "/index.html", Content: "<h1>a</h1>"},
		{Path: "css/site.css", Content: "body{}"},
	}})
	require.NoError(t, err)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "css/site.css", out.Files[0].Path)
	assert.Equal(t, "index.html", out.Files[1].Path)

	out, err = f.svc.UpsertFile(ctx, owner, p.ID, UpsertFileInput{Path: "about.html", Content: "<h1>b</h1>"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.FileCount)

	out, err = f.svc.DeleteFile(ctx, owner, p.ID, "css/site.css")
	require.NoError(t, err)
	assert.Equal(t, 2, out.FileCount)

	_, err = f.svc.UpsertFile(ctx, owner, p.ID, UpsertFileInput{Path: "../etc/passwd", Content: "x"})
	assert.ErrorIs(t, err, builder.ErrInvalidPath)
}

func TestProjectService_Generate(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	p, _ := builder.NewProject(owner, "Site", "", "static")
	_, _ = p.UpsertFile("index.html", "<h1>old</h1>")

	f := newProjectFixture()
	f.repo.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
	f.repo.On("Save", ctx, p).Return(nil)
	f.llm.On("Stream", ctx, mock.MatchedBy(func(req integration.CompletionRequest) bool {
		return req.Purpose == "generate" &&
			strings.Contains(req.Messages[0].Content, "<h1>old</h1>") &&
			strings.Contains(req.Messages[0].Content, "add a contact page")
	})).Return(&integration.Completion{Content: "Added a contact page.\n\n```html contact.html\n<h1>Contact</h1>\n```\n\n```html index.html\n<h1>new</h1>\n```"}, nil)

	out, err := f.svc.Generate(ctx, owner, p.ID, GenerateInput{Prompt: "add a contact page"})
	require.NoError(t, err)
	assert.Equal(t, "Added a contact page.", out.Summary)
	require.Len(t, out.Changes, 2)
	assert.True(t, out.Changes[0].Created)
	assert.False(t, out.Changes[1].Created)
	assert.Equal(t, "add a contact page", p.Metadata.Prompt)
	file, ok := p.File("index.html")
	require.True(t, ok)
	assert.Equal(t, "<h1>new</h1>\n", file.Content)
}

func TestProjectService_GenerateWithoutFiles(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	p, _ := builder.NewProject(owner, "Site", "", "static")
	f := newProjectFixture()
	f.repo.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
	f.llm.On("Stream", ctx, mock.Anything).Return(&integration.Completion{Content: "I cannot do that."}, nil)

	_, err := f.svc.Generate(ctx, owner, p.ID, GenerateInput{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoFilesInReply)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProjectService_CreateFromArtifacts(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	conv, _ := chat.NewConversation(owner, "c", facet.Builder, nil)
	a1, _ := artifact.NewArtifact(owner, conv.ID, "index.html", "", "html", "<h1>x</h1>")
	a2, _ := artifact.NewArtifact(owner, conv.ID, "tsx-2", "", "tsx", "export {}")

	f := newProjectFixture()
	f.convs.On("FindByIDForOwner", ctx, owner, conv.ID).Return(conv, nil)
	f.artifacts.On("LatestByConversation", ctx, conv.ID).Return([]artifact.Artifact{*a1, *a2}, nil)
	f.quota.On("CheckProjects", ctx, owner).Return(nil)
	f.repo.On("ExistsByName", ctx, owner, "From chat", (*uuid.UUID)(nil)).Return(false, nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*builder.Project")).Return(nil)

	out, err := f.svc.CreateFromArtifacts(ctx, owner, FromArtifactsInput{ConversationID: conv.ID, Name: "From chat"})
	require.NoError(t, err)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "index.html", out.Files[0].Path)
	assert.Equal(t, "tsx-2.tsx", out.Files[1].Path)
}

func TestProjectService_CreateFromArtifactsEmpty(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	conv, _ := chat.NewConversation(owner, "c", facet.Builder, nil)
	f := newProjectFixture()
	f.convs.On("FindByIDForOwner", ctx, owner, conv.ID).Return(conv, nil)
	f.artifacts.On("LatestByConversation", ctx, conv.ID).Return([]artifact.Artifact{}, nil)

	_, err := f.svc.CreateFromArtifacts(ctx, owner, FromArtifactsInput{ConversationID: conv.ID, Name: "x"})
	assert.ErrorIs(t, err, ErrNoArtifacts)
}
