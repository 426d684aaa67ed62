package builder

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateName  = shared.NewDomainError("ALREADY_EXISTS", "A project with this name already exists")
	ErrNoArtifacts    = shared.NewDomainError("NO_ARTIFACTS", "The conversation has no artifacts to build from")
	ErrNoFilesInReply = shared.NewDomainError("EMPTY_GENERATION", "The model reply contained no files with paths")
)

// generation prompts stay under this many bytes of existing file content
const promptFileBudget = 60 * 1024

const generateInstructions = `You are editing a multi-file web project.
Reply with a short summary, then every file you create or change as a fenced
code block whose info string is the language followed by the file path, for example:

` + "```html index.html" + `
<!doctype html>
` + "```" + `

Always return complete file contents. Do not return files you did not change.`

// ProjectQuota enforces the project count
type ProjectQuota interface {
	CheckProjects(ctx context.Context, userID uuid.UUID) error
}

// ProjectService manages builder projects and their files
type ProjectService struct {
	repo         builder.ProjectRepository
	convRepo     chat.ConversationRepository
	artifactRepo artifact.Repository
	facets       *facet.Catalogue
	llm          integration.LLMProvider
	quota        ProjectQuota
	logger       *zap.Logger
}

// ProjectServiceDeps groups the collaborators of ProjectService
type ProjectServiceDeps struct {
	Projects      builder.ProjectRepository
	Conversations chat.ConversationRepository
	Artifacts     artifact.Repository
	Facets        *facet.Catalogue
	LLM           integration.LLMProvider
	Quota         ProjectQuota
}

// NewProjectService creates a new project service
func NewProjectService(deps ProjectServiceDeps, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:         deps.Projects,
		convRepo:     deps.Conversations,
		artifactRepo: deps.Artifacts,
		facets:       deps.Facets,
		llm:          deps.LLM,
		quota:        deps.Quota,
		logger:       logger,
	}
}

// List returns the caller's projects without file contents
func (s *ProjectService) List(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[ProjectDTO], error) {
	filter = filter.Normalize()
	projects, total, err := s.repo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		return shared.Paginated[ProjectDTO]{}, err
	}
	items := make([]ProjectDTO, len(projects))
	for i := range projects {
		items[i] = ToProjectDTO(&projects[i], false)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Create creates an empty project
func (s *ProjectService) Create(ctx context.Context, ownerID uuid.UUID, input CreateProjectInput) (*ProjectDTO, error) {
	p, err := s.newProject(ctx, ownerID, input.Name, input.Description, input.Framework)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Project created",
		zap.String("user_id", ownerID.String()),
		zap.String("project_id", p.ID.String()),
		zap.String("framework", p.Framework))
	dto := ToProjectDTO(p, true)
	return &dto, nil
}

// Get returns a project with its files
func (s *ProjectService) Get(ctx context.Context, ownerID, id uuid.UUID) (*ProjectDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	dto := ToProjectDTO(p, true)
	return &dto, nil
}

// Update patches name, description or framework
func (s *ProjectService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateProjectInput) (*ProjectDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	name, description, framework := p.Name, p.Description, p.Framework
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		description = *input.Description
	}
	if input.Framework != nil {
		framework = *input.Framework
	}
	if !strings.EqualFold(name, p.Name) {
		if err := s.ensureUniqueName(ctx, ownerID, name, &p.ID); err != nil {
			return nil, err
		}
	}
	if err := p.Update(name, description, framework); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	dto := ToProjectDTO(p, true)
	return &dto, nil
}

// Delete soft-deletes a project
func (s *ProjectService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("Project deleted",
		zap.String("user_id", ownerID.String()),
		zap.String("project_id", id.String()))
	return nil
}

// ReplaceFiles swaps the whole file set
func (s *ProjectService) ReplaceFiles(ctx context.Context, ownerID, id uuid.UUID, input ReplaceFilesInput) (*ProjectDTO, error) {
	return s.mutate(ctx, ownerID, id, func(p *builder.Project) error {
		return p.ReplaceFiles(toProjectFiles(input.Files))
	})
}

// UpsertFile writes one file
func (s *ProjectService) UpsertFile(ctx context.Context, ownerID, id uuid.UUID, input UpsertFileInput) (*ProjectDTO, error) {
	return s.mutate(ctx, ownerID, id, func(p *builder.Project) error {
		_, err := p.UpsertFile(input.Path, input.Content)
		return err
	})
}

// DeleteFile removes one file
func (s *ProjectService) DeleteFile(ctx context.Context, ownerID, id uuid.UUID, filePath string) (*ProjectDTO, error) {
	return s.mutate(ctx, ownerID, id, func(p *builder.Project) error {
		return p.DeleteFile(filePath)
	})
}

// Generate asks the model for files and merges them into the project
func (s *ProjectService) Generate(ctx context.Context, ownerID, id uuid.UUID, input GenerateInput) (*GenerateResultDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	system, err := s.facets.Compose(facet.Builder, nil)
	if err != nil {
		return nil, err
	}
	completion, err := integration.Complete(ctx, s.llm, integration.CompletionRequest{
		System: system + "\n\n" + generateInstructions,
		Messages: []integration.ChatMessage{
			{Role: integration.ChatRoleUser, Content: generationContext(p, input.Prompt)},
		},
		Purpose: "generate",
	})
	if err != nil {
		return nil, fmt.Errorf("generate project files: %w", err)
	}

	files, summary, skipped := builder.FilesFromReply(completion.Content)
	if len(files) == 0 {
		return nil, ErrNoFilesInReply
	}
	changes, err := p.MergeFiles(files)
	if err != nil {
		return nil, err
	}
	p.Metadata.Prompt = input.Prompt
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Project files generated",
		zap.String("project_id", p.ID.String()),
		zap.Int("changed", len(changes)),
		zap.Int("skipped_blocks", skipped),
		zap.Int("output_tokens", completion.OutputTokens))
	if summary == "" {
		summary = fmt.Sprintf("Updated %d file(s)", len(changes))
	}
	return &GenerateResultDTO{
		Project: ToProjectDTO(p, true),
		Changes: changes,
		Summary: summary,
		Skipped: skipped,
	}, nil
}

// CreateFromArtifacts seeds a new project with the latest artifact of every key
func (s *ProjectService) CreateFromArtifacts(ctx context.Context, ownerID uuid.UUID, input FromArtifactsInput) (*ProjectDTO, error) {
	if _, err := s.convRepo.FindByIDForOwner(ctx, ownerID, input.ConversationID); err != nil {
		return nil, err
	}
	artifacts, err := s.artifactRepo.LatestByConversation(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, ErrNoArtifacts
	}

	p, err := s.newProject(ctx, ownerID, input.Name, input.Description, input.Framework)
	if err != nil {
		return nil, err
	}
	files := make([]builder.ProjectFile, 0, len(artifacts))
	for _, a := range artifacts {
		files = append(files, builder.ProjectFile{Path: artifactPath(a.Key, a.Language), Content: a.Content})
	}
	if err := p.ReplaceFiles(files); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Project created from artifacts",
		zap.String("project_id", p.ID.String()),
		zap.String("conversation_id", input.ConversationID.String()),
		zap.Int("files", len(files)))
	dto := ToProjectDTO(p, true)
	return &dto, nil
}

func (s *ProjectService) newProject(ctx context.Context, ownerID uuid.UUID, name, description, framework string) (*builder.Project, error) {
	if err := s.quota.CheckProjects(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, ownerID, name, nil); err != nil {
		return nil, err
	}
	return builder.NewProject(ownerID, name, description, framework)
}

func (s *ProjectService) ensureUniqueName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.repo.ExistsByName(ctx, ownerID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

func (s *ProjectService) mutate(ctx context.Context, ownerID, id uuid.UUID, fn func(*builder.Project) error) (*ProjectDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	dto := ToProjectDTO(p, true)
	return &dto, nil
}

func generationContext(p *builder.Project, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\nFramework: %s\n", p.Name, p.Framework)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	files := p.Files()
	if len(files) > 0 {
		b.WriteString("\nCurrent files:\n")
		budget := promptFileBudget
		for _, f := range files {
			if len(f.Content) > budget {
				fmt.Fprintf(&b, "- %s (%d bytes, content omitted)\n", f.Path, len(f.Content))
				continue
			}
			budget -= len(f.Content)
			fmt.Fprintf(&b, "\n```%s\n%s\n```\n", f.Path, strings.TrimRight(f.Content, "\n"))
		}
	}
	b.WriteString("\nRequest:\n")
	b.WriteString(prompt)
	return b.String()
}

var languageExt = map[string]string{
	"html": "html", "css": "css", "javascript": "js", "js": "js", "jsx": "jsx",
	"typescript": "ts", "ts": "ts", "tsx": "tsx", "json": "json", "markdown": "md",
	"md": "md", "svelte": "svelte", "astro": "astro", "svg": "svg", "xml": "xml",
}

// artifactPath turns an artifact key into a file path, adding an extension
// to generated keys such as "tsx-2"
func artifactPath(key, language string) string {
	if path.Ext(key) != "" {
		return key
	}
	ext, ok := languageExt[strings.ToLower(language)]
	if !ok {
		ext = "txt"
	}
	return key + "." + ext
}
