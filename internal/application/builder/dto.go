package builder

import (
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/seo"
	"github.com/google/uuid"
)

// CreateProjectInput creates an empty project
type CreateProjectInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Framework   string `json:"framework" binding:"omitempty,oneof=static nextjs vite react svelte astro"`
}

// UpdateProjectInput patches descriptive fields
type UpdateProjectInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Framework   *string `json:"framework" binding:"omitempty,oneof=static nextjs vite react svelte astro"`
}

// FileInput is one file in a write request
type FileInput struct {
	Path    string `json:"path" binding:"required,max=255"`
	Content string `json:"content"`
}

// ReplaceFilesInput swaps the whole file set
type ReplaceFilesInput struct {
	Files []FileInput `json:"files" binding:"max=200,dive"`
}

// UpsertFileInput writes one file
type UpsertFileInput struct {
	Path    string `json:"path" binding:"required,max=255"`
	Content string `json:"content"`
}

// GenerateInput asks the model to build or change the project
type GenerateInput struct {
	Prompt string `json:"prompt" binding:"required,max=8000"`
}

// FromArtifactsInput seeds a project from a conversation's artifacts
type FromArtifactsInput struct {
	ConversationID uuid.UUID `json:"conversation_id" binding:"required"`
	Name           string    `json:"name" binding:"required,max=100"`
	Description    string    `json:"description" binding:"omitempty,max=2000"`
	Framework      string    `json:"framework" binding:"omitempty,oneof=static nextjs vite react svelte astro"`
}

// ProjectDTO is the API view of a project
type ProjectDTO struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Framework       string                `json:"framework"`
	FileCount       int                   `json:"file_count"`
	Files           []builder.ProjectFile `json:"files,omitempty"`
	SEO             *seo.Report           `json:"seo,omitempty"`
	CustomDomain    string                `json:"custom_domain,omitempty"`
	VercelProjectID string                `json:"vercel_project_id,omitempty"`
	ProductionURL   string                `json:"production_url,omitempty"`
	LastDeployedAt  *time.Time            `json:"last_deployed_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// GenerateResultDTO reports what a generation run changed
type GenerateResultDTO struct {
	Project ProjectDTO           `json:"project"`
	Changes []builder.FileChange `json:"changes"`
	Summary string               `json:"summary"`
	Skipped int                  `json:"skipped_blocks"`
}

// ToProjectDTO converts a project. Files are included only when withFiles is set.
func ToProjectDTO(p *builder.Project, withFiles bool) ProjectDTO {
	dto := ProjectDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Framework:       p.Framework,
		FileCount:       len(p.Metadata.Files),
		SEO:             p.Metadata.SEO,
		CustomDomain:    p.Metadata.CustomDomain,
		VercelProjectID: p.VercelProjectID,
		ProductionURL:   p.ProductionURL,
		LastDeployedAt:  p.LastDeployedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if withFiles {
		dto.Files = p.Files()
	}
	return dto
}

func toProjectFiles(in []FileInput) []builder.ProjectFile {
	out := make([]builder.ProjectFile, len(in))
	for i, f := range in {
		out[i] = builder.ProjectFile{Path: f.Path, Content: f.Content}
	}
	return out
}
