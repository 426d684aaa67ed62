package deployment

import (
	"time"

	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/google/uuid"
)

// StartInput tunes a deployment run
type StartInput struct {
	MaxAttempts int   `json:"max_attempts" binding:"omitempty,min=1,max=5"`
	AutoFix     *bool `json:"auto_fix"`
}

// DeploymentDTO is the API view of a deployment
type DeploymentDTO struct {
	ID                 uuid.UUID        `json:"id"`
	ProjectID          uuid.UUID        `json:"project_id"`
	Status             string           `json:"status"`
	Attempts           int              `json:"attempts"`
	MaxAttempts        int              `json:"max_attempts"`
	AutoFix            bool             `json:"auto_fix"`
	VercelDeploymentID string           `json:"vercel_deployment_id,omitempty"`
	URL                string           `json:"url,omitempty"`
	ErrorLog           string           `json:"error_log,omitempty"`
	Fixes              []deployment.Fix `json:"fixes"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	FinishedAt         *time.Time       `json:"finished_at,omitempty"`
}

// ToDeploymentDTO converts a deployment
func ToDeploymentDTO(d *deployment.Deployment) DeploymentDTO {
	fixes := d.Fixes
	if fixes == nil {
		fixes = []deployment.Fix{}
	}
	return DeploymentDTO{
		ID:                 d.ID,
		ProjectID:          d.ProjectID,
		Status:             string(d.Status),
		Attempts:           d.Attempts,
		MaxAttempts:        d.MaxAttempts,
		AutoFix:            d.AutoFix,
		VercelDeploymentID: d.VercelDeploymentID,
		URL:                d.URL,
		ErrorLog:           d.ErrorLog,
		Fixes:              fixes,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		FinishedAt:         d.FinishedAt,
	}
}
