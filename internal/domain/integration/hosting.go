package integration

import "context"

// HostingState is a provider deployment state
type HostingState string

const (
	HostingQueued       HostingState = "QUEUED"
	HostingInitializing HostingState = "INITIALIZING"
	HostingBuilding     HostingState = "BUILDING"
	HostingReady        HostingState = "READY"
	HostingError        HostingState = "ERROR"
	HostingCanceled     HostingState = "CANCELED"
)

// IsTerminal reports whether polling can stop
func (s HostingState) IsTerminal() bool {
	return s == HostingReady || s == HostingError || s == HostingCanceled
}

// DeployFile is one file sent inline with a deployment
type DeployFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DeployRequest creates one provider deployment
type DeployRequest struct {
	Name      string
	Framework string
	Files     []DeployFile
}

// HostingDeployment is the provider's view of a deployment
type HostingDeployment struct {
	ID        string
	ProjectID string
	URL       string
	State     HostingState
}

// HostingProvider deploys project files
type HostingProvider interface {
	CreateDeployment(ctx context.Context, req DeployRequest) (*HostingDeployment, error)
	GetDeployment(ctx context.Context, id string) (*HostingDeployment, error)
	// BuildLog returns the build output, most useful after ERROR
	BuildLog(ctx context.Context, id string) (string, error)
}
