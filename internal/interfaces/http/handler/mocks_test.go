package handler

import (
	"context"

	artifactapp "github.com/alfred/backend/internal/application/artifact"
	billingapp "github.com/alfred/backend/internal/application/billing"
	builderapp "github.com/alfred/backend/internal/application/builder"
	chatapp "github.com/alfred/backend/internal/application/chat"
	deploymentapp "github.com/alfred/backend/internal/application/deployment"
	identityapp "github.com/alfred/backend/internal/application/identity"
	personaapp "github.com/alfred/backend/internal/application/persona"
	registrarapp "github.com/alfred/backend/internal/application/registrar"
	seoapp "github.com/alfred/backend/internal/application/seo"
	"github.com/alfred/backend/internal/domain/billing"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/seo"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ptr returns args.Get(i) as *T, tolerating a nil interface
func ptr[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

func slice[T any](args mock.Arguments, i int) []T {
	if v := args.Get(i); v != nil {
		return v.([]T)
	}
	return nil
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetMe(ctx context.Context, userID uuid.UUID) (*identityapp.UserDTO, error) {
	args := m.Called(ctx, userID)
	return ptr[identityapp.UserDTO](args, 0), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input identityapp.UpdateProfileInput) (*identityapp.UserDTO, error) {
	args := m.Called(ctx, userID, input)
	return ptr[identityapp.UserDTO](args, 0), args.Error(1)
}

type mockConversationService struct{ mock.Mock }

func (m *mockConversationService) List(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[chatapp.ConversationDTO], error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(shared.Paginated[chatapp.ConversationDTO]), args.Error(1)
}

func (m *mockConversationService) Create(ctx context.Context, ownerID uuid.UUID, input chatapp.CreateConversationInput) (*chatapp.ConversationDTO, error) {
	args := m.Called(ctx, ownerID, input)
	return ptr[chatapp.ConversationDTO](args, 0), args.Error(1)
}

func (m *mockConversationService) Get(ctx context.Context, ownerID, id uuid.UUID) (*chatapp.ConversationDTO, error) {
	args := m.Called(ctx, ownerID, id)
	return ptr[chatapp.ConversationDTO](args, 0), args.Error(1)
}

func (m *mockConversationService) Update(ctx context.Context, ownerID, id uuid.UUID, input chatapp.UpdateConversationInput) (*chatapp.ConversationDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[chatapp.ConversationDTO](args, 0), args.Error(1)
}

func (m *mockConversationService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *mockConversationService) ListMessages(ctx context.Context, ownerID, id uuid.UUID) ([]chatapp.MessageDTO, error) {
	args := m.Called(ctx, ownerID, id)
	return slice[chatapp.MessageDTO](args, 0), args.Error(1)
}

// mockMessageSender replays tokens through onToken before returning
type mockMessageSender struct {
	mock.Mock
	tokens []string
}

func (m *mockMessageSender) Prepare(ctx context.Context, ownerID, convID uuid.UUID, input chatapp.SendMessageInput) (*chatapp.Turn, error) {
	args := m.Called(ctx, ownerID, convID, input)
	return ptr[chatapp.Turn](args, 0), args.Error(1)
}

func (m *mockMessageSender) Reply(ctx context.Context, turn *chatapp.Turn, onToken integration.TokenFunc) (*chatapp.ReplyDTO, error) {
	for _, tok := range m.tokens {
		if err := onToken(tok); err != nil {
			return nil, err
		}
	}
	args := m.Called(ctx, turn)
	return ptr[chatapp.ReplyDTO](args, 0), args.Error(1)
}

type fakeStreams struct{ started, finished int }

func (f *fakeStreams) StreamStarted() func() {
	f.started++
	return func() { f.finished++ }
}

type mockArtifactService struct{ mock.Mock }

func (m *mockArtifactService) ListLatest(ctx context.Context, ownerID, conversationID uuid.UUID) ([]artifactapp.ArtifactDTO, error) {
	args := m.Called(ctx, ownerID, conversationID)
	return slice[artifactapp.ArtifactDTO](args, 0), args.Error(1)
}

func (m *mockArtifactService) Versions(ctx context.Context, ownerID, conversationID uuid.UUID, key string) ([]artifactapp.ArtifactDTO, error) {
	args := m.Called(ctx, ownerID, conversationID, key)
	return slice[artifactapp.ArtifactDTO](args, 0), args.Error(1)
}

func (m *mockArtifactService) Get(ctx context.Context, ownerID, id uuid.UUID) (*artifactapp.ArtifactDTO, error) {
	args := m.Called(ctx, ownerID, id)
	return ptr[artifactapp.ArtifactDTO](args, 0), args.Error(1)
}

func (m *mockArtifactService) Create(ctx context.Context, ownerID uuid.UUID, input artifactapp.CreateArtifactInput) (*artifactapp.ArtifactDTO, error) {
	args := m.Called(ctx, ownerID, input)
	return ptr[artifactapp.ArtifactDTO](args, 0), args.Error(1)
}

func (m *mockArtifactService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *mockArtifactService) Extract(input artifactapp.ExtractInput) []artifactapp.ExtractedBlockDTO {
	return slice[artifactapp.ExtractedBlockDTO](m.Called(input), 0)
}

type mockProjectService struct{ mock.Mock }

func (m *mockProjectService) List(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[builderapp.ProjectDTO], error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(shared.Paginated[builderapp.ProjectDTO]), args.Error(1)
}

func (m *mockProjectService) Create(ctx context.Context, ownerID uuid.UUID, input builderapp.CreateProjectInput) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, input)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) Get(ctx context.Context, ownerID, id uuid.UUID) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, id)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) Update(ctx context.Context, ownerID, id uuid.UUID, input builderapp.UpdateProjectInput) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *mockProjectService) ReplaceFiles(ctx context.Context, ownerID, id uuid.UUID, input builderapp.ReplaceFilesInput) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) UpsertFile(ctx context.Context, ownerID, id uuid.UUID, input builderapp.UpsertFileInput) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) DeleteFile(ctx context.Context, ownerID, id uuid.UUID, filePath string) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, id, filePath)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) Generate(ctx context.Context, ownerID, id uuid.UUID, input builderapp.GenerateInput) (*builderapp.GenerateResultDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[builderapp.GenerateResultDTO](args, 0), args.Error(1)
}

func (m *mockProjectService) CreateFromArtifacts(ctx context.Context, ownerID uuid.UUID, input builderapp.FromArtifactsInput) (*builderapp.ProjectDTO, error) {
	args := m.Called(ctx, ownerID, input)
	return ptr[builderapp.ProjectDTO](args, 0), args.Error(1)
}

type mockDeploymentService struct{ mock.Mock }

func (m *mockDeploymentService) Start(ctx context.Context, ownerID, projectID uuid.UUID, input deploymentapp.StartInput) (*deploymentapp.DeploymentDTO, error) {
	args := m.Called(ctx, ownerID, projectID, input)
	return ptr[deploymentapp.DeploymentDTO](args, 0), args.Error(1)
}

func (m *mockDeploymentService) Get(ctx context.Context, ownerID, id uuid.UUID) (*deploymentapp.DeploymentDTO, error) {
	args := m.Called(ctx, ownerID, id)
	return ptr[deploymentapp.DeploymentDTO](args, 0), args.Error(1)
}

func (m *mockDeploymentService) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID, limit int) ([]deploymentapp.DeploymentDTO, error) {
	args := m.Called(ctx, ownerID, projectID, limit)
	return slice[deploymentapp.DeploymentDTO](args, 0), args.Error(1)
}

type mockRegistrarService struct{ mock.Mock }

func (m *mockRegistrarService) Check(ctx context.Context, name string) (*registrarapp.QuoteDTO, error) {
	args := m.Called(ctx, name)
	return ptr[registrarapp.QuoteDTO](args, 0), args.Error(1)
}

func (m *mockRegistrarService) Suggest(ctx context.Context, query string) ([]registrarapp.QuoteDTO, error) {
	args := m.Called(ctx, query)
	return slice[registrarapp.QuoteDTO](args, 0), args.Error(1)
}

func (m *mockRegistrarService) Checkout(ctx context.Context, ownerID uuid.UUID, input registrarapp.CheckoutInput) (*registrarapp.CheckoutDTO, error) {
	args := m.Called(ctx, ownerID, input)
	return ptr[registrarapp.CheckoutDTO](args, 0), args.Error(1)
}

func (m *mockRegistrarService) Confirm(ctx context.Context, ownerID, purchaseID uuid.UUID) (*registrarapp.PurchaseDTO, error) {
	args := m.Called(ctx, ownerID, purchaseID)
	return ptr[registrarapp.PurchaseDTO](args, 0), args.Error(1)
}

func (m *mockRegistrarService) List(ctx context.Context, ownerID uuid.UUID) ([]registrarapp.PurchaseDTO, error) {
	args := m.Called(ctx, ownerID)
	return slice[registrarapp.PurchaseDTO](args, 0), args.Error(1)
}

type mockSEOService struct{ mock.Mock }

func (m *mockSEOService) AnalyzeProject(ctx context.Context, ownerID, projectID uuid.UUID, input seoapp.AnalyzeInput) (*seo.Report, error) {
	args := m.Called(ctx, ownerID, projectID, input)
	return ptr[seo.Report](args, 0), args.Error(1)
}

func (m *mockSEOService) AnalyzeURL(ctx context.Context, input seoapp.AnalyzeURLInput) (*seo.Report, error) {
	args := m.Called(ctx, input)
	return ptr[seo.Report](args, 0), args.Error(1)
}

func (m *mockSEOService) Report(ctx context.Context, ownerID, projectID uuid.UUID) (*seo.Report, error) {
	args := m.Called(ctx, ownerID, projectID)
	return ptr[seo.Report](args, 0), args.Error(1)
}

func (m *mockSEOService) Sitemap(ctx context.Context, ownerID, projectID uuid.UUID, baseURL string) ([]byte, error) {
	args := m.Called(ctx, ownerID, projectID, baseURL)
	return slice[byte](args, 0), args.Error(1)
}

func (m *mockSEOService) Robots(baseURL string) (string, error) {
	args := m.Called(baseURL)
	return args.String(0), args.Error(1)
}

func (m *mockSEOService) Fix(ctx context.Context, ownerID, projectID uuid.UUID, input seoapp.FixInput) (*seoapp.FixResultDTO, error) {
	args := m.Called(ctx, ownerID, projectID, input)
	return ptr[seoapp.FixResultDTO](args, 0), args.Error(1)
}

type mockSubscriptionService struct{ mock.Mock }

func (m *mockSubscriptionService) Plans() []billing.Plan {
	return slice[billing.Plan](m.Called(), 0)
}

func (m *mockSubscriptionService) GetSubscription(ctx context.Context, userID uuid.UUID) (*billingapp.SubscriptionDTO, error) {
	args := m.Called(ctx, userID)
	return ptr[billingapp.SubscriptionDTO](args, 0), args.Error(1)
}

func (m *mockSubscriptionService) Checkout(ctx context.Context, userID uuid.UUID, input billingapp.CheckoutInput) (*billingapp.CheckoutDTO, error) {
	args := m.Called(ctx, userID, input)
	return ptr[billingapp.CheckoutDTO](args, 0), args.Error(1)
}

func (m *mockSubscriptionService) Portal(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockSubscriptionService) Sync(ctx context.Context, userID uuid.UUID) (*billingapp.SubscriptionDTO, error) {
	args := m.Called(ctx, userID)
	return ptr[billingapp.SubscriptionDTO](args, 0), args.Error(1)
}

type mockPersonaService struct{ mock.Mock }

func (m *mockPersonaService) List(ctx context.Context, ownerID uuid.UUID) ([]personaapp.PersonaDTO, error) {
	args := m.Called(ctx, ownerID)
	return slice[personaapp.PersonaDTO](args, 0), args.Error(1)
}

func (m *mockPersonaService) Create(ctx context.Context, ownerID uuid.UUID, input personaapp.CreatePersonaInput) (*personaapp.PersonaDTO, error) {
	args := m.Called(ctx, ownerID, input)
	return ptr[personaapp.PersonaDTO](args, 0), args.Error(1)
}

func (m *mockPersonaService) Get(ctx context.Context, ownerID, id uuid.UUID) (*personaapp.PersonaDTO, error) {
	args := m.Called(ctx, ownerID, id)
	return ptr[personaapp.PersonaDTO](args, 0), args.Error(1)
}

func (m *mockPersonaService) Update(ctx context.Context, ownerID, id uuid.UUID, input personaapp.UpdatePersonaInput) (*personaapp.PersonaDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[personaapp.PersonaDTO](args, 0), args.Error(1)
}

func (m *mockPersonaService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *mockPersonaService) GenerateAvatar(ctx context.Context, ownerID, id uuid.UUID, input personaapp.AvatarInput) (*personaapp.PersonaDTO, error) {
	args := m.Called(ctx, ownerID, id, input)
	return ptr[personaapp.PersonaDTO](args, 0), args.Error(1)
}

type mockStudioService struct{ mock.Mock }

func (m *mockStudioService) Presets() []persona.QualityPreset {
	return slice[persona.QualityPreset](m.Called(), 0)
}

func (m *mockStudioService) Submit(ctx context.Context, ownerID, personaID uuid.UUID, input personaapp.RenderInput) (*personaapp.RenderJobDTO, error) {
	args := m.Called(ctx, ownerID, personaID, input)
	return ptr[personaapp.RenderJobDTO](args, 0), args.Error(1)
}

func (m *mockStudioService) Get(ctx context.Context, ownerID, personaID, jobID uuid.UUID) (*personaapp.RenderJobDTO, error) {
	args := m.Called(ctx, ownerID, personaID, jobID)
	return ptr[personaapp.RenderJobDTO](args, 0), args.Error(1)
}

func (m *mockStudioService) List(ctx context.Context, ownerID, personaID uuid.UUID) ([]personaapp.RenderJobDTO, error) {
	args := m.Called(ctx, ownerID, personaID)
	return slice[personaapp.RenderJobDTO](args, 0), args.Error(1)
}
