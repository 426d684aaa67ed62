// Package notification emails users about finished deployments and purchases.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLogInEmail bounds the build log tail quoted in failure emails
const maxLogInEmail = 2000

var templates = template.Must(template.New("").Parse(`
{{define "deployed"}}<p>Hi {{.Name}},</p>
<p><strong>{{.Project}}</strong> is live at <a href="{{.URL}}">{{.URL}}</a>{{if gt .Attempts 1}} after {{.Attempts}} attempts{{end}}.</p>{{end}}
{{define "failed"}}<p>Hi {{.Name}},</p>
<p>The deployment of <strong>{{.Project}}</strong> failed after {{.Attempts}} attempt(s).</p>
<pre>{{.Log}}</pre>{{end}}
{{define "purchased"}}<p>Hi {{.Name}},</p>
<p>Thanks for your purchase. <strong>{{.Domain}}</strong> is registered to you.</p>
<p>Amount charged: {{.Amount}} {{.Currency}}</p>{{end}}
`))

// Handler sends transactional email for domain events
type Handler struct {
	users    identity.UserRepository
	projects builder.ProjectRepository
	mailer   integration.Mailer
	logger   *zap.Logger
}

var _ shared.EventHandler = (*Handler)(nil)

// NewHandler creates a new notification handler
func NewHandler(users identity.UserRepository, projects builder.ProjectRepository, mailer integration.Mailer, logger *zap.Logger) *Handler {
	return &Handler{users: users, projects: projects, mailer: mailer, logger: logger}
}

// EventTypes returns the events that trigger email
func (h *Handler) EventTypes() []string {
	return []string{deployment.EventTypeSucceeded, deployment.EventTypeFailed, registrar.EventTypePurchased}
}

// Handle renders and sends the email for one event
func (h *Handler) Handle(ctx context.Context, event shared.DomainEvent) error {
	user, err := h.users.FindByID(ctx, event.OwnerID())
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	var msg integration.Email
	switch e := event.(type) {
	case *deployment.SucceededEvent:
		project := h.projectName(ctx, e.OwnerID(), e.ProjectID)
		msg, err = render("deployed", fmt.Sprintf("%s is live", project), map[string]any{
			"Name": user.Name, "Project": project, "URL": e.URL, "Attempts": e.Attempts,
		})
		if err == nil {
			msg.Text = fmt.Sprintf("%s is live at %s", project, e.URL)
		}
	case *deployment.FailedEvent:
		project := h.projectName(ctx, e.OwnerID(), e.ProjectID)
		log := e.Error
		if len(log) > maxLogInEmail {
			log = "..." + log[len(log)-maxLogInEmail:]
		}
		msg, err = render("failed", fmt.Sprintf("Deployment of %s failed", project), map[string]any{
			"Name": user.Name, "Project": project, "Attempts": e.Attempts, "Log": log,
		})
		if err == nil {
			msg.Text = fmt.Sprintf("The deployment of %s failed after %d attempt(s).\n\n%s", project, e.Attempts, log)
		}
	case *registrar.PurchasedEvent:
		msg, err = render("purchased", fmt.Sprintf("Your domain %s is registered", e.Domain), map[string]any{
			"Name": user.Name, "Domain": e.Domain, "Amount": e.Amount, "Currency": e.Currency,
		})
		if err == nil {
			msg.Text = fmt.Sprintf("%s is registered to you. Amount charged: %s %s", e.Domain, e.Amount, e.Currency)
		}
	default:
		h.logger.Debug("No email for event", zap.String("event_type", event.EventType()))
		return nil
	}
	if err != nil {
		return err
	}

	msg.To = user.Email
	if err := h.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", event.EventType(), err)
	}
	h.logger.Info("Notification sent",
		zap.String("event_type", event.EventType()),
		zap.String("user_id", user.ID.String()))
	return nil
}

func (h *Handler) projectName(ctx context.Context, ownerID, projectID uuid.UUID) string {
	p, err := h.projects.FindByIDForOwner(ctx, ownerID, projectID)
	if err != nil {
		return "Your project"
	}
	return p.Name
}

func render(name, subject string, data map[string]any) (integration.Email, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return integration.Email{}, fmt.Errorf("render %s email: %w", name, err)
	}
	return integration.Email{Subject: subject, HTML: buf.String()}, nil
}
