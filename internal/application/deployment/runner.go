package deployment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxFixSummary = 500
	// build log tail sent to the model
	maxPromptLog = 8 * 1024
)

const fixInstructions = `A deployment of this project failed. Read the build log and fix the cause.
Reply with one or two sentences describing the fix, then every file you change
as a fenced code block whose info string is the language followed by the file path.
Always return complete file contents. Only change what the error requires.`

// Observer records deployment outcomes
type Observer interface {
	ObserveDeployment(status string, attempts int)
}

// RunnerConfig bounds polling of the hosting provider
type RunnerConfig struct {
	PollInterval   time.Duration
	AttemptTimeout time.Duration
}

// RunnerDeps groups the collaborators of Runner
type RunnerDeps struct {
	Deployments deployment.Repository
	Projects    builder.ProjectRepository
	Hosting     integration.HostingProvider
	Storage     integration.ObjectStorage
	LLM         integration.LLMProvider
	Facets      *facet.Catalogue
	Events      shared.EventPublisher
	Observer    Observer
}

// Runner executes the deploy, poll and auto-fix loop of one deployment
type Runner struct {
	repo        deployment.Repository
	projectRepo builder.ProjectRepository
	hosting     integration.HostingProvider
	storage     integration.ObjectStorage
	llm         integration.LLMProvider
	facets      *facet.Catalogue
	events      shared.EventPublisher
	observer    Observer
	config      RunnerConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewRunner creates a new runner
func NewRunner(deps RunnerDeps, config RunnerConfig, logger *zap.Logger) *Runner {
	if config.PollInterval <= 0 {
		config.PollInterval = 3 * time.Second
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = 10 * time.Minute
	}
	return &Runner{
		repo:        deps.Deployments,
		projectRepo: deps.Projects,
		hosting:     deps.Hosting,
		storage:     deps.Storage,
		llm:         deps.LLM,
		facets:      deps.Facets,
		events:      deps.Events,
		observer:    deps.Observer,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// attemptResult is the outcome of one build
type attemptResult struct {
	ready     bool
	url       string
	projectID string
	log       string
}

// Run drives a deployment until it is ready or has failed. Attempts never
// exceed the deployment's max_attempts.
func (r *Runner) Run(ctx context.Context, deploymentID, ownerID uuid.UUID) error {
	d, err := r.repo.FindByIDForOwner(ctx, ownerID, deploymentID)
	if err != nil {
		return fmt.Errorf("load deployment: %w", err)
	}
	if d.IsTerminal() {
		return nil
	}
	log := r.logger.With(
		zap.String("deployment_id", d.ID.String()),
		zap.String("project_id", d.ProjectID.String()))

	p, err := r.projectRepo.FindByIDForOwner(ctx, ownerID, d.ProjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.fail(ctx, d, "project no longer exists")
		}
		return fmt.Errorf("load project: %w", err)
	}

	for {
		attempt, err := d.StartAttempt()
		if err != nil {
			reason := d.ErrorLog
			if reason == "" {
				reason = "deployment was interrupted"
			}
			return r.fail(ctx, d, reason)
		}
		if err := r.repo.Save(ctx, d); err != nil {
			return err
		}
		log.Info("Deployment attempt started", zap.Int("attempt", attempt), zap.Int("max_attempts", d.MaxAttempts))

		res, err := r.attempt(ctx, d, p, attempt)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				// left unfinished for Resume
				return ctx.Err()
			}
			if ctx.Err() != nil {
				return r.fail(context.WithoutCancel(ctx), d, "deployment timed out")
			}
			log.Warn("Deployment attempt errored", zap.Int("attempt", attempt), zap.Error(err))
			return r.fail(ctx, d, err.Error())
		}
		if res.ready {
			return r.succeed(ctx, d, p, res)
		}

		d.RecordError(res.log)
		if !d.CanRetry() {
			return r.fail(ctx, d, res.log)
		}
		if err := r.fix(ctx, d, p, res.log); err != nil {
			log.Warn("Auto-fix failed", zap.Int("attempt", attempt), zap.Error(err))
			return r.fail(ctx, d, res.log+"\n\nAuto-fix failed: "+err.Error())
		}
		if err := r.repo.Save(ctx, d); err != nil {
			return err
		}
	}
}

func (r *Runner) attempt(ctx context.Context, d *deployment.Deployment, p *builder.Project, attempt int) (*attemptResult, error) {
	files := p.Files()
	bundle, err := json.Marshal(struct {
		DeploymentID uuid.UUID             `json:"deployment_id"`
		ProjectID    uuid.UUID             `json:"project_id"`
		Attempt      int                   `json:"attempt"`
		Framework    string                `json:"framework"`
		Files        []builder.ProjectFile `json:"files"`
	}{d.ID, p.ID, attempt, p.Framework, files})
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	key := fmt.Sprintf("deployments/%s/attempt-%d.json", d.ID, attempt)
	if err := r.storage.Put(ctx, key, bundle, "application/json"); err != nil {
		return nil, fmt.Errorf("upload bundle: %w", err)
	}

	req := integration.DeployRequest{
		Name:      p.Name,
		Framework: builder.Frameworks[p.Framework],
		Files:     make([]integration.DeployFile, len(files)),
	}
	for i, f := range files {
		req.Files[i] = integration.DeployFile{Path: f.Path, Content: f.Content}
	}
	created, err := r.hosting.CreateDeployment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create deployment: %w", err)
	}
	d.RecordProviderID(created.ID)
	if err := r.repo.Save(ctx, d); err != nil {
		return nil, err
	}

	final, err := r.poll(ctx, created)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return &attemptResult{log: fmt.Sprintf("Build did not finish within %s", r.config.AttemptTimeout)}, nil
	}
	if final.State == integration.HostingReady {
		return &attemptResult{ready: true, url: final.URL, projectID: final.ProjectID}, nil
	}

	buildLog, err := r.hosting.BuildLog(ctx, created.ID)
	if err != nil || strings.TrimSpace(buildLog) == "" {
		r.logger.Warn("Build log unavailable", zap.String("provider_id", created.ID), zap.Error(err))
		buildLog = fmt.Sprintf("Build finished with state %s", final.State)
	}
	return &attemptResult{log: buildLog}, nil
}

// poll waits for a terminal provider state. It returns nil when the attempt times out.
func (r *Runner) poll(ctx context.Context, dep *integration.HostingDeployment) (*integration.HostingDeployment, error) {
	if dep.State.IsTerminal() {
		return dep, nil
	}
	timer := time.NewTimer(r.config.AttemptTimeout)
	defer timer.Stop()
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-ticker.C:
			current, err := r.hosting.GetDeployment(ctx, dep.ID)
			if err != nil {
				if errors.Is(err, integration.ErrProviderUnavailable) || errors.Is(err, integration.ErrProviderRateLimited) {
					continue
				}
				return nil, fmt.Errorf("poll deployment: %w", err)
			}
			if current.State.IsTerminal() {
				return current, nil
			}
		}
	}
}

func (r *Runner) fix(ctx context.Context, d *deployment.Deployment, p *builder.Project, buildLog string) error {
	system, err := r.facets.Compose(facet.Builder, nil)
	if err != nil {
		return err
	}
	if len(buildLog) > maxPromptLog {
		buildLog = buildLog[len(buildLog)-maxPromptLog:]
	}
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Framework: %s\n\nFiles:\n", p.Framework)
	for _, f := range p.Files() {
		lang := strings.TrimPrefix(path.Ext(f.Path), ".")
		if lang == "" {
			lang = "text"
		}
		fmt.Fprintf(&prompt, "\n```%s %s\n%s\n```\n", lang, f.Path, strings.TrimRight(f.Content, "\n"))
	}
	fmt.Fprintf(&prompt, "\nBuild log:\n```\n%s\n```\n", buildLog)

	d.BeginFix()
	if err := r.repo.Save(ctx, d); err != nil {
		return err
	}

	completion, err := integration.Complete(ctx, r.llm, integration.CompletionRequest{
		System:   system + "\n\n" + fixInstructions,
		Messages: []integration.ChatMessage{{Role: integration.ChatRoleUser, Content: prompt.String()}},
		Purpose:  "autofix",
	})
	if err != nil {
		return fmt.Errorf("request patch: %w", err)
	}
	files, summary, _ := builder.FilesFromReply(completion.Content)
	if len(files) == 0 {
		return errors.New("model returned no files")
	}
	changes, err := p.ApplyPatch(files)
	if err != nil {
		return fmt.Errorf("apply patch: %w", err)
	}
	if err := r.projectRepo.Save(ctx, p); err != nil {
		return err
	}

	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path
	}
	if len(summary) > maxFixSummary {
		summary = summary[:maxFixSummary]
	}
	if summary == "" {
		summary = fmt.Sprintf("Patched %d file(s)", len(paths))
	}
	d.RecordFix(summary, paths)
	r.logger.Info("Auto-fix applied",
		zap.String("deployment_id", d.ID.String()),
		zap.Int("attempt", d.Attempts),
		zap.Strings("files", paths))
	return nil
}

func (r *Runner) succeed(ctx context.Context, d *deployment.Deployment, p *builder.Project, res *attemptResult) error {
	if err := d.MarkReady(res.url); err != nil {
		return err
	}
	if err := r.repo.Save(ctx, d); err != nil {
		return err
	}
	p.RecordDeployment(res.projectID, res.url, r.now().UTC())
	if err := r.projectRepo.Save(ctx, p); err != nil {
		r.logger.Warn("Failed to record production URL", zap.String("project_id", p.ID.String()), zap.Error(err))
	}
	r.logger.Info("Deployment ready",
		zap.String("deployment_id", d.ID.String()),
		zap.String("url", res.url),
		zap.Int("attempts", d.Attempts))
	r.finish(ctx, d)
	return nil
}

func (r *Runner) fail(ctx context.Context, d *deployment.Deployment, reason string) error {
	if err := d.MarkFailed(reason); err != nil {
		return err
	}
	if err := r.repo.Save(ctx, d); err != nil {
		return err
	}
	r.logger.Info("Deployment failed",
		zap.String("deployment_id", d.ID.String()),
		zap.Int("attempts", d.Attempts))
	r.finish(ctx, d)
	return nil
}

func (r *Runner) finish(ctx context.Context, d *deployment.Deployment) {
	if r.observer != nil {
		r.observer.ObserveDeployment(string(d.Status), d.Attempts)
	}
	if events := d.GetDomainEvents(); len(events) > 0 && r.events != nil {
		if err := r.events.Publish(ctx, events...); err != nil {
			r.logger.Warn("Failed to publish deployment events", zap.String("deployment_id", d.ID.String()), zap.Error(err))
		}
	}
	d.ClearDomainEvents()
}
