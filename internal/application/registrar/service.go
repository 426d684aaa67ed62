package registrar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	quoteTTL        = 10 * time.Minute
	suggestParallel = 4
)

var (
	ErrDomainOwned = shared.NewDomainError(shared.ErrAlreadyExists.Code, "You already own this domain")

	// ErrAwaitingConfirmation is returned by Checkout while a paid checkout
	// of the same domain has not been confirmed yet
	ErrAwaitingConfirmation = shared.NewDomainError(shared.ErrInvalidState.Code,
		"A paid checkout for this domain is awaiting confirmation")
)

// Observer records purchase outcomes
type Observer interface {
	ObserveDomainPurchase(status string)
}

// Pricing turns registrar prices into what the customer pays
type Pricing struct {
	MarkupPercent decimal.Decimal
	FlatFee       decimal.Decimal
	Currency      string
	ProductName   string
	SuccessURL    string
	CancelURL     string
}

// ServiceDeps groups the collaborators of Service
type ServiceDeps struct {
	Purchases registrar.PurchaseRepository
	Projects  builder.ProjectRepository
	Registrar integration.DomainRegistrar
	Payments  integration.PaymentProvider
	Cache     cache.Store
	Events    shared.EventPublisher
	Observer  Observer
}

// Service searches, sells and registers domain names
type Service struct {
	purchases registrar.PurchaseRepository
	projects  builder.ProjectRepository
	registrar integration.DomainRegistrar
	payments  integration.PaymentProvider
	cache     cache.Store
	events    shared.EventPublisher
	observer  Observer
	pricing   Pricing
	logger    *zap.Logger
}

// NewService creates a new registrar service
func NewService(deps ServiceDeps, pricing Pricing, logger *zap.Logger) *Service {
	if pricing.Currency == "" {
		pricing.Currency = "usd"
	}
	if pricing.ProductName == "" {
		pricing.ProductName = "Domain registration"
	}
	return &Service{
		purchases: deps.Purchases,
		projects:  deps.Projects,
		registrar: deps.Registrar,
		payments:  deps.Payments,
		cache:     deps.Cache,
		events:    deps.Events,
		observer:  deps.Observer,
		pricing:   pricing,
		logger:    logger,
	}
}

// Check returns availability and the retail price of a domain
func (s *Service) Check(ctx context.Context, name string) (*QuoteDTO, error) {
	domain, err := registrar.NormalizeDomain(name)
	if err != nil {
		return nil, err
	}
	q, err := s.quote(ctx, domain, true)
	if err != nil {
		return nil, err
	}
	dto := s.toQuoteDTO(q)
	return &dto, nil
}

// Suggest checks the label under each suggestion TLD and returns the
// available names, cheapest first
func (s *Service) Suggest(ctx context.Context, query string) ([]QuoteDTO, error) {
	label := registrar.SanitizeLabel(query)
	if label == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Query must contain letters or digits")
	}

	var (
		mu  sync.Mutex
		out []QuoteDTO
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(suggestParallel)
	for _, tld := range registrar.SuggestionTLDs {
		domain := label + "." + tld
		g.Go(func() error {
			q, err := s.quote(gctx, domain, true)
			if err != nil {
				s.logger.Debug("Domain suggestion check failed", zap.String("domain", domain), zap.Error(err))
				return nil
			}
			if !q.Available {
				return nil
			}
			dto := s.toQuoteDTO(q)
			mu.Lock()
			out = append(out, dto)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Price.Cmp(out[j].Price); c != 0 {
			return c < 0
		}
		return out[i].Domain < out[j].Domain
	})
	return out, nil
}

// Checkout prices the domain and opens a one-time payment session
func (s *Service) Checkout(ctx context.Context, ownerID uuid.UUID, input CheckoutInput) (*CheckoutDTO, error) {
	domain, err := registrar.NormalizeDomain(input.Domain)
	if err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if _, err := s.projects.FindByIDForOwner(ctx, ownerID, *input.ProjectID); err != nil {
			return nil, err
		}
	}
	if err := s.supersedeOpen(ctx, ownerID, domain); err != nil {
		return nil, err
	}

	q, err := s.quote(ctx, domain, false)
	if err != nil {
		return nil, err
	}
	if !q.Available {
		return nil, registrar.ErrDomainUnavailable
	}
	price := registrar.RetailPrice(q.Price, s.pricing.MarkupPercent, s.pricing.FlatFee)
	p, err := registrar.NewPurchase(ownerID, domain, input.ProjectID, q.Price, price, s.pricing.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.purchases.Save(ctx, p); err != nil {
		return nil, err
	}

	session, err := s.payments.CreateCheckoutSession(ctx, integration.CheckoutRequest{
		Mode:        integration.CheckoutPayment,
		AmountCents: p.PriceInCents(),
		Currency:    p.Currency,
		ProductName: fmt.Sprintf("%s: %s", s.pricing.ProductName, domain),
		SuccessURL:  s.pricing.SuccessURL,
		CancelURL:   s.pricing.CancelURL,
		Metadata: map[string]string{
			"user_id":     ownerID.String(),
			"purchase_id": p.ID.String(),
			"domain":      domain,
		},
	})
	if err != nil {
		if failErr := p.Fail("checkout could not be created"); failErr == nil {
			if saveErr := s.purchases.Save(ctx, p); saveErr != nil {
				s.logger.Error("Failed to record failed checkout",
					zap.String("purchase_id", p.ID.String()),
					zap.Error(saveErr))
			}
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	p.AttachCheckout(session.ID)
	if err := s.purchases.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Domain checkout created",
		zap.String("user_id", ownerID.String()),
		zap.String("purchase_id", p.ID.String()),
		zap.String("domain", domain),
		zap.String("price", price.StringFixed(2)))
	return &CheckoutDTO{
		PurchaseID: p.ID,
		SessionID:  session.ID,
		URL:        session.URL,
		Price:      price,
		Currency:   p.Currency,
	}, nil
}

// Confirm registers a paid domain. Confirming a completed purchase returns it unchanged.
func (s *Service) Confirm(ctx context.Context, ownerID, purchaseID uuid.UUID) (*PurchaseDTO, error) {
	p, err := s.purchases.FindByIDForOwner(ctx, ownerID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status != registrar.PurchasePending {
		dto := ToPurchaseDTO(p)
		return &dto, nil
	}
	if p.StripeSessionID == "" {
		return nil, registrar.ErrPaymentIncomplete
	}
	session, err := s.payments.GetCheckoutSession(ctx, p.StripeSessionID)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	if !session.Paid {
		return nil, registrar.ErrPaymentIncomplete
	}

	log := s.logger.With(zap.String("purchase_id", p.ID.String()), zap.String("domain", p.Domain))
	orderID, err := s.registrar.Buy(ctx, p.Domain, p.RegistrarPrice)
	if err != nil {
		// transient failures stay pending so the client can confirm again
		if errors.Is(err, integration.ErrProviderUnavailable) || errors.Is(err, integration.ErrProviderRateLimited) {
			return nil, err
		}
		log.Error("Domain registration failed", zap.Error(err))
		if failErr := p.Fail("registrar rejected the purchase: " + err.Error()); failErr != nil {
			return nil, failErr
		}
		if err := s.purchases.Save(ctx, p); err != nil {
			return nil, err
		}
		s.observe(registrar.PurchaseFailed)
		dto := ToPurchaseDTO(p)
		return &dto, nil
	}

	if err := p.Complete(orderID); err != nil {
		return nil, err
	}
	if err := s.purchases.Save(ctx, p); err != nil {
		return nil, err
	}
	s.attach(ctx, p)
	s.publish(ctx, p)
	s.observe(registrar.PurchaseCompleted)
	log.Info("Domain registered", zap.String("order_id", orderID))
	dto := ToPurchaseDTO(p)
	return &dto, nil
}

// List returns the caller's purchases, newest first
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]PurchaseDTO, error) {
	items, err := s.purchases.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseDTO, len(items))
	for i := range items {
		out[i] = ToPurchaseDTO(&items[i])
	}
	return out, nil
}

// supersedeOpen fails an abandoned pending purchase of the same domain and
// refuses a domain the owner already has. A pending purchase whose session
// was paid is kept and Checkout is refused until it is confirmed.
func (s *Service) supersedeOpen(ctx context.Context, ownerID uuid.UUID, domain string) error {
	open, err := s.purchases.FindOpenByDomain(ctx, ownerID, domain)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if open.Status == registrar.PurchaseCompleted {
		return ErrDomainOwned
	}
	if open.StripeSessionID != "" {
		session, err := s.payments.GetCheckoutSession(ctx, open.StripeSessionID)
		if err != nil {
			return fmt.Errorf("get checkout session: %w", err)
		}
		if session.Paid {
			s.logger.Warn("Checkout refused, paid purchase awaits confirmation",
				zap.String("purchase_id", open.ID.String()),
				zap.String("domain", domain))
			return ErrAwaitingConfirmation
		}
	}
	if err := open.Fail("superseded by a new checkout"); err != nil {
		return err
	}
	return s.purchases.Save(ctx, open)
}

// quote asks the registrar, reading and filling the cache when cached is set
func (s *Service) quote(ctx context.Context, domain string, cached bool) (*integration.DomainQuote, error) {
	key := "domain:quote:" + domain
	if cached {
		var q integration.DomainQuote
		if err := cache.GetJSON(ctx, s.cache, key, &q); err == nil {
			return &q, nil
		}
	}
	q, err := s.registrar.Check(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", domain, err)
	}
	if err := cache.SetJSON(ctx, s.cache, key, q, quoteTTL); err != nil {
		s.logger.Warn("Failed to cache domain quote", zap.String("domain", domain), zap.Error(err))
	}
	return q, nil
}

func (s *Service) toQuoteDTO(q *integration.DomainQuote) QuoteDTO {
	dto := QuoteDTO{
		Domain:    q.Domain,
		Available: q.Available,
		Currency:  s.pricing.Currency,
		Period:    q.Period,
	}
	if q.Available {
		dto.Price = registrar.RetailPrice(q.Price, s.pricing.MarkupPercent, s.pricing.FlatFee)
	}
	return dto
}

// attach points the domain at the project's hosting. The domain is already
// bought, so failures are logged only.
func (s *Service) attach(ctx context.Context, p *registrar.Purchase) {
	if p.ProjectID == nil {
		return
	}
	project, err := s.projects.FindByIDForOwner(ctx, p.OwnerID, *p.ProjectID)
	if err != nil {
		s.logger.Warn("Project for domain not found", zap.String("purchase_id", p.ID.String()), zap.Error(err))
		return
	}
	target := project.VercelProjectID
	if target == "" {
		target = project.Name
	}
	if err := s.registrar.AttachDomain(ctx, target, p.Domain); err != nil {
		s.logger.Warn("Failed to attach domain", zap.String("domain", p.Domain), zap.String("project", target), zap.Error(err))
		return
	}
	project.SetCustomDomain(p.Domain)
	if err := s.projects.Save(ctx, project); err != nil {
		s.logger.Warn("Failed to record custom domain", zap.String("project_id", project.ID.String()), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, p *registrar.Purchase) {
	if events := p.GetDomainEvents(); len(events) > 0 && s.events != nil {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish purchase events", zap.String("purchase_id", p.ID.String()), zap.Error(err))
		}
	}
	p.ClearDomainEvents()
}

func (s *Service) observe(status registrar.PurchaseStatus) {
	if s.observer != nil {
		s.observer.ObserveDomainPurchase(string(status))
	}
}
