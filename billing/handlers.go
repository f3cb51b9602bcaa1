package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/logger"
	"github.com/dmitrymomot/inkpress/core/response"
	"github.com/dmitrymomot/inkpress/users"
)

// Stripe caps webhook payloads well below this; anything larger is abuse.
const maxWebhookBodyBytes = 64 * 1024

// Config holds Stripe settings loaded from the environment.
type Config struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	// PriceID is the subscription price offered at checkout.
	PriceID    string `env:"STRIPE_PRICE_ID,required"`
	SuccessURL string `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:8080/billing/success"`
	CancelURL  string `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:8080/billing/cancel"`
}

// Identity resolves the authenticated user for a request.
type Identity[C handler.Context] func(ctx C) (uuid.UUID, error)

// CheckoutClient creates Stripe checkout sessions. Satisfied by
// *session.Client from stripe-go.
type CheckoutClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Handlers exposes the billing endpoints: checkout-session creation for a
// signed-in user and the Stripe webhook receiver. Webhook events are
// verified and acknowledged here; processing is delegated to the handler
// installed via WithEventHandler.
type Handlers[C handler.Context] struct {
	cfg      Config
	checkout CheckoutClient
	repo     users.Repository
	identity Identity[C]
	onEvent  func(event stripe.Event) error
	log      *slog.Logger
}

// Option configures optional Handlers dependencies.
type Option[C handler.Context] func(*Handlers[C])

// WithLogger sets the logger for webhook diagnostics.
func WithLogger[C handler.Context](log *slog.Logger) Option[C] {
	return func(h *Handlers[C]) {
		if log != nil {
			h.log = log
		}
	}
}

// WithEventHandler installs the consumer for verified webhook events.
// A returned error turns into a 500 so Stripe retries the delivery.
func WithEventHandler[C handler.Context](fn func(event stripe.Event) error) Option[C] {
	return func(h *Handlers[C]) {
		if fn != nil {
			h.onEvent = fn
		}
	}
}

// NewHandlers creates the billing handlers. Panics on nil dependencies.
func NewHandlers[C handler.Context](
	cfg Config,
	checkout CheckoutClient,
	repo users.Repository,
	identity Identity[C],
	opts ...Option[C],
) *Handlers[C] {
	if checkout == nil {
		panic("billing: checkout client is required")
	}
	if repo == nil {
		panic("billing: user repository is required")
	}
	if identity == nil {
		panic("billing: identity resolver is required")
	}

	h := &Handlers[C]{
		cfg:      cfg,
		checkout: checkout,
		repo:     repo,
		identity: identity,
		onEvent:  func(stripe.Event) error { return nil },
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// CreateCheckoutSession starts a Stripe checkout for the signed-in user and
// returns the hosted checkout URL.
func (h *Handlers[C]) CreateCheckoutSession() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		userID, err := h.identity(ctx)
		if err != nil {
			return response.Error(response.ErrUnauthorized)
		}

		user, err := h.repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return response.Error(response.ErrUnauthorized)
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		params := &stripe.CheckoutSessionParams{
			Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
			CustomerEmail:     stripe.String(user.Email),
			ClientReferenceID: stripe.String(user.ID.String()),
			SuccessURL:        stripe.String(h.cfg.SuccessURL),
			CancelURL:         stripe.String(h.cfg.CancelURL),
			LineItems: []*stripe.CheckoutSessionLineItemParams{{
				Price:    stripe.String(h.cfg.PriceID),
				Quantity: stripe.Int64(1),
			}},
		}
		params.Context = ctx

		sess, err := h.checkout.New(params)
		if err != nil {
			return response.Error(response.ErrBadGateway.WithMessage("Failed to start checkout").WithError(err))
		}

		return response.JSON(checkoutResponse{URL: sess.URL})
	}
}

// Webhook receives Stripe event deliveries. The signature is verified
// against the endpoint secret; unverifiable payloads are rejected without
// reaching the event handler.
func (h *Handlers[C]) Webhook() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		r := ctx.Request()

		payload, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), r.Body, maxWebhookBodyBytes))
		if err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Failed to read webhook payload"))
		}

		// The account's webhook API version may trail the SDK's pinned
		// version; signature verification is what matters here.
		event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"),
			h.cfg.WebhookSecret, webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			h.log.WarnContext(ctx, "rejected stripe webhook",
				logger.Component("billing"), logger.Error(err))
			return response.Error(response.ErrBadRequest.WithMessage("Invalid webhook signature"))
		}

		if err := h.onEvent(event); err != nil {
			h.log.ErrorContext(ctx, "stripe event handler failed",
				logger.Component("billing"),
				slog.String("event_type", string(event.Type)),
				logger.Error(err))
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		h.log.InfoContext(ctx, "stripe event received",
			logger.Component("billing"),
			slog.String("event_type", string(event.Type)),
			slog.String("event_id", event.ID))

		return response.JSON(map[string]bool{"received": true})
	}
}
