package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/inkpress/core/cache"
	"github.com/dmitrymomot/inkpress/core/email"
	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/logger"
	"github.com/dmitrymomot/inkpress/core/response"
	"github.com/dmitrymomot/inkpress/core/sessiontransport"
	"github.com/dmitrymomot/inkpress/pkg/clientip"
	"github.com/dmitrymomot/inkpress/pkg/ratelimiter"
	"github.com/dmitrymomot/inkpress/users"
)

const minPasswordLength = 8

// Config holds auth handler settings loaded from the environment.
type Config struct {
	// AppURL is the public base URL used to build password reset links.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`
	// ResetTokenTTL bounds how long a password reset link stays valid.
	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
}

// Handlers exposes registration, login, logout, and password reset endpoints.
type Handlers[C handler.Context] struct {
	cfg      Config
	repo     users.Repository
	sessions *sessiontransport.Cookie[SessionData]
	mailer   email.EmailSender
	resets   *resetTokenStore

	registerLimiter ratelimiter.RateLimiter
	loginLimiter    ratelimiter.RateLimiter
	resetLimiter    ratelimiter.RateLimiter

	log *slog.Logger
}

// Option configures optional Handlers dependencies.
type Option[C handler.Context] func(*Handlers[C])

// WithLogger sets the logger used for background failures like email sends.
func WithLogger[C handler.Context](log *slog.Logger) Option[C] {
	return func(h *Handlers[C]) {
		if log != nil {
			h.log = log
		}
	}
}

// WithRateLimiters installs per-endpoint limiters. Any nil limiter leaves
// that endpoint unthrottled.
func WithRateLimiters[C handler.Context](register, login, reset ratelimiter.RateLimiter) Option[C] {
	return func(h *Handlers[C]) {
		h.registerLimiter = register
		h.loginLimiter = login
		h.resetLimiter = reset
	}
}

// NewHandlers creates the auth handlers. Panics on nil required
// dependencies: missing wiring is a programmer error.
func NewHandlers[C handler.Context](
	cfg Config,
	repo users.Repository,
	sessions *sessiontransport.Cookie[SessionData],
	mailer email.EmailSender,
	tokens cache.Store,
	opts ...Option[C],
) *Handlers[C] {
	if repo == nil {
		panic("auth: user repository is required")
	}
	if sessions == nil {
		panic("auth: session transport is required")
	}
	if mailer == nil {
		panic("auth: email sender is required")
	}
	if tokens == nil {
		panic("auth: token store is required")
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}

	h := &Handlers[C]{
		cfg:      cfg,
		repo:     repo,
		sessions: sessions,
		mailer:   mailer,
		resets:   newResetTokenStore(tokens, cfg.ResetTokenTTL),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an account and signs the new user in.
func (h *Handlers[C]) Register() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		if resp := h.throttle(ctx, h.registerLimiter, clientip.GetIP(ctx.Request())); resp != nil {
			return resp
		}

		var req registerRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Name = strings.TrimSpace(req.Name)
		if !email.IsValidEmail(req.Email) {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("A valid email address is required"))
		}
		if req.Name == "" {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("Name is required"))
		}
		if len(req.Password) < minPasswordLength {
			return response.Error(response.ErrUnprocessableEntity.WithMessage(
				fmt.Sprintf("Password must be at least %d characters", minPasswordLength)))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		user, err := h.repo.Create(ctx, users.CreateUserParams{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, users.ErrEmailTaken) {
				return response.Error(response.ErrConflict.WithMessage("Email is already registered"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		if _, err := h.sessions.Authenticate(ctx, user.ID, SessionData{Name: user.Name, Email: user.Email}); err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.JSONWithStatus(user, http.StatusCreated)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and establishes an authenticated session.
// All failures return the same generic error to avoid account enumeration.
func (h *Handlers[C]) Login() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		var req loginRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if resp := h.throttle(ctx, h.loginLimiter, req.Email); resp != nil {
			return resp
		}

		user, err := h.repo.GetByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				// Burn comparable time so unknown emails are not
				// distinguishable by response latency.
				_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
				return response.Error(response.ErrUnauthorized.WithMessage(ErrInvalidCredentials.Error()))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
			return response.Error(response.ErrUnauthorized.WithMessage(ErrInvalidCredentials.Error()))
		}

		if _, err := h.sessions.Authenticate(ctx, user.ID, SessionData{Name: user.Name, Email: user.Email}); err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.JSON(user)
	}
}

// Logout replaces the current session with a fresh anonymous one.
func (h *Handlers[C]) Logout() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		if _, err := h.sessions.Logout(ctx); err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		return response.NoContent()
	}
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset emails a single-use reset link. It always answers
// 202 for well-formed requests so callers cannot probe which emails exist.
func (h *Handlers[C]) RequestPasswordReset() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		var req resetRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !email.IsValidEmail(req.Email) {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("A valid email address is required"))
		}
		if resp := h.throttle(ctx, h.resetLimiter, req.Email); resp != nil {
			return resp
		}

		accepted := response.JSONWithStatus(map[string]string{"status": "accepted"}, http.StatusAccepted)

		user, err := h.repo.GetByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return accepted
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		token, err := h.resets.issue(ctx, user.ID)
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		link := strings.TrimRight(h.cfg.AppURL, "/") + "/reset-password?token=" + token
		if err := h.mailer.SendEmail(ctx, email.SendEmailParams{
			SendTo:   user.Email,
			Subject:  "Reset your password",
			BodyHTML: resetEmailBody(user.Name, link),
			Tag:      "password-reset",
		}); err != nil {
			h.log.ErrorContext(ctx, "failed to send password reset email",
				logger.Component("auth"), logger.Error(err))
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return accepted
	}
}

type confirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ConfirmPasswordReset sets a new password for the token's owner and
// invalidates the token.
func (h *Handlers[C]) ConfirmPasswordReset() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		var req confirmResetRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		if req.Token == "" {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("Reset token is required"))
		}
		if len(req.Password) < minPasswordLength {
			return response.Error(response.ErrUnprocessableEntity.WithMessage(
				fmt.Sprintf("Password must be at least %d characters", minPasswordLength)))
		}

		userID, err := h.resets.consume(ctx, req.Token)
		if err != nil {
			if errors.Is(err, ErrInvalidResetToken) {
				return response.Error(response.ErrUnprocessableEntity.WithMessage("Reset link is invalid or has expired"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		if err := h.repo.UpdatePassword(ctx, userID, hash); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return response.Error(response.ErrUnprocessableEntity.WithMessage("Reset link is invalid or has expired"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.NoContent()
	}
}

// throttle checks the limiter for the identifier. A nil limiter or empty
// identifier skips throttling; limiter failures fail open inside Allow.
func (h *Handlers[C]) throttle(ctx C, limiter ratelimiter.RateLimiter, identifier string) handler.Response {
	if limiter == nil || identifier == "" {
		return nil
	}

	result, err := limiter.Allow(ctx, identifier)
	if err != nil || result == nil {
		return nil
	}
	if result.Allowed() {
		return nil
	}

	retryAfter := int(math.Ceil(result.RetryAfter().Seconds()))
	return response.Error(response.ErrTooManyRequests.WithDetails(map[string]any{
		"retry_after": retryAfter,
	}))
}

// dummyHash is a bcrypt hash of a random string, used only for constant-time
// comparison when the email is unknown.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("inkpress-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

// resetEmailBody renders the reset email. The name is user-supplied, so it
// is escaped to keep markup out of the HTML body.
func resetEmailBody(name, link string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to choose a new one:</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		html.EscapeString(name), html.EscapeString(link))
}
