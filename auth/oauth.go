package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/inkpress/core/cache"
	"github.com/dmitrymomot/inkpress/core/email"
	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/response"
	"github.com/dmitrymomot/inkpress/core/sessiontransport"
	"github.com/dmitrymomot/inkpress/users"
)

const (
	oauthStateKeyPrefix = "auth:oauth-state:"
	oauthStateTTL       = 10 * time.Minute
)

// OAuthConfig holds provider settings loaded from the environment.
// The defaults target Google; any OAuth2 provider exposing an OIDC-style
// userinfo endpoint works.
type OAuthConfig struct {
	ClientID     string   `env:"OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"OAUTH_REDIRECT_URL,required"`
	AuthURL      string   `env:"OAUTH_AUTH_URL" envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL     string   `env:"OAUTH_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string   `env:"OAUTH_USERINFO_URL" envDefault:"https://openidconnect.googleapis.com/v1/userinfo"`
	Scopes       []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
	// SuccessPath is where the browser lands after a completed sign-in.
	SuccessPath string `env:"OAUTH_SUCCESS_PATH" envDefault:"/"`
}

// OAuth implements the authorization-code sign-in flow. Accounts are
// provisioned on first sign-in; the state parameter lives in the shared
// cache so the flow survives multi-instance deployments.
type OAuth[C handler.Context] struct {
	oauth    *oauth2.Config
	cfg      OAuthConfig
	repo     users.Repository
	sessions *sessiontransport.Cookie[SessionData]
	states   cache.Store
}

// NewOAuth creates the OAuth handlers. Panics on nil dependencies.
func NewOAuth[C handler.Context](
	cfg OAuthConfig,
	repo users.Repository,
	sessions *sessiontransport.Cookie[SessionData],
	states cache.Store,
) *OAuth[C] {
	if repo == nil {
		panic("auth: user repository is required")
	}
	if sessions == nil {
		panic("auth: session transport is required")
	}
	if states == nil {
		panic("auth: state store is required")
	}

	return &OAuth[C]{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		cfg:      cfg,
		repo:     repo,
		sessions: sessions,
		states:   states,
	}
}

// Authorize redirects the browser to the provider's consent screen with a
// fresh single-use state parameter.
func (o *OAuth[C]) Authorize() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		state, err := randomState()
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		if err := o.states.Set(ctx, oauthStateKeyPrefix+state, []byte{1}, oauthStateTTL); err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.Redirect(o.oauth.AuthCodeURL(state))
	}
}

// Callback completes the flow: it validates state, exchanges the code,
// resolves the provider profile, and signs the user in, creating the
// account on first sign-in.
func (o *OAuth[C]) Callback() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		r := ctx.Request()

		if errParam := r.FormValue("error"); errParam != "" {
			return response.Error(response.ErrBadRequest.WithMessage(
				fmt.Sprintf("Authorization failed: %s", errParam)))
		}

		state := r.FormValue("state")
		code := r.FormValue("code")
		if state == "" || code == "" {
			return response.Error(response.ErrBadRequest.WithMessage("Missing code or state parameter"))
		}

		if _, err := o.states.Get(ctx, oauthStateKeyPrefix+state); err != nil {
			if errors.Is(err, cache.ErrCacheMiss) {
				return response.Error(response.ErrBadRequest.WithMessage(ErrStateMismatch.Error()))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		if err := o.states.Delete(ctx, oauthStateKeyPrefix+state); err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		token, err := o.oauth.Exchange(ctx, code)
		if err != nil {
			return response.Error(response.ErrBadGateway.WithMessage("Token exchange failed").WithError(err))
		}

		profile, err := o.fetchProfile(ctx, token)
		if err != nil {
			return response.Error(response.ErrBadGateway.WithMessage("Failed to fetch user profile").WithError(err))
		}
		if !email.IsValidEmail(profile.Email) {
			return response.Error(response.ErrBadGateway.WithMessage("Provider returned no usable email address"))
		}

		user, err := o.findOrCreate(ctx, profile)
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		if _, err := o.sessions.Authenticate(ctx, user.ID, SessionData{Name: user.Name, Email: user.Email}); err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.Redirect(o.cfg.SuccessPath)
	}
}

type oauthProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (o *OAuth[C]) fetchProfile(ctx C, token *oauth2.Token) (oauthProfile, error) {
	resp, err := o.oauth.Client(ctx, token).Get(o.cfg.UserInfoURL)
	if err != nil {
		return oauthProfile{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthProfile{}, fmt.Errorf("userinfo request: unexpected status %d", resp.StatusCode)
	}

	var profile oauthProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return oauthProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return profile, nil
}

func (o *OAuth[C]) findOrCreate(ctx C, profile oauthProfile) (users.User, error) {
	user, err := o.repo.GetByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return users.User{}, err
	}

	name := profile.Name
	if name == "" {
		name = profile.Email
	}

	// Password login stays impossible for provisioned accounts until the
	// user runs the password reset flow.
	hash, err := randomPasswordHash()
	if err != nil {
		return users.User{}, err
	}

	user, err = o.repo.Create(ctx, users.CreateUserParams{
		Email:        profile.Email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost a race with a concurrent first sign-in.
		if errors.Is(err, users.ErrEmailTaken) {
			return o.repo.GetByEmail(ctx, profile.Email)
		}
		return users.User{}, err
	}
	return user, nil
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func randomPasswordHash() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate placeholder password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(buf, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	return hash, nil
}
