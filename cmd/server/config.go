package main

import (
	"time"

	"github.com/dmitrymomot/inkpress/auth"
	"github.com/dmitrymomot/inkpress/billing"
	"github.com/dmitrymomot/inkpress/core/cookie"
	"github.com/dmitrymomot/inkpress/core/server"
	"github.com/dmitrymomot/inkpress/integration/database/pg"
	"github.com/dmitrymomot/inkpress/integration/database/redis"
	"github.com/dmitrymomot/inkpress/integration/email/postmark"
)

// Config aggregates all application settings, loaded once at startup.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"inkpress"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	// Locale and admission policy.
	Locales        []string `env:"APP_LOCALES" envSeparator:"," envDefault:"en,es,fr"`
	DefaultLocale  string   `env:"APP_DEFAULT_LOCALE" envDefault:"en"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ExposeStack    bool     `env:"APP_EXPOSE_STACK" envDefault:"false"`

	// Sessions.
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	SessionTouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"`
	SessionCookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"inkpress_session"`

	// DevEmailDir switches email delivery to local files when set,
	// bypassing Postmark entirely. Development only.
	DevEmailDir string `env:"DEV_EMAIL_DIR"`

	Server   server.Config
	DB       pg.Config
	Redis    redis.Config
	Cookie   cookie.Config
	Postmark postmark.Config
	Auth     auth.Config
	OAuth    auth.OAuthConfig
	Billing  billing.Config
}

func (c Config) isDevelopment() bool {
	return c.AppEnv != "production"
}
