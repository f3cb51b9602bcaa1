package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stripe/stripe-go/v82/client"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/inkpress/auth"
	"github.com/dmitrymomot/inkpress/billing"
	"github.com/dmitrymomot/inkpress/core/admission"
	"github.com/dmitrymomot/inkpress/core/cache"
	"github.com/dmitrymomot/inkpress/core/config"
	"github.com/dmitrymomot/inkpress/core/cookie"
	"github.com/dmitrymomot/inkpress/core/email"
	"github.com/dmitrymomot/inkpress/core/health"
	"github.com/dmitrymomot/inkpress/core/logger"
	"github.com/dmitrymomot/inkpress/core/response"
	"github.com/dmitrymomot/inkpress/core/router"
	"github.com/dmitrymomot/inkpress/core/server"
	"github.com/dmitrymomot/inkpress/core/session"
	"github.com/dmitrymomot/inkpress/core/sessiontransport"
	"github.com/dmitrymomot/inkpress/integration/database/pg"
	"github.com/dmitrymomot/inkpress/integration/database/redis"
	"github.com/dmitrymomot/inkpress/integration/email/postmark"
	"github.com/dmitrymomot/inkpress/middleware"
	"github.com/dmitrymomot/inkpress/pkg/ratelimiter"
	"github.com/dmitrymomot/inkpress/posts"
	"github.com/dmitrymomot/inkpress/users"
)

type appContext = *router.Context

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	logOpt := logger.WithProduction(cfg.AppName)
	if cfg.isDevelopment() {
		logOpt = logger.WithDevelopment(cfg.AppName)
	}
	log := logger.New(logOpt)

	// Postgres: connect and migrate on start.
	db, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		log.Error("Failed to connect to database", logger.Component("database"), logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	if err := pg.Migrate(ctx, db, cfg.DB, log.With("component", "migration")); err != nil {
		log.Error("Failed to migrate database", logger.Component("database.migration"), logger.Error(err))
		os.Exit(1)
	}

	// Redis backs sessions, rate limits, and short-lived tokens.
	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to redis", logger.Component("redis"), logger.Error(err))
		os.Exit(1)
	}
	defer rdb.Close()
	store := cache.NewRedisStore(rdb)

	userRepo := users.NewRepository(db)
	postRepo := posts.NewRepository(db)

	// Cookie-signed sessions persisted in redis.
	cookieMgr, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		log.Error("Failed to create cookie manager", logger.Component("cookie"), logger.Error(err))
		os.Exit(1)
	}
	sesMgr := session.NewManager(
		session.NewCacheStore[auth.SessionData](store),
		session.WithTTL(cfg.SessionTTL),
		session.WithTouchInterval(cfg.SessionTouchInterval),
	)
	sesCookie := sessiontransport.NewCookie(sesMgr, cookieMgr, cfg.SessionCookieName)

	// Every request passes the admission pipeline before routing: locale
	// redirects, CSRF, CORS, and authentication gating.
	admissionCfg := admission.DefaultConfig()
	admissionCfg.Locales = cfg.Locales
	admissionCfg.DefaultLocale = cfg.DefaultLocale
	admissionCfg.AllowedOrigins = cfg.AllowedOrigins
	admissionCfg.ExposeStack = cfg.ExposeStack
	// Machine endpoints are mounted under the API prefix so they bypass
	// locale resolution; this allowlist additionally exempts them from
	// gating if they are ever reached as page paths.
	admissionCfg.APIPublicPrefixes = []string{"/auth/", "/webhooks/", "/live", "/ready"}
	admissionCfg.PublicPaths = []string{"/", "/about", "/posts"}
	admissionCfg.AuthOnlyPaths = []string{"/login", "/register", "/reset-password"}
	pipeline := admission.NewPipeline(admissionCfg, auth.NewSessionLookup(sesCookie),
		admission.WithPipelineLogger(log.With(logger.Component("admission"))))

	mailer := newMailer(cfg, log)

	r := router.New[appContext](
		router.WithLogger[appContext](log),
		router.WithErrorHandler(response.JSONErrorHandler[appContext]),
		router.WithMiddleware(
			middleware.Admission[appContext](pipeline),
			middleware.RequestID[appContext](),
			middleware.ClientIP[appContext](),
			middleware.LoggingWithLogger[appContext](log.With(logger.Component("http.request"))),
		),
	)

	r.Get("/api/live", health.Liveness[appContext])
	r.Get("/api/ready", health.Readiness[appContext](log, pg.Healthcheck(db), redis.Healthcheck(rdb)))

	identity := auth.UserID[appContext](sesCookie)

	authHandlers := auth.NewHandlers(cfg.Auth, userRepo, sesCookie, mailer, store,
		auth.WithLogger[appContext](log.With(logger.Component("auth"))),
		auth.WithRateLimiters[appContext](
			mustLimiter(store, ratelimiter.RegistrationPreset),
			mustLimiter(store, ratelimiter.LoginPreset),
			mustLimiter(store, ratelimiter.PasswordResetPreset),
		),
	)
	oauthHandlers := auth.NewOAuth[appContext](cfg.OAuth, userRepo, sesCookie, store)
	r.Group(func(ar router.Router[appContext]) {
		ar.Post("/api/auth/register", authHandlers.Register())
		ar.Post("/api/auth/login", authHandlers.Login())
		ar.Post("/api/auth/logout", authHandlers.Logout())
		ar.Post("/api/auth/password-reset", authHandlers.RequestPasswordReset())
		ar.Post("/api/auth/password-reset/confirm", authHandlers.ConfirmPasswordReset())
		ar.Get("/api/auth/oauth", oauthHandlers.Authorize())
		ar.Get("/api/auth/oauth/callback", oauthHandlers.Callback())
	})

	userHandlers := users.NewHandlers(userRepo, users.Identity[appContext](identity))
	r.Get("/api/me", userHandlers.Profile())
	r.Put("/api/me", userHandlers.UpdateProfile())

	postHandlers := posts.NewHandlers(postRepo, posts.Identity[appContext](identity))
	apiLimit := middleware.RateLimit[appContext](middleware.RateLimitConfig{
		Limiter:    mustLimiter(store, ratelimiter.APIPreset),
		SetHeaders: true,
	})
	r.Group(func(pr router.Router[appContext]) {
		pr.Use(apiLimit)
		pr.Get("/api/posts", postHandlers.List())
		pr.Get("/api/posts/{slug}", postHandlers.Get())
		pr.Post("/api/posts", postHandlers.Create())
		pr.Put("/api/posts/{slug}", postHandlers.Update())
		pr.Delete("/api/posts/{slug}", postHandlers.Delete())
	})

	stripeClient := &client.API{}
	stripeClient.Init(cfg.Billing.SecretKey, nil)
	billingHandlers := billing.NewHandlers(cfg.Billing, stripeClient.CheckoutSessions, userRepo,
		billing.Identity[appContext](identity),
		billing.WithLogger[appContext](log.With(logger.Component("billing"))))
	r.Post("/api/billing/checkout", billingHandlers.CreateCheckoutSession())
	r.Post("/api/webhooks/stripe", billingHandlers.Webhook())

	eg, ctx := errgroup.WithContext(ctx)

	s, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		log.Error("Failed to create server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}
	eg.Go(s.Run(ctx, r))

	if err := eg.Wait(); err != nil {
		log.Error("Failed to run server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}

// newMailer picks file-based delivery in development when DEV_EMAIL_DIR is
// set, Postmark otherwise.
func newMailer(cfg Config, log *slog.Logger) email.EmailSender {
	if cfg.DevEmailDir != "" {
		log.Info("Using dev email sender", logger.Component("email"), "dir", cfg.DevEmailDir)
		return email.NewDevSender(cfg.DevEmailDir)
	}
	return postmark.MustNewClient(cfg.Postmark)
}

func mustLimiter(store cache.Store, cfg ratelimiter.Config) *ratelimiter.FixedWindow {
	limiter, err := ratelimiter.NewFixedWindow(store, cfg)
	if err != nil {
		panic(err)
	}
	return limiter
}
