package router

import (
	"context"
	"time"

	dirsvc "yuime-backend/internal/application/directory"
	emailsvc "yuime-backend/internal/application/emails"
	invsvc "yuime-backend/internal/application/invitations"
	orgsvc "yuime-backend/internal/application/org"
	staffsvc "yuime-backend/internal/application/staff"
	"yuime-backend/internal/config"
	healthsvc "yuime-backend/internal/health"
	"yuime-backend/internal/infrastructure/database"
	"yuime-backend/internal/infrastructure/sessionstore"
	dirhandler "yuime-backend/internal/interfaces/handlers/directory"
	healthhandler "yuime-backend/internal/interfaces/handlers/health"
	invhandler "yuime-backend/internal/interfaces/handlers/invitations"
	"yuime-backend/internal/metrics"
	"yuime-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const inviteBackoff = 500 * time.Millisecond

// CreateApp opens the database (migrating and seeding it), connects Redis when
// REDIS_URL is set and mounts every route.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}
	if err := database.Seed(context.Background(), db); err != nil {
		return nil, nil, nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	if rdb != nil {
		app.Use(middleware.HealthMarker(rdb))
	}
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	m := metrics.New()
	app.Get("/metrics", m.Handler())

	probes := map[string]string{}
	if cfg.SendinblueAPIKey != "" {
		probes["mail"] = "https://api.brevo.com"
	}
	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Checker:        &healthsvc.Checker{Rdb: rdb, DB: database.Pinger{DB: db}, Probes: probes},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	if rdb != nil {
		app.Get("/health/errors", hh.Errors)
		app.Get("/health/reset", hh.Reset)
	}

	api := app.Group("/api/v1", middleware.ConsoleSession())

	var store dirsvc.SnapshotStore
	if rdb != nil {
		store = &sessionstore.RedisStore{Rdb: rdb, TTL: cfg.FilterSessionTTL}
	}
	for _, src := range []dirsvc.Source{&staffsvc.Service{DB: db}, &orgsvc.Service{DB: db}} {
		reg := &dirsvc.Registry{
			Scope:       src.Scope(),
			Schema:      src.Schema(),
			Store:       store,
			QuietPeriod: cfg.SearchDebounce,
			MaxSessions: cfg.FilterMaxSessions,
			OnCommit:    m.ObserveCommit,
		}
		m.TrackSessions(src.Scope(), reg.Len)
		app.Hooks().OnShutdown(func() error {
			reg.Close()
			return nil
		})
		h := &dirhandler.Handlers{Source: src, Registry: reg}
		h.Register(api.Group("/" + src.Scope()))
	}

	dispatcher := &invsvc.Dispatcher{
		Sender: inviteSender(cfg),
		Policy: invsvc.Policy{
			Retries:     cfg.InviteRetries,
			Timeout:     cfg.InviteTimeout,
			Concurrency: cfg.InviteConcurrency,
			Backoff:     inviteBackoff,
		},
		OnResult: func(r invsvc.Result) {
			m.ObserveInvitation(string(r.Status))
			if rdb != nil {
				healthsvc.RecordInvitation(context.Background(), rdb, r.Status == invsvc.StatusFailed)
			}
		},
	}
	if cfg.InviteRatePerSec > 0 {
		dispatcher.Limiter = rate.NewLimiter(rate.Limit(cfg.InviteRatePerSec), 1)
	}
	ih := &invhandler.Handlers{
		Dispatcher: dispatcher,
		OnSubmitted: func(sub *invsvc.Submission) {
			if sub.Phase() == invsvc.PhaseCompleted {
				m.ObserveDispatch(time.Since(sub.StartedAt))
			}
		},
	}
	ih.Register(api.Group("/invitations"))

	return app, db, rdb, nil
}

// inviteSender picks Brevo when an API key is configured, otherwise the
// simulated sender with the console's fixed latency.
func inviteSender(cfg *config.Config) invsvc.Sender {
	if cfg.SendinblueAPIKey == "" {
		log.Warn().Dur("delay", cfg.InviteSimulatedDelay).Msg("SENDINBLUE_API_KEY not set, invitations are simulated")
		return &invsvc.SimulatedSender{Delay: cfg.InviteSimulatedDelay}
	}
	return &emailsvc.InviteSender{
		Client:  &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom},
		BaseURL: cfg.InviteBaseURL,
	}
}
