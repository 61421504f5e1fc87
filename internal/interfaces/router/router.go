package router

import (
	authsvc "propshare-backend/internal/application/auth"
	contactsvc "propshare-backend/internal/application/contact"
	emailsvc "propshare-backend/internal/application/emails"
	holdsvc "propshare-backend/internal/application/holdings"
	propsvc "propshare-backend/internal/application/properties"
	transfersvc "propshare-backend/internal/application/transfers"
	"propshare-backend/internal/config"
	"propshare-backend/internal/infrastructure/database"
	"propshare-backend/internal/infrastructure/otpstore"
	authhandler "propshare-backend/internal/interfaces/handlers/auth"
	contacthandler "propshare-backend/internal/interfaces/handlers/contact"
	healthhandler "propshare-backend/internal/interfaces/handlers/health"
	holdhandler "propshare-backend/internal/interfaces/handlers/holdings"
	prophandler "propshare-backend/internal/interfaces/handlers/properties"
	transferhandler "propshare-backend/internal/interfaces/handlers/transfers"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and routes.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
		app.Use(middleware.HealthMarker(rdb))
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	// db may be nil when DATABASE_URL is unset (e.g. tests on the bare app)
	if db != nil && rdb != nil {
		requireAuth := middleware.RequireAuth(cfg.JWTSecret)

		// Transactional email is optional; unset key means no-op sender.
		var mail emailsvc.Sender
		if cfg.SendinblueAPIKey != "" {
			mail = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
		}

		// Auth
		as := &authsvc.Service{
			DB:        db,
			OTP:       &otpstore.Store{Rdb: rdb, TTL: cfg.OTPTTL},
			Mail:      mail,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		}
		ah := &authhandler.Handlers{Service: as}
		ag := app.Group("/api/v1/auth")
		ag.Post("/register", ah.Register)
		ag.Post("/login", ah.Login)
		ag.Post("/request-reset", ah.RequestReset)
		ag.Post("/reset-password", ah.ResetPassword)
		ag.Get("/me", requireAuth, ah.Me)

		// Properties
		ps := &propsvc.Service{DB: db}
		ph := &prophandler.Handlers{Service: ps}
		pg := app.Group("/api/v1/properties", requireAuth)
		pg.Get("/", ph.List)
		pg.Get("/:id", ph.Get)
		apg := app.Group("/api/v1/admin/properties", requireAuth, middleware.AuthorizePermission(constants.ManageProperties))
		apg.Post("/", ph.AdminCreate)
		apg.Patch("/:id", ph.AdminUpdate)

		// Holdings
		hs := &holdsvc.Service{DB: db}
		holdh := &holdhandler.Handlers{Service: hs}
		hg := app.Group("/api/v1/holdings", requireAuth)
		hg.Get("/", holdh.List)
		hg.Get("/:id", holdh.Get)

		// Transfer requests
		ts := &transfersvc.Service{DB: db, Mail: mail}
		th := &transferhandler.Handlers{Service: ts}
		tg := app.Group("/api/v1/transfer-requests", requireAuth)
		tg.Post("/", th.Create)
		tg.Get("/", th.ListSent)
		tg.Get("/received", th.ListReceived)
		tg.Post("/:id/respond", th.Respond)
		tg.Post("/:id/cancel", th.Cancel)
		atg := app.Group("/api/v1/admin/transfer-requests", requireAuth, middleware.AuthorizePermission(constants.ReviewTransfers))
		atg.Get("/", th.AdminList)
		atg.Post("/:id/approve", th.AdminApprove)
		atg.Post("/:id/reject", th.AdminReject)
		atg.Get("/:id/events", th.AdminListEvents)

		// Contact-owner messaging
		cs := &contactsvc.Service{DB: db, Mail: mail}
		ch := &contacthandler.Handlers{Service: cs}
		cg := app.Group("/api/v1/contact-owner", requireAuth)
		cg.Post("/", ch.Create)
		cg.Get("/", ch.ListOwn)
		acg := app.Group("/api/v1/admin/contact-owner", requireAuth, middleware.AuthorizePermission(constants.RespondContact))
		acg.Get("/", ch.AdminList)
		acg.Post("/:id/read", ch.AdminRead)
		acg.Post("/:id/respond", ch.AdminRespond)
		acg.Post("/:id/status", ch.AdminUpdateStatus)
	}

	return app, db, rdb, nil
}
