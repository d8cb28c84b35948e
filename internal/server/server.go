// Package server assembles the Fiber application: middleware, every API
// route and the role/verification guards in front of them.
package server

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/admin"
	"github.com/aldoetobex/legal-practice-backend/internal/appointments"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/internal/cases"
	"github.com/aldoetobex/legal-practice-backend/internal/dashboard"
	"github.com/aldoetobex/legal-practice-backend/internal/evidence"
	"github.com/aldoetobex/legal-practice-backend/internal/payments"
	"github.com/aldoetobex/legal-practice-backend/internal/storage"
	"github.com/aldoetobex/legal-practice-backend/internal/tasks"
	"github.com/aldoetobex/legal-practice-backend/pkg/logger"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// BodyLimit leaves room for a 10MB evidence file plus multipart overhead.
const BodyLimit = 12 * 1024 * 1024

type Deps struct {
	DB     *gorm.DB
	Tokens *auth.Tokens
	Store  storage.Store
	// Gateway is nil when online payments are disabled.
	Gateway payments.Gateway
	Log     zerolog.Logger

	ClientOrigin string
	SecureCookie bool
	// StaticDir is served under /uploads when evidence is stored on local disk.
	StaticDir string
}

// New builds the app with all routes mounted.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler(d.Log),
		BodyLimit:    BodyLimit,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			d.Log.Error().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("panic", fmt.Sprint(e)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
		},
	}))
	app.Use(logger.Middleware(d.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.ClientOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)
	if d.StaticDir != "" {
		app.Static(storage.PublicPrefix, d.StaticDir)
	}

	Routes(app.Group("/api"), d)
	return app
}

// Routes mounts every /api endpoint on r.
func Routes(r fiber.Router, d Deps) {
	authed := auth.RequireAuth(d.DB, d.Tokens)
	role := auth.RequireRole
	verified := auth.RequireVerifiedAdvocate()

	const (
		client   = models.RoleClient
		advocate = models.RoleAdvocate
		junior   = models.RoleJuniorAdvocate
		adminR   = models.RoleAdmin
	)

	// Auth
	authH := auth.NewHandler(d.DB, d.Tokens, d.SecureCookie)
	ag := r.Group("/auth")
	ag.Post("/register", authH.Register)
	ag.Post("/login", authH.Login)
	ag.Post("/logout", authed, authH.Logout)
	ag.Get("/me", authed, authH.Me)

	// Admin
	adminH := admin.NewHandler(d.DB)
	adm := r.Group("/admin", authed, role(adminR))
	adm.Get("/pending-advocates", adminH.PendingAdvocates)
	adm.Patch("/advocates/:userId/approve", adminH.Approve)
	adm.Patch("/advocates/:userId/reject", adminH.Reject)
	adm.Patch("/users/:userId/activate", adminH.Activate)
	adm.Patch("/users/:userId/deactivate", adminH.Deactivate)

	// Dashboards
	dashH := dashboard.NewHandler(d.DB)
	r.Get("/advocate/dashboard", authed, role(advocate, junior), dashH.Advocate)
	r.Get("/client/dashboard", authed, role(client), dashH.Client)
	r.Get("/junior/dashboard", authed, role(junior), dashH.Junior)

	// Cases
	caseH := cases.NewHandler(d.DB)
	cg := r.Group("/cases", authed)
	cg.Post("/", role(advocate), verified, caseH.Create)
	cg.Get("/", caseH.List)
	cg.Patch("/:caseId/status", role(advocate), verified, caseH.UpdateStatus)
	cg.Post("/:caseId/notes", role(advocate, junior), verified, caseH.AddNote)
	cg.Get("/:caseId/history", caseH.History)

	// Tasks
	taskH := tasks.NewHandler(d.DB)
	tg := r.Group("/tasks", authed)
	tg.Post("/", role(advocate), verified, taskH.Create)
	tg.Get("/", role(advocate, junior), taskH.List)
	tg.Patch("/:taskId/status", role(junior), verified, taskH.UpdateStatus)

	// Evidence
	evH := evidence.NewHandler(d.DB, d.Store, d.Log)
	eg := r.Group("/evidence", authed)
	eg.Post("/", role(advocate, junior), verified, evH.Upload)
	eg.Get("/", role(advocate, junior, client, adminR), evH.List)
	eg.Get("/:evidenceId/url", role(advocate, junior, client, adminR), evH.DownloadURL)

	// Payments
	payH := payments.NewHandler(d.DB, d.Gateway)
	pg := r.Group("/payments", authed)
	pg.Post("/", role(advocate), verified, payH.Create)
	pg.Post("/manual", role(advocate), verified, payH.Create)
	pg.Post("/create-order", role(advocate), verified, payH.CreateOrder)
	pg.Post("/verify", role(advocate), verified, payH.Verify)
	pg.Get("/", role(advocate, client, adminR, junior), payH.List)
	pg.Patch("/:paymentId/status", role(advocate), verified, payH.UpdateStatus)

	// Appointments
	apH := appointments.NewHandler(d.DB)
	apg := r.Group("/appointments", authed)
	apg.Post("/", role(client), apH.Create)
	apg.Get("/", role(client, advocate, adminR), apH.List)
	apg.Patch("/:appointmentId/status", role(advocate), verified, apH.UpdateStatus)
}
