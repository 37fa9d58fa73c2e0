// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/lazparking/subscription-onboarding/app/dto"
	"github.com/lazparking/subscription-onboarding/app/handlers"
	"github.com/lazparking/subscription-onboarding/app/middleware"
	"github.com/lazparking/subscription-onboarding/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Options carries the router's deployment knobs.
type Options struct {
	CORSOrigins   []string
	EnableMetrics bool
	RateLimit     int
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	sessionHandler handlers.SessionHandlerInterface
	importExport   handlers.ImportExportHandlerInterface
	opts           Options
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(sessionHandler handlers.SessionHandlerInterface, importExport handlers.ImportExportHandlerInterface, opts Options) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Subscription Onboarding API",
		ServerHeader: "subscription-onboarding",
		ErrorHandler: errorHandler,
		BodyLimit:    8 * 1024 * 1024, // template uploads
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		sessionHandler: sessionHandler,
		importExport:   importExport,
		opts:           opts,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.opts.EnableMetrics {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	rateLimit := r.opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = 1000
	}
	api.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	session := api.Group("/session")
	session.Get("/", r.sessionHandler.GetSession)
	session.Put("/active-account", r.sessionHandler.SetActiveAccount)
	session.Post("/reset", r.sessionHandler.ResetSession)

	session.Post("/accounts", r.sessionHandler.AddAccount)
	session.Put("/accounts", r.sessionHandler.UpdateAccount)
	session.Delete("/accounts/:idx", r.sessionHandler.DeleteAccount)
	session.Post("/accounts/:idx/copy-billing", r.sessionHandler.CopyBillingFromAccount)

	session.Post("/plans", r.sessionHandler.AddPlan)
	session.Put("/plans", r.sessionHandler.UpdatePlan)
	session.Delete("/plans/:id", r.sessionHandler.RemovePlan)

	session.Post("/members", r.sessionHandler.AddMember)
	session.Put("/members", r.sessionHandler.UpdateMember)
	session.Delete("/members/:id", r.sessionHandler.RemoveMember)
	session.Post("/members/move", r.sessionHandler.MoveMember)

	session.Post("/access-codes", r.sessionHandler.AddAccessCode)
	session.Put("/access-codes", r.sessionHandler.UpdateAccessCode)
	session.Delete("/access-codes/:id", r.sessionHandler.RemoveAccessCode)

	session.Post("/assigned-units", r.sessionHandler.AddAssignedUnit)
	session.Put("/assigned-units", r.sessionHandler.UpdateAssignedUnit)
	session.Delete("/assigned-units/:id", r.sessionHandler.RemoveAssignedUnit)

	session.Post("/vehicles", r.sessionHandler.AddVehicle)
	session.Put("/vehicles", r.sessionHandler.UpdateVehicle)
	session.Delete("/vehicles/:id", r.sessionHandler.RemoveVehicle)

	export := api.Group("/export")
	export.Get("/workbook", r.importExport.ExportWorkbook)
	export.Get("/csv", r.importExport.ExportCSV)

	imports := api.Group("/import")
	imports.Post("/accounts", r.importExport.ImportAccounts)
	imports.Post("/parkers", r.importExport.ImportParkers)

	r.app.Use(r.notFoundHandler)
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.opts.CORSOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if r.opts.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNowRFC3339(),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNowUnix(),
			"service":   "subscription-onboarding-api",
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNowUnix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
