package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/access"
	"github.com/Abraxas-365/fateweaver/pkg/config"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}

	if len(os.Args) > 1 && os.Args[1] == "hash-key" {
		runHashKey(os.Args[2:])
		return
	}

	logx.Info("🚀 Starting Fateweaver API Server...")

	cfg := config.Load()
	container := NewContainer(cfg)
	defer container.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed the campaign document on first boot.
	container.Bootstrap(ctx)

	app := fiber.New(fiber.Config{
		AppName:               cfg.Server.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             1 * 1024 * 1024, // 1MB, plenty for player input
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-GM-Key, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler)
	app.Get("/api/v1/docs", apiDocsHandler)

	container.SessionHandlers.RegisterRoutes(app, container.TableAuth, container.GMAuth)
	logx.Info("✓ Session routes registered")

	if container.AccessHandlers != nil {
		container.AccessHandlers.RegisterRoutes(app)
		logx.Info("✓ Access routes registered")
	}

	container.StartBackgroundServices(ctx)

	app.Use(notFoundHandler)

	printRouteSummary()
	startServer(app, cfg.Server.Port, cancel)
}

// runHashKey prints the bcrypt hash of a game master key, ready to be put
// in GM_KEY_HASH.
func runHashKey(args []string) {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "usage: fateweaver hash-key <game-master-key>")
		os.Exit(2)
	}

	hash, err := access.HashGameMasterKey(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash-key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

// healthCheckHandler reports the state of every backing service the
// container wired up. Storage is only probed on request because S3 round
// trips are slow.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "fateweaver-api",
			"version": container.Config.Server.Version,
		}

		if container.DB != nil {
			if err := container.DB.Ping(); err != nil {
				health["db"] = "unhealthy"
				health["db_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["db"] = "healthy"
			}
		}

		if container.Redis != nil {
			if err := container.Redis.Ping(c.Context()).Err(); err != nil {
				health["redis"] = "unhealthy"
				health["redis_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["redis"] = "healthy"
			}
		}

		if c.QueryBool("check_storage", false) && container.FileSystem != nil {
			if _, err := container.FileSystem.Exists(c.Context(), "state.json"); err != nil {
				health["storage"] = "unhealthy"
				health["storage_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["storage"] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(health)
	}
}

func infoHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     "Fateweaver API",
		"version":     getEnv("APP_VERSION", "1.0.0"),
		"description": "LLM game master for persistent tabletop campaigns",
		"features": []string{
			"Turn-based narration with structured state deltas",
			"Monthly token budget enforcement",
			"Campaign snapshots and restore",
		},
		"endpoints": fiber.Map{
			"docs":   "/api/v1/docs",
			"health": "/health",
		},
	})
}

func apiDocsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"api_version": "v1",
		"base_url":    getEnv("API_BASE_URL", "http://localhost:8080"),
		"endpoints": fiber.Map{
			"session": fiber.Map{
				"turn":          "POST /api/v1/turn",
				"state":         "GET /api/v1/state",
				"state_summary": "GET /api/v1/state/summary",
				"usage":         "GET /api/v1/usage",
				"turns":         "GET /api/v1/turns",
			},
			"snapshots": fiber.Map{
				"list":    "GET /api/v1/snapshots",
				"create":  "POST /api/v1/snapshots",
				"restore": "POST /api/v1/snapshots/:id/restore",
			},
			"access": fiber.Map{
				"mint_table_token": "POST /api/v1/table/token",
			},
		},
		"authentication": fiber.Map{
			"types": []string{"Table token", "Game master key"},
			"headers": fiber.Map{
				"table_token": "Authorization: Bearer <token>",
				"gm_key":      "X-GM-Key: <key>",
			},
		},
	})
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errx.HTTPErrorResponse{
		Code:       "ROUTE_NOT_FOUND",
		Message:    fmt.Sprintf("no route for %s %s", c.Method(), c.Path()),
		Type:       string(errx.TypeNotFound),
		StatusCode: fiber.StatusNotFound,
		RequestID:  c.Get("X-Request-ID"),
	})
}

// globalErrorHandler turns any error that escapes a handler into the
// standard errx wire shape. Client errors log at warn, server errors at
// error, and the underlying cause is only exposed when DEBUG is set.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	var resp errx.HTTPErrorResponse

	var appErr *errx.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		resp = appErr.ToHTTPResponse()
		if getEnv("DEBUG", "false") == "true" && appErr.Err != nil {
			resp.Cause = appErr.Err.Error()
		}
	case errors.As(err, &fiberErr):
		errType := errx.TypeValidation
		if fiberErr.Code >= 500 {
			errType = errx.TypeInternal
		}
		resp = errx.HTTPErrorResponse{
			Code:       "HTTP_ERROR",
			Message:    fiberErr.Message,
			Type:       string(errType),
			StatusCode: fiberErr.Code,
		}
	default:
		resp = errx.HTTPErrorResponse{
			Code:       "INTERNAL_ERROR",
			Message:    "An unexpected error occurred",
			Type:       string(errx.TypeInternal),
			StatusCode: fiber.StatusInternalServerError,
		}
	}
	resp.RequestID = c.Get("X-Request-ID")

	log := logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"status":     resp.StatusCode,
		"request_id": resp.RequestID,
	})
	if resp.StatusCode >= 500 {
		log.WithError(err).Error("request failed")
	} else {
		log.Warnf("request rejected: %v", err)
	}

	return c.Status(resp.StatusCode).JSON(resp)
}

func printRouteSummary() {
	logx.Info("📋 Route Summary:")
	logx.Info("   ├─ Session: /api/v1/turn, /api/v1/state, /api/v1/usage, /api/v1/turns")
	logx.Info("   ├─ Snapshots: /api/v1/snapshots/*")
	logx.Info("   ├─ Access: /api/v1/table/token")
	logx.Info("   ├─ Health: /health")
	logx.Info("   └─ Docs: /api/v1/docs")
}

func startServer(app *fiber.App, port string, cancel context.CancelFunc) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health check: http://localhost:%s/health", port)

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, cancel)
}

// gracefulShutdown blocks until SIGTERM or SIGINT, then stops background
// services before draining the listener.
func gracefulShutdown(app *fiber.App, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	cancel()

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
