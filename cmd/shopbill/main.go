package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/cache"
	"github.com/shopbill-app/shopbill/internal/pkg/database"
	"github.com/shopbill-app/shopbill/internal/pkg/env"
	"github.com/shopbill-app/shopbill/internal/pkg/router"
	"github.com/shopbill-app/shopbill/internal/pkg/sweeper"
)

func main() {
	app, sweep := NewApplication()
	sweep.Start()

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		sweep.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *sweeper.Sweeper) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Find the correct base path depending on where the binary runs from.
	basePaths := []string{
		"./",
		"../../",
		"../../../",
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1048576, // 1 MiB, JSON payloads only
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	sweepInterval := sweeper.DefaultInterval
	if raw := env.GetEnv("SWEEP_INTERVAL_MINUTES", ""); raw != "" {
		if minutes, err := time.ParseDuration(raw + "m"); err == nil && minutes > 0 {
			sweepInterval = minutes
		}
	}
	sweep := sweeper.New(repository.GetGlobalFactory().GetSubscriptionRepository(), sweepInterval)

	return app, sweep
}
