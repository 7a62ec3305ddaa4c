package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/app/repository"
	"github.com/dokseo/dokseo/internal/pkg/cache"
	"github.com/dokseo/dokseo/internal/pkg/clock"
	"github.com/dokseo/dokseo/internal/pkg/database"
	"github.com/dokseo/dokseo/internal/pkg/env"
	"github.com/dokseo/dokseo/internal/pkg/metrics/counter"
	"github.com/dokseo/dokseo/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		AppName: "dokseo",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	go flushChallengeScores()

	return app
}

// flushChallengeScores drains buffered quiz points into the database once a
// minute for the current challenge period.
func flushChallengeScores() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		period := clock.CurrentPeriod(clock.System())
		for _, levelType := range []string{models.LevelTypeAR, models.LevelTypeRC} {
			if err := counter.FlushPeriod(levelType, period); err != nil {
				log.Printf("challenge score flush (%s): %v", levelType, err)
			}
		}
	}
}
