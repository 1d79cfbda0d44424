package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"compaward_backend/internals/configs"
	database "compaward_backend/internals/databases"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/errreport"
	"compaward_backend/internals/helpers/storage"
	middlewares "compaward_backend/internals/middlewares"
	routes "compaward_backend/internals/route"
	"compaward_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	host, _ := os.Hostname()
	errreport.Init(configs.RollbarToken, configs.AppEnv, host)
	defer errreport.Flush()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		BodyLimit:             configs.GetEnvInt("BODY_LIMIT_MB", 50) * 1024 * 1024,
		ErrorHandler:          helper.ErrorHandler,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// Request-ID + timing; every handler gets a 5s deadline
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.TunePool()

	if configs.GetEnvBool("AUTO_MIGRATE", false) {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatalf("[ERROR] migrate failed: %v", err)
		}
		log.Println("[INFO] schema migrated")
	}
	if configs.GetEnvBool("RUN_SEEDS", false) {
		seeds.RunAllSeeds(database.DB)
	}
	database.WarmUpQueries()

	store, err := storage.NewFromConfig()
	if err != nil {
		log.Fatalf("[ERROR] storage init failed: %v", err)
	}
	if configs.StorageDriver == "" || configs.StorageDriver == "local" {
		app.Static("/media", configs.UploadDir)
	}

	notifier := notifService.NewFanOutNotifier(database.DB, nil, nil)
	if pub := notifService.NewRedisPublisherFromEnv(); pub != nil {
		notifier.Publisher = pub
		defer pub.Close()
	}
	if mailer := notifService.NewSendgridMailerFromEnv("CompAward"); mailer != nil {
		notifier.Mailer = mailer
	}

	reaper, err := storage.StartOrphanReaper(database.DB, store, storage.ReaperConfigFromEnv())
	if err != nil {
		log.Printf("[WARN] blob reaper not started: %v", err)
	}

	routes.SetupRoutes(app, database.DB, routes.Deps{Store: store, Notifier: notifier})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		log.Printf("[INFO] listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if reaper != nil {
		<-reaper.Stop().Done()
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
