package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"profile-manager/core/config"
	"profile-manager/core/database"
	"profile-manager/core/loader"
	"profile-manager/core/logger"
	"profile-manager/core/middleware/rayid"
	"profile-manager/core/storage"

	"profile-manager/feature/auth"
	"profile-manager/feature/catalog"
	"profile-manager/feature/profile"
	"profile-manager/feature/profile/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "profile-manager/docs/swagger"
)

// @title Profile Manager API
// @version 1.0
// @description Identity registration, login and profile reconciliation.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the profile manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if cfg.Auth.Secret == "" {
			log.Fatal("AUTH_SECRET must be set: the token signing key is required")
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}

		profiles := profile.NewGormStore(db)
		creds := auth.NewGormCredentialStore(db)
		if err := profiles.Migrate(); err != nil {
			logg.Fatal("Profile schema migration failed", zap.Error(err))
		}
		if err := creds.Migrate(); err != nil {
			logg.Fatal("Credential schema migration failed", zap.Error(err))
		}

		// 4. Initialize Storage and the Catalog Reader
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		reader := catalog.NewCachedReader(
			catalog.NewStorageReader(store, cfg.Storage.Bucket, cfg.Catalog.Prefix),
			time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second,
		)

		// 5. Reconciliation Engine
		engine := reconcile.New(profiles, reader, reconcile.Options{
			BackfillLevels: cfg.Reconcile.BackfillLevels,
		}, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
			BodyLimit:             cfg.Server.BodyLimitBytes(),
		})

		app.Use(rayid.New())

		// Logging middleware (custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 7. Load Features
		mgr := loader.NewManager(logg)
		authFeature := auth.NewFeature(cfg.Auth, profiles, profiles, creds, engine, logg)
		mgr.Register(authFeature)
		mgr.Register(profile.NewFeature(profiles, authFeature.Guard(), logg))
		mgr.Register(catalog.NewFeature(reader, logg))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
