package main

import (
	"log"

	"pizzeria-backend/cmd"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/internal/wire"
	"pizzeria-backend/pkg/database"
	"pizzeria-backend/pkg/mailer"
	"pizzeria-backend/pkg/metrics"
	"pizzeria-backend/pkg/oauth"
	"pizzeria-backend/pkg/token"
	"pizzeria-backend/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	deps, err := buildDependencies(config, logger)
	if err != nil {
		logger.Fatal("Failed to build dependencies", zap.Error(err))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, deps, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func buildDependencies(config *utils.Config, logger *zap.Logger) (usecase.Dependencies, error) {
	issuer, err := token.NewIssuer(config.JWT.Secret, config.JWT.Issuer)
	if err != nil {
		return usecase.Dependencies{}, err
	}

	deps := usecase.Dependencies{
		Tokens: issuer,
		Hasher: utils.NewBcryptHasher(),
	}

	if config.Email.Enabled() {
		smtp, err := mailer.NewSMTPMailer(config.Email, config.App.BaseURL, logger)
		if err != nil {
			return usecase.Dependencies{}, err
		}
		deps.Mailer = smtp
	} else {
		logger.Warn("SMTP not configured, account emails are only logged")
		deps.Mailer = mailer.NewLogMailer(logger)
	}

	if config.OAuth.GoogleEnabled() {
		deps.OAuth = oauth.NewGoogleProvider(config.OAuth)
	} else {
		logger.Info("Google sign-in disabled")
	}

	return deps, nil
}
