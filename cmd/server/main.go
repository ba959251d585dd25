package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/alert"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/api"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/config"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/db"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/middleware"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/ml"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/repository"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/service"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	cfg := config.New()

	// Database
	conn, err := connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	// ML model: loaded once at startup, read-only afterwards. A missing
	// artifact keeps the service up with prediction endpoints answering 503.
	model, err := ml.Load(cfg.ModelPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.ModelPath).Msg("model not loaded, predictions unavailable")
		model = ml.NewUnloaded()
	} else {
		info := model.Info()
		log.Info().Str("model", info.ModelName).Str("version", info.ModelVersion).Msg("model loaded")
	}

	// Fraud alert publishing degrades to a no-op when the broker is
	// disabled or unreachable.
	var alerts alert.Publisher = alert.NoopPublisher{}
	if cfg.RabbitMQEnabled {
		publisher, err := alert.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to RabbitMQ, continuing without alerts")
		} else {
			alerts = publisher
			defer publisher.Close()
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(conn)
	predictionRepo := repository.NewPredictionRepository(conn)

	// Services
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	authService := service.NewAuthService(userRepo, tokenService, log)
	fraudService := service.NewFraudService(model, log)
	predictionService := service.NewPredictionService(predictionRepo, cfg.HistoryDefaultLimit, cfg.HistoryMaxLimit)

	// Handlers + routes
	authMW := middleware.NewAuthMiddleware(tokenService, userRepo)
	authHandler := api.NewAuthHandler(authService)
	predictionHandler := api.NewPredictionHandler(fraudService, predictionService, alerts, log)
	analyticsHandler := api.NewAnalyticsHandler(fraudService, model, cfg.AppVersion)

	mux := api.SetupRoutes(authHandler, predictionHandler, analyticsHandler, authMW)

	var handler http.Handler = mux
	handler = middleware.Recovery(log)(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	handler = middleware.Logger(log)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Info().Str("address", cfg.ServerAddress).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func connect(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return db.ConnectSQLite(cfg.SQLitePath)
	}

	conn, err := db.ConnectPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
