package api

import (
	"net/http"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/middleware"
)

// SetupRoutes wires all endpoints onto a ServeMux. Prediction, history
// and profile endpoints sit behind the auth gate; samples, analytics and
// health are open.
func SetupRoutes(
	authHandler *AuthHandler,
	predictionHandler *PredictionHandler,
	analyticsHandler *AnalyticsHandler,
	authMW *middleware.AuthMiddleware,
) *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(h)
	}

	// Authentication
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /api/v1/auth/me", protected(authHandler.Me))
	mux.Handle("POST /api/v1/auth/refresh", protected(authHandler.Refresh))

	// Predictions
	mux.Handle("POST /api/v1/predict", protected(predictionHandler.Predict))
	mux.Handle("POST /api/v1/predict/batch", protected(predictionHandler.PredictBatch))
	mux.Handle("GET /api/v1/predict/history", protected(predictionHandler.History))
	mux.Handle("GET /api/v1/predict/stats", protected(predictionHandler.UserStats))
	mux.Handle("GET /api/v1/predict/sample/legitimate", authMW.OptionalAuth(http.HandlerFunc(predictionHandler.SampleLegitimate)))
	mux.Handle("GET /api/v1/predict/sample/fraud", authMW.OptionalAuth(http.HandlerFunc(predictionHandler.SampleFraud)))

	// Analytics
	mux.HandleFunc("GET /api/v1/analytics/stats", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/model", analyticsHandler.ModelInfo)
	mux.HandleFunc("GET /api/v1/analytics/features", analyticsHandler.FeatureImportance)

	// Health
	mux.HandleFunc("GET /api/v1/health", analyticsHandler.Health)

	return mux
}
