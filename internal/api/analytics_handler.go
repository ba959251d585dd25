package api

import (
	"net/http"
	"time"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/dto"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/middleware"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/ml"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/service"
)

type AnalyticsHandler struct {
	fraudService *service.FraudService
	model        *ml.Model
	version      string
}

func NewAnalyticsHandler(fraudService *service.FraudService, model *ml.Model, version string) *AnalyticsHandler {
	return &AnalyticsHandler{
		fraudService: fraudService,
		model:        model,
		version:      version,
	}
}

// Stats reports service-wide usage statistics.
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.fraudService.Stats())
}

// ModelInfo reports the loaded classifier's training metadata and offline
// evaluation metrics.
func (h *AnalyticsHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	if !h.model.Loaded() {
		writeServiceError(w, service.ErrModelNotLoaded)
		return
	}

	info := h.model.Info()
	middleware.WriteJSON(w, http.StatusOK, &dto.ModelInfoResponse{
		ModelName:       info.ModelName,
		ModelVersion:    info.ModelVersion,
		FeaturesCount:   info.FeaturesCount,
		TrainingSamples: info.TrainingSamples,
		FraudSamples:    info.FraudSamples,
		Accuracy:        info.Metrics.Accuracy,
		Precision:       info.Metrics.Precision,
		Recall:          info.Metrics.Recall,
		F1Score:         info.Metrics.F1Score,
		ROCAUC:          info.Metrics.ROCAUC,
		LastTrained:     info.TrainedAt,
	})
}

// FeatureImportance reports per-feature importance scores.
func (h *AnalyticsHandler) FeatureImportance(w http.ResponseWriter, r *http.Request) {
	if !h.model.Loaded() {
		writeServiceError(w, service.ErrModelNotLoaded)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.model.FeatureImportance())
}

// Health always answers 200 and reports whether the model is loaded.
func (h *AnalyticsHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, &dto.HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.model.Loaded(),
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
	})
}
