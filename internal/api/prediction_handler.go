package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/alert"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/dto"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/middleware"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/service"
)

type PredictionHandler struct {
	fraudService      *service.FraudService
	predictionService *service.PredictionService
	alerts            alert.Publisher
	log               zerolog.Logger
}

func NewPredictionHandler(
	fraudService *service.FraudService,
	predictionService *service.PredictionService,
	alerts alert.Publisher,
	log zerolog.Logger,
) *PredictionHandler {
	return &PredictionHandler{
		fraudService:      fraudService,
		predictionService: predictionService,
		alerts:            alerts,
		log:               log,
	}
}

// Predict scores one transaction and records it in the caller's history.
// The prediction itself and the history write fail distinctly: a store
// failure after a successful score reports that the score was computed.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.fraudService.Predict(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user := middleware.UserFromContext(r.Context())
	record, err := h.predictionService.Save(r.Context(), user.ID, req.ToTransaction(), result)
	if err != nil {
		h.log.Error().Err(err).Int("user_id", user.ID).Msg("history write failed after successful prediction")
		middleware.WriteError(w, http.StatusInternalServerError,
			"prediction succeeded but saving it to history failed")
		return
	}

	if result.IsFraud {
		h.publishAlert(r, record.ID, user.ID, result)
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// PredictBatch scores up to 1000 transactions in one call. Batch results
// are never persisted.
func (h *PredictionHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.fraudService.PredictBatch(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// History lists the caller's stored predictions, newest first.
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	predictions, err := h.predictionService.History(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, predictions)
}

// UserStats returns the caller's aggregate prediction statistics.
func (h *PredictionHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	stats, err := h.predictionService.Stats(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, stats)
}

// SampleLegitimate returns a fixture transaction with typical legitimate
// patterns.
func (h *PredictionHandler) SampleLegitimate(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.fraudService.GenerateSampleTransaction(false))
}

// SampleFraud returns a fixture transaction with typical fraud patterns.
func (h *PredictionHandler) SampleFraud(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.fraudService.GenerateSampleTransaction(true))
}

func (h *PredictionHandler) publishAlert(r *http.Request, predictionID, userID int, result *dto.PredictionResponse) {
	fraudAlert := &alert.FraudAlert{
		AlertID:          uuid.New().String(),
		UserID:           userID,
		PredictionID:     predictionID,
		FraudProbability: result.FraudProbability,
		RiskScore:        result.RiskScore,
		CreatedAt:        time.Now().UTC(),
	}

	// Alert delivery never fails the request.
	if err := h.alerts.PublishFraudAlert(r.Context(), fraudAlert); err != nil {
		h.log.Warn().Err(err).Str("alert_id", fraudAlert.AlertID).Msg("failed to publish fraud alert")
	}
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
