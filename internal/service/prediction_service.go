package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/dto"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/repository"
)

// PredictionService is the per-user prediction history store: append-only
// writes plus list and aggregate queries.
type PredictionService struct {
	repo         *repository.PredictionRepository
	defaultLimit int
	maxLimit     int
}

func NewPredictionService(repo *repository.PredictionRepository, defaultLimit, maxLimit int) *PredictionService {
	return &PredictionService{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Save persists one scored transaction for a user, synchronously, and
// returns the stored record with its assigned ID and timestamp.
func (s *PredictionService) Save(ctx context.Context, userID int, tx *models.Transaction, result *dto.PredictionResponse) (*models.Prediction, error) {
	features := make(map[string]float64, len(tx.PCAFeatures()))
	for i, v := range tx.PCAFeatures() {
		features[fmt.Sprintf("v%d", i+1)] = v
	}
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize features: %w", err)
	}

	record := &models.Prediction{
		UserID:           userID,
		Time:             tx.Time,
		Amount:           tx.Amount,
		FeaturesJSON:     string(featuresJSON),
		IsFraud:          result.IsFraud,
		FraudProbability: result.FraudProbability,
		Confidence:       result.Confidence,
		RiskScore:        result.RiskScore,
		PredictionTimeMS: result.PredictionTimeMS,
	}

	if err := s.repo.CreatePrediction(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// History returns a user's predictions newest first. The limit is clamped
// server-side; non-positive values fall back to the default.
func (s *PredictionService) History(ctx context.Context, userID, limit, offset int) ([]models.Prediction, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetPredictionsByUserID(ctx, userID, limit, offset)
}

// Stats computes a user's aggregates from stored records at call time.
func (s *PredictionService) Stats(ctx context.Context, userID int) (*models.PredictionStats, error) {
	return s.repo.GetStatsByUserID(ctx, userID)
}
