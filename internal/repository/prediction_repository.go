package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// CreatePrediction appends a prediction record and fills in its assigned
// ID and timestamp. Records are immutable once written.
func (r *PredictionRepository) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (user_id, time, amount, features_json, is_fraud,
			fraud_probability, confidence, risk_score, prediction_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	p.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(
		ctx,
		query,
		p.UserID,
		p.Time,
		p.Amount,
		p.FeaturesJSON,
		p.IsFraud,
		p.FraudProbability,
		p.Confidence,
		p.RiskScore,
		p.PredictionTimeMS,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

// GetPredictionsByUserID returns a user's predictions newest first.
// Ties on created_at are broken by id descending (insertion order).
func (r *PredictionRepository) GetPredictionsByUserID(ctx context.Context, userID, limit, offset int) ([]models.Prediction, error) {
	query := `
		SELECT id, user_id, time, amount, features_json, is_fraud,
			fraud_probability, confidence, risk_score, prediction_time_ms, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Time,
			&p.Amount,
			&p.FeaturesJSON,
			&p.IsFraud,
			&p.FraudProbability,
			&p.Confidence,
			&p.RiskScore,
			&p.PredictionTimeMS,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// GetStatsByUserID computes per-user aggregates over all stored records at
// call time. A user with no history gets all-zero stats, not an error.
func (r *PredictionRepository) GetStatsByUserID(ctx context.Context, userID int) (*models.PredictionStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_fraud THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(prediction_time_ms), 0)
		FROM predictions
		WHERE user_id = $1
	`

	stats := &models.PredictionStats{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalPredictions,
		&stats.FraudDetected,
		&stats.AverageResponseTimeMS,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction stats: %w", err)
	}

	stats.LegitimateDetected = stats.TotalPredictions - stats.FraudDetected
	if stats.TotalPredictions > 0 {
		stats.FraudRate = float64(stats.FraudDetected) / float64(stats.TotalPredictions)
	}
	return stats, nil
}
