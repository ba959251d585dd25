package models

import "time"

// Confidence bands for a prediction, derived from the distance between
// the fraud probability and the 0.5 decision boundary.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Prediction is one persisted scoring result, owned by exactly one user.
// Records are append-only: written once when an authenticated single
// prediction is served, never mutated or deleted.
type Prediction struct {
	ID     int `json:"id"`
	UserID int `json:"user_id"`

	// Original transaction data
	Time         float64 `json:"time"`
	Amount       float64 `json:"amount"`
	FeaturesJSON string  `json:"-"` // serialized v1..v28 blob

	// Scoring results
	IsFraud          bool    `json:"is_fraud"`
	FraudProbability float64 `json:"fraud_probability"`
	Confidence       string  `json:"confidence"`
	RiskScore        int     `json:"risk_score"`
	PredictionTimeMS float64 `json:"prediction_time_ms"`

	CreatedAt time.Time `json:"created_at"`
}

// PredictionStats are per-user aggregates recomputed from stored records
// at query time.
type PredictionStats struct {
	TotalPredictions      int     `json:"total_predictions"`
	FraudDetected         int     `json:"fraud_detected"`
	LegitimateDetected    int     `json:"legitimate_detected"`
	FraudRate             float64 `json:"fraud_rate"`
	AverageResponseTimeMS float64 `json:"average_response_time_ms"`
}
