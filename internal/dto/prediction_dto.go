package dto

import (
	"time"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
)

// TransactionRequest is the scoring input. All thirty fields are required:
// pointers distinguish an omitted field from a legitimate zero value, so a
// partial payload is rejected instead of silently default-filled.
type TransactionRequest struct {
	Time   *float64 `json:"time"`
	V1     *float64 `json:"v1"`
	V2     *float64 `json:"v2"`
	V3     *float64 `json:"v3"`
	V4     *float64 `json:"v4"`
	V5     *float64 `json:"v5"`
	V6     *float64 `json:"v6"`
	V7     *float64 `json:"v7"`
	V8     *float64 `json:"v8"`
	V9     *float64 `json:"v9"`
	V10    *float64 `json:"v10"`
	V11    *float64 `json:"v11"`
	V12    *float64 `json:"v12"`
	V13    *float64 `json:"v13"`
	V14    *float64 `json:"v14"`
	V15    *float64 `json:"v15"`
	V16    *float64 `json:"v16"`
	V17    *float64 `json:"v17"`
	V18    *float64 `json:"v18"`
	V19    *float64 `json:"v19"`
	V20    *float64 `json:"v20"`
	V21    *float64 `json:"v21"`
	V22    *float64 `json:"v22"`
	V23    *float64 `json:"v23"`
	V24    *float64 `json:"v24"`
	V25    *float64 `json:"v25"`
	V26    *float64 `json:"v26"`
	V27    *float64 `json:"v27"`
	V28    *float64 `json:"v28"`
	Amount *float64 `json:"amount"`
}

// Fields returns the request fields paired with their JSON names, in the
// classifier's feature order.
func (r *TransactionRequest) Fields() []struct {
	Name  string
	Value *float64
} {
	return []struct {
		Name  string
		Value *float64
	}{
		{"time", r.Time},
		{"v1", r.V1}, {"v2", r.V2}, {"v3", r.V3}, {"v4", r.V4},
		{"v5", r.V5}, {"v6", r.V6}, {"v7", r.V7}, {"v8", r.V8},
		{"v9", r.V9}, {"v10", r.V10}, {"v11", r.V11}, {"v12", r.V12},
		{"v13", r.V13}, {"v14", r.V14}, {"v15", r.V15}, {"v16", r.V16},
		{"v17", r.V17}, {"v18", r.V18}, {"v19", r.V19}, {"v20", r.V20},
		{"v21", r.V21}, {"v22", r.V22}, {"v23", r.V23}, {"v24", r.V24},
		{"v25", r.V25}, {"v26", r.V26}, {"v27", r.V27}, {"v28", r.V28},
		{"amount", r.Amount},
	}
}

// ToTransaction converts a fully populated request into the transaction
// entity. Callers must validate first; nil fields convert to zero.
func (r *TransactionRequest) ToTransaction() *models.Transaction {
	deref := func(f *float64) float64 {
		if f == nil {
			return 0
		}
		return *f
	}

	fields := r.Fields()
	vec := make([]float64, len(fields))
	for i, f := range fields {
		vec[i] = deref(f.Value)
	}

	tx := &models.Transaction{Time: vec[0], Amount: vec[len(vec)-1]}
	pca := []*float64{
		&tx.V1, &tx.V2, &tx.V3, &tx.V4, &tx.V5, &tx.V6, &tx.V7,
		&tx.V8, &tx.V9, &tx.V10, &tx.V11, &tx.V12, &tx.V13, &tx.V14,
		&tx.V15, &tx.V16, &tx.V17, &tx.V18, &tx.V19, &tx.V20, &tx.V21,
		&tx.V22, &tx.V23, &tx.V24, &tx.V25, &tx.V26, &tx.V27, &tx.V28,
	}
	for i, p := range pca {
		*p = vec[i+1]
	}
	return tx
}

// PredictionResponse is the scoring result for one transaction.
type PredictionResponse struct {
	IsFraud          bool    `json:"is_fraud"`
	FraudProbability float64 `json:"fraud_probability"`
	Confidence       string  `json:"confidence"`
	RiskScore        int     `json:"risk_score"`
	PredictionTimeMS float64 `json:"prediction_time_ms"`
}

// BatchPredictionRequest carries 1..1000 transactions.
type BatchPredictionRequest struct {
	Transactions []TransactionRequest `json:"transactions"`
}

// BatchItemResult is one per-transaction result inside a batch response.
// Index refers to the position in the submitted list.
type BatchItemResult struct {
	Index            int     `json:"index"`
	IsFraud          bool    `json:"is_fraud"`
	FraudProbability float64 `json:"fraud_probability"`
	RiskScore        int     `json:"risk_score"`
}

// BatchPredictionResponse aggregates a whole batch.
type BatchPredictionResponse struct {
	TotalTransactions int               `json:"total_transactions"`
	FraudCount        int               `json:"fraud_count"`
	LegitimateCount   int               `json:"legitimate_count"`
	FraudRate         float64           `json:"fraud_rate"`
	Results           []BatchItemResult `json:"results"`
	ProcessingTimeMS  float64           `json:"processing_time_ms"`
}

// ModelInfoResponse describes the loaded classifier.
type ModelInfoResponse struct {
	ModelName       string     `json:"model_name"`
	ModelVersion    string     `json:"model_version"`
	FeaturesCount   int        `json:"features_count"`
	TrainingSamples int        `json:"training_samples"`
	FraudSamples    int        `json:"fraud_samples"`
	Accuracy        float64    `json:"accuracy"`
	Precision       float64    `json:"precision"`
	Recall          float64    `json:"recall"`
	F1Score         float64    `json:"f1_score"`
	ROCAUC          float64    `json:"roc_auc"`
	LastTrained     *time.Time `json:"last_trained,omitempty"`
}

// StatsResponse reports service-wide usage statistics.
type StatsResponse struct {
	TotalPredictions      int     `json:"total_predictions"`
	FraudDetected         int     `json:"fraud_detected"`
	LegitimateDetected    int     `json:"legitimate_detected"`
	FraudRate             float64 `json:"fraud_rate"`
	AverageResponseTimeMS float64 `json:"average_response_time_ms"`
	UptimeSeconds         float64 `json:"uptime_seconds"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status      string    `json:"status"`
	ModelLoaded bool      `json:"model_loaded"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}
