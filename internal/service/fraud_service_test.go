package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/dto"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
)

// stubClassifier scores with a fixed function and counts invocations.
type stubClassifier struct {
	loaded bool
	score  func(features []float64) (float64, error)
	calls  int32
}

func (s *stubClassifier) Loaded() bool { return s.loaded }

func (s *stubClassifier) Score(features []float64) (float64, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.score(features)
}

func constantClassifier(probability float64) *stubClassifier {
	return &stubClassifier{
		loaded: true,
		score:  func([]float64) (float64, error) { return probability, nil },
	}
}

func newTestFraudService(model Classifier) *FraudService {
	return NewFraudService(model, zerolog.Nop())
}

// makeRequest builds a fully populated transaction request.
func makeRequest(t *testing.T, timeVal, amount float64) *dto.TransactionRequest {
	t.Helper()

	payload := map[string]float64{"time": timeVal, "amount": amount}
	for i := 1; i <= 28; i++ {
		payload[fmt.Sprintf("v%d", i)] = 0.1 * float64(i)
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var req dto.TransactionRequest
	require.NoError(t, json.Unmarshal(data, &req))
	return &req
}

func TestConfidenceBands(t *testing.T) {
	tests := []struct {
		probability float64
		want        string
	}{
		{0.02, models.ConfidenceHigh},
		{0.1, models.ConfidenceHigh},
		{0.25, models.ConfidenceMedium},
		{0.3, models.ConfidenceMedium},
		{0.5, models.ConfidenceLow},
		{0.7, models.ConfidenceMedium},
		{0.75, models.ConfidenceMedium},
		{0.9, models.ConfidenceHigh},
		{0.98, models.ConfidenceHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, confidenceBand(tt.probability), "probability %v", tt.probability)
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		probability float64
		want        int
	}{
		{0, 0},
		{0.004, 0},
		{0.005, 1},
		{0.5, 50},
		{0.678, 68},
		{1, 100},
		{1.2, 100},
		{-0.1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, riskScore(tt.probability), "probability %v", tt.probability)
	}
}

func TestPredictFraudThreshold(t *testing.T) {
	svc := newTestFraudService(constantClassifier(0.5))
	result, err := svc.Predict(makeRequest(t, 0, 10))
	require.NoError(t, err)
	assert.True(t, result.IsFraud)
	assert.Equal(t, 50, result.RiskScore)

	svc = newTestFraudService(constantClassifier(0.499))
	result, err = svc.Predict(makeRequest(t, 0, 10))
	require.NoError(t, err)
	assert.False(t, result.IsFraud)
}

func TestPredictRiskScoreMatchesProbability(t *testing.T) {
	for _, p := range []float64{0.0, 0.02, 0.334, 0.5, 0.755, 0.98, 1.0} {
		svc := newTestFraudService(constantClassifier(p))
		result, err := svc.Predict(makeRequest(t, 0, 10))
		require.NoError(t, err)
		assert.Equal(t, riskScore(p), result.RiskScore)
		assert.GreaterOrEqual(t, result.RiskScore, 0)
		assert.LessOrEqual(t, result.RiskScore, 100)
		assert.GreaterOrEqual(t, result.PredictionTimeMS, 0.0)
	}
}

func TestPredictModelNotLoaded(t *testing.T) {
	svc := newTestFraudService(&stubClassifier{loaded: false})
	_, err := svc.Predict(makeRequest(t, 0, 10))
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestPredictValidationBeforeModelCall(t *testing.T) {
	model := constantClassifier(0.2)
	svc := newTestFraudService(model)

	// Negative amount
	req := makeRequest(t, 0, 10)
	*req.Amount = -1
	_, err := svc.Predict(req)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "amount", validationErr.Field)

	// Negative time
	req = makeRequest(t, 0, 10)
	*req.Time = -5
	_, err = svc.Predict(req)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "time", validationErr.Field)

	// Missing field
	req = makeRequest(t, 0, 10)
	req.V14 = nil
	_, err = svc.Predict(req)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "v14", validationErr.Field)

	// The classifier must never have been invoked.
	assert.Equal(t, int32(0), atomic.LoadInt32(&model.calls))
}

func TestPredictBatchPreservesOrder(t *testing.T) {
	// Probability derived from the amount so each result is traceable to
	// its input regardless of which worker scored it.
	model := &stubClassifier{
		loaded: true,
		score: func(features []float64) (float64, error) {
			return features[len(features)-1] / 1000, nil
		},
	}
	svc := newTestFraudService(model)

	req := &dto.BatchPredictionRequest{}
	for i := 0; i < 100; i++ {
		req.Transactions = append(req.Transactions, *makeRequest(t, 0, float64(i)))
	}

	result, err := svc.PredictBatch(req)
	require.NoError(t, err)
	require.Len(t, result.Results, 100)

	for i, item := range result.Results {
		assert.Equal(t, i, item.Index)
		assert.InDelta(t, float64(i)/1000, item.FraudProbability, 1e-12)
	}
}

func TestPredictBatchAggregates(t *testing.T) {
	model := &stubClassifier{
		loaded: true,
		score: func(features []float64) (float64, error) {
			if features[len(features)-1] >= 500 {
				return 0.95, nil
			}
			return 0.05, nil
		},
	}
	svc := newTestFraudService(model)

	req := &dto.BatchPredictionRequest{}
	for _, amount := range []float64{10, 600, 20, 900, 30} {
		req.Transactions = append(req.Transactions, *makeRequest(t, 0, amount))
	}

	result, err := svc.PredictBatch(req)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalTransactions)
	assert.Equal(t, 2, result.FraudCount)
	assert.Equal(t, 3, result.LegitimateCount)
	assert.Equal(t, result.TotalTransactions, result.FraudCount+result.LegitimateCount)
	assert.InDelta(t, 2.0/5.0, result.FraudRate, 1e-12)
	assert.GreaterOrEqual(t, result.ProcessingTimeMS, 0.0)
}

func TestPredictBatchSizeLimits(t *testing.T) {
	model := constantClassifier(0.1)
	svc := newTestFraudService(model)

	var validationErr *ValidationError

	_, err := svc.PredictBatch(&dto.BatchPredictionRequest{})
	require.ErrorAs(t, err, &validationErr)

	req := &dto.BatchPredictionRequest{}
	for i := 0; i <= maxBatchSize; i++ {
		req.Transactions = append(req.Transactions, *makeRequest(t, 0, 10))
	}
	_, err = svc.PredictBatch(req)
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, int32(0), atomic.LoadInt32(&model.calls))
}

func TestPredictBatchFailsWholeOnItemError(t *testing.T) {
	model := &stubClassifier{
		loaded: true,
		score: func(features []float64) (float64, error) {
			if features[len(features)-1] == 666 {
				return 0, errors.New("scoring blew up")
			}
			return 0.1, nil
		},
	}
	svc := newTestFraudService(model)

	req := &dto.BatchPredictionRequest{}
	for _, amount := range []float64{1, 2, 666, 4} {
		req.Transactions = append(req.Transactions, *makeRequest(t, 0, amount))
	}

	result, err := svc.PredictBatch(req)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestStatsCounters(t *testing.T) {
	svc := newTestFraudService(constantClassifier(0.9))

	empty := svc.Stats()
	assert.Equal(t, 0, empty.TotalPredictions)
	assert.Zero(t, empty.FraudRate)

	_, err := svc.Predict(makeRequest(t, 0, 10))
	require.NoError(t, err)
	_, err = svc.Predict(makeRequest(t, 0, 20))
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 2, stats.TotalPredictions)
	assert.Equal(t, 2, stats.FraudDetected)
	assert.Equal(t, 0, stats.LegitimateDetected)
	assert.InDelta(t, 1.0, stats.FraudRate, 1e-12)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 0.0)
}

func TestGenerateSampleTransaction(t *testing.T) {
	svc := newTestFraudService(constantClassifier(0.1))

	legit := svc.GenerateSampleTransaction(false)
	assert.GreaterOrEqual(t, legit.Time, 0.0)
	assert.GreaterOrEqual(t, legit.Amount, 10.0)
	assert.LessOrEqual(t, legit.Amount, 200.0)

	fraud := svc.GenerateSampleTransaction(true)
	assert.GreaterOrEqual(t, fraud.Amount, 500.0)
	assert.LessOrEqual(t, fraud.Amount, 2000.0)
	// Shifted components sit well below zero.
	assert.Less(t, fraud.V14, -1.9)

	// Fixed seeds make samples reproducible.
	assert.Equal(t, legit, svc.GenerateSampleTransaction(false))
	assert.Equal(t, fraud, svc.GenerateSampleTransaction(true))
}
