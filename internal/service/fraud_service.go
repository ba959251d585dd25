package service

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/dto"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
)

const (
	maxBatchSize     = 1000
	defaultWorkers   = 4
	fraudThreshold   = 0.5
	datasetTimeRange = 172792 // seconds covered by the training dataset
)

// Classifier is the opaque scoring capability. Implementations must be
// safe for concurrent use.
type Classifier interface {
	Loaded() bool
	Score(features []float64) (float64, error)
}

// FraudService validates transactions, invokes the classifier and shapes
// the results. It also keeps live service-wide usage counters for the
// analytics surface.
type FraudService struct {
	model   Classifier
	workers int
	log     zerolog.Logger

	mu             sync.Mutex
	startTime      time.Time
	total          int
	fraudDetected  int
	totalLatencyMS float64
}

func NewFraudService(model Classifier, log zerolog.Logger) *FraudService {
	return &FraudService{
		model:     model,
		workers:   defaultWorkers,
		log:       log,
		startTime: time.Now(),
	}
}

// Predict scores a single transaction. Validation happens before any
// model call; a not-ready model yields ErrModelNotLoaded.
func (s *FraudService) Predict(req *dto.TransactionRequest) (*dto.PredictionResponse, error) {
	if err := validateTransaction(req, ""); err != nil {
		return nil, err
	}
	if !s.model.Loaded() {
		return nil, ErrModelNotLoaded
	}

	tx := req.ToTransaction()

	start := time.Now()
	probability, err := s.model.Score(tx.FeatureVector())
	if err != nil {
		return nil, fmt.Errorf("prediction error: %w", err)
	}
	elapsedMS := float64(time.Since(start)) / float64(time.Millisecond)

	result := buildPredictionResponse(probability, elapsedMS)
	s.recordUsage(result.IsFraud, elapsedMS)
	return result, nil
}

// PredictBatch scores 1..1000 transactions. Items are scored by a bounded
// worker pool but results always come back in input order. One failing
// item fails the whole batch so the aggregates stay consistent with the
// item count.
func (s *FraudService) PredictBatch(req *dto.BatchPredictionRequest) (*dto.BatchPredictionResponse, error) {
	n := len(req.Transactions)
	if n < 1 || n > maxBatchSize {
		return nil, newValidationError("transactions",
			fmt.Sprintf("must contain between 1 and %d transactions", maxBatchSize))
	}
	for i := range req.Transactions {
		prefix := fmt.Sprintf("transactions[%d].", i)
		if err := validateTransaction(&req.Transactions[i], prefix); err != nil {
			return nil, err
		}
	}
	if !s.model.Loaded() {
		return nil, ErrModelNotLoaded
	}

	start := time.Now()

	results := make([]dto.BatchItemResult, n)
	itemErrs := make([]error, n)
	latencies := make([]float64, n)

	workers := s.workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tx := req.Transactions[i].ToTransaction()
				itemStart := time.Now()
				probability, err := s.model.Score(tx.FeatureVector())
				if err != nil {
					itemErrs[i] = fmt.Errorf("transaction %d: %w", i, err)
					continue
				}
				latencies[i] = float64(time.Since(itemStart)) / float64(time.Millisecond)
				results[i] = dto.BatchItemResult{
					Index:            i,
					IsFraud:          probability >= fraudThreshold,
					FraudProbability: probability,
					RiskScore:        riskScore(probability),
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range itemErrs {
		if err != nil {
			return nil, fmt.Errorf("batch prediction error: %w", err)
		}
	}

	fraudCount := 0
	for i := range results {
		if results[i].IsFraud {
			fraudCount++
		}
		s.recordUsage(results[i].IsFraud, latencies[i])
	}

	return &dto.BatchPredictionResponse{
		TotalTransactions: n,
		FraudCount:        fraudCount,
		LegitimateCount:   n - fraudCount,
		FraudRate:         float64(fraudCount) / float64(n),
		Results:           results,
		ProcessingTimeMS:  float64(time.Since(start)) / float64(time.Millisecond),
	}, nil
}

// Stats reports live service-wide usage counters. These are counters, not
// a cache of stored history.
func (s *FraudService) Stats() *dto.StatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &dto.StatsResponse{
		TotalPredictions:   s.total,
		FraudDetected:      s.fraudDetected,
		LegitimateDetected: s.total - s.fraudDetected,
		UptimeSeconds:      time.Since(s.startTime).Seconds(),
	}
	if s.total > 0 {
		stats.FraudRate = float64(s.fraudDetected) / float64(s.total)
		stats.AverageResponseTimeMS = s.totalLatencyMS / float64(s.total)
	}
	return stats
}

func (s *FraudService) recordUsage(isFraud bool, latencyMS float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if isFraud {
		s.fraudDetected++
	}
	s.totalLatencyMS += latencyMS
}

// GenerateSampleTransaction builds a transaction-shaped fixture for client
// testing. Seeds are fixed so the samples are reproducible.
func (s *FraudService) GenerateSampleTransaction(isFraud bool) *models.Transaction {
	if isFraud {
		r := rand.New(rand.NewSource(123))
		tx := &models.Transaction{
			Time:   r.Float64() * datasetTimeRange,
			Amount: 500 + r.Float64()*1500,
		}
		// Fraudulent transactions show strongly shifted components on
		// v1, v3, v7, v10, v12, v14, v16 and v17.
		shifted := map[int]bool{1: true, 3: true, 7: true, 10: true, 12: true, 14: true, 16: true, 17: true}
		raised := map[int]bool{2: true, 4: true}
		setPCA(tx, func(i int) float64 {
			switch {
			case shifted[i]:
				return -5 + r.Float64()*3 // [-5, -2)
			case raised[i]:
				return 2 + r.Float64()*3 // [2, 5)
			default:
				return -3 + r.Float64()*6 // [-3, 3)
			}
		})
		return tx
	}

	r := rand.New(rand.NewSource(42))
	tx := &models.Transaction{
		Time:   r.Float64() * datasetTimeRange,
		Amount: 10 + r.Float64()*190,
	}
	setPCA(tx, func(int) float64 { return r.NormFloat64() })
	return tx
}

func setPCA(tx *models.Transaction, gen func(i int) float64) {
	fields := []*float64{
		&tx.V1, &tx.V2, &tx.V3, &tx.V4, &tx.V5, &tx.V6, &tx.V7,
		&tx.V8, &tx.V9, &tx.V10, &tx.V11, &tx.V12, &tx.V13, &tx.V14,
		&tx.V15, &tx.V16, &tx.V17, &tx.V18, &tx.V19, &tx.V20, &tx.V21,
		&tx.V22, &tx.V23, &tx.V24, &tx.V25, &tx.V26, &tx.V27, &tx.V28,
	}
	for i, f := range fields {
		*f = gen(i + 1)
	}
}

func buildPredictionResponse(probability, elapsedMS float64) *dto.PredictionResponse {
	return &dto.PredictionResponse{
		IsFraud:          probability >= fraudThreshold,
		FraudProbability: probability,
		Confidence:       confidenceBand(probability),
		RiskScore:        riskScore(probability),
		PredictionTimeMS: elapsedMS,
	}
}

// confidenceBand discretizes the distance from the decision boundary.
// Ties resolve toward the outer band.
func confidenceBand(probability float64) string {
	switch {
	case probability <= 0.1 || probability >= 0.9:
		return models.ConfidenceHigh
	case probability <= 0.3 || probability >= 0.7:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// riskScore rescales a probability to an integer 0-100 for display.
func riskScore(probability float64) int {
	score := int(math.Round(probability * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func validateTransaction(req *dto.TransactionRequest, fieldPrefix string) error {
	for _, f := range req.Fields() {
		if f.Value == nil {
			return newValidationError(fieldPrefix+f.Name, "field is required")
		}
	}
	if *req.Time < 0 {
		return newValidationError(fieldPrefix+"time", "must be non-negative")
	}
	if *req.Amount < 0 {
		return newValidationError(fieldPrefix+"amount", "must be non-negative")
	}
	return nil
}
