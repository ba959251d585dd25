// Package ml loads the serialized fraud classifier and scores feature
// vectors against it. The artifact is trained and exported elsewhere;
// this package treats it as opaque parameters: a standard scaler and a
// logistic decision function distilled from the trained ensemble.
package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"
)

var (
	ErrNotLoaded     = errors.New("model not loaded")
	ErrFeatureLength = errors.New("feature vector has wrong length")
)

// Metrics are the offline evaluation results exported with the artifact.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	ROCAUC    float64 `json:"roc_auc"`
}

// Scaler holds per-feature standardization parameters.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Artifact is the on-disk JSON layout of the exported model.
type Artifact struct {
	ModelName         string             `json:"model_name"`
	ModelVersion      string             `json:"model_version"`
	TrainedAt         *time.Time         `json:"trained_at,omitempty"`
	TrainingSamples   int                `json:"training_samples"`
	FraudSamples      int                `json:"fraud_samples"`
	Metrics           Metrics            `json:"metrics"`
	FeatureNames      []string           `json:"feature_names"`
	Scaler            Scaler             `json:"scaler"`
	Coefficients      []float64          `json:"coefficients"`
	Intercept         float64            `json:"intercept"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// Info is the model metadata exposed on the analytics surface.
type Info struct {
	ModelName       string
	ModelVersion    string
	FeaturesCount   int
	TrainingSamples int
	FraudSamples    int
	Metrics         Metrics
	TrainedAt       *time.Time
}

// Model is the loaded classifier. It is read-only after construction and
// safe to share across concurrent callers.
type Model struct {
	artifact Artifact
	loaded   bool
}

// NewUnloaded returns a model placeholder that reports not-ready. The
// service starts with it when the artifact file is missing.
func NewUnloaded() *Model {
	return &Model{}
}

// New validates an artifact and wraps it into a ready model.
func New(artifact Artifact) (*Model, error) {
	n := len(artifact.FeatureNames)
	if n == 0 {
		return nil, errors.New("artifact has no feature names")
	}
	if len(artifact.Coefficients) != n {
		return nil, fmt.Errorf("artifact has %d coefficients for %d features", len(artifact.Coefficients), n)
	}
	if len(artifact.Scaler.Mean) != n || len(artifact.Scaler.Scale) != n {
		return nil, fmt.Errorf("artifact scaler does not cover %d features", n)
	}
	return &Model{artifact: artifact, loaded: true}, nil
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	return New(artifact)
}

// Loaded reports whether the classifier is ready to score.
func (m *Model) Loaded() bool {
	return m.loaded
}

// Score returns the fraud probability for an ordered feature vector.
func (m *Model) Score(features []float64) (float64, error) {
	if !m.loaded {
		return 0, ErrNotLoaded
	}
	if len(features) != len(m.artifact.Coefficients) {
		return 0, ErrFeatureLength
	}

	z := m.artifact.Intercept
	for i, x := range features {
		scale := m.artifact.Scaler.Scale[i]
		if scale == 0 {
			scale = 1
		}
		z += m.artifact.Coefficients[i] * ((x - m.artifact.Scaler.Mean[i]) / scale)
	}

	return 1 / (1 + math.Exp(-z)), nil
}

// Info returns the model's training metadata.
func (m *Model) Info() Info {
	return Info{
		ModelName:       m.artifact.ModelName,
		ModelVersion:    m.artifact.ModelVersion,
		FeaturesCount:   len(m.artifact.FeatureNames),
		TrainingSamples: m.artifact.TrainingSamples,
		FraudSamples:    m.artifact.FraudSamples,
		Metrics:         m.artifact.Metrics,
		TrainedAt:       m.artifact.TrainedAt,
	}
}

// FeatureImportance returns per-feature importance scores. The returned
// map is a copy.
func (m *Model) FeatureImportance() map[string]float64 {
	importance := make(map[string]float64, len(m.artifact.FeatureImportance))
	for k, v := range m.artifact.FeatureImportance {
		importance[k] = v
	}
	return importance
}
