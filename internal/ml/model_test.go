package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact() Artifact {
	n := 30
	names := make([]string, n)
	mean := make([]float64, n)
	scale := make([]float64, n)
	coef := make([]float64, n)
	names[0] = "time"
	names[n-1] = "amount"
	for i := 0; i < n; i++ {
		if i > 0 && i < n-1 {
			names[i] = fmt.Sprintf("v%d", i)
		}
		scale[i] = 1
	}
	// Only the amount moves the decision function.
	coef[n-1] = 2

	return Artifact{
		ModelName:       "Random Forest Classifier",
		ModelVersion:    "1.0.0",
		TrainingSamples: 284807,
		FraudSamples:    492,
		Metrics: Metrics{
			Accuracy:  0.9995,
			Precision: 0.94,
			Recall:    0.81,
			F1Score:   0.87,
			ROCAUC:    0.97,
		},
		FeatureNames:      names,
		Scaler:            Scaler{Mean: mean, Scale: scale},
		Coefficients:      coef,
		Intercept:         -1,
		FeatureImportance: map[string]float64{"v14": 0.18, "v17": 0.12, "amount": 0.05},
	}
}

func TestLoadArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fraud_detector.json")
	data, err := json.Marshal(testArtifact())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	model, err := Load(path)
	require.NoError(t, err)
	assert.True(t, model.Loaded())

	info := model.Info()
	assert.Equal(t, "Random Forest Classifier", info.ModelName)
	assert.Equal(t, 30, info.FeaturesCount)
	assert.Equal(t, 284807, info.TrainingSamples)
	assert.InDelta(t, 0.97, info.Metrics.ROCAUC, 1e-12)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadInvalidArtifact(t *testing.T) {
	artifact := testArtifact()
	artifact.Coefficients = artifact.Coefficients[:10]
	_, err := New(artifact)
	assert.Error(t, err)

	artifact = testArtifact()
	artifact.Scaler.Mean = nil
	_, err = New(artifact)
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	model, err := New(testArtifact())
	require.NoError(t, err)

	features := make([]float64, 30)
	low, err := model.Score(features)
	require.NoError(t, err)
	assert.Greater(t, low, 0.0)
	assert.Less(t, low, 0.5) // intercept -1 pulls toward legitimate

	// Probability is monotonic in the weighted amount.
	features[29] = 5
	high, err := model.Score(features)
	require.NoError(t, err)
	assert.Greater(t, high, low)
	assert.Less(t, high, 1.0)
}

func TestScoreWrongLength(t *testing.T) {
	model, err := New(testArtifact())
	require.NoError(t, err)

	_, err = model.Score(make([]float64, 29))
	assert.ErrorIs(t, err, ErrFeatureLength)
}

func TestUnloadedModel(t *testing.T) {
	model := NewUnloaded()
	assert.False(t, model.Loaded())

	_, err := model.Score(make([]float64, 30))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestFeatureImportanceCopy(t *testing.T) {
	model, err := New(testArtifact())
	require.NoError(t, err)

	importance := model.FeatureImportance()
	importance["v14"] = 0

	assert.InDelta(t, 0.18, model.FeatureImportance()["v14"], 1e-12)
}
