package models

// FeatureCount is the number of inputs the classifier was trained on:
// time, the 28 PCA components and the amount, in that exact order.
const FeatureCount = 30

// Transaction is a single card transaction submitted for scoring.
// Time is seconds elapsed since the first transaction in the dataset,
// V1-V28 are anonymized PCA components.
type Transaction struct {
	Time   float64 `json:"time"`
	V1     float64 `json:"v1"`
	V2     float64 `json:"v2"`
	V3     float64 `json:"v3"`
	V4     float64 `json:"v4"`
	V5     float64 `json:"v5"`
	V6     float64 `json:"v6"`
	V7     float64 `json:"v7"`
	V8     float64 `json:"v8"`
	V9     float64 `json:"v9"`
	V10    float64 `json:"v10"`
	V11    float64 `json:"v11"`
	V12    float64 `json:"v12"`
	V13    float64 `json:"v13"`
	V14    float64 `json:"v14"`
	V15    float64 `json:"v15"`
	V16    float64 `json:"v16"`
	V17    float64 `json:"v17"`
	V18    float64 `json:"v18"`
	V19    float64 `json:"v19"`
	V20    float64 `json:"v20"`
	V21    float64 `json:"v21"`
	V22    float64 `json:"v22"`
	V23    float64 `json:"v23"`
	V24    float64 `json:"v24"`
	V25    float64 `json:"v25"`
	V26    float64 `json:"v26"`
	V27    float64 `json:"v27"`
	V28    float64 `json:"v28"`
	Amount float64 `json:"amount"`
}

// FeatureVector returns the ordered feature array fed to the classifier.
// The ordering [time, v1..v28, amount] is part of the model contract;
// reordering silently corrupts predictions.
func (t *Transaction) FeatureVector() []float64 {
	return []float64{
		t.Time,
		t.V1, t.V2, t.V3, t.V4, t.V5, t.V6, t.V7,
		t.V8, t.V9, t.V10, t.V11, t.V12, t.V13, t.V14,
		t.V15, t.V16, t.V17, t.V18, t.V19, t.V20, t.V21,
		t.V22, t.V23, t.V24, t.V25, t.V26, t.V27, t.V28,
		t.Amount,
	}
}

// PCAFeatures returns the 28 anonymized components v1..v28.
func (t *Transaction) PCAFeatures() []float64 {
	vec := t.FeatureVector()
	return vec[1 : FeatureCount-1]
}
