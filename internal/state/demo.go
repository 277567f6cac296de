package state

import "time"

// DemoRun builds the sample run served by a fresh installation: a healthy
// ingest of 1200 rows, an RMSE metric, and n linear sample predictions.
func DemoRun(now time.Time, n int) *Run {
	run := &Run{
		Status:        RunStatusOK,
		CompletedAt:   now.UTC(),
		RowsIngested:  1200,
		RowsValidated: 1189,
		RowsFailed:    11,
		ModelVersion:  "v0.1.0",
		Metrics: []Metric{
			{Name: "rmse", Value: 0.84, EvaluatedAt: now.UTC()},
		},
		Predictions: make([]Prediction, 0, n),
	}
	for i := 0; i < n; i++ {
		f := float64(i)
		run.Predictions = append(run.Predictions, Prediction{
			ID:         int64(i + 1),
			FeatureX:   f * 0.5,
			Prediction: 10 + f*0.3,
			Actual:     10 + f*0.28,
		})
	}
	return run
}
