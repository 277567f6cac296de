package dashboard

import (
	"bytes"
	"encoding/json"
)

// Text is a payload field that may arrive as either a JSON string or a JSON
// number. Strings are unquoted, numbers keep their literal digits, and null
// or absent values decode to the empty string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// SummaryPayload is the body of the summary resource.
type SummaryPayload struct {
	PipelineStatus Text `json:"pipeline_status"`
	LastRunUTC     Text `json:"last_run_utc"`
	RowsIngested   Text `json:"rows_ingested"`
	ModelVersion   Text `json:"model_version"`
}

// MetricsPayload is the body of the metrics resource.
type MetricsPayload struct {
	MetricName  Text `json:"metric_name"`
	MetricValue Text `json:"metric_value"`
}

// PredictionItem is one row of the predictions resource.
type PredictionItem struct {
	ID         Text `json:"id"`
	FeatureX   Text `json:"feature_x"`
	Prediction Text `json:"prediction"`
	Actual     Text `json:"actual"`
}

// Cells returns the row in display column order: id, feature_x, prediction, actual.
func (p PredictionItem) Cells() []string {
	return []string{p.ID.String(), p.FeatureX.String(), p.Prediction.String(), p.Actual.String()}
}

// PredictionsPayload is the body of the predictions resource.
type PredictionsPayload struct {
	Items []PredictionItem `json:"items"`
}

// Rows converts the items to table rows, preserving order.
func (p PredictionsPayload) Rows() [][]string {
	rows := make([][]string, 0, len(p.Items))
	for _, item := range p.Items {
		rows = append(rows, item.Cells())
	}
	return rows
}

func (SummaryPayload) schemaName() string     { return "summary" }
func (MetricsPayload) schemaName() string     { return "metrics" }
func (PredictionsPayload) schemaName() string { return "predictions" }
