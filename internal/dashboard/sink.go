package dashboard

import "errors"

// Slot identifiers written by the load cycle.
const (
	SlotPipelineStatus = "pipeline_status"
	SlotLastRunUTC     = "last_run_utc"
	SlotRowsIngested   = "rows_ingested"
	SlotModelVersion   = "model_version"
	SlotMetricName     = "metric_name"
	SlotMetricValue    = "metric_value"

	// TablePredictions is the table body that receives prediction rows.
	TablePredictions = "predictions_body"
)

// Text written when a load cycle fails.
const (
	ErrorStatusText = "ERROR"
	ErrorMetricText = "Failed to load"
)

// Slots lists every text slot in display order.
var Slots = []string{
	SlotPipelineStatus,
	SlotLastRunUTC,
	SlotRowsIngested,
	SlotModelVersion,
	SlotMetricName,
	SlotMetricValue,
}

// PredictionColumns is the fixed column order of a prediction row.
var PredictionColumns = []string{"id", "feature_x", "prediction", "actual"}

// ErrSlotNotFound is returned when a table body is absent from the sink.
var ErrSlotNotFound = errors.New("slot not found")

// Sink is a rendering surface made of named text slots and table bodies.
type Sink interface {
	// SetText writes value into the named slot. Unknown slots are ignored.
	SetText(slot, value string)

	// ReplaceRows clears the named table body and fills it with rows.
	// It returns an error wrapping ErrSlotNotFound if the table is absent.
	ReplaceRows(table string, rows [][]string) error
}
