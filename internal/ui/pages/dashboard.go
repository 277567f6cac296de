// Package pages holds the HTML components of the dashboard UI.
package pages

import "github.com/leapstack-labs/pipedash/internal/dashboard"

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

// DatastarScript is the client runtime that applies server-sent patches.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Stream endpoints used by the page.
const (
	LoadPath   = "/dashboard/load"
	ReloadPath = "/dashboard/reload"
)

var slotLabels = map[string]string{
	dashboard.SlotPipelineStatus: "Pipeline status",
	dashboard.SlotLastRunUTC:     "Last run (UTC)",
	dashboard.SlotRowsIngested:   "Rows ingested",
	dashboard.SlotModelVersion:   "Model version",
	dashboard.SlotMetricName:     "Metric",
	dashboard.SlotMetricValue:    "Value",
}
