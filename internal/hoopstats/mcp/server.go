package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the training log tools.
// Served over stdio by cmd/hoopstats_mcp and mounted by the backend at /mcp.
func NewServer(analyzer trainingAnalyzer, version string) *mcp.Server {
	h := NewHandler(analyzer)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "hoopstats",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_latest_summary",
		Description: "Returns the most recent value of every metric logged in a category (games, practice, conditioning, dribbling) for the given user.",
	}, h.GetLatestSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_category_trend",
		Description: "Compares the last two values of every metric in a category and returns per-metric verdicts (improving or not) and a signed score: +1 per improving metric, -1 per metric that did not improve. Ties do not improve. Metrics with a single value are left out. Timed drills improve when the time goes down.",
	}, h.GetCategoryTrendTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_category_metrics",
		Description: "Returns the names of the metrics logged in a category for the given user.",
	}, h.GetMetricsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_metric_history",
		Description: "Returns every logged value of one metric in time order, each marked improving, declining or neutral against the previous value.",
	}, h.GetMetricHistoryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Returns latest values, verdicts and scores for every category the user has data in. Use for an overall progress check.",
	}, h.GetDashboardTool())

	return s
}
