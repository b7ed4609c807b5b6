package mcp

import (
	"context"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
)

// trainingAnalyzer is the read side of the training log served over MCP.
// observations.Analyzer implements it.
type trainingAnalyzer interface {
	LatestSummary(ctx context.Context, userID string, category trend.Category) (*observations.CategorySummary, error)
	CategoryTrend(ctx context.Context, userID string, category trend.Category) (*trend.Evaluation, error)
	MetricHistory(ctx context.Context, userID string, category trend.Category, metric string) (*observations.MetricHistory, error)
	Metrics(ctx context.Context, userID string, category trend.Category) ([]string, error)
	Dashboard(ctx context.Context, userID string) (*observations.Dashboard, error)
}

var _ trainingAnalyzer = (*observations.Analyzer)(nil)
