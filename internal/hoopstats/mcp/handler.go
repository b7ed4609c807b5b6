package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests: validates input, calls the analyzer, formats the MCP result.
type Handler struct {
	analyzer trainingAnalyzer
}

func NewHandler(analyzer trainingAnalyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

// CategoryInput is the input for the per-category tools.
type CategoryInput struct {
	UserID   string `json:"user_id" jsonschema:"User whose training log is read"`
	Category string `json:"category" jsonschema:"One of: games, practice, conditioning, dribbling"`
}

// MetricHistoryInput is the input for get_metric_history.
type MetricHistoryInput struct {
	UserID   string `json:"user_id" jsonschema:"User whose training log is read"`
	Category string `json:"category" jsonschema:"One of: games, practice, conditioning, dribbling"`
	Metric   string `json:"metric" jsonschema:"Metric name as logged (e.g. Points, 17s Drill Time)"`
}

// DashboardInput is the input for get_dashboard.
type DashboardInput struct {
	UserID string `json:"user_id" jsonschema:"User whose training log is read"`
}

func (h *Handler) GetLatestSummaryTool() func(context.Context, *mcp.CallToolRequest, CategoryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CategoryInput) (*mcp.CallToolResult, any, error) {
		category, res := parseCategoryInput(in.UserID, in.Category)
		if res != nil {
			return res, nil, nil
		}
		summary, err := h.analyzer.LatestSummary(ctx, in.UserID, category)
		if err != nil {
			return errorResult("Error reading latest summary: " + err.Error()), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

func (h *Handler) GetCategoryTrendTool() func(context.Context, *mcp.CallToolRequest, CategoryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CategoryInput) (*mcp.CallToolResult, any, error) {
		category, res := parseCategoryInput(in.UserID, in.Category)
		if res != nil {
			return res, nil, nil
		}
		evaluation, err := h.analyzer.CategoryTrend(ctx, in.UserID, category)
		if err != nil {
			return errorResult(evaluationErrorText(err)), nil, nil
		}
		return jsonResult(evaluation), nil, nil
	}
}

func (h *Handler) GetMetricsTool() func(context.Context, *mcp.CallToolRequest, CategoryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CategoryInput) (*mcp.CallToolResult, any, error) {
		category, res := parseCategoryInput(in.UserID, in.Category)
		if res != nil {
			return res, nil, nil
		}
		names, err := h.analyzer.Metrics(ctx, in.UserID, category)
		if err != nil {
			return errorResult("Error listing metrics: " + err.Error()), nil, nil
		}
		return jsonResult(names), nil, nil
	}
}

func (h *Handler) GetMetricHistoryTool() func(context.Context, *mcp.CallToolRequest, MetricHistoryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MetricHistoryInput) (*mcp.CallToolResult, any, error) {
		category, res := parseCategoryInput(in.UserID, in.Category)
		if res != nil {
			return res, nil, nil
		}
		if strings.TrimSpace(in.Metric) == "" {
			return errorResult("Missing metric"), nil, nil
		}
		history, err := h.analyzer.MetricHistory(ctx, in.UserID, category, in.Metric)
		if err != nil {
			return errorResult(evaluationErrorText(err)), nil, nil
		}
		return jsonResult(history), nil, nil
	}
}

func (h *Handler) GetDashboardTool() func(context.Context, *mcp.CallToolRequest, DashboardInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DashboardInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(in.UserID) == "" {
			return errorResult("Missing user_id"), nil, nil
		}
		dashboard, err := h.analyzer.Dashboard(ctx, in.UserID)
		if err != nil {
			return errorResult(evaluationErrorText(err)), nil, nil
		}
		return jsonResult(dashboard), nil, nil
	}
}

func parseCategoryInput(userID, rawCategory string) (trend.Category, *mcp.CallToolResult) {
	if strings.TrimSpace(userID) == "" {
		return "", errorResult("Missing user_id")
	}
	category, err := trend.ParseCategory(rawCategory)
	if err != nil {
		return "", errorResult("Invalid category: use one of games, practice, conditioning, dribbling")
	}
	return category, nil
}

func evaluationErrorText(err error) string {
	if errors.Is(err, trend.ErrInvalidMeasurement) {
		return "Training log contains an invalid measurement: " + err.Error()
	}
	return "Error evaluating training log: " + err.Error()
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}
