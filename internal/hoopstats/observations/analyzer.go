package observations

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type CategorySummary struct {
	Category trend.Category     `json:"category"`
	Title    string             `json:"title"`
	Latest   map[string]float64 `json:"latest"`
}

type MetricHistory struct {
	Category  trend.Category      `json:"category"`
	Metric    string              `json:"metric"`
	Direction string              `json:"direction"`
	Points    []trend.SeriesPoint `json:"points"`
}

type CategoryDashboard struct {
	Category trend.Category           `json:"category"`
	Title    string                   `json:"title"`
	Latest   map[string]float64       `json:"latest"`
	Verdicts map[string]trend.Verdict `json:"verdicts"`
	Score    int                      `json:"score"`
}

type Dashboard struct {
	UserID     string              `json:"userId"`
	Categories []CategoryDashboard `json:"categories"`
}

// Analyzer reads a fresh snapshot from the store on every call and runs the trend evaluator over it.
type Analyzer struct {
	repo      Store
	evaluator *trend.Evaluator
}

func NewAnalyzer(repo Store, evaluator *trend.Evaluator) *Analyzer {
	if evaluator == nil {
		evaluator = trend.NewEvaluator(nil)
	}
	return &Analyzer{
		repo:      repo,
		evaluator: evaluator,
	}
}

func (a *Analyzer) snapshot(ctx context.Context, params ListParams) ([]trend.Observation, error) {
	list, err := a.repo.ListAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	return ToTrend(list), nil
}

func (a *Analyzer) LatestSummary(ctx context.Context, userID string, category trend.Category) (_ *CategorySummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.hoopstats.latestSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", string(category)))

	list, err := a.snapshot(ctx, ListParams{UserID: userID, Category: category})
	if err != nil {
		return nil, err
	}

	latest := a.evaluator.LatestSummary(list)
	if err := checkLatest(latest); err != nil {
		return nil, err
	}

	return &CategorySummary{
		Category: category,
		Title:    category.Title(),
		Latest:   latest,
	}, nil
}

func (a *Analyzer) CategoryTrend(ctx context.Context, userID string, category trend.Category) (_ *trend.Evaluation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.hoopstats.categoryTrend")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", string(category)))

	list, err := a.snapshot(ctx, ListParams{UserID: userID, Category: category})
	if err != nil {
		return nil, err
	}

	evaluation, err := a.evaluator.Evaluate(category, list)
	if err != nil {
		return nil, err
	}
	if err := checkVerdicts(evaluation.Verdicts); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("score", evaluation.Score))

	return evaluation, nil
}

func (a *Analyzer) MetricHistory(ctx context.Context, userID string, category trend.Category, metric string) (_ *MetricHistory, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.hoopstats.metricHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("category", string(category)),
		attribute.String("metric", metric),
	)

	list, err := a.snapshot(ctx, ListParams{UserID: userID, Category: category, Metric: metric})
	if err != nil {
		return nil, err
	}

	points, err := a.evaluator.MetricSeries(list, metric)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if err := checkFinite(metric, p.Value); err != nil {
			return nil, err
		}
	}

	return &MetricHistory{
		Category:  category,
		Metric:    metric,
		Direction: a.evaluator.Rules().Direction(metric).String(),
		Points:    points,
	}, nil
}

// Metrics returns the sorted distinct metric names logged in category.
func (a *Analyzer) Metrics(ctx context.Context, userID string, category trend.Category) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.hoopstats.metrics")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	list, err := a.snapshot(ctx, ListParams{UserID: userID, Category: category})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	names := []string{}
	for _, o := range list {
		if !seen[o.Metric] {
			seen[o.Metric] = true
			names = append(names, o.Metric)
		}
	}
	sort.Strings(names)

	return names, nil
}

// Dashboard evaluates every category with data, from one snapshot of the user's observations.
func (a *Analyzer) Dashboard(ctx context.Context, userID string) (_ *Dashboard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.hoopstats.dashboard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	list, err := a.snapshot(ctx, ListParams{UserID: userID})
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		UserID:     userID,
		Categories: []CategoryDashboard{},
	}
	for _, category := range trend.Categories {
		categoryList := trend.ForCategory(list, category)
		if len(categoryList) == 0 {
			continue
		}

		evaluation, err := a.evaluator.Evaluate(category, categoryList)
		if err != nil {
			return nil, err
		}
		if err := checkVerdicts(evaluation.Verdicts); err != nil {
			return nil, err
		}
		latest := a.evaluator.LatestSummary(categoryList)
		if err := checkLatest(latest); err != nil {
			return nil, err
		}

		dashboard.Categories = append(dashboard.Categories, CategoryDashboard{
			Category: category,
			Title:    category.Title(),
			Latest:   latest,
			Verdicts: evaluation.Verdicts,
			Score:    evaluation.Score,
		})
	}

	return dashboard, nil
}

// checkFinite rejects stored values that can be neither compared nor encoded,
// such as a NaN typed into a flat file by hand.
func checkFinite(metric string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: metric [%s]: stored value %v", trend.ErrInvalidMeasurement, metric, v)
		}
	}
	return nil
}

func checkLatest(latest map[string]float64) error {
	metrics := make([]string, 0, len(latest))
	for metric := range latest {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	for _, metric := range metrics {
		if err := checkFinite(metric, latest[metric]); err != nil {
			return err
		}
	}
	return nil
}

func checkVerdicts(verdicts map[string]trend.Verdict) error {
	for metric, v := range verdicts {
		if err := checkFinite(metric, v.PreviousValue, v.LatestValue); err != nil {
			return err
		}
	}
	return nil
}
