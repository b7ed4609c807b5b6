package trend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidMeasurement is returned when a NaN value takes part in a comparison.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// Observation is one timestamped measurement of one metric.
type Observation struct {
	Category   Category  `json:"category"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Verdict is the improving/declining judgement for the two most recent observations of a metric.
type Verdict struct {
	Metric        string  `json:"metric"`
	PreviousValue float64 `json:"previousValue"`
	LatestValue   float64 `json:"latestValue"`
	Improving     bool    `json:"improving"`
}

// Evaluation bundles the verdicts and the score of one category.
type Evaluation struct {
	Category Category           `json:"category"`
	Verdicts map[string]Verdict `json:"verdicts"`
	Score    int                `json:"score"`
}

// Evaluator computes summaries and trends over in-memory observation snapshots.
// It keeps no state between calls and never modifies its input.
type Evaluator struct {
	rules *DirectionRules
}

var defaultEvaluator = NewEvaluator(nil)

// NewEvaluator returns an evaluator using rules, or the default rules when nil.
func NewEvaluator(rules *DirectionRules) *Evaluator {
	if rules == nil {
		rules = DefaultDirectionRules()
	}
	return &Evaluator{
		rules: rules,
	}
}

func (e *Evaluator) Rules() *DirectionRules {
	return e.rules
}

// PairwiseTrend reports whether going from previous to latest is an improvement for metric.
// Equal values are never an improvement.
func (e *Evaluator) PairwiseTrend(metric string, previous, latest float64) (bool, error) {
	if math.IsNaN(previous) || math.IsNaN(latest) {
		return false, fmt.Errorf("%w: metric [%s]: previous %v, latest %v", ErrInvalidMeasurement, metric, previous, latest)
	}

	if e.rules.IsLowerBetter(metric) {
		return latest < previous, nil
	}
	return latest > previous, nil
}

// LatestSummary returns the chronologically last value of every metric present in observations.
func (e *Evaluator) LatestSummary(observations []Observation) map[string]float64 {
	metrics, groups := groupByMetric(observations)
	summary := make(map[string]float64, len(metrics))
	for _, metric := range metrics {
		group := groups[metric]
		summary[metric] = group[len(group)-1].Value
	}
	return summary
}

// EvaluateCategory compares the last two observations of every metric having at least two,
// and returns the verdicts together with the score (improving minus non-improving).
func (e *Evaluator) EvaluateCategory(observations []Observation) (map[string]Verdict, int, error) {
	metrics, groups := groupByMetric(observations)
	verdicts := make(map[string]Verdict, len(metrics))
	score := 0
	for _, metric := range metrics {
		group := groups[metric]
		if len(group) < 2 {
			continue
		}

		previous := group[len(group)-2].Value
		latest := group[len(group)-1].Value
		improving, err := e.PairwiseTrend(metric, previous, latest)
		if err != nil {
			return nil, 0, err
		}

		verdicts[metric] = Verdict{
			Metric:        metric,
			PreviousValue: previous,
			LatestValue:   latest,
			Improving:     improving,
		}
		if improving {
			score++
		} else {
			score--
		}
	}

	return verdicts, score, nil
}

// Evaluate runs EvaluateCategory over the observations belonging to category.
func (e *Evaluator) Evaluate(category Category, observations []Observation) (*Evaluation, error) {
	verdicts, score, err := e.EvaluateCategory(ForCategory(observations, category))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", category, err)
	}
	return &Evaluation{
		Category: category,
		Verdicts: verdicts,
		Score:    score,
	}, nil
}

// ForCategory returns a new slice with the observations of category, keeping their order.
func ForCategory(observations []Observation, category Category) []Observation {
	var filtered []Observation
	for _, o := range observations {
		if o.Category == category {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// groupByMetric returns the metric names in first-seen order and, per metric, a fresh slice
// of its observations sorted by RecordedAt. Equal timestamps keep the input order.
func groupByMetric(observations []Observation) ([]string, map[string][]Observation) {
	var metrics []string
	groups := make(map[string][]Observation)
	for _, o := range observations {
		if _, ok := groups[o.Metric]; !ok {
			metrics = append(metrics, o.Metric)
		}
		groups[o.Metric] = append(groups[o.Metric], o)
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].RecordedAt.Before(group[j].RecordedAt)
		})
	}

	return metrics, groups
}

func PairwiseTrend(metric string, previous, latest float64) (bool, error) {
	return defaultEvaluator.PairwiseTrend(metric, previous, latest)
}

func LatestSummary(observations []Observation) map[string]float64 {
	return defaultEvaluator.LatestSummary(observations)
}

func EvaluateCategory(observations []Observation) (map[string]Verdict, int, error) {
	return defaultEvaluator.EvaluateCategory(observations)
}
