package trend

import (
	"time"
)

// PointTrend marks a chart point relative to the one before it.
type PointTrend string

const (
	PointNeutral   PointTrend = "neutral"
	PointImproving PointTrend = "improving"
	PointDeclining PointTrend = "declining"
)

type SeriesPoint struct {
	RecordedAt time.Time  `json:"recordedAt"`
	Value      float64    `json:"value"`
	Trend      PointTrend `json:"trend"`
}

// MetricSeries returns the chronological series of metric. The first point is neutral,
// every later one is improving or declining against its predecessor.
func (e *Evaluator) MetricSeries(observations []Observation, metric string) ([]SeriesPoint, error) {
	_, groups := groupByMetric(observations)
	group := groups[metric]
	points := make([]SeriesPoint, 0, len(group))
	for i, o := range group {
		point := SeriesPoint{
			RecordedAt: o.RecordedAt,
			Value:      o.Value,
			Trend:      PointNeutral,
		}
		if i > 0 {
			improving, err := e.PairwiseTrend(metric, group[i-1].Value, o.Value)
			if err != nil {
				return nil, err
			}
			point.Trend = PointDeclining
			if improving {
				point.Trend = PointImproving
			}
		}
		points = append(points, point)
	}
	return points, nil
}
