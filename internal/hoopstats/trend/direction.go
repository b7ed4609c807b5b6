package trend

import (
	"sort"
	"strings"
)

// Direction tells which way a metric improves.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower-is-better"
	}
	return "higher-is-better"
}

// TimingMetrics are the drill and sprint times, where a smaller value is better.
// Every other metric is treated as higher-is-better.
var TimingMetrics = []string{
	"21 Points Drill Time",
	"10 Layups Time",
	"17s Drill Time",
	"1 Suicide Time",
	"5 Suicides Time",
}

var defaultRules = NewDirectionRules()

// DirectionRules maps metric names to their Direction.
// A DirectionRules is immutable after construction and safe for concurrent use.
type DirectionRules struct {
	lowerIsBetter map[string]bool
}

// NewDirectionRules builds rules from TimingMetrics plus any extra lower-is-better metrics.
func NewDirectionRules(extraLowerIsBetter ...string) *DirectionRules {
	r := &DirectionRules{
		lowerIsBetter: make(map[string]bool, len(TimingMetrics)+len(extraLowerIsBetter)),
	}
	for _, m := range TimingMetrics {
		r.lowerIsBetter[normalizeMetric(m)] = true
	}
	for _, m := range extraLowerIsBetter {
		if n := normalizeMetric(m); n != "" {
			r.lowerIsBetter[n] = true
		}
	}
	return r
}

// DefaultDirectionRules returns the rules built only from TimingMetrics.
func DefaultDirectionRules() *DirectionRules {
	return defaultRules
}

func (r *DirectionRules) Direction(metric string) Direction {
	if r.lowerIsBetter[normalizeMetric(metric)] {
		return LowerIsBetter
	}
	return HigherIsBetter
}

func (r *DirectionRules) IsLowerBetter(metric string) bool {
	return r.Direction(metric) == LowerIsBetter
}

// LowerIsBetterMetrics returns the normalized lower-is-better names, sorted.
func (r *DirectionRules) LowerIsBetterMetrics() []string {
	names := make([]string, 0, len(r.lowerIsBetter))
	for n := range r.lowerIsBetter {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsLowerBetter reports whether smaller values of metric are better, using the default rules.
func IsLowerBetter(metric string) bool {
	return defaultRules.IsLowerBetter(metric)
}

// normalizeMetric folds case and collapses whitespace, so "17s  drill time " matches "17s Drill Time".
func normalizeMetric(metric string) string {
	return strings.ToLower(strings.Join(strings.Fields(metric), " "))
}
