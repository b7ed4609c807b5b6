package observations

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
)

var ErrInvalidObservation = errors.New("invalid observation")

// Observation is a stored measurement: the trend observation plus the
// owner and the entry (form submission) it came with.
type Observation struct {
	ID      int    `json:"id"`
	EntryID string `json:"entryId"`
	UserID  string `json:"userId"`
	trend.Observation
}

func (o Observation) Validate() error {
	switch {
	case !o.Category.IsValid():
		return fmt.Errorf("%w: unknown category [%s]", ErrInvalidObservation, o.Category)
	case strings.TrimSpace(o.Metric) == "":
		return fmt.Errorf("%w: metric empty", ErrInvalidObservation)
	case math.IsNaN(o.Value) || math.IsInf(o.Value, 0):
		return fmt.Errorf("%w: [%s] value not a number", ErrInvalidObservation, o.Metric)
	case o.Value < 0:
		return fmt.Errorf("%w: [%s] negative value %v", ErrInvalidObservation, o.Metric, o.Value)
	case o.RecordedAt.IsZero():
		return fmt.Errorf("%w: [%s] recorded at not set", ErrInvalidObservation, o.Metric)
	}
	return nil
}

// ListParams filters observations. Zero values do not filter.
type ListParams struct {
	UserID   string
	Category trend.Category
	Metric   string
	From     *time.Time
	To       *time.Time
}

func (p ListParams) matches(o Observation) bool {
	if p.UserID != "" && o.UserID != p.UserID {
		return false
	}
	if p.Category != "" && o.Category != p.Category {
		return false
	}
	if p.Metric != "" && o.Metric != p.Metric {
		return false
	}
	if p.From != nil && o.RecordedAt.Before(*p.From) {
		return false
	}
	if p.To != nil && o.RecordedAt.After(*p.To) {
		return false
	}
	return true
}

func (p ListParams) cacheKey() []byte {
	var from, to int64
	if p.From != nil {
		from = p.From.UnixNano()
	}
	if p.To != nil {
		to = p.To.UnixNano()
	}
	return []byte(fmt.Sprintf("obs|%s|%s|%s|%d|%d", p.UserID, p.Category, p.Metric, from, to))
}

// ToTrend strips storage details, keeping the order of list.
func ToTrend(list []Observation) []trend.Observation {
	out := make([]trend.Observation, 0, len(list))
	for _, o := range list {
		out = append(out, o.Observation)
	}
	return out
}

func validateAll(list []Observation) error {
	for _, o := range list {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}
