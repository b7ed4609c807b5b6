package observations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/google/uuid"
)

var ErrInvalidEntry = errors.New("invalid entry")

// metric names logged by the entry forms
const (
	MetricPoints           = "Points"
	MetricAssists          = "Assists"
	MetricTurnovers        = "Turnovers"
	MetricSteals           = "Steals"
	MetricThreesMade       = "3P Made"
	MetricTwosMade         = "2P Made"
	MetricThreePointPct    = "3 Point %"
	MetricTwoPointPct      = "2 Point %"
	MetricTwentyOneDrill   = "21 Points Drill Time"
	MetricTenLayups        = "10 Layups Time"
	MetricShotsAroundKey   = "Shots Around Key (Made)"
	MetricMidRangePct      = "Mid Range %"
	MetricSeventeenDrill   = "17s Drill Time"
	MetricOneSuicide       = "1 Suicide Time"
	MetricFiveSuicides     = "5 Suicides Time"
	MetricSlides           = "Slides in 30s"
	MetricTwoBallDribbling = "2 Ball Dribble Minutes"
	MetricOneBallDribbling = "1 Ball Dribble Minutes"
)

// Entry is one filled in form of a category. Nil fields were not done and are not logged.
type Entry interface {
	Category() trend.Category
	When() *time.Time
	measurements() ([]measurement, error)
}

type measurement struct {
	metric string
	value  float64
}

// EntryMeta holds the fields shared by all forms.
type EntryMeta struct {
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

func (m EntryMeta) When() *time.Time {
	return m.RecordedAt
}

// DrillTime is a duration in seconds. In JSON it is either a number of seconds
// or a "m:ss" string (e.g. "1:05.5").
type DrillTime float64

func ParseDrillTime(s string) (DrillTime, error) {
	s = strings.TrimSpace(s)
	minutes := 0
	secondsPart := s
	before, after, clockForm := strings.Cut(s, ":")
	if clockForm {
		m, err := strconv.Atoi(before)
		if err != nil || m < 0 {
			return 0, fmt.Errorf("%w: drill time minutes [%s]", ErrInvalidEntry, s)
		}
		minutes = m
		secondsPart = after
		if len(secondsPart) < 2 {
			return 0, fmt.Errorf("%w: drill time seconds [%s]", ErrInvalidEntry, s)
		}
	}

	seconds, err := strconv.ParseFloat(secondsPart, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: drill time seconds [%s]", ErrInvalidEntry, s)
	}
	if clockForm && seconds >= 60 {
		return 0, fmt.Errorf("%w: drill time [%s]: seconds must be below 60", ErrInvalidEntry, s)
	}

	return DrillTime(float64(minutes*60) + seconds), nil
}

func (d *DrillTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseDrillTime(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(b, &seconds); err != nil {
		return fmt.Errorf("%w: drill time [%s]", ErrInvalidEntry, b)
	}
	*d = DrillTime(seconds)
	return nil
}

func (d DrillTime) Seconds() float64 {
	return float64(d)
}

// ShotAttempts is a made/attempted pair.
type ShotAttempts struct {
	Made      int `json:"made"`
	Attempted int `json:"attempted"`
}

// Percentage returns made/attempted in percents with two decimals.
// ok is false with no attempts: there is no percentage to log then.
func (s ShotAttempts) Percentage() (pct float64, ok bool, err error) {
	if s.Made < 0 || s.Attempted < 0 {
		return 0, false, fmt.Errorf("%w: negative shots %d/%d", ErrInvalidEntry, s.Made, s.Attempted)
	}
	if s.Made > s.Attempted {
		return 0, false, fmt.Errorf("%w: made %d more than attempted %d", ErrInvalidEntry, s.Made, s.Attempted)
	}
	if s.Attempted == 0 {
		return 0, false, nil
	}
	return math.Round(float64(s.Made)/float64(s.Attempted)*10000) / 100, true, nil
}

type GamesEntry struct {
	EntryMeta
	Points        *int          `json:"points,omitempty"`
	Assists       *int          `json:"assists,omitempty"`
	Turnovers     *int          `json:"turnovers,omitempty"`
	Steals        *int          `json:"steals,omitempty"`
	ThreePointers *ShotAttempts `json:"threePointers,omitempty"`
	TwoPointers   *ShotAttempts `json:"twoPointers,omitempty"`
}

func (e *GamesEntry) Category() trend.Category {
	return trend.CategoryGames
}

func (e *GamesEntry) measurements() ([]measurement, error) {
	b := &measurementsBuilder{}
	b.count(MetricPoints, e.Points)
	b.count(MetricAssists, e.Assists)
	b.count(MetricTurnovers, e.Turnovers)
	b.count(MetricSteals, e.Steals)
	b.shots(MetricThreesMade, MetricThreePointPct, e.ThreePointers)
	b.shots(MetricTwosMade, MetricTwoPointPct, e.TwoPointers)
	return b.result()
}

type PracticeEntry struct {
	EntryMeta
	TwentyOnePointsDrill *DrillTime    `json:"twentyOnePointsDrill,omitempty"`
	TenLayups            *DrillTime    `json:"tenLayups,omitempty"`
	ShotsAroundKeyMade   *int          `json:"shotsAroundKeyMade,omitempty"`
	ThreePointers        *ShotAttempts `json:"threePointers,omitempty"`
	MidRange             *ShotAttempts `json:"midRange,omitempty"`
}

func (e *PracticeEntry) Category() trend.Category {
	return trend.CategoryPractice
}

func (e *PracticeEntry) measurements() ([]measurement, error) {
	b := &measurementsBuilder{}
	b.drillTime(MetricTwentyOneDrill, e.TwentyOnePointsDrill)
	b.drillTime(MetricTenLayups, e.TenLayups)
	b.count(MetricShotsAroundKey, e.ShotsAroundKeyMade)
	b.shots(MetricThreesMade, MetricThreePointPct, e.ThreePointers)
	b.shots("", MetricMidRangePct, e.MidRange)
	return b.result()
}

type ConditioningEntry struct {
	EntryMeta
	SeventeenDrill *DrillTime `json:"seventeenDrill,omitempty"`
	OneSuicide     *DrillTime `json:"oneSuicide,omitempty"`
	FiveSuicides   *DrillTime `json:"fiveSuicides,omitempty"`
	SlidesIn30s    *int       `json:"slidesIn30s,omitempty"`
}

func (e *ConditioningEntry) Category() trend.Category {
	return trend.CategoryConditioning
}

func (e *ConditioningEntry) measurements() ([]measurement, error) {
	b := &measurementsBuilder{}
	b.drillTime(MetricSeventeenDrill, e.SeventeenDrill)
	b.drillTime(MetricOneSuicide, e.OneSuicide)
	b.drillTime(MetricFiveSuicides, e.FiveSuicides)
	b.count(MetricSlides, e.SlidesIn30s)
	return b.result()
}

type DribblingEntry struct {
	EntryMeta
	TwoBallMinutes *float64 `json:"twoBallMinutes,omitempty"`
	OneBallMinutes *float64 `json:"oneBallMinutes,omitempty"`
}

func (e *DribblingEntry) Category() trend.Category {
	return trend.CategoryDribbling
}

func (e *DribblingEntry) measurements() ([]measurement, error) {
	b := &measurementsBuilder{}
	b.real(MetricTwoBallDribbling, e.TwoBallMinutes)
	b.real(MetricOneBallDribbling, e.OneBallMinutes)
	return b.result()
}

// measurementsBuilder collects measurements, keeping the first error.
type measurementsBuilder struct {
	list []measurement
	err  error
}

func (b *measurementsBuilder) add(metric string, value float64) {
	if b.err != nil {
		return
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		b.err = fmt.Errorf("%w: [%s] invalid value %v", ErrInvalidEntry, metric, value)
		return
	}
	b.list = append(b.list, measurement{metric: metric, value: value})
}

func (b *measurementsBuilder) count(metric string, v *int) {
	if v != nil {
		b.add(metric, float64(*v))
	}
}

func (b *measurementsBuilder) real(metric string, v *float64) {
	if v != nil {
		b.add(metric, *v)
	}
}

func (b *measurementsBuilder) drillTime(metric string, v *DrillTime) {
	if v != nil {
		b.add(metric, v.Seconds())
	}
}

// shots logs made (when madeMetric is set) and the percentage, only when there were attempts.
func (b *measurementsBuilder) shots(madeMetric, pctMetric string, s *ShotAttempts) {
	if s == nil || b.err != nil {
		return
	}
	pct, ok, err := s.Percentage()
	if err != nil {
		b.err = fmt.Errorf("[%s]: %w", pctMetric, err)
		return
	}
	if madeMetric != "" {
		b.add(madeMetric, float64(s.Made))
	}
	if ok {
		b.add(pctMetric, pct)
	}
}

func (b *measurementsBuilder) result() ([]measurement, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.list) == 0 {
		return nil, fmt.Errorf("%w: nothing to log", ErrInvalidEntry)
	}
	return b.list, nil
}

// NewEntry returns an empty form of category.
func NewEntry(category trend.Category) (Entry, error) {
	switch category {
	case trend.CategoryGames:
		return &GamesEntry{}, nil
	case trend.CategoryPractice:
		return &PracticeEntry{}, nil
	case trend.CategoryConditioning:
		return &ConditioningEntry{}, nil
	case trend.CategoryDribbling:
		return &DribblingEntry{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", trend.ErrInvalidCategory, category)
	}
}

// DecodeEntry reads a JSON form of category. Unknown fields are rejected.
func DecodeEntry(category trend.Category, body io.Reader) (Entry, error) {
	entry, err := NewEntry(category)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(entry); err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, err)
	}

	return entry, nil
}

// EntryObservations turns the entry into observations sharing a new entry ID and the
// entry time (now, if the entry has none).
func EntryObservations(entry Entry, userID string, now time.Time) ([]Observation, error) {
	measurements, err := entry.measurements()
	if err != nil {
		return nil, err
	}

	recordedAt := now
	if when := entry.When(); when != nil && !when.IsZero() {
		recordedAt = *when
	}
	recordedAt = recordedAt.UTC()

	entryID := uuid.NewString()
	list := make([]Observation, 0, len(measurements))
	for _, m := range measurements {
		list = append(list, Observation{
			EntryID: entryID,
			UserID:  userID,
			Observation: trend.Observation{
				Category:   entry.Category(),
				Metric:     m.metric,
				Value:      m.value,
				RecordedAt: recordedAt,
			},
		})
	}
	return list, nil
}
