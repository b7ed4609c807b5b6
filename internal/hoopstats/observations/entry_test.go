package observations_test

import (
	"strings"
	"testing"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDrillTime(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: "42.7", want: 42.7},
		{in: "1:05", want: 65},
		{in: "1:05.5", want: 65.5},
		{in: " 2:30 ", want: 150},
		{in: "0:59", want: 59},
		{in: "1:5", wantErr: true},
		{in: "1:60", wantErr: true},
		{in: "0:75", wantErr: true},
		{in: "75", want: 75},
		{in: "-1:10", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := observations.ParseDrillTime(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, observations.ErrInvalidEntry)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got.Seconds(), 1e-9)
		})
	}
}

func TestShotAttempts_Percentage(t *testing.T) {
	pct, ok, err := observations.ShotAttempts{Made: 1, Attempted: 3}.Percentage()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 33.33, pct)

	pct, ok, err = observations.ShotAttempts{Made: 5, Attempted: 5}.Percentage()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100.0, pct)

	_, ok, err = observations.ShotAttempts{}.Percentage()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = observations.ShotAttempts{Made: 4, Attempted: 3}.Percentage()
	assert.ErrorIs(t, err, observations.ErrInvalidEntry)

	_, _, err = observations.ShotAttempts{Made: -1, Attempted: 3}.Percentage()
	assert.ErrorIs(t, err, observations.ErrInvalidEntry)
}

func TestDecodeEntry(t *testing.T) {
	entry, err := observations.DecodeEntry(trend.CategoryConditioning, strings.NewReader(
		`{"seventeenDrill": "1:02", "fiveSuicides": 171.5, "slidesIn30s": 24}`,
	))
	require.NoError(t, err)
	assert.Equal(t, trend.CategoryConditioning, entry.Category())
	assert.Nil(t, entry.When())

	conditioning, ok := entry.(*observations.ConditioningEntry)
	require.True(t, ok)
	assert.Equal(t, 62.0, conditioning.SeventeenDrill.Seconds())
	assert.Equal(t, 171.5, conditioning.FiveSuicides.Seconds())
	assert.Nil(t, conditioning.OneSuicide)

	_, err = observations.DecodeEntry(trend.CategoryConditioning, strings.NewReader(`{"seventeenDrill": true}`))
	assert.ErrorIs(t, err, observations.ErrInvalidEntry)

	_, err = observations.DecodeEntry(trend.CategoryDribbling, strings.NewReader(`{"points": 3}`))
	assert.ErrorIs(t, err, observations.ErrInvalidEntry)

	_, err = observations.DecodeEntry("swimming", strings.NewReader(`{}`))
	assert.ErrorIs(t, err, trend.ErrInvalidCategory)
}

func TestEntryObservations(t *testing.T) {
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	entry, err := observations.DecodeEntry(trend.CategoryPractice, strings.NewReader(`{
		"twentyOnePointsDrill": "2:10",
		"shotsAroundKeyMade": 9,
		"threePointers": {"made": 0, "attempted": 0},
		"midRange": {"made": 7, "attempted": 10}
	}`))
	require.NoError(t, err)

	list, err := observations.EntryObservations(entry, "coach", now)
	require.NoError(t, err)

	values := map[string]float64{}
	for _, o := range list {
		assert.Equal(t, "coach", o.UserID)
		assert.Equal(t, trend.CategoryPractice, o.Category)
		assert.Equal(t, now.UTC(), o.RecordedAt)
		assert.Equal(t, list[0].EntryID, o.EntryID)
		values[o.Metric] = o.Value
	}
	// no 3 point percentage without attempts, made is still logged
	assert.Equal(t, map[string]float64{
		observations.MetricTwentyOneDrill: 130,
		observations.MetricShotsAroundKey: 9,
		observations.MetricThreesMade:     0,
		observations.MetricMidRangePct:    70,
	}, values)
	assert.NotEmpty(t, list[0].EntryID)

	other, err := observations.EntryObservations(entry, "coach", now)
	require.NoError(t, err)
	assert.NotEqual(t, list[0].EntryID, other[0].EntryID)
}

func TestEntryObservations_RecordedAt(t *testing.T) {
	entry, err := observations.DecodeEntry(trend.CategoryDribbling, strings.NewReader(
		`{"recordedAt": "2026-02-10T17:00:00+01:00", "twoBallMinutes": 15}`,
	))
	require.NoError(t, err)

	list, err := observations.EntryObservations(entry, "coach", time.Now())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, time.Date(2026, 2, 10, 16, 0, 0, 0, time.UTC), list[0].RecordedAt)
	assert.Equal(t, observations.MetricTwoBallDribbling, list[0].Metric)
}

func TestEntryObservations_Invalid(t *testing.T) {
	for _, tc := range []struct {
		category trend.Category
		body     string
	}{
		{category: trend.CategoryGames, body: `{}`},
		{category: trend.CategoryGames, body: `{"points": -2}`},
		{category: trend.CategoryGames, body: `{"twoPointers": {"made": 3, "attempted": 2}}`},
		{category: trend.CategoryDribbling, body: `{"oneBallMinutes": -0.5}`},
	} {
		entry, err := observations.DecodeEntry(tc.category, strings.NewReader(tc.body))
		require.NoError(t, err, tc.body)

		_, err = observations.EntryObservations(entry, "coach", time.Now())
		assert.ErrorIs(t, err, observations.ErrInvalidEntry, tc.body)
	}
}
