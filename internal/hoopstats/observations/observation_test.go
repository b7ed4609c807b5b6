package observations_test

import (
	"math"
	"testing"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/stretchr/testify/assert"
)

func TestObservation_Validate(t *testing.T) {
	valid := obs(trend.CategoryGames, "Points", 12, t0)
	assert.NoError(t, valid.Validate())

	zero := obs(trend.CategoryGames, "Steals", 0, t0)
	assert.NoError(t, zero.Validate())

	for name, o := range map[string]observations.Observation{
		"unknown category": obs("chess", "Points", 1, t0),
		"empty metric":     obs(trend.CategoryGames, "  ", 1, t0),
		"nan":              obs(trend.CategoryGames, "Points", math.NaN(), t0),
		"inf":              obs(trend.CategoryGames, "Points", math.Inf(1), t0),
		"negative":         obs(trend.CategoryGames, "Points", -4, t0),
		"no time":          obs(trend.CategoryGames, "Points", 4, time.Time{}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, o.Validate(), observations.ErrInvalidObservation)
		})
	}
}

func TestToTrend(t *testing.T) {
	list := []observations.Observation{
		obs(trend.CategoryGames, "Points", 12, t1),
		obs(trend.CategoryGames, "Points", 10, t0),
	}
	list[0].ID = 7

	out := observations.ToTrend(list)
	assert.Equal(t, []trend.Observation{list[0].Observation, list[1].Observation}, out)
	assert.Empty(t, observations.ToTrend(nil))
}
