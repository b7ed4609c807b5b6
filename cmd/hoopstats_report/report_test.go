package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/config"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDashboard() *observations.Dashboard {
	return &observations.Dashboard{
		UserID: "coach",
		Categories: []observations.CategoryDashboard{
			{
				Category: trend.CategoryGames,
				Title:    "Games",
				Latest:   map[string]float64{"Points": 14, "Turnovers": 4, "Steals": 2},
				Verdicts: map[string]trend.Verdict{
					"Points":    {Metric: "Points", PreviousValue: 10, LatestValue: 14, Improving: true},
					"Turnovers": {Metric: "Turnovers", PreviousValue: 4, LatestValue: 4, Improving: false},
				},
				Score: 0,
			},
			{
				Category: trend.CategoryConditioning,
				Title:    "Conditioning",
				Latest:   map[string]float64{"17s Drill Time": 58.5},
				Verdicts: map[string]trend.Verdict{
					"17s Drill Time": {Metric: "17s Drill Time", PreviousValue: 61, LatestValue: 58.5, Improving: true},
				},
				Score: 1,
			},
		},
	}
}

func TestCategoryRows(t *testing.T) {
	rows := categoryRows(testDashboard().Categories[0], false)
	assert.Equal(t, [][]string{
		{"Points", "10", "14", "✅"},
		{"Steals", "-", "2", "-"},
		{"Turnovers", "4", "4", "❌"},
	}, rows)
}

func TestRenderReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderReport(&out, testDashboard(), reportOptions{}))

	text := out.String()
	assert.Contains(t, text, "Games")
	assert.Contains(t, text, "Conditioning")
	assert.Contains(t, text, "58.5")
	assert.Contains(t, text, "Score: +0 (1 improving, 1 not)")
	assert.Contains(t, text, "Score: +1 (1 improving, 0 not)")
}

func TestRenderReport_CategoryFilter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderReport(&out, testDashboard(), reportOptions{
		Categories: []trend.Category{trend.CategoryConditioning},
	}))
	assert.NotContains(t, out.String(), "Games")
	assert.Contains(t, out.String(), "Conditioning")

	out.Reset()
	require.NoError(t, renderReport(&out, testDashboard(), reportOptions{
		Categories: []trend.Category{trend.CategoryDribbling},
	}))
	assert.Equal(t, "no training data logged for [coach]\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestRenderReport_WriteFailure(t *testing.T) {
	err := renderReport(failingWriter{}, testDashboard(), reportOptions{})
	assert.ErrorContains(t, err, "render [games]")
	assert.ErrorContains(t, err, "broken pipe")

	err = renderReport(failingWriter{}, testDashboard(), reportOptions{Colored: true})
	assert.ErrorContains(t, err, "broken pipe")
}

func TestLoadConfig_CsvOverride(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "log.csv")

	cfg, err := loadConfig("development", filepath.Join(t.TempDir(), "missing.toml"), csvPath)
	require.NoError(t, err)
	assert.Equal(t, config.StorageCSV, cfg.StorageBackend)
	assert.Equal(t, csvPath, cfg.CsvPath)

	_, err = loadConfig("development", filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)
}

func TestLoadConfig_RepoConfig(t *testing.T) {
	path := filepath.Join("..", "..", "config.toml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("config not found: %s", err)
	}
	cfg, err := loadConfig("production", path, "/tmp/override.csv")
	require.NoError(t, err)
	assert.Equal(t, config.StorageCSV, cfg.StorageBackend)
	assert.Equal(t, "/tmp/override.csv", cfg.CsvPath)
	assert.Equal(t, 5, cfg.LoginRateLimitAllowedPerMin)
}

func TestCheckCsvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hoopstats.csv")

	assert.ErrorContains(t, checkCsvFile(path), "not found")
	require.NoError(t, os.WriteFile(path, []byte("user_id,entry_id,category,metric,value,recorded_at\n"), 0o644))
	assert.NoError(t, checkCsvFile(path))
	assert.ErrorContains(t, checkCsvFile(dir), "is a directory")
}
