package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type reportOptions struct {
	// empty means every category with data
	Categories []trend.Category
	Colored    bool
}

var reportHeaders = []string{"Metric", "Previous", "Latest", "Verdict"}

func renderReport(w io.Writer, dashboard *observations.Dashboard, opts reportOptions) error {
	wanted := map[trend.Category]bool{}
	for _, c := range opts.Categories {
		wanted[c] = true
	}

	printed := 0
	for _, category := range dashboard.Categories {
		if len(wanted) > 0 && !wanted[category.Category] {
			continue
		}
		if err := renderCategory(w, category, opts.Colored); err != nil {
			return fmt.Errorf("render [%s]: %w", category.Category, err)
		}
		printed++
	}

	if printed == 0 {
		_, err := fmt.Fprintf(w, "no training data logged for [%s]\n", dashboard.UserID)
		return err
	}
	return nil
}

func renderCategory(w io.Writer, category observations.CategoryDashboard, colored bool) error {
	var err error
	if colored {
		_, err = color.New(color.Bold).Fprintln(w, category.Title)
	} else {
		_, err = fmt.Fprintln(w, category.Title)
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("=", len(category.Title))); err != nil {
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(reportHeaders)
	for _, row := range categoryRows(category, colored) {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row [%s]: %w", row[0], err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	improving := 0
	for _, verdict := range category.Verdicts {
		if verdict.Improving {
			improving++
		}
	}
	_, err = fmt.Fprintf(w, "Score: %+d (%d improving, %d not)\n\n", category.Score, improving, len(category.Verdicts)-improving)
	return err
}

// categoryRows lists every metric with a latest value, in name order. Metrics logged only
// once have no previous value and no verdict.
func categoryRows(category observations.CategoryDashboard, colored bool) [][]string {
	metrics := make([]string, 0, len(category.Latest))
	for metric := range category.Latest {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	rows := make([][]string, 0, len(metrics))
	for _, metric := range metrics {
		verdict, evaluated := category.Verdicts[metric]
		if !evaluated {
			rows = append(rows, []string{metric, "-", formatValue(category.Latest[metric]), "-"})
			continue
		}
		rows = append(rows, []string{
			metric,
			formatValue(verdict.PreviousValue),
			formatValue(verdict.LatestValue),
			verdictMark(verdict.Improving, colored),
		})
	}
	return rows
}

func verdictMark(improving, colored bool) string {
	if improving {
		if colored {
			return color.GreenString("✅")
		}
		return "✅"
	}
	if colored {
		return color.RedString("❌")
	}
	return "❌"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
