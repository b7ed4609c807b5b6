package observations

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetsDateLayout = "2006-01-02 15:04:05"

var (
	sheetsHeader          = []interface{}{"Date", "Metric", "Value", "User", "Entry"}
	sheetsUpdatedRangeRgx = regexp.MustCompile(`![A-Z]+(\d+)`)
)

// SheetsRepo stores observations in a spreadsheet, one worksheet per category.
// Worksheets are created on demand, with a header row. Observation IDs are sheet row numbers,
// so they are only unique within a category.
type SheetsRepo struct {
	service       *sheets.Service
	spreadsheetID string

	mutex       sync.Mutex
	knownSheets map[string]bool
}

func NewSheetsRepo(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsRepo, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new sheets service: %w", err)
	}
	return &SheetsRepo{
		service:       service,
		spreadsheetID: spreadsheetID,
		knownSheets:   map[string]bool{},
	}, nil
}

func (r *SheetsRepo) Add(ctx context.Context, list []Observation) (_ []Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.sheets.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("observations.count", len(list)))

	if err := validateAll(list); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	var categories []trend.Category
	byCategory := map[trend.Category][]int{}
	for i, o := range list {
		if _, ok := byCategory[o.Category]; !ok {
			categories = append(categories, o.Category)
		}
		byCategory[o.Category] = append(byCategory[o.Category], i)
	}

	added := make([]Observation, len(list))
	copy(added, list)
	for _, category := range categories {
		title := category.Title()
		if err := r.ensureSheet(ctx, title); err != nil {
			return nil, err
		}

		indexes := byCategory[category]
		rows := make([][]interface{}, 0, len(indexes))
		for _, i := range indexes {
			o := list[i]
			rows = append(rows, []interface{}{
				o.RecordedAt.UTC().Format(sheetsDateLayout),
				o.Metric,
				o.Value,
				o.UserID,
				o.EntryID,
			})
		}

		resp, err := r.service.Spreadsheets.Values.
			Append(r.spreadsheetID, a1Range(title, "A:E"), &sheets.ValueRange{Values: rows}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("append to sheet [%s]: %w", title, err)
		}

		if resp.Updates != nil {
			if firstRow, ok := firstUpdatedRow(resp.Updates.UpdatedRange); ok {
				for n, i := range indexes {
					added[i].ID = firstRow + n
				}
			}
		}
	}

	return added, nil
}

// ListAll returns the matching observations, worksheet by worksheet in row order.
func (r *SheetsRepo) ListAll(ctx context.Context, params ListParams) (_ []Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.sheets.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	categories := trend.Categories
	if params.Category != "" {
		categories = []trend.Category{params.Category}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.loadSheetTitles(ctx); err != nil {
		return nil, err
	}

	var list []Observation
	for _, category := range categories {
		title := category.Title()
		if !r.knownSheets[title] {
			continue
		}

		// unformatted values keep numbers independent of the spreadsheet locale
		resp, err := r.service.Spreadsheets.Values.
			Get(r.spreadsheetID, a1Range(title, "A2:E")).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("get sheet [%s] values: %w", title, err)
		}

		for i, row := range resp.Values {
			o, err := sheetRow2observation(category, row)
			if err != nil {
				log.Warnf("sheets repo: skipping [%s] row %d: %s", title, i+2, err)
				continue
			}
			o.ID = i + 2
			if params.matches(o) {
				list = append(list, o)
			}
		}
	}
	span.SetAttributes(attribute.Int("observations.count", len(list)))

	return list, nil
}

func (r *SheetsRepo) loadSheetTitles(ctx context.Context) error {
	spreadsheet, err := r.service.Spreadsheets.
		Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			r.knownSheets[s.Properties.Title] = true
		}
	}
	return nil
}

func (r *SheetsRepo) ensureSheet(ctx context.Context, title string) error {
	if r.knownSheets[title] {
		return nil
	}
	if err := r.loadSheetTitles(ctx); err != nil {
		return err
	}
	if r.knownSheets[title] {
		return nil
	}

	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}}},
		},
	}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet [%s]: %w", title, err)
	}

	if _, err := r.service.Spreadsheets.Values.
		Update(r.spreadsheetID, a1Range(title, "A1:E1"), &sheets.ValueRange{
			Values: [][]interface{}{sheetsHeader},
		}).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("write sheet [%s] header: %w", title, err)
	}

	log.Debugf("sheets repo: created worksheet [%s]", title)
	r.knownSheets[title] = true
	return nil
}

func sheetRow2observation(category trend.Category, row []interface{}) (Observation, error) {
	if len(row) < 3 {
		return Observation{}, fmt.Errorf("expected at least 3 cells, got %d", len(row))
	}

	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}

	recordedAt, err := time.ParseInLocation(sheetsDateLayout, cell(0), time.UTC)
	if err != nil {
		return Observation{}, fmt.Errorf("date [%s]: %w", cell(0), err)
	}
	value, err := cellFloat(row[2])
	if err != nil {
		return Observation{}, err
	}

	return Observation{
		UserID:  cell(3),
		EntryID: cell(4),
		Observation: trend.Observation{
			Category:   category,
			Metric:     cell(1),
			Value:      value,
			RecordedAt: recordedAt,
		},
	}, nil
}

// cellFloat reads a number cell. Unformatted reads return JSON numbers, text cells stay strings.
func cellFloat(cell interface{}) (float64, error) {
	switch v := cell.(type) {
	case float64:
		return v, nil
	case string:
		value, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("value [%s]: %w", v, err)
		}
		return value, nil
	default:
		return 0, fmt.Errorf("value [%v]: unexpected cell type %T", cell, cell)
	}
}

func a1Range(sheetTitle, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheetTitle, "'", "''"), cells)
}

func firstUpdatedRow(updatedRange string) (int, bool) {
	m := sheetsUpdatedRangeRgx.FindStringSubmatch(updatedRange)
	if len(m) < 2 {
		return 0, false
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return row, true
}
