package observations

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var csvHeader = []string{"user_id", "entry_id", "category", "metric", "value", "recorded_at"}

// CsvRepo is a local flat file store, one observation per row.
// Row numbers (header excluded) are used as observation IDs.
type CsvRepo struct {
	path  string
	mutex sync.Mutex
}

func NewCsvRepo(path string) *CsvRepo {
	return &CsvRepo{
		path: path,
	}
}

func (r *CsvRepo) Add(ctx context.Context, list []Observation) (_ []Observation, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.csv.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("observations.count", len(list)))

	if err := validateAll(list); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, err := r.readAll()
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", r.path, closeErr)
		}
	}()

	w := csv.NewWriter(f)
	if existing == nil {
		if err := w.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	added := make([]Observation, 0, len(list))
	nextID := len(existing) + 1
	for _, o := range list {
		if err := w.Write([]string{
			o.UserID,
			o.EntryID,
			string(o.Category),
			o.Metric,
			strconv.FormatFloat(o.Value, 'f', -1, 64),
			o.RecordedAt.UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
		o.ID = nextID
		nextID++
		added = append(added, o)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	return added, nil
}

// ListAll returns the matching observations in file order.
func (r *CsvRepo) ListAll(ctx context.Context, params ListParams) (_ []Observation, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.csv.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mutex.Lock()
	all, err := r.readAll()
	r.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	var list []Observation
	for _, o := range all {
		if params.matches(o) {
			list = append(list, o)
		}
	}
	span.SetAttributes(attribute.Int("observations.count", len(list)))

	return list, nil
}

// readAll returns nil (not an empty slice) when the file does not exist or has no header yet.
func (r *CsvRepo) readAll() ([]Observation, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(csvHeader)

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	all := []Observation{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		o, err := record2observation(record)
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		o.ID = len(all) + 1
		all = append(all, o)
	}

	return all, nil
}

func record2observation(record []string) (Observation, error) {
	value, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return Observation{}, fmt.Errorf("value [%s]: %w", record[4], err)
	}
	recordedAt, err := time.Parse(time.RFC3339Nano, record[5])
	if err != nil {
		return Observation{}, fmt.Errorf("recorded at [%s]: %w", record[5], err)
	}

	return Observation{
		UserID:  record[0],
		EntryID: record[1],
		Observation: trend.Observation{
			Category:   trend.Category(record[2]),
			Metric:     record[3],
			Value:      value,
			RecordedAt: recordedAt,
		},
	}, nil
}
