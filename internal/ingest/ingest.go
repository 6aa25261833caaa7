package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-ad-insights/internal/dataset"
	"go-ad-insights/internal/model"
	"go-ad-insights/pkg/utils"
)

// Loader reads a source into an in-memory dataset. Remote fetches are retried
// with exponential backoff; everything after the fetch is deterministic.
type Loader struct {
	Client  *http.Client
	Retries int
	Log     *zap.Logger
}

func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		Client: &http.Client{Timeout: 30 * time.Second},
		Log:    log,
	}
}

// Load ingests a single source and validates its required columns.
func (l *Loader) Load(ctx context.Context, src model.Source) (*dataset.Table, error) {
	l.Log.Info("starting ingestion", zap.String("url", src.URL), zap.String("type", src.Type))

	var (
		table *dataset.Table
		err   error
	)
	switch strings.ToLower(src.Type) {
	case "csv", "":
		table, err = l.loadCSV(ctx, src.URL)
	case "json":
		table, err = l.loadJSON(ctx, src.URL)
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := dataset.RequireColumns(table, src.RequiredColumns...); err != nil {
		return nil, err
	}

	l.Log.Info("ingestion finished",
		zap.String("url", src.URL),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", len(table.Columns())))
	if table.NumRows() == 0 {
		l.Log.Warn("source has no rows, statistics will be all-missing", zap.String("url", src.URL))
	}
	return table, nil
}

// open returns a reader for a local path or an http(s) URL. Remote fetches
// get Retries extra attempts with doubling backoff.
func (l *Loader) open(ctx context.Context, pathOrURL string) (io.ReadCloser, error) {
	if !strings.HasPrefix(pathOrURL, "http") {
		f, err := os.Open(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open source file: %w", err)
		}
		return f, nil
	}

	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= l.Retries; attempt++ {
		if attempt > 0 {
			l.Log.Warn("retrying fetch",
				zap.String("url", pathOrURL),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %s", resp.Status)
			continue
		}
		return resp.Body, nil
	}
	return nil, fmt.Errorf("failed to fetch %s: %w", pathOrURL, lastErr)
}

func (l *Loader) loadCSV(ctx context.Context, pathOrURL string) (*dataset.Table, error) {
	rc, err := l.open(ctx, pathOrURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCSV(rc)
}

// ReadCSV parses CSV into a typed table. Headers are trimmed and stripped of
// stray quotes; cells are normalized (trim, missing markers, numeric parse).
func ReadCSV(r io.Reader) (*dataset.Table, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err == io.EOF {
		return dataset.NewTable(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		headers[i] = strings.ReplaceAll(h, `"`, "")
	}

	table := dataset.NewTable(headers)
	row := make(map[string]dataset.Value, len(headers))
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}
		for i, h := range headers {
			if i < len(record) {
				row[h] = parseCell(record[i])
			} else {
				row[h] = dataset.Missing()
			}
		}
		table.AppendRow(row)
	}
}

func (l *Loader) loadJSON(ctx context.Context, pathOrURL string) (*dataset.Table, error) {
	rc, err := l.open(ctx, pathOrURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadJSON(rc)
}

// ReadJSON parses a JSON array of flat objects. Object key order is not
// preserved by the decoder, so the schema is the sorted union of keys.
func ReadJSON(r io.Reader) (*dataset.Table, error) {
	var raw []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	keys := make(map[string]bool)
	for _, obj := range raw {
		for k := range obj {
			keys[k] = true
		}
	}
	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	table := dataset.NewTable(headers)
	row := make(map[string]dataset.Value, len(headers))
	for _, obj := range raw {
		for _, h := range headers {
			row[h] = jsonValue(obj[h])
		}
		table.AppendRow(row)
	}
	return table, nil
}

// parseCell normalizes one raw CSV cell into a typed value.
func parseCell(s string) dataset.Value {
	if utils.IsMissing(s) {
		return dataset.Missing()
	}
	if f, ok := utils.ParseNumeric(s); ok {
		return dataset.Number(f)
	}
	return dataset.Text(strings.TrimSpace(s))
}

func jsonValue(v interface{}) dataset.Value {
	switch x := v.(type) {
	case nil:
		return dataset.Missing()
	case float64:
		return dataset.Number(x)
	case string:
		return parseCell(x)
	case bool:
		if x {
			return dataset.Text("true")
		}
		return dataset.Text("false")
	default:
		return dataset.Text(fmt.Sprintf("%v", x))
	}
}
