package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-ad-insights/internal/stats"
	"go-ad-insights/pkg/utils"
)

// ExportResult describes one completed export operation.
type ExportResult struct {
	Type        string    `json:"type"` // "file"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

var csvHeader = []string{
	"group_by", "group", "column", "kind", "count",
	"mean", "min", "max", "std_dev",
	"unique_count", "mode", "mode_count",
}

// FlatRow is the flattened (group, column, summary) record shared by the CSV
// and JSON exports and the job store. Undefined numeric statistics are nil so
// they survive JSON encoding (NaN does not).
type FlatRow struct {
	GroupBy     string   `json:"group_by"`
	Group       string   `json:"group"`
	Column      string   `json:"column"`
	Kind        string   `json:"kind"`
	Count       int      `json:"count"`
	Mean        *float64 `json:"mean,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	StdDev      *float64 `json:"std_dev,omitempty"`
	UniqueCount int      `json:"unique_count"`
	Mode        *string  `json:"mode,omitempty"`
	ModeCount   int      `json:"mode_count"`
}

// Flatten turns a set of reports (one per grouping granularity) into flat
// rows in their stable order. For grouped reports only the grouped entries
// are emitted; the whole-dataset entry comes from the report whose GroupBy is
// empty, so the export never duplicates it across granularities.
func Flatten(reports []*stats.Report) []FlatRow {
	var out []FlatRow
	for _, r := range reports {
		if len(r.GroupBy) == 0 {
			for _, col := range r.ColumnOrder {
				out = append(out, flatRow("", "overall", col, r.Overall.Columns[col]))
			}
			continue
		}
		groupBy := strings.Join(r.GroupBy, ",")
		for _, g := range r.Groups {
			for _, col := range r.ColumnOrder {
				out = append(out, flatRow(groupBy, GroupLabel(r.GroupBy, g.Key), col, g.Columns[col]))
			}
		}
	}
	return out
}

func flatRow(groupBy, label, col string, s *stats.ColumnSummary) FlatRow {
	fr := FlatRow{
		GroupBy: groupBy,
		Group:   label,
		Column:  col,
		Count:   s.Count,
	}
	if s.Kind == stats.Numeric {
		fr.Kind = "numeric"
		fr.Mean = optFloat(s.Mean)
		fr.Min = optFloat(s.Min)
		fr.Max = optFloat(s.Max)
		fr.StdDev = optFloat(s.StdDev)
	} else {
		fr.Kind = "categorical"
		fr.UniqueCount = s.UniqueCount
		if s.HasMode {
			mode := s.Mode
			fr.Mode = &mode
			fr.ModeCount = s.ModeCount
		}
	}
	return fr
}

func optFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// WriteCSV writes the flat rows as a single CSV table, one row per
// (group, column). Undefined statistics become empty cells.
func WriteCSV(w io.Writer, rows []FlatRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.GroupBy, r.Group, r.Column, r.Kind, strconv.Itoa(r.Count),
			cell(r.Mean), cell(r.Min), cell(r.Max), cell(r.StdDev),
			strconv.Itoa(r.UniqueCount), cellStr(r.Mode), strconv.Itoa(r.ModeCount),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return utils.FormatFloat(*v)
}

func cellStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// WriteJSON writes the flat rows wrapped in an export envelope.
func WriteJSON(w io.Writer, jobID string, rows []FlatRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	payload := map[string]interface{}{
		"export_info": map[string]interface{}{
			"job_id":       jobID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(rows),
			"export_type":  "descriptive_statistics",
		},
		"data": rows,
	}
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportFile writes the flat rows to path, choosing the format from the
// extension (CSV unless .json).
func ExportFile(jobID, path string, rows []FlatRow) ExportResult {
	result := ExportResult{
		Type:        "file",
		Path:        path,
		RecordCount: len(rows),
		ExportedAt:  time.Now(),
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			result.Error = fmt.Sprintf("failed to create directory: %v", err)
			return result
		}
	}
	f, err := os.Create(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create file: %v", err)
		return result
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = WriteJSON(f, jobID, rows)
	default:
		err = WriteCSV(f, rows)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	return result
}
