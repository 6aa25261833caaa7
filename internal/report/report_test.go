package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-ad-insights/internal/dataset"
	"go-ad-insights/internal/stats"
)

// sampleReports builds an ungrouped report plus a page_id report over a small
// fixture with one single-row group, so undefined statistics show up.
func sampleReports(t *testing.T) []*stats.Report {
	t.Helper()
	table := dataset.NewTable([]string{"page_id", "spend", "status"})
	rows := []map[string]dataset.Value{
		{"page_id": dataset.Text("A"), "spend": dataset.Number(10), "status": dataset.Text("active")},
		{"page_id": dataset.Text("A"), "spend": dataset.Number(30), "status": dataset.Text("paused")},
		{"page_id": dataset.Text("B"), "spend": dataset.Number(5), "status": dataset.Text("active")},
	}
	for _, r := range rows {
		table.AppendRow(r)
	}
	types := map[string]stats.ColumnType{"spend": stats.Numeric, "status": stats.Categorical}

	overall, err := stats.Aggregate(table, nil, types)
	require.NoError(t, err)
	byPage, err := stats.Aggregate(table, []string{"page_id"}, types)
	require.NoError(t, err)
	return []*stats.Report{overall, byPage}
}

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "overall", GroupLabel(nil, nil))
	assert.Equal(t, "page_id=A", GroupLabel([]string{"page_id"}, []dataset.Value{dataset.Text("A")}))
	assert.Equal(t, "page_id=A, ad_id=<missing>",
		GroupLabel([]string{"page_id", "ad_id"}, []dataset.Value{dataset.Text("A"), dataset.Missing()}))
	assert.Equal(t, "page_id=7", GroupLabel([]string{"page_id"}, []dataset.Value{dataset.Number(7)}))
}

func TestWriteTextShape(t *testing.T) {
	reports := sampleReports(t)

	var buf bytes.Buffer
	for _, r := range reports {
		require.NoError(t, WriteText(&buf, r, 0))
	}
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "Overall Stats"), "overall section appears once")
	assert.Contains(t, out, "===== Grouped by page_id =====")
	assert.Contains(t, out, "Group: page_id=A (2 rows)")
	assert.Contains(t, out, "Group: page_id=B (1 rows)")
	assert.Contains(t, out, "most_common: active (2)")
	assert.Contains(t, out, "std_dev: <missing>", "single-row group stddev is undefined")

	idxA := strings.Index(out, "page_id=A")
	idxB := strings.Index(out, "page_id=B")
	assert.Less(t, idxA, idxB, "groups render in first-appearance order")
}

func TestWriteTextMaxGroups(t *testing.T) {
	reports := sampleReports(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reports[1], 1))
	out := buf.String()

	assert.Contains(t, out, "page_id=A")
	assert.NotContains(t, out, "Group: page_id=B")
	assert.Contains(t, out, "... (showing first 1 of 2 groups)")
}

func TestFlattenOrderAndDedup(t *testing.T) {
	reports := sampleReports(t)
	rows := Flatten(reports)

	// 3 overall columns + 2 groups x 2 columns
	require.Len(t, rows, 7)

	var overallRows int
	for _, r := range rows {
		if r.Group == "overall" {
			overallRows++
		}
	}
	assert.Equal(t, 3, overallRows, "whole-dataset rows come only from the ungrouped report")

	assert.Equal(t, "overall", rows[0].Group)
	assert.Equal(t, "page_id", rows[0].Column)
	assert.Equal(t, "spend", rows[1].Column)
	assert.Equal(t, "page_id", rows[3].GroupBy)
	assert.Equal(t, "page_id=A", rows[3].Group)
	assert.Equal(t, "page_id=B", rows[5].Group)
}

func TestFlattenUndefinedStats(t *testing.T) {
	rows := Flatten(sampleReports(t))

	for _, r := range rows {
		if r.Group == "page_id=B" && r.Column == "spend" {
			require.NotNil(t, r.Mean)
			assert.Equal(t, 5.0, *r.Mean)
			assert.Nil(t, r.StdDev, "single observation has no sample stddev")
			return
		}
	}
	t.Fatal("missing page_id=B spend row")
}

func TestWriteCSVEmptyCellsForUndefined(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Flatten(sampleReports(t))))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, 8, len(records), "header plus seven rows")
	assert.Equal(t, csvHeader, records[0])

	for _, rec := range records[1:] {
		if rec[1] == "page_id=B" && rec[2] == "spend" {
			assert.Equal(t, "5", rec[5], "mean")
			assert.Equal(t, "", rec[8], "undefined std_dev is an empty cell")
			return
		}
	}
	t.Fatal("missing page_id=B spend record")
}

func TestWriteJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "job-1", Flatten(sampleReports(t))))

	var payload struct {
		ExportInfo struct {
			JobID       string `json:"job_id"`
			RecordCount int    `json:"record_count"`
			ExportType  string `json:"export_type"`
		} `json:"export_info"`
		Data []FlatRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "job-1", payload.ExportInfo.JobID)
	assert.Equal(t, 7, payload.ExportInfo.RecordCount)
	assert.Equal(t, "descriptive_statistics", payload.ExportInfo.ExportType)
	require.Len(t, payload.Data, 7)
	assert.Nil(t, payload.Data[1].Mode, "numeric rows carry no mode")
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	rows := Flatten(sampleReports(t))

	csvPath := filepath.Join(dir, "nested", "out.csv")
	result := ExportFile("job-1", csvPath, rows)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, len(rows), result.RecordCount)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "group_by,group,column"))

	jsonPath := filepath.Join(dir, "out.json")
	result = ExportFile("job-1", jsonPath, rows)
	require.True(t, result.Success, result.Error)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"export_type": "descriptive_statistics"`)
}
