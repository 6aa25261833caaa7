package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-ad-insights/internal/model"
	"go-ad-insights/internal/report"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "adstats_test.db")))
}

func TestJobLifecycle(t *testing.T) {
	setupDB(t)

	spec := model.AnalysisJobSpec{
		Source:  model.Source{Type: "csv", URL: "ads.csv"},
		GroupBy: [][]string{{"page_id"}},
	}
	require.NoError(t, SaveJob("job-1", spec))

	job, err := GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", job["status"])
	got, ok := job["spec"].(model.AnalysisJobSpec)
	require.True(t, ok)
	assert.Equal(t, "ads.csv", got.Source.URL)
	assert.Equal(t, [][]string{{"page_id"}}, got.GroupBy)

	require.NoError(t, UpdateJobStatus("job-1", "completed"))
	job, err = GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", job["status"])

	jobs, err := ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0]["id"])
}

func TestJobErrorsAndLogs(t *testing.T) {
	setupDB(t)
	require.NoError(t, SaveJob("job-1", model.AnalysisJobSpec{}))

	require.NoError(t, SaveJobError("job-1", errors.New("fetch failed")))
	require.NoError(t, SaveJobError("job-1", nil), "nil error is a no-op")

	errs, err := GetJobErrors("job-1")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "fetch failed", errs[0]["message"])

	require.NoError(t, SaveJobLog("job-1", "ingest", "info", "loaded rows",
		map[string]interface{}{"rows": 42}))
	logs, err := GetJobLogs("job-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "ingest", logs[0]["stage"])
	assert.Equal(t, "loaded rows", logs[0]["message"])
}

func TestReportRowsRoundTrip(t *testing.T) {
	setupDB(t)

	mean := 20.0
	mode := "active"
	flat := []report.FlatRow{
		{GroupBy: "page_id", Group: "page_id=A", Column: "spend", Kind: "numeric", Count: 2, Mean: &mean},
		{GroupBy: "page_id", Group: "page_id=A", Column: "status", Kind: "categorical", Count: 2,
			UniqueCount: 1, Mode: &mode, ModeCount: 2},
	}
	require.NoError(t, SaveReportRows("job-1", flat))

	got, err := GetReportRows("job-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, flat[0].Group, got[0].Group)
	require.NotNil(t, got[0].Mean)
	assert.Equal(t, 20.0, *got[0].Mean)
	assert.Nil(t, got[0].Mode)
	require.NotNil(t, got[1].Mode)
	assert.Equal(t, "active", *got[1].Mode)

	empty, err := GetReportRows("missing-job")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStageProgress(t *testing.T) {
	setupDB(t)
	require.NoError(t, SaveStageProgress("job-1", "aggregate", "completed", nil, nil, 100))
}
