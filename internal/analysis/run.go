package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-ad-insights/internal/dataset"
	"go-ad-insights/internal/ingest"
	"go-ad-insights/internal/model"
	"go-ad-insights/internal/report"
	"go-ad-insights/internal/stats"
	"go-ad-insights/internal/store"
	"go-ad-insights/pkg/utils"
)

// RunMetrics collects per-stage timings for one analysis run.
type RunMetrics struct {
	Rows        int                      `json:"rows"`
	Columns     int                      `json:"columns"`
	Groupings   int                      `json:"groupings"`
	StageTiming map[string]time.Duration `json:"stage_timing"`
}

// Run executes one analysis job end to end: ingest, type resolution,
// aggregation per requested granularity, export, persistence. Status and
// progress go through the job store so the API can serve them.
func Run(ctx context.Context, log *zap.Logger, jobID string, spec model.AnalysisJobSpec) (err error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("job_id", jobID))
	start := time.Now()
	log.Info("starting analysis")

	store.UpdateJobStatus(jobID, "running")
	defer func() {
		if err != nil {
			store.UpdateJobStatus(jobID, "failed")
			store.SaveJobError(jobID, err)
			log.Error("analysis failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(spec.Concurrency.JobTimeout))
	defer cancel()

	metrics := RunMetrics{StageTiming: make(map[string]time.Duration)}

	// --- INGESTION STAGE ---
	stageStart := time.Now()
	store.UpdateJobStatus(jobID, "ingesting")
	store.SaveStageProgress(jobID, "ingestion", "started", &stageStart, nil, 0)

	loader := ingest.NewLoader(log)
	loader.Retries = spec.Concurrency.FetchRetries
	ds, err := loader.Load(ctx, spec.Source)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	stageEnd := time.Now()
	metrics.Rows = ds.NumRows()
	metrics.Columns = len(ds.Columns())
	metrics.StageTiming["ingestion"] = stageEnd.Sub(stageStart)
	store.SaveStageProgress(jobID, "ingestion", "completed", &stageStart, &stageEnd, ds.NumRows())
	store.SaveJobLog(jobID, "ingestion", "info", "ingestion completed", map[string]interface{}{
		"rows":    ds.NumRows(),
		"columns": len(ds.Columns()),
	})

	// --- TYPE RESOLUTION ---
	types, err := resolveTypes(ds, spec.ColumnTypes)
	if err != nil {
		return err
	}

	// --- AGGREGATION STAGE ---
	stageStart = time.Now()
	store.UpdateJobStatus(jobID, "aggregating")
	store.SaveStageProgress(jobID, "aggregation", "started", &stageStart, nil, 0)

	reports, err := aggregateAll(ds, spec, types, log)
	if err != nil {
		return err
	}

	stageEnd = time.Now()
	metrics.Groupings = len(reports)
	metrics.StageTiming["aggregation"] = stageEnd.Sub(stageStart)
	store.SaveStageProgress(jobID, "aggregation", "completed", &stageStart, &stageEnd, ds.NumRows())
	store.SaveJobLog(jobID, "aggregation", "info", "aggregation completed", map[string]interface{}{
		"groupings": len(reports),
	})

	// --- EXPORT STAGE ---
	stageStart = time.Now()
	store.UpdateJobStatus(jobID, "exporting")
	flat := report.Flatten(reports)

	store.SaveReportRows(jobID, flat)
	if spec.Export != nil && spec.Export.File != "" {
		result := report.ExportFile(jobID, spec.Export.File, flat)
		if !result.Success {
			return fmt.Errorf("export failed: %s", result.Error)
		}
		log.Info("report exported",
			zap.String("path", result.Path),
			zap.Int("rows", result.RecordCount))
	}
	metrics.StageTiming["export"] = time.Since(stageStart)

	store.UpdateJobStatus(jobID, "completed")
	log.Info("analysis completed",
		zap.Int("rows", metrics.Rows),
		zap.Int("groupings", metrics.Groupings),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// resolveTypes combines sample-based detection with explicit declarations;
// declarations always win.
func resolveTypes(ds dataset.Dataset, declared map[string]string) (map[string]stats.ColumnType, error) {
	types := stats.DetectColumnTypes(ds, stats.DefaultDetectSample)
	for col, kind := range declared {
		switch strings.ToLower(kind) {
		case "numeric":
			types[col] = stats.Numeric
		case "categorical":
			types[col] = stats.Categorical
		default:
			return nil, fmt.Errorf("column %q: unknown type declaration %q", col, kind)
		}
	}
	return types, nil
}

// aggregateAll runs one overall aggregation plus one per grouping
// granularity. Granularities naming columns the dataset lacks are skipped
// with a warning so one absent column does not fail the whole job.
func aggregateAll(ds dataset.Dataset, spec model.AnalysisJobSpec, types map[string]stats.ColumnType, log *zap.Logger) ([]*stats.Report, error) {
	groupings := spec.GroupBy
	if groupings == nil {
		groupings = model.DefaultGroupBy()
	}

	opts := []stats.Option{}
	if spec.Concurrency.Workers > 0 {
		opts = append(opts, stats.WithWorkers(spec.Concurrency.Workers))
	}

	overall, err := stats.Aggregate(ds, nil, types, opts...)
	if err != nil {
		return nil, err
	}
	reports := []*stats.Report{overall}

	for _, groupBy := range groupings {
		if len(groupBy) == 0 {
			continue // overall is always computed above
		}
		if err := dataset.RequireColumns(ds, groupBy...); err != nil {
			log.Warn("skipping grouping, column absent",
				zap.Strings("group_by", groupBy),
				zap.Error(err))
			continue
		}
		r, err := stats.Aggregate(ds, groupBy, types, opts...)
		if err != nil {
			return nil, err
		}
		log.Info("grouping aggregated",
			zap.Strings("group_by", groupBy),
			zap.Int("groups", len(r.Groups)))
		reports = append(reports, r)
	}
	return reports, nil
}
