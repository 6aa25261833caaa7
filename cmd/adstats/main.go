package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"go-ad-insights/internal/dataset"
	"go-ad-insights/internal/ingest"
	"go-ad-insights/internal/model"
	"go-ad-insights/internal/report"
	"go-ad-insights/internal/stats"
)

func main() {
	var (
		input       = flag.String("input", "", "path or URL of the dataset (required)")
		sourceType  = flag.String("type", "csv", "source type: csv or json")
		groupings   = flag.String("group-by", "page_id;page_id,ad_id", "grouping granularities, comma-separated columns, ';'-separated sets ('' for overall only)")
		numeric     = flag.String("numeric", "", "columns to force numeric, comma-separated")
		categorical = flag.String("categorical", "", "columns to force categorical, comma-separated")
		format      = flag.String("format", "text", "output format: text, csv or json")
		out         = flag.String("out", "", "write output to this file instead of stdout")
		maxGroups   = flag.Int("max-groups", 0, "cap the groups printed per granularity in text output (0 = all)")
		workers     = flag.Int("workers", 0, "reduction workers (0 = GOMAXPROCS)")
		required    = flag.String("require", "", "columns that must be present, comma-separated")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "adstats: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*input, *sourceType, *groupings, *numeric, *categorical, *format, *out, *required, *maxGroups, *workers); err != nil {
		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			fmt.Fprintf(os.Stderr, "adstats: %v\n", schemaErr)
		} else {
			fmt.Fprintf(os.Stderr, "adstats: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(input, sourceType, groupings, numeric, categorical, format, out, required string, maxGroups, workers int) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	loader := ingest.NewLoader(log)
	ds, err := loader.Load(context.Background(), model.Source{
		Type:            sourceType,
		URL:             input,
		RequiredColumns: splitList(required),
	})
	if err != nil {
		return err
	}

	types := stats.DetectColumnTypes(ds, stats.DefaultDetectSample)
	for _, col := range splitList(numeric) {
		types[col] = stats.Numeric
	}
	for _, col := range splitList(categorical) {
		types[col] = stats.Categorical
	}

	var opts []stats.Option
	if workers > 0 {
		opts = append(opts, stats.WithWorkers(workers))
	}

	overall, err := stats.Aggregate(ds, nil, types, opts...)
	if err != nil {
		return err
	}
	reports := []*stats.Report{overall}
	for _, set := range strings.Split(groupings, ";") {
		groupBy := splitList(set)
		if len(groupBy) == 0 {
			continue
		}
		r, err := stats.Aggregate(ds, groupBy, types, opts...)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}

	dest := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	switch format {
	case "text":
		for _, r := range reports {
			if err := report.WriteText(dest, r, maxGroups); err != nil {
				return err
			}
		}
		return nil
	case "csv":
		return report.WriteCSV(dest, report.Flatten(reports))
	case "json":
		return report.WriteJSON(dest, "adstats-cli", report.Flatten(reports))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
