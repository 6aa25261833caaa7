package model

// Source points at one tabular input for an analysis job.
type Source struct {
	Type            string   `json:"type"` // csv, json
	URL             string   `json:"url"`  // local path or http(s) URL
	RequiredColumns []string `json:"requiredColumns,omitempty"`
}

// Export defines where the flattened report goes besides the job store, which
// always keeps the report rows for the API.
type Export struct {
	File string `json:"file,omitempty"` // .csv or .json
}

// Concurrency holds the knobs the runner does not derive itself.
type Concurrency struct {
	Workers      int    `json:"workers,omitempty"`      // reduction workers, 0 = GOMAXPROCS
	FetchRetries int    `json:"fetchRetries,omitempty"` // extra attempts for remote sources
	JobTimeout   string `json:"jobTimeout,omitempty"`   // e.g. "5m"
}

// AnalysisJobSpec is the payload of POST /api/v1/analyses and the persisted
// job description. GroupBy lists the grouping granularities to compute; the
// ungrouped summary is always produced. ColumnTypes entries are "numeric" or
// "categorical" and override sample-based detection.
type AnalysisJobSpec struct {
	Source      Source            `json:"source"`
	ColumnTypes map[string]string `json:"columnTypes,omitempty"`
	GroupBy     [][]string        `json:"groupBy,omitempty"`
	Export      *Export           `json:"export,omitempty"`
	Concurrency Concurrency       `json:"concurrency"`
}

// DefaultGroupBy is the ad-dataset default: per-page and per-(page, ad)
// summaries on top of the always-present overall one.
func DefaultGroupBy() [][]string {
	return [][]string{{"page_id"}, {"page_id", "ad_id"}}
}
