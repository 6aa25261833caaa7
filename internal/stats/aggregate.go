package stats

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"go-ad-insights/internal/dataset"
)

// ColumnType declares how a non-key column is summarized. Columns without a
// declaration default to Categorical.
type ColumnType int

const (
	Categorical ColumnType = iota
	Numeric
)

// ColumnSummary holds the statistics for one column within one group.
// Numeric statistics are NaN when undefined (no values, or n<2 for StdDev).
type ColumnSummary struct {
	Kind   ColumnType `json:"kind"`
	Count  int        `json:"count"` // non-missing values

	// numeric columns
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"` // sample (n-1)

	// categorical columns
	UniqueCount int    `json:"unique_count"`
	Mode        string `json:"mode"`
	ModeCount   int    `json:"mode_count"`
	HasMode     bool   `json:"has_mode"`
}

// GroupSummary is the set of column summaries for one group. Key is empty for
// the whole-dataset group.
type GroupSummary struct {
	Key     []dataset.Value
	Size    int // member rows, missing values included
	Columns map[string]*ColumnSummary
}

// Report maps group keys to column summaries. Groups preserves first-appearance
// order from the source dataset; Overall is always the ungrouped aggregation,
// whatever GroupBy was.
type Report struct {
	GroupBy     []string
	ColumnOrder []string // non-key columns, schema order
	Groups      []*GroupSummary
	Overall     *GroupSummary
}

// Row is one (group, column, summary) triple of the flattened report.
type Row struct {
	Key     []dataset.Value
	Column  string
	Summary *ColumnSummary
}

// Rows flattens the report in its stable order: grouped entries first
// (groups by first appearance, columns by schema order), then the overall
// entry under the empty key. When GroupBy is empty the single group and the
// overall entry coincide, so only the overall rows are emitted.
func (r *Report) Rows() []Row {
	var out []Row
	if len(r.GroupBy) > 0 {
		for _, g := range r.Groups {
			for _, col := range r.ColumnOrder {
				out = append(out, Row{Key: g.Key, Column: col, Summary: g.Columns[col]})
			}
		}
	}
	for _, col := range r.ColumnOrder {
		out = append(out, Row{Column: col, Summary: r.Overall.Columns[col]})
	}
	return out
}

// Options tune the aggregation run.
type Options struct {
	Workers int // per-(group,column) reduction workers; defaults to GOMAXPROCS
}

type Option func(*Options)

func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// group is one partition cell: the key tuple plus member row indices in row
// order. Row order must survive partitioning so the mode tie-break stays
// deterministic.
type group struct {
	key  []dataset.Value
	rows []int
}

// Aggregate partitions ds by the groupBy columns and computes per-group,
// per-column summaries, plus the whole-dataset summary. It is a pure function
// of its inputs: no I/O, no retained state. On SchemaError nothing is
// returned.
func Aggregate(ds dataset.Dataset, groupBy []string, types map[string]ColumnType, opts ...Option) (*Report, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	if err := dataset.RequireColumns(ds, groupBy...); err != nil {
		return nil, err
	}

	keySet := make(map[string]bool, len(groupBy))
	for _, k := range groupBy {
		keySet[k] = true
	}
	var columnOrder []string
	for _, c := range ds.Columns() {
		if !keySet[c] {
			columnOrder = append(columnOrder, c)
		}
	}

	groups := partition(ds, groupBy)

	// The overall group always covers every row under the empty key.
	overall := &group{rows: make([]int, ds.NumRows())}
	for i := range overall.rows {
		overall.rows[i] = i
	}
	all := append(append([]*group(nil), groups...), overall)

	summaries, err := reduceAll(ds, all, columnOrder, types, o.Workers)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GroupBy:     append([]string(nil), groupBy...),
		ColumnOrder: columnOrder,
	}
	for i, g := range groups {
		report.Groups = append(report.Groups, &GroupSummary{
			Key:     g.key,
			Size:    len(g.rows),
			Columns: summaries[i],
		})
	}
	report.Overall = &GroupSummary{
		Size:    ds.NumRows(),
		Columns: summaries[len(all)-1],
	}
	return report, nil
}

// partition scans rows once, assigning each to the group of its projected key
// tuple. Groups come out in first-appearance order.
func partition(ds dataset.Dataset, groupBy []string) []*group {
	if len(groupBy) == 0 {
		return nil
	}
	var out []*group
	seen := make(map[string]*group)
	for row := 0; row < ds.NumRows(); row++ {
		key := make([]dataset.Value, len(groupBy))
		for i, col := range groupBy {
			key[i] = ds.At(row, col)
		}
		hash := dataset.KeyOf(key)
		g, ok := seen[hash]
		if !ok {
			g = &group{key: key}
			seen[hash] = g
			out = append(out, g)
		}
		g.rows = append(g.rows, row)
	}
	return out
}

// reduceAll fans the independent (group, column) reductions out over a worker
// pool. Each reduction reads only its group's rows and writes only its own
// slot, so the only synchronization is the job feed and error collection.
func reduceAll(ds dataset.Dataset, groups []*group, cols []string, types map[string]ColumnType, workers int) ([]map[string]*ColumnSummary, error) {
	summaries := make([]map[string]*ColumnSummary, len(groups))
	for i := range summaries {
		summaries[i] = make(map[string]*ColumnSummary, len(cols))
	}

	type job struct {
		group int
		col   string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				var sum *ColumnSummary
				var err error
				if types[j.col] == Numeric {
					sum, err = reduceNumeric(ds, groups[j.group].rows, j.col)
				} else {
					sum = reduceCategorical(ds, groups[j.group].rows, j.col)
				}
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					summaries[j.group][j.col] = sum
				}
				mu.Unlock()
			}
		}()
	}

	for gi := range groups {
		for _, col := range cols {
			jobs <- job{group: gi, col: col}
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return summaries, nil
}

// reduceNumeric accumulates count/mean/variance with Welford's update to stay
// numerically stable on large spend and impression magnitudes, tracking min
// and max along the way. A text value fails the whole call: declared types
// are honored, never coerced.
func reduceNumeric(ds dataset.Dataset, rows []int, col string) (*ColumnSummary, error) {
	sum := &ColumnSummary{
		Kind:   Numeric,
		Mean:   math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
		StdDev: math.NaN(),
	}
	var mean, m2 float64
	for _, row := range rows {
		v := ds.At(row, col)
		if v.IsMissing() {
			continue
		}
		x, ok := v.Number()
		if !ok {
			text, _ := v.Text()
			return nil, &dataset.SchemaError{
				Column: col,
				Value:  text,
				Reason: "declared numeric but holds a non-numeric value",
			}
		}
		sum.Count++
		delta := x - mean
		mean += delta / float64(sum.Count)
		m2 += delta * (x - mean)
		if sum.Count == 1 || x < sum.Min {
			sum.Min = x
		}
		if sum.Count == 1 || x > sum.Max {
			sum.Max = x
		}
	}
	if sum.Count > 0 {
		sum.Mean = mean
	}
	if sum.Count >= 2 {
		sum.StdDev = math.Sqrt(m2 / float64(sum.Count-1))
	}
	return sum, nil
}

// reduceCategorical counts distinct non-missing values. The mode tie-break is
// the value occurring earliest in row order, which keeps output reproducible
// across backends and runs.
func reduceCategorical(ds dataset.Dataset, rows []int, col string) *ColumnSummary {
	sum := &ColumnSummary{Kind: Categorical}
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, row := range rows {
		v := ds.At(row, col)
		if v.IsMissing() {
			continue
		}
		s := v.Display()
		sum.Count++
		if _, ok := counts[s]; !ok {
			firstSeen[s] = row
		}
		counts[s]++
	}
	sum.UniqueCount = len(counts)
	if len(counts) == 0 {
		return sum
	}

	values := make([]string, 0, len(counts))
	for s := range counts {
		values = append(values, s)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return firstSeen[values[i]] < firstSeen[values[j]]
	})
	sum.Mode = values[0]
	sum.ModeCount = counts[values[0]]
	sum.HasMode = true
	return sum
}
