package stats

import "go-ad-insights/internal/dataset"

// DefaultDetectSample bounds how many rows type detection inspects per column.
const DefaultDetectSample = 100

// DetectColumnTypes inspects up to sample rows per column and declares a
// column numeric when more than 80% of its non-missing sampled values are
// numbers. Columns with no non-missing sample stay categorical. Caller
// declarations should always override the result.
func DetectColumnTypes(ds dataset.Dataset, sample int) map[string]ColumnType {
	if sample <= 0 {
		sample = DefaultDetectSample
	}
	limit := ds.NumRows()
	if limit > sample {
		limit = sample
	}

	types := make(map[string]ColumnType, len(ds.Columns()))
	for _, col := range ds.Columns() {
		nonMissing, numeric := 0, 0
		for row := 0; row < limit; row++ {
			v := ds.At(row, col)
			if v.IsMissing() {
				continue
			}
			nonMissing++
			if v.Kind() == dataset.KindNumber {
				numeric++
			}
		}
		if nonMissing > 0 && float64(numeric)/float64(nonMissing) > 0.8 {
			types[col] = Numeric
		} else {
			types[col] = Categorical
		}
	}
	return types
}
