package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"go-ad-insights/internal/dataset"
	"go-ad-insights/internal/stats"
	"go-ad-insights/pkg/utils"
)

// GroupLabel renders a group key as "page_id=A, ad_id=X". The empty key is
// the whole-dataset entry.
func GroupLabel(groupBy []string, key []dataset.Value) string {
	if len(key) == 0 {
		return "overall"
	}
	parts := make([]string, len(key))
	for i, v := range key {
		val := v.Display()
		if v.IsMissing() {
			val = "<missing>"
		}
		parts[i] = fmt.Sprintf("%s=%s", groupBy[i], val)
	}
	return strings.Join(parts, ", ")
}

// WriteText renders one report. An ungrouped report prints the whole-dataset
// section; a grouped one prints a banner plus one section per group in
// first-appearance order, capped at maxGroups when positive. Callers printing
// several granularities pass the ungrouped report first so the overall
// section appears exactly once.
func WriteText(w io.Writer, r *stats.Report, maxGroups int) error {
	if len(r.GroupBy) == 0 {
		return writeGroupText(w, "Overall Stats", r.ColumnOrder, r.Overall)
	}

	if _, err := fmt.Fprintf(w, "\n===== Grouped by %s =====\n", strings.Join(r.GroupBy, ", ")); err != nil {
		return err
	}
	for i, g := range r.Groups {
		if maxGroups > 0 && i >= maxGroups {
			_, err := fmt.Fprintf(w, "\n... (showing first %d of %d groups)\n", maxGroups, len(r.Groups))
			return err
		}
		title := fmt.Sprintf("Group: %s (%d rows)", GroupLabel(r.GroupBy, g.Key), g.Size)
		if err := writeGroupText(w, title, r.ColumnOrder, g); err != nil {
			return err
		}
	}
	return nil
}

func writeGroupText(w io.Writer, title string, cols []string, g *stats.GroupSummary) error {
	if _, err := fmt.Fprintf(w, "\n--- %s ---\n", title); err != nil {
		return err
	}
	for _, col := range cols {
		s := g.Columns[col]
		fmt.Fprintf(w, "\nColumn: %s\n", col)
		fmt.Fprintf(w, "  count: %d\n", s.Count)
		if s.Kind == stats.Numeric {
			writeStatLine(w, "mean", s.Mean)
			writeStatLine(w, "min", s.Min)
			writeStatLine(w, "max", s.Max)
			writeStatLine(w, "std_dev", s.StdDev)
		} else {
			fmt.Fprintf(w, "  unique_count: %d\n", s.UniqueCount)
			if s.HasMode {
				fmt.Fprintf(w, "  most_common: %s (%d)\n", s.Mode, s.ModeCount)
			} else {
				fmt.Fprintf(w, "  most_common: <missing>\n")
			}
		}
	}
	return nil
}

func writeStatLine(w io.Writer, name string, v float64) {
	if math.IsNaN(v) {
		fmt.Fprintf(w, "  %s: <missing>\n", name)
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", name, utils.FormatFloat(v))
}
