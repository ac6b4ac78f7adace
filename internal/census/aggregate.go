package census

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
)

// TotalPopulation is the label of the total population column, used as the
// weight for averaged columns.
const TotalPopulation = "人口（総数）"

// IsPopulationColumn reports whether a column holds a head count that is
// summed on aggregation.
func IsPopulationColumn(label string) bool {
	return strings.Contains(label, "人口")
}

// IsAgeColumn reports whether a column holds an average or median age that is
// averaged, weighted by total population, on aggregation.
func IsAgeColumn(label string) bool {
	return strings.Contains(label, "平均年齢") || strings.Contains(label, "年齢中位数")
}

// Aggregate is one mesh cell's statistics after rolling up finer cells.
type Aggregate struct {
	Code    string             `json:"KEY_CODE"`
	Level   meshcode.Level     `json:"level"`
	Members int                `json:"members"`
	Values  map[string]float64 `json:"values"`
}

// AggregateRecords rolls records up to level. Records without population are
// dropped first. Population columns are summed; age columns are averaged
// weighted by TotalPopulation. Other columns are not carried. The result is
// sorted by code.
func AggregateRecords(records []Record, level meshcode.Level) ([]Aggregate, error) {
	type acc struct {
		members  int
		sums     map[string]float64
		weighted map[string]float64
	}
	groups := make(map[string]*acc)

	for _, rec := range records {
		weight, hasWeight := rec.Values[TotalPopulation]
		if hasWeight && weight <= 0 {
			continue
		}
		code, err := meshcode.Truncate(rec.KeyCode, level)
		if err != nil {
			return nil, fmt.Errorf("aggregate %q: %w", rec.KeyCode, err)
		}

		g, ok := groups[code]
		if !ok {
			g = &acc{sums: make(map[string]float64), weighted: make(map[string]float64)}
			groups[code] = g
		}
		g.members++
		for label, v := range rec.Values {
			switch {
			case IsAgeColumn(label):
				g.weighted[label] += v * weight
			case IsPopulationColumn(label):
				g.sums[label] += v
			}
		}
	}

	out := make([]Aggregate, 0, len(groups))
	for code, g := range groups {
		values := make(map[string]float64, len(g.sums)+len(g.weighted))
		for label, v := range g.sums {
			values[label] = v
		}
		total := g.sums[TotalPopulation]
		for label, v := range g.weighted {
			if total > 0 {
				values[label] = v / total
			} else {
				values[label] = 0
			}
		}
		out = append(out, Aggregate{Code: code, Level: level, Members: g.members, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
