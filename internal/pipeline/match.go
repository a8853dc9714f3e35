package pipeline

import (
	"sort"

	"rostercheck/internal"
	"rostercheck/internal/config"
	"rostercheck/internal/util"
)

// Matcher flags roster rows present in the extracted name set. For misses it
// offers the closest set entry as a review aid when the similarity clears the
// configured threshold.
type Matcher struct {
	cfg   config.Config
	names internal.NameSet
	keys  []string
}

func NewMatcher(cfg config.Config, names internal.NameSet) *Matcher {
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return &Matcher{cfg: cfg, names: names, keys: keys}
}

func (m *Matcher) Match(row NormalizedRow) internal.RowResult {
	result := internal.RowResult{
		RowNo: row.RowNo,
		Cells: row.Cells,
	}

	if row.NormalizedName == "" {
		return result
	}
	if m.names.Has(row.NormalizedName) {
		result.Present = true
		return result
	}

	if suggestion, score := m.closest(row.NormalizedName); score >= m.cfg.SuggestThreshold {
		result.Suggestion = suggestion
	}
	return result
}

func (m *Matcher) closest(query string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, candidate := range m.keys {
		score := util.DiceCoefficient(query, candidate)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}
