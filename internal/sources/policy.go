package sources

import "fmt"

// Select returns the adapters to try for year, in rank order.
//
// Adapters whose coverage contains year are returned. When none does, the
// whole catalog is returned so that each adapter rejects the year itself and
// the failure is reported per source.
func Select(year int, reg *Registry) []Adapter {
	var covering []Adapter
	for _, e := range reg.entries {
		if e.Adapter.Coverage().Contains(year) {
			covering = append(covering, e.Adapter)
		}
	}
	if len(covering) > 0 {
		return covering
	}

	all := make([]Adapter, len(reg.entries))
	for i, e := range reg.entries {
		all[i] = e.Adapter
	}
	return all
}

// Choice explains the position of one adapter in the selection for a year
type Choice struct {
	Rank     int       `json:"rank" yaml:"rank"`
	Source   string    `json:"source" yaml:"source"`
	Tier     string    `json:"tier" yaml:"tier"`
	Coverage YearRange `json:"coverage" yaml:"coverage"`
	Selected bool      `json:"selected" yaml:"selected"`
	Reason   string    `json:"reason" yaml:"reason"`
}

// Explain returns every registered adapter with whether and why Select picks it
func Explain(year int, reg *Registry) []Choice {
	selected := make(map[Adapter]bool)
	for _, a := range Select(year, reg) {
		selected[a] = true
	}

	choices := make([]Choice, 0, len(reg.entries))
	for _, e := range reg.entries {
		c := Choice{
			Rank:     e.Rank,
			Source:   e.Adapter.Name(),
			Tier:     e.Adapter.Tier().String(),
			Coverage: e.Adapter.Coverage(),
			Selected: selected[e.Adapter],
		}
		switch {
		case e.Adapter.Coverage().Contains(year):
			c.Reason = fmt.Sprintf("covers %d", year)
		case c.Selected:
			c.Reason = fmt.Sprintf("no source covers %d, tried to report unsupported", year)
		default:
			c.Reason = fmt.Sprintf("coverage %s excludes %d", e.Adapter.Coverage(), year)
		}
		choices = append(choices, c)
	}
	return choices
}
