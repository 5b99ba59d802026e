package profit

import "sort"

// DefaultHighlightTop is how many leading configurations a presentation
// layer highlights.
const DefaultHighlightTop = 5

// Ranked is implemented by every calculator result.
type Ranked interface {
	MonthlyProfit() float64
}

// Ranking is a full configuration sweep sorted by monthly profit, highest
// first. Excluded counts combinations dropped for missing reference data.
type Ranking[T Ranked] struct {
	Configurations []T `json:"configurations"`
	Excluded       int `json:"excluded"`
}

// Best returns the top configuration.
func (r Ranking[T]) Best() (T, bool) {
	if len(r.Configurations) == 0 {
		var zero T
		return zero, false
	}
	return r.Configurations[0], true
}

// Top returns at most n leading configurations. n <= 0 returns all of them.
func (r Ranking[T]) Top(n int) []T {
	if n <= 0 || n >= len(r.Configurations) {
		return r.Configurations
	}
	return r.Configurations[:n]
}

// Evaluated is the number of combinations that were considered.
func (r Ranking[T]) Evaluated() int {
	return len(r.Configurations) + r.Excluded
}

// sortByMonthlyProfit keeps enumeration order for ties.
func sortByMonthlyProfit[T Ranked](rs []T) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].MonthlyProfit() > rs[j].MonthlyProfit()
	})
}
