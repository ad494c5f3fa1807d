package dashboard

import (
	"sort"
	"strings"

	"beacon-dashboard/internal/domain"
)

// AggregatedCategory is one chart row: a catalog entry with its tally.
type AggregatedCategory struct {
	domain.Category
	Count     int      `json:"count"`
	Companies []string `json:"companies"`
}

// Aggregate counts exact label matches per catalog entry and collects the
// companies of consenting respondents. Unknown labels are ignored. The result
// is ordered by count, highest first, ties kept in catalog order.
func Aggregate(catalog *domain.Catalog, items []domain.Response) []AggregatedCategory {
	cats := catalog.Categories()
	out := make([]AggregatedCategory, len(cats))
	for i, c := range cats {
		out[i] = AggregatedCategory{Category: c, Companies: []string{}}
	}

	for _, it := range items {
		for _, opp := range it.Opportunities {
			i := catalog.Index(strings.TrimSpace(opp))
			if i < 0 {
				continue
			}
			out[i].Count++
			if it.Consent && it.Company != "" {
				out[i].Companies = append(out[i].Companies, it.Company)
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

func MaxCount(aggs []AggregatedCategory) int {
	max := 0
	for _, a := range aggs {
		if a.Count > max {
			max = a.Count
		}
	}
	return max
}
