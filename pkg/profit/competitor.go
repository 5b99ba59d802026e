package profit

import "github.com/koptimizer/inferprofit/pkg/catalog"

// CompetitorQuote compares your unit price with one competitor's.
type CompetitorQuote struct {
	Competitor string  `json:"competitor"`
	PriceUSD   float64 `json:"priceUSD"`
	// DifferenceUSD is competitor price minus your price; positive means
	// you are cheaper.
	DifferenceUSD float64 `json:"differenceUSD"`
	Undercut      bool    `json:"undercut"`
}

// CompareCompetitors lists every competitor that prices the given key.
func CompareCompetitors(cat *catalog.Catalog, key string, yourPrice float64) []CompetitorQuote {
	if key == "" {
		return nil
	}
	var quotes []CompetitorQuote
	for _, c := range cat.Competitors() {
		p, ok := c.Prices.Get(key)
		if !ok {
			continue
		}
		quotes = append(quotes, CompetitorQuote{
			Competitor:    c.Name,
			PriceUSD:      p,
			DifferenceUSD: p - yourPrice,
			Undercut:      yourPrice < p,
		})
	}
	return quotes
}
