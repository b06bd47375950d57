// Package catalog implements the product-query core: composing optional
// filter criteria into a store predicate, resolving sort tokens, and
// executing paginated listings against the product store.
package catalog

import (
	"strconv"
	"strings"

	"github.com/TotoPhandolack/EcomerceStore/internal/store"
)

// SentinelAll is the convention value meaning "this criterion is not applied".
const SentinelAll = "all"

// Criteria is the loose, per-request set of listing parameters. Every
// criterion is independently optional: an empty string or SentinelAll means
// the criterion does not exist. Criteria values come from untrusted request
// parameters and are normalized by Compose / ResolveSort.
type Criteria struct {
	Query    string
	Category string
	Price    string
	Rating   string
	Sort     string
	Page     int
	Limit    int
}

type priceRange struct {
	min float64
	max float64
}

// priceBuckets is the fixed table of named price ranges. The "200+" bucket
// keeps the historical open-ended upper bound.
var priceBuckets = map[string]priceRange{
	"0-50":    {min: 0, max: 50},
	"50-100":  {min: 50, max: 100},
	"100-200": {min: 100, max: 200},
	"200+":    {min: 200, max: 999999},
}

// parsePriceToken resolves a price token into an inclusive [min, max] range.
// Bucket lookup is tried first, then a raw "min-max" numeric split. A token
// that matches neither yields ok=false and is treated as "no filter".
func parsePriceToken(token string) (priceRange, bool) {
	if bucket, found := priceBuckets[token]; found {
		return bucket, true
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return priceRange{}, false
	}
	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return priceRange{}, false
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return priceRange{}, false
	}
	return priceRange{min: min, max: max}, true
}

// Compose translates the criteria into a store predicate. Present criteria
// combine with AND; the zero ProductFilter is the match-all predicate.
// Malformed price/rating tokens are absorbed here and never surface as
// errors, so downstream logic cannot distinguish "absent" from "malformed".
func Compose(c Criteria) store.ProductFilter {
	var filter store.ProductFilter

	if c.Query != "" && c.Query != SentinelAll {
		query := c.Query
		filter.Search = &query
	}
	if c.Category != "" && c.Category != SentinelAll {
		category := c.Category
		filter.Category = &category
	}
	if c.Price != "" && c.Price != SentinelAll {
		if r, ok := parsePriceToken(c.Price); ok {
			min, max := r.min, r.max
			filter.MinPrice = &min
			filter.MaxPrice = &max
		}
	}
	if c.Rating != "" && c.Rating != SentinelAll {
		if minRating, err := strconv.ParseFloat(c.Rating, 64); err == nil {
			filter.MinRating = &minRating
		}
	}

	return filter
}

// Sort tokens accepted by ResolveSort.
const (
	SortNewest         = "newest"
	SortOldest         = "oldest"
	SortPriceLowToHigh = "price-low-to-high"
	SortPriceHighToLow = "price-high-to-low"
	SortRating         = "rating"
)

var sortKeys = map[string]store.OrderKey{
	SortNewest:         {Column: "created_at", Descending: true},
	SortOldest:         {Column: "created_at", Descending: false},
	SortPriceLowToHigh: {Column: "price", Descending: false},
	SortPriceHighToLow: {Column: "price", Descending: true},
	SortRating:         {Column: "rating", Descending: true},
}

// ResolveSort maps a sort token to its ordering key. Absent or unrecognized
// tokens resolve to the newest mapping; unknown tokens are normal input, not
// a fault.
func ResolveSort(token string) store.OrderKey {
	if key, ok := sortKeys[token]; ok {
		return key
	}
	return sortKeys[SortNewest]
}
