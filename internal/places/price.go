package places

// priceLevels maps the provider's price enum onto display tiers.
var priceLevels = map[string]string{
	"PRICE_LEVEL_FREE":           "",
	"PRICE_LEVEL_INEXPENSIVE":    "$",
	"PRICE_LEVEL_MODERATE":       "$$",
	"PRICE_LEVEL_EXPENSIVE":      "$$$",
	"PRICE_LEVEL_VERY_EXPENSIVE": "$$$$",
}

// PriceRange returns the display tier for a price level. Unknown and
// unspecified levels map to "".
func PriceRange(level string) string {
	return priceLevels[level]
}
