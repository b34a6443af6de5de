package ingest

import "strings"

// categoryByKeyword backstops the parser when it leaves a purchase
// uncategorized. Keyword matching is case-insensitive and substring-based.
var categoryByKeyword = map[string]string{
	"milk":         "Dairy",
	"cheese":       "Dairy",
	"eggs":         "Dairy",
	"bread":        "Bakery",
	"banana":       "Fruits",
	"apple":        "Fruits",
	"strawberries": "Fruits",
	"garlic":       "Spices",
	"chicken":      "Meat",
	"tomato":       "Vegetables",
	"potato":       "Vegetables",
}

// CategoryFor returns the fallback category for an item name, defaulting to
// "Other" when no keyword matches.
func CategoryFor(item string) string {
	lowered := strings.ToLower(item)
	for keyword, category := range categoryByKeyword {
		if strings.Contains(lowered, keyword) {
			return category
		}
	}
	return "Other"
}
