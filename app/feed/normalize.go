package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyTokens = regexp.MustCompile(`(?i)\s*(EUR|USD|GBP|€|\$|£)\s*`)
	nonPriceChars  = regexp.MustCompile(`[^0-9.]`)
)

// CleanPrice normalizes a raw price cell into a decimal string such as
// "22.50". It returns false when nothing numeric is left.
func CleanPrice(raw string) (string, bool) {
	s := strings.TrimSpace(currencyTokens.ReplaceAllString(raw, ""))
	s = normalizeSeparators(s)
	s = nonPriceChars.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, ".")

	if s == "" {
		return "", false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return "", false
	}
	return s, true
}

// normalizeSeparators leaves at most one '.' as decimal separator. When both
// ',' and '.' appear the right-most one is the decimal separator; a
// separator repeated on its own is a thousands separator.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

var inStockValues = map[string]bool{
	"in stock":   true,
	"in_stock":   true,
	"instock":    true,
	"available":  true,
	"en stock":   true,
	"disponible": true,
	"yes":        true,
	"true":       true,
	"oui":        true,
	"y":          true,
}

// NormalizeAvailability maps a source availability value to the closed set.
// An empty value means the feed does not track stock and counts as in stock.
// Stock and in_stock columns carry quantities or booleans: a positive
// quantity is in stock.
func NormalizeAvailability(raw string) Availability {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || inStockValues[value] {
		return InStock
	}
	if qty, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil && qty > 0 {
		return InStock
	}
	return OutOfStock
}

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryJewelry, []string{"BAGUE", "RING", "COLLIER", "NECKLACE", "BRACELET", "BOUCLES D'OREILLES"}},
	{CategoryShoes, []string{"BOTTES", "BOOTS", "BOTTINES", "CHAUSSURES", "SHOES", "BALLERINES", "BALLET FLATS", "ESCARPINS", "SNEAKERS"}},
	{CategoryClothing, []string{"CARDIGAN", "PULL", "SWEATER", "ROBE", "DRESS", "T-SHIRT", "PANTALON", "PANTS", "VESTE", "JACKET", "MANTEAU", "COAT"}},
	{CategoryAccessories, []string{"ACCESSOIRE", "ACCESSORIES", "ACCESSORY"}},
}

// CategoryOf infers a category from title keywords, Clothing by default.
func CategoryOf(title string) Category {
	upper := strings.ToUpper(title)
	for _, group := range categoryKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(upper, keyword) {
				return group.category
			}
		}
	}
	return CategoryClothing
}

// Substrings of image URLs known to serve placeholders or nothing at all.
var DefaultImageDenylist = []string{
	"placeholder",
	"no-image",
	"noimage",
	"no_image",
	"image-not-found",
	"default-product",
	"spacer.gif",
	"blank.gif",
}

// IsValidImage reports whether url is an https URL that matches neither
// DefaultImageDenylist nor extra.
func IsValidImage(url string, extra ...string) bool {
	if !strings.HasPrefix(url, "https://") {
		return false
	}
	lower := strings.ToLower(url)
	for _, deny := range DefaultImageDenylist {
		if strings.Contains(lower, deny) {
			return false
		}
	}
	for _, deny := range extra {
		if deny != "" && strings.Contains(lower, strings.ToLower(deny)) {
			return false
		}
	}
	return true
}

func defaultDescription(brand string) string {
	return fmt.Sprintf("Discover this %s product", brand)
}
