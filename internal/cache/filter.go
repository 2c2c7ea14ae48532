// internal/cache/filter.go
package cache

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dropshoplabs/dropshop-backend/internal/models"
)

// Filter is the derived-view contract consumed by the dashboard: a
// case-insensitive substring match on name or reference, an exact status
// and an exact category. Empty fields match everything.
type Filter struct {
	Search   string
	Status   models.ProductStatus
	Category string
}

var leadingDigits = regexp.MustCompile(`\d+`)

// referenceNumber extracts the first run of digits from a reference;
// references without digits sort as zero.
func referenceNumber(reference string) int {
	match := leadingDigits.FindString(reference)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// FilterProducts returns the products matching f, sorted by the numeric
// part of the reference first and by locale-aware name comparison second.
func FilterProducts(products []models.Product, f Filter) []models.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Reference), search) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		matched = append(matched, p)
	}

	SortProducts(matched)
	return matched
}

// SortProducts orders by the integer extracted from the reference, with
// a case-insensitive French collation on the name as tiebreak.
func SortProducts(products []models.Product) {
	collator := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(products, func(i, j int) bool {
		ni, nj := referenceNumber(products[i].Reference), referenceNumber(products[j].Reference)
		if ni != nj {
			return ni < nj
		}
		return collator.CompareString(products[i].Name, products[j].Name) < 0
	})
}

// Stats aggregates the filtered view for the dashboard strip.
type Stats struct {
	Count         int     `json:"count"`
	TotalPrice    float64 `json:"total_price"`
	TotalPurchase float64 `json:"total_purchase"`
	TotalMargin   float64 `json:"total_margin"`
}

func ComputeStats(products []models.Product) Stats {
	var s Stats
	for i := range products {
		s.Count++
		s.TotalPrice += products[i].Price
		s.TotalPurchase += products[i].PurchasePrice
		s.TotalMargin += products[i].Margin()
	}
	return s
}
