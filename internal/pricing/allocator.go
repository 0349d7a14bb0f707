// Package pricing is the checkout-time discount allocator. It is a pure
// package used by both the display-mode cart quote and the authoritative
// checkout-session creation, so the number a client sees is the number the
// provider charges.
package pricing

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
)

// Item is one priced cart line entering the allocator. SurchargeCents covers
// extras (additional aspect ratio fee) and is never discounted.
type Item struct {
	ID             snowflake.ID
	RecipeID       snowflake.ID
	PriceCents     int64
	SurchargeCents int64
}

// ItemQuote is the frozen per-item pricing produced by Allocate. Orders copy
// these fields verbatim at materialization time.
type ItemQuote struct {
	ItemID            snowflake.ID `json:"item_id"`
	RecipeID          snowflake.ID `json:"recipe_id"`
	ListPriceCents    int64        `json:"list_price_cents"`
	DiscountPercent   int          `json:"discount_percent"`
	DiscountCents     int64        `json:"discount_cents"`
	SurchargeCents    int64        `json:"surcharge_cents"`
	TotalChargedCents int64        `json:"total_charged_cents"`
}

// DiscountPercentFor returns the discount owed to a brand's count-th video:
// the highest tier whose threshold is at or below the count.
func DiscountPercentFor(count int, tiers []catalogdomain.DiscountTier) int {
	pct := 0
	for _, t := range tiers {
		if t.MinVideoCount <= count && t.DiscountPercent > pct {
			pct = t.DiscountPercent
		}
	}
	return pct
}

// SlotDiscounts computes the per-position discount for n cart slots: position
// i prices as the (lifetimeCount+i+1)-th video ever ordered, so tiers can be
// crossed mid-cart.
func SlotDiscounts(lifetimeCount, n int, tiers []catalogdomain.DiscountTier) []int {
	slots := make([]int, n)
	for i := 0; i < n; i++ {
		slots[i] = DiscountPercentFor(lifetimeCount+i+1, tiers)
	}
	return slots
}

// Allocate assigns the slot-discount multiset to the cart items by descending
// price: the largest discount lands on the most expensive item. The returned
// quotes are in the original item order. Discount cents round half away from
// zero; money never leaves integer cents.
func Allocate(items []Item, lifetimeCount int, tiers []catalogdomain.DiscountTier) []ItemQuote {
	n := len(items)
	if n == 0 {
		return []ItemQuote{}
	}

	slots := SlotDiscounts(lifetimeCount, n, tiers)
	sort.Sort(sort.Reverse(sort.IntSlice(slots)))

	byPrice := make([]int, n)
	for i := range byPrice {
		byPrice[i] = i
	}
	sort.SliceStable(byPrice, func(a, b int) bool {
		return items[byPrice[a]].PriceCents > items[byPrice[b]].PriceCents
	})

	quotes := make([]ItemQuote, n)
	for rank, idx := range byPrice {
		item := items[idx]
		pct := slots[rank]
		discount := roundPercent(item.PriceCents, pct)
		quotes[idx] = ItemQuote{
			ItemID:            item.ID,
			RecipeID:          item.RecipeID,
			ListPriceCents:    item.PriceCents,
			DiscountPercent:   pct,
			DiscountCents:     discount,
			SurchargeCents:    item.SurchargeCents,
			TotalChargedCents: item.PriceCents - discount + item.SurchargeCents,
		}
	}
	return quotes
}

// Totals sums a quote set for display and ledger updates.
type Totals struct {
	ListCents     int64 `json:"list_cents"`
	DiscountCents int64 `json:"discount_cents"`
	ChargedCents  int64 `json:"charged_cents"`
}

func SumQuotes(quotes []ItemQuote) Totals {
	var t Totals
	for _, q := range quotes {
		t.ListCents += q.ListPriceCents
		t.DiscountCents += q.DiscountCents
		t.ChargedCents += q.TotalChargedCents
	}
	return t
}

// roundPercent is price*pct/100 rounded to the nearest cent, halves away
// from zero. Prices are non-negative so the integer form is exact.
func roundPercent(priceCents int64, pct int) int64 {
	return (priceCents*int64(pct) + 50) / 100
}
