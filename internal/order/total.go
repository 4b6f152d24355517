package order

import "github.com/shopspring/decimal"

// TotalAmount returns the sum of price*quantity over items. Decimal
// arithmetic keeps repeated recomputation exact; the stored total must
// always equal this sum over the order's current items.
func TotalAmount(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
