//go:build property
// +build property

package models_test

import (
	"testing"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func catalog(cents []int, discounts []int) []models.Product {
	out := make([]models.Product, len(cents))
	for i := range cents {
		out[i] = models.Product{
			ID:    uint(i + 1),
			Name:  "p",
			Price: decimal.New(int64(cents[i]), -2),
		}
		if i < len(discounts) && discounts[i] > 0 {
			out[i].OnSale = true
			out[i].Discount = discounts[i]
		}
	}
	return out
}

// Property: adding any sequence of lines keeps one row per product and
// ItemCount equal to the units added.
func TestCartMergeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one line per product, count is sum of quantities", prop.ForAll(
		func(picks []int, qtys []int) bool {
			products := catalog([]int{100, 250, 999, 1, 4200}, nil)
			cart := &models.Cart{}
			added := 0
			for i := 0; i < len(picks) && i < len(qtys); i++ {
				if err := cart.AddItem(products[picks[i]], qtys[i]); err != nil {
					return false
				}
				added += qtys[i]
			}
			seen := map[uint]bool{}
			for _, it := range cart.Items {
				if seen[it.ProductID] {
					return false
				}
				seen[it.ProductID] = true
			}
			return cart.ItemCount() == added
		},
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.SliceOf(gen.IntRange(1, 10)),
	))

	properties.TestingRun(t)
}

// Property: the order snapshot total equals the cart total and the sum of line totals.
func TestSnapshotTotalProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("snapshot total matches cart total", prop.ForAll(
		func(cents []int, discounts []int, qty int) bool {
			if len(cents) == 0 {
				return true
			}
			cart := &models.Cart{}
			for _, p := range catalog(cents, discounts) {
				if err := cart.AddItem(p, qty); err != nil {
					return false
				}
			}
			items, total := cart.Snapshot()
			sum := decimal.Zero
			for _, it := range items {
				if !it.Total.Equal(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
					return false
				}
				sum = sum.Add(it.Total)
			}
			return total.Equal(cart.TotalPrice()) && total.Equal(sum)
		},
		gen.SliceOf(gen.IntRange(1, 1000000)),
		gen.SliceOf(gen.IntRange(0, 100)),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
