/*
stock.go - Remaining product stock as of a simulated day

PURPOSE:
  Derives how many units of a product have been sold strictly before a
  simulated day, and how many remain. Capacity is never decremented in
  place; the stock figure is always total capacity minus recorded sales.

INVARIANTS:
  - SoldCount counts purchases with day strictly less than the query day.
  - RemainingStock is monotonically non-increasing in the query day.
  - A negative remaining stock cannot occur when purchases are committed
    under the stock lock; if observed it is surfaced as ErrFault, never
    returned as a valid value.
*/
package ledger

import "fmt"

// StockEngine derives product stock figures from the store's recorded
// purchases.
type StockEngine struct {
	store *Store
}

// NewStockEngine creates a stock engine over the given store.
func NewStockEngine(store *Store) *StockEngine {
	return &StockEngine{store: store}
}

// SoldCount returns the number of units of productID sold at a simulated
// day strictly less than beforeDay. The scan covers all accounts because
// sales are recorded per account, not per product.
func (e *StockEngine) SoldCount(productID string, beforeDay int) int {
	return e.store.countPurchases(productID, beforeDay)
}

// TotalSold returns the number of units of productID sold at any
// simulated day. Admission checks capacity against this figure: a sale
// recorded at a later day still occupies a unit, and counting it keeps
// derived stock non-negative at every day.
func (e *StockEngine) TotalSold(productID string) int {
	return e.store.countAllPurchases(productID)
}

// RemainingStock returns the product's capacity minus units sold before
// asOfDay. A negative result means a purchase was committed past capacity
// and is reported as ErrFault.
func (e *StockEngine) RemainingStock(p Product, asOfDay int) (int, error) {
	remaining := p.Stock - e.SoldCount(p.ID, asOfDay)
	if remaining < 0 {
		return 0, fmt.Errorf("%w: product %s oversold, remaining stock %d as of day %d",
			ErrFault, p.ID, remaining, asOfDay)
	}
	return remaining, nil
}

// HasStock reports whether at least one unit of productID remains as of
// asOfDay.
func (e *StockEngine) HasStock(p Product, asOfDay int) (bool, error) {
	remaining, err := e.RemainingStock(p, asOfDay)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}
