/*
Package ledger implements a day-indexed purchasing ledger.

PURPOSE:
  Accounts accrue deposits and spend them on products. Every record is
  tagged with a simulated day supplied by the caller; there is no wall
  clock anywhere in this package. Balances and stock are never stored as
  the source of truth - they are recomputed from history as of a given
  simulated day.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: identity plus append-only deposit and purchase histories
  - Deposit: an amount that becomes usable the day AFTER it is made
  - Product: immutable price and total capacity; remaining stock is derived
  - Purchase: a sale of one unit of a product on a simulated day

DESIGN PRINCIPLES:
  1. Immutability: deposits and purchases are never updated or deleted
  2. Precision: uses decimal.Decimal to avoid floating-point money errors
  3. Derivation: balance and stock are folds over history, not counters

SEE ALSO:
  - balance.go: usable balance as of a simulated day
  - stock.go: units sold strictly before a simulated day
  - store.go: the authoritative in-memory collection
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// ACCOUNT
// =============================================================================

// Account holds an account's identity and its full transaction history.
// Deposits and Purchases are append-only and ordered by creation.
//
// Balance is a cached display value refreshed after each deposit commit;
// the authoritative figure is always AvailableBalance over Deposits.
type Account struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	Deposits  []Deposit
	Purchases []Purchase
}

// Summary is the external view of an account: identity plus the cached
// balance. Histories are never exposed through the API.
type Summary struct {
	ID      string
	Name    string
	Balance decimal.Decimal
}

// Summary returns the account's external view.
func (a *Account) Summary() Summary {
	return Summary{ID: a.ID, Name: a.Name, Balance: a.Balance}
}

// LastPurchaseDay returns the maximum simulated day among the account's
// recorded purchases, and whether any purchase exists. Purchases are not
// guaranteed to be sorted by day (a valid history has equal days), so this
// scans rather than trusting order.
func (a *Account) LastPurchaseDay() (int, bool) {
	if len(a.Purchases) == 0 {
		return 0, false
	}
	last := a.Purchases[0].Day
	for _, p := range a.Purchases[1:] {
		if p.Day > last {
			last = p.Day
		}
	}
	return last, true
}

// =============================================================================
// DEPOSIT / PURCHASE - Immutable history records
// =============================================================================

// Deposit records money added to an account on a simulated day.
// Immutable once created. A deposit made on day d is usable from day d+1.
type Deposit struct {
	ID     string
	Amount decimal.Decimal
	Day    int
	Seq    uint64 // creation order, for tie-breaking records on the same day
}

// Purchase records the sale of one product unit to an account.
// Immutable once created.
type Purchase struct {
	ID        string
	AccountID string
	ProductID string
	Day       int
	Seq       uint64
}

// =============================================================================
// PRODUCT
// =============================================================================

// Product is a sellable item. Stock is the total capacity set at creation
// and never decremented in place; remaining stock as of a day is always
// derived from recorded purchases.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// ProductView is a product as seen on a given simulated day: the same
// record with Stock replaced by the remaining stock as of that day.
type ProductView struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	AsOfDay     int
}
