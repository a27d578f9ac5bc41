/*
validate.go - Purchase admission decision

PURPOSE:
  Decides whether a purchase request may be committed, and produces a
  specific rejection when it may not. The checks run in a fixed order and
  short-circuit on the first failure:

    1. product exists              -> ErrInvalidInput
    2. simulated day >= 1          -> ErrInvalidInput
    3. account exists              -> ErrInvalidInput
    4. stock available             -> OutOfStockError (Conflict)
    5. funds sufficient            -> InsufficientFundsError (Conflict)
    6. purchase ordering legal     -> PurchaseOrderError (InvalidInput)

  The validator is read-only: it never mutates state, so the same inputs
  against the same ledger state always yield the same decision. The caller
  commits an admitted purchase through the Coordinator.

FUNDS RULE:
  Usable balance as of the request day, minus the price of EVERY purchase
  already recorded for the account (regardless of day), must cover the
  candidate product's price.

ORDERING RULE:
  A purchase may not be recorded at a simulated day earlier than the
  account's most recent prior purchase. Compared against the maximum day
  among recorded purchases.
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator performs the purchase admission checks.
type Validator struct {
	store *Store
	stock *StockEngine
}

// NewValidator creates a validator over the given store.
func NewValidator(store *Store, stock *StockEngine) *Validator {
	return &Validator{store: store, stock: stock}
}

// Admission is a positive decision: the resolved account and product for
// the caller to commit.
type Admission struct {
	Account Account
	Product Product
	Day     int
}

// Validate runs the admission checks for a purchase request. It returns
// an Admission on success and one of the taxonomy errors on rejection.
//
// Callers that need check-then-commit atomicity must hold the account
// lock and the stock lock across both Validate and the append.
func (v *Validator) Validate(accountID, productID string, day int) (Admission, error) {
	// 1. Product must exist. On a write path an unknown reference is
	// invalid input, not a missing read target.
	product, err := v.store.GetProduct(productID)
	if err != nil {
		return Admission{}, fmt.Errorf("%w: unknown product %s", ErrInvalidInput, productID)
	}

	// 2. Purchases must happen on day 1 or later.
	if day < 1 {
		return Admission{}, fmt.Errorf("%w: simulated day must be >= 1, got %d", ErrInvalidInput, day)
	}

	// 3. Account must exist.
	account, err := v.store.GetAccount(accountID)
	if err != nil {
		return Admission{}, fmt.Errorf("%w: unknown account %s", ErrInvalidInput, accountID)
	}

	// 4. At least one unit must remain. Admission checks capacity against
	// EVERY recorded sale, whatever its day: sales on the request day and
	// sales recorded at later days all occupy units, so no admitted
	// purchase can ever drive derived stock negative. Day-indexed reads
	// stay strictly-before; only admission uses the total.
	if v.stock.TotalSold(productID) >= product.Stock {
		return Admission{}, &OutOfStockError{ProductID: productID, Day: day}
	}

	// 5. Usable balance minus everything already spent must cover the price.
	spent, err := v.spentTotal(&account)
	if err != nil {
		return Admission{}, err
	}
	available := AvailableBalance(&account, day).Sub(spent)
	if available.LessThan(product.Price) {
		return Admission{}, &InsufficientFundsError{
			AccountID: accountID,
			Available: available,
			Price:     product.Price,
		}
	}

	// 6. The account's purchase timeline must stay monotonic.
	if last, exists := account.LastPurchaseDay(); exists && day < last {
		return Admission{}, &PurchaseOrderError{AccountID: accountID, LastDay: last, Day: day}
	}

	return Admission{Account: account, Product: product, Day: day}, nil
}

// spentTotal sums the prices of all purchases already recorded for the
// account. A purchase referencing a vanished product is a fault: products
// are never deleted, so the lookup cannot legitimately fail.
func (v *Validator) spentTotal(a *Account) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range a.Purchases {
		product, err := v.store.GetProduct(p.ProductID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: purchase %s references missing product %s",
				ErrFault, p.ID, p.ProductID)
		}
		total = total.Add(product.Price)
	}
	return total, nil
}
