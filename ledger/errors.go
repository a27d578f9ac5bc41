/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All ledger errors in one place. The taxonomy is small and fixed:

    ErrInvalidInput  malformed or semantically invalid request
    ErrNotFound      referenced account/product does not exist for a read
    ErrConflict      well-formed request that current state rejects
    ErrFault         internal invariant violation; never a user error

  Structured errors wrap a sentinel via Unwrap(), so callers can match
  with errors.Is() for the kind and errors.As() for the details. The
  transport layer maps kinds to status codes and forwards messages
  verbatim; the ledger never reports failure through ambient state.

SEE ALSO:
  - validate.go: produces the structured rejection errors
  - api: maps kinds to HTTP statuses
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for malformed or semantically invalid
	// requests: missing fields, non-positive amounts or days, unknown
	// referenced entities on writes, illegal purchase ordering.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a read references an account or product
	// that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a well-formed request violates current
	// ledger state: stock exhausted or insufficient funds.
	ErrConflict = errors.New("conflict with ledger state")

	// ErrFault signals an internal invariant violation, e.g. negative
	// derived stock. Always surfaced and logged, never silently corrected.
	ErrFault = errors.New("ledger invariant violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry rejection context
// =============================================================================

// OutOfStockError rejects a purchase because the product has no remaining
// stock as of the requested simulated day.
type OutOfStockError struct {
	ProductID string
	Day       int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s has no remaining stock as of day %d", e.ProductID, e.Day)
}

func (e *OutOfStockError) Unwrap() error { return ErrConflict }

// InsufficientFundsError rejects a purchase because the account cannot
// cover the product price after all already-recorded purchases.
type InsufficientFundsError struct {
	AccountID string
	Available decimal.Decimal
	Price     decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("account %s has %s available, product costs %s",
		e.AccountID, e.Available, e.Price)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrConflict }

// PurchaseOrderError rejects a purchase recorded before the account's most
// recent prior purchase on its own simulated timeline.
type PurchaseOrderError struct {
	AccountID string
	LastDay   int
	Day       int
}

func (e *PurchaseOrderError) Error() string {
	return fmt.Sprintf("account %s already purchased on day %d, cannot purchase on earlier day %d",
		e.AccountID, e.LastDay, e.Day)
}

func (e *PurchaseOrderError) Unwrap() error { return ErrInvalidInput }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidInput reports whether err is a malformed-request rejection.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsNotFound reports whether err indicates a missing account or product.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a state-based rejection (stock/funds).
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsFault reports whether err is an internal invariant violation.
func IsFault(err error) bool { return errors.Is(err, ErrFault) }
