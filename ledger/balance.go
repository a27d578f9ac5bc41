/*
balance.go - Usable balance as of a simulated day

PURPOSE:
  Computes the balance an account may spend as of simulated day D from its
  deposit history. A deposit made on day d becomes usable on day d+1, so a
  deposit contributes its amount when d+1 <= D and contributes zero
  otherwise.

INVARIANT:
  AvailableBalance is a pure fold over the deposit history. It is
  monotonically non-decreasing in D: raising the as-of day can only admit
  more deposits, never remove one.

SEE ALSO:
  - validate.go: funds check subtracts already-recorded purchase prices
*/
package ledger

import "github.com/shopspring/decimal"

// AvailableBalance returns the sum of every deposit usable as of asOfDay.
// A deposit made on day d is usable from day d+1 onward; deposits made on
// or after asOfDay contribute zero. Pure function, no side effects.
func AvailableBalance(a *Account, asOfDay int) decimal.Decimal {
	total := decimal.Zero
	for _, d := range a.Deposits {
		// d.Day < asOfDay, not d.Day+1 <= asOfDay: the addition would
		// wrap for a deposit recorded on the maximum representable day.
		if d.Day < asOfDay {
			total = total.Add(d.Amount)
		}
	}
	return total
}
