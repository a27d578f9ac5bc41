/*
coordinator.go - Serialization of mutating ledger operations

PURPOSE:
  Makes validate-then-append behave atomically under concurrent requests.
  Two exclusivity resources exist:

    per-account lock   deposits, and an account's funds/ordering checks
    global stock lock  every stock-affecting read+write

  The stock lock is global rather than per product because stock is
  derived by scanning ALL accounts' purchases: two concurrent purchases
  of the same product on different accounts must not both pass the stock
  check before either commits (the over-sell race).

LOCK ORDER:
  Account lock first, stock lock second, always. The purchase path nests
  WithStockLock inside WithAccountLock; nothing ever acquires them in the
  opposite order.

  Locks are released on every exit path, including an error inside fn.
  No I/O happens under either lock, so acquisition is fast and no
  timeout or cancellation semantics are needed.
*/
package ledger

import "sync"

// Coordinator hands out scoped exclusivity for ledger mutations.
type Coordinator struct {
	mu       sync.Mutex // guards the accounts map itself
	accounts map[string]*sync.Mutex
	stock    sync.Mutex
}

// NewCoordinator creates a coordinator with no locks held.
func NewCoordinator() *Coordinator {
	return &Coordinator{accounts: make(map[string]*sync.Mutex)}
}

// WithAccountLock runs fn while holding exclusivity for accountID.
// The lock is released when fn returns, error or not.
func (c *Coordinator) WithAccountLock(accountID string, fn func() error) error {
	lock := c.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// WithStockLock runs fn while holding the global stock exclusivity.
// Held across both the stock check and the purchase commit.
func (c *Coordinator) WithStockLock(fn func() error) error {
	c.stock.Lock()
	defer c.stock.Unlock()
	return fn()
}

// accountLock returns the mutex for accountID, allocating it on first
// use. Locks are never reclaimed; accounts are never deleted.
func (c *Coordinator) accountLock(accountID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.accounts[accountID]
	if !ok {
		lock = &sync.Mutex{}
		c.accounts[accountID] = lock
	}
	return lock
}
