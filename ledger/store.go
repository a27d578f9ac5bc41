/*
store.go - Authoritative in-memory collection of accounts and products

PURPOSE:
  The Store owns all ledger state. Every mutation goes through it, and
  every read returns a snapshot copy so callers can never reach interior
  pointers and observe a partially-appended record.

APPEND-ONLY CONTRACT:
  Accounts and products are created once and never deleted. Deposits and
  purchases are appended and never updated or removed. The only mutable
  field is the account's cached display balance, refreshed after a
  deposit commit.

LOCKING:
  The internal RWMutex makes individual operations atomic and lets
  concurrent reads proceed together. It does NOT make validate-then-append
  sequences atomic - that is the Coordinator's job (coordinator.go); the
  mutating methods here are only called under its per-account / stock
  exclusivity.

SEE ALSO:
  - coordinator.go: serialization of validate-then-append
  - service.go: operation orchestration
*/
package ledger

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the authoritative mapping of account id to Account and product
// id to Product.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	products map[string]*Product

	// Creation order, so listings are deterministic.
	accountOrder []string
	productOrder []string

	seq uint64 // global creation sequence for record tie-breaking
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*Account),
		products: make(map[string]*Product),
	}
}

// NewID returns a fresh unique identifier.
func NewID() string {
	return ulid.Make().String()
}

// =============================================================================
// CREATION
// =============================================================================

// CreateAccount registers a new account with a fresh id, zero balance and
// empty histories. Always succeeds.
func (s *Store) CreateAccount(name string) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Account{
		ID:      NewID(),
		Name:    name,
		Balance: decimal.Zero,
	}
	s.accounts[a.ID] = a
	s.accountOrder = append(s.accountOrder, a.ID)
	return a.Summary()
}

// CreateProduct registers a new product. Price and stock must be positive
// and the title non-empty.
func (s *Store) CreateProduct(title, description string, price decimal.Decimal, stock int) (Product, error) {
	if title == "" {
		return Product{}, fmt.Errorf("%w: product title is required", ErrInvalidInput)
	}
	if !price.IsPositive() {
		return Product{}, fmt.Errorf("%w: product price must be positive", ErrInvalidInput)
	}
	if stock <= 0 {
		return Product{}, fmt.Errorf("%w: product stock must be positive", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Product{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Price:       price,
		Stock:       stock,
	}
	s.products[p.ID] = p
	s.productOrder = append(s.productOrder, p.ID)
	return *p, nil
}

// =============================================================================
// READS - snapshot copies only
// =============================================================================

// GetAccount returns a snapshot of the account, histories included.
func (s *Store) GetAccount(id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: account %s", ErrNotFound, id)
	}
	return snapshotAccount(a), nil
}

// GetProduct returns a copy of the product.
func (s *Store) GetProduct(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return *p, nil
}

// ListAccounts returns summaries of all accounts in creation order.
func (s *Store) ListAccounts() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.accountOrder))
	for _, id := range s.accountOrder {
		out = append(out, s.accounts[id].Summary())
	}
	return out
}

// ListProducts returns copies of all products in creation order.
func (s *Store) ListProducts() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		out = append(out, *s.products[id])
	}
	return out
}

// =============================================================================
// MUTATION - only under Coordinator exclusivity
// =============================================================================

// AppendDeposit appends a deposit record to the account and returns it.
// Must be called under the account's Coordinator lock.
func (s *Store) AppendDeposit(accountID string, amount decimal.Decimal, day int) (Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return Deposit{}, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}

	s.seq++
	d := Deposit{ID: NewID(), Amount: amount, Day: day, Seq: s.seq}
	a.Deposits = append(a.Deposits, d)
	return d, nil
}

// AppendPurchase appends a purchase record to the account and returns it.
// Must be called under the account's Coordinator lock AND the stock lock,
// since it changes every product-stock derivation.
func (s *Store) AppendPurchase(accountID, productID string, day int) (Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return Purchase{}, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}
	if _, ok := s.products[productID]; !ok {
		return Purchase{}, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}

	s.seq++
	p := Purchase{ID: NewID(), AccountID: accountID, ProductID: productID, Day: day, Seq: s.seq}
	a.Purchases = append(a.Purchases, p)
	return p, nil
}

// RefreshBalance stores a newly derived balance as the account's cached
// display value. Must be called under the account's Coordinator lock.
func (s *Store) RefreshBalance(accountID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}
	a.Balance = balance
	return nil
}

// =============================================================================
// STOCK SCAN SUPPORT
// =============================================================================

// countPurchases counts recorded purchases of productID with a simulated
// day strictly less than beforeDay, across all accounts. Sales are not
// indexed per product, so this is a global scan.
func (s *Store) countPurchases(productID string, beforeDay int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sold := 0
	for _, a := range s.accounts {
		for _, p := range a.Purchases {
			if p.ProductID == productID && p.Day < beforeDay {
				sold++
			}
		}
	}
	return sold
}

// countAllPurchases counts every recorded purchase of productID with no
// day bound. Admission checks capacity against this; a strict day filter
// would miss a sale recorded on the last representable day.
func (s *Store) countAllPurchases(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sold := 0
	for _, a := range s.accounts {
		for _, p := range a.Purchases {
			if p.ProductID == productID {
				sold++
			}
		}
	}
	return sold
}

func snapshotAccount(a *Account) Account {
	cp := *a
	cp.Deposits = append([]Deposit(nil), a.Deposits...)
	cp.Purchases = append([]Purchase(nil), a.Purchases...)
	return cp
}
