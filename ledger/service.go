/*
service.go - Operation facade over store, engines and coordinator

PURPOSE:
  The Service implements the ledger's operation contracts: account and
  product creation, day-indexed reads, deposit registration and purchase
  registration. It owns the locking discipline so the engines and the
  validator can stay read-only:

    RegisterDeposit    account lock
    RegisterPurchase   account lock, then stock lock, held across
                       validate AND commit

  Read-only operations take no coordinator locks; the store's RWMutex
  already guarantees they never observe a half-appended record.

CACHED BALANCE:
  After a deposit commit the account's display balance is refreshed to
  the derived usable balance as of the deposit's day. Purchases do not
  touch the cached balance; the funds check derives everything it needs.

SEE ALSO:
  - validate.go: admission rules for purchases
  - coordinator.go: the exclusivity resources used here
*/
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/simledger/metrics"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service wires the ledger components together and exposes the operation
// contracts consumed by the transport layer.
type Service struct {
	store     *Store
	stock     *StockEngine
	validator *Validator
	coord     *Coordinator
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// NewService creates a fully wired ledger service.
func NewService(log zerolog.Logger, m *metrics.Metrics) *Service {
	store := NewStore()
	stock := NewStockEngine(store)
	return &Service{
		store:     store,
		stock:     stock,
		validator: NewValidator(store, stock),
		coord:     NewCoordinator(),
		log:       log,
		metrics:   m,
	}
}

// Store exposes the underlying store for read-only inspection in tests.
func (s *Service) Store() *Store { return s.store }

// =============================================================================
// ACCOUNTS
// =============================================================================

// CreateAccount registers a new account with zero balance.
func (s *Service) CreateAccount(name string) (Summary, error) {
	if name == "" {
		return Summary{}, fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}

	summary := s.store.CreateAccount(name)
	if s.metrics != nil {
		s.metrics.AccountsCreated.Inc()
	}
	s.log.Info().Str("account_id", summary.ID).Str("name", name).Msg("account created")
	return summary, nil
}

// ListAccounts returns all account summaries.
func (s *Service) ListAccounts() []Summary {
	return s.store.ListAccounts()
}

// GetAccount returns one account summary, or ErrNotFound.
func (s *Service) GetAccount(id string) (Summary, error) {
	a, err := s.store.GetAccount(id)
	if err != nil {
		return Summary{}, err
	}
	return a.Summary(), nil
}

// =============================================================================
// DEPOSITS
// =============================================================================

// RegisterDeposit appends a deposit to the account and returns the
// summary with the balance derived as of the deposit's day. The deposit
// itself only becomes usable the following day, so it is absent from the
// returned balance.
func (s *Service) RegisterDeposit(accountID string, amount decimal.Decimal, day int) (Summary, error) {
	if !amount.IsPositive() {
		return Summary{}, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}
	if day < 1 {
		return Summary{}, fmt.Errorf("%w: simulated day must be >= 1, got %d", ErrInvalidInput, day)
	}
	// Unknown account on a write path is invalid input, per the operation
	// contract, not a missing read target.
	if _, err := s.store.GetAccount(accountID); err != nil {
		return Summary{}, fmt.Errorf("%w: unknown account %s", ErrInvalidInput, accountID)
	}

	var summary Summary
	err := s.coord.WithAccountLock(accountID, func() error {
		if _, err := s.store.AppendDeposit(accountID, amount, day); err != nil {
			return err
		}

		account, err := s.store.GetAccount(accountID)
		if err != nil {
			return err
		}
		balance := AvailableBalance(&account, day)
		if err := s.store.RefreshBalance(accountID, balance); err != nil {
			return err
		}

		summary = Summary{ID: account.ID, Name: account.Name, Balance: balance}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if s.metrics != nil {
		s.metrics.DepositsRegistered.Inc()
		s.metrics.DepositAmount.Observe(amount.InexactFloat64())
	}
	s.log.Info().
		Str("account_id", accountID).
		Str("amount", amount.String()).
		Int("day", day).
		Msg("deposit registered")
	return summary, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

// CreateProduct registers a new product.
func (s *Service) CreateProduct(title, description string, price decimal.Decimal, stock int) (Product, error) {
	p, err := s.store.CreateProduct(title, description, price, stock)
	if err != nil {
		return Product{}, err
	}
	if s.metrics != nil {
		s.metrics.ProductsCreated.Inc()
	}
	s.log.Info().Str("product_id", p.ID).Str("title", title).Int("stock", stock).Msg("product created")
	return p, nil
}

// ListProducts returns all products with stock reduced by sales recorded
// strictly before asOfDay.
func (s *Service) ListProducts(asOfDay int) ([]ProductView, error) {
	if asOfDay < 0 {
		return nil, fmt.Errorf("%w: simulated day must be >= 0, got %d", ErrInvalidInput, asOfDay)
	}

	products := s.store.ListProducts()
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		view, err := s.productView(p, asOfDay)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetProduct returns one product with stock reduced as of asOfDay, or
// ErrNotFound.
func (s *Service) GetProduct(id string, asOfDay int) (ProductView, error) {
	if asOfDay < 0 {
		return ProductView{}, fmt.Errorf("%w: simulated day must be >= 0, got %d", ErrInvalidInput, asOfDay)
	}

	p, err := s.store.GetProduct(id)
	if err != nil {
		return ProductView{}, err
	}
	return s.productView(p, asOfDay)
}

func (s *Service) productView(p Product, asOfDay int) (ProductView, error) {
	remaining, err := s.stock.RemainingStock(p, asOfDay)
	if err != nil {
		s.log.Error().Err(err).Str("product_id", p.ID).Int("day", asOfDay).Msg("stock derivation fault")
		return ProductView{}, err
	}
	return ProductView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Stock:       remaining,
		AsOfDay:     asOfDay,
	}, nil
}

// =============================================================================
// PURCHASES
// =============================================================================

// RegisterPurchase validates and commits a purchase of one product unit.
// The admission checks and the append run under the account lock and the
// global stock lock, so two concurrent purchases can never both observe
// sufficient stock for the last unit.
func (s *Service) RegisterPurchase(accountID, productID string, day int) error {
	start := time.Now()

	err := s.coord.WithAccountLock(accountID, func() error {
		return s.coord.WithStockLock(func() error {
			adm, err := s.validator.Validate(accountID, productID, day)
			if err != nil {
				return err
			}
			_, err = s.store.AppendPurchase(adm.Account.ID, adm.Product.ID, adm.Day)
			return err
		})
	})

	if s.metrics != nil {
		s.metrics.PurchaseDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.observeRejection(accountID, productID, day, err)
		return err
	}

	if s.metrics != nil {
		s.metrics.PurchasesAdmitted.Inc()
	}
	s.log.Info().
		Str("account_id", accountID).
		Str("product_id", productID).
		Int("day", day).
		Msg("purchase registered")
	return nil
}

func (s *Service) observeRejection(accountID, productID string, day int, err error) {
	reason := metrics.ReasonInvalidInput
	switch {
	case IsFault(err):
		reason = metrics.ReasonFault
	case IsConflict(err):
		reason = metrics.ReasonNoFunds
		var oos *OutOfStockError
		if errors.As(err, &oos) {
			reason = metrics.ReasonOutOfStock
		}
	}

	if s.metrics != nil {
		s.metrics.PurchasesRejected.WithLabelValues(reason).Inc()
	}

	evt := s.log.Info()
	if IsFault(err) {
		// Faults are invariant violations, never user errors.
		evt = s.log.Error()
	}
	evt.Err(err).
		Str("account_id", accountID).
		Str("product_id", productID).
		Int("day", day).
		Str("reason", reason).
		Msg("purchase rejected")
}
