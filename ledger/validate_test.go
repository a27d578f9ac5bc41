package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/simledger/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type validatorFixture struct {
	store     *ledger.Store
	validator *ledger.Validator
}

func newValidatorFixture(t *testing.T) *validatorFixture {
	t.Helper()
	store := ledger.NewStore()
	return &validatorFixture{
		store:     store,
		validator: ledger.NewValidator(store, ledger.NewStockEngine(store)),
	}
}

// fundedAccount creates an account with amount usable from day fundedDay+1.
func (f *validatorFixture) fundedAccount(t *testing.T, amount float64, fundedDay int) ledger.Summary {
	t.Helper()
	a := f.store.CreateAccount("buyer")
	_, err := f.store.AppendDeposit(a.ID, money(amount), fundedDay)
	require.NoError(t, err)
	return a
}

func (f *validatorFixture) product(t *testing.T, price float64, stock int) ledger.Product {
	t.Helper()
	p, err := f.store.CreateProduct("widget", "a widget", money(price), stock)
	require.NoError(t, err)
	return p
}

// =============================================================================
// INPUT VALIDITY (checks 1-3)
// =============================================================================

func TestValidate_UnknownProduct(t *testing.T) {
	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 100, 1)

	_, err := f.validator.Validate(a.ID, "no-such-product", 2)

	require.Error(t, err)
	assert.True(t, ledger.IsInvalidInput(err))
}

func TestValidate_DayBeforeOne(t *testing.T) {
	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 100, 1)
	p := f.product(t, 50, 1)

	for _, day := range []int{0, -1} {
		_, err := f.validator.Validate(a.ID, p.ID, day)
		require.Error(t, err)
		assert.True(t, ledger.IsInvalidInput(err), "day %d should be invalid", day)
	}
}

func TestValidate_UnknownAccount(t *testing.T) {
	f := newValidatorFixture(t)
	p := f.product(t, 50, 1)

	_, err := f.validator.Validate("no-such-account", p.ID, 2)

	require.Error(t, err)
	assert.True(t, ledger.IsInvalidInput(err))
}

func TestValidate_ProductCheckedBeforeDay(t *testing.T) {
	// The checks short-circuit in a fixed order: an unknown product is
	// reported even when the day is also invalid.

	f := newValidatorFixture(t)

	_, err := f.validator.Validate("nobody", "nothing", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "product")
}

// =============================================================================
// STOCK (check 4)
// =============================================================================

func TestValidate_StockExhausted(t *testing.T) {
	// GIVEN: A stock-1 product already sold on day 2
	// WHEN: Another funded account tries to buy on day 3
	// THEN: Conflict with an out-of-stock rejection

	f := newValidatorFixture(t)
	first := f.fundedAccount(t, 100, 1)
	p := f.product(t, 50, 1)
	_, err := f.store.AppendPurchase(first.ID, p.ID, 2)
	require.NoError(t, err)

	second := f.store.CreateAccount("second buyer")
	_, err = f.store.AppendDeposit(second.ID, money(100), 1)
	require.NoError(t, err)

	_, err = f.validator.Validate(second.ID, p.ID, 3)

	require.Error(t, err)
	assert.True(t, ledger.IsConflict(err))
	var oos *ledger.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, p.ID, oos.ProductID)
}

func TestValidate_SameDaySaleCountsAgainstStock(t *testing.T) {
	// A sale already recorded on the request day consumes capacity for
	// admission purposes, even though day-indexed reads do not show it
	// until the next day.

	f := newValidatorFixture(t)
	first := f.fundedAccount(t, 100, 1)
	p := f.product(t, 50, 1)
	_, err := f.store.AppendPurchase(first.ID, p.ID, 2)
	require.NoError(t, err)

	second := f.store.CreateAccount("second buyer")
	_, err = f.store.AppendDeposit(second.ID, money(100), 1)
	require.NoError(t, err)

	_, err = f.validator.Validate(second.ID, p.ID, 2)

	require.Error(t, err)
	var oos *ledger.OutOfStockError
	assert.ErrorAs(t, err, &oos)
}

// =============================================================================
// FUNDS (check 5)
// =============================================================================

func TestValidate_InsufficientFunds(t *testing.T) {
	// GIVEN: 100 usable as of day 5
	// WHEN: Attempting to buy a product priced 150
	// THEN: Conflict with available/price detail

	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 100, 1)
	p := f.product(t, 150, 10)

	_, err := f.validator.Validate(a.ID, p.ID, 5)

	require.Error(t, err)
	assert.True(t, ledger.IsConflict(err))
	var nsf *ledger.InsufficientFundsError
	require.ErrorAs(t, err, &nsf)
	assert.True(t, nsf.Available.Equal(money(100)))
	assert.True(t, nsf.Price.Equal(money(150)))
}

func TestValidate_DepositNotUsableOnItsOwnDay(t *testing.T) {
	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 100, 1)
	p := f.product(t, 50, 10)

	_, err := f.validator.Validate(a.ID, p.ID, 1)

	require.Error(t, err)
	var nsf *ledger.InsufficientFundsError
	require.ErrorAs(t, err, &nsf)
	assert.True(t, nsf.Available.IsZero())
}

func TestValidate_PriorPurchasesReduceFunds(t *testing.T) {
	// Every already-recorded purchase price is subtracted, regardless of
	// its simulated day.

	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 100, 1)
	p := f.product(t, 60, 10)
	_, err := f.store.AppendPurchase(a.ID, p.ID, 2)
	require.NoError(t, err)

	// 100 - 60 = 40 left; another 60 is out of reach.
	_, err = f.validator.Validate(a.ID, p.ID, 10)

	require.Error(t, err)
	var nsf *ledger.InsufficientFundsError
	require.ErrorAs(t, err, &nsf)
	assert.True(t, nsf.Available.Equal(money(40)))
}

// =============================================================================
// ORDERING (check 6)
// =============================================================================

func TestValidate_PurchaseBeforeLastPurchaseDay(t *testing.T) {
	// GIVEN: Account purchased P1 on day 5
	// WHEN: Attempting a purchase on day 3
	// THEN: InvalidInput with the ordering detail

	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 1000, 1)
	p1 := f.product(t, 10, 5)
	p2, err := f.store.CreateProduct("gadget", "", money(10), 5)
	require.NoError(t, err)
	_, err = f.store.AppendPurchase(a.ID, p1.ID, 5)
	require.NoError(t, err)

	_, err = f.validator.Validate(a.ID, p2.ID, 3)

	require.Error(t, err)
	assert.True(t, ledger.IsInvalidInput(err))
	var ord *ledger.PurchaseOrderError
	require.ErrorAs(t, err, &ord)
	assert.Equal(t, 5, ord.LastDay)
	assert.Equal(t, 3, ord.Day)
}

func TestValidate_SameDayRepurchaseIsLegal(t *testing.T) {
	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 1000, 1)
	p := f.product(t, 10, 5)
	_, err := f.store.AppendPurchase(a.ID, p.ID, 4)
	require.NoError(t, err)

	adm, err := f.validator.Validate(a.ID, p.ID, 4)

	require.NoError(t, err)
	assert.Equal(t, p.ID, adm.Product.ID)
}

// =============================================================================
// DECISION PURITY
// =============================================================================

func TestValidate_DecisionIsIdempotent(t *testing.T) {
	// The validator never mutates state: the same inputs against the
	// same ledger yield the same decision, admit or reject.

	f := newValidatorFixture(t)
	a := f.fundedAccount(t, 100, 1)
	p := f.product(t, 50, 1)

	adm1, err1 := f.validator.Validate(a.ID, p.ID, 2)
	adm2, err2 := f.validator.Validate(a.ID, p.ID, 2)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, adm1, adm2)

	_, rej1 := f.validator.Validate(a.ID, p.ID, 0)
	_, rej2 := f.validator.Validate(a.ID, p.ID, 0)
	assert.Equal(t, rej1.Error(), rej2.Error())
}
