package ledger_test

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/simledger/ledger"
	"github.com/warp/simledger/metrics"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *ledger.Service {
	t.Helper()
	// Fresh registry per test so instrument registration never collides.
	return ledger.NewService(zerolog.Nop(), metrics.New(prometheus.NewRegistry()))
}

// =============================================================================
// ACCOUNT / DEPOSIT OPERATIONS
// =============================================================================

func TestService_CreateAccount(t *testing.T) {
	svc := newTestService(t)

	a, err := svc.CreateAccount("alice")

	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "alice", a.Name)
	assert.True(t, a.Balance.IsZero())
}

func TestService_CreateAccount_EmptyName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateAccount("")

	require.Error(t, err)
	assert.True(t, ledger.IsInvalidInput(err))
}

func TestService_GetAccount_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetAccount("missing")

	require.Error(t, err)
	assert.True(t, ledger.IsNotFound(err))
}

func TestService_RegisterDeposit(t *testing.T) {
	// GIVEN: A fresh account
	// WHEN: Depositing 100 on simulated day 1
	// THEN: The returned balance is derived as of day 1, so the deposit
	//       itself is not yet usable

	svc := newTestService(t)
	a, err := svc.CreateAccount("alice")
	require.NoError(t, err)

	summary, err := svc.RegisterDeposit(a.ID, money(100), 1)

	require.NoError(t, err)
	assert.True(t, summary.Balance.IsZero(), "deposit is usable from day 2, not day 1")

	// A later deposit sees the earlier one.
	summary, err = svc.RegisterDeposit(a.ID, money(50), 3)
	require.NoError(t, err)
	assert.True(t, summary.Balance.Equal(money(100)), "day-3 balance should include the day-1 deposit")
}

func TestService_RegisterDeposit_Invalid(t *testing.T) {
	svc := newTestService(t)
	a, err := svc.CreateAccount("alice")
	require.NoError(t, err)

	cases := []struct {
		name      string
		accountID string
		amount    float64
		day       int
	}{
		{"zero amount", a.ID, 0, 1},
		{"negative amount", a.ID, -5, 1},
		{"day zero", a.ID, 100, 0},
		{"unknown account", "missing", 100, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterDeposit(tc.accountID, money(tc.amount), tc.day)
			require.Error(t, err)
			assert.True(t, ledger.IsInvalidInput(err))
		})
	}
}

// =============================================================================
// PRODUCT OPERATIONS
// =============================================================================

func TestService_CreateProduct_Invalid(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name  string
		title string
		price float64
		stock int
	}{
		{"empty title", "", 10, 1},
		{"zero price", "widget", 0, 1},
		{"negative price", "widget", -1, 1},
		{"zero stock", "widget", 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(tc.title, "", money(tc.price), tc.stock)
			require.Error(t, err)
			assert.True(t, ledger.IsInvalidInput(err))
		})
	}
}

func TestService_ProductViews_ReduceStockBySalesBeforeDay(t *testing.T) {
	svc := newTestService(t)
	a, err := svc.CreateAccount("alice")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(a.ID, money(100), 1)
	require.NoError(t, err)
	p, err := svc.CreateProduct("widget", "a widget", money(50), 3)
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPurchase(a.ID, p.ID, 2))

	// The day-2 sale is invisible at day 2, visible at day 3.
	view, err := svc.GetProduct(p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Stock)

	view, err = svc.GetProduct(p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stock)

	views, err := svc.ListProducts(3)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].Stock)
}

// =============================================================================
// PURCHASE SCENARIOS
// =============================================================================

func TestService_PurchaseScenario_StockExhausted(t *testing.T) {
	// GIVEN: Product P with stock 1 price 50; account A with 100
	//        deposited on day 1
	// WHEN: A buys P on day 2, then B tries on day 3
	// THEN: A succeeds, B gets a stock conflict, remaining stock at
	//       day 3 is 0

	svc := newTestService(t)
	a, err := svc.CreateAccount("account a")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(a.ID, money(100), 1)
	require.NoError(t, err)
	b, err := svc.CreateAccount("account b")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(b.ID, money(100), 1)
	require.NoError(t, err)
	p, err := svc.CreateProduct("widget", "", money(50), 1)
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPurchase(a.ID, p.ID, 2))

	err = svc.RegisterPurchase(b.ID, p.ID, 3)
	require.Error(t, err)
	assert.True(t, ledger.IsConflict(err))

	view, err := svc.GetProduct(p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Stock)
}

func TestService_PurchaseScenario_InsufficientFunds(t *testing.T) {
	svc := newTestService(t)
	a, err := svc.CreateAccount("alice")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(a.ID, money(100), 1)
	require.NoError(t, err)
	p, err := svc.CreateProduct("expensive", "", money(150), 5)
	require.NoError(t, err)

	err = svc.RegisterPurchase(a.ID, p.ID, 5)

	require.Error(t, err)
	assert.True(t, ledger.IsConflict(err))
}

func TestService_PurchaseScenario_OrderingViolation(t *testing.T) {
	svc := newTestService(t)
	a, err := svc.CreateAccount("alice")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(a.ID, money(1000), 1)
	require.NoError(t, err)
	p1, err := svc.CreateProduct("first", "", money(10), 5)
	require.NoError(t, err)
	p2, err := svc.CreateProduct("second", "", money(10), 5)
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPurchase(a.ID, p1.ID, 5))

	err = svc.RegisterPurchase(a.ID, p2.ID, 3)
	require.Error(t, err)
	assert.True(t, ledger.IsInvalidInput(err))
}

// =============================================================================
// OVER-SELL RACE
// =============================================================================

func TestService_ConcurrentPurchases_NoOverSell(t *testing.T) {
	// GIVEN: A product with remaining stock 1 and N funded accounts
	// WHEN: N goroutines race to buy it on the same simulated day
	// THEN: Exactly one succeeds; every other attempt gets a Conflict

	const n = 16

	svc := newTestService(t)
	p, err := svc.CreateProduct("last unit", "", money(10), 1)
	require.NoError(t, err)

	accountIDs := make([]string, n)
	for i := range accountIDs {
		a, err := svc.CreateAccount(fmt.Sprintf("racer %d", i))
		require.NoError(t, err)
		_, err = svc.RegisterDeposit(a.ID, money(100), 1)
		require.NoError(t, err)
		accountIDs[i] = a.ID
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.RegisterPurchase(accountIDs[i], p.ID, 2)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, ledger.IsConflict(err), "losing attempts must get Conflict, got %v", err)
	}
	assert.Equal(t, 1, successes, "exactly one purchase of the last unit may succeed")

	view, err := svc.GetProduct(p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Stock, "stock must never go negative")
}

func TestService_PurchasesOnMaxDay_NoOverSell(t *testing.T) {
	// GIVEN: A stock-1 product and two funded accounts
	// WHEN: Both buy on the last representable simulated day
	// THEN: The first sale still counts against capacity; the second
	//       attempt is rejected, not admitted past it

	svc := newTestService(t)
	p, err := svc.CreateProduct("last unit", "", money(10), 1)
	require.NoError(t, err)

	a, err := svc.CreateAccount("account a")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(a.ID, money(100), 1)
	require.NoError(t, err)
	b, err := svc.CreateAccount("account b")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(b.ID, money(100), 1)
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPurchase(a.ID, p.ID, math.MaxInt))

	err = svc.RegisterPurchase(b.ID, p.ID, math.MaxInt)
	require.Error(t, err)
	var oos *ledger.OutOfStockError
	assert.ErrorAs(t, err, &oos)
}

func TestService_ConcurrentDepositsAndPurchases(t *testing.T) {
	// Deposits and purchases on the same account race without corrupting
	// the histories or tripping an invariant fault.

	svc := newTestService(t)
	a, err := svc.CreateAccount("busy")
	require.NoError(t, err)
	_, err = svc.RegisterDeposit(a.ID, money(1000), 1)
	require.NoError(t, err)
	p, err := svc.CreateProduct("widget", "", money(1), 1000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := svc.RegisterDeposit(a.ID, money(5), 2)
				assert.NoError(t, err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				err := svc.RegisterPurchase(a.ID, p.ID, 3)
				if err != nil {
					assert.True(t, ledger.IsConflict(err))
				}
			}
		}()
	}
	wg.Wait()

	account, err := svc.Store().GetAccount(a.ID)
	require.NoError(t, err)
	assert.Len(t, account.Deposits, 1+80)

	view, err := svc.GetProduct(p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 1000-len(account.Purchases), view.Stock)
}
