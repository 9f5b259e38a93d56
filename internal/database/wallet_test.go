package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"rail-booking-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// newTestService opens an in-memory database limited to a single
// connection so every test sees the same storage.
func newTestService(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	service := NewServiceWithDB(db)
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return service, cleanup
}

func createTestUser(t *testing.T, service *Service, username string) string {
	t.Helper()
	user, err := service.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PhoneNumber:  "555-" + username,
		PasswordHash: "test-hash",
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.Id
}

func TestGetBalance_ProvisionsZeroWallet(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "walletuser")

	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Errorf("Expected balance 0, got %s", balance.String())
	}

	// Second call reads the provisioned wallet.
	balance, err = service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed on second call: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Errorf("Expected balance 0, got %s", balance.String())
	}
}

func TestGetBalance_UnknownUser(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	_, err := service.GetBalance(context.Background(), "no-such-user")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreditAndDebit_ExactBalances(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "ledger")

	txn, err := service.Credit(ctx, userId, decimal.RequireFromString("100.10"), nil)
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if !txn.BalanceBefore.Equal(decimal.Zero) {
		t.Errorf("Expected balance_before 0, got %s", txn.BalanceBefore.String())
	}
	if !txn.BalanceAfter.Equal(decimal.RequireFromString("100.10")) {
		t.Errorf("Expected balance_after 100.10, got %s", txn.BalanceAfter.String())
	}

	txn, err = service.Debit(ctx, userId, decimal.RequireFromString("0.20"), nil)
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if !txn.BalanceAfter.Equal(decimal.RequireFromString("99.90")) {
		t.Errorf("Expected balance_after 99.90, got %s", txn.BalanceAfter.String())
	}

	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("99.90")) {
		t.Errorf("Expected balance 99.90, got %s", balance.String())
	}
}

func TestDebit_InsufficientFunds(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "broke")

	if _, err := service.Credit(ctx, userId, decimal.RequireFromString("10"), nil); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	_, err := service.Debit(ctx, userId, decimal.RequireFromString("10.01"), nil)
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Balance and history untouched by the failed debit.
	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Expected balance 10, got %s", balance.String())
	}

	transactions, err := service.Transactions(ctx, userId, 10, 0)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected 1 transaction, got %d", len(transactions))
	}
}

func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "amounts")

	_, err := service.Credit(ctx, userId, decimal.Zero, nil)
	if !errors.Is(err, store.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for zero, got %v", err)
	}

	_, err = service.Credit(ctx, userId, decimal.RequireFromString("-5"), nil)
	if !errors.Is(err, store.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for negative, got %v", err)
	}
}

func TestCredit_RecordsApprover(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "member")
	approverId := createTestUser(t, service, "operator")

	txn, err := service.Credit(ctx, userId, decimal.RequireFromString("50"),
		&store.Approver{Id: approverId, Name: "operator"})
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if txn.ApproverId != approverId {
		t.Errorf("Expected approver %s, got %s", approverId, txn.ApproverId)
	}
}

func TestTransactions_NewestFirstWithPagination(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "history")

	amounts := []string{"10", "20", "30"}
	for _, a := range amounts {
		if _, err := service.Credit(ctx, userId, decimal.RequireFromString(a), nil); err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
	}

	transactions, err := service.Transactions(ctx, userId, 2, 0)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(transactions))
	}
	if !transactions[0].Amount.Equal(decimal.RequireFromString("30")) {
		t.Errorf("Expected newest transaction first, got amount %s", transactions[0].Amount.String())
	}

	rest, err := service.Transactions(ctx, userId, 2, 2)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("Expected 1 remaining transaction, got %d", len(rest))
	}
	if !rest[0].Amount.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Expected oldest transaction last, got amount %s", rest[0].Amount.String())
	}
}

func TestCredit_ConcurrentMutationsConverge(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	userId := createTestUser(t, service, "parallel")

	const workers = 10
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := service.Credit(ctx, userId, decimal.RequireFromString("1"), nil)
				if errors.Is(err, store.ErrConcurrentModification) {
					continue
				}
				errCh <- err
				return
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
	}

	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(workers)) {
		t.Errorf("Expected balance %d, got %s", workers, balance.String())
	}
}
