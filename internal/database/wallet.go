package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the user's current balance, provisioning a zero
// wallet on first access.
func (s *Service) GetBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	if _, err := s.GetUserById(ctx, userId); err != nil {
		return decimal.Zero, err
	}

	var balanceStr string
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = ?`, userId).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		if _, err := s.db.ExecContext(ctx, queryInsertWallet, uuid.New().String(), userId); err != nil {
			return decimal.Zero, fmt.Errorf("failed to provision wallet: %w", err)
		}
		zap.L().Info("Wallet provisioned", zap.String("user_id", userId))
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	return balance, nil
}

// Credit increases the user's balance and records a credit transaction.
func (s *Service) Credit(ctx context.Context, userId string, amount decimal.Decimal, approver *store.Approver) (*models.Transaction, error) {
	return s.applyDelta(ctx, userId, amount, models.TransactionCredit, "", approver)
}

// Debit decreases the user's balance and records a debit transaction.
// Fails with ErrInsufficientFunds when the balance cannot cover amount.
func (s *Service) Debit(ctx context.Context, userId string, amount decimal.Decimal, approver *store.Approver) (*models.Transaction, error) {
	return s.applyDelta(ctx, userId, amount, models.TransactionDebit, "", approver)
}

func (s *Service) Transactions(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTransactions, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func (s *Service) applyDelta(ctx context.Context, userId string, amount decimal.Decimal, txType, ticketId string, approver *store.Approver) (*models.Transaction, error) {
	approverId := ""
	if approver != nil {
		approverId = approver.Id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txn, err := applyDeltaTx(ctx, tx, userId, amount, txType, ticketId, approverId)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Wallet transaction processed",
		zap.String("transaction_id", txn.Id),
		zap.String("user_id", userId),
		zap.String("type", txType),
		zap.String("old_balance", txn.BalanceBefore.String()),
		zap.String("new_balance", txn.BalanceAfter.String()))
	return txn, nil
}

// applyDeltaTx mutates the wallet and writes the audit row inside the
// caller's transaction. amount must be positive; txType carries the
// direction (credit/refund add, debit/booking subtract).
func applyDeltaTx(ctx context.Context, tx *sql.Tx, userId string, amount decimal.Decimal, txType, ticketId, approverId string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, amount.String())
	}

	wallet, err := getOrCreateWalletTx(ctx, tx, userId)
	if err != nil {
		return nil, err
	}

	var newBalance decimal.Decimal
	switch txType {
	case models.TransactionCredit, models.TransactionRefund:
		newBalance = wallet.Balance.Add(amount)
	case models.TransactionDebit, models.TransactionBooking:
		if wallet.Balance.LessThan(amount) {
			return nil, fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientFunds, wallet.Balance.String(), amount.String())
		}
		newBalance = wallet.Balance.Sub(amount)
	default:
		return nil, fmt.Errorf("unknown transaction type %q", txType)
	}

	txn := &models.Transaction{
		Id:            uuid.New().String(),
		UserId:        userId,
		TicketId:      ticketId,
		ApproverId:    approverId,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  newBalance,
		Status:        "Success",
		CreatedAt:     time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		txn.Id, txn.UserId, nullable(txn.TicketId), nullable(txn.ApproverId), txn.Type,
		txn.Amount.String(), txn.BalanceBefore.String(), txn.BalanceAfter.String(),
		txn.Status, txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	// Optimistic version check serializes concurrent wallet mutations.
	result, err := tx.ExecContext(ctx, queryUpdateWalletBalance, newBalance.String(), userId, wallet.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	return txn, nil
}

func getOrCreateWalletTx(ctx context.Context, tx *sql.Tx, userId string) (*models.Wallet, error) {
	var wallet models.Wallet
	var balanceStr string
	err := tx.QueryRowContext(ctx, queryGetWalletForUser, userId).
		Scan(&wallet.Id, &wallet.UserId, &balanceStr, &wallet.Version, &wallet.UpdatedAt)
	if err == sql.ErrNoRows {
		wallet = models.Wallet{
			Id:      uuid.New().String(),
			UserId:  userId,
			Balance: decimal.Zero,
			Version: 1,
		}
		if _, err := tx.ExecContext(ctx, queryInsertWallet, wallet.Id, userId); err != nil {
			return nil, fmt.Errorf("failed to provision wallet: %w", err)
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	wallet.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	return &wallet, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var txn models.Transaction
	var ticketId, approverId sql.NullString
	var amountStr, beforeStr, afterStr string
	err := row.Scan(&txn.Id, &txn.UserId, &ticketId, &approverId, &txn.Type,
		&amountStr, &beforeStr, &afterStr, &txn.Status, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	txn.TicketId = ticketId.String
	txn.ApproverId = approverId.String

	if txn.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	if txn.BalanceBefore, err = decimal.NewFromString(beforeStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance_before '%s': %w", beforeStr, err)
	}
	if txn.BalanceAfter, err = decimal.NewFromString(afterStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance_after '%s': %w", afterStr, err)
	}
	return &txn, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
