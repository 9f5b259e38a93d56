package postgres

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

func (s *Service) GetBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	if _, err := s.GetUserById(ctx, userId); err != nil {
		return decimal.Zero, err
	}

	var balanceStr string
	err := s.db.QueryRowContext(ctx, queryGetWalletBalance, userId).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		if _, err := s.db.ExecContext(ctx, queryInsertWalletIgnoreConflict, uuid.New().String(), userId); err != nil {
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

func (s *Service) Credit(ctx context.Context, userId string, amount decimal.Decimal, approver *store.Approver) (*models.Transaction, error) {
	return s.applyDelta(ctx, userId, amount, models.TransactionCredit, "", approver)
}

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

// applyDeltaTx mutates the wallet under a row lock and writes the
// audit row inside the caller's transaction.
func applyDeltaTx(ctx context.Context, tx *sql.Tx, userId string, amount decimal.Decimal, txType, ticketId, approverId string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, amount.String())
	}

	wallet, err := lockWalletTx(ctx, tx, userId)
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

	if _, err := tx.ExecContext(ctx, queryUpdateWalletBalance, newBalance.String(), userId); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	return txn, nil
}

// lockWalletTx loads the wallet FOR UPDATE, provisioning it first when
// missing so the lock always lands on a real row.
func lockWalletTx(ctx context.Context, tx *sql.Tx, userId string) (*models.Wallet, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var wallet models.Wallet
		var balanceStr string
		err := tx.QueryRowContext(ctx, queryGetWalletForUpdate, userId).
			Scan(&wallet.Id, &wallet.UserId, &balanceStr, &wallet.Version, &wallet.UpdatedAt)
		if err == nil {
			wallet.Balance, err = decimal.NewFromString(balanceStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
			}
			return &wallet, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to load wallet: %w", err)
		}
		if _, err := tx.ExecContext(ctx, queryInsertWallet, uuid.New().String(), userId); err != nil {
			return nil, fmt.Errorf("failed to provision wallet: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to lock wallet for user %s", userId)
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
