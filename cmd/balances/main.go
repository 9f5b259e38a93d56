/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"

	"rail-booking-go/internal/common"
	"rail-booking-go/internal/config"
	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"go.uber.org/zap"
)

const historyLimit = 20

func formatTicketId(ticketId string) string {
	if ticketId == "" {
		return "none"
	}
	if len(ticketId) > 8 {
		return ticketId[:8] + "..."
	}
	return ticketId
}

func printTransaction(tx models.Transaction, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	fmt.Printf("%s %-8s %12s -> balance %12s (ticket: %s, at: %s)\n",
		symbol,
		tx.Type,
		tx.Amount.StringFixed(2),
		tx.BalanceAfter.StringFixed(2),
		formatTicketId(tx.TicketId),
		tx.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printWalletReport(ctx context.Context, st store.Store, user *models.User) error {
	balance, err := st.GetBalance(ctx, user.Id)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	transactions, err := st.Transactions(ctx, user.Id, historyLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to get transactions: %w", err)
	}

	fmt.Printf("\n┌─ User: %s (%s)\n", user.Username, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Balance: %s\n", balance.StringFixed(2))
	fmt.Printf("│  Recent transactions: %d\n", len(transactions))

	for i, tx := range transactions {
		printTransaction(tx, i == len(transactions)-1)
	}
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email to report on (required)")
	flag.Parse()

	if *emailFlag == "" {
		logger.Fatal("Missing required -email flag")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	st, err := common.InitializeStoreOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	user, err := st.GetUserByEmail(ctx, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to find user", zap.String("email", *emailFlag), zap.Error(err))
	}

	common.PrintHeader("WALLET BALANCE REPORT", common.DefaultWidth)

	if err := printWalletReport(ctx, st, user); err != nil {
		logger.Fatal("Failed to build report", zap.Error(err))
	}

	common.PrintFooter("Report complete", common.DefaultWidth)
}
