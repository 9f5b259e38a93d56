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

package handlers

import (
	"net/http"
	"strconv"

	"rail-booking-go/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Balance(c *gin.Context) {
	balance, err := h.service.Balance(c.Request.Context(), userId(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance.StringFixed(2)})
}

func (h *Handler) CreditWallet(c *gin.Context) {
	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.Credit(c.Request.Context(), userId(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionView(tx))
}

func (h *Handler) DebitWallet(c *gin.Context) {
	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.Debit(c.Request.Context(), userId(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionView(tx))
}

func (h *Handler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	transactions, err := h.service.Transactions(c.Request.Context(), userId(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]gin.H, len(transactions))
	for i := range transactions {
		views[i] = transactionView(&transactions[i])
	}
	c.JSON(http.StatusOK, gin.H{"transactions": views})
}

// transactionView shapes a ledger row for responses, with decimal
// amounts rendered as fixed two-digit strings.
func transactionView(tx *models.Transaction) gin.H {
	view := gin.H{
		"id":             tx.Id,
		"type":           tx.Type,
		"amount":         tx.Amount.StringFixed(2),
		"balance_before": tx.BalanceBefore.StringFixed(2),
		"balance_after":  tx.BalanceAfter.StringFixed(2),
		"status":         tx.Status,
		"created_at":     tx.CreatedAt,
	}
	if tx.TicketId != "" {
		view["ticket_id"] = tx.TicketId
	}
	if tx.ApproverId != "" {
		view["approver_id"] = tx.ApproverId
	}
	return view
}
