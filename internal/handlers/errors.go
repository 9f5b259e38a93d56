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
	"errors"
	"net/http"

	"rail-booking-go/internal/api"
	"rail-booking-go/internal/identity"
	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors to HTTP status codes. Unrecognized
// errors are logged in full and returned as an opaque 500.
func respondError(c *gin.Context, err error) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
		return
	}

	switch {
	case errors.Is(err, store.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive decimal with at most two fraction digits"})
	case errors.Is(err, store.ErrInsufficientSeats),
		errors.Is(err, store.ErrInsufficientFunds),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrTokenExpired),
		errors.Is(err, store.ErrCapacityExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, api.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "please retry the request"})
	default:
		zap.L().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
