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
	"strings"

	"rail-booking-go/internal/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserId    = "user_id"
	ctxToken     = "token"
	bearerScheme = "Bearer "
)

// Authenticated resolves the Authorization bearer token to a user id
// and aborts with 401 when it cannot.
func (h *Handler) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerScheme) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerScheme))

		userId, err := h.provider.Authenticate(c.Request.Context(), token)
		if errors.Is(err, identity.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if err != nil {
			zap.L().Error("Token resolution failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(ctxUserId, userId)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// userId returns the authenticated user id set by the middleware.
func userId(c *gin.Context) string {
	return c.GetString(ctxUserId)
}
