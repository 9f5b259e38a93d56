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

// Package handlers exposes the HTTP surface. Handlers only bind
// requests and map errors to status codes; rules live in the api package.
package handlers

import (
	"net/http"
	"os"
	"time"

	"rail-booking-go/internal/api"
	"rail-booking-go/internal/identity"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service  *api.Service
	provider identity.Provider
}

func NewHandler(service *api.Service, provider identity.Provider) *Handler {
	return &Handler{service: service, provider: provider}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiGroup := router.Group("/api")
	{
		accounts := apiGroup.Group("/accounts")
		{
			accounts.POST("/signup", h.Signup)
			accounts.POST("/login", h.Login)
			accounts.POST("/forgot-password", h.ForgotPassword)
			accounts.POST("/reset-password", h.ResetPassword)
		}

		apiGroup.GET("/search", h.SearchSchedules)

		authed := apiGroup.Group("")
		authed.Use(h.Authenticated())
		{
			authed.POST("/accounts/logout", h.Logout)

			authed.GET("/wallet/balance", h.Balance)
			authed.POST("/wallet/credit", h.CreditWallet)
			authed.POST("/wallet/debit", h.DebitWallet)
			authed.GET("/wallet/transactions", h.Transactions)

			authed.POST("/bookings", h.CreateBooking)
			authed.GET("/bookings", h.ListBookings)
			authed.DELETE("/bookings/:id", h.CancelBooking)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}
