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

// Package fare derives booking costs from schedule pricing. All
// functions are pure.
package fare

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Total returns the aggregate fare for passengerCount seats at the
// given per-seat price. passengerCount must be at least 1.
func Total(price decimal.Decimal, passengerCount int) (decimal.Decimal, error) {
	if passengerCount < 1 {
		return decimal.Zero, fmt.Errorf("passenger count must be at least 1, got %d", passengerCount)
	}
	return price.Mul(decimal.NewFromInt(int64(passengerCount))), nil
}
