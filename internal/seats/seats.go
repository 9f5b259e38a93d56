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

// Package seats generates seat identifiers for schedule allocations.
// Identifiers derive from the schedule's monotonic seat sequence, so a
// number freed by a cancellation is never handed out again.
package seats

import "fmt"

// Number returns the seat identifier for the seq-th allocation on a
// schedule. The schedule id is truncated for readability; uniqueness
// within a schedule comes from seq alone.
func Number(scheduleId string, seq int64) string {
	return fmt.Sprintf("SN-%s-%d", shortId(scheduleId), seq)
}

// Numbers returns count identifiers in allocation order, starting at
// startSeq.
func Numbers(scheduleId string, startSeq int64, count int) []string {
	numbers := make([]string, count)
	for i := 0; i < count; i++ {
		numbers[i] = Number(scheduleId, startSeq+int64(i))
	}
	return numbers
}

func shortId(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
