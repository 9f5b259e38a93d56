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

package database

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, username, email, phone_number, password_hash)
		VALUES (?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, username, email, phone_number, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, username, email, phone_number, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?`

	queryGetUserByIdentifier = `
		SELECT id, username, email, phone_number, password_hash, created_at, updated_at
		FROM users
		WHERE email = ? OR phone_number = ?`

	queryUpdateUserPassword = `
		UPDATE users
		SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	// Password reset token queries
	queryInsertResetToken = `
		INSERT INTO password_reset_tokens (id, user_id, token) VALUES (?, ?, ?)`

	queryGetResetToken = `
		SELECT id, user_id, token, created_at
		FROM password_reset_tokens
		WHERE token = ?`

	queryDeleteResetToken = `
		DELETE FROM password_reset_tokens WHERE id = ?`

	// Wallet queries
	queryGetWalletForUser = `
		SELECT id, user_id, balance, version, updated_at
		FROM wallets
		WHERE user_id = ?`

	queryInsertWallet = `
		INSERT INTO wallets (id, user_id, balance, version) VALUES (?, ?, '0', 1)`

	queryUpdateWalletBalance = `
		UPDATE wallets
		SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, user_id, ticket_id, approver_id, type, amount, balance_before, balance_after, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactions = `
		SELECT id, user_id, ticket_id, approver_id, type, amount, balance_before, balance_after, status, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	// Catalog queries
	queryInsertTrain = `
		INSERT INTO trains (id, name, train_number, source, destination, departure_time, arrival_time, price, total_seats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertSchedule = `
		INSERT INTO schedules (id, train_id, date, available_seats, seat_sequence)
		VALUES (?, ?, ?, ?, 0)`

	querySearchSchedules = `
		SELECT s.id, t.name, t.train_number, t.source, t.destination, s.date, s.available_seats, t.price
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE LOWER(t.source) LIKE '%' || LOWER(?) || '%'
		  AND LOWER(t.destination) LIKE '%' || LOWER(?) || '%'
		ORDER BY s.date, t.train_number`

	querySearchSchedulesByDate = `
		SELECT s.id, t.name, t.train_number, t.source, t.destination, s.date, s.available_seats, t.price
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE LOWER(t.source) LIKE '%' || LOWER(?) || '%'
		  AND LOWER(t.destination) LIKE '%' || LOWER(?) || '%'
		  AND date(s.date) = date(?)
		ORDER BY s.date, t.train_number`

	// Booking queries
	queryGetScheduleForBooking = `
		SELECT s.id, s.available_seats, s.seat_sequence, s.date,
		       t.id, t.name, t.train_number, t.source, t.destination, t.price, t.total_seats
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE s.id = ?`

	queryReserveSeats = `
		UPDATE schedules
		SET available_seats = available_seats - ?, seat_sequence = seat_sequence + ?
		WHERE id = ? AND available_seats >= ?`

	queryReleaseSeat = `
		UPDATE schedules
		SET available_seats = available_seats + 1
		WHERE id = ? AND available_seats + 1 <= ?`

	queryInsertTicket = `
		INSERT INTO tickets (id, schedule_id, seat_number, is_booked, class_type)
		VALUES (?, ?, ?, 1, ?)`

	queryInsertBooking = `
		INSERT INTO bookings (id, user_id, ticket_id, passenger_name, passenger_age, payment_status)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetBookingForCancel = `
		SELECT b.id, b.ticket_id, t.schedule_id, t.seat_number
		FROM bookings b
		JOIN tickets t ON b.ticket_id = t.id
		WHERE b.id = ? AND b.user_id = ?`

	queryUnbookTicket = `
		UPDATE tickets SET is_booked = 0 WHERE id = ?`

	queryDeleteBooking = `
		DELETE FROM bookings WHERE id = ?`

	queryGetScheduleCapacity = `
		SELECT s.available_seats, t.total_seats, t.price
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE s.id = ?`

	queryListBookings = `
		SELECT b.id, b.ticket_id, tk.seat_number, b.passenger_name, b.passenger_age,
		       tk.class_type, b.payment_status, t.price, t.name, t.train_number,
		       t.source, t.destination, s.date
		FROM bookings b
		JOIN tickets tk ON b.ticket_id = tk.id
		LEFT JOIN schedules s ON tk.schedule_id = s.id
		LEFT JOIN trains t ON s.train_id = t.id
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id`
)
