package postgres

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, username, email, phone_number, password_hash)
		VALUES ($1, $2, $3, $4, $5)`

	queryGetUserById = `
		SELECT id, username, email, phone_number, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`

	queryGetUserByEmail = `
		SELECT id, username, email, phone_number, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`

	queryGetUserByIdentifier = `
		SELECT id, username, email, phone_number, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1 OR phone_number = $1`

	queryUpdateUserPassword = `
		UPDATE users
		SET password_hash = $1, updated_at = now()
		WHERE id = $2`

	// Password reset token queries
	queryInsertResetToken = `
		INSERT INTO password_reset_tokens (id, user_id, token) VALUES ($1, $2, $3)`

	queryConsumeResetToken = `
		DELETE FROM password_reset_tokens
		WHERE token = $1
		RETURNING user_id, created_at`

	// Wallet queries
	queryGetWalletForUpdate = `
		SELECT id, user_id, balance, version, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE`

	queryGetWalletBalance = `
		SELECT balance FROM wallets WHERE user_id = $1`

	queryInsertWallet = `
		INSERT INTO wallets (id, user_id, balance, version) VALUES ($1, $2, 0, 1)`

	queryInsertWalletIgnoreConflict = `
		INSERT INTO wallets (id, user_id, balance, version) VALUES ($1, $2, 0, 1)
		ON CONFLICT (user_id) DO NOTHING`

	queryUpdateWalletBalance = `
		UPDATE wallets
		SET balance = $1, version = version + 1, updated_at = now()
		WHERE user_id = $2`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, user_id, ticket_id, approver_id, type, amount, balance_before, balance_after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	queryGetTransactions = `
		SELECT id, user_id, ticket_id, approver_id, type, amount, balance_before, balance_after, status, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	// Catalog queries
	queryInsertTrain = `
		INSERT INTO trains (id, name, train_number, source, destination, departure_time, arrival_time, price, total_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	queryInsertSchedule = `
		INSERT INTO schedules (id, train_id, date, available_seats, seat_sequence)
		VALUES ($1, $2, $3, $4, 0)`

	querySearchSchedules = `
		SELECT s.id, t.name, t.train_number, t.source, t.destination, s.date, s.available_seats, t.price
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE t.source ILIKE '%' || $1 || '%'
		  AND t.destination ILIKE '%' || $2 || '%'
		ORDER BY s.date, t.train_number`

	querySearchSchedulesByDate = `
		SELECT s.id, t.name, t.train_number, t.source, t.destination, s.date, s.available_seats, t.price
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE t.source ILIKE '%' || $1 || '%'
		  AND t.destination ILIKE '%' || $2 || '%'
		  AND s.date = $3
		ORDER BY s.date, t.train_number`

	// Booking queries
	queryGetScheduleForBooking = `
		SELECT s.id, s.available_seats, s.seat_sequence, s.date,
		       t.id, t.name, t.train_number, t.source, t.destination, t.price, t.total_seats
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE s.id = $1
		FOR UPDATE OF s`

	queryReserveSeats = `
		UPDATE schedules
		SET available_seats = available_seats - $1, seat_sequence = seat_sequence + $2
		WHERE id = $3 AND available_seats >= $4`

	queryReleaseSeat = `
		UPDATE schedules
		SET available_seats = available_seats + 1
		WHERE id = $1 AND available_seats + 1 <= $2`

	queryInsertTicket = `
		INSERT INTO tickets (id, schedule_id, seat_number, is_booked, class_type)
		VALUES ($1, $2, $3, true, $4)`

	queryInsertBooking = `
		INSERT INTO bookings (id, user_id, ticket_id, passenger_name, passenger_age, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	queryGetBookingForCancel = `
		SELECT b.id, b.ticket_id, t.schedule_id, t.seat_number
		FROM bookings b
		JOIN tickets t ON b.ticket_id = t.id
		WHERE b.id = $1 AND b.user_id = $2
		FOR UPDATE OF b`

	queryUnbookTicket = `
		UPDATE tickets SET is_booked = false WHERE id = $1`

	queryDeleteBooking = `
		DELETE FROM bookings WHERE id = $1`

	queryGetScheduleCapacityForUpdate = `
		SELECT s.available_seats, t.total_seats, t.price
		FROM schedules s
		JOIN trains t ON s.train_id = t.id
		WHERE s.id = $1
		FOR UPDATE OF s`

	queryListBookings = `
		SELECT b.id, b.ticket_id, tk.seat_number, b.passenger_name, b.passenger_age,
		       tk.class_type, b.payment_status, t.price, t.name, t.train_number,
		       t.source, t.destination, s.date
		FROM bookings b
		JOIN tickets tk ON b.ticket_id = tk.id
		LEFT JOIN schedules s ON tk.schedule_id = s.id
		LEFT JOIN trains t ON s.train_id = t.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id`
)
