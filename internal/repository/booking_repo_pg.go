package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/retreatbooking/internal/domain"
)

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error)
	ApproveWithConflictCheck(ctx context.Context, id string, from domain.BookingStatus) (*domain.Booking, error)
	HasApprovedConflict(ctx context.Context, roomIDs []int64, checkIn, checkOut time.Time, excludeID string) (bool, error)
	UpdatePaymentState(ctx context.Context, id string, state domain.PaymentState) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID int64) ([]domain.Booking, error)
	ApprovedIntervalsByRooms(ctx context.Context, roomIDs []int64) ([]domain.Interval, error)
	ApprovedIntervalsByGuest(ctx context.Context, guestID int64) ([]domain.Interval, error)
	ListStaleCancellationRequests(ctx context.Context, before time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `b.id, b.guest_id, b.check_in, b.check_out, b.participant_count, b.total_price_cents, b.package_ref,
	b.status, b.payment_status, b.payment_method, b.rating, b.review_text, b.created_at, b.updated_at,
	(SELECT array_agg(br.room_id ORDER BY br.position) FROM booking_rooms br WHERE br.booking_id = b.id)`

// overlap uses half-open [check_in, check_out) semantics: a checkout day
// equal to another booking's check-in day does not conflict.
const approvedConflictQuery = `SELECT EXISTS (
	SELECT 1 FROM bookings b
	JOIN booking_rooms br ON br.booking_id = b.id
	WHERE b.status = 'approved'
	  AND br.room_id = ANY($1)
	  AND b.check_in < $3 AND b.check_out > $2
	  AND ($4 = '' OR b.id <> $4))`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b         domain.Booking
		status    string
		payStatus string
		payMethod string
	)
	if err := row.Scan(&b.ID, &b.GuestID, &b.CheckIn, &b.CheckOut, &b.ParticipantCount, &b.TotalPriceCents, &b.PackageRef,
		&status, &payStatus, &payMethod, &b.Rating, &b.ReviewText, &b.CreatedAt, &b.UpdatedAt, &b.RoomIDs); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	payment, err := domain.NewPaymentState(domain.PaymentStatus(payStatus), domain.PaymentMethod(payMethod))
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	b.Payment = payment
	return &b, nil
}

// lockRooms takes row locks on the booking's rooms in id order. The locks
// serialize concurrent conflict-sensitive writers even when no conflicting
// booking row exists yet, closing the check-then-insert race.
func lockRooms(ctx context.Context, tx pgx.Tx, roomIDs []int64) error {
	rows, err := tx.Query(ctx, `SELECT id FROM rooms WHERE id = ANY($1) ORDER BY id FOR UPDATE`, roomIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		locked++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != len(roomIDs) {
		return domain.Errorf(domain.KindNotFound, "one or more requested rooms do not exist")
	}
	return nil
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockRooms(ctx, tx, booking.RoomIDs); err != nil {
		return err
	}

	var conflict bool
	if err := tx.QueryRow(ctx, approvedConflictQuery, booking.RoomIDs, booking.CheckIn, booking.CheckOut, "").Scan(&conflict); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAvailabilityCheck, err)
	}
	if conflict {
		return domain.ErrConflict
	}

	booking.Status = domain.BookingStatusPending
	booking.Payment = domain.PaymentUnpaid()
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, guest_id, check_in, check_out, participant_count, total_price_cents, package_ref, status, payment_status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		booking.ID, booking.GuestID, booking.CheckIn, booking.CheckOut, booking.ParticipantCount, booking.TotalPriceCents,
		booking.PackageRef, string(booking.Status), string(booking.Payment.Status()), string(booking.Payment.Method())).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for position, roomID := range booking.RoomIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO booking_rooms (booking_id, room_id, position) VALUES ($1, $2, $3)`,
			booking.ID, roomID, position); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return b, err
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings b SET status=$1, updated_at=now() WHERE b.id=$2 AND b.status=$3
		RETURNING `+bookingColumns, string(to), id, string(from))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the booking is gone or a concurrent transition won the
		// compare-and-set; re-read to tell the two apart.
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domain.Errorf(domain.KindInvalidTransition, "booking is %s, not %s", current.Status, from)
	}
	return b, err
}

func (r *PGBookingRepository) ApproveWithConflictCheck(ctx context.Context, id string, from domain.BookingStatus) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id=$1 FOR UPDATE`, id)
	current, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if current.Status != from {
		return nil, domain.Errorf(domain.KindInvalidTransition, "booking is %s, not %s", current.Status, from)
	}

	if err := lockRooms(ctx, tx, current.RoomIDs); err != nil {
		return nil, err
	}

	var conflict bool
	if err := tx.QueryRow(ctx, approvedConflictQuery, current.RoomIDs, current.CheckIn, current.CheckOut, id).Scan(&conflict); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAvailabilityCheck, err)
	}
	if conflict {
		return nil, domain.ErrConflict
	}

	row = tx.QueryRow(ctx, `UPDATE bookings b SET status=$1, updated_at=now() WHERE b.id=$2
		RETURNING `+bookingColumns, string(domain.BookingStatusApproved), id)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

func (r *PGBookingRepository) HasApprovedConflict(ctx context.Context, roomIDs []int64, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	var conflict bool
	if err := r.db.QueryRow(ctx, approvedConflictQuery, roomIDs, checkIn, checkOut, excludeID).Scan(&conflict); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrAvailabilityCheck, err)
	}
	return conflict, nil
}

func (r *PGBookingRepository) UpdatePaymentState(ctx context.Context, id string, state domain.PaymentState) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings b SET payment_status=$1, payment_method=$2, updated_at=now() WHERE b.id=$3
		RETURNING `+bookingColumns, string(state.Status()), string(state.Method()), id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return b, err
}

func (r *PGBookingRepository) ListByGuest(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.guest_id=$1 ORDER BY b.created_at DESC`, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ApprovedIntervalsByRooms(ctx context.Context, roomIDs []int64) ([]domain.Interval, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT b.id, b.check_in, b.check_out FROM bookings b
		JOIN booking_rooms br ON br.booking_id = b.id
		WHERE b.status='approved' AND br.room_id = ANY($1)
		ORDER BY b.check_in, b.id`, roomIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intervals := make([]domain.Interval, 0)
	for rows.Next() {
		var (
			id string
			iv domain.Interval
		)
		if err := rows.Scan(&id, &iv.CheckIn, &iv.CheckOut); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func (r *PGBookingRepository) ApprovedIntervalsByGuest(ctx context.Context, guestID int64) ([]domain.Interval, error) {
	rows, err := r.db.Query(ctx, `SELECT b.check_in, b.check_out FROM bookings b
		WHERE b.status='approved' AND b.guest_id=$1
		ORDER BY b.check_in`, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intervals := make([]domain.Interval, 0)
	for rows.Next() {
		var iv domain.Interval
		if err := rows.Scan(&iv.CheckIn, &iv.CheckOut); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func (r *PGBookingRepository) ListStaleCancellationRequests(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings b
		WHERE b.status='cancellation_pending' AND b.updated_at <= $1`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
