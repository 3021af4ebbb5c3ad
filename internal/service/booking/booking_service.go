package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zvrva/retreatbooking/internal/domain"
	"github.com/zvrva/retreatbooking/internal/kafka"
	"github.com/zvrva/retreatbooking/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	Transition(ctx context.Context, bookingID string, event domain.TransitionEvent, actor Actor) (*domain.Booking, error)
	MarkCashIntent(ctx context.Context, bookingID string) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID string, method domain.PaymentMethod) (*domain.Booking, error)
	CheckAvailability(ctx context.Context, roomIDs []int64, checkIn, checkOut string) (bool, error)
	BlockedDates(ctx context.Context, roomIDs []int64) ([]time.Time, error)
	UserBusyDates(ctx context.Context, guestID int64) ([]time.Time, error)
	ListUserBookings(ctx context.Context, guestID int64) ([]domain.Booking, error)
	ExpireStaleCancellations(ctx context.Context) ([]domain.Booking, error)
}

// Actor identifies the already-authenticated caller of a transition. Role
// checks happen upstream; the core only enforces ownership where the
// transition table requires it.
type Actor struct {
	ID   int64
	Role string
}

type ProjectionCache interface {
	GetBlockedDates(ctx context.Context, roomIDs []int64) ([]time.Time, error)
	SetBlockedDates(ctx context.Context, roomIDs []int64, days []time.Time) error
	InvalidateBlockedDates(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	GuestID          int64   `json:"guest_id"`
	RoomIDs          []int64 `json:"room_ids"`
	CheckIn          string  `json:"check_in"`
	CheckOut         string  `json:"check_out"`
	ParticipantCount int     `json:"participant_count"`
	TotalPriceCents  int64   `json:"total_price_cents"`
	PackageRef       *string `json:"package_ref,omitempty"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	admins             repository.AdminDirectory
	cache              ProjectionCache
	producer           Producer
	notificationsTopic string
	cal                *domain.Calendar
	cancellationTTL    time.Duration
	logger             *zap.Logger
}

type BookingServiceOption func(*BookingService)

// WithCancellationTTL sets how long a cancellation request may sit
// unresolved before the sweep auto-approves it.
func WithCancellationTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cancellationTTL = ttl
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	admins repository.AdminDirectory,
	cache ProjectionCache,
	producer Producer,
	notificationsTopic string,
	cal *domain.Calendar,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:           bookings,
		admins:             admins,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		cal:                cal,
		cancellationTTL:    48 * time.Hour,
		logger:             logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if len(input.RoomIDs) == 0 {
		return nil, domain.Errorf(domain.KindInvalidArgument, "at least one room is required")
	}
	if input.ParticipantCount <= 0 {
		return nil, domain.Errorf(domain.KindInvalidArgument, "participant count must be positive")
	}
	if input.TotalPriceCents < 0 {
		return nil, domain.Errorf(domain.KindInvalidArgument, "total price cannot be negative")
	}

	checkIn, err := s.cal.ParseDay(input.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := s.cal.ParseDay(input.CheckOut)
	if err != nil {
		return nil, err
	}
	if checkIn.Before(s.cal.Today()) {
		return nil, domain.Errorf(domain.KindPastDate, "check-in %s is in the past", domain.FormatDay(checkIn))
	}
	if !checkOut.After(checkIn) {
		return nil, domain.Errorf(domain.KindInvalidRange, "check-out %s must be after check-in %s", domain.FormatDay(checkOut), domain.FormatDay(checkIn))
	}

	booking := &domain.Booking{
		ID:               uuid.NewString(),
		GuestID:          input.GuestID,
		RoomIDs:          input.RoomIDs,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		ParticipantCount: input.ParticipantCount,
		TotalPriceCents:  input.TotalPriceCents,
		PackageRef:       input.PackageRef,
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, booking)
	return booking, nil
}

func (s *BookingService) Transition(ctx context.Context, bookingID string, event domain.TransitionEvent, actor Actor) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextStatus(current.Status, event)
	if err != nil {
		return nil, err
	}

	if event == domain.EventGuestCancel && actor.ID != current.GuestID {
		return nil, domain.Errorf(domain.KindOwnership, "booking %s belongs to another guest", bookingID)
	}

	var updated *domain.Booking
	if next == domain.BookingStatusApproved {
		// Moving into approved grants exclusivity, so the availability
		// check is re-run under room locks; the slot may have been taken
		// while this booking was pending or awaiting adjudication.
		updated, err = s.bookings.ApproveWithConflictCheck(ctx, bookingID, current.Status)
	} else {
		updated, err = s.bookings.UpdateStatus(ctx, bookingID, current.Status, next)
	}
	if err != nil {
		return nil, err
	}

	if current.Status == domain.BookingStatusApproved || updated.Status == domain.BookingStatusApproved {
		s.invalidateProjection(ctx)
	}

	s.notifyGuest(ctx, updated, event)
	return updated, nil
}

func (s *BookingService) MarkCashIntent(ctx context.Context, bookingID string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Payment.Paid() {
		return nil, domain.Errorf(domain.KindInvalidTransition, "payment is already confirmed")
	}
	return s.bookings.UpdatePaymentState(ctx, bookingID, domain.PaymentCashIntent())
}

func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID string, method domain.PaymentMethod) (*domain.Booking, error) {
	paid, err := domain.PaymentPaid(method)
	if err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Payment.Paid() {
		// Re-confirmation is a no-op; gateway callbacks may retry.
		return current, nil
	}

	updated, err := s.bookings.UpdatePaymentState(ctx, bookingID, paid)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.NotificationEvent{
		Type:        "payment_confirmed",
		RecipientID: updated.GuestID,
		BookingID:   updated.ID,
		Message:     fmt.Sprintf("Payment for your stay %s – %s has been confirmed.", domain.FormatDay(updated.CheckIn), domain.FormatDay(updated.CheckOut)),
		Link:        "/bookings/" + updated.ID,
	})
	return updated, nil
}

func (s *BookingService) CheckAvailability(ctx context.Context, roomIDs []int64, checkIn, checkOut string) (bool, error) {
	if len(roomIDs) == 0 {
		return false, domain.Errorf(domain.KindInvalidArgument, "at least one room is required")
	}
	in, err := s.cal.ParseDay(checkIn)
	if err != nil {
		return false, err
	}
	out, err := s.cal.ParseDay(checkOut)
	if err != nil {
		return false, err
	}
	if !out.After(in) {
		return false, domain.Errorf(domain.KindInvalidRange, "check-out %s must be after check-in %s", domain.FormatDay(out), domain.FormatDay(in))
	}

	conflict, err := s.bookings.HasApprovedConflict(ctx, roomIDs, in, out, "")
	if err != nil {
		// A failed check means "unknown", never "available".
		return false, err
	}
	return !conflict, nil
}

func (s *BookingService) BlockedDates(ctx context.Context, roomIDs []int64) ([]time.Time, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetBlockedDates(ctx, roomIDs); err == nil && cached != nil {
			return cached, nil
		}
	}

	intervals, err := s.bookings.ApprovedIntervalsByRooms(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	days := expandIntervals(intervals)

	if s.cache != nil {
		if err := s.cache.SetBlockedDates(ctx, roomIDs, days); err != nil {
			s.logger.Warn("cache blocked dates", zap.Error(err))
		}
	}
	return days, nil
}

func (s *BookingService) UserBusyDates(ctx context.Context, guestID int64) ([]time.Time, error) {
	intervals, err := s.bookings.ApprovedIntervalsByGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	return expandIntervals(intervals), nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	return s.bookings.ListByGuest(ctx, guestID)
}

// ExpireStaleCancellations auto-approves cancellation requests that sat
// unresolved longer than the configured TTL. Invoked by the worker on a
// timer; each stale request goes through the standard transition path.
func (s *BookingService) ExpireStaleCancellations(ctx context.Context) ([]domain.Booking, error) {
	deadline := time.Now().Add(-s.cancellationTTL)
	stale, err := s.bookings.ListStaleCancellationRequests(ctx, deadline)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.Booking, 0, len(stale))
	for _, b := range stale {
		updated, err := s.Transition(ctx, b.ID, domain.EventApproveCancellation, Actor{})
		if err != nil {
			s.logger.Warn("expire cancellation request", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		resolved = append(resolved, *updated)
	}
	return resolved, nil
}

func (s *BookingService) notifyAdmins(ctx context.Context, booking *domain.Booking) {
	if s.admins == nil {
		return
	}
	adminIDs, err := s.admins.ListAdminIDs(ctx)
	if err != nil {
		s.logger.Warn("list admin recipients", zap.Error(err))
		return
	}
	for _, adminID := range adminIDs {
		s.publish(ctx, kafka.NotificationEvent{
			Type:        "booking_requested",
			RecipientID: adminID,
			BookingID:   booking.ID,
			Message:     fmt.Sprintf("New booking request for %s – %s.", domain.FormatDay(booking.CheckIn), domain.FormatDay(booking.CheckOut)),
			Link:        "/admin/bookings/" + booking.ID,
		})
	}
}

func (s *BookingService) notifyGuest(ctx context.Context, booking *domain.Booking, event domain.TransitionEvent) {
	var (
		eventType string
		message   string
	)
	switch event {
	case domain.EventApprove:
		eventType, message = "booking_approved", "Your booking request has been approved."
	case domain.EventDecline:
		eventType, message = "booking_declined", "Your booking request has been declined."
	case domain.EventGuestCancel:
		if booking.Status == domain.BookingStatusCancellationPending {
			eventType, message = "cancellation_requested", "Your cancellation request was received and is awaiting review."
		} else {
			eventType, message = "booking_cancelled", "Your booking has been cancelled."
		}
	case domain.EventApproveCancellation:
		eventType, message = "cancellation_approved", "Your cancellation request has been approved."
	case domain.EventRejectCancellation:
		eventType, message = "cancellation_rejected", "Your cancellation request was declined; the booking remains approved."
	default:
		return
	}

	s.publish(ctx, kafka.NotificationEvent{
		Type:        eventType,
		RecipientID: booking.GuestID,
		BookingID:   booking.ID,
		Message:     message,
		Link:        "/bookings/" + booking.ID,
	})
}

// publish is fire-and-forget: a lost notification never rolls back a
// booking mutation.
func (s *BookingService) publish(ctx context.Context, event kafka.NotificationEvent) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, event.BookingID, event); err != nil {
		s.logger.Warn("publish notification", zap.String("type", event.Type), zap.String("booking_id", event.BookingID), zap.Error(err))
	}
}

func (s *BookingService) invalidateProjection(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBlockedDates(ctx); err != nil {
		s.logger.Warn("invalidate blocked dates cache", zap.Error(err))
	}
}

func expandIntervals(intervals []domain.Interval) []time.Time {
	days := make([]time.Time, 0)
	for _, iv := range intervals {
		days = append(days, domain.DaysBetween(iv.CheckIn, iv.CheckOut)...)
	}
	return days
}

var _ BookingUseCase = (*BookingService)(nil)
