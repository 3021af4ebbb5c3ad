package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/retreatbooking/internal/domain"
	"github.com/zvrva/retreatbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	GuestID          int64   `json:"guest_id"`
	RoomIDs          []int64 `json:"room_ids"`
	CheckIn          string  `json:"check_in"`
	CheckOut         string  `json:"check_out"`
	ParticipantCount int     `json:"participant_count"`
	TotalPriceCents  int64   `json:"total_price_cents"`
	PackageRef       *string `json:"package_ref"`
}

type transitionRequest struct {
	Event string `json:"event"`
}

type confirmPaymentRequest struct {
	Method string `json:"method"`
}

type bookingResponse struct {
	ID               string  `json:"id"`
	GuestID          int64   `json:"guest_id"`
	RoomIDs          []int64 `json:"room_ids"`
	CheckIn          string  `json:"check_in"`
	CheckOut         string  `json:"check_out"`
	ParticipantCount int     `json:"participant_count"`
	TotalPriceCents  int64   `json:"total_price_cents"`
	PackageRef       *string `json:"package_ref,omitempty"`
	Status           string  `json:"status"`
	Payment          bool    `json:"payment"`
	PaymentStatus    string  `json:"payment_status"`
	PaymentMethod    string  `json:"payment_method"`
	Rating           *int    `json:"rating,omitempty"`
	ReviewText       *string `json:"review_text,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		GuestID:          b.GuestID,
		RoomIDs:          b.RoomIDs,
		CheckIn:          domain.FormatDay(b.CheckIn),
		CheckOut:         domain.FormatDay(b.CheckOut),
		ParticipantCount: b.ParticipantCount,
		TotalPriceCents:  b.TotalPriceCents,
		PackageRef:       b.PackageRef,
		Status:           string(b.Status),
		Payment:          b.Payment.Paid(),
		PaymentStatus:    string(b.Payment.Status()),
		PaymentMethod:    string(b.Payment.Method()),
		Rating:           b.Rating,
		ReviewText:       b.ReviewText,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	bookings.POST("", h.create)
	bookings.POST("/:id/transition", h.transition)
	bookings.POST("/:id/payment/cash-intent", h.cashIntent)
	bookings.POST("/:id/payment/confirm", h.confirmPayment)

	router.GET("/availability", h.checkAvailability)
	router.GET("/users/:id/bookings", h.listUserBookings)
	router.GET("/users/:id/busy-dates", h.userBusyDates)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		GuestID:          req.GuestID,
		RoomIDs:          req.RoomIDs,
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
		ParticipantCount: req.ParticipantCount,
		TotalPriceCents:  req.TotalPriceCents,
		PackageRef:       req.PackageRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(created))
}

func (h *BookingHandler) transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}

	event := domain.TransitionEvent(req.Event)
	switch event {
	case domain.EventApprove, domain.EventDecline, domain.EventGuestCancel,
		domain.EventApproveCancellation, domain.EventRejectCancellation:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "unknown transition event"})
		return
	}

	actor, err := actorFromHeaders(c)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), c.Param("id"), event, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(updated))
}

func (h *BookingHandler) cashIntent(c *gin.Context) {
	updated, err := h.service.MarkCashIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(updated))
}

func (h *BookingHandler) confirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}

	updated, err := h.service.ConfirmPayment(c.Request.Context(), c.Param("id"), domain.PaymentMethod(req.Method))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(updated))
}

func (h *BookingHandler) checkAvailability(c *gin.Context) {
	roomIDs, err := parseRoomIDs(c.Query("room_ids"))
	if err != nil {
		respondError(c, err)
		return
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), roomIDs, c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *BookingHandler) listUserBookings(c *gin.Context) {
	guestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "user id must be an integer"})
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), guestID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, newBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h *BookingHandler) userBusyDates(c *gin.Context) {
	guestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "user id must be an integer"})
		return
	}

	days, err := h.service.UserBusyDates(c.Request.Context(), guestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"busy_dates": formatDays(days)})
}

func actorFromHeaders(c *gin.Context) (booking.Actor, error) {
	raw := c.GetHeader("X-Actor-Id")
	if raw == "" {
		return booking.Actor{}, domain.Errorf(domain.KindInvalidArgument, "X-Actor-Id header is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return booking.Actor{}, domain.Errorf(domain.KindInvalidArgument, "X-Actor-Id must be an integer")
	}
	return booking.Actor{ID: id, Role: c.GetHeader("X-Actor-Role")}, nil
}

func parseRoomIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, domain.Errorf(domain.KindInvalidArgument, "room_ids is required")
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, domain.Errorf(domain.KindInvalidArgument, "room id %q must be an integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, domain.FormatDay(d))
	}
	return out
}
