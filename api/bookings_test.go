package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zvrva/retreatbooking/internal/domain"
	"github.com/zvrva/retreatbooking/internal/service/booking"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Transition(ctx context.Context, bookingID string, event domain.TransitionEvent, actor booking.Actor) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, event, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) MarkCashIntent(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmPayment(ctx context.Context, bookingID string, method domain.PaymentMethod) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CheckAvailability(ctx context.Context, roomIDs []int64, checkIn, checkOut string) (bool, error) {
	args := m.Called(ctx, roomIDs, checkIn, checkOut)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingUseCase) BlockedDates(ctx context.Context, roomIDs []int64) ([]time.Time, error) {
	args := m.Called(ctx, roomIDs)
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockBookingUseCase) UserBusyDates(ctx context.Context, guestID int64) ([]time.Time, error) {
	args := m.Called(ctx, guestID)
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, guestID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpireStaleCancellations(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func testBooking(id string) *domain.Booking {
	return &domain.Booking{
		ID:               id,
		GuestID:          7,
		RoomIDs:          []int64{1},
		CheckIn:          time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:         time.Date(2030, 3, 12, 0, 0, 0, 0, time.UTC),
		ParticipantCount: 2,
		TotalPriceCents:  150000,
		Status:           domain.BookingStatusPending,
		Payment:          domain.PaymentUnpaid(),
	}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		GuestID:          7,
		RoomIDs:          []int64{1},
		CheckIn:          "2030-03-10",
		CheckOut:         "2030-03-12",
		ParticipantCount: 2,
		TotalPriceCents:  150000,
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), input).Return(testBooking("b1"), nil)

	handler.create(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "b1", resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2030-03-10", resp.CheckIn)
	assert.False(t, resp.Payment)
	assert.Equal(t, "unpaid", resp.PaymentStatus)
	assert.Equal(t, "n/a", resp.PaymentMethod)
}

func TestBookingHandler_createConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(booking.CreateBookingInput{
		GuestID: 7, RoomIDs: []int64{1}, CheckIn: "2030-03-10", CheckOut: "2030-03-12",
		ParticipantCount: 2, TotalPriceCents: 150000,
	})
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "conflict")
}

func TestBookingHandler_transition(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(transitionRequest{Event: "approve"})
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings/b1/transition", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Actor-Id", "99")
	c.Request.Header.Set("X-Actor-Role", "admin")
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	approved := testBooking("b1")
	approved.Status = domain.BookingStatusApproved

	mockService.On("Transition", mock.Anything, "b1", domain.EventApprove, booking.Actor{ID: 99, Role: "admin"}).Return(approved, nil)

	handler.transition(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)
}

func TestBookingHandler_transitionUnknownEvent(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(transitionRequest{Event: "freeze"})
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings/b1/transition", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.transition(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_transitionRequiresActor(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(transitionRequest{Event: "approve"})
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings/b1/transition", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.transition(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "X-Actor-Id")
}

func TestBookingHandler_transitionOwnership(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(transitionRequest{Event: "guest-cancel"})
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings/b1/transition", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Actor-Id", "8")
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	mockService.On("Transition", mock.Anything, "b1", domain.EventGuestCancel, booking.Actor{ID: 8}).Return(nil, domain.ErrOwnership)

	handler.transition(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_confirmPayment(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(confirmPaymentRequest{Method: "gcash"})
	c.Request = httptest.NewRequest("POST", "/api/v1/bookings/b1/payment/confirm", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	paidState, err := domain.PaymentPaid(domain.PaymentMethodGCash)
	require.NoError(t, err)
	paid := testBooking("b1")
	paid.Payment = paidState

	mockService.On("ConfirmPayment", mock.Anything, "b1", domain.PaymentMethodGCash).Return(paid, nil)

	handler.confirmPayment(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Payment)
	assert.Equal(t, "paid", resp.PaymentStatus)
	assert.Equal(t, "gcash", resp.PaymentMethod)
}

func TestBookingHandler_checkAvailability(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/api/v1/availability?room_ids=1,2&check_in=2030-03-10&check_out=2030-03-12", nil)

	mockService.On("CheckAvailability", mock.Anything, []int64{1, 2}, "2030-03-10", "2030-03-12").Return(true, nil)

	handler.checkAvailability(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":true`)
}

func TestBookingHandler_checkAvailabilityStoreFailure(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/api/v1/availability?room_ids=1&check_in=2030-03-10&check_out=2030-03-12", nil)

	mockService.On("CheckAvailability", mock.Anything, []int64{1}, "2030-03-10", "2030-03-12").Return(false, domain.ErrAvailabilityCheck)

	handler.checkAvailability(c)

	// An unverified check is an infrastructure fault, never "unavailable".
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBookingHandler_listUserBookings(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/api/v1/users/7/bookings", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	mockService.On("ListUserBookings", mock.Anything, int64(7)).Return([]domain.Booking{*testBooking("b1")}, nil)

	handler.listUserBookings(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"b1"`)
}
