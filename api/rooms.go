package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/retreatbooking/internal/service/booking"
	"github.com/zvrva/retreatbooking/internal/service/rooms"
)

type RoomHandler struct {
	rooms    rooms.RoomUseCase
	bookings booking.BookingUseCase
}

func NewRoomHandler(roomSvc rooms.RoomUseCase, bookingSvc booking.BookingUseCase) *RoomHandler {
	return &RoomHandler{rooms: roomSvc, bookings: bookingSvc}
}

type roomResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
	Capacity int    `json:"capacity"`
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("/rooms", h.list)
	router.GET("/rooms/blocked-dates", h.blockedDates)
}

func (h *RoomHandler) list(c *gin.Context) {
	roomList, err := h.rooms.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]roomResponse, 0, len(roomList))
	for _, room := range roomList {
		out = append(out, roomResponse{ID: room.ID, Name: room.Name, Building: room.Building, Capacity: room.Capacity})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// blockedDates renders the read-side calendar projection. It is not
// authoritative: creation re-verifies availability even when the calendar
// showed a slot as open.
func (h *RoomHandler) blockedDates(c *gin.Context) {
	roomIDs, err := parseRoomIDs(c.Query("room_ids"))
	if err != nil {
		respondError(c, err)
		return
	}

	days, err := h.bookings.BlockedDates(c.Request.Context(), roomIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked_dates": formatDays(days)})
}
