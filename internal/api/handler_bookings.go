package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/parse"
)

type createBookingRequest struct {
	UserID          string  `json:"userId"`
	RoomID          string  `json:"roomId" binding:"required"`
	CheckInDate     string  `json:"checkInDate" binding:"required"`
	CheckOutDate    string  `json:"checkOutDate" binding:"required"`
	NumberOfGuests  int     `json:"numberOfGuests"`
	SpecialRequests *string `json:"specialRequests"`
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	uid := userID(c, req.UserID)
	if uid == "" {
		renderError(c, apperr.Validation("user is required", map[string]string{"user_id": "is required"}))
		return
	}
	checkIn, err := parse.Date("check_in_date", req.CheckInDate)
	if err != nil {
		renderError(c, err)
		return
	}
	checkOut, err := parse.Date("check_out_date", req.CheckOutDate)
	if err != nil {
		renderError(c, err)
		return
	}
	guests := req.NumberOfGuests
	if guests == 0 {
		guests = 1
	}

	b, err := h.bookings.Create(c.Request.Context(), booking.CreateRequest{
		UserID:          uid,
		RoomID:          req.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          guests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookings handles GET /api/bookings.
func (h *Handler) ListBookings(c *gin.Context) {
	filter := booking.Filter{
		UserID: userID(c, c.Query("userId")),
		RoomID: c.Query("roomId"),
	}
	if raw := c.Query("status"); raw != "" {
		st, err := parse.Status(raw)
		if err != nil {
			renderError(c, err)
			return
		}
		filter.Status = st
	}

	bookings, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /api/bookings/:id.
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type updateBookingRequest struct {
	Status          *string `json:"status"`
	CheckInDate     *string `json:"checkInDate"`
	CheckOutDate    *string `json:"checkOutDate"`
	NumberOfGuests  *int    `json:"numberOfGuests"`
	SpecialRequests *string `json:"specialRequests"`
}

func (r updateBookingRequest) toUpdate() (booking.Update, error) {
	var u booking.Update
	if r.Status != nil {
		st, err := parse.Status(*r.Status)
		if err != nil {
			return u, err
		}
		u.Status = &st
	}
	var err error
	if u.CheckIn, err = optionalDate("check_in_date", r.CheckInDate); err != nil {
		return u, err
	}
	if u.CheckOut, err = optionalDate("check_out_date", r.CheckOutDate); err != nil {
		return u, err
	}
	u.Guests = r.NumberOfGuests
	u.SpecialRequests = r.SpecialRequests
	return u, nil
}

func optionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parse.Date(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateBooking handles PATCH /api/bookings/:id.
func (h *Handler) UpdateBooking(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		renderError(c, err)
		return
	}

	b, err := h.bookings.Update(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus handles PUT /api/bookings/:id/status.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	status, err := parse.Status(req.Status)
	if err != nil {
		renderError(c, err)
		return
	}

	b, err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
