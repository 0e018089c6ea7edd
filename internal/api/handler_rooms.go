package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/parse"
	"hotel-booking-backend/internal/search"
)

// SearchRooms handles GET /api/rooms/search.
func (h *Handler) SearchRooms(c *gin.Context) {
	filter, err := searchFilter(c)
	if err != nil {
		renderError(c, err)
		return
	}

	rooms, err := h.search.Search(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func searchFilter(c *gin.Context) (search.Filter, error) {
	var f search.Filter

	if raw := c.Query("start"); raw != "" {
		t, err := parse.Date("check_in_date", raw)
		if err != nil {
			return f, err
		}
		f.CheckIn = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parse.Date("check_out_date", raw)
		if err != nil {
			return f, err
		}
		f.CheckOut = &t
	}
	if raw := c.Query("type"); raw != "" {
		rt, err := parse.RoomType(raw)
		if err != nil {
			return f, err
		}
		f.Type = &rt
	}
	if raw := c.Query("guests"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return f, apperr.Validation("invalid guest count", map[string]string{"guests": raw})
		}
		f.MinGuests = n
	}
	if raw := c.Query("minPrice"); raw != "" {
		m, err := parse.Money("min_price", raw)
		if err != nil {
			return f, err
		}
		f.MinPrice = &m
	}
	if raw := c.Query("maxPrice"); raw != "" {
		m, err := parse.Money("max_price", raw)
		if err != nil {
			return f, err
		}
		f.MaxPrice = &m
	}
	if raw := c.Query("amenities"); raw != "" {
		f.Amenities = parse.Amenities(raw)
	}

	field, order, err := parse.Sort(c.Query("sort"), c.Query("order"))
	if err != nil {
		return f, err
	}
	f.SortBy, f.Order = field, order
	return f, nil
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.rooms.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoomByNumber handles GET /api/rooms/number/:number.
func (h *Handler) GetRoomByNumber(c *gin.Context) {
	room, err := h.rooms.GetByRoomNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
