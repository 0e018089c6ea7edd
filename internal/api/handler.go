package api

import (
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/catalog"
	"hotel-booking-backend/internal/search"
	"hotel-booking-backend/internal/store"
)

// UserHeader carries the id of the already authenticated guest.
const UserHeader = "X-User-ID"

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	rooms    *catalog.Service
	bookings *booking.Service
	search   *search.Engine
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, bookings *booking.Service, webpushOptions *webpush.Options) *Handler {
	h := &Handler{
		store:    s,
		bookings: bookings,
		webpush:  webpushOptions,
	}
	if s != nil {
		h.rooms = catalog.NewService(s)
		h.search = search.NewEngine(s)
	}
	return h
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// renderError maps err onto a status code and a caller-safe body. Storage
// failure details only reach the log.
func renderError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{
		Error:  apperr.PublicMessage(err),
		Fields: apperr.FieldsOf(err),
	})
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
}

// userID returns the acting guest, preferring the header over a body value.
func userID(c *gin.Context, fromBody string) string {
	if id := strings.TrimSpace(c.GetHeader(UserHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(fromBody)
}
