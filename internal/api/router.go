package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"hotel-booking-backend/internal/mw"
)

// RouterConfig holds the middleware settings of the HTTP surface.
type RouterConfig struct {
	// Limiter throttles each client IP. Nil disables rate limiting.
	Limiter *mw.IPRateLimiter
	// CacheTTL is how long room lookups by id or number are cached. Zero
	// disables caching. Search results are never cached.
	CacheTTL time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger())

	passthrough := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	caching, invalidate := passthrough, passthrough
	if cfg.CacheTTL > 0 {
		cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
		caching = mw.Cache(cacheStore, cfg.CacheTTL)
		invalidate = mw.Invalidate(cacheStore)
	}

	api := r.Group("/api")
	if cfg.Limiter != nil {
		api.Use(mw.Limit(cfg.Limiter))
	}
	{
		rooms := api.Group("/rooms")
		rooms.GET("/search", h.SearchRooms)
		rooms.GET("/number/:number", caching, h.GetRoomByNumber)
		rooms.GET("/:id", caching, h.GetRoom)

		bookings := api.Group("/bookings", invalidate)
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.PUT("/:id/status", h.UpdateBookingStatus)
		bookings.POST("/:id/cancel", h.CancelBooking)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
