package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
	UserID   string `json:"userId"`
}

// PutSubscription registers a browser for the guest's booking notifications.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	uid := userID(c, req.UserID)
	if uid == "" {
		renderError(c, apperr.Validation("user is required", map[string]string{"user_id": "is required"}))
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
		UserID:   uid,
	}

	err := h.store.InTx(c.Request.Context(), func(tx store.Store) error {
		if _, err := tx.GetUser(c.Request.Context(), uid); err != nil {
			return err
		}
		return tx.DB().Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
		}).Create(&subscription).Error
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			renderError(c, apperr.NotFound("user", uid))
			return
		}
		renderError(c, apperr.Storage("save subscription", err))
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.store.DB().WithContext(c.Request.Context()).
		Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		renderError(c, apperr.Storage("delete subscription", err))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription reports which guest an endpoint is registered for.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		renderError(c, apperr.Validation("endpoint is required", map[string]string{"endpoint": "is required"}))
		return
	}

	var subscription model.PushSubscription
	if err := h.store.DB().WithContext(c.Request.Context()).
		First(&subscription, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderError(c, apperr.NotFound("subscription", endpoint))
		} else {
			renderError(c, apperr.Storage("get subscription", err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": subscription.Endpoint, "user_id": subscription.UserID})
}
