package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotel-booking-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool tells guests about booking status changes over web push.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a pool of size workers fed by a queue of queueSize booking ids.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if queueSize < 1 {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// UseSender replaces the web push transport.
func (wp *WorkerPool) UseSender(s NotificationSender) {
	wp.sender = s
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debugf("Worker %d started", id)
	for {
		select {
		case bookingID := <-wp.jobs:
			log.WithField("booking_id", bookingID).Debugf("Worker %d processing booking", id)
			wp.notifyBookingStatus(ctx, bookingID)
		case <-ctx.Done():
			log.Debugf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a booking for notification. It never blocks the caller;
// when the queue is full the notification is dropped.
func (wp *WorkerPool) Dispatch(bookingID string) {
	select {
	case wp.jobs <- bookingID:
	default:
		log.WithField("booking_id", bookingID).Warn("Notification queue full, dropping booking status notification")
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// notifyBookingStatus pushes the booking's current status to every
// subscription of the booking's guest.
func (wp *WorkerPool) notifyBookingStatus(ctx context.Context, bookingID string) {
	var booking model.Booking
	if err := wp.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error; err != nil {
		log.WithError(err).WithField("booking_id", bookingID).Error("Error fetching booking for notification")
		return
	}

	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Where("user_id = ?", booking.UserID).Find(&subscriptions).Error; err != nil {
		log.WithError(err).WithField("user_id", booking.UserID).Error("Error fetching subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	roomLabel := booking.RoomID
	var room model.Room
	if err := wp.db.WithContext(ctx).
		Select("room_number").
		First(&room, "id = ?", booking.RoomID).Error; err != nil {
		log.WithError(err).WithField("room_id", booking.RoomID).Warn("Error fetching room for notification")
	} else if room.RoomNumber != "" {
		roomLabel = room.RoomNumber
	}

	log.WithFields(log.Fields{
		"booking_id":    bookingID,
		"subscriptions": len(subscriptions),
	}).Info("Sending booking status notifications")

	message := fmt.Sprintf("Booking for room %s is now %s", roomLabel, booking.Status)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.WithError(err).WithField("endpoint", sub.Endpoint).Error("Error sending notification")
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed so they are not retried.
	if resp.StatusCode == http.StatusGone {
		log.WithField("endpoint", sub.Endpoint).Info("Subscription expired, deleting")
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.WithError(err).WithField("endpoint", sub.Endpoint).Error("Failed to delete expired subscription")
		}
	}
}
