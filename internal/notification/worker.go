package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"controlnest-backend/config"
	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/metrics"
	"controlnest-backend/internal/model"
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

// Subscriptions is the storage the pool reads subscribers from.
type Subscriptions interface {
	SubscriptionsForLocation(ctx context.Context, locationID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint, userID string) error
}

// StatusEvent describes a device whose status changed.
type StatusEvent struct {
	DeviceID     string `json:"deviceId"`
	LocationID   string `json:"locationId"`
	SerialNumber string `json:"serialNumber"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Previous     string `json:"previous"`
}

type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	StatusEvent
}

// WorkerPool delivers device status events to the subscribers of the
// device's location.
type WorkerPool struct {
	size    int
	jobs    chan StatusEvent
	subs    Subscriptions
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(cfg config.WorkerPoolConfig, subs Subscriptions, webpushOptions *webpush.Options) *WorkerPool {
	size := cfg.Size
	if size < 1 {
		size = 1
	}
	queue := cfg.QueueSize
	if queue < size {
		queue = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan StatusEvent, queue),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Options builds the VAPID options for cfg, or nil when push is disabled.
func Options(cfg config.PushConfig) *webpush.Options {
	if !cfg.Enabled() {
		return nil
	}
	return &webpush.Options{
		VAPIDPublicKey:  cfg.PublicKey,
		VAPIDPrivateKey: cfg.PrivateKey,
		Subscriber:      cfg.Subject,
		TTL:             cfg.TTL,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := logging.With("notification").With().Int("worker", id).Logger()
	log.Debug().Msg("worker started")
	for {
		select {
		case ev := <-wp.jobs:
			log.Debug().Str("device", ev.DeviceID).Str("status", ev.Status).Msg("processing status change")
			wp.sendNotificationsForEvent(ctx, ev)
		case <-ctx.Done():
			log.Debug().Msg("worker shutting down")
			return
		}
	}
}

// NotifyStatusChange queues an event without blocking. Events are dropped
// when the queue is full.
func (wp *WorkerPool) NotifyStatusChange(d model.Device, previous string) {
	wp.Dispatch(StatusEvent{
		DeviceID:     d.ID,
		LocationID:   d.LocationID,
		SerialNumber: d.SerialNumber,
		Type:         d.Type,
		Status:       d.Status,
		Previous:     previous,
	})
}

// Dispatch queues ev and reports whether it was accepted.
func (wp *WorkerPool) Dispatch(ev StatusEvent) bool {
	select {
	case wp.jobs <- ev:
		return true
	default:
		metrics.IncPushDropped()
		logging.Warn().Str("device", ev.DeviceID).Msg("notification queue full, dropping status event")
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan StatusEvent {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForEvent(ctx context.Context, ev StatusEvent) {
	subscriptions, err := wp.subs.SubscriptionsForLocation(ctx, ev.LocationID)
	if err != nil {
		logging.Error().Err(err).Str("location", ev.LocationID).Msg("fetching subscriptions failed")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := ev.SerialNumber
	if label == "" {
		label = ev.DeviceID
	}
	body, err := json.Marshal(payload{
		Title:       "Device status changed",
		Body:        "Device " + label + " (" + ev.Type + ") is now " + ev.Status,
		StatusEvent: ev,
	})
	if err != nil {
		logging.Error().Err(err).Msg("encoding notification failed")
		return
	}

	logging.Info().Int("subscribers", len(subscriptions)).Str("device", ev.DeviceID).Msg("sending status notifications")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, body)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, body []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(body, wpSub, wp.webpush)
	if err != nil {
		metrics.IncPushDelivery("error")
		logging.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("sending notification failed")
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusGone, http.StatusNotFound:
		metrics.IncPushDelivery("expired")
		logging.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint, sub.UserID); err != nil {
			logging.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("deleting expired subscription failed")
		}
	default:
		if resp.StatusCode >= 300 {
			metrics.IncPushDelivery("rejected")
			logging.Warn().Int("status", resp.StatusCode).Str("endpoint", sub.Endpoint).Msg("push service rejected notification")
			return
		}
		metrics.IncPushDelivery("sent")
	}
}
