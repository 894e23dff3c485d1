package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sweetshop/internal/events"
)

const defaultNotificationQueue = 256

// Broadcaster delivers a payload to all connected listeners.
type Broadcaster interface {
	Broadcast(message []byte) int
}

// ListenerMessage is the frame pushed to websocket listeners.
type ListenerMessage struct {
	Type      events.EventType `json:"type"`
	Data      interface{}      `json:"data"`
	Timestamp time.Time        `json:"timestamp"`
}

// NotificationService forwards inventory events to listeners off the request path.
type NotificationService struct {
	dispatcher  events.Dispatcher
	broadcaster Broadcaster
	logger      *zap.Logger
	queue       chan []byte
}

// NewNotificationService creates the service. queueSize bounds the number of
// pending messages; further events are dropped until the worker catches up.
func NewNotificationService(dispatcher events.Dispatcher, broadcaster Broadcaster, logger *zap.Logger, queueSize int) *NotificationService {
	if queueSize <= 0 {
		queueSize = defaultNotificationQueue
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      logger,
		queue:       make(chan []byte, queueSize),
	}
}

// RegisterHandlers subscribes to inventory events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.SweetEventTypes {
		n.dispatcher.Subscribe(eventType, n.handleSweetEvent)
	}
}

func (n *NotificationService) handleSweetEvent(_ context.Context, event events.Event) error {
	message, err := json.Marshal(ListenerMessage{
		Type:      event.Type,
		Data:      event.Payload,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return err
	}

	select {
	case n.queue <- message:
	default:
		n.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("sweet_id", event.SweetID))
	}
	return nil
}

// Run delivers queued messages until ctx is cancelled.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-n.queue:
			if n.broadcaster == nil {
				continue
			}
			delivered := n.broadcaster.Broadcast(message)
			n.logger.Debug("notification delivered", zap.Int("listeners", delivered))
		}
	}
}
