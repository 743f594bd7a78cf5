package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type eventProducer interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher publishes storefront analytics events keyed by session
type EventPublisher struct {
	producer eventProducer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func sessionKey(id string) string {
	return "session-" + id
}

// PublishSessionStarted publishes SessionStarted event
func (ep *EventPublisher) PublishSessionStarted(ctx context.Context, event *models.SessionStartedEvent) error {
	return ep.producer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishCheckoutStarted publishes CheckoutStarted event
func (ep *EventPublisher) PublishCheckoutStarted(ctx context.Context, event *models.CheckoutStartedEvent) error {
	return ep.producer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishCheckoutCompleted publishes CheckoutCompleted event
func (ep *EventPublisher) PublishCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	return ep.producer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishAdviceRequested publishes AdviceRequested event
func (ep *EventPublisher) PublishAdviceRequested(ctx context.Context, event *models.AdviceRequestedEvent) error {
	return ep.producer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// NoopPublisher drops every event; used when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) PublishSessionStarted(context.Context, *models.SessionStartedEvent) error {
	return nil
}

func (NoopPublisher) PublishCheckoutStarted(context.Context, *models.CheckoutStartedEvent) error {
	return nil
}

func (NoopPublisher) PublishCheckoutCompleted(context.Context, *models.CheckoutCompletedEvent) error {
	return nil
}

func (NoopPublisher) PublishAdviceRequested(context.Context, *models.AdviceRequestedEvent) error {
	return nil
}

// EventHandler routes incoming storefront events to registered callbacks
type EventHandler struct {
	onSessionStarted    func(context.Context, *models.SessionStartedEvent) error
	onCheckoutStarted   func(context.Context, *models.CheckoutStartedEvent) error
	onCheckoutCompleted func(context.Context, *models.CheckoutCompletedEvent) error
	onAdviceRequested   func(context.Context, *models.AdviceRequestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

func (eh *EventHandler) OnSessionStarted(handler func(context.Context, *models.SessionStartedEvent) error) {
	eh.onSessionStarted = handler
}

func (eh *EventHandler) OnCheckoutStarted(handler func(context.Context, *models.CheckoutStartedEvent) error) {
	eh.onCheckoutStarted = handler
}

func (eh *EventHandler) OnCheckoutCompleted(handler func(context.Context, *models.CheckoutCompletedEvent) error) {
	eh.onCheckoutCompleted = handler
}

func (eh *EventHandler) OnAdviceRequested(handler func(context.Context, *models.AdviceRequestedEvent) error) {
	eh.onAdviceRequested = handler
}

// HandleMessage decodes msg by its event type and calls the matching
// callback. Events without a callback are ignored.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	util.GetLogger().Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeSessionStarted:
		return dispatch(ctx, msg.Value, eh.onSessionStarted)
	case models.EventTypeCheckoutStarted:
		return dispatch(ctx, msg.Value, eh.onCheckoutStarted)
	case models.EventTypeCheckoutCompleted:
		return dispatch(ctx, msg.Value, eh.onCheckoutCompleted)
	case models.EventTypeAdviceRequested:
		return dispatch(ctx, msg.Value, eh.onAdviceRequested)
	default:
		util.GetLogger().Warn("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}
	return nil
}

func dispatch[T any](ctx context.Context, data []byte, handler func(context.Context, *T) error) error {
	if handler == nil {
		return nil
	}
	var event T
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", event, err)
	}
	return handler(ctx, &event)
}
