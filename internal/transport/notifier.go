package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"agent_bazaar/internal/biz/common"
)

// EventNotifier delivers committed-state events to the gossip mesh.
// Delivery is fire-and-forget: a publish failure is logged and dropped,
// never surfaced to the already-committed operation.
//
// The publisher is attached after the libp2p host starts, so the
// notifier begins life detached and silently drops events until
// SetPublisher is called.
type EventNotifier struct {
	mu        sync.RWMutex
	publisher Publisher
	source    string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewEventNotifier creates a detached event notifier
func NewEventNotifier(source string, logger *zap.Logger) *EventNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventNotifier{
		source:  source,
		timeout: 5 * time.Second,
		logger:  logger.Named("event_notifier"),
	}
}

// SetPublisher attaches the started publisher
func (n *EventNotifier) SetPublisher(p Publisher) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.publisher = p
}

// AgentRegistered publishes an agent registration event
func (n *EventNotifier) AgentRegistered(ctx context.Context, event *common.AgentRegisteredEvent) {
	n.emit("agent_registered", common.TopicAgentRegistered, event)
}

// FeedbackSubmitted publishes a feedback acceptance event
func (n *EventNotifier) FeedbackSubmitted(ctx context.Context, event *common.FeedbackSubmittedEvent) {
	n.emit("feedback_submitted", common.TopicFeedbackSubmitted, event)
}

// emit serializes and publishes one event in the background
func (n *EventNotifier) emit(eventType, topic string, event interface{}) {
	n.mu.RLock()
	publisher := n.publisher
	n.mu.RUnlock()

	if publisher == nil || !publisher.IsRunning() {
		n.logger.Debug("No publisher attached, dropping event",
			zap.String("event_type", eventType),
		)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to serialize event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	envelope := &EventEnvelope{
		Type:      eventType,
		Source:    n.source,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		n.logger.Error("Failed to serialize event envelope",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := publisher.Publish(ctx, topic, data); err != nil {
			n.logger.Warn("Failed to publish event",
				zap.String("event_type", eventType),
				zap.String("topic", topic),
				zap.Error(err),
			)
			return
		}
		n.logger.Debug("Event published",
			zap.String("event_type", eventType),
			zap.String("topic", topic),
		)
	}()
}

// NopNotifier drops every event. Used in tests and when gossip is
// disabled by configuration.
type NopNotifier struct{}

func (NopNotifier) AgentRegistered(ctx context.Context, event *common.AgentRegisteredEvent)   {}
func (NopNotifier) FeedbackSubmitted(ctx context.Context, event *common.FeedbackSubmittedEvent) {}
