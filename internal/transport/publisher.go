package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"
)

// Publisher fans committed-state events out over GossipSub. Topics are
// joined lazily on first publish and kept open until Stop.
type Publisher interface {
	Start(ctx context.Context, config *PubSubConfig) error
	Stop() error
	Publish(ctx context.Context, topic string, data []byte) error
	IsRunning() bool
	GetConnectedPeers() []peer.ID
}

// publisher GossipSub publisher implementation
type publisher struct {
	host      host.Host
	pubsub    *pubsub.PubSub
	ctx       context.Context
	cancel    context.CancelFunc
	config    *PubSubConfig
	logger    *zap.Logger
	isRunning bool

	// Topic management
	topics map[string]*pubsub.Topic
	mu     sync.RWMutex
}

// NewPublisher creates new event publisher
func NewPublisher(h host.Host, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &publisher{
		host:   h,
		logger: logger.Named("event_publisher"),
		topics: make(map[string]*pubsub.Topic),
	}
}

// Start starts the publisher
func (p *publisher) Start(ctx context.Context, config *PubSubConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("publisher already running")
	}

	if config == nil {
		config = DefaultPubSubConfig()
	}
	p.config = config
	p.ctx, p.cancel = context.WithCancel(ctx)

	options := []pubsub.Option{
		pubsub.WithPeerExchange(true),
		pubsub.WithFloodPublish(true),
	}

	gossipSubConfig := pubsub.DefaultGossipSubParams()
	gossipSubConfig.D = config.D
	gossipSubConfig.Dlo = config.DLo
	gossipSubConfig.Dhi = config.DHi
	gossipSubConfig.HeartbeatInterval = config.HeartbeatInterval
	gossipSubConfig.FanoutTTL = config.FanoutTTL
	options = append(options, pubsub.WithGossipSubParams(gossipSubConfig))

	if config.EnableSigning {
		options = append(options, pubsub.WithMessageSigning(true))
	}
	if config.EnableStrictVerification {
		options = append(options, pubsub.WithStrictSignatureVerification(true))
	}

	ps, err := pubsub.NewGossipSub(p.ctx, p.host, options...)
	if err != nil {
		return fmt.Errorf("failed to create GossipSub: %w", err)
	}

	p.pubsub = ps
	p.isRunning = true

	p.logger.Info("Event publisher started successfully",
		zap.Int("d", config.D),
		zap.Int("d_lo", config.DLo),
		zap.Int("d_hi", config.DHi),
		zap.Duration("heartbeat_interval", config.HeartbeatInterval),
		zap.Bool("enable_signing", config.EnableSigning),
	)

	return nil
}

// Stop stops the publisher
func (p *publisher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return fmt.Errorf("publisher not running")
	}

	for topic, topicHandle := range p.topics {
		topicHandle.Close()
		p.logger.Debug("Closed topic", zap.String("topic", topic))
	}
	p.topics = make(map[string]*pubsub.Topic)

	if p.cancel != nil {
		p.cancel()
	}

	p.isRunning = false
	p.logger.Info("Event publisher stopped")

	return nil
}

// IsRunning reports whether Start has completed
func (p *publisher) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// Publish publishes a message to a topic
func (p *publisher) Publish(ctx context.Context, topic string, data []byte) error {
	if !p.IsRunning() {
		return ErrTransportNotRunning
	}

	if err := ValidateTopicName(topic); err != nil {
		return err
	}

	if len(data) == 0 {
		return ErrEmptyData
	}
	if p.config.MaxMessageSize > 0 && len(data) > p.config.MaxMessageSize {
		return ErrMessageTooLarge
	}

	topicHandle, err := p.joinTopic(topic)
	if err != nil {
		return err
	}

	if err := topicHandle.Publish(ctx, data); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.Int("data_size", len(data)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	p.logger.Debug("Message published successfully",
		zap.String("topic", topic),
		zap.Int("data_size", len(data)),
	)

	return nil
}

// joinTopic returns the cached topic handle, joining on first use
func (p *publisher) joinTopic(topic string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	topicHandle, exists := p.topics[topic]
	if exists {
		return topicHandle, nil
	}

	topicHandle, err := p.pubsub.Join(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to join topic %s: %w", topic, err)
	}
	p.topics[topic] = topicHandle
	return topicHandle, nil
}

// GetConnectedPeers returns connected peers
func (p *publisher) GetConnectedPeers() []peer.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.isRunning || p.pubsub == nil {
		return []peer.ID{}
	}

	return p.host.Network().Peers()
}

// ValidateTopicName validates topic name format
func ValidateTopicName(topic string) error {
	if topic == "" {
		return &TransportError{"INVALID_TOPIC_NAME", "Topic name cannot be empty", ""}
	}

	if len(topic) > 256 {
		return &TransportError{"TOPIC_NAME_TOO_LONG", "Topic name exceeds maximum length", ""}
	}

	if strings.ContainsAny(topic, " \t\n\r") {
		return &TransportError{"INVALID_TOPIC_CHARACTERS", "Topic name contains invalid characters", ""}
	}

	return nil
}
