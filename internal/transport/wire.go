package transport

import (
	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/conf"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// ProviderSet Transport module wire provider set
var ProviderSet = wire.NewSet(
	NewNotifierFromConf,
	NewPubSubConfig,
	wire.Bind(new(common.Notifier), new(*EventNotifier)),
)

// NewPubSubConfig creates pubsub configuration from bootstrap config
func NewPubSubConfig(c *conf.Bootstrap) *PubSubConfig {
	config := DefaultPubSubConfig()
	if c.Transport == nil {
		return config
	}

	if c.Transport.HeartbeatInterval > 0 {
		config.HeartbeatInterval = c.Transport.HeartbeatInterval.AsDuration()
	}
	config.EnableSigning = c.Transport.EnableSigning
	config.EnableStrictVerification = c.Transport.StrictVerification
	if c.Transport.MaxMessageSize > 0 {
		config.MaxMessageSize = c.Transport.MaxMessageSize
	}

	return config
}

// NewNotifierFromConf creates the event notifier for this node
func NewNotifierFromConf(c *conf.Bootstrap, config *PubSubConfig, logger *zap.Logger) *EventNotifier {
	source := "agent-bazaar-node"
	if c.Bazaar != nil && c.Bazaar.NodeName != "" {
		source = c.Bazaar.NodeName
	}
	notifier := NewEventNotifier(source, logger)
	if config != nil && config.PublishTimeout > 0 {
		notifier.timeout = config.PublishTimeout
	}
	return notifier
}
