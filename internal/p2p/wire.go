package p2p

import (
	"agent_bazaar/internal/conf"

	"github.com/google/wire"
)

// ProviderSet P2P module wire provider set
var ProviderSet = wire.NewSet(
	NewNetworkManager,
	NewHostConfig,
)

// NewHostConfig creates P2P configuration from bootstrap config
func NewHostConfig(c *conf.Bootstrap) (*HostConfig, error) {
	if c.P2P == nil {
		return getDefaultConfig(), nil
	}

	config := &HostConfig{
		ListenAddresses: c.P2P.ListenAddresses,
		BootstrapPeers:  c.P2P.BootstrapPeers,
		ProtocolID:      c.P2P.ProtocolID,
		EnableMDNS:      c.P2P.EnableMDNS,
		EnableDHT:       c.P2P.EnableDHT,
		DataDir:         c.P2P.DataDir,
		MaxConnections:  c.P2P.MaxConnections,
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// getDefaultConfig returns default P2P configuration
func getDefaultConfig() *HostConfig {
	return &HostConfig{
		ListenAddresses: []string{
			"/ip4/0.0.0.0/tcp/9000",
			"/ip4/0.0.0.0/udp/9000/quic",
		},
		BootstrapPeers: []string{},
		ProtocolID:     "/agent-bazaar/1.0.0",
		EnableMDNS:     true,
		EnableDHT:      true,
		DataDir:        "./data/p2p",
		MaxConnections: 100,
	}
}
