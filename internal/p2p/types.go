package p2p

import (
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// HostConfig holds the libp2p host settings for a bazaar node.
type HostConfig struct {
	// ListenAddresses the multiaddrs the host binds to
	ListenAddresses []string `json:"listen_addresses" yaml:"listen_addresses"`
	// BootstrapPeers well-known peers dialed at startup
	BootstrapPeers []string `json:"bootstrap_peers" yaml:"bootstrap_peers"`
	// ProtocolID identifies the bazaar mesh, also used as the
	// discovery rendezvous namespace
	ProtocolID string `json:"protocol_id" yaml:"protocol_id"`
	// EnableMDNS local network discovery
	EnableMDNS bool `json:"enable_mdns" yaml:"enable_mdns"`
	// EnableDHT kademlia discovery and rendezvous advertising
	EnableDHT bool `json:"enable_dht" yaml:"enable_dht"`
	// DataDir holds the node identity key
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// MaxConnections high-water mark for the connection manager
	MaxConnections int `json:"max_connections" yaml:"max_connections"`
}

// NetworkStatus is a point-in-time snapshot of the mesh membership.
type NetworkStatus struct {
	IsRunning            bool                  `json:"is_running"`
	LocalPeerID          peer.ID               `json:"local_peer_id"`
	ListenAddresses      []multiaddr.Multiaddr `json:"listen_addresses"`
	ConnectedPeersCount  int                   `json:"connected_peers_count"`
	DiscoveredPeersCount int                   `json:"discovered_peers_count"`
	StartTime            time.Time             `json:"start_time"`
	Uptime               time.Duration         `json:"uptime"`
	Config               *HostConfig           `json:"config"`
}
