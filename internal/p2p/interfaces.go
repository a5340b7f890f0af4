package p2p

import (
	"context"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// HostManager owns the libp2p host lifecycle.
type HostManager interface {
	Start(ctx context.Context, config *HostConfig) error
	Stop() error
	GetHost() host.Host
	GetPeerID() peer.ID
	IsRunning() bool
	GetListenAddresses() []multiaddr.Multiaddr
}

// DiscoveryManager finds and connects bazaar peers via mDNS, the DHT
// rendezvous namespace, and the configured bootstrap list.
type DiscoveryManager interface {
	Start(ctx context.Context) error
	Stop() error
	DiscoverPeers(ctx context.Context, namespace string) (<-chan peer.AddrInfo, error)
	Advertise(ctx context.Context, namespace string) error
	GetKnownPeers() []peer.ID
	ConnectToBootstrapPeers(ctx context.Context) error
}

// NetworkManager composes the host and discovery managers into one
// start/stop unit.
type NetworkManager interface {
	Start(ctx context.Context, config *HostConfig) error
	Stop() error
	GetHostManager() HostManager
	GetDiscoveryManager() DiscoveryManager
	GetNetworkStatus() *NetworkStatus
}
