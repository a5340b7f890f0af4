package p2p

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// networkManager composes host and discovery into one lifecycle unit
type networkManager struct {
	hostManager      HostManager
	discoveryManager DiscoveryManager
	config           *HostConfig
	startTime        time.Time
	logger           *zap.Logger
	mu               sync.Mutex
	isRunning        bool
}

// NewNetworkManager creates new network manager
func NewNetworkManager(logger *zap.Logger) NetworkManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &networkManager{
		logger: logger.Named("network_manager"),
	}
}

// Start starts the host, then discovery on top of it
func (nm *networkManager) Start(ctx context.Context, config *HostConfig) error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.isRunning {
		return fmt.Errorf("network manager already running")
	}

	nm.config = config

	nm.hostManager = NewHostManager(nm.logger)
	if err := nm.hostManager.Start(ctx, config); err != nil {
		return fmt.Errorf("failed to start host manager: %w", err)
	}

	host := nm.hostManager.GetHost()
	if host == nil {
		return fmt.Errorf("failed to get libp2p host")
	}

	nm.discoveryManager = NewDiscoveryManager(host, config, nm.logger)
	if err := nm.discoveryManager.Start(ctx); err != nil {
		nm.logger.Error("Failed to start discovery manager", zap.Error(err))
		nm.hostManager.Stop()
		return fmt.Errorf("failed to start discovery manager: %w", err)
	}

	nm.startTime = time.Now()
	nm.isRunning = true
	nm.logger.Info("Network manager started successfully")
	return nil
}

// Stop stops discovery first, then the host
func (nm *networkManager) Stop() error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if !nm.isRunning {
		return fmt.Errorf("network manager not running")
	}

	var errs []error

	if nm.discoveryManager != nil {
		if err := nm.discoveryManager.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop discovery manager: %w", err))
		}
	}

	if nm.hostManager != nil {
		if err := nm.hostManager.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop host manager: %w", err))
		}
	}

	nm.isRunning = false

	if len(errs) > 0 {
		nm.logger.Error("Some errors occurred while stopping network manager",
			zap.Int("error_count", len(errs)),
		)
		return errs[0]
	}

	nm.logger.Info("Network manager stopped successfully")
	return nil
}

// GetHostManager gets host manager
func (nm *networkManager) GetHostManager() HostManager {
	return nm.hostManager
}

// GetDiscoveryManager gets discovery manager
func (nm *networkManager) GetDiscoveryManager() DiscoveryManager {
	return nm.discoveryManager
}

// GetNetworkStatus gets network status
func (nm *networkManager) GetNetworkStatus() *NetworkStatus {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if !nm.isRunning || nm.hostManager == nil {
		return &NetworkStatus{
			IsRunning: false,
		}
	}

	host := nm.hostManager.GetHost()
	if host == nil {
		return &NetworkStatus{
			IsRunning: false,
		}
	}

	var connectedPeersCount int
	var discoveredPeersCount int

	connectedPeersCount = len(host.Network().Peers())
	if nm.discoveryManager != nil {
		discoveredPeersCount = len(nm.discoveryManager.GetKnownPeers())
	}

	return &NetworkStatus{
		IsRunning:            nm.isRunning,
		LocalPeerID:          host.ID(),
		ListenAddresses:      nm.hostManager.GetListenAddresses(),
		ConnectedPeersCount:  connectedPeersCount,
		DiscoveredPeersCount: discoveredPeersCount,
		StartTime:            nm.startTime,
		Uptime:               time.Since(nm.startTime),
		Config:               nm.config,
	}
}
