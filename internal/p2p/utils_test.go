package p2p

import (
	"strings"
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
)

func TestFormatPeerID(t *testing.T) {
	long := peer.ID("bootstrap-peer-test-identity")
	full := long.String()
	if len(full) <= 12 {
		t.Fatalf("test peer id too short to exercise truncation: %q", full)
	}

	formatted := FormatPeerID(long)
	if len(formatted) != 15 {
		t.Errorf("expected 15 char short form, got %q", formatted)
	}
	if !strings.Contains(formatted, "...") {
		t.Errorf("short form missing ellipsis: %q", formatted)
	}
	if !strings.HasPrefix(full, formatted[:6]) || !strings.HasSuffix(full, formatted[len(formatted)-6:]) {
		t.Errorf("short form %q does not match full id %q", formatted, full)
	}

	short := peer.ID("ab")
	if got := FormatPeerID(short); got != short.String() {
		t.Errorf("short ids should pass through unchanged, got %q", got)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *HostConfig {
		return &HostConfig{
			ListenAddresses: []string{"/ip4/0.0.0.0/tcp/9000"},
			ProtocolID:      "/agent-bazaar/1.0.0",
			DataDir:         "./data/p2p",
			MaxConnections:  100,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*HostConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *HostConfig) {}},
		{name: "nil config", mutate: nil, wantErr: true},
		{name: "no listen addresses", mutate: func(c *HostConfig) { c.ListenAddresses = nil }, wantErr: true},
		{name: "bad multiaddr", mutate: func(c *HostConfig) { c.ListenAddresses = []string{"not-a-multiaddr"} }, wantErr: true},
		{name: "bad bootstrap peer", mutate: func(c *HostConfig) { c.BootstrapPeers = []string{"garbage"} }, wantErr: true},
		{name: "empty protocol id", mutate: func(c *HostConfig) { c.ProtocolID = "" }, wantErr: true},
		{name: "empty data dir", mutate: func(c *HostConfig) { c.DataDir = "" }, wantErr: true},
		{name: "zero max connections", mutate: func(c *HostConfig) { c.MaxConnections = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var config *HostConfig
			if tt.mutate != nil {
				config = valid()
				tt.mutate(config)
			}
			err := ValidateConfig(config)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
