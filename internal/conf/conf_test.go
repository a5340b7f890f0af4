package conf

import (
	"os"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: "timeout: 1s", want: time.Second},
		{name: "compound", input: "timeout: 1m30s", want: 90 * time.Second},
		{name: "milliseconds", input: "timeout: 250ms", want: 250 * time.Millisecond},
		{name: "nanosecond count", input: "timeout: 1000000000", want: time.Second},
		{name: "garbage string", input: "timeout: fast", wantErr: true},
		{name: "wrong type", input: "timeout: [1, 2]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				Timeout Duration `yaml:"timeout"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &doc)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected decode error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Timeout.AsDuration() != tt.want {
				t.Errorf("got %v, want %v", doc.Timeout.AsDuration(), tt.want)
			}
		})
	}
}

func TestDurationDecodeJSON(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte(`"2s"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.AsDuration() != 2*time.Second {
		t.Errorf("got %v, want 2s", d.AsDuration())
	}
	if err := d.UnmarshalJSON([]byte(`true`)); err == nil {
		t.Error("expected error for boolean duration")
	}
}

func TestBootstrapFromShippedConfig(t *testing.T) {
	data, err := os.ReadFile("../../configs/config.yaml")
	if err != nil {
		t.Fatalf("failed to read shipped config: %v", err)
	}

	var bc Bootstrap
	if err := yaml.Unmarshal(data, &bc); err != nil {
		t.Fatalf("failed to decode shipped config: %v", err)
	}
	bc.Normalize()

	if bc.Server.HTTP.Addr != "0.0.0.0:8000" {
		t.Errorf("unexpected http addr: %s", bc.Server.HTTP.Addr)
	}
	if bc.Server.HTTP.Timeout.AsDuration() != time.Second {
		t.Errorf("unexpected http timeout: %v", bc.Server.HTTP.Timeout.AsDuration())
	}
	if bc.P2P.ProtocolID != "/agent-bazaar/1.0.0" {
		t.Errorf("unexpected protocol id: %s", bc.P2P.ProtocolID)
	}
	if len(bc.P2P.ListenAddresses) == 0 {
		t.Error("no p2p listen addresses")
	}
	if !bc.P2P.EnableMDNS || !bc.P2P.EnableDHT {
		t.Error("discovery disabled in shipped config")
	}
	if !bc.Transport.EnableGossipSub {
		t.Error("gossipsub disabled in shipped config")
	}
	if bc.Transport.MaxMessageSize != 1<<20 {
		t.Errorf("unexpected max message size: %d", bc.Transport.MaxMessageSize)
	}
	if bc.Bazaar.NodeName == "" {
		t.Error("node name empty after normalize")
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	var bc Bootstrap
	bc.Normalize()

	def := Default()
	if bc.Server == nil || bc.Server.HTTP.Addr != def.Server.HTTP.Addr {
		t.Errorf("server defaults not applied: %+v", bc.Server)
	}
	if bc.P2P == nil || bc.P2P.ProtocolID != def.P2P.ProtocolID {
		t.Errorf("p2p defaults not applied: %+v", bc.P2P)
	}
	if bc.Transport == nil || bc.Transport.HeartbeatInterval != def.Transport.HeartbeatInterval {
		t.Errorf("transport defaults not applied: %+v", bc.Transport)
	}
	if bc.Bazaar == nil || bc.Bazaar.NodeName != def.Bazaar.NodeName {
		t.Errorf("bazaar defaults not applied: %+v", bc.Bazaar)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	bc := Bootstrap{
		Server: &Server{HTTP: HTTPServer{Addr: "127.0.0.1:9999"}},
		P2P:    &P2P{MaxConnections: 5},
	}
	bc.Normalize()

	if bc.Server.HTTP.Addr != "127.0.0.1:9999" {
		t.Errorf("explicit addr overwritten: %s", bc.Server.HTTP.Addr)
	}
	if bc.P2P.MaxConnections != 5 {
		t.Errorf("explicit max connections overwritten: %d", bc.P2P.MaxConnections)
	}
}
