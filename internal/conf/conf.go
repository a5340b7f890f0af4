package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration decodes from either a Go duration string ("5s") or an
// integer nanosecond count, so the same struct works for the kratos
// config scanner and plain YAML.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.decode(raw)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return d.decode(raw)
}

func (d *Duration) decode(raw interface{}) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(v))
	case int:
		*d = Duration(time.Duration(v))
	case int64:
		*d = Duration(time.Duration(v))
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// AsDuration returns the underlying time.Duration
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Bootstrap is the root configuration document.
type Bootstrap struct {
	Server    *Server    `json:"server" yaml:"server"`
	P2P       *P2P       `json:"p2p" yaml:"p2p"`
	Transport *Transport `json:"transport" yaml:"transport"`
	Bazaar    *Bazaar    `json:"bazaar" yaml:"bazaar"`
}

// Server holds the HTTP listener settings
type Server struct {
	HTTP HTTPServer `json:"http" yaml:"http"`
}

// HTTPServer configures the JSON API listener
type HTTPServer struct {
	Network string   `json:"network" yaml:"network"`
	Addr    string   `json:"addr" yaml:"addr"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

// P2P configures the libp2p host and peer discovery
type P2P struct {
	ListenAddresses []string `json:"listen_addresses" yaml:"listen_addresses"`
	BootstrapPeers  []string `json:"bootstrap_peers" yaml:"bootstrap_peers"`
	ProtocolID      string   `json:"protocol_id" yaml:"protocol_id"`
	EnableMDNS      bool     `json:"enable_mdns" yaml:"enable_mdns"`
	EnableDHT       bool     `json:"enable_dht" yaml:"enable_dht"`
	DataDir         string   `json:"data_dir" yaml:"data_dir"`
	MaxConnections  int      `json:"max_connections" yaml:"max_connections"`
}

// Transport configures the gossipsub event publisher
type Transport struct {
	EnableGossipSub    bool     `json:"enable_gossipsub" yaml:"enable_gossipsub"`
	HeartbeatInterval  Duration `json:"heartbeat_interval" yaml:"heartbeat_interval"`
	EnableSigning      bool     `json:"enable_signing" yaml:"enable_signing"`
	StrictVerification bool     `json:"strict_verification" yaml:"strict_verification"`
	MaxMessageSize     int      `json:"max_message_size" yaml:"max_message_size"`
}

// Bazaar holds marketplace node settings
type Bazaar struct {
	NodeName     string `json:"node_name" yaml:"node_name"`
	EnableEvents bool   `json:"enable_events" yaml:"enable_events"`
}

// Default returns a Bootstrap populated with working local defaults.
// Loaded configuration is merged over it field by field.
func Default() *Bootstrap {
	return &Bootstrap{
		Server: &Server{
			HTTP: HTTPServer{
				Network: "tcp",
				Addr:    "0.0.0.0:8000",
				Timeout: Duration(time.Second),
			},
		},
		P2P: &P2P{
			ListenAddresses: []string{"/ip4/0.0.0.0/tcp/9000"},
			ProtocolID:      "/agent-bazaar/1.0.0",
			EnableMDNS:      true,
			EnableDHT:       true,
			DataDir:         "./data",
			MaxConnections:  100,
		},
		Transport: &Transport{
			EnableGossipSub:    true,
			HeartbeatInterval:  Duration(time.Second),
			EnableSigning:      true,
			StrictVerification: true,
			MaxMessageSize:     1 << 20,
		},
		Bazaar: &Bazaar{
			NodeName:     "agent-bazaar-node",
			EnableEvents: true,
		},
	}
}

// Normalize fills nil sections and zero fields from the defaults.
func (b *Bootstrap) Normalize() {
	def := Default()
	if b.Server == nil {
		b.Server = def.Server
	}
	if b.Server.HTTP.Addr == "" {
		b.Server.HTTP.Addr = def.Server.HTTP.Addr
	}
	if b.Server.HTTP.Network == "" {
		b.Server.HTTP.Network = def.Server.HTTP.Network
	}
	if b.Server.HTTP.Timeout == 0 {
		b.Server.HTTP.Timeout = def.Server.HTTP.Timeout
	}
	if b.P2P == nil {
		b.P2P = def.P2P
	}
	if len(b.P2P.ListenAddresses) == 0 {
		b.P2P.ListenAddresses = def.P2P.ListenAddresses
	}
	if b.P2P.ProtocolID == "" {
		b.P2P.ProtocolID = def.P2P.ProtocolID
	}
	if b.P2P.MaxConnections == 0 {
		b.P2P.MaxConnections = def.P2P.MaxConnections
	}
	if b.P2P.DataDir == "" {
		b.P2P.DataDir = def.P2P.DataDir
	}
	if b.Transport == nil {
		b.Transport = def.Transport
	}
	if b.Transport.HeartbeatInterval == 0 {
		b.Transport.HeartbeatInterval = def.Transport.HeartbeatInterval
	}
	if b.Transport.MaxMessageSize == 0 {
		b.Transport.MaxMessageSize = def.Transport.MaxMessageSize
	}
	if b.Bazaar == nil {
		b.Bazaar = def.Bazaar
	}
	if b.Bazaar.NodeName == "" {
		b.Bazaar.NodeName = def.Bazaar.NodeName
	}
}
