package transport

import "time"

// PubSubConfig configures the GossipSub mesh used for event fan-out
type PubSubConfig struct {
	HeartbeatInterval        time.Duration `json:"heartbeat_interval"`
	D                        int           `json:"d"`
	DLo                      int           `json:"d_lo"`
	DHi                      int           `json:"d_hi"`
	FanoutTTL                time.Duration `json:"fanout_ttl"`
	EnableSigning            bool          `json:"enable_signing"`
	EnableStrictVerification bool          `json:"enable_strict_verification"`
	MaxMessageSize           int           `json:"max_message_size"`
	PublishTimeout           time.Duration `json:"publish_timeout"`
}

// EventEnvelope wraps one committed-state event on the wire. Payload is
// the JSON-encoded event body for the named type.
type EventEnvelope struct {
	Type      string `json:"type"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
	Payload   []byte `json:"payload"`
}

// TransportError transport layer error
type TransportError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *TransportError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// Common transport errors
var (
	ErrTransportNotRunning = &TransportError{"TRANSPORT_NOT_RUNNING", "Publisher is not running", ""}
	ErrMessageTooLarge     = &TransportError{"MESSAGE_TOO_LARGE", "Message exceeds maximum size", ""}
	ErrEmptyData           = &TransportError{"EMPTY_DATA", "Cannot publish empty data", ""}
)

// DefaultPubSubConfig returns default pubsub configuration
func DefaultPubSubConfig() *PubSubConfig {
	return &PubSubConfig{
		HeartbeatInterval:        time.Second,
		D:                        6,
		DLo:                      4,
		DHi:                      12,
		FanoutTTL:                60 * time.Second,
		EnableSigning:            true,
		EnableStrictVerification: true,
		MaxMessageSize:           1024 * 1024, // 1MB
		PublishTimeout:           5 * time.Second,
	}
}
