package common

// SchemaVersion is the current layout version stamped into every record.
// Readers tolerate older versions; new fields must be additive.
const SchemaVersion uint8 = 1

// Identity is a verified caller identity as produced by the host's
// signature layer (hex-encoded public key). The core never inspects it
// beyond equality checks against stored owner/authority fields.
type Identity string

// ProtocolLedger is the singleton record holding global configuration and
// running totals. Created once by Initialize, mutated by governance
// operations and every accepted feedback submission, never destroyed.
type ProtocolLedger struct {
	SchemaVersion     uint8    `json:"schema_version"`
	Authority         Identity `json:"authority"`
	AgentCount        uint64   `json:"agent_count"`
	PlatformFeeBps    uint16   `json:"platform_fee_bps"`
	FeeVault          Identity `json:"fee_vault"`
	TotalTransactions uint64   `json:"total_transactions"`
	TotalVolume       uint64   `json:"total_volume"`
}

// AgentIdentity is one registered agent's identity and profile record.
type AgentIdentity struct {
	SchemaVersion uint8    `json:"schema_version"`
	AgentID       uint64   `json:"agent_id"`
	Owner         Identity `json:"owner"`
	AgentWallet   Identity `json:"agent_wallet"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	URI           string   `json:"uri"`
	Active        bool     `json:"active"`
	RegisteredAt  int64    `json:"registered_at"`
	UpdatedAt     int64    `json:"updated_at"`
}

// AgentReputation accumulates rating statistics for one agent. It is
// created and destroyed together with the matching AgentIdentity and is
// mutated only by feedback submission.
type AgentReputation struct {
	SchemaVersion      uint8     `json:"schema_version"`
	AgentID            uint64    `json:"agent_id"`
	TotalRatings       uint64    `json:"total_ratings"`
	RatingSum          uint64    `json:"rating_sum"`
	TotalVolume        uint64    `json:"total_volume"`
	UniqueRaters       uint64    `json:"unique_raters"`
	RatingDistribution [5]uint64 `json:"rating_distribution"`
	LastRatedAt        int64     `json:"last_rated_at"`
}

// RaterState tracks one (agent, rater) pair for cooldown enforcement.
// Created lazily on the rater's first feedback for that agent and never
// destroyed, so a rater cannot reset their cooldown window.
type RaterState struct {
	SchemaVersion  uint8    `json:"schema_version"`
	AgentID        uint64   `json:"agent_id"`
	Rater          Identity `json:"rater"`
	LastFeedbackAt int64    `json:"last_feedback_at"`
	FeedbackCount  uint64   `json:"feedback_count"`
}

// Feedback is one immutable accepted submission. Keyed by
// (agent_id, rater, created_at); never mutated or destroyed.
type Feedback struct {
	SchemaVersion uint8    `json:"schema_version"`
	AgentID       uint64   `json:"agent_id"`
	Rater         Identity `json:"rater"`
	Rating        uint8    `json:"rating"`
	CommentHash   [32]byte `json:"comment_hash"`
	AmountPaid    uint64   `json:"amount_paid"`
	CreatedAt     int64    `json:"created_at"`
}

// AgentRegisteredEvent is emitted after a successful registration commit.
type AgentRegisteredEvent struct {
	AgentID uint64   `json:"agent_id"`
	Owner   Identity `json:"owner"`
	Name    string   `json:"name"`
}

// FeedbackSubmittedEvent is emitted after a successful feedback commit.
type FeedbackSubmittedEvent struct {
	AgentID    uint64   `json:"agent_id"`
	Rater      Identity `json:"rater"`
	Rating     uint8    `json:"rating"`
	AmountPaid uint64   `json:"amount_paid"`
}
