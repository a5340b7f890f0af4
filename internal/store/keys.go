package store

import (
	"fmt"

	"agent_bazaar/internal/biz/common"
)

// Key is a deterministic record address derived from a type tag plus the
// record's numeric/identity keys, mirroring the host's seeded addressing.
// Identities are hex strings, so the "/" separator never collides.
type Key string

// Record type tags
const (
	tagProtocol   = "protocol"
	tagAgent      = "agent"
	tagReputation = "reputation"
	tagRater      = "rater"
	tagFeedback   = "feedback"
)

// ProtocolKey addresses the singleton protocol ledger.
func ProtocolKey() Key {
	return Key(tagProtocol)
}

// AgentKey addresses one agent identity record.
func AgentKey(agentID uint64) Key {
	return Key(fmt.Sprintf("%s/%d", tagAgent, agentID))
}

// ReputationKey addresses the reputation record paired with an agent.
func ReputationKey(agentID uint64) Key {
	return Key(fmt.Sprintf("%s/%d", tagReputation, agentID))
}

// RaterKey addresses the cooldown tracker for one (agent, rater) pair.
func RaterKey(agentID uint64, rater common.Identity) Key {
	return Key(fmt.Sprintf("%s/%d/%s", tagRater, agentID, rater))
}

// FeedbackKey addresses one immutable feedback record. The caller-supplied
// timestamp is part of the key on purpose; see the duplicate-within-second
// note in DESIGN.md.
func FeedbackKey(agentID uint64, rater common.Identity, timestamp int64) Key {
	return Key(fmt.Sprintf("%s/%d/%s/%d", tagFeedback, agentID, rater, timestamp))
}

// FeedbackPrefix is the scan prefix for all feedback of one agent.
func FeedbackPrefix(agentID uint64) Key {
	return Key(fmt.Sprintf("%s/%d/", tagFeedback, agentID))
}
