package service

import (
	"agent_bazaar/internal/biz/common"
)

// Every request carries the caller identity as verified by the host's
// signature layer upstream of this process. The transition logic
// re-checks stored owner/authority relationships against it.

// InitializeRequest creates the protocol ledger
type InitializeRequest struct {
	Caller common.Identity `json:"caller"`
	FeeBps uint16          `json:"fee_bps"`
}

// InitializeResponse returns the created ledger
type InitializeResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Protocol *common.ProtocolLedger `json:"protocol,omitempty"`
}

// UpdateAuthorityRequest hands the protocol over in a single step
type UpdateAuthorityRequest struct {
	Caller       common.Identity `json:"caller"`
	NewAuthority common.Identity `json:"new_authority"`
}

// UpdateFeeRequest sets the platform fee
type UpdateFeeRequest struct {
	Caller common.Identity `json:"caller"`
	FeeBps uint16          `json:"fee_bps"`
}

// StatusResponse is the generic success/message envelope
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RegisterAgentRequest registers a new agent owned by the caller
type RegisterAgentRequest struct {
	Caller      common.Identity `json:"caller"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	URI         string          `json:"uri"`
	Categories  []string        `json:"categories,omitempty"`
}

// AgentResponse returns one agent record
type AgentResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Agent   *common.AgentIdentity `json:"agent,omitempty"`
}

// UpdateAgentRequest applies a partial profile update
type UpdateAgentRequest struct {
	Caller      common.Identity `json:"caller"`
	AgentID     uint64          `json:"agent_id"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	URI         *string         `json:"uri,omitempty"`
}

// AgentLifecycleRequest addresses one owned agent
type AgentLifecycleRequest struct {
	Caller  common.Identity `json:"caller"`
	AgentID uint64          `json:"agent_id"`
}

// ListAgentsResponse returns all live agents in id order
type ListAgentsResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Agents  []*common.AgentIdentity `json:"agents"`
	Total   int                     `json:"total"`
}

// SubmitFeedbackRequest submits one paid feedback. CommentHash is the
// hex-encoded 32-byte digest of the off-system comment payload; empty
// means no comment.
type SubmitFeedbackRequest struct {
	Rater       common.Identity `json:"rater"`
	AgentID     uint64          `json:"agent_id"`
	Rating      uint8           `json:"rating"`
	CommentHash string          `json:"comment_hash,omitempty"`
	AmountPaid  uint64          `json:"amount_paid"`
	Timestamp   int64           `json:"timestamp"`
}

// FeedbackResponse returns one accepted feedback record
type FeedbackResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Feedback *common.Feedback `json:"feedback,omitempty"`
}

// ProtocolResponse returns the protocol ledger
type ProtocolResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Protocol *common.ProtocolLedger `json:"protocol,omitempty"`
}

// ReputationResponse returns one reputation aggregate
type ReputationResponse struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message,omitempty"`
	Reputation *common.AgentReputation `json:"reputation,omitempty"`
}

// ListFeedbackResponse returns all feedback for one agent
type ListFeedbackResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message,omitempty"`
	Feedbacks []*common.Feedback `json:"feedbacks"`
	Total     int                `json:"total"`
}
