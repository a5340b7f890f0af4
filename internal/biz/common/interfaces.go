package common

import "context"

// Notifier delivers post-commit notification events. Delivery is
// fire-and-forget: implementations log failures and never propagate them
// back into the committed operation.
type Notifier interface {
	AgentRegistered(ctx context.Context, event *AgentRegisteredEvent)
	FeedbackSubmitted(ctx context.Context, event *FeedbackSubmittedEvent)
}

// AgentRegistry exposes the agent lifecycle operations.
type AgentRegistry interface {
	Register(ctx context.Context, caller Identity, req *RegisterAgentRequest) (*AgentIdentity, error)
	Update(ctx context.Context, caller Identity, agentID uint64, req *UpdateAgentRequest) (*AgentIdentity, error)
	Deactivate(ctx context.Context, caller Identity, agentID uint64) error
	Reactivate(ctx context.Context, caller Identity, agentID uint64) error
	Close(ctx context.Context, caller Identity, agentID uint64) error
	Get(ctx context.Context, agentID uint64) (*AgentIdentity, error)
	List(ctx context.Context) ([]*AgentIdentity, error)
}

// ReputationLedger exposes feedback submission and reputation reads.
type ReputationLedger interface {
	Submit(ctx context.Context, rater Identity, req *SubmitFeedbackRequest) (*Feedback, error)
	GetReputation(ctx context.Context, agentID uint64) (*AgentReputation, error)
	GetRaterState(ctx context.Context, agentID uint64, rater Identity) (*RaterState, error)
	ListFeedback(ctx context.Context, agentID uint64) ([]*Feedback, error)
}

// Governance exposes the protocol ledger operations.
type Governance interface {
	Initialize(ctx context.Context, caller Identity, feeBps uint16) (*ProtocolLedger, error)
	UpdateAuthority(ctx context.Context, caller Identity, newAuthority Identity) error
	UpdateFee(ctx context.Context, caller Identity, feeBps uint16) error
	GetProtocol(ctx context.Context) (*ProtocolLedger, error)
}

// RegisterAgentRequest carries the profile fields for registration.
// Categories are validated but not persisted; the field is accepted for
// forward compatibility with richer agent schemas.
type RegisterAgentRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URI         string   `json:"uri"`
	Categories  []string `json:"categories,omitempty"`
}

// UpdateAgentRequest carries partial profile updates; nil fields are
// left untouched.
type UpdateAgentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	URI         *string `json:"uri,omitempty"`
}

// SubmitFeedbackRequest carries one feedback submission.
type SubmitFeedbackRequest struct {
	AgentID     uint64   `json:"agent_id"`
	Rating      uint8    `json:"rating"`
	CommentHash [32]byte `json:"comment_hash"`
	AmountPaid  uint64   `json:"amount_paid"`
	Timestamp   int64    `json:"timestamp"`
}
