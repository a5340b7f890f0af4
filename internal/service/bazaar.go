package service

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"agent_bazaar/internal/biz"
	"agent_bazaar/internal/biz/common"
)

// BazaarService is the operation surface exposed over HTTP. It adapts
// wire requests into transition-logic calls and never holds state of
// its own.
type BazaarService struct {
	bazaar *biz.Bazaar
	log    *log.Helper
}

// NewBazaarService creates the bazaar service
func NewBazaarService(bazaar *biz.Bazaar, logger log.Logger) *BazaarService {
	return &BazaarService{
		bazaar: bazaar,
		log:    log.NewHelper(logger),
	}
}

// Initialize creates the protocol ledger
func (s *BazaarService) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error) {
	s.log.WithContext(ctx).Infof("Initialize called, fee_bps=%d", req.FeeBps)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	ledger, err := s.bazaar.Governance().Initialize(ctx, req.Caller, req.FeeBps)
	if err != nil {
		return nil, err
	}
	return &InitializeResponse{Success: true, Protocol: ledger}, nil
}

// UpdateAuthority transfers the protocol authority
func (s *BazaarService) UpdateAuthority(ctx context.Context, req *UpdateAuthorityRequest) (*StatusResponse, error) {
	s.log.WithContext(ctx).Infof("UpdateAuthority called, new_authority=%s", req.NewAuthority)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	if err := requireIdentity(req.NewAuthority); err != nil {
		return nil, err
	}
	if err := s.bazaar.Governance().UpdateAuthority(ctx, req.Caller, req.NewAuthority); err != nil {
		return nil, err
	}
	return &StatusResponse{Success: true, Message: "Authority updated"}, nil
}

// UpdateFee sets the platform fee
func (s *BazaarService) UpdateFee(ctx context.Context, req *UpdateFeeRequest) (*StatusResponse, error) {
	s.log.WithContext(ctx).Infof("UpdateFee called, fee_bps=%d", req.FeeBps)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	if err := s.bazaar.Governance().UpdateFee(ctx, req.Caller, req.FeeBps); err != nil {
		return nil, err
	}
	return &StatusResponse{Success: true, Message: "Fee updated"}, nil
}

// GetProtocol returns the protocol ledger
func (s *BazaarService) GetProtocol(ctx context.Context) (*ProtocolResponse, error) {
	ledger, err := s.bazaar.Governance().GetProtocol(ctx)
	if err != nil {
		return nil, err
	}
	return &ProtocolResponse{Success: true, Protocol: ledger}, nil
}

// RegisterAgent registers a new agent owned by the caller
func (s *BazaarService) RegisterAgent(ctx context.Context, req *RegisterAgentRequest) (*AgentResponse, error) {
	s.log.WithContext(ctx).Infof("RegisterAgent called, name=%q", req.Name)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	agent, err := s.bazaar.Registry().Register(ctx, req.Caller, &common.RegisterAgentRequest{
		Name:        req.Name,
		Description: req.Description,
		URI:         req.URI,
		Categories:  req.Categories,
	})
	if err != nil {
		return nil, err
	}
	return &AgentResponse{Success: true, Agent: agent}, nil
}

// UpdateAgent applies a partial profile update
func (s *BazaarService) UpdateAgent(ctx context.Context, req *UpdateAgentRequest) (*AgentResponse, error) {
	s.log.WithContext(ctx).Infof("UpdateAgent called, agent_id=%d", req.AgentID)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	agent, err := s.bazaar.Registry().Update(ctx, req.Caller, req.AgentID, &common.UpdateAgentRequest{
		Name:        req.Name,
		Description: req.Description,
		URI:         req.URI,
	})
	if err != nil {
		return nil, err
	}
	return &AgentResponse{Success: true, Agent: agent}, nil
}

// DeactivateAgent clears the agent's active flag
func (s *BazaarService) DeactivateAgent(ctx context.Context, req *AgentLifecycleRequest) (*StatusResponse, error) {
	s.log.WithContext(ctx).Infof("DeactivateAgent called, agent_id=%d", req.AgentID)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	if err := s.bazaar.Registry().Deactivate(ctx, req.Caller, req.AgentID); err != nil {
		return nil, err
	}
	return &StatusResponse{Success: true, Message: "Agent deactivated"}, nil
}

// ReactivateAgent sets the agent's active flag
func (s *BazaarService) ReactivateAgent(ctx context.Context, req *AgentLifecycleRequest) (*StatusResponse, error) {
	s.log.WithContext(ctx).Infof("ReactivateAgent called, agent_id=%d", req.AgentID)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	if err := s.bazaar.Registry().Reactivate(ctx, req.Caller, req.AgentID); err != nil {
		return nil, err
	}
	return &StatusResponse{Success: true, Message: "Agent reactivated"}, nil
}

// CloseAgent destroys an inactive, quiescent agent and its reputation
func (s *BazaarService) CloseAgent(ctx context.Context, req *AgentLifecycleRequest) (*StatusResponse, error) {
	s.log.WithContext(ctx).Infof("CloseAgent called, agent_id=%d", req.AgentID)

	if err := requireIdentity(req.Caller); err != nil {
		return nil, err
	}
	if err := s.bazaar.Registry().Close(ctx, req.Caller, req.AgentID); err != nil {
		return nil, err
	}
	return &StatusResponse{Success: true, Message: "Agent closed"}, nil
}

// GetAgent returns one agent record
func (s *BazaarService) GetAgent(ctx context.Context, agentID uint64) (*AgentResponse, error) {
	agent, err := s.bazaar.Registry().Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &AgentResponse{Success: true, Agent: agent}, nil
}

// ListAgents returns all live agents
func (s *BazaarService) ListAgents(ctx context.Context) (*ListAgentsResponse, error) {
	agents, err := s.bazaar.Registry().List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListAgentsResponse{Success: true, Agents: agents, Total: len(agents)}, nil
}

// SubmitFeedback submits one paid feedback from the rater
func (s *BazaarService) SubmitFeedback(ctx context.Context, req *SubmitFeedbackRequest) (*FeedbackResponse, error) {
	s.log.WithContext(ctx).Infof("SubmitFeedback called, agent_id=%d rating=%d", req.AgentID, req.Rating)

	if err := requireIdentity(req.Rater); err != nil {
		return nil, err
	}
	commentHash, err := parseCommentHash(req.CommentHash)
	if err != nil {
		return nil, err
	}
	feedback, err := s.bazaar.Reputation().Submit(ctx, req.Rater, &common.SubmitFeedbackRequest{
		AgentID:     req.AgentID,
		Rating:      req.Rating,
		CommentHash: commentHash,
		AmountPaid:  req.AmountPaid,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	return &FeedbackResponse{Success: true, Feedback: feedback}, nil
}

// GetReputation returns one reputation aggregate
func (s *BazaarService) GetReputation(ctx context.Context, agentID uint64) (*ReputationResponse, error) {
	reputation, err := s.bazaar.Reputation().GetReputation(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &ReputationResponse{Success: true, Reputation: reputation}, nil
}

// ListFeedback returns all feedback for one agent
func (s *BazaarService) ListFeedback(ctx context.Context, agentID uint64) (*ListFeedbackResponse, error) {
	feedbacks, err := s.bazaar.Reputation().ListFeedback(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &ListFeedbackResponse{Success: true, Feedbacks: feedbacks, Total: len(feedbacks)}, nil
}

// HealthStatus reports component health for the debug endpoint
func (s *BazaarService) HealthStatus(ctx context.Context) map[string]interface{} {
	return s.bazaar.HealthStatus(ctx)
}

// requireIdentity rejects requests that arrived without a verified
// caller identity.
func requireIdentity(id common.Identity) error {
	if id == "" {
		return common.NewBazaarError(common.ErrorCodeInvalidRequest, "Caller identity is required", "")
	}
	return nil
}

// parseCommentHash decodes the hex digest; empty means no comment.
func parseCommentHash(s string) ([32]byte, error) {
	var hash [32]byte
	if s == "" {
		return hash, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return hash, common.NewBazaarError(common.ErrorCodeInvalidRequest, "Comment hash must be hex", err.Error())
	}
	if len(raw) != len(hash) {
		return hash, common.NewBazaarError(common.ErrorCodeInvalidRequest, "Comment hash must be 32 bytes",
			fmt.Sprintf("got %d bytes", len(raw)))
	}
	copy(hash[:], raw)
	return hash, nil
}
