package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"agent_bazaar/internal/biz/common"
)

// Bazaar provides unified access to the transition logic: governance,
// agent registry, and the reputation ledger, all sharing one record store.
type Bazaar struct {
	governance common.Governance
	registry   common.AgentRegistry
	reputation common.ReputationLedger
	logger     *log.Helper
}

// NewBazaar creates the business logic facade
func NewBazaar(
	governance common.Governance,
	registry common.AgentRegistry,
	reputation common.ReputationLedger,
	logger log.Logger,
) *Bazaar {
	return &Bazaar{
		governance: governance,
		registry:   registry,
		reputation: reputation,
		logger:     log.NewHelper(logger),
	}
}

// Governance returns the protocol ledger operations
func (b *Bazaar) Governance() common.Governance {
	return b.governance
}

// Registry returns the agent lifecycle operations
func (b *Bazaar) Registry() common.AgentRegistry {
	return b.registry
}

// Reputation returns the feedback operations
func (b *Bazaar) Reputation() common.ReputationLedger {
	return b.reputation
}

// HealthStatus reports a coarse component health snapshot for the
// debug endpoint.
func (b *Bazaar) HealthStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"status": "healthy",
	}
	if ledger, err := b.governance.GetProtocol(ctx); err == nil {
		status["initialized"] = true
		status["agent_count"] = ledger.AgentCount
		status["total_transactions"] = ledger.TotalTransactions
	} else {
		status["initialized"] = false
	}
	return status
}
