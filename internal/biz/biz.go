package biz

import (
	"github.com/google/wire"

	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/biz/governance"
	"agent_bazaar/internal/biz/registry"
	"agent_bazaar/internal/biz/reputation"
	"agent_bazaar/internal/store"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewBazaar,
	store.NewStore,
	common.NewSystemClock,
	governance.NewManager,
	registry.NewManager,
	reputation.NewManager,
	wire.Bind(new(common.Governance), new(*governance.Manager)),
	wire.Bind(new(common.AgentRegistry), new(*registry.Manager)),
	wire.Bind(new(common.ReputationLedger), new(*reputation.Manager)),
)
