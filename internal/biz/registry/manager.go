// Package registry owns the agent lifecycle: registration, profile
// updates, activation toggles, and close. Agent ids are allocated from
// the protocol ledger counter inside the same transaction that creates
// the records, so an id can never be observed without its records.
package registry

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/biz/validation"
	"agent_bazaar/internal/store"
)

// Manager implements the common.AgentRegistry interface.
type Manager struct {
	store    *store.Store
	clock    common.Clock
	notifier common.Notifier
	logger   *log.Helper
}

// NewManager creates a new registry manager
func NewManager(s *store.Store, clock common.Clock, notifier common.Notifier, logger log.Logger) *Manager {
	return &Manager{
		store:    s,
		clock:    clock,
		notifier: notifier,
		logger:   log.NewHelper(logger),
	}
}

// Register validates the profile, allocates the next agent id, and
// atomically creates the identity record and its zeroed reputation pair.
// The caller becomes both owner and agent wallet.
func (m *Manager) Register(ctx context.Context, caller common.Identity, req *common.RegisterAgentRequest) (*common.AgentIdentity, error) {
	if err := validation.ValidateProfile(req); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	var agent *common.AgentIdentity

	err := m.store.Update(func(tx *store.Txn) error {
		ledger, err := loadLedger(tx)
		if err != nil {
			return err
		}
		if ledger.AgentCount == common.MaxAgentCount {
			return common.ErrTooManyAgents
		}

		agentID := ledger.AgentCount
		ledger.AgentCount++
		if err := tx.Put(store.ProtocolKey(), ledger); err != nil {
			return err
		}

		agent = &common.AgentIdentity{
			SchemaVersion: common.SchemaVersion,
			AgentID:       agentID,
			Owner:         caller,
			AgentWallet:   caller,
			Name:          req.Name,
			Description:   req.Description,
			URI:           req.URI,
			Active:        true,
			RegisteredAt:  now,
			UpdatedAt:     now,
		}
		if err := tx.Create(store.AgentKey(agentID), agent); err != nil {
			return err
		}

		reputation := &common.AgentReputation{
			SchemaVersion: common.SchemaVersion,
			AgentID:       agentID,
		}
		return tx.Create(store.ReputationKey(agentID), reputation)
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithContext(ctx).Infof("Agent registered, id=%d owner=%s name=%q", agent.AgentID, caller, agent.Name)
	m.notifier.AgentRegistered(ctx, &common.AgentRegisteredEvent{
		AgentID: agent.AgentID,
		Owner:   agent.Owner,
		Name:    agent.Name,
	})

	return agent, nil
}

// Update applies a partial profile update. Owner only. Each present field
// is validated independently; absent fields are untouched.
func (m *Manager) Update(ctx context.Context, caller common.Identity, agentID uint64, req *common.UpdateAgentRequest) (*common.AgentIdentity, error) {
	if req.Name != nil {
		if err := validation.ValidateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := validation.ValidateDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.URI != nil {
		if err := validation.ValidateURI(*req.URI); err != nil {
			return nil, err
		}
	}

	var agent *common.AgentIdentity
	err := m.store.Update(func(tx *store.Txn) error {
		var err error
		agent, err = loadOwnedAgent(tx, caller, agentID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			agent.Name = *req.Name
		}
		if req.Description != nil {
			agent.Description = *req.Description
		}
		if req.URI != nil {
			agent.URI = *req.URI
		}
		agent.UpdatedAt = m.clock.Now()

		return tx.Put(store.AgentKey(agentID), agent)
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithContext(ctx).Infof("Agent updated, id=%d", agentID)
	return agent, nil
}

// Deactivate clears the active flag. Owner only. Deactivating an already
// inactive agent is a no-op apart from refreshing updated_at.
func (m *Manager) Deactivate(ctx context.Context, caller common.Identity, agentID uint64) error {
	err := m.store.Update(func(tx *store.Txn) error {
		agent, err := loadOwnedAgent(tx, caller, agentID)
		if err != nil {
			return err
		}
		agent.Active = false
		agent.UpdatedAt = m.clock.Now()
		return tx.Put(store.AgentKey(agentID), agent)
	})
	if err != nil {
		return err
	}

	m.logger.WithContext(ctx).Infof("Agent deactivated, id=%d", agentID)
	return nil
}

// Reactivate sets the active flag. Owner only. Fails if the agent is
// already active; redundant reactivation is rejected, not absorbed.
func (m *Manager) Reactivate(ctx context.Context, caller common.Identity, agentID uint64) error {
	err := m.store.Update(func(tx *store.Txn) error {
		agent, err := loadOwnedAgent(tx, caller, agentID)
		if err != nil {
			return err
		}
		if agent.Active {
			return common.ErrAgentAlreadyActive
		}
		agent.Active = true
		agent.UpdatedAt = m.clock.Now()
		return tx.Put(store.AgentKey(agentID), agent)
	})
	if err != nil {
		return err
	}

	m.logger.WithContext(ctx).Infof("Agent reactivated, id=%d", agentID)
	return nil
}

// Close destroys the agent identity and its reputation record. Owner
// only; the agent must be inactive and must not have been rated within
// the last 7 days, so an owner cannot close out from under a pending
// dispute. The freed id is never reallocated.
func (m *Manager) Close(ctx context.Context, caller common.Identity, agentID uint64) error {
	err := m.store.Update(func(tx *store.Txn) error {
		agent, err := loadOwnedAgent(tx, caller, agentID)
		if err != nil {
			return err
		}
		if agent.Active {
			return common.ErrAgentStillActive
		}

		var reputation common.AgentReputation
		if err := tx.Get(store.ReputationKey(agentID), &reputation); err != nil {
			return err
		}
		now := m.clock.Now()
		if reputation.LastRatedAt != 0 && reputation.LastRatedAt >= now-common.CloseCooloffSecs {
			return common.ErrRecentActivity
		}

		if err := tx.Delete(store.AgentKey(agentID)); err != nil {
			return err
		}
		return tx.Delete(store.ReputationKey(agentID))
	})
	if err != nil {
		return err
	}

	m.logger.WithContext(ctx).Infof("Agent closed, id=%d", agentID)
	return nil
}

// Get returns a copy of one agent identity record.
func (m *Manager) Get(ctx context.Context, agentID uint64) (*common.AgentIdentity, error) {
	var agent common.AgentIdentity
	err := m.store.View(func(tx *store.Txn) error {
		return tx.Get(store.AgentKey(agentID), &agent)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

// List returns all live agent records in id order. Closed ids are
// skipped; their slots stay empty forever.
func (m *Manager) List(ctx context.Context) ([]*common.AgentIdentity, error) {
	var agents []*common.AgentIdentity
	err := m.store.View(func(tx *store.Txn) error {
		ledger, err := loadLedger(tx)
		if err != nil {
			if common.HasCode(err, common.ErrorCodeNotInitialized) {
				return nil
			}
			return err
		}
		for id := uint64(0); id < ledger.AgentCount; id++ {
			var agent common.AgentIdentity
			if err := tx.Get(store.AgentKey(id), &agent); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
			agents = append(agents, &agent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// loadOwnedAgent resolves an agent and enforces the stored-owner
// relationship against the verified caller.
func loadOwnedAgent(tx *store.Txn, caller common.Identity, agentID uint64) (*common.AgentIdentity, error) {
	var agent common.AgentIdentity
	if err := tx.Get(store.AgentKey(agentID), &agent); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.ErrAgentNotFound
		}
		return nil, err
	}
	if agent.Owner != caller {
		return nil, common.ErrUnauthorized
	}
	return &agent, nil
}

// loadLedger reads the protocol singleton inside a transaction.
func loadLedger(tx *store.Txn) (*common.ProtocolLedger, error) {
	var ledger common.ProtocolLedger
	if err := tx.Get(store.ProtocolKey(), &ledger); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.ErrNotInitialized
		}
		return nil, err
	}
	return &ledger, nil
}
