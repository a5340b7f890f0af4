// Package governance owns the protocol ledger: the one-time initialize
// operation and the authority-gated fee and handoff updates.
package governance

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/store"
)

// Manager implements the common.Governance interface on top of the
// record store.
type Manager struct {
	store  *store.Store
	logger *log.Helper
}

// NewManager creates a new governance manager
func NewManager(s *store.Store, logger log.Logger) *Manager {
	return &Manager{
		store:  s,
		logger: log.NewHelper(logger),
	}
}

// Initialize creates the singleton protocol ledger. The caller becomes
// the authority and the initial fee vault. Fails if the ledger already
// exists or the fee is out of range.
func (m *Manager) Initialize(ctx context.Context, caller common.Identity, feeBps uint16) (*common.ProtocolLedger, error) {
	if feeBps > common.MaxFeeBps {
		return nil, common.ErrInvalidFee
	}

	ledger := &common.ProtocolLedger{
		SchemaVersion:  common.SchemaVersion,
		Authority:      caller,
		PlatformFeeBps: feeBps,
		FeeVault:       caller,
	}

	err := m.store.Update(func(tx *store.Txn) error {
		if err := tx.Create(store.ProtocolKey(), ledger); err != nil {
			if errors.Is(err, store.ErrKeyExists) {
				return common.ErrAlreadyInitialized
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithContext(ctx).Infof("Protocol ledger initialized, authority=%s fee_bps=%d", caller, feeBps)
	return ledger, nil
}

// UpdateAuthority replaces the authority in a single step. There is no
// acceptance handshake from the new authority; a typo hands the protocol
// over irrevocably. Callers are expected to verify the target out of band.
func (m *Manager) UpdateAuthority(ctx context.Context, caller, newAuthority common.Identity) error {
	err := m.store.Update(func(tx *store.Txn) error {
		ledger, err := loadLedger(tx)
		if err != nil {
			return err
		}
		if ledger.Authority != caller {
			return common.ErrUnauthorized
		}
		ledger.Authority = newAuthority
		return tx.Put(store.ProtocolKey(), ledger)
	})
	if err != nil {
		return err
	}

	m.logger.WithContext(ctx).Infof("Protocol authority transferred to %s", newAuthority)
	return nil
}

// UpdateFee sets the platform fee. Authority only; fee capped at 10000 bps.
func (m *Manager) UpdateFee(ctx context.Context, caller common.Identity, feeBps uint16) error {
	if feeBps > common.MaxFeeBps {
		return common.ErrInvalidFee
	}

	err := m.store.Update(func(tx *store.Txn) error {
		ledger, err := loadLedger(tx)
		if err != nil {
			return err
		}
		if ledger.Authority != caller {
			return common.ErrUnauthorized
		}
		ledger.PlatformFeeBps = feeBps
		return tx.Put(store.ProtocolKey(), ledger)
	})
	if err != nil {
		return err
	}

	m.logger.WithContext(ctx).Infof("Platform fee updated to %d bps", feeBps)
	return nil
}

// GetProtocol returns a copy of the protocol ledger.
func (m *Manager) GetProtocol(ctx context.Context) (*common.ProtocolLedger, error) {
	var ledger *common.ProtocolLedger
	err := m.store.View(func(tx *store.Txn) error {
		var err error
		ledger, err = loadLedger(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
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
