// Package reputation owns the paid-feedback pipeline: validation,
// anti-abuse gating, the immutable feedback ledger, and the running
// aggregates. Every accepted submission touches four records (rater
// state, feedback, agent reputation, protocol ledger) inside one staged
// transaction, so a failure at any step leaves all of them untouched.
package reputation

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/biz/validation"
	"agent_bazaar/internal/store"
)

// Manager implements the common.ReputationLedger interface.
type Manager struct {
	store    *store.Store
	clock    common.Clock
	notifier common.Notifier
	logger   *log.Helper
}

// NewManager creates a new reputation manager
func NewManager(s *store.Store, clock common.Clock, notifier common.Notifier, logger log.Logger) *Manager {
	return &Manager{
		store:    s,
		clock:    clock,
		notifier: notifier,
		logger:   log.NewHelper(logger),
	}
}

// Submit runs the feedback state machine:
//
//  1. argument validation (rating, amount, timestamp shape)
//  2. agent resolution; inactive or missing agents are rejected
//  3. self-rating rejection against the stored owner
//  4. timestamp bounds against the host clock (no future, max 24h old)
//  5. cooldown check on the (agent, rater) tracker, host-clock relative
//  6. tracker update
//  7. immutable feedback record creation, keyed by the submitted timestamp
//  8. reputation aggregate update, all increments overflow-checked
//  9. protocol ledger totals update
//
// The FeedbackSubmitted event is emitted only after the commit.
func (m *Manager) Submit(ctx context.Context, rater common.Identity, req *common.SubmitFeedbackRequest) (*common.Feedback, error) {
	if err := validation.ValidateRating(req.Rating); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount(req.AmountPaid); err != nil {
		return nil, err
	}
	if err := validation.ValidateTimestamp(req.Timestamp); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	var feedback *common.Feedback

	err := m.store.Update(func(tx *store.Txn) error {
		agent, err := resolveRateableAgent(tx, req.AgentID)
		if err != nil {
			return err
		}
		if rater == agent.Owner {
			return common.ErrSelfRating
		}

		if req.Timestamp > now {
			return common.ErrFutureTimestamp
		}
		if req.Timestamp < now-common.MaxTimestampAgeSecs {
			return common.ErrTimestampTooOld
		}

		raterState, err := loadOrInitRaterState(tx, req.AgentID, rater)
		if err != nil {
			return err
		}
		if raterState.LastFeedbackAt > 0 && now-raterState.LastFeedbackAt < common.FeedbackCooldownSecs {
			return common.ErrFeedbackTooFrequent
		}

		raterState.LastFeedbackAt = now
		raterState.FeedbackCount, err = common.CheckedInc(raterState.FeedbackCount)
		if err != nil {
			return err
		}
		if err := tx.Put(store.RaterKey(req.AgentID, rater), raterState); err != nil {
			return err
		}

		feedback = &common.Feedback{
			SchemaVersion: common.SchemaVersion,
			AgentID:       req.AgentID,
			Rater:         rater,
			Rating:        req.Rating,
			CommentHash:   req.CommentHash,
			AmountPaid:    req.AmountPaid,
			CreatedAt:     req.Timestamp,
		}
		if err := tx.Create(store.FeedbackKey(req.AgentID, rater, req.Timestamp), feedback); err != nil {
			if errors.Is(err, store.ErrKeyExists) {
				return common.ErrFeedbackExists
			}
			return err
		}

		if err := applyFeedback(tx, req, raterState.FeedbackCount == 1); err != nil {
			return err
		}

		return applyLedgerTotals(tx, req.AmountPaid)
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithContext(ctx).Infof("Feedback accepted, agent=%d rater=%s rating=%d amount=%d",
		req.AgentID, rater, req.Rating, req.AmountPaid)
	m.notifier.FeedbackSubmitted(ctx, &common.FeedbackSubmittedEvent{
		AgentID:    req.AgentID,
		Rater:      rater,
		Rating:     req.Rating,
		AmountPaid: req.AmountPaid,
	})

	return feedback, nil
}

// GetReputation returns a copy of one agent's reputation aggregate.
func (m *Manager) GetReputation(ctx context.Context, agentID uint64) (*common.AgentReputation, error) {
	var reputation common.AgentReputation
	err := m.store.View(func(tx *store.Txn) error {
		return tx.Get(store.ReputationKey(agentID), &reputation)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.ErrAgentNotFound
		}
		return nil, err
	}
	return &reputation, nil
}

// GetRaterState returns the cooldown tracker for one (agent, rater) pair.
func (m *Manager) GetRaterState(ctx context.Context, agentID uint64, rater common.Identity) (*common.RaterState, error) {
	var state common.RaterState
	err := m.store.View(func(tx *store.Txn) error {
		return tx.Get(store.RaterKey(agentID, rater), &state)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.ErrAgentNotFound
		}
		return nil, err
	}
	return &state, nil
}

// ListFeedback returns all accepted feedback for one agent in key order.
func (m *Manager) ListFeedback(ctx context.Context, agentID uint64) ([]*common.Feedback, error) {
	var feedbacks []*common.Feedback
	err := m.store.View(func(tx *store.Txn) error {
		for _, key := range tx.Keys(store.FeedbackPrefix(agentID)) {
			var fb common.Feedback
			if err := tx.Get(key, &fb); err != nil {
				return err
			}
			feedbacks = append(feedbacks, &fb)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// resolveRateableAgent loads the agent and checks it can accept feedback.
// A stored id that disagrees with the key is treated the same as a
// missing record.
func resolveRateableAgent(tx *store.Txn, agentID uint64) (*common.AgentIdentity, error) {
	var agent common.AgentIdentity
	if err := tx.Get(store.AgentKey(agentID), &agent); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.ErrInvalidAgent
		}
		return nil, err
	}
	if agent.AgentID != agentID || !agent.Active {
		return nil, common.ErrInvalidAgent
	}
	return &agent, nil
}

// loadOrInitRaterState resolves the tracker for (agent, rater), creating
// a zeroed one on the rater's first submission for that agent.
func loadOrInitRaterState(tx *store.Txn, agentID uint64, rater common.Identity) (*common.RaterState, error) {
	var state common.RaterState
	err := tx.Get(store.RaterKey(agentID, rater), &state)
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return &common.RaterState{
		SchemaVersion: common.SchemaVersion,
		AgentID:       agentID,
		Rater:         rater,
	}, nil
}

// applyFeedback folds one accepted submission into the agent's
// aggregate. firstFromRater marks the rater's first-ever feedback for
// this agent, which is the only point unique_raters may move.
func applyFeedback(tx *store.Txn, req *common.SubmitFeedbackRequest, firstFromRater bool) error {
	var reputation common.AgentReputation
	if err := tx.Get(store.ReputationKey(req.AgentID), &reputation); err != nil {
		return err
	}

	var err error
	if reputation.TotalRatings, err = common.CheckedInc(reputation.TotalRatings); err != nil {
		return err
	}
	if reputation.RatingSum, err = common.CheckedAdd(reputation.RatingSum, uint64(req.Rating)); err != nil {
		return err
	}
	if reputation.TotalVolume, err = common.CheckedAdd(reputation.TotalVolume, req.AmountPaid); err != nil {
		return err
	}
	bucket := int(req.Rating - 1)
	if reputation.RatingDistribution[bucket], err = common.CheckedInc(reputation.RatingDistribution[bucket]); err != nil {
		return err
	}
	if firstFromRater {
		if reputation.UniqueRaters, err = common.CheckedInc(reputation.UniqueRaters); err != nil {
			return err
		}
	}
	reputation.LastRatedAt = req.Timestamp

	return tx.Put(store.ReputationKey(req.AgentID), &reputation)
}

// applyLedgerTotals folds one accepted submission into the protocol
// ledger's running totals.
func applyLedgerTotals(tx *store.Txn, amountPaid uint64) error {
	var ledger common.ProtocolLedger
	if err := tx.Get(store.ProtocolKey(), &ledger); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.ErrNotInitialized
		}
		return err
	}

	var err error
	if ledger.TotalTransactions, err = common.CheckedInc(ledger.TotalTransactions); err != nil {
		return err
	}
	if ledger.TotalVolume, err = common.CheckedAdd(ledger.TotalVolume, amountPaid); err != nil {
		return err
	}

	return tx.Put(store.ProtocolKey(), &ledger)
}
