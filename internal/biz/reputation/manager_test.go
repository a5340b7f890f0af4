package reputation

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"agent_bazaar/internal/biz/common"
	"agent_bazaar/internal/biz/governance"
	"agent_bazaar/internal/biz/registry"
	"agent_bazaar/internal/store"
)

const (
	authority = common.Identity("a1")
	owner     = common.Identity("b2")
	rater     = common.Identity("c3")
	other     = common.Identity("d4")

	baseTime = int64(1_700_000_000)
)

type captureNotifier struct {
	mu        sync.Mutex
	submitted []*common.FeedbackSubmittedEvent
}

func (n *captureNotifier) AgentRegistered(ctx context.Context, event *common.AgentRegisteredEvent) {}

func (n *captureNotifier) FeedbackSubmitted(ctx context.Context, event *common.FeedbackSubmittedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, event)
}

type fixture struct {
	store      *store.Store
	clock      *common.ManualClock
	notifier   *captureNotifier
	governance *governance.Manager
	registry   *registry.Manager
	reputation *Manager
	agentID    uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewStore()
	clock := common.NewManualClock(baseTime)
	notifier := &captureNotifier{}
	logger := log.NewStdLogger(io.Discard)

	gov := governance.NewManager(s, logger)
	if _, err := gov.Initialize(context.Background(), authority, 250); err != nil {
		t.Fatalf("failed to initialize protocol: %v", err)
	}

	reg := registry.NewManager(s, clock, notifier, logger)
	agent, err := reg.Register(context.Background(), owner, &common.RegisterAgentRequest{
		Name:        "translator",
		Description: "Translates documents",
		URI:         "https://example.com/agent.json",
	})
	if err != nil {
		t.Fatalf("failed to register agent: %v", err)
	}

	return &fixture{
		store:      s,
		clock:      clock,
		notifier:   notifier,
		governance: gov,
		registry:   reg,
		reputation: NewManager(s, clock, notifier, logger),
		agentID:    agent.AgentID,
	}
}

func (f *fixture) request(rating uint8, amount uint64, ts int64) *common.SubmitFeedbackRequest {
	return &common.SubmitFeedbackRequest{
		AgentID:    f.agentID,
		Rating:     rating,
		AmountPaid: amount,
		Timestamp:  ts,
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fb, err := f.reputation.Submit(ctx, rater, f.request(5, 1000, baseTime))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Rating != 5 || fb.AmountPaid != 1000 || fb.CreatedAt != baseTime || fb.Rater != rater {
		t.Errorf("unexpected feedback record: %+v", fb)
	}

	rep, err := f.reputation.GetReputation(ctx, f.agentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.TotalRatings != 1 || rep.RatingSum != 5 || rep.TotalVolume != 1000 || rep.UniqueRaters != 1 {
		t.Errorf("unexpected aggregate: %+v", rep)
	}
	if rep.RatingDistribution != [5]uint64{0, 0, 0, 0, 1} {
		t.Errorf("unexpected distribution: %v", rep.RatingDistribution)
	}
	if rep.LastRatedAt != baseTime {
		t.Errorf("last_rated_at not set: %d", rep.LastRatedAt)
	}

	state, err := f.reputation.GetRaterState(ctx, f.agentID, rater)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.LastFeedbackAt != baseTime || state.FeedbackCount != 1 {
		t.Errorf("unexpected rater state: %+v", state)
	}

	ledger, _ := f.governance.GetProtocol(ctx)
	if ledger.TotalTransactions != 1 || ledger.TotalVolume != 1000 {
		t.Errorf("ledger totals not updated: %+v", ledger)
	}

	if len(f.notifier.submitted) != 1 || f.notifier.submitted[0].Rating != 5 {
		t.Errorf("expected one submission event, got %+v", f.notifier.submitted)
	}
}

func TestSubmit_AggregatesAcrossRaters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.reputation.Submit(ctx, rater, f.request(5, 1000, baseTime)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.reputation.Submit(ctx, other, f.request(3, 500, baseTime)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same rater again after the cooldown stays one unique rater
	f.clock.Advance(common.FeedbackCooldownSecs)
	if _, err := f.reputation.Submit(ctx, rater, f.request(4, 200, f.clock.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep, _ := f.reputation.GetReputation(ctx, f.agentID)
	if rep.TotalRatings != 3 || rep.RatingSum != 12 || rep.TotalVolume != 1700 {
		t.Errorf("unexpected aggregate: %+v", rep)
	}
	if rep.UniqueRaters != 2 {
		t.Errorf("expected 2 unique raters, got %d", rep.UniqueRaters)
	}
	if rep.RatingDistribution != [5]uint64{0, 0, 1, 1, 1} {
		t.Errorf("unexpected distribution: %v", rep.RatingDistribution)
	}

	ledger, _ := f.governance.GetProtocol(ctx)
	if ledger.TotalTransactions != 3 || ledger.TotalVolume != 1700 {
		t.Errorf("ledger totals wrong: %+v", ledger)
	}
}

func TestSubmit_CooldownBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One second short of the window is rejected
	f.clock.Set(baseTime + common.FeedbackCooldownSecs - 1)
	_, err := f.reputation.Submit(ctx, rater, f.request(4, 100, f.clock.Now()))
	if !common.HasCode(err, common.ErrorCodeFeedbackTooFrequent) {
		t.Errorf("expected FEEDBACK_TOO_FREQUENT at 3599s, got %v", err)
	}

	// Exactly at the window it is accepted
	f.clock.Set(baseTime + common.FeedbackCooldownSecs)
	if _, err := f.reputation.Submit(ctx, rater, f.request(4, 100, f.clock.Now())); err != nil {
		t.Errorf("expected acceptance at 3600s, got %v", err)
	}
}

func TestSubmit_CooldownIsHostClockRelative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Backdating the next submission does not shorten the cooldown
	f.clock.Advance(10)
	_, err := f.reputation.Submit(ctx, rater, f.request(4, 100, baseTime-5000))
	if !common.HasCode(err, common.ErrorCodeFeedbackTooFrequent) {
		t.Errorf("expected FEEDBACK_TOO_FREQUENT, got %v", err)
	}
}

func TestSubmit_SelfRating(t *testing.T) {
	f := newFixture(t)
	_, err := f.reputation.Submit(context.Background(), owner, f.request(5, 100, baseTime))
	if !common.HasCode(err, common.ErrorCodeSelfRating) {
		t.Errorf("expected SELF_RATING, got %v", err)
	}
}

func TestSubmit_TimestampBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		ts       int64
		wantCode string
	}{
		{name: "future", ts: baseTime + 1, wantCode: common.ErrorCodeFutureTimestamp},
		{name: "exactly now", ts: baseTime},
		{name: "too old", ts: baseTime - common.MaxTimestampAgeSecs - 1, wantCode: common.ErrorCodeTimestampTooOld},
		{name: "zero", ts: 0, wantCode: common.ErrorCodeInvalidTimestamp},
		{name: "negative", ts: -1, wantCode: common.ErrorCodeInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Fresh rater per case to stay clear of the cooldown
			caller := common.Identity("rater-" + tt.name)
			_, err := f.reputation.Submit(ctx, caller, f.request(3, 100, tt.ts))
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !common.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}

	// Oldest acceptable timestamp
	_, err := f.reputation.Submit(ctx, common.Identity("rater-oldest"),
		f.request(3, 100, baseTime-common.MaxTimestampAgeSecs))
	if err != nil {
		t.Errorf("24h-old timestamp should be accepted, got %v", err)
	}
}

func TestSubmit_ArgumentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.reputation.Submit(ctx, rater, f.request(0, 100, baseTime)); !common.HasCode(err, common.ErrorCodeInvalidRating) {
		t.Errorf("expected INVALID_RATING, got %v", err)
	}
	if _, err := f.reputation.Submit(ctx, rater, f.request(6, 100, baseTime)); !common.HasCode(err, common.ErrorCodeInvalidRating) {
		t.Errorf("expected INVALID_RATING, got %v", err)
	}
	if _, err := f.reputation.Submit(ctx, rater, f.request(3, 0, baseTime)); !common.HasCode(err, common.ErrorCodeInvalidAmount) {
		t.Errorf("expected INVALID_AMOUNT, got %v", err)
	}
}

func TestSubmit_InactiveOrMissingAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request(5, 100, baseTime)
	req.AgentID = 99
	if _, err := f.reputation.Submit(ctx, rater, req); !common.HasCode(err, common.ErrorCodeInvalidAgent) {
		t.Errorf("expected INVALID_AGENT for missing agent, got %v", err)
	}

	f.registry.Deactivate(ctx, owner, f.agentID)
	if _, err := f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime)); !common.HasCode(err, common.ErrorCodeInvalidAgent) {
		t.Errorf("expected INVALID_AGENT for inactive agent, got %v", err)
	}
}

func TestSubmit_DuplicateKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same (agent, rater, timestamp) key after the cooldown
	f.clock.Advance(common.FeedbackCooldownSecs)
	_, err := f.reputation.Submit(ctx, rater, f.request(4, 100, baseTime))
	if !common.HasCode(err, common.ErrorCodeFeedbackExists) {
		t.Errorf("expected FEEDBACK_EXISTS, got %v", err)
	}
}

func TestSubmit_OverflowLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Saturate the aggregate counter
	err := f.store.Update(func(tx *store.Txn) error {
		var rep common.AgentReputation
		if err := tx.Get(store.ReputationKey(f.agentID), &rep); err != nil {
			return err
		}
		rep.TotalRatings = math.MaxUint64
		return tx.Put(store.ReputationKey(f.agentID), &rep)
	})
	if err != nil {
		t.Fatalf("failed to seed aggregate: %v", err)
	}

	_, err = f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime))
	if !common.HasCode(err, common.ErrorCodeArithmeticOverflow) {
		t.Fatalf("expected ARITHMETIC_OVERFLOW, got %v", err)
	}

	// Earlier steps of the failed submission must not have leaked
	if _, err := f.reputation.GetRaterState(ctx, f.agentID, rater); err == nil {
		t.Error("rater state created by failed submission")
	}
	feedbacks, _ := f.reputation.ListFeedback(ctx, f.agentID)
	if len(feedbacks) != 0 {
		t.Errorf("feedback record created by failed submission: %+v", feedbacks)
	}
	ledger, _ := f.governance.GetProtocol(ctx)
	if ledger.TotalTransactions != 0 || ledger.TotalVolume != 0 {
		t.Errorf("ledger totals moved on failed submission: %+v", ledger)
	}
	if len(f.notifier.submitted) != 0 {
		t.Error("event emitted for failed submission")
	}
}

func TestSubmit_FailedAttemptDoesNotStartCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Rejected by rating validation before any state is touched
	if _, err := f.reputation.Submit(ctx, rater, f.request(0, 100, baseTime)); err == nil {
		t.Fatal("expected validation error")
	}

	if _, err := f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime)); err != nil {
		t.Errorf("cooldown started by failed attempt: %v", err)
	}
}

func TestListFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.reputation.Submit(ctx, rater, f.request(5, 100, baseTime))
	f.reputation.Submit(ctx, other, f.request(3, 200, baseTime-10))

	feedbacks, err := f.reputation.ListFeedback(ctx, f.agentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feedbacks) != 2 {
		t.Fatalf("expected 2 feedbacks, got %d", len(feedbacks))
	}
}

func TestGetReputation_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.reputation.GetReputation(context.Background(), 99); !common.HasCode(err, common.ErrorCodeAgentNotFound) {
		t.Errorf("expected AGENT_NOT_FOUND, got %v", err)
	}
}
