package store

import (
	"errors"
	"testing"
)

type testRecord struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func TestStore_UpdateCommitsOnSuccess(t *testing.T) {
	s := NewStore()

	err := s.Update(func(tx *Txn) error {
		return tx.Put(Key("a"), &testRecord{Value: "one", Count: 1})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got testRecord
	if err := s.View(func(tx *Txn) error {
		return tx.Get(Key("a"), &got)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != "one" || got.Count != 1 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestStore_UpdateDiscardsOnError(t *testing.T) {
	s := NewStore()
	if err := s.Update(func(tx *Txn) error {
		return tx.Put(Key("a"), &testRecord{Value: "committed"})
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boom := errors.New("boom")
	err := s.Update(func(tx *Txn) error {
		if err := tx.Put(Key("a"), &testRecord{Value: "staged"}); err != nil {
			return err
		}
		if err := tx.Put(Key("b"), &testRecord{Value: "staged"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var got testRecord
	if err := s.View(func(tx *Txn) error {
		return tx.Get(Key("a"), &got)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != "committed" {
		t.Errorf("aborted write leaked: %+v", got)
	}

	if err := s.View(func(tx *Txn) error {
		return tx.Get(Key("b"), &got)
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for b, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 record, got %d", s.Len())
	}
}

func TestTxn_CreateFailsOnExisting(t *testing.T) {
	s := NewStore()
	if err := s.Update(func(tx *Txn) error {
		return tx.Create(Key("a"), &testRecord{})
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Update(func(tx *Txn) error {
		return tx.Create(Key("a"), &testRecord{})
	})
	if !errors.Is(err, ErrKeyExists) {
		t.Errorf("expected ErrKeyExists, got %v", err)
	}

	// Collision with a write staged in the same transaction
	err = s.Update(func(tx *Txn) error {
		if err := tx.Create(Key("b"), &testRecord{}); err != nil {
			return err
		}
		return tx.Create(Key("b"), &testRecord{})
	})
	if !errors.Is(err, ErrKeyExists) {
		t.Errorf("expected ErrKeyExists for staged collision, got %v", err)
	}
}

func TestTxn_DeleteMissingFails(t *testing.T) {
	s := NewStore()
	err := s.Update(func(tx *Txn) error {
		return tx.Delete(Key("missing"))
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTxn_DeleteHidesRecordWithinTxn(t *testing.T) {
	s := NewStore()
	if err := s.Update(func(tx *Txn) error {
		return tx.Put(Key("a"), &testRecord{})
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Update(func(tx *Txn) error {
		if err := tx.Delete(Key("a")); err != nil {
			return err
		}
		if tx.Has(Key("a")) {
			t.Error("deleted record still visible in transaction")
		}
		// Create over a staged delete must succeed
		return tx.Create(Key("a"), &testRecord{Value: "recreated"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got testRecord
	if err := s.View(func(tx *Txn) error {
		return tx.Get(Key("a"), &got)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != "recreated" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestTxn_KeysSortedByPrefix(t *testing.T) {
	s := NewStore()
	if err := s.Update(func(tx *Txn) error {
		for _, k := range []Key{"feedback/1/b/10", "feedback/1/a/10", "feedback/2/a/10", "agent/1"} {
			if err := tx.Put(k, &testRecord{}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var keys []Key
	s.View(func(tx *Txn) error {
		keys = tx.Keys(Key("feedback/1/"))
		return nil
	})

	want := []Key{"feedback/1/a/10", "feedback/1/b/10"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

func TestTxn_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	if err := s.Update(func(tx *Txn) error {
		return tx.Put(Key("a"), &testRecord{Value: "original"})
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var first testRecord
	s.View(func(tx *Txn) error {
		return tx.Get(Key("a"), &first)
	})
	first.Value = "mutated"

	var second testRecord
	s.View(func(tx *Txn) error {
		return tx.Get(Key("a"), &second)
	})
	if second.Value != "original" {
		t.Errorf("stored record was mutated through a read copy")
	}
}
