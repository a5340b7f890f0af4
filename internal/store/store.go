// Package store is an in-process stand-in for the execution host's keyed
// record storage. It reproduces the host's guarantees the transition
// logic depends on: create-if-absent semantics, single-writer-at-a-time
// per record set, and all-or-nothing visibility of one operation's writes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotFound indicates no record exists at the key
	ErrNotFound = errors.New("record not found")

	// ErrKeyExists indicates a create collided with an existing record
	ErrKeyExists = errors.New("record already exists")
)

// Store holds serialized records keyed by derived addresses. A single
// mutex serializes transactions, matching the host model where conflicting
// invocations are rejected rather than interleaved.
type Store struct {
	mu      sync.RWMutex
	records map[Key][]byte
}

// NewStore creates an empty record store
func NewStore() *Store {
	return &Store{
		records: make(map[Key][]byte),
	}
}

// Txn stages one operation's reads and writes. Nothing reaches the base
// map until Commit, so an aborted operation leaves no partial state.
type Txn struct {
	store   *Store
	staged  map[Key][]byte
	deleted map[Key]bool
}

// Update runs fn inside a writable transaction. If fn returns an error
// the staged writes are discarded; otherwise they are committed atomically.
func (s *Store) Update(fn func(tx *Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Txn{
		store:   s,
		staged:  make(map[Key][]byte),
		deleted: make(map[Key]bool),
	}

	if err := fn(tx); err != nil {
		return err
	}

	for key := range tx.deleted {
		delete(s.records, key)
	}
	for key, raw := range tx.staged {
		s.records[key] = raw
	}
	return nil
}

// View runs fn inside a read-only transaction.
func (s *Store) View(fn func(tx *Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := &Txn{store: s}
	return fn(tx)
}

// Len returns the number of committed records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get decodes the record at key into out, honoring staged writes.
func (tx *Txn) Get(key Key, out interface{}) error {
	raw, ok := tx.lookup(key)
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", key, err)
	}
	return nil
}

// Has reports whether a record exists at key, honoring staged writes.
func (tx *Txn) Has(key Key) bool {
	_, ok := tx.lookup(key)
	return ok
}

// Create stages a new record, failing with ErrKeyExists if one is
// already present. This is the host's create-if-absent primitive.
func (tx *Txn) Create(key Key, v interface{}) error {
	if tx.staged == nil {
		return errors.New("create on read-only transaction")
	}
	if tx.Has(key) {
		return ErrKeyExists
	}
	return tx.stage(key, v)
}

// Put stages a write over an existing or new record.
func (tx *Txn) Put(key Key, v interface{}) error {
	if tx.staged == nil {
		return errors.New("put on read-only transaction")
	}
	return tx.stage(key, v)
}

// Delete stages removal of the record at key. Deleting a missing record
// fails so close operations cannot silently no-op.
func (tx *Txn) Delete(key Key) error {
	if tx.staged == nil {
		return errors.New("delete on read-only transaction")
	}
	if !tx.Has(key) {
		return ErrNotFound
	}
	delete(tx.staged, key)
	tx.deleted[key] = true
	return nil
}

// Keys returns the sorted keys under prefix, honoring staged writes.
func (tx *Txn) Keys(prefix Key) []Key {
	seen := make(map[Key]bool)
	var keys []Key

	for key := range tx.store.records {
		if strings.HasPrefix(string(key), string(prefix)) && !tx.deleted[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for key := range tx.staged {
		if strings.HasPrefix(string(key), string(prefix)) && !seen[key] {
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (tx *Txn) lookup(key Key) ([]byte, bool) {
	if tx.staged != nil {
		if raw, ok := tx.staged[key]; ok {
			return raw, true
		}
		if tx.deleted[key] {
			return nil, false
		}
	}
	raw, ok := tx.store.records[key]
	return raw, ok
}

func (tx *Txn) stage(key Key, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}
	tx.staged[key] = raw
	delete(tx.deleted, key)
	return nil
}
