// Package convstore keeps in-flight conversation transcripts in memory
// with a bounded lifetime. A production deployment can swap it for a
// networked key-value store behind the same Get/Put/AppendMessages
// contract.
package convstore

import (
	"sync"
	"time"

	"github.com/yoyofushi/feedbot/src/aisdk"
)

const (
	// DefaultTTL is how long an idle conversation survives.
	DefaultTTL = time.Hour
	// DefaultMaxEntries is the occupancy threshold that triggers the
	// expiry sweep on insert.
	DefaultMaxEntries = 1000
)

// Conversation is one cached transcript. The store owns its entries;
// callers receive detached copies and write changes back explicitly.
type Conversation struct {
	ID         string
	BabyID     int64
	Messages   []aisdk.Message
	CreatedAt  time.Time
	LastActive time.Time
}

func (c *Conversation) copy() *Conversation {
	dup := *c
	dup.Messages = make([]aisdk.Message, len(c.Messages))
	copy(dup.Messages, c.Messages)
	return &dup
}

// Config holds the store construction parameters.
type Config struct {
	// TTL is the idle lifetime of an entry. Zero means DefaultTTL.
	TTL time.Duration
	// MaxEntries is the sweep threshold. Zero means DefaultMaxEntries.
	MaxEntries int
}

// Store is a TTL-bounded conversation cache. A single mutex guards the
// map and is never held across network calls.
//
// Two concurrent turns on the same conversation id race on the write
// back and the last one wins. One turn at a time per conversation is
// the supported shape.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*Conversation
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a store, filling zero config fields with defaults.
func New(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]*Conversation),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
	}
}

// Get returns a detached copy of the conversation, or nil when the id is
// absent. Expired entries are deleted on read.
func (s *Store) Get(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.entries[id]
	if !ok {
		return nil
	}
	if s.expired(conv) {
		delete(s.entries, id)
		return nil
	}
	return conv.copy()
}

// Put stores a detached copy of conv under id and stamps LastActive.
// When occupancy has reached MaxEntries every expired entry is removed
// first; the store may still exceed MaxEntries when none are expired.
func (s *Store) Put(id string, conv *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxEntries {
		s.sweepExpired()
	}

	dup := conv.copy()
	dup.ID = id
	dup.LastActive = s.now()
	s.entries[id] = dup
}

// AppendMessages appends turns to an existing conversation and stamps
// LastActive. An absent or expired id is a no-op; entries are created
// with Put only.
func (s *Store) AppendMessages(id string, msgs ...aisdk.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.entries[id]
	if !ok || s.expired(conv) {
		return
	}
	conv.Messages = append(conv.Messages, msgs...)
	conv.LastActive = s.now()
}

// Len reports current occupancy, counting entries not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) expired(conv *Conversation) bool {
	return s.now().Sub(conv.LastActive) > s.ttl
}

func (s *Store) sweepExpired() {
	for id, conv := range s.entries {
		if s.expired(conv) {
			delete(s.entries, id)
		}
	}
}
