package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kumarlokesh/sysd/exercises/cow-trie/internal/trie"
)

// Store is a concurrency-safe container for the current version of a trie.
//
// Writers are serialized by writeMu and publish a new root under rootMu.
// Readers only hold rootMu long enough to copy the current handle and then
// traverse their snapshot without any lock, so they never wait on each other
// and never observe a partially built version.
type Store[T any] struct {
	writeMu sync.Mutex

	rootMu  sync.Mutex
	root    trie.Trie[T]
	version uint64

	logger  zerolog.Logger
	metrics *Metrics
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger  zerolog.Logger
	metrics *Metrics
}

// WithLogger sets the logger used to report published versions.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics attaches prometheus collectors to the store.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates an empty store.
func New[T any](opts ...Option) *Store[T] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		logger:  o.logger.With().Str("component", "store").Logger(),
		metrics: o.metrics,
	}
}

// Snapshot returns the currently published trie. The returned value stays
// valid and unchanged regardless of later writes.
func (s *Store[T]) Snapshot() trie.Trie[T] {
	s.rootMu.Lock()
	defer s.rootMu.Unlock()
	return s.root
}

// Version returns the number of versions published so far.
func (s *Store[T]) Version() uint64 {
	s.rootMu.Lock()
	defer s.rootMu.Unlock()
	return s.version
}

// Len returns the number of keys in the current version.
func (s *Store[T]) Len() int {
	return s.Snapshot().Len()
}

// Get looks key up in the current version. On a hit the returned Guard keeps
// that version alive, so its value is unaffected by concurrent writers.
func (s *Store[T]) Get(key string) (Guard[T], bool) {
	snapshot := s.Snapshot()

	value, ok := snapshot.Get(key)
	s.metrics.observeGet(ok)
	if !ok {
		return Guard[T]{}, false
	}
	return Guard[T]{snapshot: snapshot, value: value}, true
}

// Put stores value under key and publishes the resulting version.
func (s *Store[T]) Put(key string, value T) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	start := time.Now()

	next := s.Snapshot().Put(key, value)
	version := s.publish(next)

	s.metrics.observeWrite(opPut, resultOK, time.Since(start), version, next.Len())
	s.logger.Debug().
		Str("op", opPut).
		Int("key_len", len(key)).
		Uint64("version", version).
		Msg("published version")
}

// Remove deletes key and publishes the resulting version. Removing an absent
// key publishes nothing.
func (s *Store[T]) Remove(key string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	start := time.Now()

	current := s.Snapshot()
	next := current.Remove(key)
	if next.Len() == current.Len() {
		s.metrics.observeWrite(opRemove, resultNoop, time.Since(start), s.Version(), current.Len())
		s.logger.Debug().Str("op", opRemove).Int("key_len", len(key)).Msg("key not present")
		return
	}
	version := s.publish(next)

	s.metrics.observeWrite(opRemove, resultOK, time.Since(start), version, next.Len())
	s.logger.Debug().
		Str("op", opRemove).
		Int("key_len", len(key)).
		Uint64("version", version).
		Msg("published version")
}

// publish installs next as the current version. Callers must hold writeMu.
func (s *Store[T]) publish(next trie.Trie[T]) uint64 {
	s.rootMu.Lock()
	defer s.rootMu.Unlock()
	s.root = next
	s.version++
	return s.version
}
