package conversation

import (
	"sync"
	"time"

	"chitieu/internal/cache"
)

// StoreConfig bounds the number of live conversations and their idle time.
type StoreConfig struct {
	MaxConversations int
	TTL              time.Duration
	Now              func() time.Time
}

// DefaultStoreConfig returns the limits used when none are configured.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxConversations: 10000,
		TTL:              24 * time.Hour,
	}
}

// Store keeps conversation state in memory, keyed by sender id. Callers
// that read, modify and write one sender's state hold that sender's lock
// for the whole sequence.
type Store struct {
	states *cache.LRUCache[State]

	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore(cfg StoreConfig) *Store {
	def := DefaultStoreConfig()
	if cfg.MaxConversations <= 0 {
		cfg.MaxConversations = def.MaxConversations
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}

	opts := []cache.Option[State]{
		cache.WithEvictHook[State](func(_ string, reason cache.EvictReason) {
			conversationsEvicted.WithLabelValues(reason.String()).Inc()
		}),
	}
	if cfg.Now != nil {
		opts = append(opts, cache.WithClock[State](cfg.Now))
	}

	return &Store{
		states: cache.NewLRUCache[State](cfg.MaxConversations, cfg.TTL, opts...),
		locks:  make(map[string]*senderLock),
	}
}

// Lock blocks until the caller owns senderID and returns the release func.
func (s *Store) Lock(senderID string) func() {
	s.mu.Lock()
	l, ok := s.locks[senderID]
	if !ok {
		l = &senderLock{}
		s.locks[senderID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, senderID)
		}
		s.mu.Unlock()
	}
}

// Get returns the stored state for senderID.
func (s *Store) Get(senderID string) (State, bool) {
	return s.states.Get(senderID)
}

// Set stores state and restarts its idle timer.
func (s *Store) Set(senderID string, state State) {
	s.states.Set(senderID, state)
}

// Delete forgets the sender's conversation.
func (s *Store) Delete(senderID string) {
	s.states.Delete(senderID)
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	return s.states.Size()
}

// CleanExpired drops idle conversations. It lets a cache.Manager sweep the
// store.
func (s *Store) CleanExpired() int {
	return s.states.CleanExpired()
}

var _ cache.Cleaner = (*Store)(nil)
