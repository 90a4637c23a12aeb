package siwe

import (
	"context"
	"sync"
	"time"
)

// NonceTTL is how long an issued challenge stays valid.
const NonceTTL = 5 * time.Minute

// NonceRecord is the metadata stored when a challenge is issued.
type NonceRecord struct {
	Address   string    `json:"address"`
	Domain    string    `json:"domain"`
	URI       string    `json:"uri"`
	ChainID   int64     `json:"chain_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

// NonceStore persists challenge nonces between issuance and verification.
// A nonce is only marked used after the signature checks out, so a failed
// verification attempt does not burn the challenge.
type NonceStore interface {
	Save(ctx context.Context, nonce string, record NonceRecord) error
	Get(ctx context.Context, nonce string) (NonceRecord, error)
	MarkUsed(ctx context.Context, nonce string) error
}

// MemoryNonceStore is the in-memory store for single-process deployments.
type MemoryNonceStore struct {
	mu      sync.Mutex
	records map[string]NonceRecord
	now     func() time.Time
}

// MemoryNonceStoreOption customizes store construction.
type MemoryNonceStoreOption func(*MemoryNonceStore)

// WithNonceClock injects a custom clock (useful for tests).
func WithNonceClock(clock func() time.Time) MemoryNonceStoreOption {
	return func(s *MemoryNonceStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMemoryNonceStore returns an empty in-memory store.
func NewMemoryNonceStore(opts ...MemoryNonceStoreOption) *MemoryNonceStore {
	s := &MemoryNonceStore{
		records: map[string]NonceRecord{},
		now:     time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Save stores the nonce record, sweeping any expired entries on the way.
func (s *MemoryNonceStore) Save(_ context.Context, nonce string, record NonceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, rec := range s.records {
		if now.After(rec.ExpiresAt) {
			delete(s.records, key)
		}
	}

	s.records[nonce] = record
	return nil
}

// Get returns the record for a nonce. Expired records are deleted and
// reported as ErrNonceExpired.
func (s *MemoryNonceStore) Get(_ context.Context, nonce string) (NonceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[nonce]
	if !ok {
		return NonceRecord{}, ErrUnknownNonce
	}

	if s.now().After(record.ExpiresAt) {
		delete(s.records, nonce)
		return NonceRecord{}, ErrNonceExpired
	}

	return record, nil
}

// MarkUsed flags the nonce as consumed.
func (s *MemoryNonceStore) MarkUsed(_ context.Context, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[nonce]
	if !ok {
		return ErrUnknownNonce
	}

	record.Used = true
	s.records[nonce] = record
	return nil
}

var _ NonceStore = (*MemoryNonceStore)(nil)
