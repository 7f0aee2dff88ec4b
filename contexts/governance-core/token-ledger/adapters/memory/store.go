package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	"ballotcore/contexts/governance-core/token-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
	sent    bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

func balanceKey(code string, voter string) string {
	return code + "/" + voter
}

// Store is the in-memory adapter backing unit tests and local wiring. It
// implements every token-ledger port, including Clock and IDGenerator.
type Store struct {
	mu sync.RWMutex

	registries      map[string]entities.Registry
	balances        map[string]entities.Balance
	airgrabs        map[string]entities.Airgrab
	counterbalances map[string]entities.Counterbalance
	stakes          map[string]int64
	outbox          map[string]outboxRecord
	eventDedup      map[string]dedupRecord

	now *time.Time
}

func NewStore() *Store {
	return &Store{
		registries:      make(map[string]entities.Registry),
		balances:        make(map[string]entities.Balance),
		airgrabs:        make(map[string]entities.Airgrab),
		counterbalances: make(map[string]entities.Counterbalance),
		stakes:          make(map[string]int64),
		outbox:          make(map[string]outboxRecord),
		eventDedup:      make(map[string]dedupRecord),
	}
}

// SetNow pins the logical clock; tests use it to step decay periods exactly.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	utc := now.UTC()
	s.now = &utc
}

// SetStake seeds the external stake read by mirrorcast.
func (s *Store) SetStake(voter string, code string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stakes[balanceKey(strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(voter))] = amount
}

func (s *Store) SaveRegistry(_ context.Context, registry entities.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registries[registry.Code] = registry
	return nil
}

func (s *Store) GetRegistry(_ context.Context, code string) (entities.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	registry, ok := s.registries[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return entities.Registry{}, domainerrors.ErrRegistryNotFound
	}
	return registry, nil
}

func (s *Store) DeleteRegistry(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := s.registries[code]; !ok {
		return domainerrors.ErrRegistryNotFound
	}
	delete(s.registries, code)
	return nil
}

func (s *Store) SaveBalance(_ context.Context, code string, balance entities.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey(code, balance.Voter)] = balance
	return nil
}

func (s *Store) GetBalance(_ context.Context, code string, voter string) (entities.Balance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[balanceKey(strings.TrimSpace(code), strings.TrimSpace(voter))]
	return balance, ok, nil
}

func (s *Store) DeleteBalance(_ context.Context, code string, voter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey(strings.TrimSpace(code), strings.TrimSpace(voter))
	if _, ok := s.balances[key]; !ok {
		return domainerrors.ErrBalanceNotFound
	}
	delete(s.balances, key)
	return nil
}

func (s *Store) SaveAirgrab(_ context.Context, code string, airgrab entities.Airgrab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airgrabs[balanceKey(code, airgrab.Recipient)] = airgrab
	return nil
}

func (s *Store) GetAirgrab(_ context.Context, code string, recipient string) (entities.Airgrab, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grab, ok := s.airgrabs[balanceKey(strings.TrimSpace(code), strings.TrimSpace(recipient))]
	return grab, ok, nil
}

func (s *Store) DeleteAirgrab(_ context.Context, code string, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey(strings.TrimSpace(code), strings.TrimSpace(recipient))
	if _, ok := s.airgrabs[key]; !ok {
		return domainerrors.ErrAirgrabNotFound
	}
	delete(s.airgrabs, key)
	return nil
}

func (s *Store) SaveCounterbalance(_ context.Context, counterbalance entities.Counterbalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counterbalances[balanceKey(counterbalance.Code, counterbalance.Voter)] = counterbalance
	return nil
}

func (s *Store) GetCounterbalance(_ context.Context, code string, voter string) (entities.Counterbalance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counter, ok := s.counterbalances[balanceKey(strings.TrimSpace(code), strings.TrimSpace(voter))]
	return counter, ok, nil
}

func (s *Store) StakedWeight(_ context.Context, voter string, code string, _ uint8) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stakes[balanceKey(strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(voter))], nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.sent {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.sent = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Expiry follows the logical clock the reservation was stamped with; the
	// lock is already held, so read the pinned instant directly.
	now := time.Now().UTC()
	if s.now != nil {
		now = *s.now
	}
	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && now.After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
