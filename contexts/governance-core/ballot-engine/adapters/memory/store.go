package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	"ballotcore/contexts/governance-core/ballot-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
	sent    bool
}

func receiptKey(voter string, ballotID uint64) string {
	return voter + "/" + strconv.FormatUint(ballotID, 10)
}

// Store is the in-memory adapter backing unit tests and local wiring. It
// implements every ballot-engine port, including the WeightSource normally
// served by the token ledger.
type Store struct {
	mu sync.RWMutex

	environment  *entities.Environment
	ballots      map[uint64]entities.Ballot
	proposals    map[uint64]entities.Proposal
	leaderboards map[uint64]entities.Leaderboard
	receipts     map[string]entities.VoteReceipt
	currencies   map[string]ports.CurrencyInfo
	weights      map[string]int64
	outbox       map[string]outboxRecord

	now *time.Time
}

func NewStore() *Store {
	return &Store{
		ballots:      make(map[uint64]entities.Ballot),
		proposals:    make(map[uint64]entities.Proposal),
		leaderboards: make(map[uint64]entities.Leaderboard),
		receipts:     make(map[string]entities.VoteReceipt),
		currencies:   make(map[string]ports.CurrencyInfo),
		weights:      make(map[string]int64),
		outbox:       make(map[string]outboxRecord),
	}
}

// SetNow pins the logical clock; tests use it to step voting windows exactly.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	utc := now.UTC()
	s.now = &utc
}

// SetCurrency seeds a weighting currency for standalone ballot tests.
func (s *Store) SetCurrency(code string, precision uint8, recastable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.ToUpper(strings.TrimSpace(code))
	s.currencies[code] = ports.CurrencyInfo{Code: code, Precision: precision, Recastable: recastable}
}

// SetWeight seeds a voter's ledger weight for standalone ballot tests.
func (s *Store) SetWeight(voter string, code string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights[strings.ToUpper(strings.TrimSpace(code))+"/"+strings.TrimSpace(voter)] = amount
}

func (s *Store) SaveEnvironment(_ context.Context, env entities.Environment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environment = &env
	return nil
}

func (s *Store) GetEnvironment(_ context.Context) (entities.Environment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.environment == nil {
		return entities.Environment{}, false, nil
	}
	return *s.environment, true, nil
}

func (s *Store) SaveBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots[ballot.BallotID] = ballot
	return nil
}

func (s *Store) GetBallot(_ context.Context, ballotID uint64) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[ballotID]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot, nil
}

func (s *Store) DeleteBallot(_ context.Context, ballotID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ballots[ballotID]; !ok {
		return domainerrors.ErrBallotNotFound
	}
	delete(s.ballots, ballotID)
	return nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[proposal.ID] = proposal
	return nil
}

func (s *Store) GetProposal(_ context.Context, id uint64) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrBallotNotFound
	}
	return proposal, nil
}

func (s *Store) DeleteProposal(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return domainerrors.ErrBallotNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *Store) SaveLeaderboard(_ context.Context, leaderboard entities.Leaderboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := leaderboard
	stored.Candidates = append([]entities.Candidate(nil), leaderboard.Candidates...)
	s.leaderboards[leaderboard.ID] = stored
	return nil
}

func (s *Store) GetLeaderboard(_ context.Context, id uint64) (entities.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	leaderboard, ok := s.leaderboards[id]
	if !ok {
		return entities.Leaderboard{}, domainerrors.ErrBallotNotFound
	}
	out := leaderboard
	out.Candidates = append([]entities.Candidate(nil), leaderboard.Candidates...)
	return out, nil
}

func (s *Store) DeleteLeaderboard(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leaderboards[id]; !ok {
		return domainerrors.ErrBallotNotFound
	}
	delete(s.leaderboards, id)
	return nil
}

func (s *Store) SaveReceipt(_ context.Context, receipt entities.VoteReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := receipt
	stored.Directions = append([]uint16(nil), receipt.Directions...)
	s.receipts[receiptKey(receipt.Voter, receipt.BallotID)] = stored
	return nil
}

func (s *Store) GetReceipt(_ context.Context, voter string, ballotID uint64) (entities.VoteReceipt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[receiptKey(strings.TrimSpace(voter), ballotID)]
	if !ok {
		return entities.VoteReceipt{}, false, nil
	}
	out := receipt
	out.Directions = append([]uint16(nil), receipt.Directions...)
	return out, true, nil
}

func (s *Store) ListReceipts(_ context.Context, voter string, limit int) ([]entities.VoteReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	voter = strings.TrimSpace(voter)
	items := make([]entities.VoteReceipt, 0)
	for _, receipt := range s.receipts {
		if receipt.Voter != voter {
			continue
		}
		out := receipt
		out.Directions = append([]uint16(nil), receipt.Directions...)
		items = append(items, out)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].BallotID < items[j].BallotID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) DeleteReceipt(_ context.Context, voter string, ballotID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := receiptKey(strings.TrimSpace(voter), ballotID)
	if _, ok := s.receipts[key]; !ok {
		return domainerrors.ErrReceiptNotFound
	}
	delete(s.receipts, key)
	return nil
}

func (s *Store) ListVotersWithExpired(_ context.Context, before time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	seen := make(map[string]struct{})
	for _, receipt := range s.receipts {
		if !receipt.Expiration.Before(before) {
			continue
		}
		seen[receipt.Voter] = struct{}{}
	}
	voters := make([]string, 0, len(seen))
	for voter := range seen {
		voters = append(voters, voter)
	}
	sort.Strings(voters)
	if len(voters) > limit {
		voters = voters[:limit]
	}
	return voters, nil
}

func (s *Store) Currency(_ context.Context, code string) (ports.CurrencyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.currencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return ports.CurrencyInfo{}, domainerrors.ErrCurrencyUnknown
	}
	return info, nil
}

func (s *Store) VoterWeight(_ context.Context, voter string, code string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := strings.ToUpper(strings.TrimSpace(code)) + "/" + strings.TrimSpace(voter)
	weight, ok := s.weights[key]
	if !ok {
		return 0, domainerrors.ErrNoVoteWeight
	}
	return weight, nil
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
