package postgresadapter

import (
	"encoding/json"
	"time"

	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	"ballotcore/contexts/governance-core/ballot-engine/ports"
)

// environmentModel persists the singleton row under a fixed key.
type environmentModel struct {
	EnvID             uint8     `gorm:"column:env_id;primaryKey"`
	Publisher         string    `gorm:"column:publisher"`
	TotalProposals    uint64    `gorm:"column:total_proposals"`
	TotalElections    uint64    `gorm:"column:total_elections"`
	TotalLeaderboards uint64    `gorm:"column:total_leaderboards"`
	LastBallotID      uint64    `gorm:"column:last_ballot_id"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (environmentModel) TableName() string {
	return "ballot_environment"
}

const environmentRowID = uint8(1)

func (m environmentModel) toEntity() entities.Environment {
	return entities.Environment{
		Publisher:         m.Publisher,
		TotalProposals:    m.TotalProposals,
		TotalElections:    m.TotalElections,
		TotalLeaderboards: m.TotalLeaderboards,
		LastBallotID:      m.LastBallotID,
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type ballotModel struct {
	BallotID    uint64 `gorm:"column:ballot_id;primaryKey"`
	Kind        uint8  `gorm:"column:kind"`
	ReferenceID uint64 `gorm:"column:reference_id"`
}

func (ballotModel) TableName() string {
	return "ballot_registry"
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:    m.BallotID,
		Kind:        entities.BallotKind(m.Kind),
		ReferenceID: m.ReferenceID,
	}
}

type proposalModel struct {
	ID           uint64    `gorm:"column:id;primaryKey"`
	Publisher    string    `gorm:"column:publisher"`
	InfoURL      string    `gorm:"column:info_url"`
	Code         string    `gorm:"column:code"`
	Precision    uint8     `gorm:"column:precision"`
	NoCount      int64     `gorm:"column:no_count"`
	YesCount     int64     `gorm:"column:yes_count"`
	AbstainCount int64     `gorm:"column:abstain_count"`
	UniqueVoters uint32    `gorm:"column:unique_voters"`
	Begin        time.Time `gorm:"column:begin_at"`
	End          time.Time `gorm:"column:end_at"`
	CycleCount   uint32    `gorm:"column:cycle_count"`
	Status       uint8     `gorm:"column:status"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "ballot_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ID:           proposal.ID,
		Publisher:    proposal.Publisher,
		InfoURL:      proposal.InfoURL,
		Code:         proposal.YesCount.Code,
		Precision:    proposal.YesCount.Precision,
		NoCount:      proposal.NoCount.Amount,
		YesCount:     proposal.YesCount.Amount,
		AbstainCount: proposal.AbstainCount.Amount,
		UniqueVoters: proposal.UniqueVoters,
		Begin:        proposal.Begin.UTC(),
		End:          proposal.End.UTC(),
		CycleCount:   proposal.CycleCount,
		Status:       proposal.Status,
		CreatedAt:    proposal.CreatedAt.UTC(),
		UpdatedAt:    proposal.UpdatedAt.UTC(),
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ID:           m.ID,
		Publisher:    m.Publisher,
		InfoURL:      m.InfoURL,
		NoCount:      entities.NewWeight(m.NoCount, m.Code, m.Precision),
		YesCount:     entities.NewWeight(m.YesCount, m.Code, m.Precision),
		AbstainCount: entities.NewWeight(m.AbstainCount, m.Code, m.Precision),
		UniqueVoters: m.UniqueVoters,
		Begin:        m.Begin.UTC(),
		End:          m.End.UTC(),
		CycleCount:   m.CycleCount,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// candidateRecord is the serialized form of one leaderboard candidate. The
// whole list is rewritten on every mutation, matching the read-modify-write
// discipline of the application layer.
type candidateRecord struct {
	Member   string `json:"member"`
	InfoLink string `json:"info_link,omitempty"`
	Votes    int64  `json:"votes"`
	Status   uint8  `json:"status"`
}

type leaderboardModel struct {
	ID             uint64    `gorm:"column:id;primaryKey"`
	Publisher      string    `gorm:"column:publisher"`
	InfoURL        string    `gorm:"column:info_url"`
	Code           string    `gorm:"column:code"`
	Precision      uint8     `gorm:"column:precision"`
	Candidates     []byte    `gorm:"column:candidates;type:jsonb"`
	UniqueVoters   uint32    `gorm:"column:unique_voters"`
	AvailableSeats uint32    `gorm:"column:available_seats"`
	Begin          time.Time `gorm:"column:begin_at"`
	End            time.Time `gorm:"column:end_at"`
	Status         uint8     `gorm:"column:status"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (leaderboardModel) TableName() string {
	return "ballot_leaderboards"
}

func leaderboardModelFromEntity(leaderboard entities.Leaderboard) (leaderboardModel, error) {
	records := make([]candidateRecord, 0, len(leaderboard.Candidates))
	for _, candidate := range leaderboard.Candidates {
		records = append(records, candidateRecord{
			Member:   candidate.Member,
			InfoLink: candidate.InfoLink,
			Votes:    candidate.Votes.Amount,
			Status:   candidate.Status,
		})
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return leaderboardModel{}, err
	}
	return leaderboardModel{
		ID:             leaderboard.ID,
		Publisher:      leaderboard.Publisher,
		InfoURL:        leaderboard.InfoURL,
		Code:           leaderboard.Code,
		Precision:      leaderboard.Precision,
		Candidates:     payload,
		UniqueVoters:   leaderboard.UniqueVoters,
		AvailableSeats: leaderboard.AvailableSeats,
		Begin:          leaderboard.Begin.UTC(),
		End:            leaderboard.End.UTC(),
		Status:         leaderboard.Status,
		CreatedAt:      leaderboard.CreatedAt.UTC(),
		UpdatedAt:      leaderboard.UpdatedAt.UTC(),
	}, nil
}

func (m leaderboardModel) toEntity() (entities.Leaderboard, error) {
	var records []candidateRecord
	if len(m.Candidates) > 0 {
		if err := json.Unmarshal(m.Candidates, &records); err != nil {
			return entities.Leaderboard{}, err
		}
	}
	candidates := make([]entities.Candidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, entities.Candidate{
			Member:   record.Member,
			InfoLink: record.InfoLink,
			Votes:    entities.NewWeight(record.Votes, m.Code, m.Precision),
			Status:   record.Status,
		})
	}
	return entities.Leaderboard{
		ID:             m.ID,
		Publisher:      m.Publisher,
		InfoURL:        m.InfoURL,
		Code:           m.Code,
		Precision:      m.Precision,
		Candidates:     candidates,
		UniqueVoters:   m.UniqueVoters,
		AvailableSeats: m.AvailableSeats,
		Begin:          m.Begin.UTC(),
		End:            m.End.UTC(),
		Status:         m.Status,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}, nil
}

type receiptModel struct {
	Voter      string    `gorm:"column:voter;primaryKey"`
	BallotID   uint64    `gorm:"column:ballot_id;primaryKey"`
	Directions []byte    `gorm:"column:directions;type:jsonb"`
	Weight     int64     `gorm:"column:weight"`
	Code       string    `gorm:"column:code"`
	Precision  uint8     `gorm:"column:precision"`
	Expiration time.Time `gorm:"column:expiration"`
}

func (receiptModel) TableName() string {
	return "vote_receipts"
}

func receiptModelFromEntity(receipt entities.VoteReceipt) (receiptModel, error) {
	directions, err := json.Marshal(receipt.Directions)
	if err != nil {
		return receiptModel{}, err
	}
	return receiptModel{
		Voter:      receipt.Voter,
		BallotID:   receipt.BallotID,
		Directions: directions,
		Weight:     receipt.Weight.Amount,
		Code:       receipt.Weight.Code,
		Precision:  receipt.Weight.Precision,
		Expiration: receipt.Expiration.UTC(),
	}, nil
}

func (m receiptModel) toEntity() (entities.VoteReceipt, error) {
	var directions []uint16
	if len(m.Directions) > 0 {
		if err := json.Unmarshal(m.Directions, &directions); err != nil {
			return entities.VoteReceipt{}, err
		}
	}
	return entities.VoteReceipt{
		Voter:      m.Voter,
		BallotID:   m.BallotID,
		Directions: directions,
		Weight:     entities.NewWeight(m.Weight, m.Code, m.Precision),
		Expiration: m.Expiration.UTC(),
	}, nil
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "ballot_outbox"
}

func marshalEnvelope(event ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(event)
}
