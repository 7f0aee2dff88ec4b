package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	"ballotcore/contexts/governance-core/token-ledger/ports"
)

type registryModel struct {
	Code          string    `gorm:"column:code;primaryKey"`
	Precision     uint8     `gorm:"column:precision"`
	Publisher     string    `gorm:"column:publisher"`
	MaxSupply     int64     `gorm:"column:max_supply"`
	Supply        int64     `gorm:"column:supply"`
	TotalVoters   uint32    `gorm:"column:total_voters"`
	TotalProxies  uint32    `gorm:"column:total_proxies"`
	InfoURL       string    `gorm:"column:info_url"`
	Initialized   bool      `gorm:"column:initialized"`
	LockAfterInit bool      `gorm:"column:lock_after_init"`
	Destructible  bool      `gorm:"column:destructible"`
	Burnable      bool      `gorm:"column:burnable"`
	Seizable      bool      `gorm:"column:seizable"`
	MaxMutable    bool      `gorm:"column:max_mutable"`
	Transferable  bool      `gorm:"column:transferable"`
	Recastable    bool      `gorm:"column:recastable"`
	DecayRate     uint32    `gorm:"column:decay_rate"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (registryModel) TableName() string {
	return "currency_registries"
}

func registryModelFromEntity(registry entities.Registry) registryModel {
	row := registryModel{
		Code:          registry.Code,
		Precision:     registry.Precision,
		Publisher:     strings.TrimSpace(registry.Publisher),
		MaxSupply:     registry.MaxSupply.Amount,
		Supply:        registry.Supply.Amount,
		TotalVoters:   registry.TotalVoters,
		TotalProxies:  registry.TotalProxies,
		InfoURL:       strings.TrimSpace(registry.InfoURL),
		Initialized:   registry.Settings.Initialized,
		LockAfterInit: registry.Settings.LockAfterInitialize,
		Destructible:  registry.Settings.Destructible,
		Burnable:      registry.Settings.Burnable,
		Seizable:      registry.Settings.Seizable,
		MaxMutable:    registry.Settings.MaxMutable,
		Transferable:  registry.Settings.Transferable,
		Recastable:    registry.Settings.Recastable,
		DecayRate:     registry.Settings.CounterbalanceDecayRate,
		CreatedAt:     registry.CreatedAt.UTC(),
		UpdatedAt:     registry.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m registryModel) toEntity() entities.Registry {
	return entities.Registry{
		Code:         m.Code,
		Precision:    m.Precision,
		Publisher:    m.Publisher,
		MaxSupply:    entities.NewWeightQuantity(m.MaxSupply, m.Code, m.Precision),
		Supply:       entities.NewWeightQuantity(m.Supply, m.Code, m.Precision),
		TotalVoters:  m.TotalVoters,
		TotalProxies: m.TotalProxies,
		InfoURL:      m.InfoURL,
		Settings: entities.Settings{
			Initialized:             m.Initialized,
			LockAfterInitialize:     m.LockAfterInit,
			Destructible:            m.Destructible,
			Burnable:                m.Burnable,
			Seizable:                m.Seizable,
			MaxMutable:              m.MaxMutable,
			Transferable:            m.Transferable,
			Recastable:              m.Recastable,
			CounterbalanceDecayRate: m.DecayRate,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type balanceModel struct {
	Code      string    `gorm:"column:code;primaryKey"`
	Voter     string    `gorm:"column:voter;primaryKey"`
	Amount    int64     `gorm:"column:amount"`
	Precision uint8     `gorm:"column:precision"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (balanceModel) TableName() string {
	return "voter_balances"
}

func (m balanceModel) toEntity() entities.Balance {
	return entities.Balance{
		Voter:     m.Voter,
		Quantity:  entities.NewWeightQuantity(m.Amount, m.Code, m.Precision),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type airgrabModel struct {
	Code      string    `gorm:"column:code;primaryKey"`
	Recipient string    `gorm:"column:recipient;primaryKey"`
	Amount    int64     `gorm:"column:amount"`
	Precision uint8     `gorm:"column:precision"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (airgrabModel) TableName() string {
	return "pending_airgrabs"
}

func (m airgrabModel) toEntity() entities.Airgrab {
	return entities.Airgrab{
		Recipient: m.Recipient,
		Quantity:  entities.NewWeightQuantity(m.Amount, m.Code, m.Precision),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type counterbalanceModel struct {
	Code       string    `gorm:"column:code;primaryKey"`
	Voter      string    `gorm:"column:voter;primaryKey"`
	Precision  uint8     `gorm:"column:precision"`
	Decayable  int64     `gorm:"column:decayable"`
	Persistent int64     `gorm:"column:persistent"`
	LastDecay  time.Time `gorm:"column:last_decay"`
}

func (counterbalanceModel) TableName() string {
	return "counterbalances"
}

func (m counterbalanceModel) toEntity() entities.Counterbalance {
	return entities.Counterbalance{
		Voter:      m.Voter,
		Code:       m.Code,
		Precision:  m.Precision,
		Decayable:  entities.NewWeightQuantity(m.Decayable, m.Code, m.Precision),
		Persistent: entities.NewWeightQuantity(m.Persistent, m.Code, m.Precision),
		LastDecay:  m.LastDecay.UTC(),
	}
}

type stakeModel struct {
	Code      string    `gorm:"column:code;primaryKey"`
	Voter     string    `gorm:"column:voter;primaryKey"`
	Amount    int64     `gorm:"column:amount"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stakeModel) TableName() string {
	return "settlement_stakes"
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
	return "ledger_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "ledger_event_dedup"
}

func marshalEnvelope(event ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(event)
}
