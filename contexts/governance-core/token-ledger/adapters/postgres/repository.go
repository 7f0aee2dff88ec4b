package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	"ballotcore/contexts/governance-core/token-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveRegistry(ctx context.Context, registry entities.Registry) error {
	row := registryModelFromEntity(registry)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.Assignments(map[string]any{
			"publisher":       row.Publisher,
			"max_supply":      row.MaxSupply,
			"supply":          row.Supply,
			"total_voters":    row.TotalVoters,
			"total_proxies":   row.TotalProxies,
			"info_url":        row.InfoURL,
			"initialized":     row.Initialized,
			"lock_after_init": row.LockAfterInit,
			"destructible":    row.Destructible,
			"burnable":        row.Burnable,
			"seizable":        row.Seizable,
			"max_mutable":     row.MaxMutable,
			"transferable":    row.Transferable,
			"recastable":      row.Recastable,
			"decay_rate":      row.DecayRate,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrRegistryExists
		}
		return r.logError("ledger_repo_save_registry_failed", create.Error, "code", registry.Code)
	}
	return nil
}

func (r *Repository) GetRegistry(ctx context.Context, code string) (entities.Registry, error) {
	var row registryModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Registry{}, domainerrors.ErrRegistryNotFound
		}
		return entities.Registry{}, r.logError("ledger_repo_get_registry_failed", err, "code", code)
	}
	return row.toEntity(), nil
}

func (r *Repository) DeleteRegistry(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Delete(&registryModel{})
	if result.Error != nil {
		return r.logError("ledger_repo_delete_registry_failed", result.Error, "code", code)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRegistryNotFound
	}
	return nil
}

func (r *Repository) SaveBalance(ctx context.Context, code string, balance entities.Balance) error {
	row := balanceModel{
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Voter:     strings.TrimSpace(balance.Voter),
		Amount:    balance.Quantity.Amount,
		Precision: balance.Quantity.Precision,
		UpdatedAt: balance.UpdatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}, {Name: "voter"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     row.Amount,
			"precision":  row.Precision,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_save_balance_failed", create.Error,
			"code", row.Code,
			"voter", row.Voter,
		)
	}
	return nil
}

func (r *Repository) GetBalance(ctx context.Context, code string, voter string) (entities.Balance, bool, error) {
	var row balanceModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Where("voter = ?", strings.TrimSpace(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Balance{}, false, nil
		}
		return entities.Balance{}, false, r.logError("ledger_repo_get_balance_failed", err,
			"code", code,
			"voter", voter,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) DeleteBalance(ctx context.Context, code string, voter string) error {
	result := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Where("voter = ?", strings.TrimSpace(voter)).
		Delete(&balanceModel{})
	if result.Error != nil {
		return r.logError("ledger_repo_delete_balance_failed", result.Error,
			"code", code,
			"voter", voter,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBalanceNotFound
	}
	return nil
}

func (r *Repository) SaveAirgrab(ctx context.Context, code string, airgrab entities.Airgrab) error {
	row := airgrabModel{
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Recipient: strings.TrimSpace(airgrab.Recipient),
		Amount:    airgrab.Quantity.Amount,
		Precision: airgrab.Quantity.Precision,
		CreatedAt: airgrab.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}, {Name: "recipient"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":    row.Amount,
			"precision": row.Precision,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_save_airgrab_failed", create.Error,
			"code", row.Code,
			"recipient", row.Recipient,
		)
	}
	return nil
}

func (r *Repository) GetAirgrab(ctx context.Context, code string, recipient string) (entities.Airgrab, bool, error) {
	var row airgrabModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Where("recipient = ?", strings.TrimSpace(recipient)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Airgrab{}, false, nil
		}
		return entities.Airgrab{}, false, r.logError("ledger_repo_get_airgrab_failed", err,
			"code", code,
			"recipient", recipient,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) DeleteAirgrab(ctx context.Context, code string, recipient string) error {
	result := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Where("recipient = ?", strings.TrimSpace(recipient)).
		Delete(&airgrabModel{})
	if result.Error != nil {
		return r.logError("ledger_repo_delete_airgrab_failed", result.Error,
			"code", code,
			"recipient", recipient,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAirgrabNotFound
	}
	return nil
}

func (r *Repository) SaveCounterbalance(ctx context.Context, counterbalance entities.Counterbalance) error {
	row := counterbalanceModel{
		Code:       counterbalance.Code,
		Voter:      strings.TrimSpace(counterbalance.Voter),
		Precision:  counterbalance.Precision,
		Decayable:  counterbalance.Decayable.Amount,
		Persistent: counterbalance.Persistent.Amount,
		LastDecay:  counterbalance.LastDecay.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}, {Name: "voter"}},
		DoUpdates: clause.Assignments(map[string]any{
			"precision":  row.Precision,
			"decayable":  row.Decayable,
			"persistent": row.Persistent,
			"last_decay": row.LastDecay,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_save_counterbalance_failed", create.Error,
			"code", row.Code,
			"voter", row.Voter,
		)
	}
	return nil
}

func (r *Repository) GetCounterbalance(ctx context.Context, code string, voter string) (entities.Counterbalance, bool, error) {
	var row counterbalanceModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Where("voter = ?", strings.TrimSpace(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Counterbalance{}, false, nil
		}
		return entities.Counterbalance{}, false, r.logError("ledger_repo_get_counterbalance_failed", err,
			"code", code,
			"voter", voter,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := marshalEnvelope(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(event.EventID),
		EventType:    strings.TrimSpace(event.EventType),
		PartitionKey: strings.TrimSpace(event.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_append_outbox_failed", create.Error,
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ledger_repo_mark_outbox_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// StakedWeight reads the mirrored settlement stake for one voter. Rows are
// written by the settlement ingestion pipeline; a missing row means no stake.
func (r *Repository) StakedWeight(ctx context.Context, voter string, code string, _ uint8) (int64, error) {
	var row stakeModel
	err := r.db.WithContext(ctx).
		Where("code = ? AND voter = ?", strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(voter)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, r.logError("ledger_repo_staked_weight_failed", err,
			"voter", strings.TrimSpace(voter),
			"code", strings.ToUpper(strings.TrimSpace(code)),
		)
	}
	return row.Amount, nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("ledger_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("ledger_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance-core/token-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RegistryRepository = (*Repository)(nil)
var _ ports.BalanceRepository = (*Repository)(nil)
var _ ports.AirgrabRepository = (*Repository)(nil)
var _ ports.CounterbalanceRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
var _ ports.StakeSource = (*Repository)(nil)
