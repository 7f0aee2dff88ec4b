package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	"ballotcore/contexts/governance-core/ballot-engine/ports"

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

func (r *Repository) SaveEnvironment(ctx context.Context, env entities.Environment) error {
	row := environmentModel{
		EnvID:             environmentRowID,
		Publisher:         strings.TrimSpace(env.Publisher),
		TotalProposals:    env.TotalProposals,
		TotalElections:    env.TotalElections,
		TotalLeaderboards: env.TotalLeaderboards,
		LastBallotID:      env.LastBallotID,
		UpdatedAt:         env.UpdatedAt.UTC(),
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "env_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"publisher":          row.Publisher,
			"total_proposals":    row.TotalProposals,
			"total_elections":    row.TotalElections,
			"total_leaderboards": row.TotalLeaderboards,
			"last_ballot_id":     row.LastBallotID,
			"updated_at":         row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_save_environment_failed", create.Error)
	}
	return nil
}

func (r *Repository) GetEnvironment(ctx context.Context) (entities.Environment, bool, error) {
	var row environmentModel
	err := r.db.WithContext(ctx).
		Where("env_id = ?", environmentRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Environment{}, false, nil
		}
		return entities.Environment{}, false, r.logError("ballot_repo_get_environment_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModel{
		BallotID:    ballot.BallotID,
		Kind:        uint8(ballot.Kind),
		ReferenceID: ballot.ReferenceID,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ballot_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"kind":         row.Kind,
			"reference_id": row.ReferenceID,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("ballot_repo_save_ballot_failed", create.Error, "ballot_id", ballot.BallotID)
	}
	return nil
}

func (r *Repository) GetBallot(ctx context.Context, ballotID uint64) (entities.Ballot, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		return entities.Ballot{}, r.logError("ballot_repo_get_ballot_failed", err, "ballot_id", ballotID)
	}
	return row.toEntity(), nil
}

func (r *Repository) DeleteBallot(ctx context.Context, ballotID uint64) error {
	result := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		Delete(&ballotModel{})
	if result.Error != nil {
		return r.logError("ballot_repo_delete_ballot_failed", result.Error, "ballot_id", ballotID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBallotNotFound
	}
	return nil
}

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"info_url":      row.InfoURL,
			"no_count":      row.NoCount,
			"yes_count":     row.YesCount,
			"abstain_count": row.AbstainCount,
			"unique_voters": row.UniqueVoters,
			"begin_at":      row.Begin,
			"end_at":        row.End,
			"cycle_count":   row.CycleCount,
			"status":        row.Status,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_save_proposal_failed", create.Error, "id", proposal.ID)
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, id uint64) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrBallotNotFound
		}
		return entities.Proposal{}, r.logError("ballot_repo_get_proposal_failed", err, "id", id)
	}
	return row.toEntity(), nil
}

func (r *Repository) DeleteProposal(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&proposalModel{})
	if result.Error != nil {
		return r.logError("ballot_repo_delete_proposal_failed", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBallotNotFound
	}
	return nil
}

func (r *Repository) SaveLeaderboard(ctx context.Context, leaderboard entities.Leaderboard) error {
	row, err := leaderboardModelFromEntity(leaderboard)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"info_url":        row.InfoURL,
			"candidates":      row.Candidates,
			"unique_voters":   row.UniqueVoters,
			"available_seats": row.AvailableSeats,
			"begin_at":        row.Begin,
			"end_at":          row.End,
			"status":          row.Status,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_save_leaderboard_failed", create.Error, "id", leaderboard.ID)
	}
	return nil
}

func (r *Repository) GetLeaderboard(ctx context.Context, id uint64) (entities.Leaderboard, error) {
	var row leaderboardModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Leaderboard{}, domainerrors.ErrBallotNotFound
		}
		return entities.Leaderboard{}, r.logError("ballot_repo_get_leaderboard_failed", err, "id", id)
	}
	leaderboard, err := row.toEntity()
	if err != nil {
		return entities.Leaderboard{}, r.logError("ballot_repo_decode_leaderboard_failed", err, "id", id)
	}
	return leaderboard, nil
}

func (r *Repository) DeleteLeaderboard(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&leaderboardModel{})
	if result.Error != nil {
		return r.logError("ballot_repo_delete_leaderboard_failed", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBallotNotFound
	}
	return nil
}

func (r *Repository) SaveReceipt(ctx context.Context, receipt entities.VoteReceipt) error {
	row, err := receiptModelFromEntity(receipt)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "voter"}, {Name: "ballot_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"directions": row.Directions,
			"weight":     row.Weight,
			"code":       row.Code,
			"precision":  row.Precision,
			"expiration": row.Expiration,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_save_receipt_failed", create.Error,
			"voter", receipt.Voter,
			"ballot_id", receipt.BallotID,
		)
	}
	return nil
}

func (r *Repository) GetReceipt(ctx context.Context, voter string, ballotID uint64) (entities.VoteReceipt, bool, error) {
	var row receiptModel
	err := r.db.WithContext(ctx).
		Where("voter = ?", strings.TrimSpace(voter)).
		Where("ballot_id = ?", ballotID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteReceipt{}, false, nil
		}
		return entities.VoteReceipt{}, false, r.logError("ballot_repo_get_receipt_failed", err,
			"voter", voter,
			"ballot_id", ballotID,
		)
	}
	receipt, err := row.toEntity()
	if err != nil {
		return entities.VoteReceipt{}, false, r.logError("ballot_repo_decode_receipt_failed", err,
			"voter", voter,
			"ballot_id", ballotID,
		)
	}
	return receipt, true, nil
}

func (r *Repository) ListReceipts(ctx context.Context, voter string, limit int) ([]entities.VoteReceipt, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []receiptModel
	if err := r.db.WithContext(ctx).
		Where("voter = ?", strings.TrimSpace(voter)).
		Order("ballot_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_receipts_failed", err, "voter", voter)
	}
	receipts := make([]entities.VoteReceipt, 0, len(rows))
	for _, row := range rows {
		receipt, err := row.toEntity()
		if err != nil {
			return nil, r.logError("ballot_repo_decode_receipt_failed", err,
				"voter", voter,
				"ballot_id", row.BallotID,
			)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (r *Repository) DeleteReceipt(ctx context.Context, voter string, ballotID uint64) error {
	result := r.db.WithContext(ctx).
		Where("voter = ?", strings.TrimSpace(voter)).
		Where("ballot_id = ?", ballotID).
		Delete(&receiptModel{})
	if result.Error != nil {
		return r.logError("ballot_repo_delete_receipt_failed", result.Error,
			"voter", voter,
			"ballot_id", ballotID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrReceiptNotFound
	}
	return nil
}

func (r *Repository) ListVotersWithExpired(ctx context.Context, before time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	var voters []string
	if err := r.db.WithContext(ctx).
		Model(&receiptModel{}).
		Distinct("voter").
		Where("expiration < ?", before.UTC()).
		Order("voter ASC").
		Limit(limit).
		Pluck("voter", &voters).Error; err != nil {
		return nil, r.logError("ballot_repo_list_expired_voters_failed", err)
	}
	return voters, nil
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
		return r.logError("ballot_repo_append_outbox_failed", create.Error,
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
		return nil, r.logError("ballot_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("ballot_repo_mark_outbox_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance-core/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.EnvironmentRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.ProposalRepository = (*Repository)(nil)
var _ ports.LeaderboardRepository = (*Repository)(nil)
var _ ports.ReceiptRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
