package workers

import (
	"context"
	"log/slog"
	"time"

	application "ballotcore/contexts/governance-core/ballot-engine/application"
	"ballotcore/contexts/governance-core/ballot-engine/application/commands"
	"ballotcore/contexts/governance-core/ballot-engine/ports"
)

// ReceiptJanitor sweeps expired vote receipts in bounded batches. It finds
// voters still holding expired receipts and runs the same prune operation a
// voter could invoke directly.
type ReceiptJanitor struct {
	Receipts       ports.ReceiptRepository
	Voting         commands.VotingUseCase
	Clock          ports.Clock
	VoterBatchSize int
	PruneLimit     int
	Logger         *slog.Logger
}

// RunOnce prunes expired receipts for one batch of voters and reports the
// total number of receipts removed.
func (j ReceiptJanitor) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	voterLimit := j.VoterBatchSize
	if voterLimit <= 0 {
		voterLimit = 50
	}
	pruneLimit := j.PruneLimit
	if pruneLimit <= 0 {
		pruneLimit = 100
	}

	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	voters, err := j.Receipts.ListVotersWithExpired(ctx, now, voterLimit)
	if err != nil {
		logger.Error("receipt janitor scan failed",
			"event", "ballot_receipt_scan_failed",
			"module", "governance-core/ballot-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(voters) == 0 {
		return 0, nil
	}

	total := 0
	for _, voter := range voters {
		pruned, err := j.Voting.PruneReceipts(ctx, commands.PruneReceiptsCommand{
			Voter:    voter,
			MaxCount: pruneLimit,
		})
		total += pruned
		if err != nil {
			return total, err
		}
	}

	logger.Info("receipt janitor cycle completed",
		"event", "ballot_receipt_janitor_completed",
		"module", "governance-core/ballot-engine",
		"layer", "worker",
		"voter_count", len(voters),
		"pruned_count", total,
	)
	return total, nil
}
