package entities

import "time"

// VoteReceipt records a voter's standing choice(s) on one ballot. Proposal
// receipts hold exactly one direction; leaderboard receipts accumulate one
// direction per credited candidate. Expiration is the ballot's end time at
// cast time, so a cycled ballot leaves old receipts with a stale expiration.
type VoteReceipt struct {
	Voter      string
	BallotID   uint64
	Directions []uint16
	Weight     Weight
	Expiration time.Time
}

// HasDirection reports whether the receipt already carries a direction.
func (r VoteReceipt) HasDirection(direction uint16) bool {
	for _, chosen := range r.Directions {
		if chosen == direction {
			return true
		}
	}
	return false
}

// StaleFor reports whether the receipt predates the ballot window ending at
// end, meaning the ballot cycled since this receipt was written.
func (r VoteReceipt) StaleFor(end time.Time) bool {
	return r.Expiration.Before(end)
}
