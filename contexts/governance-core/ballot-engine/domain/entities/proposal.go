package entities

import "time"

// Proposal status codes. Open is the zero value; pass/fail are supplied by
// the caller on close and only interpreted by downstream policy modules.
const (
	ProposalStatusOpen uint8 = 0
	ProposalStatusPass uint8 = 1
	ProposalStatusFail uint8 = 2
)

// Vote directions on a proposal ballot.
const (
	DirectionNo      uint16 = 0
	DirectionYes     uint16 = 1
	DirectionAbstain uint16 = 2
)

// Proposal is a yes/no/abstain ballot with repeatable voting cycles. Tallies
// accumulate voter weight per direction; cycling resets them and advances
// CycleCount while leaving vote receipts behind to go stale.
type Proposal struct {
	ID           uint64
	Publisher    string
	InfoURL      string
	NoCount      Weight
	YesCount     Weight
	AbstainCount Weight
	UniqueVoters uint32
	Begin        time.Time
	End          time.Time
	CycleCount   uint32
	Status       uint8
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WindowOpen reports whether now falls inside the voting window, inclusive
// on both ends.
func (p Proposal) WindowOpen(now time.Time) bool {
	return !now.Before(p.Begin) && !now.After(p.End)
}

// Tally returns a pointer to the bucket for a direction, or nil when the
// direction is not one of no/yes/abstain.
func (p *Proposal) Tally(direction uint16) *Weight {
	switch direction {
	case DirectionNo:
		return &p.NoCount
	case DirectionYes:
		return &p.YesCount
	case DirectionAbstain:
		return &p.AbstainCount
	default:
		return nil
	}
}

// ResetForCycle zeroes all tallies and status, advances the cycle count, and
// installs a new voting window. Receipts from the previous cycle are left in
// place so their stale expiration marks the next vote as fresh.
func (p *Proposal) ResetForCycle(begin, end time.Time) {
	code, precision := p.YesCount.Code, p.YesCount.Precision
	p.NoCount = ZeroWeight(code, precision)
	p.YesCount = ZeroWeight(code, precision)
	p.AbstainCount = ZeroWeight(code, precision)
	p.UniqueVoters = 0
	p.Status = ProposalStatusOpen
	p.CycleCount++
	p.Begin = begin
	p.End = end
}
