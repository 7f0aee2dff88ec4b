package entities

import "time"

// Environment is the singleton bookkeeping row for the ballot engine: running
// totals per ballot kind and the last assigned ballot identifier. It is
// created lazily on the first ballot registration and mutated on every
// registration or unregistration afterwards.
type Environment struct {
	Publisher         string
	TotalProposals    uint64
	TotalElections    uint64
	TotalLeaderboards uint64
	LastBallotID      uint64
	UpdatedAt         time.Time
}

// NextBallotID advances the monotone ballot id counter and returns the id to
// assign.
func (e *Environment) NextBallotID() uint64 {
	e.LastBallotID++
	return e.LastBallotID
}
