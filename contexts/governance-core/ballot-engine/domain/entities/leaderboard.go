package entities

import "time"

// Candidate is one entry on a leaderboard ballot. Votes accumulates the full
// weight of every voter who selected this candidate; Status is only written
// after the voting window closes.
type Candidate struct {
	Member   string
	InfoLink string
	Votes    Weight
	Status   uint8
}

// Leaderboard is a multi-candidate, multi-seat ballot. The engine tallies
// weight per candidate; ranking and seat assignment are caller logic after
// close.
type Leaderboard struct {
	ID             uint64
	Publisher      string
	InfoURL        string
	Code           string
	Precision      uint8
	Candidates     []Candidate
	UniqueVoters   uint32
	AvailableSeats uint32
	Begin          time.Time
	End            time.Time
	Status         uint8
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (l Leaderboard) WindowOpen(now time.Time) bool {
	return !now.Before(l.Begin) && !now.After(l.End)
}

// CandidateIndex returns the position of a member in the candidate list, or
// -1 when absent.
func (l Leaderboard) CandidateIndex(member string) int {
	for i, candidate := range l.Candidates {
		if candidate.Member == member {
			return i
		}
	}
	return -1
}
