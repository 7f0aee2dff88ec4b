package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterBallotRequest struct {
	Kind    string    `json:"kind"`
	Code    string    `json:"code"`
	Begin   time.Time `json:"begin"`
	End     time.Time `json:"end"`
	InfoURL string    `json:"info_url,omitempty"`
}

type BallotResponse struct {
	BallotID uint64 `json:"ballot_id"`
	Kind     string `json:"kind"`
}

type CloseBallotRequest struct {
	Status uint8 `json:"status"`
}

type AdvanceCycleRequest struct {
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
}

type CastVoteRequest struct {
	Direction uint16 `json:"direction"`
}

type CandidateRequest struct {
	Member   string `json:"member"`
	InfoLink string `json:"info_link,omitempty"`
}

type ReplaceCandidatesRequest struct {
	Candidates []CandidateRequest `json:"candidates"`
}

type CandidateStatusesRequest struct {
	Statuses []uint8 `json:"statuses"`
}

type SeatCountRequest struct {
	Seats uint32 `json:"seats"`
}

type PruneReceiptsRequest struct {
	MaxCount int `json:"max_count"`
}

type PruneReceiptsResponse struct {
	Pruned int `json:"pruned"`
}

type ProposalResponse struct {
	ID           uint64    `json:"id"`
	Publisher    string    `json:"publisher"`
	InfoURL      string    `json:"info_url,omitempty"`
	Code         string    `json:"code"`
	NoCount      int64     `json:"no_count"`
	YesCount     int64     `json:"yes_count"`
	AbstainCount int64     `json:"abstain_count"`
	UniqueVoters uint32    `json:"unique_voters"`
	Begin        time.Time `json:"begin"`
	End          time.Time `json:"end"`
	CycleCount   uint32    `json:"cycle_count"`
	Status       uint8     `json:"status"`
}

type CandidateResponse struct {
	Member   string `json:"member"`
	InfoLink string `json:"info_link,omitempty"`
	Votes    int64  `json:"votes"`
	Status   uint8  `json:"status"`
}

type LeaderboardResponse struct {
	ID             uint64              `json:"id"`
	Publisher      string              `json:"publisher"`
	InfoURL        string              `json:"info_url,omitempty"`
	Code           string              `json:"code"`
	Candidates     []CandidateResponse `json:"candidates"`
	UniqueVoters   uint32              `json:"unique_voters"`
	AvailableSeats uint32              `json:"available_seats"`
	Begin          time.Time           `json:"begin"`
	End            time.Time           `json:"end"`
	Status         uint8               `json:"status"`
}

type BallotViewResponse struct {
	BallotID    uint64               `json:"ballot_id"`
	Kind        string               `json:"kind"`
	Proposal    *ProposalResponse    `json:"proposal,omitempty"`
	Leaderboard *LeaderboardResponse `json:"leaderboard,omitempty"`
}

type ReceiptResponse struct {
	BallotID   uint64    `json:"ballot_id"`
	Directions []uint16  `json:"directions"`
	Weight     int64     `json:"weight"`
	Code       string    `json:"code"`
	Expiration time.Time `json:"expiration"`
}
