package entities

// BallotKind is the closed set of ballot variants the registry can dispatch
// to. Election is reserved: it is part of the public contract but every
// operation against it fails.
type BallotKind uint8

const (
	KindProposal BallotKind = iota
	KindElection
	KindLeaderboard
)

func (k BallotKind) String() string {
	switch k {
	case KindProposal:
		return "proposal"
	case KindElection:
		return "election"
	case KindLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// ParseBallotKind maps the transport-level kind name onto the closed set.
func ParseBallotKind(name string) (BallotKind, bool) {
	switch name {
	case "proposal":
		return KindProposal, true
	case "election":
		return KindElection, true
	case "leaderboard":
		return KindLeaderboard, true
	default:
		return 0, false
	}
}

// Ballot is the polymorphic registry entry mapping a ballot id to the kind
// specific record that holds its state.
type Ballot struct {
	BallotID    uint64
	Kind        BallotKind
	ReferenceID uint64
}
