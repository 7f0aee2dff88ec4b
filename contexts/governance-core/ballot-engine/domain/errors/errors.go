package errors

import "errors"

var (
	ErrInvalidWindow         = errors.New("ballot window is invalid")
	ErrInvalidKind           = errors.New("ballot kind is not recognized")
	ErrElectionUnimplemented = errors.New("election ballots are not implemented")
	ErrCurrencyUnknown       = errors.New("weighting currency is not registered")
	ErrBallotNotFound        = errors.New("ballot does not exist")
	ErrNotPublisher          = errors.New("caller is not the ballot publisher")
	ErrVotingNotOpen         = errors.New("voting window is not open")
	ErrVotingStillOpen       = errors.New("voting window has not ended")
	ErrBallotStarted         = errors.New("ballot voting window already opened")
	ErrCycleAdvanced         = errors.New("ballot already advanced past cycle zero")
	ErrCycleNotSupported     = errors.New("ballot kind does not support cycles")
	ErrInvalidDirection      = errors.New("vote direction is out of range")
	ErrInvalidStatus         = errors.New("result status code is out of range")
	ErrRecastDisabled        = errors.New("recasting is disabled for this currency")
	ErrCandidateExists       = errors.New("candidate is already registered")
	ErrCandidateNotFound     = errors.New("candidate is not registered")
	ErrCandidateChosen       = errors.New("candidate was already chosen by this voter")
	ErrNoVoteWeight          = errors.New("voter has no weight in this currency")
	ErrReceiptNotFound       = errors.New("vote receipt does not exist")
	ErrConflict              = errors.New("record was modified concurrently")
)
