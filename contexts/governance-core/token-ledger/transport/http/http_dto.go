package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterCurrencyRequest struct {
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
	MaxSupply int64  `json:"max_supply"`
	InfoURL   string `json:"info_url,omitempty"`
}

type SettingsRequest struct {
	LockAfterInitialize     bool   `json:"lock_after_initialize"`
	Destructible            bool   `json:"destructible"`
	Burnable                bool   `json:"burnable"`
	Seizable                bool   `json:"seizable"`
	MaxMutable              bool   `json:"max_mutable"`
	Transferable            bool   `json:"transferable"`
	Recastable              bool   `json:"recastable"`
	CounterbalanceDecayRate uint32 `json:"counterbalance_decay_rate"`
}

type SettingsResponse struct {
	Initialized             bool   `json:"initialized"`
	LockAfterInitialize     bool   `json:"lock_after_initialize"`
	Destructible            bool   `json:"destructible"`
	Burnable                bool   `json:"burnable"`
	Seizable                bool   `json:"seizable"`
	MaxMutable              bool   `json:"max_mutable"`
	Transferable            bool   `json:"transferable"`
	Recastable              bool   `json:"recastable"`
	CounterbalanceDecayRate uint32 `json:"counterbalance_decay_rate"`
}

type RegistryResponse struct {
	Code         string           `json:"code"`
	Precision    uint8            `json:"precision"`
	Publisher    string           `json:"publisher"`
	MaxSupply    int64            `json:"max_supply"`
	Supply       int64            `json:"supply"`
	TotalVoters  uint32           `json:"total_voters"`
	TotalProxies uint32           `json:"total_proxies"`
	InfoURL      string           `json:"info_url,omitempty"`
	Settings     SettingsResponse `json:"settings"`
}

type IssueRequest struct {
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Airgrab   bool   `json:"airgrab"`
}

type ClaimAirgrabRequest struct {
	Issuer string `json:"issuer"`
}

type BurnRequest struct {
	Amount int64 `json:"amount"`
}

type SeizeRequest struct {
	Holder    string   `json:"holder,omitempty"`
	Holders   []string `json:"holders,omitempty"`
	Recipient string   `json:"recipient,omitempty"`
	Amount    int64    `json:"amount"`
	Airgrab   bool     `json:"airgrab"`
}

type AdjustMaxRequest struct {
	Direction string `json:"direction"` // raise or lower
	Amount    int64  `json:"amount"`
}

type TransferRequest struct {
	Code      string `json:"code"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

type RegisterVoterRequest struct {
	Voter string `json:"voter"`
	Code  string `json:"code"`
}

type BalanceResponse struct {
	Voter     string `json:"voter"`
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
	Amount    int64  `json:"amount"`
}

type MirrorcastResponse struct {
	Voter  string `json:"voter"`
	Code   string `json:"code"`
	Weight int64  `json:"weight"`
}

type CounterbalanceResponse struct {
	Voter      string `json:"voter"`
	Code       string `json:"code"`
	Stored     int64  `json:"stored"`
	Decayed    int64  `json:"decayed"`
	Persistent int64  `json:"persistent"`
	LastDecay  string `json:"last_decay"`
}
