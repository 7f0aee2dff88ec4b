package errors

import "errors"

var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrCurrencyMismatch   = errors.New("quantity currency mismatch")
	ErrRegistryExists     = errors.New("currency is already registered")
	ErrRegistryNotFound   = errors.New("currency registry not found")
	ErrNotPublisher       = errors.New("caller is not the registry publisher")
	ErrSettingsLocked     = errors.New("registry settings are locked")
	ErrZeroDecayRate      = errors.New("counterbalance decay rate must be positive")
	ErrNotDestructible    = errors.New("registry is not destructible")
	ErrNotBurnable        = errors.New("currency is not burnable")
	ErrNotSeizable        = errors.New("currency is not seizable")
	ErrMaxImmutable       = errors.New("max supply is not mutable")
	ErrNotTransferable    = errors.New("currency is not transferable")
	ErrSupplyCapExceeded  = errors.New("issuance would exceed max supply")
	ErrMaxBelowSupply     = errors.New("max supply cannot drop below circulating supply")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrBalanceNotFound    = errors.New("balance record not found")
	ErrVoterExists        = errors.New("voter is already registered")
	ErrAirgrabNotFound    = errors.New("no pending airgrab for recipient")
	ErrSelfTransfer       = errors.New("sender and recipient are the same principal")
	ErrConflict           = errors.New("ledger record conflict")
)
