package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"ballotcore/contexts/governance-core/token-ledger/application/commands"
	"ballotcore/contexts/governance-core/token-ledger/application/queries"
	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	httptransport "ballotcore/contexts/governance-core/token-ledger/transport/http"
)

type Handler struct {
	Registry commands.RegistryUseCase
	Ledger   commands.LedgerUseCase
	Voters   commands.VoterUseCase
	Queries  queries.LedgerQueryUseCase
	Logger   *slog.Logger
}

func (h Handler) RegisterCurrencyHandler(
	ctx context.Context,
	publisher string,
	req httptransport.RegisterCurrencyRequest,
) (httptransport.RegistryResponse, error) {
	registry, err := h.Registry.RegisterCurrency(ctx, commands.RegisterCurrencyCommand{
		Publisher: publisher,
		MaxSupply: entities.NewWeightQuantity(req.MaxSupply, req.Code, req.Precision),
		InfoURL:   req.InfoURL,
	})
	if err != nil {
		return httptransport.RegistryResponse{}, err
	}
	return registryResponse(registry), nil
}

func (h Handler) InitSettingsHandler(
	ctx context.Context,
	publisher string,
	code string,
	req httptransport.SettingsRequest,
) error {
	return h.Registry.InitSettings(ctx, commands.InitSettingsCommand{
		Publisher: publisher,
		Code:      code,
		Settings: entities.Settings{
			LockAfterInitialize:     req.LockAfterInitialize,
			Destructible:            req.Destructible,
			Burnable:                req.Burnable,
			Seizable:                req.Seizable,
			MaxMutable:              req.MaxMutable,
			Transferable:            req.Transferable,
			Recastable:              req.Recastable,
			CounterbalanceDecayRate: req.CounterbalanceDecayRate,
		},
	})
}

func (h Handler) UnregisterCurrencyHandler(ctx context.Context, publisher string, code string) error {
	return h.Registry.UnregisterCurrency(ctx, commands.UnregisterCurrencyCommand{
		Publisher: publisher,
		Code:      code,
	})
}

func (h Handler) IssueHandler(
	ctx context.Context,
	publisher string,
	code string,
	precision uint8,
	req httptransport.IssueRequest,
) error {
	return h.Ledger.Issue(ctx, commands.IssueCommand{
		Publisher: publisher,
		Recipient: req.Recipient,
		Quantity:  entities.NewWeightQuantity(req.Amount, code, precision),
		Airgrab:   req.Airgrab,
	})
}

func (h Handler) ClaimAirgrabHandler(
	ctx context.Context,
	claimant string,
	code string,
	req httptransport.ClaimAirgrabRequest,
) error {
	return h.Ledger.ClaimAirgrab(ctx, commands.ClaimAirgrabCommand{
		Claimant: claimant,
		Issuer:   req.Issuer,
		Code:     code,
	})
}

func (h Handler) BurnHandler(
	ctx context.Context,
	owner string,
	code string,
	precision uint8,
	req httptransport.BurnRequest,
) error {
	return h.Ledger.Burn(ctx, commands.BurnCommand{
		Owner:    owner,
		Quantity: entities.NewWeightQuantity(req.Amount, code, precision),
	})
}

func (h Handler) SeizeHandler(
	ctx context.Context,
	publisher string,
	code string,
	precision uint8,
	req httptransport.SeizeRequest,
) error {
	quantity := entities.NewWeightQuantity(req.Amount, code, precision)
	switch {
	case req.Airgrab:
		return h.Ledger.SeizeAirgrab(ctx, commands.SeizeAirgrabCommand{
			Publisher: publisher,
			Recipient: req.Recipient,
			Quantity:  quantity,
		})
	case len(req.Holders) > 0:
		return h.Ledger.SeizeBatch(ctx, commands.SeizeBatchCommand{
			Publisher: publisher,
			Holders:   req.Holders,
			Quantity:  quantity,
		})
	default:
		return h.Ledger.Seize(ctx, commands.SeizeCommand{
			Publisher: publisher,
			Holder:    req.Holder,
			Quantity:  quantity,
		})
	}
}

func (h Handler) AdjustMaxHandler(
	ctx context.Context,
	publisher string,
	code string,
	precision uint8,
	req httptransport.AdjustMaxRequest,
) error {
	cmd := commands.AdjustMaxCommand{
		Publisher: publisher,
		Quantity:  entities.NewWeightQuantity(req.Amount, code, precision),
	}
	switch strings.ToLower(strings.TrimSpace(req.Direction)) {
	case "raise":
		return h.Registry.RaiseMax(ctx, cmd)
	case "lower":
		return h.Registry.LowerMax(ctx, cmd)
	default:
		return domainerrors.ErrInvalidQuantity
	}
}

func (h Handler) TransferHandler(
	ctx context.Context,
	sender string,
	precision uint8,
	req httptransport.TransferRequest,
) error {
	return h.Ledger.Transfer(ctx, commands.TransferCommand{
		Sender:    sender,
		Recipient: req.Recipient,
		Quantity:  entities.NewWeightQuantity(req.Amount, req.Code, precision),
	})
}

func (h Handler) RegisterVoterHandler(ctx context.Context, req httptransport.RegisterVoterRequest) error {
	return h.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Voter: req.Voter,
		Code:  req.Code,
	})
}

func (h Handler) UnregisterVoterHandler(ctx context.Context, voter string, code string) error {
	return h.Voters.UnregisterVoter(ctx, commands.UnregisterVoterCommand{
		Voter: voter,
		Code:  code,
	})
}

func (h Handler) MirrorcastHandler(ctx context.Context, voter string, code string) (httptransport.MirrorcastResponse, error) {
	weight, err := h.Voters.Mirrorcast(ctx, commands.MirrorcastCommand{
		Voter: voter,
		Code:  code,
	})
	if err != nil {
		return httptransport.MirrorcastResponse{}, err
	}
	return httptransport.MirrorcastResponse{
		Voter:  voter,
		Code:   weight.Code,
		Weight: weight.Amount,
	}, nil
}

func (h Handler) RegistryHandler(ctx context.Context, code string) (httptransport.RegistryResponse, error) {
	registry, err := h.Queries.Registry(ctx, code)
	if err != nil {
		return httptransport.RegistryResponse{}, err
	}
	return registryResponse(registry), nil
}

func (h Handler) BalanceHandler(ctx context.Context, code string, voter string) (httptransport.BalanceResponse, error) {
	balance, err := h.Queries.Balance(ctx, code, voter)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Voter:     balance.Voter,
		Code:      balance.Quantity.Code,
		Precision: balance.Quantity.Precision,
		Amount:    balance.Quantity.Amount,
	}, nil
}

func (h Handler) CounterbalanceHandler(ctx context.Context, code string, voter string) (httptransport.CounterbalanceResponse, error) {
	view, err := h.Queries.Counterbalance(ctx, code, voter)
	if err != nil {
		return httptransport.CounterbalanceResponse{}, err
	}
	return httptransport.CounterbalanceResponse{
		Voter:      view.Voter,
		Code:       view.Code,
		Stored:     view.Stored.Amount,
		Decayed:    view.Decayed.Amount,
		Persistent: view.Persistent.Amount,
		LastDecay:  view.LastDecay.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func registryResponse(registry entities.Registry) httptransport.RegistryResponse {
	return httptransport.RegistryResponse{
		Code:         registry.Code,
		Precision:    registry.Precision,
		Publisher:    registry.Publisher,
		MaxSupply:    registry.MaxSupply.Amount,
		Supply:       registry.Supply.Amount,
		TotalVoters:  registry.TotalVoters,
		TotalProxies: registry.TotalProxies,
		InfoURL:      registry.InfoURL,
		Settings: httptransport.SettingsResponse{
			Initialized:             registry.Settings.Initialized,
			LockAfterInitialize:     registry.Settings.LockAfterInitialize,
			Destructible:            registry.Settings.Destructible,
			Burnable:                registry.Settings.Burnable,
			Seizable:                registry.Settings.Seizable,
			MaxMutable:              registry.Settings.MaxMutable,
			Transferable:            registry.Settings.Transferable,
			Recastable:              registry.Settings.Recastable,
			CounterbalanceDecayRate: registry.Settings.CounterbalanceDecayRate,
		},
	}
}
