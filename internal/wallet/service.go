// Package wallet implements the balance reader: a pure read-through to
// the chain node with display-unit and mock fiat conversion.
package wallet

import (
	"context"

	"go.uber.org/zap"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/solana"
)

// Rates holds the static placeholder exchange rates. Not a live feed.
type Rates struct {
	SOLToGBP float64
	SOLToUSD float64
	GBPToPKR float64
}

// Service reads account balances from the chain node. No local state.
type Service struct {
	rpc         solana.RPCClient
	defaultFiat string
	rates       Rates
	strictAddrs bool
	logger      *zap.Logger
}

// NewService creates a balance reader service.
func NewService(rpc solana.RPCClient, defaultFiat string, rates Rates, strictAddrs bool, logger *zap.Logger) *Service {
	return &Service{
		rpc:         rpc,
		defaultFiat: defaultFiat,
		rates:       rates,
		strictAddrs: strictAddrs,
		logger:      logger,
	}
}

// GetBalance validates the account identifier, queries the node, and
// returns native, display, and mock fiat amounts.
func (s *Service) GetBalance(ctx context.Context, pubkey string) (*domain.Balance, error) {
	if err := s.validateAddress("publicKey", pubkey); err != nil {
		return nil, err
	}

	lamports, err := s.rpc.GetBalance(ctx, pubkey)
	if err != nil {
		s.logger.Warn("balance read failed", zap.String("pubkey", pubkey), zap.Error(err))
		observability.RecordRPCError("getBalance")
		return nil, &domain.UpstreamError{Op: "getBalance", Err: err}
	}

	sol := solana.LamportsToSOL(lamports)

	return &domain.Balance{
		Lamports:     lamports,
		SOL:          sol,
		FiatValue:    s.fiatValue(sol),
		FiatCurrency: s.defaultFiat,
	}, nil
}

// fiatValue applies the configured mock rate for the default currency.
// GBP is the base; PKR derives from it; anything else gets the USD-ish rate.
func (s *Service) fiatValue(sol float64) float64 {
	switch s.defaultFiat {
	case "GBP":
		return sol * s.rates.SOLToGBP
	case "PKR":
		return sol * s.rates.SOLToGBP * s.rates.GBPToPKR
	default:
		return sol * s.rates.SOLToUSD
	}
}

// Balance reads hand the key to the node, so the full 32-byte decode
// applies even without strict mode.
func (s *Service) validateAddress(field, addr string) error {
	if s.strictAddrs {
		return solana.ValidateAddressStrict(field, addr)
	}
	return solana.ValidatePublicKey(field, addr)
}
