// Package payments implements the transaction recorder: validated,
// idempotent persistence of client-executed transfers and the history
// read path. The chain remains authoritative over settlement; this
// service only mirrors client-asserted records.
package payments

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/solana"
	"solapay/internal/storage"
)

// DefaultListLimit caps history reads when no limit is configured.
const DefaultListLimit = 200

// Submission is a client-submitted record of a transfer that already
// executed on chain. Exactly one of AmountLamports or AmountSOL is set.
type Submission struct {
	Signature      string
	FromAddress    string
	ToAddress      string
	AmountLamports int64
	AmountSOL      float64
	Network        string
	FiatCurrency   string
	Metadata       json.RawMessage
}

// Options configures a recorder Service.
type Options struct {
	Transactions storage.TransactionStore
	KYC          storage.KYCStore
	RPC          solana.RPCClient
	Logger       *zap.Logger

	DefaultNetwork string
	DefaultFiat    string

	// ConfirmProbeTimeout bounds the best-effort on-chain confirmation
	// probe so it can never block the write path indefinitely.
	ConfirmProbeTimeout time.Duration

	// AllowUnfilteredList permits listing without an address filter.
	AllowUnfilteredList bool

	// StrictAddressCheck additionally rejects off-curve account keys.
	StrictAddressCheck bool

	ListLimit int
}

// Service records and lists transactions.
type Service struct {
	txStore  storage.TransactionStore
	kycStore storage.KYCStore
	rpc      solana.RPCClient
	logger   *zap.Logger
	opts     Options
}

// NewService creates a transaction recorder service.
func NewService(opts Options) *Service {
	if opts.ConfirmProbeTimeout <= 0 {
		opts.ConfirmProbeTimeout = 3 * time.Second
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.DefaultNetwork == "" {
		opts.DefaultNetwork = domain.NetworkDevnet
	}
	if opts.DefaultFiat == "" {
		opts.DefaultFiat = "GBP"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		txStore:  opts.Transactions,
		kycStore: opts.KYC,
		rpc:      opts.RPC,
		logger:   opts.Logger,
		opts:     opts,
	}
}

// Record validates a submission and persists it with at-most-one-row-
// per-signature semantics. A replayed signature still succeeds without
// writing a second row; the returned bool reports whether this call
// stored a new record.
func (s *Service) Record(ctx context.Context, sub Submission) (bool, error) {
	if err := s.validate(&sub); err != nil {
		return false, err
	}

	s.probeConfirmation(ctx, sub.Signature)

	record := &domain.TransactionRecord{
		Signature:      sub.Signature,
		FromAddress:    sub.FromAddress,
		ToAddress:      sub.ToAddress,
		AmountLamports: sub.AmountLamports,
		Network:        sub.Network,
		FiatCurrency:   sub.FiatCurrency,
		Metadata:       sub.Metadata,
	}

	inserted, err := s.txStore.Insert(ctx, record)
	if err != nil {
		return false, err
	}

	if inserted {
		observability.RecordTransactionStored()
	} else {
		observability.RecordDuplicateIgnored()
		s.logger.Debug("duplicate signature ignored", zap.String("signature", sub.Signature))
	}

	return inserted, nil
}

// validate enforces the validation order: signature, addresses, amount.
// All checks run before any store access. It also normalizes the
// submission: SOL amounts convert to lamports, defaults fill in.
func (s *Service) validate(sub *Submission) error {
	if err := solana.ValidateSignature("signature", sub.Signature); err != nil {
		return err
	}
	if err := s.validateAddress("from", sub.FromAddress); err != nil {
		return err
	}
	if err := s.validateAddress("to", sub.ToAddress); err != nil {
		return err
	}

	if sub.AmountLamports == 0 && sub.AmountSOL > 0 {
		sub.AmountLamports = solana.SOLToLamports(sub.AmountSOL)
	}
	if sub.AmountLamports <= 0 {
		return domain.NewValidationError("amount", "must be a positive amount")
	}

	if sub.Network == "" {
		sub.Network = s.opts.DefaultNetwork
	}
	if sub.FiatCurrency == "" {
		sub.FiatCurrency = s.opts.DefaultFiat
	}

	return nil
}

// probeConfirmation asks the node whether the signature is known. The
// probe is best-effort: any error or a not-found result is logged and
// swallowed, and the bounded timeout keeps it off the critical path.
func (s *Service) probeConfirmation(ctx context.Context, signature string) {
	probeCtx, cancel := context.WithTimeout(ctx, s.opts.ConfirmProbeTimeout)
	defer cancel()

	status, err := s.rpc.GetSignatureStatus(probeCtx, signature)
	switch {
	case err != nil:
		s.logger.Warn("confirmation probe failed", zap.String("signature", signature), zap.Error(err))
		observability.RecordRPCError("getSignatureStatuses")
	case status == nil:
		// The status cache only covers recent slots; fall back to the
		// ledger history before concluding the signature is unknown.
		tx, txErr := s.rpc.GetTransaction(probeCtx, signature)
		switch {
		case txErr != nil:
			s.logger.Warn("ledger lookup failed", zap.String("signature", signature), zap.Error(txErr))
			observability.RecordRPCError("getTransaction")
		case tx == nil:
			s.logger.Warn("signature not found yet on chain", zap.String("signature", signature))
		default:
			s.logger.Info("signature found in ledger history",
				zap.String("signature", signature),
				zap.Int64("slot", tx.Slot),
				zap.Int64("blockTime", tx.BlockTime))
		}
	case !status.Confirmed():
		s.logger.Info("signature not yet confirmed",
			zap.String("signature", signature),
			zap.String("status", status.ConfirmationStatus))
	}
}

// List returns records involving pubkey, newest first. An empty pubkey
// returns the most recent records across all accounts, and is only
// allowed when unfiltered listing is enabled.
func (s *Service) List(ctx context.Context, pubkey string) ([]*domain.TransactionRecord, error) {
	if pubkey == "" {
		if !s.opts.AllowUnfilteredList {
			return nil, domain.NewValidationError("publicKey", "required")
		}
		return s.txStore.ListRecent(ctx, s.opts.ListLimit)
	}

	if err := s.validateAddress("publicKey", pubkey); err != nil {
		return nil, err
	}

	return s.txStore.ListByAddress(ctx, pubkey, s.opts.ListLimit)
}

// SubmitKYC stores an opaque KYC payload for a pubkey.
func (s *Service) SubmitKYC(ctx context.Context, pubkey string, data json.RawMessage) error {
	if err := s.validateAddress("userPublicKey", pubkey); err != nil {
		return err
	}
	return s.kycStore.Insert(ctx, pubkey, data)
}

func (s *Service) validateAddress(field, addr string) error {
	if s.opts.StrictAddressCheck {
		return solana.ValidateAddressStrict(field, addr)
	}
	return solana.ValidateAddress(field, addr)
}
