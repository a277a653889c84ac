// Package domain contains the business logic for payment verification.
package domain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gatewei/gatewei/internal/ethrpc"
	"github.com/gatewei/gatewei/internal/records"
	"github.com/gatewei/gatewei/internal/validation"
	"github.com/gatewei/gatewei/internal/vault"
)

// Common errors returned by the verification service.
var (
	ErrInvalidTxHash  = errors.New("invalid transaction hash")
	ErrRecordNotFound = errors.New("record not found")
)

// ChainReader defines the chain read operations needed by the verifier.
type ChainReader interface {
	TransactionReceipt(ctx context.Context, hash string) (*ethrpc.Receipt, error)
	TransactionByHash(ctx context.Context, hash string) (*ethrpc.Transaction, error)
}

// RecordStore defines the record operations needed by the verifier.
type RecordStore interface {
	GetRecord(ctx context.Context, txHash string) (*records.VerificationRecord, error)
	PutRecord(ctx context.Context, rec *records.VerificationRecord) error
	ListRecords(ctx context.Context) ([]records.VerificationRecord, error)
	DeleteRecord(ctx context.Context, txHash string) error
}

// Config holds the payment terms the verifier enforces.
type Config struct {
	// ContractAddress is the vault contract emitting payment events.
	ContractAddress string
	// Beneficiary is the creator address payments must go to.
	Beneficiary string
	// Price is the minimum acceptable payment in wei.
	Price *big.Int
	// ResourceID, when set, additionally pins payments to one resource.
	ResourceID string
}

type service struct {
	reader ChainReader
	store  RecordStore
	cfg    Config
	now    func() time.Time
}

// NewService creates a new verification service.
func NewService(reader ChainReader, store RecordStore, cfg Config) *service {
	return &service{
		reader: reader,
		store:  store,
		cfg: Config{
			ContractAddress: strings.ToLower(cfg.ContractAddress),
			Beneficiary:     strings.ToLower(cfg.Beneficiary),
			Price:           cfg.Price,
			ResourceID:      cfg.ResourceID,
		},
		now: time.Now,
	}
}

// Verify checks whether a transaction is a confirmed payment satisfying the
// configured terms. Protocol outcomes come back as a Verdict; a non-nil error
// means the chain could not be consulted and nothing was decided.
func (s *service) Verify(ctx context.Context, txHash string) (*Verdict, error) {
	if err := validation.ValidateTxHash(txHash); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTxHash, err)
	}
	hash := strings.ToLower(txHash)

	// Already verified: answer from the store without touching the chain.
	if rec, err := s.store.GetRecord(ctx, hash); err == nil {
		return verifiedVerdict(rec), nil
	} else if !errors.Is(err, records.ErrNotFound) {
		return nil, fmt.Errorf("reading record: %w", err)
	}

	receipt, err := s.reader.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethrpc.ErrNotFound) {
		return s.classifyUnmined(ctx, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching receipt: %w", err)
	}

	if !receipt.Succeeded() {
		return rejected(ReasonReverted), nil
	}

	tx, err := s.reader.TransactionByHash(ctx, hash)
	if errors.Is(err, ethrpc.ErrNotFound) {
		return rejected(ReasonNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}
	if !strings.EqualFold(tx.To, s.cfg.ContractAddress) {
		return rejected(ReasonWrongDestination), nil
	}

	event, verdict, err := s.matchPayment(receipt)
	if err != nil || verdict != nil {
		return verdict, err
	}

	rec := &records.VerificationRecord{
		TxHash:      hash,
		Payer:       event.Payer,
		Beneficiary: event.Creator,
		Amount:      event.Amount,
		VerifiedAt:  s.now().UTC(),
	}
	if err := s.store.PutRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("storing record: %w", err)
	}

	return verifiedVerdict(rec), nil
}

// classifyUnmined distinguishes a pending transaction from an unknown one
// once the receipt lookup has come back empty.
func (s *service) classifyUnmined(ctx context.Context, hash string) (*Verdict, error) {
	tx, err := s.reader.TransactionByHash(ctx, hash)
	if errors.Is(err, ethrpc.ErrNotFound) {
		return rejected(ReasonNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}
	if tx.Pending() {
		return &Verdict{Outcome: OutcomePending}, nil
	}
	// Mined between the two calls; the caller retries and hits the receipt.
	return &Verdict{Outcome: OutcomePending}, nil
}

// matchPayment scans receipt logs in order for the first PaymentReceived
// event satisfying the configured terms. Logs from other contracts and
// other event kinds are skipped; malformed payment data fails hard.
func (s *service) matchPayment(receipt *ethrpc.Receipt) (*vault.PaymentEvent, *Verdict, error) {
	seen := false
	for _, log := range receipt.Logs {
		if !strings.EqualFold(log.Address, s.cfg.ContractAddress) {
			continue
		}
		seen = true

		event, err := vault.DecodePaymentEvent(vault.EventLog{Topics: log.Topics, Data: log.Data})
		if errors.Is(err, vault.ErrNotPaymentEvent) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decoding log: %w", err)
		}

		if event.Creator != s.cfg.Beneficiary {
			continue
		}
		if event.Amount.Cmp(s.cfg.Price) < 0 {
			continue
		}
		if s.cfg.ResourceID != "" && event.ResourceID != s.cfg.ResourceID {
			continue
		}
		return event, nil, nil
	}

	if !seen {
		return nil, rejected(ReasonNoEvents), nil
	}
	return nil, rejected(ReasonNoMatchingEvent), nil
}

// Status reports a previously stored verdict without consulting the chain.
func (s *service) Status(ctx context.Context, txHash string) (*Verdict, error) {
	if err := validation.ValidateTxHash(txHash); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTxHash, err)
	}
	rec, err := s.store.GetRecord(ctx, strings.ToLower(txHash))
	if errors.Is(err, records.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	return verifiedVerdict(rec), nil
}

func verifiedVerdict(rec *records.VerificationRecord) *Verdict {
	return &Verdict{
		Outcome:     OutcomeVerified,
		Payer:       rec.Payer,
		Beneficiary: rec.Beneficiary,
		Amount:      rec.Amount,
		VerifiedAt:  rec.VerifiedAt,
	}
}

// Records lists all stored verification records.
func (s *service) Records(ctx context.Context) ([]records.VerificationRecord, error) {
	return s.store.ListRecords(ctx)
}

// DeleteRecord removes one stored record.
func (s *service) DeleteRecord(ctx context.Context, txHash string) error {
	if err := validation.ValidateTxHash(txHash); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTxHash, err)
	}
	err := s.store.DeleteRecord(ctx, strings.ToLower(txHash))
	if errors.Is(err, records.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}
