package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/gatewei/gatewei/internal/observability/metrics"
	"github.com/gatewei/gatewei/internal/records"
)

// Service is the verification interface the middlewares and transports wrap.
type Service interface {
	Verify(ctx context.Context, txHash string) (*Verdict, error)
	Status(ctx context.Context, txHash string) (*Verdict, error)
	Records(ctx context.Context) ([]records.VerificationRecord, error)
	DeleteRecord(ctx context.Context, txHash string) error
}

// LoggingMiddleware returns a service middleware that logs all operations.
func LoggingMiddleware(logger *slog.Logger) func(Service) Service {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger *slog.Logger
}

func (m *loggingMiddleware) Verify(ctx context.Context, txHash string) (*Verdict, error) {
	start := time.Now()
	verdict, err := m.next.Verify(ctx, txHash)

	outcome := "error"
	reason := ""
	if verdict != nil {
		outcome = string(verdict.Outcome)
		reason = verdict.Reason
	}
	metrics.RecordVerification(outcome, time.Since(start))
	m.logger.Info("Verify",
		"txHash", txHash,
		"outcome", outcome,
		"reason", reason,
		"duration", time.Since(start),
		"error", err,
	)
	return verdict, err
}

func (m *loggingMiddleware) Status(ctx context.Context, txHash string) (*Verdict, error) {
	start := time.Now()
	verdict, err := m.next.Status(ctx, txHash)
	m.logger.Debug("Status",
		"txHash", txHash,
		"duration", time.Since(start),
		"error", err,
	)
	return verdict, err
}

func (m *loggingMiddleware) Records(ctx context.Context) ([]records.VerificationRecord, error) {
	start := time.Now()
	recs, err := m.next.Records(ctx)
	m.logger.Debug("Records",
		"count", len(recs),
		"duration", time.Since(start),
		"error", err,
	)
	return recs, err
}

func (m *loggingMiddleware) DeleteRecord(ctx context.Context, txHash string) error {
	start := time.Now()
	err := m.next.DeleteRecord(ctx, txHash)
	m.logger.Info("DeleteRecord",
		"txHash", txHash,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}
