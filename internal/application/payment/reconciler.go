package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/feria/backend/internal/domain/fair"
	"github.com/feria/backend/internal/domain/payment"
	"github.com/feria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// idempotencyKeyPrefix scopes the reconciler's keys in the shared store
	idempotencyKeyPrefix = "payment:return:"

	// mirrorTimeout bounds the best-effort bookkeeping report
	mirrorTimeout = 10 * time.Second
)

// Result is the outcome of handling one gateway return
type Result struct {
	Outcome          payment.Outcome
	Verification     *payment.Verification
	AlreadyProcessed bool
}

// Reconciler verifies gateway returns, classifies their outcome, and
// mirrors the classified result to the internal bookkeeping endpoint.
//
// The gateway is authoritative: the returned outcome is derived from its
// response alone. The mirror report and the sale completion hook are
// best-effort side calls whose failure never changes the outcome.
type Reconciler struct {
	gateway    payment.Gateway
	records    payment.RecordRepository
	sales      fair.SaleRepository
	mirror     payment.MirrorClient
	idempotent shared.IdempotencyStore
	idemConfig shared.IdempotencyConfig
	logger     *zap.Logger

	// mirrorWG tracks in-flight mirror reports so Drain can wait for
	// them during shutdown.
	mirrorWG sync.WaitGroup
}

// ReconcilerConfig holds the dependencies for a Reconciler
type ReconcilerConfig struct {
	Gateway          payment.Gateway
	Records          payment.RecordRepository
	Sales            fair.SaleRepository
	Mirror           payment.MirrorClient
	IdempotencyStore shared.IdempotencyStore
	Idempotency      shared.IdempotencyConfig
	Logger           *zap.Logger
}

// NewReconciler creates a new payment reconciler
func NewReconciler(config ReconcilerConfig) *Reconciler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idemConfig := config.Idempotency
	if idemConfig.TTL == 0 {
		idemConfig = shared.DefaultIdempotencyConfig()
	}
	return &Reconciler{
		gateway:    config.Gateway,
		records:    config.Records,
		sales:      config.Sales,
		mirror:     config.Mirror,
		idempotent: config.IdempotencyStore,
		idemConfig: idemConfig,
		logger:     logger,
	}
}

// HandleReturn processes one gateway redirect carrying a transaction
// reference. It runs at most once per reference: repeated redirects for
// the same reference return the previously classified outcome.
func (r *Reconciler) HandleReturn(ctx context.Context, reference string) (*Result, error) {
	if reference == "" {
		return nil, shared.ErrMissingReference
	}

	key := idempotencyKeyPrefix + reference
	if r.idemConfig.Enabled {
		newly, err := r.idempotent.MarkProcessed(ctx, key, r.idemConfig.TTL)
		if err != nil {
			// A broken idempotency store must not block reconciliation
			r.logger.Warn("Idempotency check failed, processing anyway",
				zap.String("reference", reference),
				zap.Error(err))
		} else if !newly {
			return r.replay(ctx, reference)
		}
	}

	verification, err := r.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		// Release the guard so a later redirect can retry the lookup
		if r.idemConfig.Enabled {
			if relErr := r.idempotent.Release(ctx, key); relErr != nil {
				r.logger.Warn("Failed to release idempotency key",
					zap.String("reference", reference),
					zap.Error(relErr))
			}
		}
		r.logger.Error("Gateway verification failed",
			zap.String("gateway", r.gateway.Name()),
			zap.String("reference", reference),
			zap.Error(err))
		return nil, fmt.Errorf("verify transaction %s: %w", reference, err)
	}

	outcome, disagree := payment.Classify(verification.StateText, verification.ResponseCode)
	if disagree {
		r.logger.Warn("Gateway state text and response code disagree, using text",
			zap.String("reference", reference),
			zap.String("state_text", verification.StateText),
			zap.String("response_code", verification.ResponseCode))
	}

	r.logger.Info("Gateway transaction classified",
		zap.String("gateway", r.gateway.Name()),
		zap.String("reference", reference),
		zap.String("transaction_id", verification.TransactionID),
		zap.String("outcome", outcome.String()),
		zap.String("amount", verification.Amount.String()))

	record := payment.NewRecord(verification, outcome)

	sale, err := r.sales.FindByPaymentReference(ctx, reference)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("Sale lookup by reference failed",
			zap.String("reference", reference),
			zap.Error(err))
		sale = nil
	}
	if sale != nil {
		record.LinkSale(sale.ID)
	}

	if err := r.records.Save(ctx, record); err != nil {
		// Audit trail only: reconciliation already has its outcome
		r.logger.Error("Failed to save payment record",
			zap.String("reference", reference),
			zap.Error(err))
	}

	if outcome == payment.OutcomeAccepted && sale != nil {
		r.completeSale(ctx, sale, reference)
	}

	// The outcome is final; the bookkeeping mirror runs detached and its
	// result is never awaited
	r.mirrorWG.Add(1)
	go func() {
		defer r.mirrorWG.Done()
		r.mirrorOutcome(record, verification, outcome)
	}()

	return &Result{Outcome: outcome, Verification: verification}, nil
}

// replay serves a duplicate redirect from the stored record
func (r *Reconciler) replay(ctx context.Context, reference string) (*Result, error) {
	r.logger.Info("Gateway return already processed",
		zap.String("reference", reference))

	record, err := r.records.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// First invocation is still in flight; report pending rather
			// than re-verifying
			return &Result{Outcome: payment.OutcomePending, AlreadyProcessed: true}, nil
		}
		return nil, err
	}

	return &Result{Outcome: record.Outcome, AlreadyProcessed: true}, nil
}

// completeSale marks the referenced sale paid. Failures are logged and
// never alter the classified outcome.
func (r *Reconciler) completeSale(ctx context.Context, sale *fair.Sale, reference string) {
	if err := sale.MarkPaid(); err != nil {
		r.logger.Warn("Sale completion hook rejected",
			zap.String("reference", reference),
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err))
		return
	}
	if err := r.sales.SaveWithLock(ctx, sale); err != nil {
		r.logger.Warn("Failed to persist paid sale",
			zap.String("reference", reference),
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err))
	}
}

// Drain blocks until every in-flight mirror report has finished. Each
// report carries its own timeout, so Drain is bounded by mirrorTimeout.
func (r *Reconciler) Drain() {
	r.mirrorWG.Wait()
}

// mirrorOutcome reports the classified outcome to the internal
// bookkeeping endpoint on a detached context
func (r *Reconciler) mirrorOutcome(record *payment.Record, v *payment.Verification, outcome payment.Outcome) {
	if r.mirror == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	report := &payment.ReconciliationReport{
		Reference:     v.Reference,
		TransactionID: v.TransactionID,
		Amount:        v.Amount.Amount(),
		Currency:      string(v.Amount.Currency()),
		StateText:     v.StateText,
		ResponseCode:  v.ResponseCode,
		ApprovalCode:  v.ApprovalCode,
		TargetStatus:  outcome.String(),
	}

	if err := r.mirror.Report(ctx, report); err != nil {
		r.logger.Warn("Bookkeeping mirror call failed",
			zap.String("reference", v.Reference),
			zap.Error(err))
		return
	}

	record.MarkMirrored()
	if err := r.records.Save(ctx, record); err != nil {
		r.logger.Warn("Failed to flag record as mirrored",
			zap.String("reference", v.Reference),
			zap.Error(err))
	}
}
