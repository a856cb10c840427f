// Package ledger is the accounting engine: it records deposits and
// withdrawals, coordinates transfers as double entries and derives balances
// from the stored movements.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/locking"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/metrics"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models/events"
)

const tracerName = "github.com/sheikh-saqib/personal-finance-ledger/internal/ledger"

// Ledger wires the accounting components together and adds logging,
// metrics, tracing and event publication around them.
type Ledger struct {
	directory interfaces.AccountDirectory

	balances  *BalanceCalculator
	recorder  *MovementRecorder
	transfers *TransferCoordinator
	lookup    *OperationLookup

	publisher interfaces.EventPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type options struct {
	locker    interfaces.AccountLocker
	publisher interfaces.EventPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type Option func(*options)

// WithLocker replaces the default in-process account locker.
func WithLocker(l interfaces.AccountLocker) Option {
	return func(o *options) { o.locker = l }
}

func WithPublisher(p interfaces.EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewLedger builds a Ledger over the given directory and store.
func NewLedger(directory interfaces.AccountDirectory, store interfaces.LedgerStore, opts ...Option) *Ledger {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = locking.NewLocalLocker()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	balances := NewBalanceCalculator(store)
	return &Ledger{
		directory: directory,
		balances:  balances,
		recorder:  NewMovementRecorder(directory, store, balances, o.locker),
		transfers: NewTransferCoordinator(directory, store, balances, o.locker),
		lookup:    NewOperationLookup(directory, store),
		publisher: o.publisher,
		logger:    o.logger,
		metrics:   o.metrics,
		tracer:    otel.Tracer(tracerName),
	}
}

// Deposit records a deposit of amount for ownerID.
func (l *Ledger) Deposit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (models.Movement, error) {
	return l.Record(ctx, ownerID, amount, description, models.KindDeposit)
}

// Withdraw records a withdrawal of amount for ownerID.
func (l *Ledger) Withdraw(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (models.Movement, error) {
	return l.Record(ctx, ownerID, amount, description, models.KindWithdraw)
}

func (l *Ledger) Record(ctx context.Context, ownerID string, amount decimal.Decimal, description string, kind models.MovementKind) (models.Movement, error) {
	const op = "record"
	ctx, span := l.tracer.Start(ctx, "ledger.record", trace.WithAttributes(
		attribute.String("ledger.user_id", ownerID),
		attribute.String("ledger.type", string(kind)),
	))
	defer span.End()
	defer l.metrics.Time(op)()

	m, err := l.recorder.Record(ctx, ownerID, amount, description, kind)
	if err != nil {
		l.fail(span, op, err, zap.String("user_id", ownerID), zap.String("type", string(kind)), zap.Stringer("amount", amount))
		return models.Movement{}, err
	}

	l.metrics.MovementAppended(string(m.Kind))
	l.logger.Info("movement recorded",
		zap.String("movement_id", m.ID),
		zap.String("user_id", ownerID),
		zap.String("type", string(m.Kind)),
		zap.Stringer("amount", m.Amount))
	l.publish(ctx, events.TopicMovementRecorded, ownerID, events.NewMovementRecorded(m))
	return m, nil
}

// Transfer moves amount from senderID to receiverID.
func (l *Ledger) Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal, description string) (TransferResult, error) {
	const op = "transfer"
	ctx, span := l.tracer.Start(ctx, "ledger.transfer", trace.WithAttributes(
		attribute.String("ledger.sender_id", senderID),
		attribute.String("ledger.receiver_id", receiverID),
	))
	defer span.End()
	defer l.metrics.Time(op)()

	res, err := l.transfers.Transfer(ctx, senderID, receiverID, amount, description)
	if err != nil {
		l.fail(span, op, err, zap.String("sender_id", senderID), zap.String("receiver_id", receiverID), zap.Stringer("amount", amount))
		return TransferResult{}, err
	}

	l.metrics.MovementAppended(string(models.KindTransferOut))
	l.metrics.MovementAppended(string(models.KindTransferIn))
	l.logger.Info("transfer completed",
		zap.String("sender_movement_id", res.SenderMovement.ID),
		zap.String("receiver_movement_id", res.ReceiverMovement.ID),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID),
		zap.Stringer("amount", amount))
	l.publish(ctx, events.TopicTransferCompleted, senderID, events.NewTransferCompleted(res.SenderMovement, res.ReceiverMovement))
	return res, nil
}

// Find returns one movement of ownerID.
func (l *Ledger) Find(ctx context.Context, ownerID, movementID string) (models.Movement, error) {
	const op = "find"
	ctx, span := l.tracer.Start(ctx, "ledger.find", trace.WithAttributes(
		attribute.String("ledger.user_id", ownerID),
		attribute.String("ledger.movement_id", movementID),
	))
	defer span.End()
	defer l.metrics.Time(op)()

	m, err := l.lookup.Find(ctx, ownerID, movementID)
	if err != nil {
		l.fail(span, op, err, zap.String("user_id", ownerID), zap.String("movement_id", movementID))
		return models.Movement{}, err
	}
	return m, nil
}

// ComputeBalance derives the balance of ownerID without checking that the
// account exists.
func (l *Ledger) ComputeBalance(ctx context.Context, ownerID string, withMovements bool) (Balance, error) {
	return l.balances.Compute(ctx, ownerID, withMovements)
}

// GetBalance returns the balance and statement of an existing account.
func (l *Ledger) GetBalance(ctx context.Context, ownerID string) (Balance, error) {
	const op = "balance"
	ctx, span := l.tracer.Start(ctx, "ledger.balance", trace.WithAttributes(
		attribute.String("ledger.user_id", ownerID),
	))
	defer span.End()
	defer l.metrics.Time(op)()

	if err := resolve(ctx, l.directory, ownerID, ErrUserNotFound); err != nil {
		l.fail(span, op, err, zap.String("user_id", ownerID))
		return Balance{}, err
	}
	b, err := l.balances.Compute(ctx, ownerID, true)
	if err != nil {
		l.fail(span, op, err, zap.String("user_id", ownerID))
		return Balance{}, err
	}
	return b, nil
}

// fail records a failed operation. Domain rejections are expected traffic
// and logged at info; everything else is an error.
func (l *Ledger) fail(span trace.Span, op string, err error, fields ...zap.Field) {
	if kind := KindOf(err); kind != "" {
		l.metrics.OperationRejected(op, string(kind))
		span.SetAttributes(attribute.String("ledger.rejection", string(kind)))
		l.logger.Info(op+" rejected", append(fields, zap.String("reason", string(kind)))...)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	l.logger.Error(op+" failed", append(fields, zap.Error(err))...)
}

// publish emits an event for a committed write. The write already happened,
// so a publishing failure is logged and swallowed.
func (l *Ledger) publish(ctx context.Context, topic, key string, event any) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(context.WithoutCancel(ctx), topic, key, event); err != nil {
		l.logger.Warn("failed to publish ledger event",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
	}
}
