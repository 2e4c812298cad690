package txflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

// Defaults used when a Pipeline is built without explicit timings.
const (
	DefaultConfirmTimeout = 3 * time.Minute
	DefaultPollInterval   = 2 * time.Second
)

// ReceiptWaiter blocks until a transaction is final. *starknet.Client
// satisfies it.
type ReceiptWaiter interface {
	WaitForReceipt(ctx context.Context, hash string, interval time.Duration) (*starknet.Receipt, error)
}

// Transition is reported to observers on every state change.
type Transition struct {
	Tx      contract.PendingTx
	From    State
	To      State
	At      time.Time
	Outcome *Outcome // set once To is terminal
}

// Observer receives transitions in order. Observers run synchronously on the
// confirming goroutine.
type Observer func(Transition)

// Outcome is the terminal result of Confirm.
type Outcome struct {
	Tx      contract.PendingTx
	State   State
	Receipt *starknet.Receipt
	Event   contract.Event // nil for operations that document no event
	Message string
	Err     error
}

// Succeeded reports whether the pipeline ended in Succeeded.
func (o *Outcome) Succeeded() bool { return o.State == Succeeded }

// Pipeline drives a submitted call to a terminal state. It never retries.
type Pipeline struct {
	receipts  ReceiptWaiter
	gateway   *contract.Gateway
	timeout   time.Duration
	interval  time.Duration
	log       zerolog.Logger
	observers []Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds the wait for finality.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPollInterval sets the receipt polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, o) }
}

// New creates a pipeline that confirms calls made through gateway.
func New(receipts ReceiptWaiter, gateway *contract.Gateway, opts ...Option) *Pipeline {
	p := &Pipeline{
		receipts: receipts,
		gateway:  gateway,
		timeout:  DefaultConfirmTimeout,
		interval: DefaultPollInterval,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Confirm waits for tx to become final, extracts the operation's event and
// renders the result. The returned Outcome is always terminal.
func (p *Pipeline) Confirm(ctx context.Context, tx contract.PendingTx) *Outcome {
	r := run{p: p, tx: tx, state: Submitted}
	log := p.log.With().Str("tx", tx.Hash).Str("op", tx.Operation).Logger()

	r.move(Pending)
	waitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	receipt, err := p.receipts.WaitForReceipt(waitCtx, tx.Hash, p.interval)
	if err != nil {
		log.Error().Err(err).Msg("finality wait failed")
		return r.fail(&ConfirmationError{Hash: tx.Hash, Err: err})
	}
	if receipt.Reverted() {
		log.Warn().Str("reason", receipt.RevertReason).Msg("transaction reverted")
		return r.fail(&ConfirmationError{Hash: tx.Hash, Reason: receipt.RevertReason, Err: ErrReverted})
	}
	r.receipt = receipt
	r.move(Confirmed)
	log.Debug().Str("finality", receipt.FinalityStatus).Int("events", len(receipt.Events)).Msg("receipt confirmed")

	expected, ok := contract.ExpectedEvent(tx.Operation)
	if !ok {
		if !contract.IsWriteOperation(tx.Operation) {
			return r.fail(fmt.Errorf("%w: %s", contract.ErrUnknownOperation, tx.Operation))
		}
		return r.succeed(nil, log)
	}

	ev, err := p.findEvent(receipt, expected)
	if err != nil {
		log.Warn().Err(err).Str("event", expected).Msg("expected event missing")
		return r.fail(&EventNotFoundError{Hash: tx.Hash, Operation: tx.Operation, Event: expected, Err: err})
	}
	if ev == nil {
		log.Warn().Str("event", expected).Msg("expected event missing")
		return r.fail(&EventNotFoundError{Hash: tx.Hash, Operation: tx.Operation, Event: expected})
	}
	return r.succeed(ev, log)
}

// findEvent returns the first event emitted by the gateway's contract whose
// qualified name is expected. Events from other contracts, such as the fee
// token's Transfer, are skipped.
func (p *Pipeline) findEvent(receipt *starknet.Receipt, expected string) (contract.Event, error) {
	addr := p.gateway.Address()
	for _, raw := range receipt.Events {
		if !raw.EmittedBy(addr) {
			continue
		}
		name, ok := p.gateway.EventName(raw)
		if !ok || name != expected {
			continue
		}
		return p.gateway.DecodeEvent(raw)
	}
	return nil, nil
}

// run tracks one Confirm call.
type run struct {
	p       *Pipeline
	tx      contract.PendingTx
	state   State
	receipt *starknet.Receipt
}

func (r *run) move(to State) {
	r.emit(to, nil)
}

func (r *run) emit(to State, o *Outcome) {
	from := r.state
	if !canTransition(from, to) {
		panic(fmt.Sprintf("txflow: illegal transition %s -> %s", from, to))
	}
	r.state = to
	t := Transition{Tx: r.tx, From: from, To: to, At: time.Now().UTC(), Outcome: o}
	for _, obs := range r.p.observers {
		obs(t)
	}
}

func (r *run) fail(err error) *Outcome {
	o := &Outcome{Tx: r.tx, State: Failed, Receipt: r.receipt, Err: err}
	r.emit(Failed, o)
	return o
}

func (r *run) succeed(ev contract.Event, log zerolog.Logger) *Outcome {
	o := &Outcome{Tx: r.tx, State: Succeeded, Receipt: r.receipt, Event: ev, Message: Message(r.tx.Operation, ev)}
	r.emit(Succeeded, o)
	log.Info().Msg(o.Message)
	return o
}
