package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/rpc"
	"github.com/Mohsinsiddi/stark20/internal/txflow"
	"github.com/Mohsinsiddi/stark20/internal/wallet"
)

// Severity of a user notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// Notifier is the sink for transient user-facing messages.
type Notifier interface {
	Notify(sev Severity, msg string)
}

// Console writes styled notifications, one per line.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a notifier writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(sev Severity, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, render(sev, msg))
}

func render(sev Severity, msg string) string {
	switch sev {
	case SeveritySuccess:
		return Success(msg)
	case SeverityWarning:
		return Warn(msg)
	case SeverityError:
		return Err(msg)
	}
	return Info(msg)
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	Entries []Notification
}

// Notification is one recorded message.
type Notification struct {
	Severity Severity
	Message  string
}

func (r *Recorder) Notify(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Notification{Severity: sev, Message: msg})
}

// MsgConnectWallet prompts the user to open a session.
const MsgConnectWallet = "Connect wallet!"

// Classify maps an error to the severity and text shown to the user.
func Classify(err error) (Severity, string) {
	var (
		rpcErr     *contract.RPCError
		confirmErr *txflow.ConfirmationError
		eventErr   *txflow.EventNotFoundError
	)
	switch {
	case err == nil:
		return SeverityInfo, ""
	case errors.Is(err, contract.ErrNotConnected):
		return SeverityWarning, MsgConnectWallet
	case errors.Is(err, wallet.ErrUserRefused):
		return SeverityWarning, "request rejected in the wallet"
	case errors.Is(err, config.ErrMissingRPCURL):
		return SeverityError, err.Error()
	case errors.As(err, &eventErr):
		return SeverityWarning, eventErr.Error()
	case errors.As(err, &confirmErr):
		switch {
		case errors.Is(err, txflow.ErrReverted):
			return SeverityError, "transaction reverted: " + orDash(confirmErr.Reason)
		case errors.Is(err, context.DeadlineExceeded):
			return SeverityError, "timed out waiting for " + confirmErr.Hash + "; check it later with `stark20 txs`"
		}
		return SeverityError, "transaction failed: " + confirmErr.Error()
	case errors.Is(err, felt.ErrRange), errors.Is(err, felt.ErrValue), errors.Is(err, contract.ErrCalldataShape):
		return SeverityError, "invalid input: " + err.Error()
	case errors.Is(err, felt.ErrDecode):
		return SeverityWarning, err.Error()
	case errors.Is(err, rpc.ErrNoHealthyRPC):
		return SeverityError, err.Error()
	case errors.As(err, &rpcErr):
		return SeverityError, "network error: " + rpcErr.Error()
	}
	return SeverityError, err.Error()
}

// Report classifies err and sends it to n. A nil err is ignored.
func Report(n Notifier, err error) {
	if err == nil {
		return
	}
	n.Notify(Classify(err))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
