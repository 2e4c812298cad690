package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

// Errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrWrongMutability  = errors.New("function has the wrong mutability")
	ErrCalldataShape    = errors.New("argument count does not match the interface")
	ErrMalformedResult  = errors.New("malformed call result")
	ErrNoDescriptor     = errors.New("no interface descriptor")
	ErrUnknownOperation = errors.New("unknown operation")
)

// RPCError is a node or wallet failure during a contract call.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *RPCError) Unwrap() error { return e.Err }

// Reader executes read-only calls. *starknet.Client satisfies it.
type Reader interface {
	Call(ctx context.Context, call starknet.FunctionCall) ([]*big.Int, error)
}

// Invoker submits state-changing calls with the user's signing session.
type Invoker interface {
	Invoke(ctx context.Context, call starknet.FunctionCall) (string, error)
}

// PendingTx is a submitted, not yet confirmed, write call.
type PendingTx struct {
	Hash        string
	Operation   string
	Contract    *big.Int
	SubmittedAt time.Time
}

// Gateway is a typed facade over one deployed token contract.
type Gateway struct {
	desc    *abi.Descriptor
	address *big.Int
	reader  Reader
	invoker Invoker
}

// New binds a descriptor and contract address to the given executors. Either
// executor may be nil; operations needing a missing one fail with
// ErrNotConnected.
func New(desc *abi.Descriptor, address string, reader Reader, invoker Invoker) (*Gateway, error) {
	if desc == nil {
		return nil, ErrNoDescriptor
	}
	addr, err := felt.ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("contract %w", err)
	}
	return &Gateway{desc: desc, address: addr, reader: reader, invoker: invoker}, nil
}

// Address returns the bound contract address.
func (g *Gateway) Address() *big.Int { return new(big.Int).Set(g.address) }

// Descriptor returns the bound interface descriptor.
func (g *Gateway) Descriptor() *abi.Descriptor { return g.desc }

// CanWrite reports whether a signing session is bound.
func (g *Gateway) CanWrite() bool { return g.invoker != nil }

// read validates and executes a view call.
func (g *Gateway) read(ctx context.Context, name string, args ...*big.Int) ([]*big.Int, error) {
	if g.reader == nil {
		return nil, ErrNotConnected
	}
	fn, err := g.validate(name, abi.View, args)
	if err != nil {
		return nil, err
	}
	out, err := g.reader.Call(ctx, starknet.FunctionCall{
		ContractAddress: g.address,
		EntryPoint:      name,
		Calldata:        args,
	})
	if err != nil {
		return nil, &RPCError{Op: name, Err: err}
	}
	want := 0
	for _, o := range fn.Outputs {
		w, err := abi.TypeWidth(o.Type)
		if err != nil {
			return nil, fmt.Errorf("%s output: %w", name, err)
		}
		want += w
	}
	if len(out) < want {
		return nil, fmt.Errorf("%s: %w: got %d felts, want %d", name, ErrMalformedResult, len(out), want)
	}
	return out, nil
}

// write validates and submits an external call.
func (g *Gateway) write(ctx context.Context, name string, args []*big.Int) (*PendingTx, error) {
	if g.invoker == nil {
		return nil, ErrNotConnected
	}
	if _, err := g.validate(name, abi.External, args); err != nil {
		return nil, err
	}
	hash, err := g.invoker.Invoke(ctx, starknet.FunctionCall{
		ContractAddress: g.address,
		EntryPoint:      name,
		Calldata:        args,
	})
	if err != nil {
		return nil, &RPCError{Op: name, Err: err}
	}
	return &PendingTx{Hash: hash, Operation: name, Contract: g.Address(), SubmittedAt: time.Now().UTC()}, nil
}

func (g *Gateway) validate(name, mutability string, args []*big.Int) (*abi.Entry, error) {
	fn, err := g.desc.Function(name)
	if err != nil {
		return nil, err
	}
	if fn.StateMutability != mutability {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrWrongMutability, fn.StateMutability)
	}
	width, err := g.desc.CalldataWidth(fn)
	if err != nil {
		return nil, err
	}
	if width != len(args) {
		return nil, fmt.Errorf("%s: %w: %d felts, want %d", name, ErrCalldataShape, len(args), width)
	}
	return fn, nil
}

// calldata accumulates encoded arguments, keeping the first error.
type calldata struct {
	felts []*big.Int
	err   error
}

func (c *calldata) address(field, s string) {
	if c.err != nil {
		return
	}
	a, err := felt.ParseAddress(s)
	if err != nil {
		c.err = fmt.Errorf("%s: %w", field, err)
		return
	}
	c.felts = append(c.felts, a)
}

func (c *calldata) amount(field, s string) {
	if c.err != nil {
		return
	}
	w, err := felt.ParseWide(s)
	if err != nil {
		c.err = fmt.Errorf("%s: %w", field, err)
		return
	}
	c.felts = append(c.felts, w.Felts()...)
}
