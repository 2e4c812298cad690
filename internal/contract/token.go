package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
)

// Operation names, as declared by the contract interface.
const (
	OpMint              = "mint"
	OpTransfer          = "transfer"
	OpTransferFrom      = "transfer_from"
	OpApprove           = "approve"
	OpIncreaseAllowance = "increase_allowance"
	OpDecreaseAllowance = "decrease_allowance"
	OpBurn              = "burn"
	OpInitOwnership     = "init_ownership"
	OpClaimOwnership    = "claim_ownership"
)

// WriteOperations lists every state-changing operation in menu order.
var WriteOperations = []string{
	OpMint, OpTransfer, OpTransferFrom, OpApprove, OpIncreaseAllowance,
	OpDecreaseAllowance, OpBurn, OpInitOwnership, OpClaimOwnership,
}

var expectedEvents = map[string]string{
	OpMint:              abi.EventMint,
	OpTransfer:          abi.EventTransfer,
	OpTransferFrom:      abi.EventTransfer,
	OpApprove:           abi.EventApproval,
	OpIncreaseAllowance: abi.EventApproval,
	OpDecreaseAllowance: abi.EventApproval,
	OpBurn:              abi.EventBurnt,
	OpClaimOwnership:    abi.EventOwnership,
}

// ExpectedEvent returns the qualified event an operation documents. ok is
// false for operations that emit nothing (init_ownership) or are unknown.
func ExpectedEvent(op string) (string, bool) {
	ev, ok := expectedEvents[op]
	return ev, ok
}

// IsWriteOperation reports whether op is one of WriteOperations.
func IsWriteOperation(op string) bool {
	for _, w := range WriteOperations {
		if w == op {
			return true
		}
	}
	return false
}

// ── Read ─────────────────────────────────────────────────────────────────────

// Name returns the token name. A malformed packed value yields an error
// wrapping felt.ErrDecode; callers display a placeholder.
func (g *Gateway) Name(ctx context.Context) (string, error) {
	return g.shortText(ctx, "name")
}

// Symbol returns the token symbol.
func (g *Gateway) Symbol(ctx context.Context) (string, error) {
	return g.shortText(ctx, "symbol")
}

// Decimals returns the token decimals.
func (g *Gateway) Decimals(ctx context.Context) (uint8, error) {
	out, err := g.read(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	if !out[0].IsUint64() || out[0].Uint64() > 255 {
		return 0, fmt.Errorf("decimals: %w: %s", ErrMalformedResult, out[0])
	}
	return uint8(out[0].Uint64()), nil
}

// TotalSupply returns the total token supply.
func (g *Gateway) TotalSupply(ctx context.Context) (felt.U256, error) {
	return g.wide(ctx, "total_supply")
}

// Owner returns the current contract owner.
func (g *Gateway) Owner(ctx context.Context) (string, error) {
	out, err := g.read(ctx, "owner")
	if err != nil {
		return "", err
	}
	return felt.FormatAddress(out[0]), nil
}

// BalanceOf returns the balance of account.
func (g *Gateway) BalanceOf(ctx context.Context, account string) (felt.U256, error) {
	var cd calldata
	cd.address("account", account)
	if cd.err != nil {
		return felt.U256{}, cd.err
	}
	return g.wide(ctx, "balance_of", cd.felts...)
}

// Allowance returns how much spender may move on behalf of owner.
func (g *Gateway) Allowance(ctx context.Context, owner, spender string) (felt.U256, error) {
	var cd calldata
	cd.address("owner", owner)
	cd.address("spender", spender)
	if cd.err != nil {
		return felt.U256{}, cd.err
	}
	return g.wide(ctx, "allowance", cd.felts...)
}

func (g *Gateway) shortText(ctx context.Context, name string) (string, error) {
	out, err := g.read(ctx, name)
	if err != nil {
		return "", err
	}
	s, err := felt.DecodeShortText(out[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func (g *Gateway) wide(ctx context.Context, name string, args ...*big.Int) (felt.U256, error) {
	out, err := g.read(ctx, name, args...)
	if err != nil {
		return felt.U256{}, err
	}
	w, err := felt.U256FromFelts(out[0], out[1])
	if err != nil {
		return felt.U256{}, fmt.Errorf("%s: %w", name, err)
	}
	return w, nil
}

// ── Write ────────────────────────────────────────────────────────────────────
//
// Every write checks the signing session before touching its arguments, so a
// disconnected caller gets ErrNotConnected and nothing is encoded or sent.

// Mint creates amount new tokens for recipient. Owner only.
func (g *Gateway) Mint(ctx context.Context, recipient, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpMint, func(cd *calldata) {
		cd.address("recipient", recipient)
		cd.amount("amount", amount)
	})
}

// Transfer moves amount from the caller to recipient.
func (g *Gateway) Transfer(ctx context.Context, recipient, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpTransfer, func(cd *calldata) {
		cd.address("recipient", recipient)
		cd.amount("amount", amount)
	})
}

// TransferFrom moves amount from owner to recipient using the caller's allowance.
func (g *Gateway) TransferFrom(ctx context.Context, owner, recipient, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpTransferFrom, func(cd *calldata) {
		cd.address("owner", owner)
		cd.address("recipient", recipient)
		cd.amount("amount", amount)
	})
}

// Approve sets the allowance of spender to amount.
func (g *Gateway) Approve(ctx context.Context, spender, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpApprove, func(cd *calldata) {
		cd.address("spender", spender)
		cd.amount("amount", amount)
	})
}

// IncreaseAllowance adds amount to the allowance of spender.
func (g *Gateway) IncreaseAllowance(ctx context.Context, spender, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpIncreaseAllowance, func(cd *calldata) {
		cd.address("spender", spender)
		cd.amount("added_amount", amount)
	})
}

// DecreaseAllowance subtracts amount from the allowance of spender.
func (g *Gateway) DecreaseAllowance(ctx context.Context, spender, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpDecreaseAllowance, func(cd *calldata) {
		cd.address("spender", spender)
		cd.amount("sub_amount", amount)
	})
}

// Burn destroys amount of the caller's tokens.
func (g *Gateway) Burn(ctx context.Context, amount string) (*PendingTx, error) {
	return g.submit(ctx, OpBurn, func(cd *calldata) {
		cd.amount("amount", amount)
	})
}

// InitOwnership nominates newOwner. The nominee completes the handover with
// ClaimOwnership.
func (g *Gateway) InitOwnership(ctx context.Context, newOwner string) (*PendingTx, error) {
	return g.submit(ctx, OpInitOwnership, func(cd *calldata) {
		cd.address("new owner", newOwner)
	})
}

// ClaimOwnership accepts a pending ownership nomination.
func (g *Gateway) ClaimOwnership(ctx context.Context) (*PendingTx, error) {
	return g.submit(ctx, OpClaimOwnership, func(*calldata) {})
}

func (g *Gateway) submit(ctx context.Context, op string, encode func(*calldata)) (*PendingTx, error) {
	if g.invoker == nil {
		return nil, ErrNotConnected
	}
	var cd calldata
	encode(&cd)
	if cd.err != nil {
		return nil, cd.err
	}
	return g.write(ctx, op, cd.felts)
}

// Submit dispatches a write operation by name. args are the operation's
// user-facing arguments in interface order: addresses then amount.
func (g *Gateway) Submit(ctx context.Context, op string, args ...string) (*PendingTx, error) {
	want, ok := operationArity[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	if g.invoker == nil {
		return nil, ErrNotConnected
	}
	if len(args) != want {
		return nil, fmt.Errorf("%s: %w: %d arguments, want %d", op, ErrCalldataShape, len(args), want)
	}
	switch op {
	case OpMint:
		return g.Mint(ctx, args[0], args[1])
	case OpTransfer:
		return g.Transfer(ctx, args[0], args[1])
	case OpTransferFrom:
		return g.TransferFrom(ctx, args[0], args[1], args[2])
	case OpApprove:
		return g.Approve(ctx, args[0], args[1])
	case OpIncreaseAllowance:
		return g.IncreaseAllowance(ctx, args[0], args[1])
	case OpDecreaseAllowance:
		return g.DecreaseAllowance(ctx, args[0], args[1])
	case OpBurn:
		return g.Burn(ctx, args[0])
	case OpInitOwnership:
		return g.InitOwnership(ctx, args[0])
	default:
		return g.ClaimOwnership(ctx)
	}
}

// CheckArgs validates the user-facing arguments of a write operation without
// touching the network: the argument count, then every address and amount.
func CheckArgs(op string, args ...string) error {
	want, ok := operationArity[op]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	if len(args) != want {
		return fmt.Errorf("%s: %w: %d arguments, want %d", op, ErrCalldataShape, len(args), want)
	}
	var cd calldata
	for i, p := range OperationParams(op) {
		if p == "amount" {
			cd.amount(p, args[i])
		} else {
			cd.address(p, args[i])
		}
	}
	return cd.err
}

var operationArity = map[string]int{
	OpMint: 2, OpTransfer: 2, OpTransferFrom: 3, OpApprove: 2,
	OpIncreaseAllowance: 2, OpDecreaseAllowance: 2, OpBurn: 1,
	OpInitOwnership: 1, OpClaimOwnership: 0,
}

// OperationParams returns the user-facing argument labels of a write operation.
func OperationParams(op string) []string {
	switch op {
	case OpMint, OpTransfer:
		return []string{"recipient", "amount"}
	case OpTransferFrom:
		return []string{"owner", "recipient", "amount"}
	case OpApprove, OpIncreaseAllowance, OpDecreaseAllowance:
		return []string{"spender", "amount"}
	case OpBurn:
		return []string{"amount"}
	case OpInitOwnership:
		return []string{"new owner"}
	}
	return nil
}
