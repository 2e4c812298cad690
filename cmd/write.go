package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/txflow"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

var writeShort = map[string]string{
	contract.OpMint:              "Mint tokens to a recipient (owner only)",
	contract.OpTransfer:          "Transfer tokens from the connected account",
	contract.OpTransferFrom:      "Transfer tokens from an owner using an allowance",
	contract.OpApprove:           "Set a spender's allowance",
	contract.OpIncreaseAllowance: "Raise a spender's allowance",
	contract.OpDecreaseAllowance: "Lower a spender's allowance",
	contract.OpBurn:              "Burn tokens held by the connected account",
	contract.OpInitOwnership:     "Nominate a new owner",
	contract.OpClaimOwnership:    "Accept a pending ownership nomination",
}

// commandName turns an operation into its command name: transfer_from ->
// transfer-from.
func commandName(op string) string { return strings.ReplaceAll(op, "_", "-") }

func writeCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(contract.WriteOperations))
	for _, op := range contract.WriteOperations {
		params := contract.OperationParams(op)
		use := commandName(op)
		for _, p := range params {
			use += " <" + strings.ReplaceAll(p, " ", "-") + ">"
		}
		cmds = append(cmds, &cobra.Command{
			Use:   use,
			Short: writeShort[op],
			Long: writeShort[op] + `.

Requires a connected wallet (stark20 connect). Amounts are integers in the
token's smallest unit, decimal or 0x-hex. The command waits for the
transaction to be accepted and prints the decoded event.`,
			Args: cobra.ExactArgs(len(params)),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				t, err := openToken(ctx, true, func() error { return contract.CheckArgs(op, args...) })
				if err != nil {
					return err
				}
				defer t.Close()

				outcome, err := submitAndConfirm(ctx, t, cmd.ErrOrStderr(), op, args)
				if err != nil {
					return err
				}
				return reportOutcome(out(cmd), outcome)
			},
		})
	}
	return cmds
}

// submitAndConfirm sends op through the wallet and waits for its outcome
// behind a spinner.
func submitAndConfirm(ctx context.Context, t *token, spinOut io.Writer, op string, args []string) (*txflow.Outcome, error) {
	sp := ui.NewSpinnerTo(spinOut, "Waiting for wallet approval of "+op+"…")
	sp.Start()
	defer sp.Stop()

	tx, err := t.gateway.Submit(ctx, op, args...)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("tx", tx.Hash).Str("op", op).Msg("submitted")

	progress := func(tr txflow.Transition) {
		switch tr.To {
		case txflow.Pending:
			sp.Update("Waiting for " + ui.TruncateAddr(tx.Hash) + " to be accepted…")
		case txflow.Confirmed:
			sp.Update("Decoding events of " + ui.TruncateAddr(tx.Hash) + "…")
		}
	}
	return t.pipeline(progress).Confirm(ctx, *tx), nil
}

// reportOutcome prints a succeeded outcome or returns its error.
func reportOutcome(w io.Writer, o *txflow.Outcome) error {
	if !o.Succeeded() {
		return o.Err
	}
	notifier.Notify(ui.SeveritySuccess, o.Message)
	fmt.Fprintln(w, ui.Meta("tx "+o.Tx.Hash))
	return nil
}
