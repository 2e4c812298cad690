package txflow

import (
	"fmt"

	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/felt"
)

// Message renders the confirmation shown to the user for a succeeded
// operation.
func Message(op string, ev contract.Event) string {
	switch e := ev.(type) {
	case contract.MintEvent:
		return fmt.Sprintf("%s tokens have been minted to %s", felt.DecodeWide(e.Amount), felt.FormatAddress(e.Receiver))
	case contract.TransferEvent:
		return fmt.Sprintf("%s tokens have been transferred to %s", felt.DecodeWide(e.Amount), felt.FormatAddress(e.Receiver))
	case contract.ApprovalEvent:
		spender, value := felt.FormatAddress(e.Spender), felt.DecodeWide(e.Value)
		switch op {
		case contract.OpIncreaseAllowance:
			return fmt.Sprintf("allowance of %s raised to %s", spender, value)
		case contract.OpDecreaseAllowance:
			return fmt.Sprintf("allowance of %s lowered to %s", spender, value)
		}
		return fmt.Sprintf("%s is approved to spend %s", spender, value)
	case contract.BurntEvent:
		return fmt.Sprintf("%s token(s) burnt", felt.DecodeWide(e.Value))
	case contract.OwnershipEvent:
		return fmt.Sprintf("%s transferred ownership to %s", felt.FormatAddress(e.PrevOwner), felt.FormatAddress(e.CurrentOwner))
	}
	if op == contract.OpInitOwnership {
		return "transfer of ownership initiated successfully"
	}
	return op + " confirmed"
}
