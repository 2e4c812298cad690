package starknet

import (
	"math/big"

	"github.com/Mohsinsiddi/stark20/internal/felt"
)

// Execution and finality statuses.
const (
	ExecutionSucceeded = "SUCCEEDED"
	ExecutionReverted  = "REVERTED"

	FinalityAcceptedOnL2 = "ACCEPTED_ON_L2"
	FinalityAcceptedOnL1 = "ACCEPTED_ON_L1"
)

// Receipt is the subset of an invoke transaction receipt the client uses.
type Receipt struct {
	TransactionHash string  `json:"transaction_hash"`
	Type            string  `json:"type"`
	ExecutionStatus string  `json:"execution_status"`
	FinalityStatus  string  `json:"finality_status"`
	BlockHash       string  `json:"block_hash,omitempty"`
	BlockNumber     uint64  `json:"block_number,omitempty"`
	RevertReason    string  `json:"revert_reason,omitempty"`
	ActualFee       *Fee    `json:"actual_fee,omitempty"`
	Events          []Event `json:"events"`
}

// Fee is the fee actually charged for a transaction.
type Fee struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// Event is one emitted event, in receipt order.
type Event struct {
	FromAddress string   `json:"from_address"`
	Keys        []string `json:"keys"`
	Data        []string `json:"data"`
}

// Final reports whether the receipt has reached L2 or L1 acceptance.
func (r *Receipt) Final() bool {
	return r.FinalityStatus == FinalityAcceptedOnL2 || r.FinalityStatus == FinalityAcceptedOnL1
}

// Reverted reports whether execution failed.
func (r *Receipt) Reverted() bool {
	return r.ExecutionStatus == ExecutionReverted
}

// Selector returns keys[0], or nil when the event has no keys or it is malformed.
func (e Event) Selector() *big.Int {
	if len(e.Keys) == 0 {
		return nil
	}
	k, err := felt.ParseFelt(e.Keys[0])
	if err != nil {
		return nil
	}
	return k
}

// EmittedBy reports whether the event came from the contract at address.
func (e Event) EmittedBy(address *big.Int) bool {
	from, err := felt.ParseFelt(e.FromAddress)
	if err != nil || address == nil {
		return false
	}
	return from.Cmp(address) == 0
}
