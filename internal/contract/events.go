package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

// Event decoding errors.
var (
	ErrUnknownEvent   = errors.New("event not declared by the interface")
	ErrMalformedEvent = errors.New("malformed event")
)

// Event is a decoded token event. The concrete type is one of TransferEvent,
// ApprovalEvent, MintEvent, BurntEvent or OwnershipEvent.
type Event interface {
	EventName() string
	// Fields renders members for display: addresses in hex, amounts in decimal.
	Fields() map[string]string
}

// TransferEvent is emitted by transfer and transfer_from.
type TransferEvent struct {
	Sender   *big.Int
	Receiver *big.Int
	Amount   felt.U256
}

// ApprovalEvent is emitted by approve and the allowance adjustments.
type ApprovalEvent struct {
	Owner   *big.Int
	Spender *big.Int
	Value   felt.U256
}

// MintEvent is emitted by mint.
type MintEvent struct {
	Receiver *big.Int
	Amount   felt.U256
}

// BurntEvent is emitted by burn.
type BurntEvent struct {
	Burner *big.Int
	Value  felt.U256
}

// OwnershipEvent is emitted by claim_ownership.
type OwnershipEvent struct {
	CurrentOwner *big.Int
	PrevOwner    *big.Int
}

func (TransferEvent) EventName() string  { return abi.EventTransfer }
func (ApprovalEvent) EventName() string  { return abi.EventApproval }
func (MintEvent) EventName() string      { return abi.EventMint }
func (BurntEvent) EventName() string     { return abi.EventBurnt }
func (OwnershipEvent) EventName() string { return abi.EventOwnership }

func (e TransferEvent) Fields() map[string]string {
	return map[string]string{
		"sender":   felt.FormatAddress(e.Sender),
		"receiver": felt.FormatAddress(e.Receiver),
		"amount":   felt.DecodeWide(e.Amount),
	}
}

func (e ApprovalEvent) Fields() map[string]string {
	return map[string]string{
		"owner":   felt.FormatAddress(e.Owner),
		"spender": felt.FormatAddress(e.Spender),
		"value":   felt.DecodeWide(e.Value),
	}
}

func (e MintEvent) Fields() map[string]string {
	return map[string]string{
		"receiver": felt.FormatAddress(e.Receiver),
		"amount":   felt.DecodeWide(e.Amount),
	}
}

func (e BurntEvent) Fields() map[string]string {
	return map[string]string{
		"burner": felt.FormatAddress(e.Burner),
		"value":  felt.DecodeWide(e.Value),
	}
}

func (e OwnershipEvent) Fields() map[string]string {
	return map[string]string{
		"current_owner": felt.FormatAddress(e.CurrentOwner),
		"prev_owner":    felt.FormatAddress(e.PrevOwner),
	}
}

// EventName resolves the qualified name of a raw event from its selector key.
func (g *Gateway) EventName(ev starknet.Event) (string, bool) {
	return g.desc.EventNameForKey(ev.Selector())
}

// DecodeEvent decodes a raw receipt event into its typed variant, reading
// key members from Keys[1:] and data members from Data in declaration order.
func (g *Gateway) DecodeEvent(ev starknet.Event) (Event, error) {
	return DecodeEvent(g.desc, ev)
}

// DecodeEvent is Gateway.DecodeEvent for a bare descriptor.
func DecodeEvent(desc *abi.Descriptor, ev starknet.Event) (Event, error) {
	name, ok := desc.EventNameForKey(ev.Selector())
	if !ok {
		return nil, ErrUnknownEvent
	}
	entry, err := desc.Event(name)
	if err != nil {
		return nil, err
	}

	f := fields{name: abi.ShortName(name), values: make(map[string][]*big.Int)}
	if err := f.take(entry.KeyMembers(), ev.Keys[1:]); err != nil {
		return nil, err
	}
	if err := f.take(entry.DataMembers(), ev.Data); err != nil {
		return nil, err
	}

	var out Event
	switch name {
	case abi.EventTransfer:
		out = TransferEvent{Sender: f.felt("sender"), Receiver: f.felt("receiver"), Amount: f.wide("amount")}
	case abi.EventApproval:
		out = ApprovalEvent{Owner: f.felt("owner"), Spender: f.felt("spender"), Value: f.wide("value")}
	case abi.EventMint:
		out = MintEvent{Receiver: f.felt("receiver"), Amount: f.wide("amount")}
	case abi.EventBurnt:
		out = BurntEvent{Burner: f.felt("burner"), Value: f.wide("value")}
	case abi.EventOwnership:
		out = OwnershipEvent{CurrentOwner: f.felt("current_owner"), PrevOwner: f.felt("prev_owner")}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	if f.err != nil {
		return nil, f.err
	}
	return out, nil
}

// fields holds the raw felts of each event member by name.
type fields struct {
	name   string
	values map[string][]*big.Int
	err    error
}

func (f *fields) take(members []abi.Member, raw []string) error {
	pos := 0
	for _, m := range members {
		w, err := abi.TypeWidth(m.Type)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", f.name, m.Name, err)
		}
		if pos+w > len(raw) {
			return fmt.Errorf("%s.%s: %w: payload too short", f.name, m.Name, ErrMalformedEvent)
		}
		vals, err := felt.ParseSlice(raw[pos : pos+w])
		if err != nil {
			return fmt.Errorf("%s.%s: %w: %v", f.name, m.Name, ErrMalformedEvent, err)
		}
		f.values[m.Name] = vals
		pos += w
	}
	return nil
}

func (f *fields) felt(member string) *big.Int {
	v, ok := f.values[member]
	if !ok || len(v) != 1 {
		f.fail(member)
		return nil
	}
	return v[0]
}

func (f *fields) wide(member string) felt.U256 {
	v, ok := f.values[member]
	if !ok || len(v) != 2 {
		f.fail(member)
		return felt.U256{}
	}
	w, err := felt.U256FromFelts(v[0], v[1])
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s.%s: %w", f.name, member, err)
	}
	return w
}

func (f *fields) fail(member string) {
	if f.err == nil {
		f.err = fmt.Errorf("%s.%s: %w: member missing", f.name, member, ErrMalformedEvent)
	}
}
