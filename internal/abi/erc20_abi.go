package abi

// Qualified names of the token contract's events.
const (
	EventTransfer  = "starknet_erc20::erc_20::ERC20::Transfer"
	EventApproval  = "starknet_erc20::erc_20::ERC20::Approval"
	EventMint      = "starknet_erc20::erc_20::ERC20::Mint"
	EventBurnt     = "starknet_erc20::erc_20::ERC20::Burnt"
	EventOwnership = "starknet_erc20::erc_20::ERC20::Ownership"
)

// erc20 is the interface of starknet_erc20::erc_20::ERC20, a Cairo 1 ERC-20
// with owner-only mint, burn and two-step ownership transfer.
//
// Functions (view):     name symbol decimals total_supply balance_of allowance owner
// Functions (external): mint transfer transfer_from approve burn
//
//	increase_allowance decrease_allowance init_ownership claim_ownership
func init() {
	RegisterBuiltin(Builtin{
		ID:          "erc20",
		Name:        "Starknet ERC-20 (mint/burn/ownership)",
		Description: "starknet_erc20::erc_20::ERC20 deployed token interface.",
		Entries:     erc20ABI,
	})
}

func fn(name, mutability string, inputs []Param, outputs ...string) Entry {
	e := Entry{Type: TypeFunction, Name: name, Inputs: inputs, StateMutability: mutability}
	for _, o := range outputs {
		e.Outputs = append(e.Outputs, Output{Type: o})
	}
	return e
}

func addr(name string) Param { return Param{Name: name, Type: TypeAddress} }
func u256(name string) Param { return Param{Name: name, Type: TypeU256} }

var erc20ABI = []Entry{
	{Type: TypeImpl, Name: "ERC20", InterfaceName: "starknet_erc20::erc_20::ERC20Trait"},
	{
		Type: TypeStruct, Name: TypeU256,
		Members: []Member{{Name: "low", Type: TypeU128}, {Name: "high", Type: TypeU128}},
	},
	{
		Type: TypeInterface, Name: "starknet_erc20::erc_20::ERC20Trait",
		Items: []Entry{
			// ── Read ─────────────────────────────────────────────────────────
			fn("name", View, nil, TypeFelt),
			fn("symbol", View, nil, TypeFelt),
			fn("decimals", View, nil, TypeU8),
			fn("total_supply", View, nil, TypeU256),
			fn("balance_of", View, []Param{addr("account")}, TypeU256),
			fn("allowance", View, []Param{addr("owner"), addr("spender")}, TypeU256),
			fn("owner", View, nil, TypeAddress),

			// ── Write ────────────────────────────────────────────────────────
			fn("mint", External, []Param{addr("account"), u256("amount")}),
			fn("transfer", External, []Param{addr("recipient"), u256("amount")}),
			fn("transfer_from", External, []Param{addr("owner"), addr("recipient"), u256("amount")}),
			fn("approve", External, []Param{addr("spender"), u256("amount")}),
			fn("burn", External, []Param{u256("amount")}),
			fn("increase_allowance", External, []Param{addr("spender"), u256("added_amount")}),
			fn("decrease_allowance", External, []Param{addr("spender"), u256("sub_amount")}),
			fn("init_ownership", External, []Param{addr("_pre_owner")}),
			fn("claim_ownership", External, nil),
		},
	},
	{
		Type: TypeConstructor, Name: "constructor",
		Inputs: []Param{addr("owner"), {Name: "name", Type: TypeFelt}, {Name: "symbol", Type: TypeFelt}},
	},

	// ── Events ───────────────────────────────────────────────────────────────
	{
		Type: TypeEvent, Name: EventTransfer, Kind: KindStruct,
		Members: []Member{
			{Name: "sender", Type: TypeAddress, Kind: KindKey},
			{Name: "receiver", Type: TypeAddress, Kind: KindKey},
			{Name: "amount", Type: TypeU256, Kind: KindData},
		},
	},
	{
		Type: TypeEvent, Name: EventApproval, Kind: KindStruct,
		Members: []Member{
			{Name: "owner", Type: TypeAddress, Kind: KindKey},
			{Name: "spender", Type: TypeAddress, Kind: KindKey},
			{Name: "value", Type: TypeU256, Kind: KindData},
		},
	},
	{
		Type: TypeEvent, Name: EventMint, Kind: KindStruct,
		Members: []Member{
			{Name: "receiver", Type: TypeAddress, Kind: KindKey},
			{Name: "amount", Type: TypeU256, Kind: KindData},
		},
	},
	{
		Type: TypeEvent, Name: EventBurnt, Kind: KindStruct,
		Members: []Member{
			{Name: "burner", Type: TypeAddress, Kind: KindKey},
			{Name: "value", Type: TypeU256, Kind: KindData},
		},
	},
	{
		Type: TypeEvent, Name: EventOwnership, Kind: KindStruct,
		Members: []Member{
			{Name: "current_owner", Type: TypeAddress, Kind: KindKey},
			{Name: "prev_owner", Type: TypeAddress, Kind: KindKey},
		},
	},
	{
		Type: TypeEvent, Name: "starknet_erc20::erc_20::ERC20::Event", Kind: KindEnum,
		Variants: []Variant{
			{Name: "Transfer", Type: EventTransfer, Kind: KindNested},
			{Name: "Approval", Type: EventApproval, Kind: KindNested},
			{Name: "Mint", Type: EventMint, Kind: KindNested},
			{Name: "Burnt", Type: EventBurnt, Kind: KindNested},
			{Name: "Ownership", Type: EventOwnership, Kind: KindNested},
		},
	},
}
