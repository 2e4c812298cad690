package config

import "time"

// DefaultContractAddress is the deployed starknet_erc20 token.
const DefaultContractAddress = "0x070662f85e0d54ca2c90d9ccb7afb905a069a1e154b8c2615a7ac265fc51516d"

// DefaultWalletURL is where a local wallet bridge listens by default.
const DefaultWalletURL = "http://127.0.0.1:5050"

// Timeouts used by cmd.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark
	ReadTimeout      = 30 * time.Second // a single view call
	ConnectTimeout   = 5 * time.Minute  // wallet connect prompt
	TxConfirmTimeout = 3 * time.Minute  // finality wait
	TxPollInterval   = 2 * time.Second
)

// EnvPrefix prefixes every environment override, e.g. STARK20_RPC_URL.
const EnvPrefix = "STARK20"
