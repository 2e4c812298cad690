package e2e_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stark20/test/fixtures"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "stark20-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "stark20")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

// runCLI runs the binary with an isolated config dir, session cache and
// bridge token so the OS keychain is never touched.
func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"STARK20_CONFIG_DIR="+configDir,
		"XDG_CACHE_HOME="+filepath.Join(configDir, "cache"),
		"STARK20_WALLET_TOKEN=e2e",
		"STARK20_RPC_URL=",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "stark20")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	for _, want := range []string{"balance", "allowance", "mint", "transfer-from", "claim-ownership", "connect", "txs", "studio", "--rpc", "--contract"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteHelpShowsParams(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "transfer-from", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "transfer-from <owner> <recipient> <amount>")
}

func TestReadWithoutRPCFails(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "name")
	assert.Error(t, err)
	assert.Contains(t, out, "STARK20_RPC_URL")
}

func TestTransferWithoutWalletAsksToConnect(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "transfer", "0x456", "10")
	assert.Error(t, err)
	assert.Contains(t, out, "Connect wallet!")
}

func TestStatusWithoutWallet(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No wallet connected")
	assert.Contains(t, out, "0x70662f85e0d54ca2c90d9ccb7afb905a069a1e154b8c2615a7ac265fc51516d")
}

func TestConfigSetRPCPersists(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-rpc", "https://starknet-sepolia.example/rpc")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	var file map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Equal(t, "https://starknet-sepolia.example/rpc", file["rpc_url"])

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigAlgorithm(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-algorithm", "round-robin")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "round-robin")

	_, err = runCLI(t, dir, "config", "set-algorithm", "random")
	assert.Error(t, err)
}

func TestRPCList(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-rpc", "https://primary.example")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "config", "add-rpc", "https://backup.example")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "rpc", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "https://primary.example")
	assert.Contains(t, out, "https://backup.example")
}

func TestContractFlagRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--rpc", "http://127.0.0.1:1", "--contract", "nope", "owner")
	assert.Error(t, err)
	assert.Contains(t, out, "contract_address")
}

func TestCustomABIFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "--abi", filepath.Join(dir, "missing.json"), "--rpc", "http://127.0.0.1:1", "symbol")
	assert.Error(t, err)

	// The fixture ABI parses; the read then fails only on the unreachable node.
	out, err := runCLI(t, dir, "--abi", fixtures.ABIPath("erc20.json"), "--rpc", "http://127.0.0.1:1", "symbol")
	assert.Error(t, err)
	assert.Contains(t, out, "network error")
}

func TestConvertCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "convert", "str-encode", "STRK")
	require.NoError(t, err)
	assert.Contains(t, out, "0x5354524b")

	out, err = runCLI(t, dir, "convert", "u256-split", "340282366920938463463374607431768211456")
	require.NoError(t, err)
	assert.Contains(t, out, "[0x0, 0x1]")

	out, err = runCLI(t, dir, "convert", "selector", "balance_of")
	require.NoError(t, err)
	assert.Contains(t, out, "0x")
}

func TestTxsEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "txs")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions yet")
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
