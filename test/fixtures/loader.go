// Package fixtures loads canned ABIs and node responses shared by the
// integration and e2e tests.
package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Dir returns the absolute path to the fixtures directory.
func Dir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// ABIPath returns the path of a fixture ABI file.
func ABIPath(filename string) string {
	return filepath.Join(Dir(), "abis", filename)
}

// LoadABI loads a fixture ABI JSON file and returns its raw bytes.
func LoadABI(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(ABIPath(filename))
	require.NoError(t, err, "failed to load fixture ABI: %s", filename)
	return data
}

// LoadRPCResult loads a fixture JSON-RPC result, e.g. a transaction receipt.
func LoadRPCResult(t *testing.T, filename string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(Dir(), "rpc", filename))
	require.NoError(t, err, "failed to load fixture RPC result: %s", filename)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &res))
	return res
}
