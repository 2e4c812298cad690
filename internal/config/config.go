package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/rpc"
)

// ErrMissingRPCURL is the fatal startup error for an unset node endpoint.
var ErrMissingRPCURL = errors.New("node RPC URL is not configured (set rpc_url or STARK20_RPC_URL)")

const configFile = "config.json"

// Config is the user configuration stored in ~/.stark20/config.json and
// overridable through STARK20_* environment variables.
type Config struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	FallbackRPCs    []string      `mapstructure:"fallback_rpcs"`
	RPCAlgorithm    string        `mapstructure:"rpc_algorithm"`
	ContractAddress string        `mapstructure:"contract_address"`
	ABIFile         string        `mapstructure:"abi_file"`
	WalletURL       string        `mapstructure:"wallet_url"`
	ConfirmTimeout  time.Duration `mapstructure:"confirm_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`

	configDir string
}

// DefaultDir returns STARK20_CONFIG_DIR or ~/.stark20.
func DefaultDir() (string, error) {
	if d := os.Getenv(EnvPrefix + "_CONFIG_DIR"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".stark20"), nil
}

// Load reads config.json from dir (DefaultDir when empty), applies defaults
// and environment overrides. A missing file is not an error.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("contract_address", EnvPrefix+"_CONTRACT_ADDRESS", EnvPrefix+"_CONTRACT")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_url", "")
	v.SetDefault("fallback_rpcs", []string{})
	v.SetDefault("rpc_algorithm", string(rpc.AlgorithmFastest))
	v.SetDefault("contract_address", DefaultContractAddress)
	v.SetDefault("abi_file", "")
	v.SetDefault("wallet_url", DefaultWalletURL)
	v.SetDefault("confirm_timeout", TxConfirmTimeout)
	v.SetDefault("poll_interval", TxPollInterval)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
}

// Validate checks the values needed before any command talks to the network.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return ErrMissingRPCURL
	}
	if _, err := felt.ParseAddress(c.ContractAddress); err != nil {
		return fmt.Errorf("contract_address: %w", err)
	}
	if _, err := rpc.ParseAlgorithm(c.RPCAlgorithm); err != nil {
		return err
	}
	if c.ConfirmTimeout <= 0 || c.PollInterval <= 0 {
		return errors.New("confirm_timeout and poll_interval must be positive")
	}
	return nil
}

// Endpoints returns the primary node URL followed by distinct fallbacks.
func (c *Config) Endpoints() []string {
	var out []string
	for _, u := range append([]string{c.RPCURL}, c.FallbackRPCs...) {
		u = strings.TrimSpace(u)
		if u != "" && !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// AddFallbackRPC appends a fallback node URL.
func (c *Config) AddFallbackRPC(url string) error {
	if url == c.RPCURL || slices.Contains(c.FallbackRPCs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.FallbackRPCs = append(c.FallbackRPCs, url)
	return nil
}

// RemoveFallbackRPC drops a fallback node URL.
func (c *Config) RemoveFallbackRPC(url string) error {
	idx := slices.Index(c.FallbackRPCs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found", url)
	}
	c.FallbackRPCs = slices.Delete(c.FallbackRPCs, idx, idx+1)
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string { return c.configDir }

// Save writes the config file with 0600 permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.fileView(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// fileView is the on-disk shape; durations are written as "3m0s".
func (c *Config) fileView() map[string]interface{} {
	fallbacks := c.FallbackRPCs
	if fallbacks == nil {
		fallbacks = []string{}
	}
	return map[string]interface{}{
		"rpc_url":          c.RPCURL,
		"fallback_rpcs":    fallbacks,
		"rpc_algorithm":    c.RPCAlgorithm,
		"contract_address": c.ContractAddress,
		"abi_file":         c.ABIFile,
		"wallet_url":       c.WalletURL,
		"confirm_timeout":  c.ConfirmTimeout.String(),
		"poll_interval":    c.PollInterval.String(),
		"log_level":        c.LogLevel,
		"log_format":       c.LogFormat,
	}
}

// Settings returns key/value pairs for display, in file order.
func (c *Config) Settings() [][2]string {
	return [][2]string{
		{"rpc_url", c.RPCURL},
		{"fallback_rpcs", strings.Join(c.FallbackRPCs, ", ")},
		{"rpc_algorithm", c.RPCAlgorithm},
		{"contract_address", c.ContractAddress},
		{"abi_file", c.ABIFile},
		{"wallet_url", c.WalletURL},
		{"confirm_timeout", c.ConfirmTimeout.String()},
		{"poll_interval", c.PollInterval.String()},
		{"log_level", c.LogLevel},
		{"log_format", c.LogFormat},
	}
}
