package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/rpc"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := cfg.Settings()
		for i := range pairs {
			if pairs[i][1] == "" {
				pairs[i][1] = ui.Meta("-")
			}
		}
		fmt.Fprintln(out(cmd), ui.KeyValueBlock("Current Configuration", pairs))
		fmt.Fprintln(out(cmd), ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

// saveWith applies change to the config and writes it.
func saveWith(cmd *cobra.Command, msg string, change func() error) error {
	if err := change(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	notifier.Notify(ui.SeveritySuccess, msg)
	return nil
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <url>",
	Short: "Set the primary node RPC URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimSpace(args[0])
		return saveWith(cmd, "Node RPC set to "+url, func() error {
			// A URL promoted from the fallbacks should not be listed twice.
			_ = cfg.RemoveFallbackRPC(url)
			cfg.RPCURL = url
			return nil
		})
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Add a fallback node RPC URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimSpace(args[0])
		return saveWith(cmd, "Fallback RPC added: "+url, func() error {
			return cfg.AddFallbackRPC(url)
		})
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <url>",
	Short: "Remove a fallback node RPC URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimSpace(args[0])
		return saveWith(cmd, "Fallback RPC removed: "+url, func() error {
			return cfg.RemoveFallbackRPC(url)
		})
	},
}

var configUseRPCCmd = &cobra.Command{
	Use:   "use-rpc",
	Short: "Pick the primary RPC from the configured endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints := cfg.Endpoints()
		items := make([]ui.PickerItem, len(endpoints))
		for i, u := range endpoints {
			sub := "fallback"
			if u == cfg.RPCURL {
				sub = "primary"
			}
			items[i] = ui.PickerItem{Label: u, SubLabel: sub, Value: u}
		}
		url, err := ui.PickItem("Select the primary RPC", items, cfg.RPCURL)
		if err != nil || url == "" || url == cfg.RPCURL {
			return err
		}
		return saveWith(cmd, "Node RPC set to "+url, func() error {
			old := cfg.RPCURL
			_ = cfg.RemoveFallbackRPC(url)
			cfg.RPCURL = url
			if old != "" {
				return cfg.AddFallbackRPC(old)
			}
			return nil
		})
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <address>",
	Short: "Set the token contract address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := felt.ParseAddress(args[0])
		if err != nil {
			return err
		}
		addr := felt.FormatAddress(raw)
		return saveWith(cmd, "Contract set to "+addr, func() error {
			cfg.ContractAddress = addr
			return nil
		})
	},
}

var configSetWalletURLCmd = &cobra.Command{
	Use:   "set-wallet-url <url>",
	Short: "Set the wallet bridge URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimSpace(args[0])
		return saveWith(cmd, "Wallet bridge set to "+url, func() error {
			cfg.WalletURL = url
			return nil
		})
	},
}

var configSetAlgorithmCmd = &cobra.Command{
	Use:   "set-algorithm <fastest|round-robin|failover>",
	Short: "Set how the node endpoint is chosen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		return saveWith(cmd, "RPC algorithm set to "+string(algo), func() error {
			cfg.RPCAlgorithm = string(algo)
			return nil
		})
	},
}

var configSetTimeoutCmd = &cobra.Command{
	Use:   "set-timeout <duration>",
	Short: "Set how long write commands wait for confirmation (e.g. 5m)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", args[0], err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		return saveWith(cmd, "Confirmation timeout set to "+d.String(), func() error {
			cfg.ConfirmTimeout = d
			return nil
		})
	},
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetRPCCmd,
		configAddRPCCmd,
		configRemoveRPCCmd,
		configUseRPCCmd,
		configSetContractCmd,
		configSetWalletURLCmd,
		configSetAlgorithmCmd,
		configSetTimeoutCmd,
	)
}
