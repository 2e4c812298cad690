package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/log"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/stark20/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir       string
	cfg          *config.Config
	verbose      bool
	rpcFlag      string
	contractFlag string
	abiFlag      string

	logger   = zerolog.Nop()
	notifier ui.Notifier
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "stark20",
	Short: "Terminal client for a Starknet ERC-20 token",
	Long: `stark20 reads and drives one deployed Starknet ERC-20 contract.

  Read public token state, connect a wallet through its bridge, submit
  mint/transfer/approve/burn/ownership calls and watch them reach finality.

The node URL comes from rpc_url in ~/.stark20/config.json, STARK20_RPC_URL
or --rpc. The contract defaults to the original deployment and can be
changed with STARK20_CONTRACT or --contract.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		notifier = ui.NewConsole(cmd.OutOrStdout())
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if rpcFlag != "" {
			cfg.RPCURL = rpcFlag
		}
		if contractFlag != "" {
			cfg.ContractAddress = contractFlag
		}
		if abiFlag != "" {
			cfg.ABIFile = abiFlag
		}
		logger = log.New(log.Options{
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Verbose: verbose,
			Out:     cmd.ErrOrStderr(),
		})
		logger.Debug().Str("dir", cfg.Dir()).Str("rpc", cfg.RPCURL).Str("contract", cfg.ContractAddress).Msg("config loaded")
		return nil
	},
}

// Execute runs the root command. Errors are shown through the notifier.
func Execute() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	// Argument errors are reported before PersistentPreRunE runs.
	notifier = ui.NewConsole(stdout)
	err := rootCmd.Execute()
	ui.Report(notifier, err)
	return err
}

// out is where commands print their results.
func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $STARK20_CONFIG_DIR or ~/.stark20)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "node RPC URL for this invocation")
	rootCmd.PersistentFlags().StringVar(&contractFlag, "contract", "", "token contract address for this invocation")
	rootCmd.PersistentFlags().StringVar(&abiFlag, "abi", "", "Cairo ABI JSON file (default: built-in erc20)")

	rootCmd.AddCommand(
		initCmd,
		connectCmd,
		disconnectCmd,
		statusCmd,
		infoCmd,
		txsCmd,
		studioCmd,
		convertCmd,
		configCmd,
		rpcCmd,
	)
	rootCmd.AddCommand(readCommands()...)
	rootCmd.AddCommand(writeCommands()...)
}
