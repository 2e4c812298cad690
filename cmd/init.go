package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/rpc"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to configure the node RPC, contract and wallet bridge.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(out(cmd), ui.Banner())

		result, ok, err := ui.RunWizard(ui.WizardResult{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			RPCAlgorithm:    cfg.RPCAlgorithm,
			WalletURL:       cfg.WalletURL,
		})
		if err != nil {
			return err
		}
		if !ok {
			notifier.Notify(ui.SeverityInfo, "Setup cancelled, nothing saved")
			return nil
		}
		if err := applyWizard(result); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		notifier.Notify(ui.SeveritySuccess, "stark20 configured! Run `stark20 info` to read the token.")
		return nil
	},
}

// applyWizard copies non-empty answers into cfg after validating them.
func applyWizard(r ui.WizardResult) error {
	if r.ContractAddress != "" {
		raw, err := felt.ParseAddress(r.ContractAddress)
		if err != nil {
			return fmt.Errorf("contract address: %w", err)
		}
		cfg.ContractAddress = felt.FormatAddress(raw)
	}
	if r.RPCAlgorithm != "" {
		if _, err := rpc.ParseAlgorithm(r.RPCAlgorithm); err != nil {
			return err
		}
		cfg.RPCAlgorithm = r.RPCAlgorithm
	}
	if r.RPCURL != "" {
		cfg.RPCURL = r.RPCURL
	}
	if r.WalletURL != "" {
		cfg.WalletURL = r.WalletURL
	}
	return nil
}
