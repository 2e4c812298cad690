package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/ui"
	"github.com/Mohsinsiddi/stark20/internal/wallet"
)

var (
	connectWalletURL string
	connectToken     string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet, or disconnect if one is connected",
	Long: `Asks the wallet bridge for an account and keeps the session until
"stark20 disconnect". Running connect again while connected disconnects.

--token stores the bridge's bearer token in the OS keychain for later use.
STARK20_WALLET_TOKEN overrides the stored token.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := connectWalletURL
		if url == "" {
			url = cfg.WalletURL
		}
		var opts []wallet.Option
		if connectToken != "" {
			if err := wallet.DefaultKeystore().SaveToken(url, connectToken); err != nil {
				notifier.Notify(ui.SeverityWarning, "token not stored: "+err.Error())
			}
			opts = append(opts, wallet.WithBridge(url, connectToken))
		}

		mgr := sessions(url, connectToken == "", opts...)
		defer mgr.Close()
		wasConnected := mgr.Current() != nil

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		var sess *wallet.Session
		var err error
		if wasConnected {
			sess, err = mgr.Connect(ctx)
		} else {
			sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Approve the connection in your wallet…")
			sp.Start()
			sess, err = mgr.Connect(ctx)
			sp.Stop()
		}
		if err != nil {
			return err
		}

		switch {
		case wasConnected:
			notifier.Notify(ui.SeverityInfo, "Wallet disconnected")
		case sess == nil:
			notifier.Notify(ui.SeverityWarning, "Connection request rejected in the wallet")
		default:
			notifier.Notify(ui.SeveritySuccess, "Connected "+sess.Address)
			printSession(cmd, sess)
		}
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := sessions("", false)
		if mgr.Current() == nil {
			notifier.Notify(ui.SeverityInfo, "No wallet connected")
			return nil
		}
		if err := mgr.Disconnect(); err != nil {
			return err
		}
		notifier.Notify(ui.SeverityInfo, "Wallet disconnected")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet session and the configured endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := sessions("", false).Current()
		if sess == nil {
			fmt.Fprintln(out(cmd), ui.Warn("No wallet connected"))
			fmt.Fprintln(out(cmd), ui.Hint("run `stark20 connect`"))
		} else {
			printSession(cmd, sess)
		}
		rpcURL := cfg.RPCURL
		if rpcURL == "" {
			rpcURL = ui.StyleError.Render("not set")
		}
		fmt.Fprintln(out(cmd), ui.KeyValueBlock("Config", [][2]string{
			{"Node RPC", rpcURL},
			{"Contract", displayAddress(cfg.ContractAddress)},
			{"Wallet bridge", cfg.WalletURL},
		}))
		return nil
	},
}

// displayAddress renders a configured address in its canonical unpadded form.
// Unparsable values are shown as-is with a warning.
func displayAddress(raw string) string {
	a, err := felt.ParseAddress(raw)
	if err != nil {
		return raw + "  " + ui.Warn("invalid address")
	}
	return ui.Addr(felt.FormatAddress(a))
}

func printSession(cmd *cobra.Command, sess *wallet.Session) {
	chain := sess.ChainID
	if chain == "" {
		chain = "unknown"
	}
	fmt.Fprintln(out(cmd), ui.KeyValueBlock("Wallet", [][2]string{
		{"Account", ui.Addr(sess.Address)},
		{"Chain", chain},
		{"Bridge", sess.BridgeURL},
		{"Connected", sess.ConnectedAt.Local().Format(time.RFC822)},
	}))
}

func init() {
	connectCmd.Flags().StringVar(&connectWalletURL, "wallet-url", "", "wallet bridge URL (default: wallet_url from config)")
	connectCmd.Flags().StringVar(&connectToken, "token", "", "bearer token for the bridge, saved to the keychain")
}
