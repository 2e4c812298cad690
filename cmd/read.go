package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

// placeholder is shown for values that could not be decoded.
const placeholder = "‹undecodable›"

// readFunc performs one view call and returns its display value.
type readFunc func(ctx context.Context, g *contract.Gateway, args []string) (string, error)

type readSpec struct {
	use   string
	fn    string // contract function
	short string
	args  int
	call  readFunc
}

var reads = []readSpec{
	{"name", "name", "Token name", 0, func(ctx context.Context, g *contract.Gateway, _ []string) (string, error) {
		return g.Name(ctx)
	}},
	{"symbol", "symbol", "Token symbol", 0, func(ctx context.Context, g *contract.Gateway, _ []string) (string, error) {
		return g.Symbol(ctx)
	}},
	{"decimals", "decimals", "Token decimals", 0, func(ctx context.Context, g *contract.Gateway, _ []string) (string, error) {
		d, err := g.Decimals(ctx)
		return strconv.Itoa(int(d)), err
	}},
	{"total-supply", "total_supply", "Total token supply", 0, func(ctx context.Context, g *contract.Gateway, _ []string) (string, error) {
		return wideString(g.TotalSupply(ctx))
	}},
	{"owner", "owner", "Current contract owner", 0, func(ctx context.Context, g *contract.Gateway, _ []string) (string, error) {
		return g.Owner(ctx)
	}},
	{"balance <account>", "balance_of", "Token balance of an account", 1, func(ctx context.Context, g *contract.Gateway, a []string) (string, error) {
		return wideString(g.BalanceOf(ctx, a[0]))
	}},
	{"allowance <owner> <spender>", "allowance", "Amount spender may move for owner", 2, func(ctx context.Context, g *contract.Gateway, a []string) (string, error) {
		return wideString(g.Allowance(ctx, a[0], a[1]))
	}},
}

// readFor returns the read command backing a contract function.
func readFor(fn string) (readSpec, bool) {
	for _, r := range reads {
		if r.fn == fn {
			return r, true
		}
	}
	return readSpec{}, false
}

func wideString(w felt.U256, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return w.String(), nil
}

func readCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(reads))
	for _, r := range reads {
		cmds = append(cmds, &cobra.Command{
			Use:   r.use,
			Short: r.short,
			Args:  cobra.ExactArgs(r.args),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
				defer cancel()

				t, err := openToken(ctx, false)
				if err != nil {
					return err
				}
				defer t.Close()

				v, err := r.call(ctx, t.gateway, args)
				return printRead(out(cmd), v, err)
			},
		})
	}
	return cmds
}

// printRead prints v, or a placeholder plus a warning when the value could
// not be decoded.
func printRead(w io.Writer, v string, err error) error {
	if errors.Is(err, felt.ErrDecode) {
		fmt.Fprintln(w, ui.Val(placeholder))
		ui.Report(notifier, err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, ui.Val(v))
	return nil
}

// tokenFacts holds the summary shown by info.
type tokenFacts struct {
	name, symbol, decimals, supply, owner, balance string
}

// collectFacts runs the independent reads concurrently. Decode failures show
// as placeholders; any other failure aborts.
func collectFacts(ctx context.Context, g *contract.Gateway, account string) (tokenFacts, error) {
	var f tokenFacts
	grp, gctx := errgroup.WithContext(ctx)
	set := func(dst *string, call func(context.Context) (string, error)) {
		grp.Go(func() error {
			v, err := call(gctx)
			if errors.Is(err, felt.ErrDecode) {
				*dst = placeholder
				return nil
			}
			*dst = v
			return err
		})
	}
	set(&f.name, g.Name)
	set(&f.symbol, g.Symbol)
	set(&f.decimals, func(ctx context.Context) (string, error) {
		d, err := g.Decimals(ctx)
		return strconv.Itoa(int(d)), err
	})
	set(&f.supply, func(ctx context.Context) (string, error) { return wideString(g.TotalSupply(ctx)) })
	set(&f.owner, g.Owner)
	if account != "" {
		set(&f.balance, func(ctx context.Context) (string, error) { return wideString(g.BalanceOf(ctx, account)) })
	}
	if err := grp.Wait(); err != nil {
		return tokenFacts{}, err
	}
	return f, nil
}

func (f tokenFacts) pairs(contractAddr, account string) [][2]string {
	pairs := [][2]string{
		{"Contract", ui.Addr(contractAddr)},
		{"Name", f.name},
		{"Symbol", f.symbol},
		{"Decimals", f.decimals},
		{"Total supply", f.supply},
		{"Owner", ui.Addr(f.owner)},
	}
	if account != "" {
		pairs = append(pairs, [2]string{"Account", ui.Addr(account)}, [2]string{"Balance", f.balance})
	}
	return pairs
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show every public fact about the token",
	Long: `Reads name, symbol, decimals, total supply and owner in parallel. When a
wallet is connected its balance is shown too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		t, err := openToken(ctx, false)
		if err != nil {
			return err
		}
		defer t.Close()

		account, _ := sessions("", false).Address()
		f, err := collectFacts(ctx, t.gateway, account)
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), ui.KeyValueBlock("Token", f.pairs(felt.FormatAddress(t.gateway.Address()), account)))
		return nil
	},
}
