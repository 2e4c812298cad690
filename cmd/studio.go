package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Browse and call the token contract interactively",
	Long: `Lists every read and write function of the contract. Selecting a read
calls it; selecting a write prompts for its arguments, sends it through the
connected wallet and waits for the outcome. The last result is shown at the
top of the list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		account, _ := sessions("", false).Address()

		t, err := openToken(ctx, account != "")
		if err != nil {
			return err
		}
		defer t.Close()

		model := ui.StudioModel{
			ContractName: studioTitle(ctx, t.gateway),
			Address:      felt.FormatAddress(t.gateway.Address()),
			Network:      networkName(ctx, t),
			Account:      account,
			Entries:      ui.StudioEntries(t.gateway.Descriptor()),
		}
		for {
			entry, err := ui.RunStudio(model)
			if err != nil {
				return err
			}
			if entry == nil {
				return nil
			}
			model.Status = runStudioEntry(ctx, cmd, t, *entry)
		}
	},
}

// runStudioEntry performs one selected call and returns the status line.
func runStudioEntry(ctx context.Context, cmd *cobra.Command, t *token, e ui.StudioEntry) string {
	if !e.IsWrite {
		r, ok := readFor(e.Name)
		if !ok {
			return ui.Warn(e.Name + " is not callable from the studio")
		}
		args := promptArgs(e.Name, paramNames(e.Inputs))
		rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
		defer cancel()
		v, err := r.call(rctx, t.gateway, args)
		return studioStatus(e.Name, v, err)
	}

	if !t.gateway.CanWrite() {
		return ui.Warn(ui.MsgConnectWallet)
	}
	args := promptArgs(e.Name, contract.OperationParams(e.Name))
	if !ui.Confirm(fmt.Sprintf("Send %s(%s)?", e.Name, strings.Join(args, ", "))) {
		return ui.Meta(e.Name + " cancelled")
	}
	outcome, err := submitAndConfirm(ctx, t, cmd.ErrOrStderr(), e.Name, args)
	if err == nil && !outcome.Succeeded() {
		err = outcome.Err
	}
	if err != nil {
		return studioStatus(e.Name, "", err)
	}
	return ui.Success(outcome.Message)
}

func studioStatus(name, v string, err error) string {
	if err == nil {
		return ui.Meta(name+" → ") + ui.Val(v)
	}
	sev, msg := ui.Classify(err)
	switch sev {
	case ui.SeverityWarning:
		return ui.Warn(msg)
	default:
		return ui.Err(msg)
	}
}

func paramNames(ps []ui.StudioParam) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func promptArgs(fn string, params []string) []string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = ui.PromptInput(fmt.Sprintf("%s › %s", fn, p), "")
	}
	return args
}

func studioTitle(ctx context.Context, g *contract.Gateway) string {
	rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	name, err := g.Name(rctx)
	if err != nil || name == "" {
		return "ERC-20"
	}
	return name
}

func networkName(ctx context.Context, t *token) string {
	id, err := t.node.ChainID(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("chain id unavailable")
		return "unknown"
	}
	switch id {
	case ui.ChainMainnet:
		return "mainnet"
	case ui.ChainSepolia:
		return "sepolia"
	}
	return id
}
