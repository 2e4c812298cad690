package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/rpc"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

// probe measures endpoints for rpc benchmark; nil means rpc.HealthCheck.
var probe rpc.Probe

var rpcChain string

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Inspect node RPC endpoints",
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured node endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints := cfg.Endpoints()
		if len(endpoints) == 0 {
			return config.ErrMissingRPCURL
		}
		fmt.Fprintln(out(cmd), ui.StyleTitle.Render("Node RPCs"))
		for _, u := range endpoints {
			role := "(fallback)"
			if u == cfg.RPCURL {
				role = "(primary) "
			}
			fmt.Fprintf(out(cmd), "  %s %s\n", ui.Meta(role), u)
		}
		algo, _ := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		fmt.Fprintln(out(cmd), ui.Meta("algorithm: "+string(algo)))
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:     "benchmark",
	Aliases: []string{"ping"},
	Short:   "Probe every configured endpoint and show which one would be used",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints := cfg.Endpoints()
		if len(endpoints) == 0 {
			return config.ErrMissingRPCURL
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), fmt.Sprintf("Probing %d endpoint(s)…", len(endpoints)))
		sp.Start()
		results := rpc.Benchmark(ctx, endpoints, rpcChain, probe)
		sp.Stop()

		picked, pickErr := rpc.NewPicker(algo).Pick(results)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 40},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 10},
			{Title: "Chain", Width: 22},
			{Title: "Status", Width: 30},
		})
		for _, r := range results {
			latency, block, chain := "-", "-", "-"
			status := ui.Err("down")
			if r.Healthy {
				latency = strconv.FormatInt(r.Latency.Milliseconds(), 10) + "ms"
				block = strconv.FormatUint(r.BlockNumber, 10)
				chain = r.ChainID
				status = ui.Success("healthy")
				if pickErr == nil && r.URL == picked.URL {
					status = ui.Success("selected")
				}
			} else if r.Err != nil {
				status = ui.Err(r.Err.Error())
			}
			t.AddRow(ui.Row{r.URL, latency, block, chain, status})
		}
		fmt.Fprint(out(cmd), t.Render())
		if pickErr != nil {
			return pickErr
		}
		return nil
	},
}

func init() {
	rpcBenchmarkCmd.Flags().StringVar(&rpcChain, "chain", "", "expected chain id, e.g. 0x534e5f5345504f4c4941")
	rpcCmd.AddCommand(rpcListCmd, rpcBenchmarkCmd)
}
