// check-balances: queries the token balance of a set of accounts on every
// configured node endpoint in parallel and prints a summary table. Nodes that
// disagree are easy to spot.
//
// Run from the module root:
//
//	go run ./scripts/check-balances 0x123 0x456
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	node    string
	account string // short form
	balance string
	err     string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	accounts := os.Args[1:]
	if len(accounts) == 0 {
		fmt.Fprintln(os.Stderr, "usage: check-balances <account>...")
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	nodes := cfg.Endpoints()
	if len(nodes) == 0 {
		fmt.Fprintln(os.Stderr, config.ErrMissingRPCURL)
		os.Exit(1)
	}
	desc, err := abi.BuiltinDescriptor("erc20")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		mu      sync.Mutex
		results []result
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for _, node := range nodes {
		for _, account := range accounts {
			g.Go(func() error {
				r := check(ctx, desc, cfg.ContractAddress, node, account)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	printTable(results)
}

func check(ctx context.Context, desc *abi.Descriptor, token, node, account string) result {
	ctx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()

	r := result{node: node, account: ui.TruncateAddr(account), balance: "-"}
	client, err := starknet.Dial(ctx, node)
	if err != nil {
		r.err = "unreachable"
		return r
	}
	defer client.Close()

	// Quick ping first: skip nodes that don't respond.
	if _, err := client.Ping(ctx); err != nil {
		r.err = "unreachable"
		return r
	}

	gw, err := contract.New(desc, token, client, nil)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	bal, err := gw.BalanceOf(ctx, account)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	decimals, err := gw.Decimals(ctx)
	if err != nil {
		r.balance = bal.String()
		return r
	}
	r.balance = scaled(bal.BigInt(), decimals)
	return r
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.node != b.node {
			return a.node < b.node
		}
		return a.account < b.account
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tACCOUNT\tBALANCE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 30)+"\t"+
		strings.Repeat("-", 13)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 12))

	lastNode := ""
	for _, r := range results {
		if r.node != lastNode {
			if lastNode != "" {
				fmt.Fprintln(w, "\t\t\t") // blank separator between nodes
			}
			lastNode = r.node
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.node, r.account, r.balance, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

// scaled renders v with the token's decimals, trailing zeros trimmed:
// 1500000000000000000 with 18 decimals is "1.5".
func scaled(v *big.Int, decimals uint8) string {
	if decimals == 0 {
		return v.String()
	}
	s := v.String()
	if pad := int(decimals) + 1 - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	whole, frac := s[:len(s)-int(decimals)], strings.TrimRight(s[len(s)-int(decimals):], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
