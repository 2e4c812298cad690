package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stark20/internal/journal"
	"github.com/Mohsinsiddi/stark20/internal/txflow"
	"github.com/Mohsinsiddi/stark20/internal/ui"
)

var (
	txsLimit int
	txsClear bool
	txsPlain bool
)

var txsCmd = &cobra.Command{
	Use:   "txs",
	Short: "List transactions submitted from this machine",
	Long: `Shows the local journal of write calls, newest first, with their final
state and confirmation message. In a terminal the list is interactive:
o opens the transaction in Voyager and c copies its hash.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		j := journal.Open(journal.DefaultPath(cfg.Dir()))
		if txsClear {
			if !ui.ConfirmDanger("Delete the local transaction history?") {
				return nil
			}
			if err := j.Clear(); err != nil {
				return err
			}
			notifier.Notify(ui.SeverityInfo, "Transaction history cleared")
			return nil
		}

		records, err := j.List(txsLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(out(cmd), ui.Meta("No transactions yet."))
			return nil
		}

		table, rows := txTable(records, journalChain())
		if !txsPlain && out(cmd) == os.Stdout && isatty.IsTerminal(os.Stdout.Fd()) {
			title := ui.StyleTitle.Render(fmt.Sprintf("  Transactions (%d)", len(records)))
			return ui.RunTxList(title, table, rows)
		}
		fmt.Fprint(out(cmd), table.Render())
		return nil
	},
}

var txsShowCmd = &cobra.Command{
	Use:   "show <hash|id>",
	Short: "Show one journal record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := journal.Open(journal.DefaultPath(cfg.Dir())).Find(args[0])
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Hash", ui.Addr(rec.Hash)},
			{"Operation", rec.Operation},
			{"Contract", ui.Addr(rec.Contract)},
			{"State", rec.State},
			{"Submitted", rec.SubmittedAt.Local().Format("2006-01-02 15:04:05")},
		}
		if rec.Message != "" {
			pairs = append(pairs, [2]string{"Message", rec.Message})
		}
		if rec.Event != "" {
			pairs = append(pairs, [2]string{"Event", rec.Event})
			for _, k := range sortedKeys(rec.Fields) {
				pairs = append(pairs, [2]string{"  " + k, rec.Fields[k]})
			}
		}
		if rec.Error != "" {
			pairs = append(pairs, [2]string{"Error", ui.StyleError.Render(rec.Error)})
		}
		if u := ui.ExplorerTxURL(journalChain(), rec.Hash); u != "" {
			pairs = append(pairs, [2]string{"Explorer", u})
		}
		fmt.Fprintln(out(cmd), ui.KeyValueBlock("Transaction", pairs))
		return nil
	},
}

// journalChain is the chain used for explorer links: the connected wallet's.
func journalChain() string {
	if sess := sessions("", false).Current(); sess != nil {
		return sess.ChainID
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func txTable(records []*journal.Record, chainID string) (*ui.Table, []ui.TxRow) {
	table := ui.NewTable([]ui.Column{
		{Title: "When", Width: 16},
		{Title: "Operation", Width: 18},
		{Title: "State", Width: 10},
		{Title: "Hash", Width: 13},
		{Title: "Result", Width: 48},
	})
	table.CellStyle = func(_, col int, v string) (lipgloss.Style, bool) {
		if col != 2 {
			return lipgloss.Style{}, false
		}
		switch v {
		case txflow.Succeeded.String():
			return ui.StyleSuccess, true
		case txflow.Failed.String():
			return ui.StyleError, true
		}
		return ui.StyleWarning, true
	}

	rows := make([]ui.TxRow, 0, len(records))
	for _, r := range records {
		result := r.Message
		if r.Error != "" {
			result = r.Error
		}
		table.AddRow(ui.Row{
			r.SubmittedAt.Local().Format("2006-01-02 15:04"),
			r.Operation,
			r.State,
			ui.TruncateAddr(r.Hash),
			result,
		})
		rows = append(rows, ui.TxRow{
			FullHash:    r.Hash,
			ExplorerURL: ui.ExplorerTxURL(chainID, r.Hash),
			Detail:      strings.TrimSpace(r.Hash + "  " + result),
		})
	}
	return table, rows
}

func init() {
	txsCmd.Flags().IntVarP(&txsLimit, "limit", "n", 20, "number of records to show (0 = all)")
	txsCmd.Flags().BoolVar(&txsClear, "clear", false, "delete the local history")
	txsCmd.Flags().BoolVar(&txsPlain, "plain", false, "print a static table even in a terminal")
	txsCmd.AddCommand(txsShowCmd)
}
