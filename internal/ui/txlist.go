package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Starknet chain ids as returned by starknet_chainId.
const (
	ChainMainnet = "0x534e5f4d41494e"       // SN_MAIN
	ChainSepolia = "0x534e5f5345504f4c4941" // SN_SEPOLIA
)

// ExplorerTxURL returns the Voyager page of a transaction, or "" for chains
// without a public explorer.
func ExplorerTxURL(chainID, hash string) string {
	switch strings.ToLower(chainID) {
	case ChainMainnet:
		return "https://voyager.online/tx/" + hash
	case ChainSepolia:
		return "https://sepolia.voyager.online/tx/" + hash
	}
	return ""
}

// TxRow holds per-transaction data needed for interactivity.
type TxRow struct {
	FullHash    string
	ExplorerURL string
	Detail      string // shown under the table for the selected row
}

type txListModel struct {
	title  string
	table  *Table
	txData []TxRow // parallel to table.Rows
	cursor int
	flash  string

	open func(url string) error
	copy func(text string) error
}

func (m txListModel) Init() tea.Cmd { return nil }

func (m txListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.flash = ""
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.table.Rows)-1 {
			m.cursor++
		}
	case "o":
		if m.cursor >= len(m.txData) {
			break
		}
		url := m.txData[m.cursor].ExplorerURL
		if url == "" {
			m.flash = "No explorer for this chain"
			break
		}
		if err := m.open(url); err != nil {
			m.flash = "Open failed: " + err.Error()
		} else {
			m.flash = "Opening in browser…"
		}
	case "c":
		if m.cursor >= len(m.txData) {
			break
		}
		hash := m.txData[m.cursor].FullHash
		if hash == "" {
			m.flash = "No hash available"
			break
		}
		if err := m.copy(hash); err != nil {
			m.flash = "Copy failed: " + err.Error()
		} else {
			m.flash = "Copied: " + TruncateAddr(hash)
		}
	}
	return m, nil
}

func (m txListModel) View() string {
	m.table.SelIdx = m.cursor

	var sb strings.Builder
	sb.WriteString(m.title + "\n\n")
	sb.WriteString(m.table.Render())
	sb.WriteString("\n")
	if m.cursor < len(m.txData) && m.txData[m.cursor].Detail != "" {
		sb.WriteString(StyleMeta.Render("  "+m.txData[m.cursor].Detail) + "\n\n")
	}
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(txControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

func txControls() string {
	sep := StyleMeta.Render("   ")
	return StyleMeta.Render("[ ↑↓ ] navigate") + sep +
		StyleInfo.Render("[ o ]") + StyleMeta.Render(" open in explorer") + sep +
		StyleWarning.Render("[ c ]") + StyleMeta.Render(" copy hash") + sep +
		StyleMeta.Render("[ q ] quit")
}

// RunTxList starts the interactive transaction list and blocks until the
// user quits.
func RunTxList(title string, table *Table, txData []TxRow) error {
	m := txListModel{
		title:  title,
		table:  table,
		txData: txData,
		open:   openBrowser,
		copy:   copyToClipboard,
	}
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func copyToClipboard(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "windows":
		cmd = exec.Command("clip")
	default:
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	_, _ = io.WriteString(stdin, text)
	stdin.Close()
	return cmd.Wait()
}
