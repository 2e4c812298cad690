package ui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
)

// StudioParam is one function input or event member.
type StudioParam struct {
	Name string
	Type string // short Cairo type, e.g. u256
}

// StudioEntry is one item listed in the studio.
type StudioEntry struct {
	Name        string
	Selector    string // truncated sn_keccak of Name; empty for events
	IsWrite     bool
	IsEvent     bool
	Inputs      []StudioParam
	OutputTypes []string
	Description string
}

var studioDescriptions = map[string]string{
	"name":               "Token name, decoded from a short string",
	"symbol":             "Token symbol, decoded from a short string",
	"decimals":           "Number of decimals used for display",
	"total_supply":       "Total amount of tokens in existence",
	"balance_of":         "Tokens held by an account",
	"allowance":          "Tokens a spender may move on behalf of an owner",
	"owner":              "Current contract owner",
	"mint":               "Create tokens for a recipient (owner only)",
	"transfer":           "Send tokens from the connected account",
	"transfer_from":      "Move tokens from an owner using an allowance",
	"approve":            "Set a spender's allowance",
	"increase_allowance": "Raise a spender's allowance",
	"decrease_allowance": "Lower a spender's allowance",
	"burn":               "Destroy tokens held by the connected account",
	"init_ownership":     "Nominate a new owner (step 1 of 2)",
	"claim_ownership":    "Accept a pending nomination (step 2 of 2)",
}

// StudioEntries lists the descriptor's functions (reads then writes, each
// sorted by name) followed by its struct events.
func StudioEntries(desc *abi.Descriptor) []StudioEntry {
	var reads, writes, events []StudioEntry
	for _, fn := range desc.Functions() {
		e := StudioEntry{
			Name:        fn.Name,
			Selector:    TruncateAddr(felt.Hex(abi.Selector(fn.Name))),
			IsWrite:     fn.IsExternal(),
			Description: studioDescriptions[fn.Name],
		}
		for _, p := range fn.Inputs {
			e.Inputs = append(e.Inputs, StudioParam{Name: p.Name, Type: abi.ShortName(p.Type)})
		}
		for _, o := range fn.Outputs {
			e.OutputTypes = append(e.OutputTypes, abi.ShortName(o.Type))
		}
		if e.IsWrite {
			writes = append(writes, e)
		} else {
			reads = append(reads, e)
		}
	}
	for _, en := range desc.Entries() {
		if en.Type != abi.TypeEvent || en.Kind != abi.KindStruct {
			continue
		}
		e := StudioEntry{Name: abi.ShortName(en.Name), IsEvent: true}
		for _, m := range en.Members {
			e.Inputs = append(e.Inputs, StudioParam{Name: m.Name, Type: abi.ShortName(m.Type)})
		}
		events = append(events, e)
	}
	byName := func(s []StudioEntry) {
		sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
	}
	byName(reads)
	byName(writes)
	byName(events)

	out := append(reads, writes...)
	return append(out, events...)
}

// StudioModel is the Bubble Tea model of the contract studio. Reads and
// writes are navigable; events are listed for reference.
type StudioModel struct {
	ContractName string
	Address      string
	Network      string
	Account      string // connected account, empty when disconnected
	Status       string // last outcome, shown above the controls

	Entries []StudioEntry

	navItems []int // indexes into Entries, events excluded
	cursor   int

	Selected *StudioEntry
	Quitting bool
}

func (m *StudioModel) buildNav() {
	m.navItems = m.navItems[:0]
	for i, e := range m.Entries {
		if !e.IsEvent {
			m.navItems = append(m.navItems, i)
		}
	}
	if m.cursor >= len(m.navItems) {
		m.cursor = 0
	}
}

func (m StudioModel) Init() tea.Cmd { return nil }

func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.navItems)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.navItems) > 0 {
			e := m.Entries[m.navItems[m.cursor]]
			m.Selected = &e
			return m, tea.Quit
		}
	}
	return m, nil
}

const studioWidth = 72

func (m StudioModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("  Token Studio  ·  %s", m.ContractName)) + "\n\n")

	row := func(k, v string) {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", StyleMeta.Render(k), v))
	}
	row("Contract", StyleAddress.Render(m.Address))
	if m.Network != "" {
		row("Network", StyleValue.Render(m.Network))
	}
	if m.Account != "" {
		row("Account", StyleAddress.Render(m.Account))
	} else {
		row("Account", StyleWarning.Render("not connected (writes need `stark20 connect`)"))
	}
	sb.WriteString("\n")

	navPos := make(map[int]int, len(m.navItems))
	for pos, idx := range m.navItems {
		navPos[idx] = pos
	}

	var reads, writes, events []int
	for i, e := range m.Entries {
		switch {
		case e.IsEvent:
			events = append(events, i)
		case e.IsWrite:
			writes = append(writes, i)
		default:
			reads = append(reads, i)
		}
	}

	section := func(title string, idxs []int, nameStyle func(...string) string) {
		if len(idxs) == 0 {
			return
		}
		hdr := fmt.Sprintf("  ── %s (%d) ", title, len(idxs))
		fill := max(studioWidth-len(hdr)-2, 0)
		sb.WriteString(StyleHeader.Render(hdr) + StyleMeta.Render(strings.Repeat("─", fill)) + "\n")
		for _, idx := range idxs {
			e := m.Entries[idx]
			pos, navigable := navPos[idx]
			selected := navigable && pos == m.cursor

			prefix := "    "
			if selected {
				prefix = "  ▸ "
			}
			line := prefix
			if e.Selector != "" {
				line += StyleMeta.Render(e.Selector) + "  "
			}
			line += nameStyle(e.Name) + "(" + StyleMeta.Render(studioParamSig(e.Inputs)) + ")"
			if len(e.OutputTypes) > 0 {
				line += StyleMeta.Render("  →  " + strings.Join(e.OutputTypes, ", "))
			}
			if selected {
				line = StyleSelected.Render(line)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}
	section("Read", reads, StyleValue.Render)
	section("Write", writes, StyleWarning.Render)
	section("Events", events, StyleInfo.Render)

	ruler := StyleMeta.Render(strings.Repeat("─", studioWidth))
	sb.WriteString(ruler + "\n")
	if len(m.navItems) > 0 {
		cur := m.Entries[m.navItems[m.cursor]]
		desc := cur.Description
		if desc == "" {
			desc = cur.Name
		}
		sb.WriteString(StyleMeta.Render("  "+desc) + "\n")
	}
	if m.Status != "" {
		sb.WriteString("  " + m.Status + "\n")
	}
	sb.WriteString(ruler + "\n\n")

	sb.WriteString(
		StyleMeta.Render("  [ ↑↓ / jk ]") + " navigate   " +
			StyleInfo.Render("[ Enter ]") + " call   " +
			StyleMeta.Render("[ q ]") + " quit\n")

	return sb.String()
}

// RunStudio shows the studio and returns the selected entry, or nil when
// the user quit.
func RunStudio(m StudioModel) (*StudioEntry, error) {
	m.buildNav()
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("studio: %w", err)
	}
	fm := final.(StudioModel)
	if fm.Quitting || fm.Selected == nil {
		return nil, nil
	}
	return fm.Selected, nil
}

// studioParamSig formats params as "name: type, name: type".
func studioParamSig(params []StudioParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Name != "" {
			parts[i] = p.Name + ": " + p.Type
		} else {
			parts[i] = p.Type
		}
	}
	return strings.Join(parts, ", ")
}
