package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	RPCURL          string
	ContractAddress string
	RPCAlgorithm    string
	WalletURL       string
}

type wizardStep int

const (
	stepRPC wizardStep = iota
	stepContract
	stepAlgorithm
	stepWallet
	stepDone
)

var algorithms = []string{"fastest", "round-robin", "failover"}

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	input     string
	cancelled bool
}

func newWizard(defaults WizardResult) wizardModel {
	m := wizardModel{result: defaults}
	m.input = defaults.RPCURL
	for i, a := range algorithms {
		if a == defaults.RPCAlgorithm {
			m.cursor = i
		}
	}
	return m
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	choosing := m.step == stepAlgorithm

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.apply()
		m.step++
		m.input = m.prefill()
		if m.step == stepDone {
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if !choosing && len(m.input) > 0 {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyUp:
		if choosing && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if choosing && m.cursor < len(algorithms)-1 {
			m.cursor++
		}
	case tea.KeyRunes, tea.KeySpace:
		if !choosing {
			m.input += string(key.Runes)
		}
	}
	return m, nil
}

func (m *wizardModel) apply() {
	// pasted values often carry brackets or whitespace
	v := strings.Trim(strings.TrimSpace(m.input), "[]")
	switch m.step {
	case stepRPC:
		m.result.RPCURL = v
	case stepContract:
		if v != "" {
			m.result.ContractAddress = v
		}
	case stepAlgorithm:
		m.result.RPCAlgorithm = algorithms[m.cursor]
	case stepWallet:
		if v != "" {
			m.result.WalletURL = v
		}
	}
}

func (m wizardModel) prefill() string {
	switch m.step {
	case stepContract:
		return m.result.ContractAddress
	case stepWallet:
		return m.result.WalletURL
	}
	return ""
}

func (m wizardModel) View() string {
	var s string
	switch m.step {
	case stepRPC:
		s = inputView("Starknet node RPC URL", "e.g. https://starknet-sepolia.public.blastapi.io/rpc/v0_7", m.input)
	case stepContract:
		s = inputView("Token contract address", "Enter keeps the current address", m.input)
	case stepAlgorithm:
		s = renderMenu("Endpoint selection when fallbacks are configured:", algorithms, m.cursor)
	case stepWallet:
		s = inputView("Wallet bridge URL", "Enter keeps the current URL", m.input)
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}
	return StyleBorder.Render(s) + "\n"
}

func inputView(title, hint, value string) string {
	return StyleTitle.Render(title) + "\n\n" +
		StyleMeta.Render(hint) + "\n" +
		"> " + StyleAddress.Render(value) + "█\n\n" +
		StyleMeta.Render("Enter confirm · Esc cancel")
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		if i == cursor {
			s += "▸ " + StyleSelected.Render(item) + "\n"
		} else {
			s += "  " + StyleValue.Render(item) + "\n"
		}
	}
	return s + "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
}

// RunWizard asks for the settings stark20 needs, starting from defaults.
// ok is false when the user cancelled.
func RunWizard(defaults WizardResult) (result WizardResult, ok bool, err error) {
	final, err := tea.NewProgram(newWizard(defaults)).Run()
	if err != nil {
		return WizardResult{}, false, fmt.Errorf("wizard: %w", err)
	}
	fm := final.(wizardModel)
	if fm.cancelled {
		return WizardResult{}, false, nil
	}
	return fm.result, true, nil
}
