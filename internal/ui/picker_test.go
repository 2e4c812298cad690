package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

var endpoints = []PickerItem{
	{Label: "https://a", SubLabel: "40ms", Value: "a"},
	{Label: "https://b", SubLabel: "12ms", Value: "b"},
	{Label: "https://c", Value: "c"},
}

func TestPickerStartsOnCurrent(t *testing.T) {
	m := newPicker("RPC", endpoints, "b")
	assert.Equal(t, 1, m.cursor)
}

func TestPickerNavigateAndSelect(t *testing.T) {
	m := press(newPicker("RPC", endpoints, ""), "down", "j", "j", "k", "enter").(pickerModel)
	require.NotNil(t, m.selected)
	assert.Equal(t, "b", m.selected.Value)
}

func TestPickerCancel(t *testing.T) {
	m := press(newPicker("RPC", endpoints, ""), "esc").(pickerModel)
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestPickerView(t *testing.T) {
	v := newPicker("Primary RPC", endpoints, "c").View()
	assert.Contains(t, v, "Primary RPC")
	assert.Contains(t, v, "https://a")
	assert.Contains(t, v, "12ms")
	assert.Contains(t, v, "▸")
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("x", nil, "")
	assert.ErrorIs(t, err, ErrNothingToPick)
}
