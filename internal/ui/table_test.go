package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Token", [][2]string{
		{"Name", "Stark Token"},
		{"Total supply", "1000"},
	})
	for _, s := range []string{"Token", "Name", "Stark Token", "Total supply", "1000"} {
		assert.Contains(t, result, s)
	}
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"First", "A"}, {"Second", "B"}, {"Third", "C"}})
	i1, i2, i3 := strings.Index(result, "First"), strings.Index(result, "Second"), strings.Index(result, "Third")
	require.Greater(t, i1, -1)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{{"Key", "Val"}})
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTable(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Hash", Width: 10}, {Title: "State", Width: 10}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Op", Width: 10}, {Title: "State", Width: 10}})
	tbl.AddRow(Row{"mint", "succeeded"})
	tbl.AddRow(Row{"burn"})

	result := tbl.Render()
	assert.Contains(t, result, "Op")
	assert.Contains(t, result, "----------")
	assert.Contains(t, result, "succeeded")
	assert.Less(t, strings.Index(result, "mint"), strings.Index(result, "burn"))
}

func TestTableTruncatesLongCells(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Hash", Width: 8}})
	tbl.AddRow(Row{"0x070662f85e0d54ca"})
	result := tbl.Render()
	assert.Contains(t, result, "0x07066…")
	assert.NotContains(t, result, "0x070662f8")
}

func TestTableCellStyleCalled(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Op", Width: 6}, {Title: "State", Width: 10}})
	tbl.AddRow(Row{"mint", "failed"})
	var seen []string
	tbl.CellStyle = func(row, col int, v string) (lipgloss.Style, bool) {
		seen = append(seen, v)
		return StyleError, col == 1
	}
	assert.Contains(t, tbl.Render(), "failed")
	assert.Equal(t, []string{"mint", "failed"}, seen)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5))
	assert.Equal(t, "abcde", fit("abcde", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Equal(t, " ", fit("abc", 1))
	assert.Empty(t, fit("x", 0))
}
