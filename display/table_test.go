package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRules(t *testing.T) {
	var buf bytes.Buffer
	tab := NewTable(
		Column{Width: 10, Heading: "t (hours)", Format: "%.3f"},
		Column{Width: 9, Heading: "Δt", Format: "%.4f"},
	)
	tab.SetOutput(&buf)
	tab.WriteTopRule()
	tab.WriteHeaderRow()
	tab.WriteMidRule()
	tab.WriteDataRow(1.5, 0.25)
	tab.WriteBotRule()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "╭──────────┬─────────╮", lines[0])
	assert.Equal(t, "│ t (hours)│       Δt│", lines[1])
	assert.Equal(t, "├──────────┼─────────┤", lines[2])
	assert.Equal(t, "│     1.500│   0.2500│", lines[3])
	assert.Equal(t, "╰──────────┴─────────╯", lines[4])
}

func TestPadTruncatesOverlongCells(t *testing.T) {
	var buf bytes.Buffer
	tab := NewTable(Column{Width: 4, Heading: "name", Format: "%s"})
	tab.SetOutput(&buf)
	tab.WriteDataRow("overflowing")
	assert.Equal(t, "│over│\n", buf.String())
}
