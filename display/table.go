// Package display renders bordered console tables for run diagnostics.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

type Column struct {
	Width   int
	Heading string
	Format  string // fmt verb applied to each datum, e.g. "%.4f"
}

// Table writes box-drawn rows to an output stream. Column widths are
// fixed; headings and data are right-aligned with UTF-8-aware padding.
type Table struct {
	cols []Column
	out  io.Writer

	topRule string
	headRow string
	midRule string
	botRule string
}

func NewTable(cols ...Column) *Table {
	t := &Table{cols: cols, out: os.Stdout}

	var top, head, mid, bot strings.Builder
	top.WriteString("╭")
	head.WriteString("│")
	mid.WriteString("├")
	bot.WriteString("╰")
	for i, col := range cols {
		if i > 0 {
			top.WriteString("┬")
			head.WriteString("│")
			mid.WriteString("┼")
			bot.WriteString("┴")
		}
		top.WriteString(strings.Repeat("─", col.Width))
		mid.WriteString(strings.Repeat("─", col.Width))
		bot.WriteString(strings.Repeat("─", col.Width))
		head.WriteString(pad(col.Heading, col.Width))
	}
	top.WriteString("╮")
	head.WriteString("│")
	mid.WriteString("┤")
	bot.WriteString("╯")

	t.topRule = top.String()
	t.headRow = head.String()
	t.midRule = mid.String()
	t.botRule = bot.String()
	return t
}

// SetOutput redirects the table, mainly for tests.
func (t *Table) SetOutput(w io.Writer) {
	t.out = w
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		runes := []rune(s)
		return string(runes[:width])
	}
	return strings.Repeat(" ", width-n) + s
}

func (t *Table) WriteTopRule() { fmt.Fprintln(t.out, t.topRule) }
func (t *Table) WriteMidRule() { fmt.Fprintln(t.out, t.midRule) }
func (t *Table) WriteBotRule() { fmt.Fprintln(t.out, t.botRule) }

func (t *Table) WriteHeaderRow() { fmt.Fprintln(t.out, t.headRow) }

func (t *Table) WriteDataRow(data ...interface{}) {
	var row strings.Builder
	row.WriteString("│")
	for i, col := range t.cols {
		var cell string
		if i < len(data) {
			cell = fmt.Sprintf(col.Format, data[i])
		}
		row.WriteString(pad(cell, col.Width))
		row.WriteString("│")
	}
	fmt.Fprintln(t.out, row.String())
}
