package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Table provides a simple table formatter.
type Table struct {
	w *tabwriter.Writer
}

// NewTable creates a new table on stdout with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = io.WriteString(t.w, strings.Join(values, "\t")+"\n")
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// Minimal prints just the essential value.
func Minimal(value string) {
	fmt.Println(value)
}

// Normal prints a value with a label.
func Normal(label, value string) {
	fmt.Printf("%s: %s\n", label, value)
}

// TruncateString shortens s to maxLen runes, ending in "..." if cut.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
