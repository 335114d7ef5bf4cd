// Package debug renders indented trees of objects for logs and debug reports.
package debug

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

const indent = "  "

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(indent)
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value, so whitespace and line breaks stay visible.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Fields writes label followed by key=value pairs in natural key order on a
// single line. Empty values are omitted.
func (tw TreeWriter) Fields(depth int, label string, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Sort(natural.StringSlice(keys))

	tw.pad(depth)
	tw.w.WriteString(label)
	for _, k := range keys {
		tw.w.WriteByte(' ')
		tw.w.WriteString(k)
		tw.w.WriteByte('=')
		tw.w.WriteString(fields[k])
	}
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
