package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Summary accumulates rows and renders them as a tab-aligned table once
// the run has finished.
type Summary struct {
	headers []string
	rows    [][]string
}

// NewSummary creates a summary with the given column headers.
func NewSummary(headers ...string) *Summary {
	return &Summary{headers: headers}
}

// Add appends a row. The number of values should match the number of headers.
func (s *Summary) Add(values ...string) {
	s.rows = append(s.rows, values)
}

// Render writes the table to out.
func (s *Summary) Render(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(s.headers, "\t"))
	for _, row := range s.rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
