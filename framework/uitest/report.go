package uitest

import (
	"fmt"
	"io"
	"strings"
)

const reportRuleWidth = 80

// RenderResults formats the results as a fixed-width table, one row per test in the order the
// tests ran.
func RenderResults(results Results) string {
	var b strings.Builder
	b.WriteString("=== TEST RESULTS ===\n")
	fmt.Fprintf(&b, "%-30s %-10s %s\n", "Test Case", "Status", "Message")
	b.WriteString(strings.Repeat("=", reportRuleWidth) + "\n")
	for _, r := range results.Tests {
		fmt.Fprintf(&b, "%-30s %-10s %s\n", r.TestID, r.Outcome.Kind, foldNewlines(r.Outcome.Message))
	}
	return b.String()
}

// WriteResults writes the table produced by RenderResults, preceded by a blank line.
func WriteResults(w io.Writer, results Results) error {
	_, err := io.WriteString(w, "\n"+RenderResults(results))
	return err
}
