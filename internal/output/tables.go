package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/openclaw-adapter/internal/dispatch"
)

// PrintMethodsTable prints accepted method names grouped by operation.
func PrintMethodsTable(w io.Writer, methods []dispatch.MethodInfo) {
	table := tablewriter.NewWriter(w)
	table.Header("Method", "Operation", "Upstream", "Mutating")

	sorted := make([]dispatch.MethodInfo, len(methods))
	copy(sorted, methods)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Operation != sorted[j].Operation {
			return sorted[i].Operation < sorted[j].Operation
		}
		return sorted[i].Name < sorted[j].Name
	})

	upstreamWidth := upstreamColumnWidth(TerminalWidth())
	for _, m := range sorted {
		mutating := ""
		if m.Mutating {
			mutating = "yes"
		}
		table.Append(
			m.Name,
			m.Operation,
			truncate(m.Upstream, upstreamWidth),
			mutating,
		)
	}

	table.Render()
}

// PrintAttemptsTable prints the candidates tried for a failed operation.
func PrintAttemptsTable(w io.Writer, attempts []map[string]any) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Protocol", "URL", "Error")

	errWidth := TerminalWidth() / 3
	if errWidth < 20 {
		errWidth = 20
	}
	for i, a := range attempts {
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprint(a["protocol"]),
			fmt.Sprint(a["url"]),
			truncate(fmt.Sprint(a["error"]), errWidth),
		)
	}

	table.Render()
}

// upstreamColumnWidth leaves room for the fixed columns on narrow terminals.
func upstreamColumnWidth(termWidth int) int {
	w := termWidth - 60
	if w < 12 {
		return 12
	}
	return w
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func indent(s string, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
