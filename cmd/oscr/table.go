package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/STOCD/OSCR/orchestrator"
)

// defaultTerminalWidth bounds pretty-printed rows when no real terminal
// width can be determined (spec §6 permits truncation to terminal width).
const defaultTerminalWidth = 120

func printCombatList(w io.Writer, combats []*orchestrator.Combat) {
	headers := []string{"#", "Start", "Duration", "Map", "Difficulty"}
	rows := make([][]string, len(combats))
	for i, c := range combats {
		dur := c.EndTime.Sub(c.StartTime)
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			c.StartTime.Format("2006-01-02 15:04:05"),
			dur.Round(1e9).String(),
			c.Map,
			c.Difficulty,
		}
	}
	printTable(w, headers, rows, []bool{false, true, true, true, true})
}

func printOverview(w io.Writer, c *orchestrator.Combat) {
	fmt.Fprintf(w, "Combat: %s (%s)  %s -> %s\n", c.Map, c.Difficulty,
		c.StartTime.Format("15:04:05"), c.EndTime.Format("15:04:05"))
	if c.Result == nil || len(c.Result.Overview) == 0 {
		fmt.Fprintln(w, "  (no player rows)")
		return
	}
	headers := []string{"Player", "Build", "DPS", "Dmg Share", "HPS", "Crit %"}
	rows := make([][]string, len(c.Result.Overview))
	for i, row := range c.Result.Overview {
		rows[i] = []string{
			row.Name + row.Handle,
			row.Build,
			fmt.Sprintf("%.0f", row.DPS),
			fmt.Sprintf("%.1f%%", row.DamageShare*100),
			fmt.Sprintf("%.0f", row.HealOut.HPS),
			fmt.Sprintf("%.1f%%", row.CritChance*100),
		}
	}
	printTable(w, headers, rows, []bool{true, true, false, false, false, false})
}

// printTable renders headers centered and each column left- or
// right-aligned per leftAlign, truncating rows to defaultTerminalWidth
// (spec §6's "tabular output is centered for headers and left/right-aligned
// per column; terminal-width truncation is allowed").
func printTable(w io.Writer, headers []string, rows [][]string, leftAlign []bool) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(center(h, widths[i]))
		if i < len(headers)-1 {
			headerLine.WriteString("  ")
		}
	}
	fmt.Fprintln(w, truncate(headerLine.String(), defaultTerminalWidth))

	var sep strings.Builder
	for i := range headers {
		sep.WriteString(strings.Repeat("-", widths[i]))
		if i < len(headers)-1 {
			sep.WriteString("  ")
		}
	}
	fmt.Fprintln(w, truncate(sep.String(), defaultTerminalWidth))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i >= len(leftAlign) || leftAlign[i] {
				line.WriteString(padRight(cell, widths[i]))
			} else {
				line.WriteString(padLeft(cell, widths[i]))
			}
			if i < len(row)-1 {
				line.WriteString("  ")
			}
		}
		fmt.Fprintln(w, truncate(line.String(), defaultTerminalWidth))
	}
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}
