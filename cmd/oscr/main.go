// Command oscr is the CLI front-end over the orchestrator package: a
// flag-driven batch mode plus an interactive REPL, grounded on the
// reference's cli.py (flag names, list/shallow verbs) and the teacher's
// flag-based server/server.go entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/STOCD/OSCR/config"
	"github.com/STOCD/OSCR/orchestrator"
)

var (
	openPath     = flag.String("open", "", "path to a combat log to open (required outside the REPL)")
	combatsFlag  = flag.Int("combats", -1, "list the first N isolated combats (5 when the flag is not given)")
	overviewFlag = flag.Int("overview", -1, "print the overview table for combat #N (1-indexed; 1 when the flag is not given)")
	workers      = flag.Int("workers", 4, "worker pool size for parallel analysis")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *openPath == "" {
		return runREPL()
	}

	o, err := orchestrator.New(config.Default(), orchestrator.WithWorkers(*workers))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer o.Close()

	combatsN := *combatsFlag
	if combatsN < 0 {
		combatsN = 5
	}
	overviewN := *overviewFlag
	if overviewN < 0 {
		overviewN = 1
	}

	combats, err := o.AnalyzeAllParallel(context.Background(), *openPath, combatsN)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	if len(combats) == 0 {
		fmt.Fprintln(os.Stderr, "error: no combats found")
		return 1
	}

	printCombatList(os.Stdout, combats)
	if overviewN >= 1 && overviewN <= len(combats) {
		fmt.Println()
		printOverview(os.Stdout, combats[overviewN-1])
	}
	return 0
}
