package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/STOCD/OSCR/config"
	"github.com/STOCD/OSCR/orchestrator"
)

// runREPL implements the interactive verbs spec §6 names: open|o,
// combats|c, overview|ov, help|h, quit|q.
func runREPL() int {
	o, err := orchestrator.New(config.Default(), orchestrator.WithWorkers(*workers))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer o.Close()

	var (
		path    string
		combats []*orchestrator.Combat
	)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("oscr interactive mode. Type 'help' for verbs, 'quit' to exit.")
	for {
		fmt.Print("oscr> ")
		if !scanner.Scan() {
			return 0
		}
		verb, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "open", "o":
			if arg == "" {
				fmt.Println("usage: open <path>")
				continue
			}
			path = arg
			combats = nil
			fmt.Printf("opened %s\n", path)

		case "combats", "c":
			if path == "" {
				fmt.Println("no log open; use 'open <path>' first")
				continue
			}
			n := 5
			if arg != "" {
				if parsed, perr := strconv.Atoi(arg); perr == nil {
					n = parsed
				}
			}
			got, aerr := o.AnalyzeAllParallel(context.Background(), path, n)
			if aerr != nil {
				fmt.Println("error:", aerr)
				continue
			}
			combats = got
			printCombatList(os.Stdout, combats)

		case "overview", "ov":
			if len(combats) == 0 {
				fmt.Println("no combats isolated; use 'combats' first")
				continue
			}
			n := 1
			if arg != "" {
				if parsed, perr := strconv.Atoi(arg); perr == nil {
					n = parsed
				}
			}
			if n < 1 || n > len(combats) {
				fmt.Printf("combat #%d out of range (1-%d)\n", n, len(combats))
				continue
			}
			printOverview(os.Stdout, combats[n-1])

		case "help", "h":
			printHelp()

		case "quit", "q":
			return 0

		case "":
			// ignore blank input

		default:
			fmt.Printf("unknown verb %q; type 'help' for a list\n", verb)
		}
	}
}

func printHelp() {
	fmt.Println(`verbs:
  open|o <path>       open a combat log
  combats|c [N]        isolate and analyze the first N combats (default 5)
  overview|ov [N]       print the overview table for combat #N (default 1)
  help|h                show this text
  quit|q                exit`)
}
