// Command plumesh is the demo host: a thin REPL/script-runner proving out
// the interpreter core plus the example host-registered crypto commands.
// Grounded on MongooseMoo-barn's cmd/barn/main.go (flag parsing, log
// startup banner, -trace/-trace-filter), generalized from a MOO server
// bootstrap to a script-engine host.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/plume-lang/plume/builtins"
	"github.com/plume-lang/plume/config"
	"github.com/plume-lang/plume/hostdemo"
	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML host config file")
	script := flag.String("script", "", "Path to a script file to run non-interactively")
	recursionLimit := flag.Int("recursion-limit", 0, "Override the interpreter's recursion limit (0 = use config/default)")
	traceEnabled := flag.Bool("debug", false, "Enable host-side diagnostic logging")
	traceFilter := flag.String("debug-filter", "", "Diagnostic log filter pattern (glob, comma-separated)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config %q: %v", *configPath, err)
	}

	enableDiag := *traceEnabled || cfg.Trace.Enabled
	filterSpec := cfg.Trace.Filter
	if *traceFilter != "" {
		filterSpec = *traceFilter
	}
	var filters []string
	if filterSpec != "" {
		for _, f := range strings.Split(filterSpec, ",") {
			filters = append(filters, strings.TrimSpace(f))
		}
	}
	if enableDiag {
		interp.InitDiagLog(true, filters, os.Stderr)
		log.Printf("diagnostic logging enabled (filters: %v)", filters)
	} else {
		interp.InitDiagLog(false, nil, nil)
	}

	i := interp.NewInterp(ops.New())
	builtins.RegisterAll(i)
	hostdemo.RegisterCrypto(i)

	limit := cfg.RecursionLimit
	if *recursionLimit > 0 {
		limit = *recursionLimit
	}
	i.SetRecursionLimit(limit)

	scriptPath := *script
	if scriptPath == "" {
		scriptPath = cfg.Script
	}

	if scriptPath != "" {
		runFile(i, scriptPath)
		return
	}
	runREPL(i)
}

func runFile(i *interp.Interp, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read script %q: %v", path, err)
	}
	if code := i.EvalTopLevel(string(data)); code == interp.ERROR {
		fmt.Fprintln(os.Stderr, i.ResultString())
		os.Exit(1)
	}
}

func runREPL(i *interp.Interp) {
	fmt.Println("plumesh -- type a command, or ^D to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("% ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		code := i.EvalTopLevel(line)
		if code == interp.ERROR {
			fmt.Fprintln(os.Stderr, i.ResultString())
			continue
		}
		if s := i.ResultString(); s != "" {
			fmt.Println(s)
		}
	}
}
