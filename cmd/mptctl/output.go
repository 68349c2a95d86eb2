package main

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/Klingon-tech/mptkit/pkg/fault"
)

// code is the exit status withService leaves with.
var code int

// Exit codes per error category.
const (
	exitOK = iota
	exitGeneric
	exitValidation
	exitPrecondition
	exitTransport
	exitRejected
	exitAmbiguous
)

func exitCode(err error) int {
	switch fault.CategoryOf(err) {
	case fault.CategoryValidation:
		return exitValidation
	case fault.CategoryPrecondition:
		return exitPrecondition
	case fault.CategoryTransport:
		return exitTransport
	case fault.CategoryEngineRejection:
		return exitRejected
	case fault.CategoryAmbiguous:
		return exitAmbiguous
	default:
		return exitGeneric
	}
}

// fail reports err and records the exit code. Used once a service is open
// so that it is closed before exiting.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if fault.CategoryOf(err) == fault.CategoryAmbiguous {
		fmt.Fprintln(os.Stderr, "The transaction may still be applied. Check it with 'mptctl status <hash>' before retrying.")
	}
	code = exitCode(err)
}

// jsonOutput reports whether results are printed as JSON: always when
// --json is given, otherwise when stdout is not a terminal.
func jsonOutput(forced bool) bool {
	return forced || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode output: %v", err)
	}
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func fatalErr(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitCode(err))
}
