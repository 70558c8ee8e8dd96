// lendctl is a command line client for the lending engine. It speaks to a
// PostgreSQL database holding the lending schema and exposes the engine's
// operations for catalog intake, patron enrollment, the loan lifecycle, and
// the overdue report.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
