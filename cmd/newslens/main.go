// Command newslens serves the NewsLens API and runs one-off article analyses.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hyperifyio/newslens/internal/analyze"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps rejected input (bad URL, short article, bad tone) to 2 and
// everything else to 1.
func exitCode(err error) int {
	var ie *analyze.InputError
	if errors.As(err, &ie) {
		return 2
	}
	return 1
}
