// Package main provides sushectl, the operator tool for the SuShe album
// catalog: duplicate detection, audit previews, identity fixes, manual album
// reconciliation and merges, search, and legacy library imports.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd, ctx := newRootCommand()
	err := cmd.Execute()

	// Shutdown runs regardless of command outcome so the store and search
	// index close cleanly and the invalidation queue drains.
	ctx.shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
