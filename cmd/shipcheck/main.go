// shipcheck is the ShipCheck client: a web front end for repository
// readiness reports plus terminal commands over the same backend.
//
// Usage:
//
//	shipcheck serve [--listen :3000]
//	shipcheck analyze <github-url>... [--wait] [--parallel N]
//	shipcheck report <id> [--tab T] [--status fail|warn|pass] [--query Q] [--markdown] [--wait]
//	shipcheck list [--limit N]
//	shipcheck compare <base-id> [head-id]
//	shipcheck history [--limit N]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newRuntime()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
