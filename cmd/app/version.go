package main

import (
	"fmt"
	"io"
)

var (
	Version    = "0.1.0"
	CommitHash = ""
)

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "sn-reachability version: %s\n", Version)
	if CommitHash != "" {
		fmt.Fprintf(w, "commit hash: %s\n", CommitHash)
	}
}
