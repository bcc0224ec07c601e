// Command isdparse converts NOAA ISD fixed-width files into JSON lines.
//
// Usage:
//
//	isdparse parse 010230-99999-2020.gz > 010230.ndjson
//	zcat *.gz | isdparse parse --log-level debug
//	isdparse sections --sections custom.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
