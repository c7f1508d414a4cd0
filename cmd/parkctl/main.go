// Command parkctl is a terminal client for the parking service: it logs in,
// keeps the session on disk and walks the booking flow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/parking-service/pkg/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := client.DefaultSessionPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "parkctl:", err)
		os.Exit(1)
	}

	baseURL := os.Getenv("PARKCTL_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	cli := &cli{
		api:      client.New(baseURL, client.FileStore{Path: path}),
		out:      os.Stdout,
		password: stdinTerminal().readPassword,
	}
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "parkctl:", err)
		os.Exit(1)
	}
}
