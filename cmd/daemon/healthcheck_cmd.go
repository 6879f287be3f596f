package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func runHealthcheckCLI(args []string) int {
	return healthcheck(args, os.Stdout, os.Stderr)
}

func healthcheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", "ready", "healthcheck mode: ready (default) or live")
	addr := fs.String("addr", "localhost:8080", "API address to check")
	timeout := fs.Duration("timeout", 5*time.Second, "check timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := "/healthz"
	if *mode == "ready" {
		path = "/readyz"
	}

	url := fmt.Sprintf("http://%s%s", *addr, path)
	client := http.Client{
		Timeout: *timeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(stderr, "Healthcheck failed (network): %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(stderr, "Healthcheck failed (status): %d %s\n", resp.StatusCode, resp.Status)
		return 1
	}

	fmt.Fprintf(stdout, "Healthcheck successful (%s)\n", *mode)
	return 0
}
