// Command dashcheck pings the dashboard's HTTP endpoints and prints pass/fail for each.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/brensch/embedbot/dashcheck"
	"github.com/brensch/embedbot/log"
	"github.com/fatih/color"
)

func main() {
	baseURL := flag.String("url", dashcheck.DefaultBaseURL, "dashboard base URL")
	timeout := flag.Duration("timeout", dashcheck.DefaultTimeout, "per-request timeout")
	verbose := flag.Bool("v", false, "log every request")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(log.NewPrettyHandler(os.Stderr, log.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: level},
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	checker := dashcheck.NewChecker(*baseURL, dashcheck.WithTimeout(*timeout))
	if !report(os.Stdout, checker.BaseURL(), checker.Run(ctx)) {
		os.Exit(1)
	}
}

// report prints one line per endpoint and a summary. It returns false if any endpoint failed.
func report(w io.Writer, baseURL string, results []dashcheck.Result) bool {
	pass := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "Checking %s\n\n", baseURL)
	for _, r := range results {
		if r.OK() {
			line := fmt.Sprintf("%s %-16s %d %s", pass("PASS"), r.Path, r.Status, dim(r.Duration.Round(time.Millisecond)))
			if r.Title != "" {
				line += dim(fmt.Sprintf(" %q", r.Title))
			}
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintf(w, "%s %-16s %v\n", fail("FAIL"), r.Path, r.Err)
	}

	passed, failed := dashcheck.Summary(results)
	fmt.Fprintf(w, "\n%d passed, %d failed\n", passed, failed)
	return failed == 0
}
