package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/pipeline"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	homepage := c.URL
	if homepage == "" && deps.Getenv != nil {
		homepage = deps.Getenv("RTD_URL")
	}
	if homepage == "" {
		err := ragthedocs.Errorf(ragthedocs.EINVALIDURL, "homepage URL required (argument or RTD_URL)")
		printError(deps.Stderr, err)
		return err
	}

	report, err := deps.Pipeline.Run(deps.Ctx, homepage, deps.Output, c.Version)
	if report != nil {
		printReport(deps.Stdout, report)
		if deps.Metrics != nil {
			deps.Metrics.RecordIngest(report.Batches, report.ChunksIngested, report.Tokens)
		}
	}
	if c.MetricsFile != "" && deps.Metrics != nil {
		if werr := deps.Metrics.WriteTextfile(c.MetricsFile); werr != nil {
			fmt.Fprintf(deps.Stderr, "warning: writing metrics: %v\n", werr)
		}
	}
	if err != nil {
		printError(deps.Stderr, err)
		return err
	}
	return nil
}

func printReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintf(w, "Fetched %d pages (%d failed)\n", r.PagesFetched, r.PagesFailed)
	fmt.Fprintf(w, "Parsed %d pages into %d chunks (%d skipped)\n", r.PagesParsed, r.Chunks, r.ParseFailures)
	fmt.Fprintf(w, "Ingested %d chunks", r.ChunksIngested)
	if r.Tokens > 0 {
		fmt.Fprintf(w, " (%s)", formatTokens(r.Tokens))
	}
	fmt.Fprintln(w)
}

// formatTokens formats a token count in human-readable form.
func formatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// printError writes the user-facing message of err.
func printError(w io.Writer, err error) {
	var e *ragthedocs.Error
	if errors.As(err, &e) {
		fmt.Fprintf(w, "error: %s\n", e.Message)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
