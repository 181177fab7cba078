package main

import (
	"fmt"

	"github.com/jerpint/ragthedocs"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Search.Search(deps.Ctx, c.Query, ragthedocs.SearchOptions{
		Limit:    c.Limit,
		MinScore: c.MinScore,
		Source:   c.Source,
	})
	if err != nil {
		printError(deps.Stderr, err)
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching sections.")
		return nil
	}
	fmt.Fprintln(deps.Stdout, ragthedocs.FormatResults(results))
	return nil
}
