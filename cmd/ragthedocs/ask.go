package main

import (
	"fmt"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.Question)
	if err != nil {
		printError(deps.Stderr, err)
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Sources:")
		for i, r := range answer.Sources {
			fmt.Fprintf(deps.Stdout, "  [%d] %s\n", i+1, r.Entry.CitationURL())
		}
	}
	return nil
}
