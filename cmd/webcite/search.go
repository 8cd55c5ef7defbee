package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/webcite"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	matches, err := deps.Searcher.Search(deps.Ctx, c.Pattern)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcite.ErrorMessage(err))
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintln(deps.Stdout, "No matches found.")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", m, strings.TrimSpace(m.Text))
	}
	return nil
}
