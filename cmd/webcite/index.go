package main

import (
	"fmt"

	"github.com/fwojciec/webcite"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	files, err := deps.Corpus.Files()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcite.ErrorMessage(err))
		return err
	}

	stats, err := deps.Index.Sync(deps.Ctx, files)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcite.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d files (%d unchanged, %d removed)\n",
		stats.Indexed, stats.Unchanged, stats.Removed)
	return nil
}
