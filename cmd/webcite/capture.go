package main

import (
	"errors"
	"fmt"

	"github.com/fwojciec/webcite"
)

// Run executes the capture command.
func (c *CaptureCmd) Run(deps *Dependencies) error {
	capture, err := c.capture(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcite.ErrorMessage(err))
		return err
	}

	rec, err := deps.Processor.Process(deps.Ctx, capture)
	if err != nil {
		reportFailure(deps, capture.Link, err, c.Silent)
		return err
	}

	if c.PrintKey {
		fmt.Fprintln(deps.Stdout, rec.Key)
		return nil
	}
	fmt.Fprint(deps.Stdout, rec.Text)
	return nil
}

// capture builds the capture input. With a feed file the selected entry
// is attached, and its link is used when none is given.
func (c *CaptureCmd) capture(deps *Dependencies) (webcite.Capture, error) {
	capture := webcite.Capture{
		Link:  c.Link,
		Title: c.Title,
		Query: webcite.Query{
			HTMLPath:      c.HTML,
			NotifyChannel: c.Channel,
			Silent:        c.Silent,
		},
	}

	if c.Feed != "" {
		entry, err := deps.Feeds.ParseFile(c.Feed, c.Entry)
		if err != nil {
			return capture, err
		}
		capture.Query.FeedEntry = entry
		if capture.Link == "" {
			capture.Link = entry.Link
		}
		if capture.Title == "" {
			capture.Title = entry.Title
		}
	}

	if capture.Link == "" {
		return capture, webcite.Errorf(webcite.EINVALID, "link required unless --feed is given")
	}
	return capture, nil
}

// reportFailure prints a capture error. Duplicates name the first place
// the record was found unless silent.
func reportFailure(deps *Dependencies, link string, err error, silent bool) {
	var dup *webcite.DuplicateError
	if errors.As(err, &dup) {
		if silent {
			fmt.Fprintf(deps.Stderr, "duplicate: %s is already captured\n", link)
			return
		}
		fmt.Fprintf(deps.Stderr, "duplicate: %s is already captured at %s\n", link, dup.First())
		return
	}
	fmt.Fprintf(deps.Stderr, "error: %s\n", webcite.ErrorMessage(err))
}
