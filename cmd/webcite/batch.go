package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/webcite"
)

// BatchSummary counts the outcomes of a batch run.
type BatchSummary struct {
	Captured   int
	Duplicates int
	Failed     int
}

// Run executes the batch command. Links are captured one at a time and
// throttled per site. Duplicates and failures are reported and skipped.
// Records are printed to stdout separated by blank lines.
func (c *BatchCmd) Run(deps *Dependencies) error {
	links, err := c.links()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	var sum BatchSummary
	seen := make(map[string]string)
	for _, link := range links {
		if err := deps.Ctx.Err(); err != nil {
			return err
		}
		capture := webcite.Capture{
			Link:  link,
			Query: webcite.Query{Silent: c.Silent},
		}
		if deps.Limiter != nil {
			if err := deps.Limiter.Wait(deps.Ctx, capture); err != nil {
				return err
			}
		}

		rec, err := deps.Processor.Process(deps.Ctx, capture)
		switch {
		case err == nil:
		case deps.Ctx.Err() != nil:
			return err
		case webcite.ErrorCode(err) == webcite.EDUPLICATE:
			sum.Duplicates++
			reportFailure(deps, link, err, c.Silent)
			continue
		default:
			sum.Failed++
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", link, webcite.ErrorMessage(err))
			continue
		}

		if first, ok := seen[rec.Key]; ok {
			sum.Duplicates++
			fmt.Fprintf(deps.Stderr, "duplicate: %s has the same key as %s\n", link, first)
			continue
		}
		seen[rec.Key] = link

		if sum.Captured > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprint(deps.Stdout, rec.Text)
		sum.Captured++
	}

	fmt.Fprintf(deps.Stderr, "Captured %d, %d duplicates, %d failed\n", sum.Captured, sum.Duplicates, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d captures failed", sum.Failed, len(links))
	}
	return nil
}

// links reads the link list. Blank lines and lines starting with # are
// ignored.
func (c *BatchCmd) links() ([]string, error) {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var links []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links, scanner.Err()
}
