// Package gofeed reads feed-reader metadata for a capture from an RSS,
// Atom or JSON feed document.
package gofeed

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/webcite"
	webfs "github.com/fwojciec/webcite/fs"
	"github.com/mmcdole/gofeed"
)

// Parser selects one entry of a feed and converts it to a
// webcite.FeedEntry.
type Parser struct {
	parser *gofeed.Parser
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// ParseFile reads the feed at path and returns the selected entry.
// Returns ENOTFOUND if the file does not exist.
func (p *Parser) ParseFile(path, selector string) (*webcite.FeedEntry, error) {
	path, err := webfs.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, webcite.Errorf(webcite.ENOTFOUND, "feed file %s not found", path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, selector)
}

// Parse reads a feed and returns the entry chosen by selector. An empty
// selector picks the first entry, a number picks the entry at that
// 1-based position, and anything else is matched against entry GUIDs and
// links.
// Returns ENOTFOUND if no entry matches and EINVALID if the feed cannot
// be parsed.
func (p *Parser) Parse(r io.Reader, selector string) (*webcite.FeedEntry, error) {
	feed, err := p.parser.Parse(r)
	if err != nil {
		return nil, webcite.Errorf(webcite.EINVALID, "parse feed: %v", err)
	}

	item, err := selectItem(feed.Items, selector)
	if err != nil {
		return nil, err
	}
	return entryFrom(feed, item), nil
}

func selectItem(items []*gofeed.Item, selector string) (*gofeed.Item, error) {
	if len(items) == 0 {
		return nil, webcite.Errorf(webcite.ENOTFOUND, "feed has no entries")
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return items[0], nil
	}
	if n, err := strconv.Atoi(selector); err == nil {
		if n < 1 || n > len(items) {
			return nil, webcite.Errorf(webcite.ENOTFOUND, "feed has %d entries, no entry %d", len(items), n)
		}
		return items[n-1], nil
	}
	for _, item := range items {
		if item.GUID == selector || item.Link == selector {
			return item, nil
		}
	}
	return nil, webcite.Errorf(webcite.ENOTFOUND, "no feed entry matches %q", selector)
}

func entryFrom(feed *gofeed.Feed, item *gofeed.Item) *webcite.FeedEntry {
	e := &webcite.FeedEntry{
		Title:     strings.TrimSpace(item.Title),
		Link:      strings.TrimSpace(item.Link),
		FeedTitle: strings.TrimSpace(feed.Title),
		FeedURL:   feed.FeedLink,
		Tags:      item.Categories,
		Content:   item.Content,
	}
	if e.FeedURL == "" {
		e.FeedURL = feed.Link
	}
	if e.Content == "" {
		e.Content = item.Description
	}
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			e.Authors = append(e.Authors, strings.TrimSpace(a.Name))
		}
	}
	switch {
	case item.PublishedParsed != nil:
		e.Published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		e.Published = *item.UpdatedParsed
	}
	return e
}
