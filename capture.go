package webcite

import "time"

// Capture is the immutable input of a single capture.
// It is created once when the capture starts and only read afterwards.
type Capture struct {
	// Link is the raw captured link, before any canonicalization.
	Link string

	// Title is the display title supplied by the caller (e.g., the browser
	// tab title). May be empty.
	Title string

	Query Query
}

// Query holds optional capture parameters.
type Query struct {
	// HTMLPath points to pre-fetched page content on disk.
	HTMLPath string

	// FeedEntry carries feed-reader metadata when the link was captured
	// from a feed.
	FeedEntry *FeedEntry

	// NotifyChannel is passed through to the Notifier so it can route
	// messages back to the caller.
	NotifyChannel string

	// Silent suppresses revealing duplicate matches.
	Silent bool

	// Params holds any other caller-supplied parameters.
	Params map[string]string
}

// FeedEntry holds the metadata a feed reader knows about an entry.
type FeedEntry struct {
	Title     string
	Link      string
	Authors   []string
	Published time.Time
	FeedTitle string
	FeedURL   string
	Tags      []string
	Content   string
}

// Validate returns an error if the capture cannot be processed.
func (c *Capture) Validate() error {
	if c.Link == "" {
		return Errorf(EINVALID, "capture link required")
	}
	return nil
}
