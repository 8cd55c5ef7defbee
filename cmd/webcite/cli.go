package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/fs"
	"github.com/fwojciec/webcite/pipeline"
	"github.com/fwojciec/webcite/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Config *webcite.Config
	Rules  *webcite.Rules

	Processor *pipeline.Processor
	Limiter   *pipeline.CaptureLimiter
	Feeds     FeedParser

	// Searcher is the corpus index when a database is configured and the
	// file corpus otherwise.
	Searcher webcite.Searcher
	Corpus   *fs.Corpus
	Index    *sqlite.Index
}

// FeedParser reads one entry from a feed file.
type FeedParser interface {
	ParseFile(path, selector string) (*webcite.FeedEntry, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string   `short:"c" type:"path" help:"Config file path (default: WEBCITE_CONFIG env or ~/.config/webcite/config.toml)"`
	DB      string   `help:"Corpus index database path (overrides config and WEBCITE_DB env)"`
	Corpus  []string `help:"Bibliography file glob checked for duplicates (repeatable, overrides config)"`
	Browser bool     `help:"Fetch pages with headless Chrome"`
	Verbose bool     `short:"v" help:"Log debug output to stderr"`

	Capture CaptureCmd `cmd:"" help:"Capture a link as a BibTeX record"`
	Batch   BatchCmd   `cmd:"" help:"Capture every link listed in a file"`
	Index   IndexCmd   `cmd:"" help:"Sync corpus files into the index database"`
	Search  SearchCmd  `cmd:"" help:"Search the corpus for a value"`
	Key     KeyCmd     `cmd:"" help:"Print the citation key for a DOI or URL"`
	Rules   RulesCmd   `cmd:"" help:"Print the effective extraction rules"`
}

// CaptureCmd is the "capture" subcommand.
type CaptureCmd struct {
	Link     string `arg:"" optional:"" help:"Link to capture (default: the feed entry link)"`
	Title    string `short:"t" help:"Display title of the page"`
	HTML     string `name:"html" type:"path" help:"Pre-fetched page content"`
	Feed     string `type:"path" help:"Feed file the link was captured from"`
	Entry    string `help:"Feed entry: 1-based position, GUID or link"`
	Channel  string `help:"Channel passed through to notifications"`
	Silent   bool   `short:"s" help:"Do not reveal where a duplicate was found"`
	PrintKey bool   `name:"print-key" help:"Print only the citation key"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File   string `arg:"" help:"File with one link per line, or - for stdin"`
	Silent bool   `short:"s" help:"Do not reveal where duplicates were found"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct{}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Pattern string `arg:"" help:"Value to search for"`
}

// KeyCmd is the "key" subcommand.
type KeyCmd struct {
	Input string `arg:"" help:"DOI, DOI URL or page URL"`
}

// RulesCmd is the "rules" subcommand.
type RulesCmd struct{}
