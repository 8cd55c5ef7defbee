package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/bloom"
	"github.com/fwojciec/webcite/fs"
	"github.com/fwojciec/webcite/goquery"
	"github.com/fwojciec/webcite/gofeed"
	webhttp "github.com/fwojciec/webcite/http"
	"github.com/fwojciec/webcite/pipeline"
	"github.com/fwojciec/webcite/readability"
	"github.com/fwojciec/webcite/rod"
	webslog "github.com/fwojciec/webcite/slog"
	"github.com/fwojciec/webcite/sqlite"
	"github.com/fwojciec/webcite/toml"
	"github.com/fwojciec/webcite/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database backing the corpus index, when configured.
	DB *sqlite.DB

	// Fetcher overrides the network fetcher. Used by tests.
	Fetcher webcite.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webcite"),
		kong.Description("Turn web links into validated, deduplicated BibTeX records"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		err := fmt.Errorf("no command specified. Run 'webcite --help' to see available commands")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	defer m.Close()
	deps, err := m.wire(ctx, cli, strings.Fields(kongCtx.Command())[0], stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", webcite.ErrorMessage(err))
		return err
	}
	if deps.Processor != nil && deps.Processor.Fetcher != nil {
		defer deps.Processor.Fetcher.Close()
	}

	return kongCtx.Run(deps)
}

// wire builds the dependencies the named command needs.
func (m *Main) wire(ctx context.Context, cli *CLI, cmd string, stdout, stderr io.Writer) (*Dependencies, error) {
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, _, _, err := toml.LoadConfig(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.DB != "" {
		cfg.DBPath = cli.DB
	}
	if len(cli.Corpus) > 0 {
		cfg.Corpus = cli.Corpus
	}
	if cli.Browser {
		cfg.Fetch.Browser = true
	}

	rules, err := toml.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Config: cfg,
		Rules:  rules,
	}

	switch cmd {
	case "key", "rules":
		return deps, nil
	}

	if err := m.wireCorpus(ctx, deps, cmd); err != nil {
		return nil, err
	}
	if cmd == "index" || cmd == "search" {
		return deps, nil
	}

	notifier := webslog.NewNotifier(logger)
	resolver := webhttp.NewResolver(cfg.Resolver.BaseURL,
		webhttp.WithTimeout(cfg.ResolverTimeout()),
		webhttp.WithUserAgent(cfg.Fetch.UserAgent),
	)
	generic, err := pipeline.NewRegexExtractor(rules, logger)
	if err != nil {
		return nil, err
	}
	doi := &pipeline.DOIStep{
		Resolver: webslog.NewLoggingResolver(resolver, logger),
		Notifier: notifier,
		Logger:   logger,
	}

	fetcher, err := m.fetcher(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
		return nil, err
	}

	deps.Processor = &pipeline.Processor{
		Steps: pipeline.DefaultSteps(pipeline.Chain{
			DOI: doi,
			Site: []webcite.Step{
				&goquery.ForgeStep{},
				&goquery.VideoStep{},
				&goquery.BlogStep{},
				&goquery.WeChatStep{},
			},
			Metadata: []webcite.Step{
				&trafilatura.MetadataStep{Logger: logger},
				&readability.BylineStep{Logger: logger},
			},
			Generic: generic,
		}),
		Reader:          webslog.NewLoggingReader(fs.NewReader(), logger),
		Fetcher:         webslog.NewLoggingFetcher(fetcher, logger),
		Encodings:       cfg.Encodings,
		DefaultEncoding: rules.Encoding,
		RetryDelays:     cfg.RetryDelays(),
		Searcher:        deps.Searcher,
		Notifier:        notifier,
		Mode:            cfg.ResolvedMode,
		Logger:          logger,
	}
	deps.Limiter = pipeline.NewCaptureLimiter(cfg.Fetch.RequestsPerSecond)
	deps.Feeds = gofeed.NewParser()
	return deps, nil
}

// wireCorpus sets up duplicate search. With a database the index is
// synced first so it reflects the files on disk; otherwise the files are
// scanned into memory.
func (m *Main) wireCorpus(ctx context.Context, deps *Dependencies, cmd string) error {
	cfg := deps.Config
	deps.Corpus = fs.NewCorpus(cfg.Corpus, fs.WithFilter(bloom.New))

	if cfg.DBPath == "" {
		if cmd == "index" {
			return webcite.Errorf(webcite.EINVALID, "no index database configured: set db_path or pass --db")
		}
		if err := deps.Corpus.Load(ctx); err != nil {
			return fmt.Errorf("load corpus: %w", err)
		}
		deps.Searcher = webslog.NewLoggingSearcher(deps.Corpus, deps.Logger)
		return nil
	}

	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set WEBCITE_DB or pass --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	deps.Index = sqlite.NewIndex(m.DB)
	deps.Searcher = webslog.NewLoggingSearcher(deps.Index, deps.Logger)

	if cmd == "index" {
		return nil
	}
	files, err := deps.Corpus.Files()
	if err != nil {
		return err
	}
	if _, err := deps.Index.Sync(ctx, files); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	return nil
}

func (m *Main) fetcher(cfg *webcite.Config) (webcite.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if cfg.Fetch.Browser {
		return rod.NewFetcher(
			rod.WithFetchTimeout(cfg.FetchTimeout()),
			rod.WithUserAgent(cfg.Fetch.UserAgent),
		)
	}
	return webhttp.NewFetcher(
		webhttp.WithTimeout(cfg.FetchTimeout()),
		webhttp.WithUserAgent(cfg.Fetch.UserAgent),
	), nil
}
