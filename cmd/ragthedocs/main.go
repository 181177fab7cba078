package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/chunk"
	"github.com/jerpint/ragthedocs/gemini"
	"github.com/jerpint/ragthedocs/goquery"
	rtdhttp "github.com/jerpint/ragthedocs/http"
	"github.com/jerpint/ragthedocs/pipeline"
	"github.com/jerpint/ragthedocs/prometheus"
	"github.com/jerpint/ragthedocs/rod"
	rtdslog "github.com/jerpint/ragthedocs/slog"
	"github.com/jerpint/ragthedocs/sqlite"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// DBFile is the name of the vector store inside the save directory.
const DBFile = "vectors.db"

// Main represents the program.
type Main struct {
	// SQLite database holding the vector store.
	DB *sqlite.DB

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ragthedocs"),
		kong.Description("Index a documentation website into a searchable vector store"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Configuration(YAMLConfig),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'ragthedocs --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := rtdslog.NewLogger(stderr, cli.LogLevel, cli.LogFormat)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Getenv: m.Getenv,
		Output: cli.Output,
	}

	if err := os.MkdirAll(cli.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	m.DB = sqlite.NewDB(filepath.Join(cli.Output, DBFile))
	if err := m.DB.Open(); err != nil {
		fmt.Fprintln(stderr, "Hint: use --output or RTD_OUTPUT to choose a different directory")
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer m.Close()
	entries := rtdslog.NewLoggingEntryService(sqlite.NewEntryService(m.DB), logger)

	apiKey := m.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "Hint: get an API key at https://aistudio.google.com/apikey")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: check that GEMINI_API_KEY is valid")
		return fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	var embedder ragthedocs.Embedder = rtdslog.NewLoggingEmbedder(gemini.NewEmbedder(client.Models), logger)

	switch strings.Fields(kongCtx.Command())[0] {
	case "index":
		deps.Metrics = prometheus.NewMetrics()
		embedder = prometheus.NewEmbedder(embedder, deps.Metrics)

		fetcher, err := m.fetcher(&cli.Index, logger, deps.Metrics)
		if err != nil {
			return err
		}

		deps.Pipeline = &pipeline.Pipeline{
			Fetcher:  fetcher,
			Links:    goquery.NewLinkSelector(),
			Sections: goquery.NewSectionParser(),
			Sitemaps: rtdslog.NewLoggingSitemapService(rtdhttp.NewSitemapService(nil), logger),
			Embedder: embedder,
			Entries:  entries,
			OnChunk: func(e chunk.ProgressEvent) {
				if e.Type == chunk.ProgressParsed || e.Type == chunk.ProgressFailed {
					deps.Metrics.RecordParse(e.Chunks, e.Error)
				}
			},
			Config: cli.Index.config(logger),
		}

		if tc, err := gemini.NewTokenCounter(""); err != nil {
			logger.Warn("token counting disabled", "err", err)
		} else {
			deps.Pipeline.TokenCounter = tc
		}

	case "search", "ask":
		searcher := &pipeline.Searcher{Embedder: embedder, Entries: entries}
		deps.Search = searcher
		deps.Asker = gemini.NewAsker(client.Models, searcher)
	}

	return kongCtx.Run(deps)
}

// fetcher builds the page fetcher for the index command: plain HTTP by
// default, headless Chrome with --render.
func (m *Main) fetcher(cmd *IndexCmd, logger *slog.Logger, metrics *prometheus.Metrics) (ragthedocs.Fetcher, error) {
	var f ragthedocs.Fetcher
	if cmd.Render {
		rf, err := rod.NewFetcher(
			rod.WithFetchTimeout(cmd.Timeout),
			rod.WithDetector(goquery.NewDetector()),
			rod.WithManagerOptions(rod.WithManagerLogger(logger)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		f = rf
	} else {
		f = rtdhttp.NewFetcher(rtdhttp.WithTimeout(cmd.Timeout))
	}
	m.closers = append(m.closers, f)

	return rtdslog.NewLoggingFetcher(prometheus.NewFetcher(f, metrics), logger), nil
}
