package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/pipeline"
	"github.com/jerpint/ragthedocs/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Getenv func(string) string

	Pipeline *pipeline.Pipeline
	Search   ragthedocs.SearchService
	Asker    ragthedocs.Asker
	Metrics  *prometheus.Metrics

	// Output is the save directory shared by every command.
	Output string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    kong.ConfigFlag `help:"YAML file with flag defaults" placeholder:"FILE"`
	Output    string          `short:"o" default:"outputs" env:"RTD_OUTPUT" help:"Directory for crawled pages and vectors.db"`
	LogLevel  string          `default:"info" enum:"debug,info,warn,error" env:"RTD_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string          `default:"text" enum:"text,json" env:"RTD_LOG_FORMAT" help:"Log format (text, json)"`

	Index  IndexCmd  `cmd:"" help:"Crawl, chunk and embed a documentation site"`
	Search SearchCmd `cmd:"" help:"Show the stored sections closest to a query"`
	Ask    AskCmd    `cmd:"" help:"Answer a question from the indexed documentation"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	URL     string `arg:"" optional:"" help:"Documentation homepage (defaults to $RTD_URL)"`
	Version string `env:"RTD_VERSION" help:"Only follow URLs containing this version string, e.g. en/stable"`

	Render      bool          `help:"Render pages in headless Chrome"`
	RPS         float64       `name:"rps" default:"5" help:"Requests per second per host (0 disables the limit)"`
	Concurrency int           `short:"c" default:"10" help:"Concurrent fetch limit"`
	Timeout     time.Duration `default:"10s" help:"Fetch timeout per page"`
	MaxPages    int           `name:"max-pages" help:"Stop after this many pages (0 means no limit)"`
	Sitemap     bool          `default:"true" negatable:"" help:"Seed the crawl from sitemap.xml"`

	MinSectionLength int    `name:"min-section-length" default:"100" help:"Minimum chunk length in characters"`
	MaxSectionLength int    `name:"max-section-length" default:"1000" help:"Maximum chunk length in characters"`
	Source           string `default:"readthedocs" help:"Source tag stored with every chunk"`

	BatchSize       int           `name:"batch-size" default:"3000" help:"Chunks per ingestion batch"`
	MinTimeInterval time.Duration `name:"min-time-interval" default:"60s" help:"Minimum time between batch submissions"`
	Workers         int           `default:"32" help:"Concurrent embedding requests"`
	Overwrite       bool          `default:"true" negatable:"" help:"Clear the vector store before ingesting"`

	MetricsFile string `name:"metrics-file" type:"path" help:"Write Prometheus metrics to this file after the run"`
}

// config converts the flags to a pipeline configuration.
func (c *IndexCmd) config(logger *slog.Logger) pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Logger = logger
	cfg.CrawlConcurrency = c.Concurrency
	cfg.RequestsPerSecond = c.RPS
	cfg.MaxPages = c.MaxPages
	cfg.UseSitemap = c.Sitemap
	if c.MinSectionLength > 0 {
		cfg.MinSectionLength = c.MinSectionLength
	}
	if c.MaxSectionLength > 0 {
		cfg.MaxSectionLength = c.MaxSectionLength
	}
	if c.Source != "" {
		cfg.Source = c.Source
	}
	if c.BatchSize > 0 {
		cfg.BatchSize = c.BatchSize
	}
	cfg.MinTimeInterval = c.MinTimeInterval
	if c.Workers > 0 {
		cfg.NumWorkers = c.Workers
	}
	cfg.Overwrite = c.Overwrite
	return cfg
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string  `arg:"" help:"Search query"`
	Limit    int     `short:"n" default:"5" help:"Number of results"`
	MinScore float32 `name:"min-score" help:"Minimum cosine similarity"`
	Source   string  `help:"Only return chunks with this source tag"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the documentation"`
}
