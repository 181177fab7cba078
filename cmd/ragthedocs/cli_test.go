package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	main "github.com/jerpint/ragthedocs/cmd/ragthedocs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, cli *main.CLI) *kong.Kong {
	t.Helper()

	parser, err := kong.New(cli,
		kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
		kong.Configuration(main.YAMLConfig),
	)
	require.NoError(t, err)
	return parser
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	parser, err := kong.New(cli,
		kong.Writers(stdout, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range []string{"index", "search", "ask"} {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_IndexDefaults(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	_, err := newParser(t, cli).Parse([]string{"index", "https://demo.readthedocs.io"})
	require.NoError(t, err)

	assert.Equal(t, "https://demo.readthedocs.io", cli.Index.URL)
	assert.Equal(t, "outputs", cli.Output)
	assert.Equal(t, 5.0, cli.Index.RPS)
	assert.Equal(t, 10, cli.Index.Concurrency)
	assert.Equal(t, 100, cli.Index.MinSectionLength)
	assert.Equal(t, 1000, cli.Index.MaxSectionLength)
	assert.Equal(t, 3000, cli.Index.BatchSize)
	assert.Equal(t, 60*time.Second, cli.Index.MinTimeInterval)
	assert.Equal(t, 32, cli.Index.Workers)
	assert.True(t, cli.Index.Overwrite)
	assert.True(t, cli.Index.Sitemap)
}

func TestCLI_NegatableFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	_, err := newParser(t, cli).Parse([]string{"index", "https://demo.io", "--no-overwrite", "--no-sitemap"})
	require.NoError(t, err)

	assert.False(t, cli.Index.Overwrite)
	assert.False(t, cli.Index.Sitemap)
}

func TestCLI_YAMLConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ragthedocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: /tmp/rtd
log_level: debug
index:
  rps: 2
  min-time-interval: 30s
  workers: 4
`), 0o600))

	t.Run("fills flags from the file", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		_, err := newParser(t, cli).Parse([]string{"--config", path, "index", "https://demo.io"})
		require.NoError(t, err)

		assert.Equal(t, "/tmp/rtd", cli.Output)
		assert.Equal(t, "debug", cli.LogLevel)
		assert.Equal(t, 2.0, cli.Index.RPS)
		assert.Equal(t, 30*time.Second, cli.Index.MinTimeInterval)
		assert.Equal(t, 4, cli.Index.Workers)
	})

	t.Run("command line wins over the file", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		_, err := newParser(t, cli).Parse([]string{"--config", path, "index", "https://demo.io", "--rps", "9"})
		require.NoError(t, err)

		assert.Equal(t, 9.0, cli.Index.RPS)
	})
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help shows kong output", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "Flags:")
	})

	t.Run("no arguments is an error", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Error(t, err)
	})

	t.Run("requires an API key", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		m := main.NewMain()
		m.Getenv = func(string) string { return "" }
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--output", dir, "search", "install"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
		assert.Contains(t, stderr.String(), "Hint:")
		assert.FileExists(t, filepath.Join(dir, main.DBFile))
	})

	t.Run("rejects an unknown log level", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		err := m.Run(context.Background(), []string{"--log-level", "chatty", "search", "x"}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Error(t, err)
	})
}
