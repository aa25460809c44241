package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 30 * time.Second

	// Stdin is the rows file name that reads rows from standard input.
	Stdin = "-"
)

var (
	ErrNoQueryFile     = errors.New("no query file specified")
	ErrNoRowsFile      = errors.New("no rows file specified")
	ErrInvalidTimeout  = errors.New("timeout must not be negative")
	ErrInvalidSelector = errors.New("selector must start with $")
)

// Config represents the complete configuration for the resultshape tool.
type Config struct {
	// Inputs
	QueryFile string
	RowsFile  string

	// Output
	Select  string
	Compact bool
	Stats   bool

	// Execution
	Debug   bool
	Timeout time.Duration // 0 = unbounded
}

// Default returns a Config carrying the default settings.
func Default() *Config {
	return &Config{
		RowsFile: Stdin,
		Timeout:  DefaultTimeout,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.QueryFile == "" {
		return ErrNoQueryFile
	}
	if _, err := os.Stat(c.QueryFile); err != nil {
		return fmt.Errorf("query file %s not found: %w", c.QueryFile, err)
	}

	if c.RowsFile == "" {
		return ErrNoRowsFile
	}
	if c.RowsFile != Stdin {
		if _, err := os.Stat(c.RowsFile); err != nil {
			return fmt.Errorf("rows file %s not found: %w", c.RowsFile, err)
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w, got: %s", ErrInvalidTimeout, c.Timeout)
	}

	if c.Select != "" && c.Select[0] != '$' {
		return fmt.Errorf("%w, got: %s", ErrInvalidSelector, c.Select)
	}

	return nil
}

// OpenRows opens the rows input. The caller closes it.
func (c *Config) OpenRows(stdin io.Reader) (io.ReadCloser, error) {
	if c.RowsFile == Stdin {
		return io.NopCloser(stdin), nil
	}

	f, err := os.Open(c.RowsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open rows file %s: %w", c.RowsFile, err)
	}
	return f, nil
}

// Logger returns a logfmt logger writing to w, allowing debug records only
// when Debug is set.
func (c *Config) Logger(w io.Writer) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	allow := level.AllowInfo()
	if c.Debug {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}

// Usage returns the long description of the CLI tool.
func Usage() string {
	return `resultshape - shape flat query rows into result trees

Loads a YAML query document, builds every query's directives, runs them over
JSON rows keyed by query name and prints the shaped result as JSON.

Examples:
  resultshape --query queries.yaml --rows rows.json
  resultshape --query queries.yaml < rows.json
  resultshape --query queries.yaml --rows rows.json --select '$.current'
  resultshape --query queries.yaml --rows rows.json --compact --stats
  resultshape --query queries.yaml --rows rows.json --debug`
}
