package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/jacoelho/resultshape/internal/config"
	"github.com/jacoelho/resultshape/internal/execute"
	"github.com/jacoelho/resultshape/internal/exit"
	"github.com/jacoelho/resultshape/internal/output"
	"github.com/jacoelho/resultshape/internal/querydoc"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(exitCode)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.Default()
	cmd := newRootCmd(cfg, stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		exitResult := exit.FromError(err).WithOutput(stderr)
		exitResult.Print()
		return exitResult.ExitCode
	}
	return exit.CodeOK
}

func newRootCmd(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "resultshape",
		Short:         "Shape flat query rows into result trees",
		Long:          config.Usage(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return shape(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&cfg.QueryFile, "query", "q", cfg.QueryFile, "Path to the YAML query document")
	flags.StringVarP(&cfg.RowsFile, "rows", "r", cfg.RowsFile, "Path to the JSON rows, - for standard input")
	flags.StringVarP(&cfg.Select, "select", "s", cfg.Select, "JSONPath expression projecting the shaped result")
	flags.BoolVar(&cfg.Compact, "compact", cfg.Compact, "Print JSON on a single line")
	flags.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print a run summary to standard error")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum duration of a run (0 for unbounded)")

	return cmd
}

func shape(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := cfg.Logger(stderr)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	build, err := loadQueries(cfg.QueryFile, logger)
	if err != nil {
		return err
	}

	rows, err := loadRows(cfg, stdin)
	if err != nil {
		return err
	}

	shaped, summary, err := execute.New(build, logger).Run(ctx, rows)
	if err != nil {
		return err
	}

	if cfg.Stats {
		if err := summary.FormatText(stderr); err != nil {
			return err
		}
	}

	var result any = shaped
	if cfg.Select != "" {
		result, err = output.Select(result, cfg.Select)
		if err != nil {
			return err
		}
	}

	return output.Encode(stdout, result, cfg.Compact)
}

func loadQueries(path string, logger log.Logger) (*querydoc.Build, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file %s: %w", path, err)
	}
	defer f.Close()

	doc, err := querydoc.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	build, err := doc.Build(logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	level.Debug(logger).Log("msg", "queries built", "file", path, "queries", len(build.Plans))
	return build, nil
}

func loadRows(cfg *config.Config, stdin io.Reader) (execute.Rows, error) {
	r, err := cfg.OpenRows(stdin)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return output.DecodeRows(r)
}
