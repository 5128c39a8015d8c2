// Package cli implements the clubsearch command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clubsearch/internal/config"
	"github.com/kailas-cloud/clubsearch/internal/domain"
	"github.com/kailas-cloud/clubsearch/internal/domain/club"
	"github.com/kailas-cloud/clubsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/clubsearch/internal/logger"
	"github.com/kailas-cloud/clubsearch/internal/printer"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

const usageText = `Usage: clubsearch '<votre requête>' [limit] [score_threshold]

Exemples:
  clubsearch 'club de football professionnel'
  clubsearch 'club de basket à Paris' 3
  clubsearch 'club avec bonnes installations' 5 0.7
`

// Searcher runs one club search.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]club.Club, error)
}

type options struct {
	configPath string
	output     string
	logLevel   string
	noEmoji    bool
	noColor    bool
}

// app carries the collaborators commands build from configuration.
type app struct {
	stdout      io.Writer
	stderr      io.Writer
	opts        options
	loadConfig  func(path string) (config.Config, error)
	newLogger   func(cfg *config.Config, level string) (*zap.Logger, error)
	newSearcher func(cfg *config.Config, logger *zap.Logger) (Searcher, func(), error)
}

// NewRootCommand creates the root command wired to the real Qdrant backend.
func NewRootCommand() *cobra.Command {
	cmd := newRootCommand(&app{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: loadConfig,
		newLogger:  newLogger,
		newSearcher: func(cfg *config.Config, logger *zap.Logger) (Searcher, func(), error) {
			c, err := build(cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			return c.search, c.close, nil
		},
	})
	cmd.SetArgs(negativeArgs(cmd, os.Args[1:]))
	return cmd
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clubsearch <query> [limit] [score_threshold]",
		Short: "Semantic search over a Qdrant collection of club profiles",
		Long: `clubsearch sends a natural-language query to a Qdrant collection and prints
the best matching clubs with their profile details.

Connection settings come from the environment (QDRANT_URL, QDRANT_API_KEY,
COLLECTION_NAME, EMBEDDING_MODEL), a .env file in the working directory,
or a YAML file passed with --config.`,
		Example: `  clubsearch 'club de football professionnel'
  clubsearch 'club de basket à Paris' 3
  clubsearch 'club avec bonnes installations' 5 0.7`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				a.opts.noEmoji = true
			}
			switch a.opts.output {
			case OutputText, OutputJSON:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (text, json)", a.opts.output)
			}
		},
		RunE: a.runSearch,
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "YAML config file (default: environment)")
	flags.StringVarP(&a.opts.output, "output", "o", OutputText, "output format (text, json)")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.opts.noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(a.newServeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func (a *app) runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stdout, usageText)
		return domain.ErrUsage
	}

	req, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(a.opts.configPath)
	if err != nil {
		return err
	}

	logger, err := a.newLogger(&cfg, a.level(&cfg, "warn"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	searcher, closeFn, err := a.newSearcher(&cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	p := printer.New(a.stdout, printer.Options{Emoji: !a.opts.noEmoji, Color: !a.opts.noColor})

	if a.opts.output == OutputJSON {
		clubs, err := searcher.Search(cmd.Context(), &req)
		if err != nil {
			return err
		}
		return p.JSON(clubs)
	}

	if err := p.Banner(cfg.Collection, cfg.Embedding.Model); err != nil {
		return err
	}
	clubs, err := searcher.Search(cmd.Context(), &req)
	if err != nil {
		return err
	}
	return p.Results(clubs, req.Query())
}

// parseArgs turns <query> [limit] [score_threshold] into a request.
// Malformed numbers are errors, never silently defaulted.
func parseArgs(args []string) (request.Request, error) {
	limit := request.DefaultLimit
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return request.Request{}, fmt.Errorf("invalid limit %q: %w", args[1], err)
		}
		limit = n
	}

	var threshold *float64
	if len(args) > 2 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return request.Request{}, fmt.Errorf("invalid score_threshold %q: %w", args[2], err)
		}
		threshold = &v
	}

	return request.New(args[0], limit, threshold)
}

// level picks the log level: --log-level, then config/LOG_LEVEL, then fallback.
func (a *app) level(cfg *config.Config, fallback string) string {
	if a.opts.logLevel != "" {
		return a.opts.logLevel
	}
	if cfg.Logging.Level != "" {
		return cfg.Logging.Level
	}
	return fallback
}

func loadConfig(path string) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}

func newLogger(cfg *config.Config, level string) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(cfg.Logging.Env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
