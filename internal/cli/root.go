package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"keymerger/config"
	"keymerger/internal/integrator"
	"keymerger/internal/logger"
	"keymerger/internal/merger"
	"keymerger/internal/storage"
	"keymerger/internal/validation"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitSuccess          = 0
	ExitFailure          = 1
	ExitMissingInput     = 2
	ExitParseError       = 3
	ExitInvalidStructure = 4
	ExitIOError          = 5
)

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch merger.Kind(err) {
	case "MissingInput":
		return ExitMissingInput
	case "ParseError":
		return ExitParseError
	case "InvalidStructure":
		return ExitInvalidStructure
	case "IOError":
		return ExitIOError
	default:
		return ExitFailure
	}
}

type rootOptions struct {
	configFile string
	logLevel   string
}

// BuildRootCmd assembles the keymerger command tree.
func BuildRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "keymerger",
		Short: "Add missing JSON keys from a source object to a target object",
		Long: `keymerger copies every top-level key that exists in a source JSON object but not in a
target JSON object into the target with an empty-string value, and writes the result to
<target>_integrated.json next to the target. Existing target keys are never changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a config file (default: ./config/config.yaml or ./config.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug, info, warn or error")

	cmd.AddCommand(newMergeCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// environment is what every subcommand needs after config has been loaded.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.DocumentStore
}

func (e *environment) Close(ctx context.Context) {
	if e.store == nil {
		return
	}
	if err := e.store.Close(ctx); err != nil {
		e.logger.Warn("Failed to close store", "error", err)
	}
}

func (e *environment) service(opts integrator.Options) *integrator.Service {
	return integrator.NewService(e.store, validation.NewObjectValidator(), opts, e.logger)
}

// setup loads config, installs the logger and opens the store. defaultBase is used as
// the file store base when none is configured; "" leaves paths unconfined.
func setup(ctx context.Context, opts *rootOptions, stderr io.Writer, defaultBase string) (*environment, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Storage.File.Path == "" {
		cfg.Storage.File.Path = defaultBase
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	log := logger.Setup(cfg.Logging, stderr)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &environment{cfg: cfg, logger: log, store: store}, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.DocumentStore, error) {
	switch cfg.Type {
	case "", "file":
		fileStore, err := storage.NewFileStore(cfg.File.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		slog.Debug("Using file store", "base", cfg.File.Path)
		return fileStore, nil
	case "mongodb":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		mongoStore, err := storage.NewMongoStore(connectCtx, cfg.MongoDB.ConnectionString, cfg.MongoDB.DatabaseName, cfg.MongoDB.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		slog.Debug("Using MongoDB store", "database", cfg.MongoDB.DatabaseName)
		return mongoStore, nil
	default:
		return nil, errors.New("unknown storage type: " + cfg.Type)
	}
}
