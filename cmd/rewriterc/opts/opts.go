package opts

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/document"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// Flags
	ConfigFile string
	Debug      bool
	LogFile    string

	// Output
	Stdout io.Writer
	Stderr io.Writer

	// Loaded by Load
	Config *config.Config
	Store  *document.Store
	Logger *log.Logger

	closers []io.Closer
}

// Load sets up logging, reads the config and opens the document store.
// The returned context carries the logger.
func (o *RootOpts) Load(ctx context.Context) (context.Context, error) {
	ctx, err := o.SetupLogging(ctx)
	if err != nil {
		return ctx, err
	}

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return ctx, errors.Errorf("loading config: %w", err)
	}

	baseDir, err := filepath.Abs(cfg.Dir())
	if err != nil {
		return ctx, errors.Errorf("resolving config directory: %w", err)
	}

	store, err := document.NewStore(afero.NewOsFs(), baseDir, document.WithNormalization(cfg.Normalize))
	if err != nil {
		return ctx, errors.Errorf("creating document store: %w", err)
	}

	o.Config = cfg
	o.Store = store
	return ctx, nil
}

// SetupLogging creates the user logger and its structured sink
func (o *RootOpts) SetupLogging(ctx context.Context) (context.Context, error) {
	level := zerolog.InfoLevel
	var extra []io.Writer
	if o.Debug {
		level = zerolog.DebugLevel
	}

	if o.LogFile != "" {
		file, err := log.FileSink(o.LogFile)
		if err != nil {
			return ctx, errors.Errorf("opening log file: %w", err)
		}
		o.closers = append(o.closers, file)
		extra = append(extra, file)
	}

	var sink io.Writer
	switch {
	case o.Debug:
		sink = log.Sink(o.Stderr, extra...)
	case len(extra) > 0:
		sink = zerolog.MultiLevelWriter(extra...)
	default:
		sink = io.Discard
	}

	o.Logger = log.New(o.Stdout, sink, level)
	return log.NewContext(ctx, o.Logger), nil
}

// Documents converts command line paths to document patterns for the store.
// With no arguments it returns nil so the config's globs apply.
func (o *RootOpts) Documents(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", arg, err)
		}
		rel, err := o.Store.Rel(abs)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, rel)
	}
	return patterns, nil
}

// Close releases log files opened by Load
func (o *RootOpts) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.closers = nil
	return errors.Join(errs...)
}
