package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// runFlags are the flags shared by commands that process documents
type runFlags struct {
	async bool
	jobs  int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.async, "async", false, "process documents concurrently")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "maximum concurrent documents with --async (default: number of CPUs)")
}

// run executes a runner over the documents named by args, or the config's globs
func run(cmd *cobra.Command, o *opts.RootOpts, f *runFlags, mode operation.Mode, args []string) ([]operation.DocumentResult, error) {
	documents, err := o.Documents(args)
	if err != nil {
		return nil, err
	}

	runner, err := operation.NewRunner(operation.Options{
		Config:      o.Config,
		Store:       o.Store,
		Mode:        mode,
		Async:       f.async,
		Parallelism: f.jobs,
		Documents:   documents,
	})
	if err != nil {
		return nil, errors.Errorf("creating runner: %w", err)
	}

	return runner.Run(cmd.Context())
}

// count returns how many results have the given status
func count(results []operation.DocumentResult, status operation.Status) int {
	n := 0
	for _, res := range results {
		if res.Status == status {
			n++
		}
	}
	return n
}
