package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flags  runFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "apply [files...]",
		Short: "Rewrite documents in place",
		Long: `Apply runs every rule over each document and writes the ones that change.
It will:
1. Compile the ruleset (nothing is written if a rule is invalid)
2. Resolve the documents from the arguments or the config's globs
3. Rewrite each document with the rules whose files glob matches it
4. Write changed documents atomically, with a .bak copy when backup is set`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := operation.ModeApply
			if dryRun {
				mode = operation.ModeCheck
			}

			results, err := run(cmd, o, &flags, mode, args)
			if dryRun && errors.Is(err, operation.ErrChangesPending) {
				o.Logger.LogNewline()
				o.Logger.Infof("%d of %d documents would change", count(results, operation.StatusWouldModify), len(results))
				return nil
			}
			if err != nil {
				return err
			}

			o.Logger.LogNewline()
			if dryRun {
				o.Logger.Successf("%d documents already up to date", len(results))
				return nil
			}
			o.Logger.Successf("%d of %d documents rewritten", count(results, operation.StatusModified), len(results))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without writing")

	return cmd
}
