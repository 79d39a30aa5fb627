package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report documents the rules would change",
		Long: `Check rewrites documents in memory and prints a unified diff for each
one that would change. It never writes and fails when any change is pending.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := run(cmd, o, &flags, operation.ModeCheck, args)
			if errors.Is(err, operation.ErrChangesPending) {
				o.Logger.LogNewline()
				o.Logger.Warningf("%d of %d documents would change", count(results, operation.StatusWouldModify), len(results))
				return err
			}
			if err != nil {
				return err
			}

			o.Logger.LogNewline()
			o.Logger.Successf("%d documents up to date", len(results))
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
