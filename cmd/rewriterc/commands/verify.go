package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
)

// NewVerifyCmd creates a new verify command
func NewVerifyCmd(o *opts.RootOpts) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "verify [files...]",
		Short: "Check that rewriting a document twice changes nothing",
		Long: `Verify rewrites each document and then rewrites the result again.
It fails with the first rule that still finds something to replace.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := run(cmd, o, &flags, operation.ModeVerify, args)
			if err != nil {
				if results != nil {
					o.Logger.LogNewline()
					o.Logger.Warningf("%d of %d documents are not stable", count(results, operation.StatusUnstable), len(results))
				}
				return err
			}

			o.Logger.LogNewline()
			o.Logger.Successf("%d documents stable", len(results))
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
