package commands

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// NewValidateCmd creates a new validate command
func NewValidateCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile the ruleset and list its rules",
		Long: `Validate loads the config, compiles every rule and prints them as a table.
A rule that does not compile is reported with its position and the command fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := o.Config.Ruleset()
			if err != nil {
				return err
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(ruleTable(o.Config.Rules)).Srender()
			if err != nil {
				return errors.Errorf("rendering rule table: %w", err)
			}

			o.Logger.Header(o.Config.String())
			o.Logger.Raw(table + "\n")
			o.Logger.LogNewline()
			o.Logger.Successf("%d rules compiled", rs.Len())
			return nil
		},
	}

	return cmd
}

// ruleTable lays out one row per rule
func ruleTable(rules []config.RuleDefinition) pterm.TableData {
	data := pterm.TableData{{"#", "name", "kind", "match", "files", "cases"}}
	for i, def := range rules {
		kind := "regexp"
		if def.Literal {
			kind = "literal"
		}

		files := def.Files
		if files == "" {
			files = "*"
		}

		cases := make([]string, 0, len(def.Cases))
		for key := range def.Cases {
			cases = append(cases, key)
		}
		sort.Strings(cases)

		data = append(data, []string{
			strconv.Itoa(i),
			def.Label(i),
			kind,
			def.Match,
			files,
			strings.Join(cases, ", "),
		})
	}
	return data
}
