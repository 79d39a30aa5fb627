/*
Package rewrite applies ordered pattern/replacement rules to text.

	"the cat sat" --[cat → dog]--> "the dog sat" --[dog → fish]--> "the fish sat"

Each rule runs exactly once, in ruleset order, on the output of the rule
before it. Within a rule every non-overlapping occurrence is replaced,
scanning left to right. A rule that matches nothing leaves the text as is.
There is no fixpoint iteration: a rule whose replacement re-creates its
own match is not run again.

Compile is the only step that can fail. A ruleset either compiles as a
whole or returns a *RuleCompilationError carrying the failing rule's
index, so a bad ruleset never produces partial output.

	rs, err := rewrite.Compile([]rewrite.Rule{
		{Name: "digits", Pattern: `a(\d+)b`, Replace: "<$1>"},
	})
	if err != nil {
		var cerr *rewrite.RuleCompilationError
		if errors.As(err, &cerr) {
			fmt.Printf("bad rule at %d\n", cerr.Index)
		}
		return err
	}
	out := rs.Apply("a12b a34b") // "<12> <34>"

Replacements can vary per match through Cases, keyed on a captured group,
or through Func for programmatic use.
*/
package rewrite
