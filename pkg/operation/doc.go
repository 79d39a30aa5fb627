/*
Package operation runs a ruleset over a set of documents.

	+-------------+
	|   Runner    |
	| (Core Logic)|
	+------+------+
	       |
	+------+------+
	|   Rewrite   |
	| (Transform) |
	+------+------+

🎯 Purpose:
- Resolves the documents a run covers
- Rewrites each one with the rules that apply to its path
- Writes, diffs or verifies the result depending on the mode

🔄 Flow:
1. Compiles the ruleset (a bad rule stops the run before any read)
2. Globs documents through the document store
3. Rewrites documents, one at a time or concurrently
4. Reports one line per document via the log package

🎮 Modes:
- ModeApply writes changed documents, with an optional .bak copy
- ModeCheck writes nothing and returns ErrChangesPending with diffs
- ModeVerify returns a *rewrite.IdempotenceError for the first document a
  second pass would change

🔍 Example:

	runner, err := operation.NewRunner(operation.Options{
		Config: cfg,
		Store:  store,
		Mode:   operation.ModeCheck,
	})
	results, err := runner.Run(ctx)
	if errors.Is(err, operation.ErrChangesPending) {
		// at least one document would change
	}
*/
package operation
