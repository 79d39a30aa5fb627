/*
Package document reads and writes the files a ruleset rewrites.

	            +-------------+
	            |    Store    |
	            |  (afero.Fs) |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+  +----+----+  +----+----+
	|   Glob   |  |  Read   |  |  Write  |
	| (paths)  |  | (norm)  |  | (.tmp)  |
	+----------+  +---------+  +---------+

🎯 Purpose:
- Resolves doublestar globs to document paths under a base directory
- Reads text, optionally normalized to NFC or NFD
- Replaces documents through a temp file and keeps .bak copies on request

📝 Paths are slash separated and relative to the base directory. The store
never offers its own .tmp or .bak files as documents.

🔍 Example:

	store, err := document.NewStore(afero.NewOsFs(), cfg.Dir())
	paths, err := store.Glob(ctx, cfg.Documents...)
	text, err := store.Read(ctx, paths[0])
	err = store.WriteAtomic(ctx, paths[0], rewritten)
*/
package document
