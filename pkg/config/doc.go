// Package config loads rewrite rulesets from disk.
//
//	            +-------------+
//	            |   Config    |
//	            |  (Ruleset)  |
//	            +------+------+
//	                   |
//	      +------------+------------+
//	      |            |            |
//	+-----+----+  +----+----+  +----+----+
//	|   YAML   |  |   HCL   |  |  JSON   |
//	|  Parser  |  | Parser  |  | Parser  |
//	+----------+  +---------+  +---------+
//
// 🎯 Purpose:
// - Reads ruleset files in YAML, HCL or JSON
// - Compiles every rule while validating, so a bad pattern never reaches a document
// - Selects the rules that apply to a given document path
//
// 🔄 Flow:
// 1. Reads the file
// 2. Picks a parser by extension (.rewriterc tries YAML, then HCL)
// 3. Validates globs and the normalize form
// 4. Compiles the rules into a rewrite.Ruleset
//
// 📝 YAML example:
//
//	documents:
//	  - "tests/**/*.js"
//	rules:
//	  - name: expected-errors
//	    match: 'assert\(false, `((Memory|Session) \d+: [^-]*error) - \$\{e\.message\}`\);'
//	    replace: 'assert(true, `${1} - $${e.message}`); // Error expected and caught'
//	  - name: status
//	    match: '(\w+) (\d+): failed'
//	    cases:
//	      Memory: "$1 $2: passed"
//	    files: "tests/memory/*.js"
//
// 📝 HCL example:
//
//	documents = ["tests/**/*.js"]
//
//	rule "digits" {
//	  match   = "a(\\d+)b"
//	  replace = "<$1>"
//	}
//
// 🔍 Errors:
//
//	cfg, err := config.Load(ctx, ".rewriterc.yaml")
//	if err != nil {
//		var cerr *rewrite.RuleCompilationError
//		if errors.As(err, &cerr) {
//			// rule cerr.Index has a malformed pattern
//		}
//		return err
//	}
package config
