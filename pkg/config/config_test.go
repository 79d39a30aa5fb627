// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/pkg/rewrite"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func TestLoadFs(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
		wantIndex   int
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: "/work/rules.yaml",
			config: `
documents:
  - "src/**/*.js"
backup: true
normalize: nfc
rules:
  - name: digits
    match: 'a(\d+)b'
    replace: '<$1>'
  - name: status
    match: '(\w+) (\d+): failed'
    case_group: "1"
    cases:
      Memory: "$1 $2: ok"
    files: "src/memory/*.js"
  - match: "a.b"
    literal: true
    replace: "x"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"src/**/*.js"}, cfg.Documents, "documents should match")
				assert.True(t, cfg.Backup, "backup should be set")
				assert.Equal(t, NormalizeNFC, cfg.Normalize, "normalize should match")
				require.Len(t, cfg.Rules, 3, "should have 3 rules")
				assert.Equal(t, "digits", cfg.Rules[0].Name)
				assert.Equal(t, `a(\d+)b`, cfg.Rules[0].Match)
				assert.Equal(t, "<$1>", cfg.Rules[0].Replace)
				assert.Equal(t, map[string]string{"Memory": "$1 $2: ok"}, cfg.Rules[1].Cases)
				assert.Equal(t, "src/memory/*.js", cfg.Rules[1].Files)
				assert.True(t, cfg.Rules[2].Literal)
				assert.Equal(t, "#2", cfg.Rules[2].Label(2))
				assert.Equal(t, "/work", cfg.Dir())
				assert.Equal(t, "/work/rules.yaml", cfg.Location())

				rs, err := cfg.Ruleset()
				require.NoError(t, err)
				assert.Equal(t, 3, rs.Len())
				assert.Equal(t, "<12> x", rs.Apply("a12b a.b"))
			},
		},
		{
			name:     "minimal_json",
			filename: "/work/rules.json",
			config:   `{"rules": [{"match": "cat", "replace": "dog"}]}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Documents)
				require.Len(t, cfg.Rules, 1)
				rs, err := cfg.Ruleset()
				require.NoError(t, err)
				assert.Equal(t, "dog", rs.Apply("cat"))
			},
		},
		{
			name:     "valid_hcl",
			filename: "/work/rules.hcl",
			config: `
documents = ["*.txt"]

rule "digits" {
  match   = "a(\\d+)b"
  replace = "<$1>"
}

rule "status" {
  match = "(\\w+) (\\d+): failed"
  cases = {
    Memory = "$1 $2: ok"
  }
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"*.txt"}, cfg.Documents)
				require.Len(t, cfg.Rules, 2)
				assert.Equal(t, "digits", cfg.Rules[0].Name)
				assert.Equal(t, `a(\d+)b`, cfg.Rules[0].Match)
				assert.Equal(t, "status", cfg.Rules[1].Name)
				assert.Equal(t, "$1 $2: ok", cfg.Rules[1].Cases["Memory"])
			},
		},
		{
			name:     "rewriterc_yaml",
			filename: "/work/.rewriterc",
			config: `
rules:
  - match: cat
    replace: dog
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Rules, 1)
				assert.Equal(t, "cat", cfg.Rules[0].Match)
			},
		},
		{
			name:     "rewriterc_hcl",
			filename: "/work/.rewriterc",
			config: `
rule "animals" {
  match   = "cat"
  replace = "dog"
}
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Rules, 1)
				assert.Equal(t, "animals", cfg.Rules[0].Name)
			},
		},
		{
			name:     "invalid_regex",
			filename: "/work/rules.yaml",
			config: `
rules:
  - match: ok
    replace: fine
  - name: broken
    match: 'a(\d+'
    replace: x
`,
			errContains: "rule 1 (broken)",
			wantIndex:   1,
		},
		{
			name:     "unknown_field",
			filename: "/work/rules.yaml",
			config: `
rules:
  - match: cat
    replce: dog
`,
			errContains: "field replce not found",
		},
		{
			name:        "unknown_json_field",
			filename:    "/work/rules.json",
			config:      `{"rules": [{"match": "cat"}], "extra": true}`,
			errContains: "unknown field",
		},
		{
			name:        "no_rules",
			filename:    "/work/rules.yaml",
			config:      "documents: [\"*.txt\"]\n",
			errContains: "at least one rule is required",
		},
		{
			name:     "bad_normalize",
			filename: "/work/rules.yaml",
			config: `
normalize: nfkc
rules:
  - match: cat
`,
			errContains: "unsupported form",
		},
		{
			name:     "bad_document_glob",
			filename: "/work/rules.yaml",
			config: `
documents: ["src/[a"]
rules:
  - match: cat
`,
			errContains: "invalid glob",
		},
		{
			name:     "bad_files_glob",
			filename: "/work/rules.yaml",
			config: `
rules:
  - name: scoped
    match: cat
    files: "src/{a"
`,
			errContains: "rule scoped: invalid files glob",
		},
		{
			name:        "unsupported_extension",
			filename:    "/work/rules.toml",
			config:      "rules = []",
			errContains: "unsupported file extension",
		},
		{
			name:        "bad_rewriterc",
			filename:    "/work/.rewriterc",
			config:      "rule {{{",
			errContains: "failed to parse .rewriterc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.filename, []byte(tt.config), 0o644))

			cfg, err := LoadFs(testContext(t), fs, tt.filename)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				if tt.wantIndex > 0 {
					var cerr *rewrite.RuleCompilationError
					require.ErrorAs(t, err, &cerr)
					assert.Equal(t, tt.wantIndex, cerr.Index)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadFs_MissingFile(t *testing.T) {
	_, err := LoadFs(testContext(t), afero.NewMemMapFs(), "/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestFormatsAreEquivalent(t *testing.T) {
	files := map[string]string{
		"/r/rules.yaml": `
documents: ["*.txt"]
rules:
  - name: digits
    match: 'a(\d+)b'
    replace: "<$1>"
    files: "*.txt"
  - name: status
    match: '(\w+): failed'
    cases:
      Memory: "$1: ok"
`,
		"/r/rules.json": `{
  "documents": ["*.txt"],
  "rules": [
    {"name": "digits", "match": "a(\\d+)b", "replace": "<$1>", "files": "*.txt"},
    {"name": "status", "match": "(\\w+): failed", "cases": {"Memory": "$1: ok"}}
  ]
}`,
		"/r/rules.hcl": `
documents = ["*.txt"]

rule "digits" {
  match   = "a(\\d+)b"
  replace = "<$1>"
  files   = "*.txt"
}

rule "status" {
  match = "(\\w+): failed"
  cases = { Memory = "$1: ok" }
}
`,
	}

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	yamlCfg, err := LoadFs(testContext(t), fs, "/r/rules.yaml")
	require.NoError(t, err)

	for _, name := range []string{"/r/rules.json", "/r/rules.hcl"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadFs(testContext(t), fs, name)
			require.NoError(t, err)
			assert.Equal(t, yamlCfg.Documents, cfg.Documents)
			assert.Equal(t, yamlCfg.Rules, cfg.Rules)
		})
	}
}

func TestRulesetFor(t *testing.T) {
	cfg := &Config{
		Rules: []RuleDefinition{
			{Name: "everywhere", Match: "a", Replace: "b"},
			{Name: "memory", Match: "b", Replace: "c", Files: "tests/memory/**"},
			{Name: "js", Match: "c", Replace: "d", Files: "**/*.js"},
		},
	}
	require.NoError(t, Validate(context.Background(), cfg))

	tests := []struct {
		path string
		want string
	}{
		{path: "README.md", want: "b"},
		{path: "tests/memory/store.txt", want: "c"},
		{path: "tests/memory/store.js", want: "d"},
		{path: "tests/router.js", want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rs, err := cfg.RulesetFor(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rs.Apply("a"))
		})
	}
}

func TestRuleset_CompilesLazily(t *testing.T) {
	cfg := &Config{Rules: []RuleDefinition{{Match: "("}}}

	_, err := cfg.Ruleset()
	require.Error(t, err)

	var cerr *rewrite.RuleCompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, cerr.Index)
}

func TestLoad_NegativeTestsRuleset(t *testing.T) {
	cfg, err := Load(testContext(t), "testdata/negative_tests.yaml")
	require.NoError(t, err)
	assert.Equal(t, "testdata", cfg.Dir())

	input, err := os.ReadFile("testdata/suite.js")
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/suite.expected.js")
	require.NoError(t, err)

	rs, err := cfg.RulesetFor("suite.js")
	require.NoError(t, err)

	result := rs.Report(string(input))
	assert.Equal(t, string(want), result.Modified)
	assert.Equal(t, 5, result.ReplacementCount)
	require.NoError(t, rs.CheckIdempotent(string(input)))
}
