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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
documents:
  - "docs/**/*.txt"
rules:
  - name: pets
    match: cat
    replace: dog
  - name: status
    match: '(\w+) (\d+): failed'
    cases:
      Memory: "$1 $2: passed"
`

// 🔧 setupWorkspace writes a config and documents into a temp dir
func setupWorkspace(t *testing.T, cfg string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rewriterc.yaml"), []byte(cfg), 0o644))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(content)
}

func TestExecute(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	pterm.DisableStyling()
	defer func() {
		color.NoColor = prev
		pterm.EnableStyling()
	}()

	files := map[string]string{
		"docs/a.txt":        "cat 1\n",
		"docs/nested/b.txt": "Memory 2: failed\n",
		"docs/c.txt":        "bird\n",
	}

	tests := []struct {
		name       string
		config     string
		args       func(dir string) []string
		wantCode   int
		wantOutput []string
		check      func(t *testing.T, dir string)
	}{
		{
			name:     "apply",
			config:   testConfig,
			args:     func(dir string) []string { return []string{"apply"} },
			wantCode: exitOK,
			wantOutput: []string{
				"docs/a.txt",
				"2 of 3 documents rewritten",
			},
			check: func(t *testing.T, dir string) {
				assert.Equal(t, "dog 1\n", readFile(t, dir, "docs/a.txt"))
				assert.Equal(t, "Memory 2: passed\n", readFile(t, dir, "docs/nested/b.txt"))
				assert.Equal(t, "bird\n", readFile(t, dir, "docs/c.txt"))
			},
		},
		{
			name:     "apply_async",
			config:   testConfig,
			args:     func(dir string) []string { return []string{"apply", "--async", "--jobs", "2"} },
			wantCode: exitOK,
			check: func(t *testing.T, dir string) {
				assert.Equal(t, "dog 1\n", readFile(t, dir, "docs/a.txt"))
				assert.Equal(t, "Memory 2: passed\n", readFile(t, dir, "docs/nested/b.txt"))
			},
		},
		{
			name:   "apply_positional_files",
			config: testConfig,
			args: func(dir string) []string {
				return []string{"apply", filepath.Join(dir, "docs", "a.txt")}
			},
			wantCode:   exitOK,
			wantOutput: []string{"1 of 1 documents rewritten"},
			check: func(t *testing.T, dir string) {
				assert.Equal(t, "dog 1\n", readFile(t, dir, "docs/a.txt"))
				assert.Equal(t, "Memory 2: failed\n", readFile(t, dir, "docs/nested/b.txt"))
			},
		},
		{
			name:       "apply_dry_run",
			config:     testConfig,
			args:       func(dir string) []string { return []string{"apply", "--dry-run"} },
			wantCode:   exitOK,
			wantOutput: []string{"+dog 1", "2 of 3 documents would change"},
			check: func(t *testing.T, dir string) {
				assert.Equal(t, "cat 1\n", readFile(t, dir, "docs/a.txt"))
			},
		},
		{
			name:       "check_pending",
			config:     testConfig,
			args:       func(dir string) []string { return []string{"check"} },
			wantCode:   exitFailure,
			wantOutput: []string{"--- a/docs/a.txt", "-cat 1", "+dog 1", "2 of 3 documents would change"},
			check: func(t *testing.T, dir string) {
				assert.Equal(t, "cat 1\n", readFile(t, dir, "docs/a.txt"))
			},
		},
		{
			name:       "check_clean",
			config:     testConfig,
			args:       func(dir string) []string { return []string{"check", filepath.Join(dir, "docs", "c.txt")} },
			wantCode:   exitOK,
			wantOutput: []string{"1 documents up to date"},
		},
		{
			name:       "verify_stable",
			config:     testConfig,
			args:       func(dir string) []string { return []string{"verify"} },
			wantCode:   exitOK,
			wantOutput: []string{"3 documents stable"},
		},
		{
			name: "verify_unstable",
			config: `
documents: ["docs/**/*.txt"]
rules:
  - name: stutter
    match: 'cat'
    replace: 'catcat'
`,
			args:       func(dir string) []string { return []string{"verify"} },
			wantCode:   exitFailure,
			wantOutput: []string{"not idempotent", "docs/a.txt"},
		},
		{
			name:       "validate",
			config:     testConfig,
			args:       func(dir string) []string { return []string{"validate"} },
			wantCode:   exitOK,
			wantOutput: []string{"pets", "status", "Memory", "2 rules compiled"},
		},
		{
			name: "invalid_rule",
			config: `
documents: ["docs/**/*.txt"]
rules:
  - name: broken
    match: 'a(b'
`,
			args:       func(dir string) []string { return []string{"apply"} },
			wantCode:   exitInvalidRules,
			wantOutput: []string{"rule 0 (broken)"},
			check: func(t *testing.T, dir string) {
				assert.Equal(t, "cat 1\n", readFile(t, dir, "docs/a.txt"))
			},
		},
		{
			name:       "file_outside_config_dir",
			config:     testConfig,
			args:       func(dir string) []string { return []string{"apply", filepath.Join(dir, "..", "elsewhere.txt")} },
			wantCode:   exitFailure,
			wantOutput: []string{"outside"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupWorkspace(t, tt.config, files)
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			args := append([]string{"--config", filepath.Join(dir, ".rewriterc.yaml")}, tt.args(dir)...)
			code := execute(context.Background(), args, stdout, stderr)

			output := stdout.String() + stderr.String()
			assert.Equal(t, tt.wantCode, code, "exit code should match, output:\n%s", output)
			for _, want := range tt.wantOutput {
				assert.Contains(t, output, want)
			}
			if tt.check != nil {
				tt.check(t, dir)
			}
		})
	}
}

func TestExecute_MissingConfig(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := execute(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "check"}, stdout, stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout.String()+stderr.String(), "❌ loading config: reading config file")
}

func TestExecute_LogFile(t *testing.T) {
	dir := setupWorkspace(t, testConfig, map[string]string{"docs/a.txt": "cat"})
	logFile := filepath.Join(dir, "logs", "rewriterc.log")

	code := execute(context.Background(), []string{
		"--config", filepath.Join(dir, ".rewriterc.yaml"),
		"--log-file", logFile,
		"apply",
	}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Equal(t, exitOK, code)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"document":"docs/a.txt"`)
}

func TestExecute_Version(t *testing.T) {
	stdout := &bytes.Buffer{}
	code := execute(context.Background(), []string{"version"}, stdout, &bytes.Buffer{})
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "rewriterc version info")

	stdout.Reset()
	code = execute(context.Background(), []string{"version", "--json"}, stdout, &bytes.Buffer{})
	require.Equal(t, exitOK, code)

	var info VersionInfo
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}

func TestVersionFrom(t *testing.T) {
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		want VersionInfo
	}{
		{
			name: "no_build_info",
			want: VersionInfo{Version: "dev"},
		},
		{
			name: "devel_build",
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: VersionInfo{Version: "dev"},
		},
		{
			name: "stamped_build",
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{
					{Key: "vcs", Value: "git"},
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: VersionInfo{Version: "v1.2.3", VCS: "git", Revision: "abc123", Time: "2025-01-02T03:04:05Z", Modified: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := versionFrom(tt.bi)
			assert.NotEmpty(t, got.GoVersion)
			assert.NotEmpty(t, got.Platform)

			got.GoVersion, got.Platform = "", ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionInfo_Render(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	out, err := VersionInfo{Version: "v1.2.3", Revision: "abc123", Modified: true}.render()
	require.NoError(t, err)
	assert.Contains(t, out, "rewriterc version info")
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "abc123 (modified)")
}
