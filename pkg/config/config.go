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
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/document"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 🔤 Supported normalization forms
const (
	NormalizeNone = document.NormalizeNone
	NormalizeNFC  = document.NormalizeNFC
	NormalizeNFD  = document.NormalizeNFD
)

// 🔄 RuleDefinition is a single rewrite rule as written in a config file
type RuleDefinition struct {
	Name      string            `json:"name,omitempty" yaml:"name,omitempty"`             // Label used in errors and logs
	Match     string            `json:"match" yaml:"match"`                               // Regular expression, or literal text when Literal is set
	Literal   bool              `json:"literal,omitempty" yaml:"literal,omitempty"`       // Match and replace verbatim
	Replace   string            `json:"replace,omitempty" yaml:"replace,omitempty"`       // Replacement template
	CaseGroup string            `json:"case_group,omitempty" yaml:"case_group,omitempty"` // Group selecting a template from Cases
	Cases     map[string]string `json:"cases,omitempty" yaml:"cases,omitempty"`           // Captured value -> template
	Files     string            `json:"files,omitempty" yaml:"files,omitempty"`           // Optional glob limiting which documents the rule runs on
}

// 📚 Config is a complete ruleset file
type Config struct {
	Documents []string         `json:"documents,omitempty" yaml:"documents,omitempty"` // Document globs, relative to the config file
	Backup    bool             `json:"backup,omitempty" yaml:"backup,omitempty"`       // Write <file>.bak before overwriting
	Normalize string           `json:"normalize,omitempty" yaml:"normalize,omitempty"` // Unicode normalization applied before rewriting
	Rules     []RuleDefinition `json:"rules" yaml:"rules"`

	location string
	ruleset  *rewrite.Ruleset
}

// 🔧 rule converts the definition to an engine rule
func (d RuleDefinition) rule() rewrite.Rule {
	return rewrite.Rule{
		Name:      d.Name,
		Pattern:   d.Match,
		Literal:   d.Literal,
		Replace:   d.Replace,
		CaseGroup: d.CaseGroup,
		Cases:     d.Cases,
	}
}

// 📝 Label returns the rule name, or its position when unnamed
func (d RuleDefinition) Label(index int) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("#%d", index)
}

// 🔍 Validate checks the config and compiles its rules
func Validate(ctx context.Context, cfg *Config) error {
	logger := zerolog.Ctx(ctx)

	if len(cfg.Rules) == 0 {
		return errors.Errorf("at least one rule is required")
	}

	switch cfg.Normalize {
	case NormalizeNone, NormalizeNFC, NormalizeNFD:
	default:
		return errors.Errorf("normalize: unsupported form %q", cfg.Normalize)
	}

	for i, pattern := range cfg.Documents {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("documents[%d]: invalid glob %q", i, pattern)
		}
	}

	rules := make([]rewrite.Rule, len(cfg.Rules))
	for i, def := range cfg.Rules {
		if def.Files != "" && !doublestar.ValidatePattern(def.Files) {
			return errors.Errorf("rule %s: invalid files glob %q", def.Label(i), def.Files)
		}
		rules[i] = def.rule()
	}

	rs, err := rewrite.Compile(rules)
	if err != nil {
		return errors.Errorf("compiling rules: %w", err)
	}
	cfg.ruleset = rs

	logger.Debug().Int("rules", rs.Len()).Int("documents", len(cfg.Documents)).Msg("config validated")
	return nil
}

// 🎯 Ruleset returns the compiled rules, compiling them if needed
func (cfg *Config) Ruleset() (*rewrite.Ruleset, error) {
	if cfg.ruleset != nil {
		return cfg.ruleset, nil
	}
	if err := Validate(context.Background(), cfg); err != nil {
		return nil, err
	}
	return cfg.ruleset, nil
}

// 🎯 RulesetFor returns the compiled rules that apply to the given document path
func (cfg *Config) RulesetFor(path string) (*rewrite.Ruleset, error) {
	rs, err := cfg.Ruleset()
	if err != nil {
		return nil, err
	}

	path = filepath.ToSlash(path)
	return rs.Filter(func(i int, _ rewrite.Rule) bool {
		files := cfg.Rules[i].Files
		if files == "" {
			return true
		}
		matched, err := doublestar.Match(files, path)
		return err == nil && matched
	}), nil
}

// 📂 Dir returns the directory the config was loaded from
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// 📝 Location returns the path the config was loaded from
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s: %d rules, %d document globs", cfg.location, len(cfg.Rules), len(cfg.Documents))
}
