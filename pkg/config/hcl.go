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
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
// HCL treats "${" as interpolation, so templates write "$${name}" or "$1".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filepath.Base(filename))
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclRule struct {
		Name      string            `hcl:"name,label"`
		Match     string            `hcl:"match"`
		Literal   bool              `hcl:"literal,optional"`
		Replace   string            `hcl:"replace,optional"`
		CaseGroup string            `hcl:"case_group,optional"`
		Cases     map[string]string `hcl:"cases,optional"`
		Files     string            `hcl:"files,optional"`
	}
	type hclConfig struct {
		Documents []string  `hcl:"documents,optional"`
		Backup    bool      `hcl:"backup,optional"`
		Normalize string    `hcl:"normalize,optional"`
		Rules     []hclRule `hcl:"rule,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Documents: hclCfg.Documents,
		Backup:    hclCfg.Backup,
		Normalize: hclCfg.Normalize,
	}
	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, RuleDefinition{
			Name:      r.Name,
			Match:     r.Match,
			Literal:   r.Literal,
			Replace:   r.Replace,
			CaseGroup: r.CaseGroup,
			Cases:     r.Cases,
			Files:     r.Files,
		})
	}

	return cfg, nil
}
