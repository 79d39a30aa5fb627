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

package rewrite

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Ruleset is a compiled, ordered sequence of rules. It is immutable and
// safe for concurrent use.
type Ruleset struct {
	rules []*compiledRule
}

// RuleReport describes what a single rule did during one pass.
type RuleReport struct {
	Index    int
	Name     string
	Matches  int
	Replaced int
}

// Result contains the outcome of rewriting one document.
type Result struct {
	// Original is the text before any rule ran.
	Original string

	// Modified is the text after the last rule ran.
	Modified string

	// WasModified indicates the text changed.
	WasModified bool

	// ReplacementCount is the number of matches replaced across all rules.
	ReplacementCount int

	// Rules holds one report per rule, in ruleset order.
	Rules []RuleReport
}

// Compile compiles every rule in order. The first rule that fails yields a
// *RuleCompilationError and no ruleset.
func Compile(rules []Rule) (*Ruleset, error) {
	rs := &Ruleset{rules: make([]*compiledRule, 0, len(rules))}
	for i, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, errors.WithStack(&RuleCompilationError{
				Index:   i,
				Name:    r.Name,
				Pattern: r.Pattern,
				Err:     err,
			})
		}
		rs.rules = append(rs.rules, cr)
	}
	return rs, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(rules []Rule) *Ruleset {
	rs, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// Apply compiles rules and applies them to text. When any rule fails to
// compile no rule is applied and the error is returned.
func Apply(text string, rules []Rule) (string, error) {
	rs, err := Compile(rules)
	if err != nil {
		return "", err
	}
	return rs.Apply(text), nil
}

// Len returns the number of rules.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Rules returns copies of the rule definitions in order.
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	for i, cr := range rs.rules {
		out[i] = cloneRule(cr.def)
	}
	return out
}

// Filter returns a ruleset holding the rules for which keep reports true,
// in their original order. keep receives each rule's index in rs.
func (rs *Ruleset) Filter(keep func(index int, r Rule) bool) *Ruleset {
	out := &Ruleset{}
	for i, cr := range rs.rules {
		if keep(i, cloneRule(cr.def)) {
			out.rules = append(out.rules, cr)
		}
	}
	return out
}

// Apply runs every rule once, in order, each on the output of the previous.
func (rs *Ruleset) Apply(text string) string {
	for _, cr := range rs.rules {
		text, _, _ = cr.apply(text)
	}
	return text
}

// Report is like Apply but also records what each rule did.
func (rs *Ruleset) Report(text string) *Result {
	result := &Result{
		Original: text,
		Rules:    make([]RuleReport, len(rs.rules)),
	}

	current := text
	for i, cr := range rs.rules {
		var matches, replaced int
		current, matches, replaced = cr.apply(current)
		result.Rules[i] = RuleReport{
			Index:    i,
			Name:     cr.def.Name,
			Matches:  matches,
			Replaced: replaced,
		}
		result.ReplacementCount += replaced
	}

	result.Modified = current
	result.WasModified = current != text
	return result
}

// Rewrite reads the whole of content and rewrites it.
func (rs *Ruleset) Rewrite(ctx context.Context, content io.Reader) (*Result, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := rs.Report(string(data))

	logger := zerolog.Ctx(ctx)
	for _, r := range result.Rules {
		logger.Trace().
			Int("rule", r.Index).
			Str("name", r.Name).
			Int("matches", r.Matches).
			Int("replaced", r.Replaced).
			Msg("rule applied")
	}

	return result, nil
}

// CheckIdempotent applies the ruleset to text and then to its own output.
// It returns an *IdempotenceError naming the first rule that changed the
// text on the second pass.
func (rs *Ruleset) CheckIdempotent(text string) error {
	current := rs.Apply(text)
	for i, cr := range rs.rules {
		next, _, replaced := cr.apply(current)
		if next != current {
			return errors.WithStack(&IdempotenceError{
				Index: i,
				Name:  cr.def.Name,
				Count: replaced,
			})
		}
	}
	return nil
}
