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
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrEmptyPattern is reported for a literal rule with no pattern.
	ErrEmptyPattern = errors.Base("literal pattern is required")

	// ErrUnknownCaseGroup is reported when CaseGroup names a group the pattern does not have.
	ErrUnknownCaseGroup = errors.Base("case group not found in pattern")
)

// Rule defines a single matcher/replacer pair.
type Rule struct {
	// Name labels the rule in errors and reports. Optional.
	Name string

	// Pattern is the matcher. It is an RE2 regular expression unless Literal is set.
	Pattern string

	// Literal matches Pattern verbatim and inserts Replace verbatim.
	Literal bool

	// Replace is the replacement template. $1, ${1}, $name and ${name}
	// expand capture groups and $$ is a literal dollar sign.
	Replace string

	// CaseGroup selects the capture group whose value picks a template
	// from Cases. It is a group name or index and defaults to the first
	// group, or the whole match for patterns without groups.
	CaseGroup string

	// Cases maps a captured value to the template used for that match.
	// Matches without a case fall back to Replace, or are left untouched
	// when Replace is empty.
	Cases map[string]string

	// Func computes the replacement for each match and takes precedence
	// over Replace and Cases.
	Func func(m Match) string
}

// Match is a single occurrence of a rule's pattern in the text being rewritten.
type Match struct {
	text  string
	loc   []int
	names []string
}

// Text returns the whole matched text.
func (m Match) Text() string {
	return m.Group(0)
}

// Start returns the byte offset of the match in the input.
func (m Match) Start() int {
	return m.loc[0]
}

// End returns the byte offset just past the match.
func (m Match) End() int {
	return m.loc[1]
}

// Group returns the text of the i-th capture group, or "" when the group
// does not exist or did not participate in the match.
func (m Match) Group(i int) string {
	if i < 0 || 2*i+1 >= len(m.loc) || m.loc[2*i] < 0 {
		return ""
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]]
}

// Named returns the text of the named capture group.
func (m Match) Named(name string) string {
	for i, n := range m.names {
		if n != "" && n == name {
			return m.Group(i)
		}
	}
	return ""
}

// compiledRule is a Rule with its matcher compiled and its case group resolved.
type compiledRule struct {
	def       Rule
	re        *regexp.Regexp
	caseIndex int
}

func compileRule(r Rule) (*compiledRule, error) {
	if r.Literal && r.Pattern == "" {
		return nil, ErrEmptyPattern
	}

	pattern := r.Pattern
	if r.Literal {
		pattern = regexp.QuoteMeta(pattern)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	cr := &compiledRule{def: cloneRule(r), re: re, caseIndex: -1}
	if len(r.Cases) > 0 {
		idx, err := resolveGroup(re, r.CaseGroup)
		if err != nil {
			return nil, err
		}
		cr.caseIndex = idx
	}

	return cr, nil
}

// resolveGroup maps a group name or index to a submatch index.
func resolveGroup(re *regexp.Regexp, group string) (int, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		if re.NumSubexp() == 0 {
			return 0, nil
		}
		return 1, nil
	}

	if n, err := strconv.Atoi(group); err == nil {
		if n < 0 || n > re.NumSubexp() {
			return 0, errors.Errorf("group %d of %d: %w", n, re.NumSubexp(), ErrUnknownCaseGroup)
		}
		return n, nil
	}

	if idx := re.SubexpIndex(group); idx >= 0 {
		return idx, nil
	}

	return 0, errors.Errorf("group %q: %w", group, ErrUnknownCaseGroup)
}

func cloneRule(r Rule) Rule {
	if r.Cases != nil {
		cases := make(map[string]string, len(r.Cases))
		for k, v := range r.Cases {
			cases[k] = v
		}
		r.Cases = cases
	}
	return r
}

// apply rewrites every non-overlapping match of the rule in text.
// It returns the new text, the number of matches and the number replaced.
func (cr *compiledRule) apply(text string) (string, int, int) {
	locs := cr.re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, 0, 0
	}

	var (
		sb       strings.Builder
		last     int
		replaced int
		buf      []byte
	)
	sb.Grow(len(text))

	for _, loc := range locs {
		sb.WriteString(text[last:loc[0]])
		last = loc[1]

		repl, ok := cr.replacement(text, loc, buf[:0])
		if !ok {
			sb.WriteString(text[loc[0]:loc[1]])
			continue
		}
		buf = repl
		sb.Write(repl)
		replaced++
	}
	sb.WriteString(text[last:])

	return sb.String(), len(locs), replaced
}

// replacement expands the template for one match into dst.
// It reports false when the match should be left as is.
func (cr *compiledRule) replacement(text string, loc []int, dst []byte) ([]byte, bool) {
	if cr.def.Func != nil {
		m := Match{text: text, loc: loc, names: cr.re.SubexpNames()}
		return append(dst, cr.def.Func(m)...), true
	}

	template := cr.def.Replace
	if cr.caseIndex >= 0 {
		m := Match{text: text, loc: loc}
		if tpl, ok := cr.def.Cases[m.Group(cr.caseIndex)]; ok {
			template = tpl
		} else if template == "" {
			return nil, false
		}
	}

	if cr.def.Literal {
		return append(dst, template...), true
	}
	return cr.re.ExpandString(dst, template, text, loc), true
}
