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

import "fmt"

// RuleCompilationError reports a rule whose matcher could not be compiled.
// Index is the rule's zero-based position in the ruleset.
type RuleCompilationError struct {
	Index   int
	Name    string
	Pattern string
	Err     error
}

func (e *RuleCompilationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("rule %d (%s): compiling %q: %v", e.Index, e.Name, e.Pattern, e.Err)
	}
	return fmt.Sprintf("rule %d: compiling %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *RuleCompilationError) Unwrap() error {
	return e.Err
}

// IdempotenceError reports a rule that still changed the text when the
// ruleset was applied to its own output.
type IdempotenceError struct {
	Index int
	Name  string
	Count int
}

func (e *IdempotenceError) Error() string {
	label := fmt.Sprintf("rule %d", e.Index)
	if e.Name != "" {
		label = fmt.Sprintf("rule %d (%s)", e.Index, e.Name)
	}
	return fmt.Sprintf("%s is not idempotent: %d replacements on second pass", label, e.Count)
}
