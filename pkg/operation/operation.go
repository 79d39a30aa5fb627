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

package operation

import (
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// 🚦 ErrChangesPending is returned by a check run when a document would change
var ErrChangesPending = errors.Base("changes pending")

// 🎮 Mode selects what a run does with rewritten text
type Mode int

const (
	// ModeApply writes changed documents back to the store
	ModeApply Mode = iota
	// ModeCheck reports changes without writing
	ModeCheck
	// ModeVerify checks that a second pass changes nothing
	ModeVerify
)

// 📝 String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeCheck:
		return "check"
	case ModeVerify:
		return "verify"
	default:
		return "unknown"
	}
}

// 📊 Status is the outcome for one document
type Status string

const (
	StatusUnchanged   Status = "unchanged"
	StatusModified    Status = "modified"
	StatusWouldModify Status = "would-modify"
	StatusStable      Status = "stable"
	StatusUnstable    Status = "unstable"
)

// 📄 DocumentResult describes what a run did to one document
type DocumentResult struct {
	Path         string // Document path, relative to the store
	Status       Status // Outcome
	Replacements int    // Matches replaced across all rules
	Rules        int    // Rules that replaced at least once
	Diff         string // Unified diff, check mode only
	Err          error  // Idempotence failure, verify mode only
}

// 🔧 Options contains configuration for a run
type Options struct {
	// Config holds the ruleset and default document globs
	Config *config.Config
	// Store reads and writes documents
	Store *document.Store
	// Mode selects apply, check or verify
	Mode Mode
	// Async processes documents concurrently
	Async bool
	// Parallelism limits concurrent documents; zero means one per CPU
	Parallelism int
	// Documents overrides the config's document globs
	Documents []string
}

// 🔍 validate checks the options
func (o Options) validate() error {
	if o.Config == nil {
		return errors.Errorf("config is required")
	}
	if o.Store == nil {
		return errors.Errorf("store is required")
	}
	switch o.Mode {
	case ModeApply, ModeCheck, ModeVerify:
	default:
		return errors.Errorf("unknown mode %d", o.Mode)
	}
	if o.Parallelism < 0 {
		return errors.Errorf("parallelism must not be negative")
	}
	return nil
}
