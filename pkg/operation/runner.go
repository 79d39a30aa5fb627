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
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner rewrites a set of documents with a config's ruleset
type Runner struct {
	opts Options
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Parallelism == 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	return &Runner{opts: opts}, nil
}

// 🏃 Run processes every document and reports one result per document,
// sorted by path. Rules are compiled before any document is read.
func (r *Runner) Run(ctx context.Context) ([]DocumentResult, error) {
	logger := zerolog.Ctx(ctx)

	rs, err := r.opts.Config.Ruleset()
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}

	patterns := r.opts.Documents
	if len(patterns) == 0 {
		patterns = r.opts.Config.Documents
	}
	if len(patterns) == 0 {
		return nil, errors.Errorf("no documents to rewrite")
	}

	paths, err := r.opts.Store.Glob(ctx, patterns...)
	if err != nil {
		return nil, errors.Errorf("resolving documents: %w", err)
	}

	logger.Debug().
		Str("mode", r.opts.Mode.String()).
		Int("rules", rs.Len()).
		Int("documents", len(paths)).
		Bool("async", r.opts.Async).
		Msg("starting run")

	var results []DocumentResult
	if r.opts.Async {
		results, err = r.runAsync(ctx, paths)
	} else {
		results, err = r.runSync(ctx, paths)
	}
	if err != nil {
		return nil, err
	}

	r.report(ctx, results)

	return results, r.outcome(results)
}

// 🔄 runSync processes documents one at a time
func (r *Runner) runSync(ctx context.Context, paths []string) ([]DocumentResult, error) {
	results := make([]DocumentResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("operation cancelled: %w", err)
		}
		res, err := r.processDocument(ctx, path)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ⚡ runAsync processes documents concurrently, at most Parallelism at once
func (r *Runner) runAsync(ctx context.Context, paths []string) ([]DocumentResult, error) {
	results := make([]DocumentResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Errorf("operation cancelled: %w", err)
			}
			res, err := r.processDocument(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// 📄 processDocument rewrites a single document according to the run mode
func (r *Runner) processDocument(ctx context.Context, path string) (DocumentResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("document", path).Logger()
	ctx = logger.WithContext(ctx)

	rs, err := r.opts.Config.RulesetFor(path)
	if err != nil {
		return DocumentResult{}, errors.Errorf("selecting rules for %s: %w", path, err)
	}

	text, err := r.opts.Store.Read(ctx, path)
	if err != nil {
		return DocumentResult{}, err
	}

	result, err := rs.Rewrite(ctx, strings.NewReader(text))
	if err != nil {
		return DocumentResult{}, errors.Errorf("rewriting %s: %w", path, err)
	}

	res := DocumentResult{
		Path:         path,
		Status:       StatusUnchanged,
		Replacements: result.ReplacementCount,
	}
	for _, rule := range result.Rules {
		if rule.Replaced > 0 {
			res.Rules++
		}
	}

	switch r.opts.Mode {
	case ModeApply:
		if !result.WasModified {
			break
		}
		if r.opts.Config.Backup {
			if err := r.opts.Store.Backup(ctx, path); err != nil {
				return DocumentResult{}, errors.Errorf("backing up %s: %w", path, err)
			}
		}
		if err := r.opts.Store.WriteAtomic(ctx, path, result.Modified); err != nil {
			return DocumentResult{}, errors.Errorf("writing %s: %w", path, err)
		}
		res.Status = StatusModified

	case ModeCheck:
		if result.WasModified {
			res.Status = StatusWouldModify
			res.Diff = udiff.Unified("a/"+path, "b/"+path, text, result.Modified)
		}

	case ModeVerify:
		if err := rs.CheckIdempotent(text); err != nil {
			res.Status = StatusUnstable
			res.Err = errors.Errorf("%s: %w", path, err)
		} else {
			res.Status = StatusStable
		}
	}

	logger.Debug().
		Str("status", string(res.Status)).
		Int("replacements", res.Replacements).
		Msg("document processed")

	return res, nil
}

// 📝 report logs one line per document, plus diffs in check mode
func (r *Runner) report(ctx context.Context, results []DocumentResult) {
	ulog := log.FromContext(ctx)
	ulog.Header(fmt.Sprintf("%s • %d documents", r.opts.Mode, len(results)))

	for _, res := range results {
		ulog.LogDocument(ctx, log.DocumentOperation{
			Path:         res.Path,
			Status:       string(res.Status),
			IsModified:   res.Status == StatusModified,
			IsPending:    res.Status == StatusWouldModify || res.Status == StatusUnstable,
			IsStable:     res.Status == StatusStable,
			Replacements: res.Replacements,
			Rules:        res.Rules,
		})
	}

	for _, res := range results {
		if res.Diff != "" {
			ulog.LogNewline()
			ulog.Raw(res.Diff)
		}
	}
}

// 🚦 outcome turns per document results into the run error
func (r *Runner) outcome(results []DocumentResult) error {
	for _, res := range results {
		switch {
		case res.Err != nil:
			return res.Err
		case res.Status == StatusWouldModify:
			return errors.WithStack(ErrChangesPending)
		}
	}
	return nil
}
