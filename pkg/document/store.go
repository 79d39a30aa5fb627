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

package document

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/unicode/norm"
)

// 📎 Suffixes for files the store writes next to a document
const (
	TempSuffix   = ".tmp"
	BackupSuffix = ".bak"
)

// 🔤 Normalization forms accepted by WithNormalization
const (
	NormalizeNone = ""
	NormalizeNFC  = "nfc"
	NormalizeNFD  = "nfd"
)

// 💾 Store reads and writes documents relative to a base directory
type Store struct {
	fs        afero.Fs
	baseDir   string
	form      string
	normalize func(string) string
}

// 🔧 Option configures a Store
type Option func(*Store)

// 🔤 WithNormalization normalizes text returned by Read to the given form
func WithNormalization(form string) Option {
	return func(s *Store) {
		s.form = form
	}
}

// 🏭 NewStore creates a store over fs rooted at baseDir
func NewStore(fs afero.Fs, baseDir string, opts ...Option) (*Store, error) {
	if fs == nil {
		return nil, errors.Errorf("filesystem is required")
	}
	if baseDir == "" {
		baseDir = "."
	}

	s := &Store{
		fs:      fs,
		baseDir: filepath.Clean(baseDir),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch s.form {
	case NormalizeNone:
	case NormalizeNFC:
		s.normalize = norm.NFC.String
	case NormalizeNFD:
		s.normalize = norm.NFD.String
	default:
		return nil, errors.Errorf("unsupported normalization form %q", s.form)
	}

	return s, nil
}

// 📂 BaseDir returns the directory paths are resolved against
func (s *Store) BaseDir() string {
	return s.baseDir
}

// 🔒 abs returns the filesystem path for a document path
func (s *Store) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(path))
}

// 🔒 Rel converts a filesystem path to a slash separated document path
func (s *Store) Rel(path string) (string, error) {
	rel := filepath.Clean(path)
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(s.baseDir, path)
		if err != nil {
			return "", errors.Errorf("resolving %s: %w", path, err)
		}
	}
	if escapes(rel) {
		return "", errors.Errorf("document %s is outside %s", path, s.baseDir)
	}
	return filepath.ToSlash(rel), nil
}

// 🔍 Glob resolves document patterns to a sorted list of document paths.
// Patterns without glob syntax must name an existing file. Absolute
// patterns are resolved against the base directory, and a pattern whose
// static prefix leaves it is rejected.
func (s *Store) Glob(ctx context.Context, patterns ...string) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	seen := make(map[string]struct{})

	for _, raw := range patterns {
		pattern, err := s.Rel(filepath.FromSlash(raw))
		if err != nil {
			return nil, errors.Errorf("glob %q: %w", raw, err)
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid glob %q", pattern)
		}

		if !hasMeta(pattern) {
			info, err := s.fs.Stat(s.abs(pattern))
			if err != nil {
				return nil, errors.Errorf("document %s: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, errors.Errorf("document %s is a directory", pattern)
			}
			seen[pattern] = struct{}{}
			continue
		}

		matches, err := s.walk(ctx, pattern)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("resolved glob")
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// 🚶 walk collects the files under a pattern's static prefix that match it
func (s *Store) walk(ctx context.Context, pattern string) ([]string, error) {
	prefix, _ := doublestar.SplitPattern(pattern)
	root := s.abs(prefix)

	var matches []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || isScratch(path) {
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		if escapes(rel) {
			return nil
		}
		rel = filepath.ToSlash(rel)

		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", pattern, err)
	}
	return matches, nil
}

// 📖 Read returns the text of a document
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	content, err := afero.ReadFile(s.fs, s.abs(path))
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}

	text := string(content)
	if s.normalize != nil {
		text = s.normalize(text)
	}
	return text, nil
}

// 💾 WriteAtomic replaces a document through a temp file, keeping its mode
func (s *Store) WriteAtomic(ctx context.Context, path string, text string) error {
	absPath := s.abs(path)
	tempPath := absPath + TempSuffix

	mode := os.FileMode(0o644)
	if info, err := s.fs.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking %s: %w", path, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	// Write to temp file
	if err := afero.WriteFile(s.fs, tempPath, []byte(text), mode); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	// Rename temp file to target
	if err := s.fs.Rename(tempPath, absPath); err != nil {
		_ = s.fs.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("document", path).Int("bytes", len(text)).Msg("document written")
	return nil
}

// 🗄️ Backup copies a document to <path>.bak when it exists
func (s *Store) Backup(ctx context.Context, path string) error {
	absPath := s.abs(path)

	info, err := s.fs.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}

	content, err := afero.ReadFile(s.fs, absPath)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}

	if err := afero.WriteFile(s.fs, absPath+BackupSuffix, content, info.Mode().Perm()); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("document", path).Msg("backup written")
	return nil
}

// 🔍 hasMeta reports whether a pattern contains glob syntax
func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// 🔒 escapes reports whether a relative path leaves its base directory
func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// 🔍 isScratch reports whether a file was written by the store itself
func isScratch(path string) bool {
	return strings.HasSuffix(path, TempSuffix) || strings.HasSuffix(path, BackupSuffix)
}
