package lint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"polylint/internal/cache"
	"polylint/internal/errors"
	"polylint/internal/paths"
	"polylint/internal/sortcomp"
	"polylint/internal/syntax"
	"polylint/internal/version"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":             true,
	"node_modules":     true,
	"vendor":           true,
	"dist":             true,
	"build":            true,
	"bower_components": true,
	paths.DirName:      true,
}

// RunOptions controls a Runner.Run call.
type RunOptions struct {
	// Fix applies fixes; Write stores fixed files back to disk.
	Fix   bool
	Write bool

	Include     []string
	Exclude     []string
	Extensions  []string
	MaxFileSize int64

	// Cache is optional. It is consulted only when Fix is false.
	Cache *cache.Store
}

// Summary is the result of a run.
type Summary struct {
	RunID        string        `json:"runId"`
	Root         string        `json:"root"`
	Files        []FileResult  `json:"files"`
	FilesChecked int           `json:"filesChecked"`
	FilesSkipped int           `json:"filesSkipped"`
	FilesCached  int           `json:"filesCached"`
	FilesFixed   int           `json:"filesFixed"`
	Violations   int           `json:"violations"`
	Fixable      int           `json:"fixable"`
	FixesApplied int           `json:"fixesApplied"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration"`
}

// HasViolations reports whether any diagnostics remain.
func (s *Summary) HasViolations() bool {
	return s.Violations > 0
}

// HasErrors reports whether any file failed.
func (s *Summary) HasErrors() bool {
	return s.Errors > 0
}

// Runner lints files below a repository root.
type Runner struct {
	root   string
	engine *Engine
	logger *slog.Logger
}

// NewRunner creates a runner for root.
func NewRunner(root string, engine *Engine, logger *slog.Logger) *Runner {
	return &Runner{
		root:   root,
		engine: engine,
		logger: logger,
	}
}

// Run lints the given files and directories; with no paths it lints the
// whole root. A cancelled context stops the run between files and returns
// the partial summary together with the context error.
func (r *Runner) Run(ctx context.Context, targets []string, opts RunOptions) (*Summary, error) {
	start := time.Now()
	if len(opts.Extensions) == 0 {
		opts.Extensions = syntax.Extensions()
	}

	summary := &Summary{Root: r.root, Files: []FileResult{}}

	var run *cache.Run
	if opts.Cache != nil {
		var err error
		run, err = opts.Cache.BeginRun()
		if err != nil {
			r.logger.Warn("Cache unavailable", "error", err)
			opts.Cache = nil
		} else {
			summary.RunID = run.ID
		}
	}
	if summary.RunID == "" {
		summary.RunID = uuid.New().String()
	}

	wholeRoot := len(targets) == 0
	if wholeRoot {
		targets = []string{r.root}
	}

	files, skipped, err := r.findFiles(targets, opts)
	if err != nil {
		return nil, err
	}
	summary.FilesSkipped = skipped

	configHash := r.configHash()
	seen := make([]string, 0, len(files))

	var runErr error
	for _, file := range files {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		display := paths.DisplayPath(file, r.root)
		seen = append(seen, display)
		res := r.lintFile(ctx, file, display, configHash, opts)
		summary.add(res)
	}

	sort.SliceStable(summary.Files, func(i, j int) bool {
		return summary.Files[i].Path < summary.Files[j].Path
	})
	summary.Duration = time.Since(start)

	if opts.Cache != nil {
		if wholeRoot && runErr == nil {
			if _, err := opts.Cache.Prune(seen); err != nil {
				r.logger.Warn("Cache prune failed", "error", err)
			}
		}
		run.Files = summary.FilesChecked
		run.Violations = summary.Violations
		if err := opts.Cache.FinishRun(run); err != nil {
			r.logger.Warn("Cannot record run", "error", err)
		}
	}

	r.logger.Info("Run complete",
		"files", summary.FilesChecked,
		"violations", summary.Violations,
		"fixed", summary.FilesFixed,
		"errors", summary.Errors,
		"duration", summary.Duration)

	return summary, runErr
}

func (s *Summary) add(res FileResult) {
	s.FilesChecked++
	if res.Cached {
		s.FilesCached++
	}
	if res.Error != nil {
		s.Errors++
	}
	if res.Fixed {
		s.FilesFixed++
	}
	s.Violations += len(res.Diagnostics)
	s.Fixable += res.Fixable()
	s.FixesApplied += res.FixesApplied
	s.Files = append(s.Files, res)
}

func (r *Runner) lintFile(ctx context.Context, file, display, configHash string, opts RunOptions) FileResult {
	src, err := os.ReadFile(file)
	if err != nil {
		r.logger.Warn("Cannot read file", "file", display, "error", err)
		return FileResult{
			Path:  display,
			Error: errors.NewLintError(errors.FileUnreadable, "cannot read "+display, err, nil),
		}
	}

	if opts.Fix {
		res := r.engine.FixSource(ctx, file, src)
		res.Path = display
		if res.Fixed && opts.Write {
			if err := writeFile(file, res.Output); err != nil {
				r.logger.Warn("Cannot write file", "file", display, "error", err)
				res.Error = errors.NewLintError(errors.FileUnreadable, "cannot write "+display, err, nil)
			}
		}
		return res
	}

	var hash string
	if opts.Cache != nil {
		hash = cache.HashContent(src)
		diags, ok, err := opts.Cache.Get(display, hash, configHash)
		if err != nil {
			r.logger.Debug("Cache lookup failed", "file", display, "error", err)
		} else if ok {
			return FileResult{Path: display, Diagnostics: diags, Output: string(src), Cached: true}
		}
	}

	res := r.engine.LintSource(ctx, file, src)
	res.Path = display
	if opts.Cache != nil && res.Error == nil {
		if err := opts.Cache.Put(display, hash, configHash, res.Diagnostics); err != nil {
			r.logger.Debug("Cache store failed", "file", display, "error", err)
		}
	}
	return res
}

// configHash identifies everything besides file content that affects
// diagnostics.
func (r *Runner) configHash() string {
	keys := r.engine.Order().Keys()
	return cache.HashConfig(sortcomp.RuleID, version.Version, strings.Join(keys, ","))
}

func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}

// findFiles expands targets into the sorted list of files to lint. Files
// named explicitly are always linted; files found by walking a directory
// must pass the extension, include, exclude and size filters.
func (r *Runner) findFiles(targets []string, opts RunOptions) ([]string, int, error) {
	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool)
	var files []string
	skipped := 0
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid path %s: %w", target, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, 0, errors.NewLintError(errors.FileUnreadable, "cannot access "+target, err, nil)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil //nolint:nilerr // skip inaccessible
			}
			rel := r.relPath(path)

			if info.IsDir() {
				if path != abs && (skipDirs[info.Name()] || matchAny(opts.Exclude, rel, info.Name())) {
					return filepath.SkipDir
				}
				return nil
			}

			if !extensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if len(opts.Include) > 0 && !matchAny(opts.Include, rel, info.Name()) {
				return nil
			}
			if matchAny(opts.Exclude, rel, info.Name()) {
				return nil
			}
			if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
				r.logger.Debug("Skipping large file", "file", rel, "size", info.Size())
				skipped++
				return nil
			}

			add(path)
			return nil
		})
		if err != nil {
			return nil, 0, err
		}
	}

	sort.Strings(files)
	return files, skipped, nil
}

func (r *Runner) relPath(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// matchAny matches patterns against the slash-separated relative path, its
// directory prefixes and the base name.
func matchAny(patterns []string, rel, base string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if m, _ := filepath.Match(pattern, rel); m {
			return true
		}
		if m, _ := filepath.Match(pattern, base); m {
			return true
		}
		if strings.HasPrefix(rel, pattern+"/") {
			return true
		}
	}
	return false
}
