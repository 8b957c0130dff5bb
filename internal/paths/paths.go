package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirName is the per-repository data directory
	DirName = ".polylint"
	// ConfigFileName is the config file inside DirName
	ConfigFileName = "config.json"
	// CacheFileName is the result cache database inside DirName
	CacheFileName = "cache.db"
)

// DataDir returns <repoRoot>/.polylint
func DataDir(repoRoot string) string {
	return filepath.Join(repoRoot, DirName)
}

// EnsureDataDir creates <repoRoot>/.polylint if needed and returns it
func EnsureDataDir(repoRoot string) (string, error) {
	dir := DataDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigPath returns the path of the repository config file
func ConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, DirName, ConfigFileName)
}

// FindRepoRoot walks up from start to the nearest directory containing a
// .polylint or .git entry. It returns start itself when neither is found.
func FindRepoRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for dir := abs; ; {
		for _, marker := range []string{DirName, ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			repoRootResolved = repoRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// DisplayPath returns path relative to repoRoot when it lies inside it, and
// path unchanged otherwise.
func DisplayPath(path string, repoRoot string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return NormalizePath(path)
	}
	canonical, err := CanonicalizePath(abs, repoRoot)
	if err != nil || strings.HasPrefix(canonical, "..") {
		return NormalizePath(path)
	}
	return canonical
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}

	// Path is outside repo if it starts with ..
	return !strings.HasPrefix(canonical, "..")
}

// NormalizePath converts backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}
