package pipeline

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrBinaryNotFound is returned when a binary cannot be located.
var ErrBinaryNotFound = errors.New("binary not found")

// Locator resolves binary names to executable paths. Explicit Paths win over
// Dirs, which win over the PATH environment variable.
type Locator struct {
	// Dirs are searched in order before PATH.
	Dirs []string
	// Paths maps a binary name to a fixed location.
	Paths map[string]string
}

// WithDir returns a copy of the locator that searches dir first.
func (l Locator) WithDir(dir string) Locator {
	if dir == "" {
		return l
	}
	dirs := make([]string, 0, len(l.Dirs)+1)
	dirs = append(dirs, dir)
	dirs = append(dirs, l.Dirs...)
	return Locator{Dirs: dirs, Paths: l.Paths}
}

// Lookup returns the path of the named binary.
func (l Locator) Lookup(name string) (string, error) {
	if p, ok := l.Paths[name]; ok {
		if isExecutable(p) {
			return p, nil
		}
		return "", fmt.Errorf("%w: configured path %s for %s is not executable", ErrBinaryNotFound, p, name)
	}
	for _, dir := range l.Dirs {
		for _, candidate := range candidates(name) {
			p := filepath.Join(dir, candidate)
			if isExecutable(p) {
				return p, nil
			}
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
}

func candidates(name string) []string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return []string{name + ".exe", name}
	}
	return []string{name}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
