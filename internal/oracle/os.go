package oracle

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheSize bounds the number of cached file contents. The validator
// greps the same handful of files across several gates, and watch mode
// re-reads them on every run.
const cacheSize = 128

type cachedFile struct {
	modTime time.Time
	size    int64
	content string
}

// OS is an Oracle backed by the real filesystem, rooted at a workspace
// directory. File contents are cached by path and invalidated on
// mtime/size change, so watch-mode re-runs see fresh contents.
type OS struct {
	root  string
	cache *lru.Cache[string, cachedFile]
}

// NewOS creates a filesystem oracle rooted at the given directory.
func NewOS(root string) *OS {
	// Size is a small constant, New cannot fail
	cache, _ := lru.New[string, cachedFile](cacheSize)
	return &OS{root: root, cache: cache}
}

// Root returns the workspace root this oracle reads from.
func (o *OS) Root() string {
	return o.root
}

func (o *OS) abs(path string) string {
	return filepath.Join(o.root, path)
}

// Exists implements Oracle.
func (o *OS) Exists(path string) bool {
	_, err := os.Stat(o.abs(path))
	return err == nil
}

// IsDir implements Oracle.
func (o *OS) IsDir(path string) bool {
	info, err := os.Stat(o.abs(path))
	return err == nil && info.IsDir()
}

// IsExecutable implements Oracle.
func (o *OS) IsExecutable(path string) bool {
	info, err := os.Stat(o.abs(path))
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}

// Contains implements Oracle.
func (o *OS) Contains(path, pattern string) bool {
	content, err := o.read(path)
	if err != nil {
		return false
	}
	return strings.Contains(content, pattern)
}

// Lines implements Oracle.
func (o *OS) Lines(path string) ([]string, error) {
	content, err := o.read(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(content, "\n")
	// Trailing newline produces an empty final element
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// read returns the file contents, served from cache when the file's
// mtime and size are unchanged.
func (o *OS) read(path string) (string, error) {
	abs := o.abs(path)

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	if cached, ok := o.cache.Get(path); ok {
		if cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
			return cached.content, nil
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}

	o.cache.Add(path, cachedFile{
		modTime: info.ModTime(),
		size:    info.Size(),
		content: string(data),
	})

	return string(data), nil
}
