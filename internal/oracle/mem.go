package oracle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mem is an in-memory Oracle for tests. The zero value is not usable;
// create one with NewMem.
type Mem struct {
	files map[string]memFile
	dirs  map[string]bool
}

type memFile struct {
	content    string
	executable bool
}

// NewMem creates an empty in-memory oracle.
func NewMem() *Mem {
	return &Mem{
		files: make(map[string]memFile),
		dirs:  make(map[string]bool),
	}
}

// AddFile adds a regular file with the given content.
// Parent directories are created implicitly.
func (m *Mem) AddFile(path, content string) *Mem {
	m.files[path] = memFile{content: content}
	m.addParents(path)
	return m
}

// AddExecutable adds an executable file with the given content.
func (m *Mem) AddExecutable(path, content string) *Mem {
	m.files[path] = memFile{content: content, executable: true}
	m.addParents(path)
	return m
}

// AddDir adds a directory.
func (m *Mem) AddDir(path string) *Mem {
	m.dirs[path] = true
	m.addParents(path)
	return m
}

// Remove deletes a file or directory entry.
func (m *Mem) Remove(path string) *Mem {
	delete(m.files, path)
	delete(m.dirs, path)
	return m
}

func (m *Mem) addParents(path string) {
	for dir := filepath.Dir(path); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// Exists implements Oracle.
func (m *Mem) Exists(path string) bool {
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.dirs[path]
}

// IsDir implements Oracle.
func (m *Mem) IsDir(path string) bool {
	return m.dirs[path]
}

// IsExecutable implements Oracle.
func (m *Mem) IsExecutable(path string) bool {
	f, ok := m.files[path]
	return ok && f.executable
}

// Contains implements Oracle.
func (m *Mem) Contains(path, pattern string) bool {
	f, ok := m.files[path]
	return ok && strings.Contains(f.content, pattern)
}

// Lines implements Oracle.
func (m *Mem) Lines(path string) ([]string, error) {
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	lines := strings.Split(f.content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
