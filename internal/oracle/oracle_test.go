package oracle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOS_Exists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "present.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	o := NewOS(root)

	assert.True(t, o.Exists("present.txt"))
	assert.True(t, o.Exists("sub"))
	assert.False(t, o.Exists("absent.txt"))
}

func TestOS_IsDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))

	o := NewOS(root)

	assert.True(t, o.IsDir("dir"))
	assert.False(t, o.IsDir("file.txt"))
	assert.False(t, o.IsDir("missing"))
}

func TestOS_IsExecutable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plain.sh"), []byte("#!/bin/sh\n"), 0o644))

	o := NewOS(root)

	assert.True(t, o.IsExecutable("run.sh"))
	assert.False(t, o.IsExecutable("plain.sh"))
	assert.False(t, o.IsExecutable("missing.sh"))
}

func TestOS_Contains(t *testing.T) {
	root := t.TempDir()
	content := "FROM ubuntu:22.04\nRUN apt-get install -y nodejs\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "Dockerfile"), []byte(content), 0o644))

	o := NewOS(root)

	assert.True(t, o.Contains("Dockerfile", "FROM"))
	assert.True(t, o.Contains("Dockerfile", "node"))
	// Case-sensitive literal match
	assert.False(t, o.Contains("Dockerfile", "from"))
	assert.False(t, o.Contains("Dockerfile", "python"))
	// Missing file fails closed
	assert.False(t, o.Contains("missing", "FROM"))
}

func TestOS_CacheInvalidation(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	o := NewOS(root)
	assert.True(t, o.Contains("file.txt", "first"))

	// Rewrite with a newer mtime; the cache must notice
	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.True(t, o.Contains("file.txt", "second"))
	assert.False(t, o.Contains("file.txt", "first"))
}

func TestOS_Lines(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("A=1\nB=2\n"), 0o644))

	o := NewOS(root)

	lines, err := o.Lines(".env")
	require.NoError(t, err)
	assert.Equal(t, []string{"A=1", "B=2"}, lines)

	_, err = o.Lines("missing")
	assert.Error(t, err)
}

func TestContainsAll(t *testing.T) {
	m := NewMem().AddFile("Dockerfile", "FROM ubuntu\nnode python git\n")

	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"all present", "Dockerfile", []string{"FROM", "node", "python", "git"}, true},
		{"order irrelevant", "Dockerfile", []string{"git", "FROM"}, true},
		{"one missing", "Dockerfile", []string{"FROM", "ruby"}, false},
		{"case sensitive", "Dockerfile", []string{"from"}, false},
		{"missing file fails closed", "nope", []string{"FROM"}, false},
		{"empty patterns", "Dockerfile", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsAll(m, tt.path, tt.patterns))
		})
	}
}

func TestMissingPatterns(t *testing.T) {
	m := NewMem().AddFile(".gitignore", ".env\nnode_modules\n")

	assert.Nil(t, MissingPatterns(m, ".gitignore", []string{".env", "node_modules"}))
	assert.Equal(t, []string{"*.log"}, MissingPatterns(m, ".gitignore", []string{".env", "*.log"}))
	assert.Equal(t, []string{"a", "b"}, MissingPatterns(m, "missing", []string{"a", "b"}))
}

func TestMem_ParentDirs(t *testing.T) {
	m := NewMem().AddFile("src/backend/main.go", "package main")

	assert.True(t, m.IsDir("src"))
	assert.True(t, m.IsDir("src/backend"))
	assert.True(t, m.Exists("src/backend/main.go"))
	assert.False(t, m.IsDir("src/backend/main.go"))
}

func TestMem_Executable(t *testing.T) {
	m := NewMem().
		AddExecutable("cleanup.sh", "#!/bin/bash\ndocker system prune\n").
		AddFile("notes.txt", "plain")

	assert.True(t, m.IsExecutable("cleanup.sh"))
	assert.False(t, m.IsExecutable("notes.txt"))
	assert.True(t, m.Contains("cleanup.sh", "docker"))
}
