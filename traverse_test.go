package tablesaf

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTestTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func collectPaths(t *testing.T, fs *FilesystemSource) []string {
	t.Helper()
	items, errs := fs.Traverse(context.Background())
	var paths []string
	for item := range items {
		paths = append(paths, filepath.ToSlash(item.Path))
	}
	if err := <-errs; err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	sort.Strings(paths)
	return paths
}

func TestFilesystemSourceTraverse(t *testing.T) {
	dir := writeTestTree(t, map[string]string{
		"a.csv":          "x,y\n1,2\n",
		"sub/b.xlsx":     "binary",
		"sub/notes.txt":  "notes",
		".git/config":    "internal",
		"vendor/c.csv":   "x\n",
		"reports/d.html": "<html></html>",
	})

	t.Run("default excludes git", func(t *testing.T) {
		fs := NewFilesystemSource(FilesystemSourceConfig{BaseDir: dir}, nil)
		for _, p := range collectPaths(t, fs) {
			if p == ".git/config" {
				t.Error(".git content must be excluded by default")
			}
		}
	})

	t.Run("include patterns", func(t *testing.T) {
		fs := NewFilesystemSource(FilesystemSourceConfig{
			BaseDir:         dir,
			IncludePatterns: []string{"**/*.csv"},
		}, nil)

		got := collectPaths(t, fs)
		want := []string{"a.csv", "vendor/c.csv"}
		if len(got) != len(want) {
			t.Fatalf("paths = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("paths = %v, want %v", got, want)
				break
			}
		}
	})

	t.Run("exclude patterns", func(t *testing.T) {
		fs := NewFilesystemSource(FilesystemSourceConfig{
			BaseDir:         dir,
			IncludePatterns: []string{"**/*.csv"},
			ExcludePatterns: []string{"vendor/**"},
		}, nil)

		got := collectPaths(t, fs)
		if len(got) != 1 || got[0] != "a.csv" {
			t.Errorf("paths = %v, want [a.csv]", got)
		}
	})

	t.Run("content delivered", func(t *testing.T) {
		fs := NewFilesystemSource(FilesystemSourceConfig{
			BaseDir:         dir,
			IncludePatterns: []string{"a.csv"},
		}, nil)

		items, errs := fs.Traverse(context.Background())
		var got []DocumentItem
		for item := range items {
			got = append(got, item)
		}
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || string(got[0].Content) != "x,y\n1,2\n" {
			t.Errorf("items = %+v, want a.csv with content", got)
		}
	})

	t.Run("cancellation stops traversal", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fs := NewFilesystemSource(FilesystemSourceConfig{BaseDir: dir}, nil)
		items, errs := fs.Traverse(ctx)
		for range items {
		}
		if err := <-errs; err == nil {
			t.Error("expected context error from cancelled traversal")
		}
	})
}
