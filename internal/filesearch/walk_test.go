package filesearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func collect(t *testing.T, opts Options) []string {
	t.Helper()
	var got []string
	err := Walk(context.Background(), opts, func(rel, _ string) error {
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return got
}

func isHTML(p string) bool { return strings.HasSuffix(p, ".html") }

func TestWalk(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":          "build/\n*.bak.html\n",
		"a.html":              "a",
		"notes.txt":           "n",
		"docs/b.html":         "b",
		"docs/b.bak.html":     "old",
		"build/out.html":      "generated",
		".hidden/secret.html": "s",
		"big.html":            strings.Repeat("x", 64),
	})

	got := collect(t, Options{Root: root, Match: isHTML, MaxSize: 32})
	want := []string{"a.html", "docs/b.html"}
	if !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}

	got = collect(t, Options{Root: root, Match: isHTML, MaxSize: -1, NoIgnore: true})
	want = []string{"a.html", "big.html", "build/out.html", "docs/b.bak.html", "docs/b.html"}
	if !slices.Equal(got, want) {
		t.Errorf("without ignore = %v, want %v", got, want)
	}
}

func TestWalkStops(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html": "", "b.html": ""})
	stop := errors.New("stop")
	n := 0
	err := Walk(context.Background(), Options{Root: root}, func(string, string) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("err = %v after %d files", err, n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Walk(ctx, Options{Root: root}, func(string, string) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled walk err = %v", err)
	}
}
