package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTreeToTarRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "setup.py"), "print('hi')")
	writeFile(t, filepath.Join(src, "pkg", "core.py"), "x = 1")

	var buf bytes.Buffer
	if err := writeTreeToTar(&buf, src); err != nil {
		t.Fatalf("writeTreeToTar: %v", err)
	}

	dest := t.TempDir()
	if err := extractTar(&buf, dest); err != nil {
		t.Fatalf("extractTar: %v", err)
	}

	// Contents land directly in dest, no wrapping directory.
	assertFile(t, filepath.Join(dest, "setup.py"), "print('hi')")
	assertFile(t, filepath.Join(dest, "pkg", "core.py"), "x = 1")
}

func TestWriteFileToTarRoundTrip(t *testing.T) {
	src := t.TempDir()
	wheel := filepath.Join(src, "pkg-1.0-py3-none-any.whl")
	writeFile(t, wheel, "wheel-bytes")

	var buf bytes.Buffer
	if err := writeFileToTar(&buf, wheel, "pkg-1.0-py3-none-any.whl"); err != nil {
		t.Fatalf("writeFileToTar: %v", err)
	}

	dest := t.TempDir()
	if err := extractTar(&buf, dest); err != nil {
		t.Fatalf("extractTar: %v", err)
	}

	assertFile(t, filepath.Join(dest, "pkg-1.0-py3-none-any.whl"), "wheel-bytes")
}

func TestSecurePathRejectsTraversal(t *testing.T) {
	dest := t.TempDir()

	if _, err := securePath(dest, "../evil"); err == nil {
		t.Fatal("traversal entry accepted")
	}
	if _, err := securePath(dest, "dist/../../evil"); err == nil {
		t.Fatal("nested traversal entry accepted")
	}
	if _, err := securePath(dest, "dist/pkg.whl"); err != nil {
		t.Fatalf("legitimate entry rejected: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("missing file %s: %v", path, err)
	}
	if got := strings.TrimRight(string(b), "\n"); got != want {
		t.Fatalf("%s = %q, want %q", path, got, want)
	}
}
