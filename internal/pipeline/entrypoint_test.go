package pipeline

import (
	"strings"
	"testing"

	"github.com/millstone-io/wheelwright/internal/recipe"
)

func TestImageConfig(t *testing.T) {
	rec := recipe.Default()
	rec.UID = 1001
	rec.Account = "runner"
	rec.Entrypoint = []string{"acme-agent"}

	cfg := imageConfig(rec)

	if len(cfg.Entrypoint) != 1 || cfg.Entrypoint[0] != "acme-agent" {
		t.Errorf("Entrypoint = %v, want [acme-agent]", cfg.Entrypoint)
	}
	if cfg.User != "1001:0" {
		t.Errorf("User = %q, want 1001:0 (account uid with root group)", cfg.User)
	}
	if cfg.WorkingDir != "/home/runner" {
		t.Errorf("WorkingDir = %q, want /home/runner", cfg.WorkingDir)
	}
	if len(cfg.Annotations) != 0 {
		t.Errorf("Annotations = %v, want none without a version tag", cfg.Annotations)
	}
}

func TestImageConfigVersionAnnotation(t *testing.T) {
	rec := recipe.Default()
	rec.VersionTag = "1.4.0"

	cfg := imageConfig(rec)
	if cfg.Annotations["org.opencontainers.image.version"] != "1.4.0" {
		t.Fatalf("Annotations = %v, want version 1.4.0", cfg.Annotations)
	}
}

func TestRuntimeEnv(t *testing.T) {
	rec := recipe.Default()
	rec.Account = "runner"

	env := runtimeEnv(rec)
	byKey := make(map[string]string, len(env))
	for _, e := range env {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			t.Fatalf("malformed env entry %q", e)
		}
		byKey[k] = v
	}

	if byKey["PYTHONUNBUFFERED"] != "1" {
		t.Error("output is not unbuffered")
	}
	if byKey["PYTHONIOENCODING"] != "UTF-8" {
		t.Error("encoding not pinned to UTF-8")
	}
	if byKey["LANG"] == "" || byKey["LC_ALL"] == "" {
		t.Error("locale not fixed")
	}
	if byKey["RUST_LOG"] == "" {
		t.Error("crypto dependency diagnostics verbosity not set")
	}
	if !strings.HasPrefix(byKey["PATH"], "/home/runner/.local/bin:") {
		t.Errorf("PATH = %q, want the account's local bin directory first", byKey["PATH"])
	}
}
