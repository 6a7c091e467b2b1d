package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/millstone-io/wheelwright/internal/recipe"
)

func TestSelectWheel(t *testing.T) {
	tests := []struct {
		name     string
		archives []string
		want     string
		wantErr  bool
	}{
		{
			name:    "no archives",
			wantErr: true,
		},
		{
			name:     "single archive",
			archives: []string{"/staging/dist/pkg-1.0-py3-none-any.whl"},
			want:     "/staging/dist/pkg-1.0-py3-none-any.whl",
		},
		{
			name: "multiple archives pick first lexically",
			archives: []string{
				"/staging/dist/pkg-2.0-py3-none-any.whl",
				"/staging/dist/pkg-1.0-py3-none-any.whl",
			},
			want: "/staging/dist/pkg-1.0-py3-none-any.whl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectWheel(tt.archives)
			if tt.wantErr {
				if !errors.Is(err, ErrNoArchive) {
					t.Fatalf("error = %v, want ErrNoArchive", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("selected = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectWheelDoesNotMutateInput(t *testing.T) {
	archives := []string{"b.whl", "a.whl"}

	if _, err := selectWheel(archives); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if archives[0] != "b.whl" {
		t.Fatal("selectWheel reordered the caller's slice")
	}
}

func TestInstallSpec(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		suffix  string
		want    string
	}{
		{
			name:    "no features",
			archive: "pkg-1.0-py3-none-any.whl",
			want:    "pkg-1.0-py3-none-any.whl",
		},
		{
			name:    "single feature",
			archive: "pkg-1.0-py3-none-any.whl",
			suffix:  "[askar]",
			want:    "pkg-1.0-py3-none-any.whl[askar]",
		},
		{
			name:    "multiple features",
			archive: "pkg-1.0-py3-none-any.whl",
			suffix:  "[askar,bbs]",
			want:    "pkg-1.0-py3-none-any.whl[askar,bbs]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := installSpec(tt.archive, tt.suffix); got != tt.want {
				t.Fatalf("installSpec = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstallCommands(t *testing.T) {
	rec := recipe.Default()
	rec.Account = "runner"

	cmds := installCommands(rec, "pkg-1.0-py3-none-any.whl[askar]")

	installIdx, removeIdx := -1, -1
	for i, c := range cmds {
		if strings.Contains(c.cmd, "pip install") {
			installIdx = i
		}
		if strings.HasPrefix(c.cmd, "rm -rf") {
			removeIdx = i
		}
	}

	if installIdx == -1 {
		t.Fatalf("no pip install step rendered: %v", cmds)
	}
	install := cmds[installIdx].cmd

	if !strings.Contains(install, "runuser -u runner --") {
		t.Errorf("package not installed as the runtime account: %s", install)
	}
	if !strings.Contains(install, "--user") {
		t.Errorf("package not installed into the account's user site: %s", install)
	}
	if !strings.Contains(install, "'/tmp/dist/pkg-1.0-py3-none-any.whl[askar]'") {
		t.Errorf("requirement specifier not quoted against shell expansion: %s", install)
	}

	// Nothing from the staged archive may survive into the runtime layer.
	if removeIdx == -1 {
		t.Fatalf("staged archive directory never removed: %v", cmds)
	}
	if !strings.Contains(cmds[removeIdx].cmd, archiveDir) {
		t.Errorf("removal does not target the archive directory: %s", cmds[removeIdx].cmd)
	}
	if removeIdx < installIdx {
		t.Fatal("archive directory removed before the package is installed")
	}
}
