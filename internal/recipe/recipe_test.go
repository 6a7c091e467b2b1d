package recipe

import (
	"errors"
	goruntime "runtime"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	rec := Default()

	if rec.BaseVersion != defaultBaseVersion {
		t.Fatalf("BaseVersion = %q, want %q", rec.BaseVersion, defaultBaseVersion)
	}
	if rec.UID != defaultUID {
		t.Fatalf("UID = %d, want %d", rec.UID, defaultUID)
	}
	if rec.Account != defaultAccount {
		t.Fatalf("Account = %q, want %q", rec.Account, defaultAccount)
	}
	if len(rec.Features) != 0 {
		t.Fatalf("Features = %v, want empty", rec.Features)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("default recipe invalid: %v", err)
	}
}

func TestParseEmptySourceYieldsDefaults(t *testing.T) {
	rec, err := Parse(nil, "empty.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.UID != defaultUID || rec.Account != defaultAccount {
		t.Fatalf("empty source did not yield defaults: %+v", rec)
	}
}

func TestParseFullRecipe(t *testing.T) {
	src := `
base_version = "3.11"
uid          = 2000
account      = "runner"
version_tag  = "1.4.0"
features     = ["askar", "bbs"]
entrypoint   = ["acme-agent", "start"]
`

	rec, err := Parse([]byte(src), "full.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.BaseVersion != "3.11" {
		t.Errorf("BaseVersion = %q, want 3.11", rec.BaseVersion)
	}
	if rec.UID != 2000 {
		t.Errorf("UID = %d, want 2000", rec.UID)
	}
	if rec.Account != "runner" {
		t.Errorf("Account = %q, want runner", rec.Account)
	}
	if rec.VersionTag != "1.4.0" {
		t.Errorf("VersionTag = %q, want 1.4.0", rec.VersionTag)
	}
	if len(rec.Features) != 2 || rec.Features[0] != "askar" || rec.Features[1] != "bbs" {
		t.Errorf("Features = %v, want [askar bbs]", rec.Features)
	}
	if len(rec.Entrypoint) != 2 || rec.Entrypoint[0] != "acme-agent" {
		t.Errorf("Entrypoint = %v, want [acme-agent start]", rec.Entrypoint)
	}
}

func TestParsePartialRecipeKeepsDefaults(t *testing.T) {
	rec, err := Parse([]byte(`features = ["askar"]`), "partial.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.UID != defaultUID {
		t.Errorf("UID = %d, want default %d", rec.UID, defaultUID)
	}
	if rec.BaseVersion != defaultBaseVersion {
		t.Errorf("BaseVersion = %q, want default %q", rec.BaseVersion, defaultBaseVersion)
	}
	if len(rec.Features) != 1 || rec.Features[0] != "askar" {
		t.Errorf("Features = %v, want [askar]", rec.Features)
	}
}

func TestParseInterpolation(t *testing.T) {
	rec, err := Parse([]byte(`version_tag = "1.0+${os}-${arch}"`), "interp.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "1.0+linux-" + goruntime.GOARCH
	if rec.VersionTag != want {
		t.Fatalf("VersionTag = %q, want %q", rec.VersionTag, want)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte(`uid = `), "broken.hcl")
	if !errors.Is(err, ErrRecipe) {
		t.Fatalf("error = %v, want ErrRecipe", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Recipe)
		wantErr bool
	}{
		{
			name:   "defaults valid",
			mutate: func(r *Recipe) {},
		},
		{
			name:    "root uid rejected",
			mutate:  func(r *Recipe) { r.UID = 0 },
			wantErr: true,
		},
		{
			name:    "negative uid rejected",
			mutate:  func(r *Recipe) { r.UID = -5 },
			wantErr: true,
		},
		{
			name:    "uppercase account rejected",
			mutate:  func(r *Recipe) { r.Account = "Agent" },
			wantErr: true,
		},
		{
			name:    "empty account rejected",
			mutate:  func(r *Recipe) { r.Account = "" },
			wantErr: true,
		},
		{
			name:    "empty base version rejected",
			mutate:  func(r *Recipe) { r.BaseVersion = "" },
			wantErr: true,
		},
		{
			name:    "base version with shell metacharacters rejected",
			mutate:  func(r *Recipe) { r.BaseVersion = "3.12; rm -rf /" },
			wantErr: true,
		},
		{
			name:    "empty entrypoint rejected",
			mutate:  func(r *Recipe) { r.Entrypoint = nil },
			wantErr: true,
		},
		{
			name:    "feature with brackets rejected",
			mutate:  func(r *Recipe) { r.Features = []string{"askar]"} },
			wantErr: true,
		},
		{
			name:   "dotted feature accepted",
			mutate: func(r *Recipe) { r.Features = []string{"crypto.bbs"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Default()
			tt.mutate(&rec)

			err := rec.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrRecipe) {
					t.Fatalf("error = %v, want ErrRecipe", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFeatureSuffix(t *testing.T) {
	rec := Default()
	if got := rec.FeatureSuffix(); got != "" {
		t.Fatalf("FeatureSuffix() = %q, want empty", got)
	}

	rec.Features = []string{"askar"}
	if got := rec.FeatureSuffix(); got != "[askar]" {
		t.Fatalf("FeatureSuffix() = %q, want [askar]", got)
	}

	rec.Features = []string{"askar", "bbs"}
	if got := rec.FeatureSuffix(); got != "[askar,bbs]" {
		t.Fatalf("FeatureSuffix() = %q, want [askar,bbs]", got)
	}
}

func TestBaseImage(t *testing.T) {
	rec := Default()
	rec.BaseVersion = "3.12"

	img := rec.BaseImage()
	if !strings.Contains(img, "python:3.12-slim") {
		t.Fatalf("BaseImage() = %q, want a pinned python slim reference", img)
	}
}

func TestHomeAndStateDir(t *testing.T) {
	rec := Default()
	rec.Account = "runner"
	rec.Entrypoint = []string{"acme-agent"}

	if got := rec.Home(); got != "/home/runner" {
		t.Fatalf("Home() = %q, want /home/runner", got)
	}
	if got := rec.StateDir(); got != ".acme-agent" {
		t.Fatalf("StateDir() = %q, want .acme-agent", got)
	}
}
