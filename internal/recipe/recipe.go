package recipe

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	goruntime "runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

var ErrRecipe = errors.New("invalid recipe")

const (

	// Base environment version used when the recipe does not pin one. Shared
	// by the builder and runtime stages so the two cannot drift.
	defaultBaseVersion = "3.12"

	// Numeric identity of the runtime account. Deliberately not 0: the
	// account must never be root-equivalent.
	defaultUID = 1001

	// Name of the runtime account.
	defaultAccount = "agent"

	// Registry repository the base image is pulled from.
	baseRepository = "docker.io/library/python"
)

// Entry point used when the recipe does not name one.
var defaultEntrypoint = []string{"cloudagent"}

var (
	accountPattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
	featurePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	versionPattern = regexp.MustCompile(`^[0-9][A-Za-z0-9.]*$`)
)

// The full set of build parameters for one pipeline run.
//
// Every field has a default so the pipeline can run unattended with no
// recipe file at all. A Recipe is copied by value into the pipeline options
// at the start of a build and never mutated afterwards.
type Recipe struct {
	BaseVersion string   // Base environment version, pins both stages (e.g., "3.12").
	UID         int      // Numeric identity of the runtime account.
	Account     string   // Name of the runtime account.
	VersionTag  string   // Application version tag. Label metadata only.
	Features    []string // Optional capability modules installed alongside the core package.
	Entrypoint  []string // The packaged application's CLI, exec form.
}

// Decode target for the recipe file. Pointer fields distinguish an omitted
// attribute from an explicit zero value.
type fileRecipe struct {
	BaseVersion *string   `hcl:"base_version,optional"`
	UID         *int      `hcl:"uid,optional"`
	Account     *string   `hcl:"account,optional"`
	VersionTag  *string   `hcl:"version_tag,optional"`
	Features    *[]string `hcl:"features,optional"`
	Entrypoint  *[]string `hcl:"entrypoint,optional"`
}

// Returns a recipe with every parameter set to its default.
func Default() Recipe {
	return Recipe{
		BaseVersion: defaultBaseVersion,
		UID:         defaultUID,
		Account:     defaultAccount,
		Entrypoint:  append([]string(nil), defaultEntrypoint...),
	}
}

// Parses and validates a recipe file.
//
// Omitted attributes fall back to their defaults. String attributes may
// reference the ${os} and ${arch} variables, which resolve to the target
// operating system and architecture.
func Load(path string) (Recipe, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Recipe{}, fmt.Errorf("%w: %s: %w", ErrRecipe, path, diags)
	}

	return decode(file.Body, path)
}

// Parses and validates recipe source held in memory. Used by tests and by
// callers that assemble the recipe programmatically.
func Parse(src []byte, filename string) (Recipe, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Recipe{}, fmt.Errorf("%w: %s: %w", ErrRecipe, filename, diags)
	}

	return decode(file.Body, filename)
}

// Decodes a parsed recipe body, overlays it on the defaults, and validates
// the result.
func decode(body hcl.Body, filename string) (Recipe, error) {
	var parsed fileRecipe
	if diags := gohcl.DecodeBody(body, evalContext(), &parsed); diags.HasErrors() {
		return Recipe{}, fmt.Errorf("%w: %s: %w", ErrRecipe, filename, diags)
	}

	rec := Default()
	if parsed.BaseVersion != nil {
		rec.BaseVersion = *parsed.BaseVersion
	}
	if parsed.UID != nil {
		rec.UID = *parsed.UID
	}
	if parsed.Account != nil {
		rec.Account = *parsed.Account
	}
	if parsed.VersionTag != nil {
		rec.VersionTag = *parsed.VersionTag
	}
	if parsed.Features != nil {
		rec.Features = *parsed.Features
	}
	if parsed.Entrypoint != nil {
		rec.Entrypoint = *parsed.Entrypoint
	}

	if err := rec.Validate(); err != nil {
		return Recipe{}, err
	}

	return rec, nil
}

// Returns the evaluation context available to recipe expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"os":   cty.StringVal("linux"),
			"arch": cty.StringVal(goruntime.GOARCH),
		},
	}
}

// Checks every parameter against its constraints.
//
// The runtime account must never be UID 0: the whole point of the identity
// is that the orchestration platform may substitute an arbitrary non-root
// UID at launch, and a root-owned layout would mask permission mistakes.
func (r Recipe) Validate() error {
	if !versionPattern.MatchString(r.BaseVersion) {
		return fmt.Errorf("%w: base_version %q is not a version identifier", ErrRecipe, r.BaseVersion)
	}
	if r.UID <= 0 {
		return fmt.Errorf("%w: uid %d must be a positive non-root identity", ErrRecipe, r.UID)
	}
	if !accountPattern.MatchString(r.Account) {
		return fmt.Errorf("%w: account %q is not a valid account name", ErrRecipe, r.Account)
	}
	if len(r.Entrypoint) == 0 || r.Entrypoint[0] == "" {
		return fmt.Errorf("%w: entrypoint must name the packaged application's CLI", ErrRecipe)
	}
	for _, f := range r.Features {
		if !featurePattern.MatchString(f) {
			return fmt.Errorf("%w: feature %q is not a valid module name", ErrRecipe, f)
		}
	}
	return nil
}

// Returns the registry reference of the pinned base image.
func (r Recipe) BaseImage() string {
	return fmt.Sprintf("%s:%s-slim-bookworm", baseRepository, r.BaseVersion)
}

// Returns the runtime account's home directory.
func (r Recipe) Home() string {
	return "/home/" + r.Account
}

// Returns the feature-flag suffix appended to the package specification at
// install time, e.g. "[askar,bbs]". Empty when no features are selected.
func (r Recipe) FeatureSuffix() string {
	if len(r.Features) == 0 {
		return ""
	}
	return "[" + strings.Join(r.Features, ",") + "]"
}

// Returns the home-relative application state directory, derived from the
// entry point name (e.g., entrypoint "cloudagent" keeps state in
// ".cloudagent").
func (r Recipe) StateDir() string {
	return "." + path.Base(r.Entrypoint[0])
}
