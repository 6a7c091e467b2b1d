package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/millstone-io/wheelwright/internal/recipe"
	"github.com/millstone-io/wheelwright/internal/runtime"
)

// Directory inside the runtime container where the archive is placed before
// installation. Removed once the install succeeds.
const archiveDir = "/tmp/dist"

// Picks the package archive to install from the staged candidates.
//
// Zero candidates is fatal: the pipeline must fail before attempting any
// install command. With more than one candidate, selection is deterministic
// (first in lexical order); the ambiguity is logged rather than resolved
// further.
func selectWheel(archives []string) (string, error) {
	if len(archives) == 0 {
		return "", fmt.Errorf("%w: no *.whl files in the builder's output directory", ErrNoArchive)
	}

	sorted := slices.Clone(archives)
	slices.Sort(sorted)

	if len(sorted) > 1 {
		slog.Warn("multiple package archives produced, selecting first by lexical order",
			"selected", filepath.Base(sorted[0]),
			"total", len(sorted),
		)
	}

	return sorted[0], nil
}

// Installs the package archive into the runtime container, honoring the
// recipe's feature-flag suffix. Installation failure aborts the build.
func install(ctx context.Context, ctr *runtime.Container, rec recipe.Recipe, wheel string) error {
	spec := installSpec(filepath.Base(wheel), rec.FeatureSuffix())
	slog.Info("installing package", "spec", spec, "account", rec.Account)

	if err := ctr.MkdirAll(ctx, archiveDir); err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}

	if err := copyArchive(ctx, ctr, wheel); err != nil {
		return err
	}

	for _, c := range installCommands(rec, spec) {
		if err := runStep(ctx, ctr, ErrInstall, c.desc, c.cmd, ""); err != nil {
			return err
		}
	}

	return nil
}

// Renders the install command sequence for the given requirement specifier.
//
// The install runs as the runtime account with --user, so the package lands
// in the account's home (console scripts in ~/.local/bin, already on the
// exported PATH) rather than in the system site. runuser switches HOME to
// the account's, which pip needs to resolve the user site. The staged
// archive directory is removed afterwards so no *.whl files remain in the
// final image.
func installCommands(rec recipe.Recipe, spec string) []command {
	return []command{
		{
			desc: "install package",
			cmd:  fmt.Sprintf("runuser -u %s -- pip install --no-cache-dir --user '%s/%s'", rec.Account, archiveDir, spec),
		},
		{
			desc: "remove staged archives",
			cmd:  "rm -rf " + archiveDir,
		},
	}
}

// Returns the pip requirement specifier for an archive with the given
// feature-flag suffix appended, e.g. "pkg-1.0-py3-none-any.whl[askar,bbs]".
func installSpec(archiveName, featureSuffix string) string {
	return archiveName + featureSuffix
}

// Streams the staged archive from the host into the runtime container.
func copyArchive(ctx context.Context, ctr *runtime.Container, wheel string) error {
	pr, pw := io.Pipe()

	go func() {
		pw.CloseWithError(writeFileToTar(pw, wheel, filepath.Base(wheel)))
	}()

	if err := ctr.CopyTo(ctx, pr, archiveDir); err != nil {
		return fmt.Errorf("%w: copy archive: %w", ErrInstall, err)
	}
	return nil
}

// Purges build-only tooling from the runtime container to shrink the final
// image.
//
// Best-effort: a failure here (e.g., nothing matching installed) is logged
// and ignored, never failing the build.
func purgeBuildTooling(ctx context.Context, ctr *runtime.Container) {
	const cmd = "apt-get purge -y --auto-remove build-essential && apt-get clean && rm -rf /var/lib/apt/lists/*"

	result, err := ctr.Exec(ctx, cmd, nil, "")
	if err != nil {
		slog.Warn("build tooling purge skipped", "error", err)
		return
	}
	if result.ExitCode != 0 {
		slog.Warn("build tooling purge skipped", "exit_code", result.ExitCode, "stderr", result.Stderr)
	}
}
