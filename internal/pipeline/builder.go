package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/millstone-io/wheelwright/internal/runtime"
)

const (

	// Directory inside the builder container holding the source tree.
	sourceDir = "/src"

	// Directory inside the builder container where the wheel is written.
	distDir = "/src/dist"
)

// Builds the package wheel inside the builder container.
//
// The source tree is streamed into /src, the build frontend is installed,
// and the wheel is written to /src/dist. Any tool failure aborts the
// pipeline; nothing from this container reaches the final image except the
// staged archive.
func buildWheel(ctx context.Context, ctr *runtime.Container, source string) error {
	slog.Info("building package archive", "source", source)

	if err := ctr.MkdirAll(ctx, sourceDir); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}

	if err := copySourceTree(ctx, ctr, source); err != nil {
		return err
	}

	steps := []struct {
		desc    string
		command string
	}{
		{"install build frontend", "pip install --no-cache-dir build"},
		{"build wheel", "python -m build --wheel --outdir dist ."},
	}

	for _, step := range steps {
		if err := runStep(ctx, ctr, ErrBuild, step.desc, step.command, sourceDir); err != nil {
			return err
		}
	}

	return nil
}

// Streams the application source tree from the host into the builder
// container at /src.
func copySourceTree(ctx context.Context, ctr *runtime.Container, source string) error {
	pr, pw := io.Pipe()

	go func() {
		pw.CloseWithError(writeTreeToTar(pw, source))
	}()

	if err := ctr.CopyTo(ctx, pr, sourceDir); err != nil {
		return fmt.Errorf("%w: copy source tree: %w", ErrBuild, err)
	}
	return nil
}

// Copies the builder's dist directory to the host staging directory and
// returns the wheel files found in it.
//
// The archives are the only artifact that crosses the stage boundary; the
// source tree and build tooling stay behind in the builder container.
func stageArtifacts(ctx context.Context, ctr *runtime.Container, staging string) ([]string, error) {
	pr, pw := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		errc <- ctr.CopyFrom(ctx, pw, distDir)
		pw.Close()
	}()

	if err := extractTar(pr, staging); err != nil {
		return nil, fmt.Errorf("%w: stage archives: %w", ErrBuild, err)
	}

	if err := <-errc; err != nil {
		return nil, fmt.Errorf("%w: stage archives: %w", ErrBuild, err)
	}

	wheels, err := filepath.Glob(filepath.Join(staging, "dist", "*.whl"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	slog.Debug("archives staged", "dir", staging, "count", len(wheels))
	return wheels, nil
}
