package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/millstone-io/wheelwright/internal/paths"
	"github.com/millstone-io/wheelwright/internal/recipe"
	"github.com/millstone-io/wheelwright/internal/runtime"
)

// Controls a pipeline run.
type Options struct {
	Recipe      recipe.Recipe // Build parameters, fixed for the whole run.
	Source      string        // Application source tree consumed by the builder stage.
	Output      string        // Directory for the exported image.
	BaseArchive string        // Optional OCI archive to import as the base image instead of pulling.
	Platform    string        // Target platform (e.g., "linux/amd64"). Defaults to host.
}

// Returned after a successful pipeline run.
type Result struct {
	Image string // Path to the exported OCI archive.
}

// Executes the pipeline against the container runtime.
//
// The stages run in a fixed order: Build → Provision → Install → Cleanup →
// Finalize. Builder and runtime stage containers are constructed in parallel
// up to the point where the runtime stage consumes the builder's package
// archive. Any stage failure aborts the whole run; only the build-tooling
// purge in the cleanup stage is best-effort.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = runtime.DefaultPlatform()
	}

	slog.Info("executing pipeline",
		"source", opts.Source,
		"output", opts.Output,
		"base", opts.Recipe.BaseImage(),
		"platform", opts.Platform,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	p := &pipeline{rt: rt, opts: opts}
	defer p.destroyContainers(ctx)

	return p.run(ctx)
}

// Holds shared state across the stages of one run.
type pipeline struct {
	rt      *runtime.Runtime   // Container runtime for image and container operations.
	opts    Options            // Immutable run options.
	builder *runtime.Container // Builder stage container, destroyed after the run.
	target  *runtime.Container // Runtime stage container, destroyed after the run.
}

// Runs the stages end-to-end.
//
// The base image is resolved once and shared by both stages so the build and
// runtime environment versions cannot drift. The two stage containers are
// prepared concurrently; the wheel handoff is the single synchronization
// point between them.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	tag, err := p.baseImage(ctx)
	if err != nil {
		return nil, err
	}

	staging, err := p.stagingDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	var archives []string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ctr, err := p.rt.StartContainer(gctx, tag, p.containerID("builder"), p.opts.Platform)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuild, err)
		}
		p.builder = ctr

		if err := buildWheel(gctx, ctr, p.opts.Source); err != nil {
			return err
		}

		archives, err = stageArtifacts(gctx, ctr, staging)
		return err
	})

	g.Go(func() error {
		ctr, err := p.rt.StartContainer(gctx, tag, p.containerID("runtime"), p.opts.Platform)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProvision, err)
		}
		p.target = ctr

		return provision(gctx, ctr, p.opts.Recipe)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Synchronization point: both stages are ready and the archive exists.
	wheel, err := selectWheel(archives)
	if err != nil {
		return nil, err
	}

	if err := install(ctx, p.target, p.opts.Recipe, wheel); err != nil {
		return nil, err
	}

	purgeBuildTooling(ctx, p.target)

	return p.finalize(ctx)
}

// Stops the runtime container and exports its committed filesystem as the
// final image, stamped with the entry point contract.
func (p *pipeline) finalize(ctx context.Context) (*Result, error) {
	if err := p.target.Stop(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	image, err := p.target.Export(ctx, p.opts.Output, imageConfig(p.opts.Recipe))
	if err != nil {
		return nil, err
	}

	return &Result{Image: image}, nil
}

// Resolves the base image shared by both stages: an OCI archive import when
// one is provided, a registry pull otherwise.
func (p *pipeline) baseImage(ctx context.Context) (string, error) {
	if p.opts.BaseArchive != "" {
		return p.rt.ImportImage(ctx, p.opts.BaseArchive, p.opts.Platform)
	}
	return p.rt.PullImage(ctx, p.opts.Recipe.BaseImage(), p.opts.Platform)
}

// Creates a fresh host directory for the archive handoff between stages.
func (p *pipeline) stagingDir() (string, error) {
	if err := os.MkdirAll(paths.Staging(), paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	dir, err := os.MkdirTemp(paths.Staging(), "run-*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	return dir, nil
}

// Destroys the stage containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range []*runtime.Container{p.builder, p.target} {
		if ctr != nil {
			ctr.Destroy(ctx)
		}
	}
}

// Returns a unique container ID for a stage, scoped to this platform.
func (p *pipeline) containerID(stage string) string {
	slug := strings.ReplaceAll(p.opts.Platform, "/", "-")
	return fmt.Sprintf("wheelwright-%s-stage-%s", slug, stage)
}

// Runs a single stage step inside a container, wrapping failures with the
// stage's sentinel error. A non-zero exit code is a failure.
func runStep(ctx context.Context, ctr *runtime.Container, sentinel error, desc, command, workdir string) error {
	slog.Debug(desc, "container", ctr.ID(), "command", command)

	result, err := ctr.Exec(ctx, command, nil, workdir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", sentinel, desc, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: %s: exit code %d: %s", sentinel, desc, result.ExitCode, result.Stderr)
	}
	return nil
}
