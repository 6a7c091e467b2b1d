package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/millstone-io/wheelwright/internal/pipeline"
	"github.com/millstone-io/wheelwright/internal/recipe"
	"github.com/millstone-io/wheelwright/internal/runtime"
)

// Represents the 'wheelwright build' command.
type BuildCmd struct {
	Recipe      string `short:"r" help:"Path to the build parameter file." default:"wheelwright.hcl" type:"path"`
	Source      string `short:"s" help:"Application source tree." default:"." type:"existingdir"`
	Output      string `short:"o" help:"Directory for the exported image. Defaults to <source>/dist." type:"path"`
	BaseArchive string `help:"OCI archive to import as the base image instead of pulling." type:"existingfile"`
	Platform    string `help:"Target platform (e.g., linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`
}

// Executes the build command.
//
// Loads the build parameters, connects to containerd, and runs the pipeline:
// builder stage, runtime provisioning, package install, cleanup, and export.
func (c *BuildCmd) Run(ctx context.Context) error {
	rec, err := c.loadRecipe()
	if err != nil {
		return err
	}

	rt, err := runtime.New(RootCmd.Address, RootCmd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	output := c.Output
	if output == "" {
		output = filepath.Join(c.Source, "dist")
	}

	result, err := pipeline.Run(ctx, rt, pipeline.Options{
		Recipe:      rec,
		Source:      c.Source,
		Output:      output,
		BaseArchive: c.BaseArchive,
		Platform:    c.Platform,
	})
	if err != nil {
		return err
	}

	slog.Info("runtime image ready", "path", result.Image)
	return nil
}

// Loads the build parameter file.
//
// A missing file is not an error: every parameter has a default, so the
// pipeline can run unattended without any recipe on disk.
func (c *BuildCmd) loadRecipe() (recipe.Recipe, error) {
	if _, err := os.Stat(c.Recipe); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no recipe file, using defaults", "path", c.Recipe)
		return recipe.Default(), nil
	}
	return recipe.Load(c.Recipe)
}
