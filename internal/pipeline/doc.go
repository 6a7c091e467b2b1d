// Package pipeline turns an application source tree into a hardened runtime
// image.
//
// A run is a fixed, linear sequence of stages: Build → Provision → Install →
// Cleanup → Finalize. The builder stage compiles the package wheel in an
// isolated container; the runtime stage provisions a minimal environment
// with a dedicated non-root account and a group-writable directory layout,
// installs the wheel (with the recipe's feature-flag suffix), purges build
// tooling, and is exported as an OCI archive with a fixed entry point.
//
// The two stage containers are constructed concurrently up to the single
// synchronization point where the runtime stage consumes the builder's
// archive; the archives are staged on the host in between, and nothing else
// crosses the stage boundary. Any stage failure aborts the run; the only
// best-effort step is the build-tooling purge.
//
// Example usage:
//
//	result, err := pipeline.Run(ctx, rt, pipeline.Options{
//	    Recipe: recipe.Default(),
//	    Source: ".",
//	    Output: "dist",
//	})
//	if err != nil {
//	    return err
//	}
package pipeline
