package pipeline

import (
	"fmt"

	"github.com/millstone-io/wheelwright/internal/recipe"
	"github.com/millstone-io/wheelwright/internal/runtime"
)

// Executable search path baked into the exported image. The account's local
// binary directory is prepended so console scripts installed with --user are
// found first.
const defaultSearchPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// Renders the entry point contract for the exported image.
//
// The entry point invokes the packaged application's CLI directly, no shell
// wrapper, running as the dedicated account. Only platform-level environment
// is injected (locale, encoding, unbuffered output, crypto diagnostics);
// application configuration arrives exclusively via container-launch
// arguments and environment.
func imageConfig(rec recipe.Recipe) runtime.ImageConfig {
	cfg := runtime.ImageConfig{
		Entrypoint: rec.Entrypoint,
		User:       fmt.Sprintf("%d:0", rec.UID),
		WorkingDir: rec.Home(),
		Env:        runtimeEnv(rec),
	}

	if rec.VersionTag != "" {
		cfg.Annotations = map[string]string{
			"org.opencontainers.image.version": rec.VersionTag,
		}
	}

	return cfg
}

// Returns the platform environment fixed by the image.
func runtimeEnv(rec recipe.Recipe) []string {
	return []string{
		"LANG=C.UTF-8",
		"LC_ALL=C.UTF-8",
		"PYTHONUNBUFFERED=1",
		"PYTHONIOENCODING=UTF-8",
		"RUST_LOG=warn",
		"PATH=" + rec.Home() + "/.local/bin:" + defaultSearchPath,
	}
}
