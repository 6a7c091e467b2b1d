package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/millstone-io/wheelwright/internal/recipe"
	"github.com/millstone-io/wheelwright/internal/runtime"
)

// Native runtime libraries required by the packaged application's
// cryptographic and data-handling dependencies, plus a small set of
// operational utilities. No compiler toolchain beyond what pip needs to
// build native extensions at install time.
var runtimePackages = []string{
	"ca-certificates",
	"curl",
	"git",
	"iputils-ping",
	"libbz2-1.0",
	"libsodium23",
	"libssl3",
	"libzmq5",
	"procps",
	"vim-tiny",
	"zlib1g",
}

// A provisioning step: a description for diagnostics and the shell command
// that performs it.
type command struct {
	desc string
	cmd  string
}

// Provisions the runtime container: dedicated non-root account, native
// libraries, and the group-writable directory layout.
//
// Every step is fatal on failure; there is no partial or degraded runtime
// image.
func provision(ctx context.Context, ctr *runtime.Container, rec recipe.Recipe) error {
	slog.Info("provisioning runtime environment", "account", rec.Account, "uid", rec.UID)

	for _, c := range provisionCommands(rec) {
		if err := runStep(ctx, ctr, ErrProvision, c.desc, c.cmd, ""); err != nil {
			return err
		}
	}

	return nil
}

// Renders the provisioning command sequence for the given parameters.
//
// The account joins GID 0 because orchestration platforms may substitute an
// arbitrary numeric UID at container launch; group-level write access is
// what keeps the runtime directories usable under an unpredicted UID.
// Directories get the setgid bit so files created at runtime inherit the
// root group.
func provisionCommands(rec recipe.Recipe) []command {
	home := rec.Home()

	return []command{
		{
			desc: "create runtime account",
			cmd:  fmt.Sprintf("useradd -U -ms /bin/bash -u %d %s", rec.UID, rec.Account),
		},
		{
			desc: "join root group",
			cmd:  fmt.Sprintf("usermod -a -G 0 %s", rec.Account),
		},
		{
			desc: "refresh package index",
			cmd:  "apt-get update",
		},
		{
			desc: "install native libraries",
			cmd:  "apt-get install -y --no-install-recommends " + strings.Join(runtimePackages, " "),
		},
		{
			desc: "create runtime layout",
			cmd:  "mkdir -p " + strings.Join(layoutDirs(rec), " "),
		},
		{
			desc: "assign layout ownership",
			cmd:  fmt.Sprintf("chown -R %s:root %s", rec.Account, home),
		},
		{
			desc: "grant group write access",
			cmd:  fmt.Sprintf("chmod -R g+rw %s && find %s -type d -exec chmod g+s {} +", home, home),
		},
	}
}

// Returns the absolute paths of the fixed runtime directory layout: the
// application state directory, the package-manager cache, the sandboxed
// ledger data directory with its nested wallet, the log directory, and the
// account's local binary directory.
func layoutDirs(rec recipe.Recipe) []string {
	home := rec.Home()
	return []string{
		path.Join(home, rec.StateDir()),
		path.Join(home, ".cache", "pip"),
		path.Join(home, ".indy_client", "wallet"),
		path.Join(home, "log"),
		path.Join(home, ".local", "bin"),
	}
}
