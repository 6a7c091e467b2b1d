package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/millstone-io/wheelwright/internal"
)

// Default containerd socket address.
const defaultContainerdAddress = "/run/containerd/containerd.sock"

// Represents the root command for the wheelwright CLI.
var RootCmd struct {
	Quiet     bool       `short:"q" help:"Suppress informational output."`
	Debug     bool       `short:"d" help:"Enable debug output."`
	Address   string     `short:"a" help:"Containerd socket address." placeholder:"PATH" default:"${containerd_address}"`
	Namespace string     `short:"n" help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`
	Build     BuildCmd   `cmd:"" help:"Build the runtime image from an application source tree."`
	Version   VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds a versioned application source tree into a minimal, hardened runtime container image.\n\nA builder container produces the package wheel; a runtime container is provisioned with a non-root identity, the wheel is installed, and the result is exported as an OCI archive."),
		kong.UsageOnError(),
		kong.Vars{
			"version":              internal.VersionString(),
			"containerd_address":   defaultContainerdAddress,
			"containerd_namespace": internal.Name,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// The default handler is the charmbracelet logger installed by main; flags
// override the level baked in via linker flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*log.Logger)
	if !ok {
		return // Not the charm handler, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()

	switch {
	case debug:
		handler.SetLevel(log.DebugLevel)
	case quiet:
		handler.SetLevel(log.WarnLevel)
	default:
		handler.SetLevel(log.InfoLevel)
	}
}
