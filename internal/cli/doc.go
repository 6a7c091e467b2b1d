// Parses flags and configures logging for the wheelwright CLI.
//
// The CLI accepts the following global flags:
//
//	-q, --quiet       Suppress informational output.
//	-d, --debug       Enable debug output.
//	-a, --address     Containerd socket address.
//	-n, --namespace   Containerd namespace.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level before the build
// starts. SIGINT and SIGTERM cancel the command context, which aborts an
// in-flight build.
package cli
