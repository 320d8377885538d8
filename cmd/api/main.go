// Command api serves the club roster over HTTP.
//
// Usage:
//
//	api serve [--port 8080] [--seed roster.yaml]
//	api seed validate -f roster.yaml
//	api version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Club roster API",
	Long: `api serves an in-memory club roster.

Members can be added, edited, deleted, sorted and searched over HTTP, and
every change is pushed to connected clients on /members/stream.

Configuration is read from the environment (PORT, LOG_LEVEL, LOG_FORMAT,
ROSTER_SEED_FILE, SHUTDOWN_TIMEOUT, STREAM_WRITE_TIMEOUT, IDEMPOTENCY_TTL);
flags override it.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "api %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
