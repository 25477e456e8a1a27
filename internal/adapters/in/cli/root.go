// Package cli implements the eolkeeper command line. Commands delegate to
// the use cases assembled by the app layer.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/eolkeeper/internal/boundaries/in"
	"github.com/bnema/eolkeeper/internal/boundaries/out"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GlobalOptions are the persistent flags of every command.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
}

// Runtime holds what commands need once the configuration is loaded.
type Runtime struct {
	Reconcile in.ReconcileService
	Annotate  in.AnnotateService
	History   in.HistoryService
	Catalogs  out.CatalogLoader
	Batches   out.BatchStore
	Host      out.HostPlatformProvider
	// Registry is the configured registry used when --registry is not given.
	Registry string
	Close    func() error
}

// Builder assembles a Runtime from the global options.
type Builder func(ctx context.Context, opts GlobalOptions) (*Runtime, error)

// NewRootCmd creates the root command for the eolkeeper CLI.
func NewRootCmd(build Builder) *cobra.Command {
	var opts GlobalOptions

	rootCmd := &cobra.Command{
		Use:   "eolkeeper",
		Short: "Retire container image digests with end-of-life annotations",
		Long: `eolkeeper compares two image-info snapshots of a release pipeline,
writes the digests that are no longer supported to an EOL batch file and
attaches end-of-life lifecycle annotations to them in a container registry.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to config file (default: eolkeeper.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	withRuntime := func(cmd *cobra.Command, fn func(rt *Runtime) error) error {
		rt, err := build(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if rt.Close != nil {
			defer rt.Close()
		}
		return fn(rt)
	}

	rootCmd.AddCommand(newGenerateCmd(withRuntime))
	rootCmd.AddCommand(newAnnotateCmd(withRuntime))
	rootCmd.AddCommand(newHistoryCmd(withRuntime))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

type runtimeFunc func(cmd *cobra.Command, fn func(rt *Runtime) error) error

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("eolkeeper %s\n", Version)
			cmd.Printf("Commit: %s\n", Commit)
			cmd.Printf("Build Date: %s\n", BuildDate)
		},
	}
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(version, commit, date string) {
	Version = version
	Commit = commit
	BuildDate = date
}
