package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/eolkeeper/internal/adapters/in/cli/ui/components"
	"github.com/bnema/eolkeeper/internal/domain"
)

type generateOptions struct {
	EolDate    string
	Repo       string
	Path       string
	OS         string
	Arch       string
	ActiveOnly bool
}

type generatePaths struct {
	OldInfo string
	NewInfo string
	Out     string
}

var generateSummaryColumns = []components.TableColumn{
	{Title: "REPO", Width: 40},
	{Title: "PRODUCT VERSION", Width: 18},
	{Title: "DIGESTS", Width: 9},
}

func newGenerateCmd(withRuntime runtimeFunc) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <old-image-info> <new-image-info> <eol-digests-out>",
		Short: "Write the digests retired between two image-info snapshots",
		Long: `Compare the image-info of the previous release with the image-info of
the new release and write every digest of the old release that is no longer
produced to an EOL batch file.

Digests of repos missing from the new image-info are always retired. Scope
flags narrow the old image-info only.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := generatePaths{OldInfo: args[0], NewInfo: args[1], Out: args[2]}
			return withRuntime(cmd, func(rt *Runtime) error {
				return runGenerate(cmd.Context(), rt, paths, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.EolDate, "eol-date", "", "EOL date of the batch, YYYY-MM-DD (default: today, UTC)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Only consider the repo with this name")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Only consider platforms whose Dockerfile path matches this glob (* and ?)")
	cmd.Flags().StringVar(&opts.OS, "os", "", "OS of active platforms (default: host OS)")
	cmd.Flags().StringVar(&opts.Arch, "arch", "", "Architecture of active platforms (default: host architecture)")
	cmd.Flags().BoolVar(&opts.ActiveOnly, "active-only", false, "Only consider platforms matching the OS and architecture")

	return cmd
}

func runGenerate(ctx context.Context, rt *Runtime, paths generatePaths, opts generateOptions, out io.Writer) error {
	var reconcileOpts domain.ReconcileOptions
	if opts.EolDate != "" {
		date, err := domain.ParseDate(opts.EolDate)
		if err != nil {
			return err
		}
		reconcileOpts.EolDate = date
	}

	filter := domain.PlatformFilter{Repo: opts.Repo, Path: opts.Path, OS: opts.OS, Architecture: opts.Arch}
	if opts.ActiveOnly && (filter.OS == "" || filter.Architecture == "") {
		host, err := rt.Host.HostPlatform(ctx)
		if err != nil {
			return fmt.Errorf("failed to detect host platform: %w", err)
		}
		if filter.OS == "" {
			filter.OS = host.OS
		}
		if filter.Architecture == "" {
			filter.Architecture = host.Architecture
		}
	}
	reconcileOpts.Scope = filter
	reconcileOpts.ActiveOnly = opts.ActiveOnly

	oldInfo, err := rt.Catalogs.LoadCatalog(paths.OldInfo)
	if err != nil {
		return err
	}
	newInfo, err := rt.Catalogs.LoadCatalog(paths.NewInfo)
	if err != nil {
		return err
	}

	batch, summary, err := rt.Reconcile.Generate(ctx, oldInfo, newInfo, reconcileOpts)
	if err != nil {
		return err
	}

	if err := rt.Batches.SaveBatch(paths.Out, batch); err != nil {
		return err
	}

	return printGenerateSummary(out, paths.Out, batch, summary)
}

func printGenerateSummary(out io.Writer, path string, batch *domain.EolBatch, summary domain.ReconcileSummary) error {
	if summary.Total == 0 {
		if err := cliWriteLine(out, cliRenderMuted("No digests retired")); err != nil {
			return err
		}
		return cliWriteLine(out, cliRenderInfo(fmt.Sprintf("Wrote an empty EOL batch to %s", path)))
	}

	if err := cliWriteLine(out, cliRenderTitle("Retired digests")); err != nil {
		return err
	}

	table := components.NewTable(components.WithColumns(generateSummaryColumns))
	for _, repo := range summary.Repos {
		name := repo.Repo
		if repo.Removed {
			name += " (removed)"
		}
		for _, v := range repo.Versions {
			version := v.ProductVersion
			if version == "" {
				version = "-"
			}
			table.AddRow(name, version, strconv.Itoa(v.Digests))
		}
	}
	if err := cliWriteLine(out, table.Render()); err != nil {
		return err
	}

	if err := cliWriteLine(out, cliRenderMeta("EOL date:", batch.EolDate.String())); err != nil {
		return err
	}
	return cliWriteLine(out, cliRenderSuccess(fmt.Sprintf("Wrote %d digests to %s", summary.Total, path)))
}
