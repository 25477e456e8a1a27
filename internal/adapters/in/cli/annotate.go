package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/eolkeeper/internal/domain"
)

type annotateOptions struct {
	NoCheck  bool
	DryRun   bool
	Registry string
	RerunOut string
}

func newAnnotateCmd(withRuntime runtimeFunc) *cobra.Command {
	var opts annotateOptions

	cmd := &cobra.Command{
		Use:   "annotate <eol-digests-file>",
		Short: "Attach EOL lifecycle annotations to the digests of a batch",
		Long: `Annotate every digest of an EOL batch file with an end-of-life lifecycle
artifact in the registry. Digests that already carry an annotation are
skipped unless --no-check is given.

A failed digest does not stop the batch. Failures are logged as a JSON batch
that can be passed back to this command, and the command exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(rt *Runtime) error {
				return runAnnotate(cmd.Context(), rt, args[0], opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().BoolVar(&opts.NoCheck, "no-check", false, "Annotate without checking for an existing annotation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log the annotations that would be attached without attaching them")
	cmd.Flags().StringVar(&opts.Registry, "registry", "", "Registry host (default: registry.address from config)")
	cmd.Flags().StringVar(&opts.RerunOut, "rerun-out", "", "Write failed digests to this file as a batch for rerunning")

	return cmd
}

func runAnnotate(ctx context.Context, rt *Runtime, path string, opts annotateOptions, out io.Writer) error {
	registry := strings.TrimSpace(opts.Registry)
	if registry == "" {
		registry = rt.Registry
	}
	if registry == "" {
		return fmt.Errorf("%w: a registry is required (--registry or registry.address)", domain.ErrInvalidConfig)
	}

	batch, err := rt.Batches.LoadBatch(path)
	if err != nil {
		return err
	}

	report, annotateErr := rt.Annotate.Annotate(ctx, batch, domain.AnnotateOptions{
		SkipIdempotencyCheck: opts.NoCheck,
		DryRun:               opts.DryRun,
		Registry:             registry,
	})
	if report.RunID == "" {
		return annotateErr
	}

	if err := printAnnotateReport(out, report, opts.DryRun); err != nil {
		return errors.Join(annotateErr, err)
	}

	if report.Rerun != nil && opts.RerunOut == "" {
		if err := cliWriteLine(out, cliRenderWarning("Rerun JSON is in the log above; pass --rerun-out to write it to a file")); err != nil {
			return errors.Join(annotateErr, err)
		}
	}
	if report.Rerun != nil && opts.RerunOut != "" {
		if err := rt.Batches.SaveBatch(opts.RerunOut, report.Rerun); err != nil {
			return errors.Join(annotateErr, fmt.Errorf("failed to write rerun batch: %w", err))
		}
		if err := cliWriteLine(out, cliRenderInfo("Rerun batch written to "+opts.RerunOut)); err != nil {
			return errors.Join(annotateErr, err)
		}
	}

	return annotateErr
}

func printAnnotateReport(out io.Writer, report domain.AnnotateReport, dryRun bool) error {
	title := "EOL annotation"
	if dryRun {
		title += " (dry run)"
	}

	lines := []string{
		cliRenderTitle(title),
		cliRenderMeta("Run:", report.RunID),
		cliRenderListItem(fmt.Sprintf("annotated: %d", report.Annotated)),
		cliRenderListItem(fmt.Sprintf("already annotated: %d", report.Skipped)),
		cliRenderListItem(fmt.Sprintf("failed: %d", report.Failed)),
	}

	switch {
	case report.Failed > 0:
		lines = append(lines, cliRenderError(fmt.Sprintf("%d digests failed to annotate", report.Failed)))
	case dryRun:
		lines = append(lines, cliRenderDryRun("No annotations were attached"))
	default:
		lines = append(lines, cliRenderSuccess("All digests annotated"))
	}

	for _, line := range lines {
		if err := cliWriteLine(out, line); err != nil {
			return err
		}
	}
	return nil
}
