package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHistoryCmd(withRuntime runtimeFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded annotation runs",
	}

	cmd.AddCommand(newHistoryFailuresCmd(withRuntime))
	return cmd
}

func newHistoryFailuresCmd(withRuntime runtimeFunc) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "failures <run-id>",
		Short: "Export the failed digests of a run as an EOL batch",
		Long: `Rebuild the batch of digests that failed during a recorded annotate run.
The batch is printed to stdout unless --out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(rt *Runtime) error {
				return runHistoryFailures(cmd.Context(), rt, args[0], outPath, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the batch to this file instead of stdout")
	return cmd
}

func runHistoryFailures(ctx context.Context, rt *Runtime, runID, outPath string, out io.Writer) error {
	batch, err := rt.History.RerunBatch(ctx, runID)
	if err != nil {
		return err
	}

	if batch == nil {
		return cliWriteLine(out, cliRenderMuted(fmt.Sprintf("Run %s has no failed digests", runID)))
	}

	if outPath == "" {
		return rt.Batches.WriteBatch(out, batch)
	}

	if err := rt.Batches.SaveBatch(outPath, batch); err != nil {
		return err
	}
	return cliWriteLine(out, cliRenderSuccess(fmt.Sprintf("Wrote %d failed digests to %s", len(batch.EolDigests), outPath)))
}
