package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/ganttline/internal/models"
	"github.com/fentz26/ganttline/internal/report"
	"github.com/fentz26/ganttline/internal/snapshot"
	"github.com/fentz26/ganttline/internal/store"
)

var errHistoryDisabled = errors.New("history is disabled: set paths.history in the config")

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Browse the history of past runs",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show [snapshot-id|latest]",
	Short: "Show a saved snapshot and the decisions recorded for it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsShow,
}

var (
	snapshotsLimit   int
	snapshotsShowOut string
)

func init() {
	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "Maximum snapshots to list (0 for all)")
	snapshotsShowCmd.Flags().StringVarP(&snapshotsShowOut, "out", "o", "", "Restore the snapshot to this path")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
}

func requireHistory() (*store.Store, error) {
	st, err := openHistory(false)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errHistoryDisabled
	}
	return st, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	st, err := requireHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	sums, err := st.ListSnapshots(snapshotsLimit)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTASKS\tSOURCE\tPIPELINE")
	for _, s := range sums {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.CreatedAt.Local().Format(time.DateTime), s.TaskCount, s.Source, s.Pipeline)
	}
	return w.Flush()
}

func runSnapshotsShow(cmd *cobra.Command, args []string) error {
	st, err := requireHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	var snap *models.Snapshot
	if args[0] == "latest" {
		snap, err = st.LatestSnapshot()
	} else {
		snap, err = st.GetSnapshot(args[0])
	}
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("snapshot not found: %s", args[0])
	}

	if snapshotsShowOut != "" {
		if err := snapshot.WriteFile(snapshotsShowOut, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d tasks to %s\n", len(snap.Tasks), snapshotsShowOut)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %s\n", snap.ID)
	fmt.Fprintf(out, "Source:    %s\n", snap.Source)
	fmt.Fprintf(out, "Pipeline:  %s\n", snap.Pipeline)
	fmt.Fprintf(out, "Generated: %s\n", snap.GeneratedAt.Local().Format(time.DateTime))

	decisions, err := st.ListDecisions(snap.ID)
	if err != nil {
		return err
	}
	if len(decisions) > 0 {
		fmt.Fprintln(out, "\nDecisions:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, d := range decisions {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.Timestamp.Local().Format(time.DateTime), d.Action, d.Outcome, d.Details)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	return report.WriteDebug(out, snap.Tasks)
}
