package main

import (
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the merge audit log",
		Long: `Print every recorded album merge, newest first. The log is append-only
and survives the albums it describes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.MergeService](injector)
			if err != nil {
				return err
			}

			events, err := svc.MergeHistory(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, events)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No merge events recorded.")
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, event := range events {
				rows = append(rows, []string{
					event.Timestamp.Format("2006-01-02 15:04:05"),
					event.SourceID,
					event.TargetID,
					event.ActorID,
					strconv.Itoa(event.AffectedListCount),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Source", "Target", "Actor", "Lists"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d merge events\n", len(events))
			return nil
		},
	}

	return cmd
}
