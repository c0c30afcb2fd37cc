package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newExcludeCommand(ctx *commandContext) *cobra.Command {
	var (
		albumA   string
		albumB   string
		actor    string
		showList bool
	)

	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Mark two albums as deliberately distinct",
		Long: `Record that two albums are not the same release despite matching
metadata. Excluded pairs never surface as reconciliation candidates again,
in either order. Use --list to show the declared pairs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.ReconcileService](injector)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if showList {
				pairs, err := svc.Exclusions(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.json() {
					return writeJSON(cmd, pairs)
				}
				if len(pairs) == 0 {
					fmt.Fprintln(out, "No exclusions declared.")
					return nil
				}
				rows := make([][]string, 0, len(pairs))
				for _, pair := range pairs {
					rows = append(rows, []string{
						pair.AlbumID1,
						pair.AlbumID2,
						pair.CreatedBy,
						pair.CreatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Album A", "Album B", "Declared by", "Declared at"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			}

			if albumA == "" || albumB == "" || actor == "" {
				return fmt.Errorf("--a, --b, and --actor are required (or use --list)")
			}
			if err := svc.AddExclusion(cmd.Context(), albumA, albumB, actor); err != nil {
				return err
			}
			if ctx.json() {
				return writeJSON(cmd, map[string]string{"excluded_a": albumA, "excluded_b": albumB})
			}
			fmt.Fprintf(out, "Excluded %s and %s from future matching\n", albumA, albumB)
			return nil
		},
	}

	cmd.Flags().StringVar(&albumA, "a", "", "First album ID")
	cmd.Flags().StringVar(&albumB, "b", "", "Second album ID")
	cmd.Flags().StringVar(&actor, "actor", "", "User ID recorded on the exclusion")
	cmd.Flags().BoolVar(&showList, "list", false, "List declared exclusions instead of adding one")

	return cmd
}
