package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/di/providers"
	"github.com/magnusoverli/sushe-online-sub003/internal/search"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		manualOnly bool
		country    string
		genres     []string
		key        string
		minYear    int
		maxYear    int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the album catalog",
		Long: `Full-text search over the album catalog with optional filters. An
empty query with filters lists everything matching the filters. The index is
rebuilt from the store on first use if it is empty.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			indexHandle, err := do.Invoke[*providers.SearchIndexHandle](injector)
			if err != nil {
				return err
			}
			if err := providers.ReindexIfEmpty(injector); err != nil {
				return err
			}

			params := search.DefaultSearchParams()
			if len(args) > 0 {
				params.Query = args[0]
			}
			params.Limit = limit
			params.ManualOnly = manualOnly
			params.Country = country
			params.Genres = genres
			params.NormalizedKey = key
			params.MinYear = minYear
			params.MaxYear = maxYear

			result, err := indexHandle.Search(cmd.Context(), params)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if len(result.Hits) == 0 {
				fmt.Fprintln(out, "No matches.")
				return nil
			}

			rows := make([][]string, 0, len(result.Hits))
			for _, hit := range result.Hits {
				year := "-"
				if hit.ReleaseYear > 0 {
					year = strconv.Itoa(hit.ReleaseYear)
				}
				manual := ""
				if hit.Manual {
					manual = "yes"
				}
				rows = append(rows, []string{
					hit.ID,
					hit.Artist,
					hit.Album,
					year,
					hit.Country,
					strings.Join(hit.Genres, ", "),
					manual,
					fmt.Sprintf("%.2f", hit.Score),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Artist", "Album", "Year", "Country", "Genres", "Manual", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d of %d matches in %dms\n", len(result.Hits), result.Total, result.TookMs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum hits to return")
	cmd.Flags().BoolVar(&manualOnly, "manual-only", false, "Only hand-entered albums")
	cmd.Flags().StringVar(&country, "country", "", "Exact country filter")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "Genre filter (repeatable, OR across values)")
	cmd.Flags().StringVar(&key, "key", "", "Exact identity-key filter")
	cmd.Flags().IntVar(&minYear, "min-year", 0, "Minimum release year")
	cmd.Flags().IntVar(&maxYear, "max-year", 0, "Maximum release year")

	return cmd
}
